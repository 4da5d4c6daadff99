package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"placepage/internal/adapters/cupid"
	"placepage/internal/adapters/geo"
	server "placepage/internal/adapters/http_server"
	"placepage/internal/adapters/netpolicy"
	"placepage/internal/adapters/observability"
	"placepage/internal/adapters/partners"
	"placepage/internal/adapters/providers"
	redisad "placepage/internal/adapters/redis"
	"placepage/internal/adapters/regions"
	"placepage/internal/app"
	"placepage/internal/domain"
	"placepage/internal/loop"
	"placepage/internal/orchestrator"
	"placepage/internal/panel"
	"placepage/internal/placepage"
	"placepage/internal/shared"
	mysqlrepo "placepage/internal/storage/mysql"
	"placepage/internal/view"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// content backends
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	cupidClient, err := cupid.New(cfg.CupidBase, cfg.CupidKey, cfg.ProviderRPS, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize content client")
	}
	partnerClient, err := partners.New(cfg.PartnersBase, cfg.PartnersKey, cfg.ProviderRPS, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize partners client")
	}
	content := app.NewContentService(repo, cupidClient, cache, cfg.CacheTTL, cfg.ReviewCount)
	galleries := app.NewGalleryService(partnerClient, cache, cfg.CacheTTL)

	// control thread
	l := loop.New()
	go func() {
		if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("control loop stopped")
		}
	}()

	policy, err := netpolicy.FromMode(cfg.NetworkPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid NETWORK_POLICY")
	}
	prompter, _ := policy.(*netpolicy.Prompter)
	conn := netpolicy.NewConnectivity(true)
	nav := &netpolicy.Navigation{}
	store := regions.New(l)
	surface := view.New()

	landscape := cfg.Landscape
	page := placepage.New(placepage.Config{
		Currency: cfg.Currency,
		Lang:     cfg.Lang,
		Panel:    panel.Config{Mode: cfg.Mode(), Landscape: func() bool { return landscape }},
		CacheTTL: cfg.ProviderCacheTTL,
	}, placepage.Collaborators{
		Sched:  l,
		Policy: policy,
		Conn:   conn,
		Providers: orchestrator.Providers{
			Booking: providers.NewBooking(content, l, cfg.ProviderTimeout),
			Galleries: map[domain.ProviderType]domain.GalleryProvider{
				domain.ProviderCityTours: providers.NewTours(galleries, l, cfg.ProviderTimeout, cfg.CacheTTL),
				domain.ProviderRentals:   providers.NewRentals(galleries, l, cfg.ProviderTimeout, cfg.CacheTTL),
			},
		},
		Regions:    store,
		Navigation: nav,
		Surface:    surface,
		Banner:     surface,
		Animator:   surface,
		Geo:        geo.New(cfg.Lang),
	})

	// http
	srv := server.New(15 * time.Second)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Page:     page,
		Loop:     l,
		View:     surface,
		Prompter: prompter,
		Conn:     conn,
		Nav:      nav,
		Regions:  store,
		Health: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return cache.Ping(ctx)
		},
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("policy", cfg.NetworkPolicy).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
