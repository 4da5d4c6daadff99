package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"placepage/internal/adapters/cupid"
	"placepage/internal/adapters/observability"
	redisad "placepage/internal/adapters/redis"
	"placepage/internal/app"
	"placepage/internal/shared"
	mysqlrepo "placepage/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	log.Info().
		Str("base", cfg.CupidBase).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Int("hotels", len(cfg.IngestIDs)).
		Strs("langs", cfg.IngestLangs).
		Msg("ingestor starting")
	if len(cfg.IngestIDs) == 0 {
		log.Warn().Msg("INGEST_IDS is empty, nothing to do")
		return
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	client, err := cupid.New(cfg.CupidBase, cfg.CupidKey, cfg.ProviderRPS, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize content client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	ing := app.NewIngestionService(client, repo, cache, cfg.CacheTTL, cfg.ReviewCount, cfg.IngestLangs)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, id := range cfg.IngestIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestHotel(ctx, hotelID); err != nil {
				failed.Add(1)
				log.Warn().Str("id", hotelID).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("id", hotelID).Msg("ingest ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int64("failed", failed.Load()).Msg("ingestion completed")
}
