// Package providers adapts the content and partner services to the
// callback-style provider ports. Each request runs on its own goroutine
// with a timeout; its result is posted back to the control thread through
// the callback handed in with the request.
package providers

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"placepage/internal/adapters/observability"
	"placepage/internal/domain"
)

const defaultTimeout = 10 * time.Second

type HotelContent interface {
	HotelInfo(ctx context.Context, id, lang string) (domain.HotelInfo, error)
	Price(ctx context.Context, id, currency string) (domain.Price, error)
}

type Galleries interface {
	Tours(ctx context.Context, destID, currency string) ([]domain.Product, error)
	Rentals(ctx context.Context, featureID string, lat, lon float64) ([]domain.Product, error)
}

// run executes fn off the control thread and posts deliver with its error.
func run(sched domain.Scheduler, timeout time.Duration, kind, id string, fn func(ctx context.Context) error, deliver func(err error)) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	reqID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		err := fn(ctx)
		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err).Str("error_type", observability.LabelErr(err))
		}
		ev.Str("request", reqID).Str("kind", kind).Str("id", id).
			Dur("took", time.Since(start)).Msg("provider request finished")
		sched.Post(func() { deliver(err) })
	}()
}

// ---- booking ----

// Booking serves hotel prices and details.
type Booking struct {
	content HotelContent
	sched   domain.Scheduler
	timeout time.Duration
}

func NewBooking(content HotelContent, sched domain.Scheduler, timeout time.Duration) *Booking {
	return &Booking{content: content, sched: sched, timeout: timeout}
}

func (b *Booking) RequestPrice(id, currency string, p domain.Policy, done func(domain.PriceResult)) {
	if !p.CanUseNetwork() {
		b.sched.Post(func() { done(domain.PriceResult{ID: id, Currency: currency, Err: domain.ErrNetworkDenied}) })
		return
	}
	var price domain.Price
	run(b.sched, b.timeout, "price", id, func(ctx context.Context) error {
		var err error
		price, err = b.content.Price(ctx, id, currency)
		return err
	}, func(err error) {
		// the requested currency keys the result, whatever the backend echoed
		done(domain.PriceResult{ID: id, Price: price.Amount, Currency: currency, Err: err})
	})
}

func (b *Booking) RequestInfo(id, lang string, p domain.Policy, done func(domain.InfoResult)) {
	if !p.CanUseNetwork() {
		b.sched.Post(func() { done(domain.InfoResult{ID: id, Lang: lang, Err: domain.ErrNetworkDenied}) })
		return
	}
	var info domain.HotelInfo
	run(b.sched, b.timeout, "hotel_info", id, func(ctx context.Context) error {
		var err error
		info, err = b.content.HotelInfo(ctx, id, lang)
		return err
	}, func(err error) {
		done(domain.InfoResult{ID: id, Lang: lang, Info: info, Err: err})
	})
}

// ---- galleries ----

// Gallery serves one product kind. It remembers the products it delivered
// so HasCache answers without I/O and denied requests can still be served.
type Gallery struct {
	kind    domain.ProviderType
	fetch   func(ctx context.Context, id string, q domain.GalleryQuery) ([]domain.Product, error)
	sched   domain.Scheduler
	timeout time.Duration
	known   *gocache.Cache
}

func NewTours(g Galleries, sched domain.Scheduler, timeout, ttl time.Duration) *Gallery {
	return newGallery(domain.ProviderCityTours, sched, timeout, ttl,
		func(ctx context.Context, id string, q domain.GalleryQuery) ([]domain.Product, error) {
			return g.Tours(ctx, id, q.Currency)
		})
}

func NewRentals(g Galleries, sched domain.Scheduler, timeout, ttl time.Duration) *Gallery {
	return newGallery(domain.ProviderRentals, sched, timeout, ttl,
		func(ctx context.Context, id string, q domain.GalleryQuery) ([]domain.Product, error) {
			return g.Rentals(ctx, id, q.Lat, q.Lon)
		})
}

func newGallery(kind domain.ProviderType, sched domain.Scheduler, timeout, ttl time.Duration,
	fetch func(ctx context.Context, id string, q domain.GalleryQuery) ([]domain.Product, error)) *Gallery {
	exp, cleanup := gocache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		exp, cleanup = ttl, 2*ttl
	}
	return &Gallery{kind: kind, fetch: fetch, sched: sched, timeout: timeout, known: gocache.New(exp, cleanup)}
}

func (g *Gallery) HasCache(id string) bool {
	_, ok := g.known.Get(id)
	return ok
}

func (g *Gallery) Request(id string, q domain.GalleryQuery, p domain.Policy, done func(domain.ProductsResult)) {
	if !p.CanUseNetwork() {
		r := domain.ProductsResult{Provider: g.kind, ID: id, Err: domain.ErrNetworkDenied}
		if v, ok := g.known.Get(id); ok {
			r.Items, r.Err = v.([]domain.Product), nil
		}
		g.sched.Post(func() { done(r) })
		return
	}
	var items []domain.Product
	run(g.sched, g.timeout, string(g.kind), id, func(ctx context.Context) error {
		var err error
		items, err = g.fetch(ctx, id, q)
		if err == nil && len(items) > 0 {
			g.known.SetDefault(id, items)
		}
		return err
	}, func(err error) {
		done(domain.ProductsResult{Provider: g.kind, ID: id, Items: items, Err: err})
	})
}
