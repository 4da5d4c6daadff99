package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"placepage/internal/domain"
)

// price quotes go stale much faster than descriptive content
const priceTTL = 5 * time.Minute

func hotelKey(id, lang string) string { return fmt.Sprintf("hotel:%s:%s", id, strings.ToLower(lang)) }

func priceKey(id, currency string) string {
	return fmt.Sprintf("price:%s:%s", id, strings.ToUpper(currency))
}

func productsKey(kind, id string) string { return fmt.Sprintf("products:%s:%s", kind, id) }

// ContentService is the read path for hotel enrichment: cache, then the
// content store, then the remote API.
type ContentService struct {
	repo        domain.ContentRepository
	remote      domain.ContentClient
	cache       domain.Cache
	cacheTTL    time.Duration
	reviewCount int
}

func NewContentService(r domain.ContentRepository, remote domain.ContentClient, c domain.Cache,
	ttl time.Duration, reviewCount int) *ContentService {
	return &ContentService{repo: r, remote: remote, cache: c, cacheTTL: ttl, reviewCount: reviewCount}
}

func (s *ContentService) HotelInfo(ctx context.Context, id, lang string) (domain.HotelInfo, error) {
	key := hotelKey(id, lang)
	var hi domain.HotelInfo
	if ok, _ := s.cache.Get(ctx, key, &hi); ok {
		return hi, nil
	}

	if s.repo != nil {
		stored, err := s.repo.GetHotelInfo(ctx, id, lang)
		switch {
		case err == nil:
			_ = s.cache.Set(ctx, key, stored, int(s.cacheTTL.Seconds()))
			return stored, nil
		case !errors.Is(err, domain.ErrNotFound):
			log.Warn().Err(err).Str("id", id).Msg("content store read failed, going remote")
		}
	}

	hi, err := s.fetchHotelInfo(ctx, id, lang)
	if err != nil {
		return domain.HotelInfo{}, err
	}
	if s.repo != nil {
		if err := s.repo.UpsertHotelInfo(ctx, id, lang, hi); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("content store write failed")
		}
	}
	_ = s.cache.Set(ctx, key, hi, int(s.cacheTTL.Seconds()))
	return hi, nil
}

// fetchHotelInfo loads the property and its reviews concurrently. Reviews
// are best effort.
func (s *ContentService) fetchHotelInfo(ctx context.Context, id, lang string) (domain.HotelInfo, error) {
	var (
		prop    map[string]any
		reviews []map[string]any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prop, err = s.remote.GetProperty(gctx, id, lang)
		return err
	})
	g.Go(func() error {
		rs, err := s.remote.GetReviews(gctx, id, s.reviewCount)
		if err != nil {
			log.Debug().Err(err).Str("id", id).Msg("reviews unavailable")
			return nil
		}
		reviews = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.HotelInfo{}, err
	}
	return mapHotelInfo(prop, reviews), nil
}

func (s *ContentService) Price(ctx context.Context, id, currency string) (domain.Price, error) {
	key := priceKey(id, currency)
	var p domain.Price
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.remote.GetPrice(ctx, id, currency)
	if err != nil {
		return domain.Price{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(priceTTL.Seconds()))
	return p, nil
}

// GalleryService serves city-tours and rentals products through the
// shared cache.
type GalleryService struct {
	partners domain.PartnerClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewGalleryService(p domain.PartnerClient, c domain.Cache, ttl time.Duration) *GalleryService {
	return &GalleryService{partners: p, cache: c, cacheTTL: ttl}
}

func (s *GalleryService) Tours(ctx context.Context, destID, currency string) ([]domain.Product, error) {
	return s.cached(ctx, productsKey("tours", destID+":"+strings.ToUpper(currency)), func() ([]domain.Product, error) {
		return s.partners.CityTours(ctx, destID, currency)
	})
}

func (s *GalleryService) Rentals(ctx context.Context, featureID string, lat, lon float64) ([]domain.Product, error) {
	return s.cached(ctx, productsKey("rentals", featureID), func() ([]domain.Product, error) {
		return s.partners.RentalsNearby(ctx, lat, lon, featureID)
	})
}

func (s *GalleryService) cached(ctx context.Context, key string, load func() ([]domain.Product, error)) ([]domain.Product, error) {
	var items []domain.Product
	if ok, _ := s.cache.Get(ctx, key, &items); ok {
		return items, nil
	}
	items, err := load()
	if err != nil {
		return nil, err
	}
	// empty lists are not cached so the next visit asks again
	if len(items) > 0 {
		_ = s.cache.Set(ctx, key, copyProducts(items), int(s.cacheTTL.Seconds()))
	}
	return items, nil
}

// copyProducts keeps the cached value from aliasing the caller's slice.
func copyProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}
