package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"placepage/internal/domain"
)

// IngestionService warms the content store and the cache for a list of
// sponsored hotels ahead of the first selection.
type IngestionService struct {
	remote      domain.ContentClient
	repo        domain.ContentRepository
	cache       domain.Cache
	cacheTTL    time.Duration
	reviewCount int
	langs       []string
}

func NewIngestionService(c domain.ContentClient, r domain.ContentRepository, cache domain.Cache,
	ttl time.Duration, reviewCount int, langs []string) *IngestionService {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &IngestionService{remote: c, repo: r, cache: cache, cacheTTL: ttl, reviewCount: reviewCount, langs: langs}
}

func (s *IngestionService) IngestHotel(ctx context.Context, id string) error {
	// 1) Reviews are language independent: fetch once. Known misses are
	// recorded and ingestion continues without them.
	reviews, err := s.remote.GetReviews(ctx, id, s.reviewCount)
	if err != nil {
		if status, reason, ok := missOf(err); ok {
			_ = s.repo.LogMiss(ctx, id, status, "reviews:"+reason)
			reviews = nil
		} else {
			return err
		}
	}

	// 2) One hotel info per language.
	for _, lang := range s.langs {
		p, err := s.remote.GetProperty(ctx, id, lang)
		if err != nil {
			status, reason, ok := missOf(err)
			if !ok {
				return err
			}
			// property gone or locked: record and stop serving old snapshots
			_ = s.repo.LogMiss(ctx, id, status, reason)
			s.invalidateAllLangs(ctx, id)
			return nil
		}

		info := mapHotelInfo(p, reviews)
		if err := s.repo.UpsertHotelInfo(ctx, id, lang, info); err != nil {
			return fmt.Errorf("upsert hotel info failed for %s/%s: %w", id, lang, err)
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, hotelKey(id, lang), info, int(s.cacheTTL.Seconds()))
		}
	}
	return nil
}

func (s *IngestionService) invalidateAllLangs(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	for _, l := range s.langs {
		_ = s.cache.Del(ctx, hotelKey(id, l))
	}
}

// missOf classifies errors that mean "no content for this id".
func missOf(err error) (status int, reason string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 404, "not found", true
	case errors.Is(err, domain.ErrUnauthorized):
		return 401, "unauthorized", true
	case errors.Is(err, domain.ErrForbidden):
		return 403, "inactive", true
	}
	return 0, "", false
}
