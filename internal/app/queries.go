package app

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"whatsapp_reviews/internal/domain"
)

const (
	// reviewsCacheKey holds the cached listing; it is dropped after every insert.
	reviewsCacheKey    = "reviews:all"
	defaultListTimeout = 10 * time.Second
)

type QueryService struct {
	store       domain.ReviewStore
	cache       domain.Cache
	cacheTTL    time.Duration
	listTimeout time.Duration
	sf          singleflight.Group

	// mu orders cache writes against invalidation: a listing read before an
	// insert is never cached after that insert's invalidation.
	mu  sync.Mutex
	gen uint64
}

// NewQueryService reads through c when it is non-nil.
func NewQueryService(store domain.ReviewStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: c, cacheTTL: ttl, listTimeout: defaultListTimeout}
}

func (s *QueryService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Invalidate drops the cached listing and discards any lookup already in
// flight, so the next ListReviews reads the store.
func (s *QueryService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, reviewsCacheKey)
}

// ListReviews returns every review, newest first. The result is never nil.
func (s *QueryService) ListReviews(ctx context.Context) ([]domain.Review, error) {
	if s.cache != nil {
		var cached []domain.Review
		ok, err := s.cache.Get(ctx, reviewsCacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", reviewsCacheKey).Msg("cache read failed")
		}
		if ok && err == nil {
			if cached == nil {
				cached = []domain.Review{}
			}
			return cached, nil
		}
	}

	gen := s.generation()
	// callers joining after an invalidation start a new flight
	v, err, _ := s.sf.Do(reviewsCacheKey+":"+strconv.FormatUint(gen, 10), func() (any, error) {
		// shared by every waiter; one caller going away must not fail the rest
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.listTimeout)
		defer cancel()

		rs, err := s.store.List(fctx)
		if err != nil {
			return nil, err
		}
		s.storeInCache(fctx, gen, rs)
		return rs, nil
	})
	if err != nil {
		return nil, err
	}

	// copy so callers sharing a singleflight result cannot alias each other
	rs := v.([]domain.Review)
	out := make([]domain.Review, len(rs))
	copy(out, rs)
	return out, nil
}

func (s *QueryService) storeInCache(ctx context.Context, gen uint64, rs []domain.Review) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		log.Debug().Str("key", reviewsCacheKey).Msg("listing invalidated during read; not caching")
		return
	}
	if err := s.cache.Set(ctx, reviewsCacheKey, rs, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", reviewsCacheKey).Msg("cache write failed")
	}
}
