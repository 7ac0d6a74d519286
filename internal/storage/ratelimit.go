package storage

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedStore throttles every call to the wrapped store.
type RateLimitedStore struct {
	next    ObjectStore
	limiter *rate.Limiter
}

// NewRateLimitedStore allows rps calls per second with the given burst.
// A non-positive rps disables limiting.
func NewRateLimitedStore(next ObjectStore, rps float64, burst int) ObjectStore {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedStore{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (s *RateLimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.next.List(ctx, prefix)
}

func (s *RateLimitedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.next.Get(ctx, key)
}

func (s *RateLimitedStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.next.Put(ctx, key, data)
}

func (s *RateLimitedStore) Delete(ctx context.Context, key string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.next.Delete(ctx, key)
}
