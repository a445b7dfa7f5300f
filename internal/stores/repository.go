package stores

import (
	"context"
	"errors"
	"sort"
	"time"

	"storelocator/internal/geo"
	"storelocator/platform/config"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"

	"golang.org/x/sync/singleflight"
)

// Repository loads the directory and turns it into sorted Store records.
type Repository struct {
	fetcher  Fetcher
	cache    Cache
	cacheTTL time.Duration
	location *time.Location
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	group singleflight.Group
}

// Option customizes a Repository.
type Option func(*Repository)

// WithCache enables the payload cache.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(r *Repository) {
		if cache != nil && ttl > 0 {
			r.cache = cache
			r.cacheTTL = ttl
		}
	}
}

// WithMetrics records fetch and cache metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) {
		r.metrics = m
	}
}

// WithClock overrides the clock used to pick today's hours.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository creates a repository over fetcher.
func NewRepository(fetcher Fetcher, cfg config.StoreAPIConfig, log *logger.Logger, opts ...Option) *Repository {
	loc := cfg.GetStoreTimezone()
	if loc == nil {
		loc = time.UTC
	}
	r := &Repository{
		fetcher:  fetcher,
		location: loc,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the directory and returns every store with its distance from
// the reference coordinate, nearest first. Stores without a distance sort
// last. On any failure the result is nil and the error is a *FetchError.
func (r *Repository) Load(ctx context.Context, refLat, refLon float64) ([]Store, error) {
	start := time.Now()

	payload, source, err := r.payload(ctx)
	if err == nil {
		var records []rawStore
		records, err = parseDirectory(payload)
		if err == nil {
			result := r.build(records, geo.LatLng{Lat: refLat, Lng: refLon})
			r.log.WithContext(ctx).StoreFetch(source, len(result), time.Since(start), nil)
			r.metrics.ObserveFetch("ok", time.Since(start))
			return result, nil
		}
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		err = &FetchError{Reason: err.Error(), Err: err}
	}
	r.log.WithContext(ctx).StoreFetch(source, 0, time.Since(start), err)
	r.metrics.ObserveFetch("error", time.Since(start))
	return nil, err
}

func (r *Repository) build(records []rawStore, ref geo.LatLng) []Store {
	today := r.now().In(r.location)
	result := make([]Store, 0, len(records))
	for i, raw := range records {
		result = append(result, normalize(raw, i, ref, today))
	}
	SortByDistance(result)
	return result
}

// payload returns the raw directory from cache or upstream. Concurrent
// callers share one upstream request.
func (r *Repository) payload(ctx context.Context) ([]byte, string, error) {
	key := r.fetcher.Source()

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			r.log.WithContext(ctx).Warn("store cache read failed", "error", err)
		case ok:
			r.metrics.ObserveCache("hit")
			return cached, "cache", nil
		default:
			r.metrics.ObserveCache("miss")
		}
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		body, err := r.fetcher.Fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if _, err := parseDirectory(body); err == nil && r.cache != nil {
			if err := r.cache.Set(fetchCtx, key, body, r.cacheTTL); err != nil {
				r.log.WithContext(ctx).Warn("store cache write failed", "error", err)
			}
		}
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, "upstream", res.Err
		}
		return res.Val.([]byte), "upstream", nil
	case <-ctx.Done():
		return nil, "upstream", &FetchError{Reason: ctx.Err().Error(), Err: ctx.Err()}
	}
}

// SortByDistance orders stores nearest first, stores without a distance last.
func SortByDistance(list []Store) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Distance, list[j].Distance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
