package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
)

// NewLoader chains fetcher and aggregator into the cache's refresh pipeline.
// Fetch failures that are not already a *domain.FetchError are wrapped into
// one.
func NewLoader(f domain.Fetcher, agg Aggregator) Loader {
	return func(ctx context.Context, detail bool) ([]domain.CustomerRecord, error) {
		history, err := f.FetchAll(ctx, domain.FetchOptions{IncludeLineItems: detail})
		if err != nil {
			var fe *domain.FetchError
			if !errors.As(err, &fe) {
				err = &domain.FetchError{Op: "customers", Err: err}
			}
			return nil, err
		}
		return agg.Aggregate(history)
	}
}

// Service answers customer queries from the cache.
type Service struct {
	cache *Cache
	clock Clock
	log   zerolog.Logger
}

var _ domain.Service = (*Service)(nil)

func New(cache *Cache, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock
	}
	return &Service{cache: cache, clock: clock, log: zerolog.Nop()}
}

// SetLogger sets the query logger.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

// Query filters and sorts the cached customer set.
func (s *Service) Query(ctx context.Context, q domain.Query) (domain.QueryResult, error) {
	res, err := s.cache.Get(ctx, Request{
		ForceRefresh:  q.ForceRefresh,
		RequireDetail: q.Criteria.GiftCardRequired,
	})
	if err != nil {
		return domain.QueryResult{}, err
	}

	now := s.clock.Now()
	matched := Filter(res.Snapshot.Records, q.Criteria, now)
	sorted := Sort(matched, q.SortKey, q.SortDirection)

	views := make([]domain.CustomerView, 0, len(sorted))
	for i := range sorted {
		views = append(views, toView(&sorted[i], now))
	}
	s.log.Debug().
		Bool("from_cache", res.FromCache).
		Int("total", len(res.Snapshot.Records)).
		Int("matched", len(views)).
		Msg("customer query")

	return domain.QueryResult{
		Customers: views,
		CacheInfo: domain.CacheInfo{
			FromCache:       res.FromCache,
			CacheAgeSeconds: int(res.Age / time.Second),
			CacheTTLSeconds: int(s.cache.TTL() / time.Second),
			TotalCustomers:  len(res.Snapshot.Records),
		},
	}, nil
}

func toView(r *domain.CustomerRecord, now time.Time) domain.CustomerView {
	v := domain.CustomerView{
		ID:                  r.ID,
		Email:               r.Email,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		OrderCount:          r.OrderCount,
		TotalSpent:          r.TotalSpent.InexactFloat64(),
		LastOrderDate:       r.LastOrderDate,
		CustomerSince:       r.CustomerSince,
		HasGiftCardPurchase: r.HasGiftCardPurchase,
	}
	if r.LastOrderDate != nil {
		d := DaysSince(*r.LastOrderDate, now)
		v.DaysSinceLastOrder = &d
	}
	return v
}
