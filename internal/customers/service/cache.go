package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
	evdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/metrics"
)

// Clock is the time source of the cache.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Loader runs the full fetch and aggregate pipeline. detail asks for
// line-item detail (gift-card detection).
type Loader func(ctx context.Context, detail bool) ([]domain.CustomerRecord, error)

// Snapshot is one published generation of the customer set. Snapshots are
// shared between callers and must be treated as read-only.
type Snapshot struct {
	Records    []domain.CustomerRecord
	BuiltAt    time.Time
	Generation uint64
	Detailed   bool
}

// Request selects how Get may answer.
type Request struct {
	ForceRefresh bool
	// RequireDetail asks for a snapshot built with line-item detail. It only
	// has an effect under the lazy gift-card policy.
	RequireDetail bool
}

// Result is a snapshot plus how it was obtained.
type Result struct {
	Snapshot  *Snapshot
	FromCache bool
	Age       time.Duration
}

type refresh struct {
	ctx    context.Context
	gen    uint64
	detail bool
	done   chan struct{}
	snap   *Snapshot
	err    error
}

// Cache owns the aggregated customer set. At most one Loader call runs at a
// time; published snapshots are read without locking.
type Cache struct {
	load   Loader
	ttl    time.Duration
	clock  Clock
	policy domain.GiftCardPolicy
	log    zerolog.Logger
	pub    evdomain.Publisher

	entry atomic.Pointer[Snapshot]

	mu         sync.Mutex
	seq        uint64
	inflight   *refresh
	pending    *refresh
	wantDetail bool
}

// NewCache builds an empty cache.
func NewCache(load Loader, ttl time.Duration, policy domain.GiftCardPolicy, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock
	}
	return &Cache{
		load:   load,
		ttl:    ttl,
		clock:  clock,
		policy: policy,
		log:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used for refresh outcomes.
func (c *Cache) SetLogger(l zerolog.Logger) { c.log = l }

// WithPublisher injects a publisher for refresh events.
func (c *Cache) WithPublisher(p evdomain.Publisher) *Cache { c.pub = p; return c }

// TTL is the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Current returns the published snapshot, or nil before the first refresh.
func (c *Cache) Current() *Snapshot { return c.entry.Load() }

// Get returns a snapshot for req.
//
// A fresh snapshot is returned as is. A stale one triggers a refresh that
// the caller waits for, unless a refresh is already running, in which case
// the stale snapshot is served. ForceRefresh always waits for a refresh that
// started after the call. Refresh failures leave the published snapshot
// untouched and are returned to the callers waiting on that refresh.
func (c *Cache) Get(ctx context.Context, req Request) (Result, error) {
	needDetail := c.policy == domain.GiftCardLazy && req.RequireDetail

	if !req.ForceRefresh {
		if s := c.entry.Load(); s != nil && usable(s, needDetail) && c.fresh(s) {
			metrics.IncCacheLookup("hit")
			return c.cached(s), nil
		}
	}

	c.mu.Lock()
	if !req.ForceRefresh {
		if s := c.entry.Load(); s != nil && usable(s, needDetail) {
			if c.fresh(s) {
				c.mu.Unlock()
				metrics.IncCacheLookup("hit")
				return c.cached(s), nil
			}
			if c.inflight != nil {
				c.mu.Unlock()
				metrics.IncCacheLookup("stale")
				return c.cached(s), nil
			}
		}
	}
	if needDetail {
		c.wantDetail = true
	}
	r := c.scheduleLocked(ctx, req.ForceRefresh, needDetail)
	c.mu.Unlock()

	if req.ForceRefresh {
		metrics.IncCacheLookup("forced")
	} else {
		metrics.IncCacheLookup("miss")
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	if r.err != nil {
		return Result{}, r.err
	}
	return Result{Snapshot: r.snap, FromCache: false, Age: c.clock.Now().Sub(r.snap.BuiltAt)}, nil
}

func usable(s *Snapshot, needDetail bool) bool { return !needDetail || s.Detailed }

func (c *Cache) fresh(s *Snapshot) bool { return c.clock.Now().Sub(s.BuiltAt) < c.ttl }

func (c *Cache) cached(s *Snapshot) Result {
	return Result{Snapshot: s, FromCache: true, Age: c.clock.Now().Sub(s.BuiltAt)}
}

func (c *Cache) detailFor() bool {
	switch c.policy {
	case domain.GiftCardEager:
		return true
	case domain.GiftCardOff:
		return false
	default:
		return c.wantDetail
	}
}

// scheduleLocked returns the refresh the caller should wait on: a new one
// when nothing runs, the running one when it satisfies the caller, else the
// single queued refresh that starts once the running one ends.
func (c *Cache) scheduleLocked(ctx context.Context, force, needDetail bool) *refresh {
	detail := c.detailFor()
	if c.inflight == nil {
		r := &refresh{ctx: context.WithoutCancel(ctx), detail: detail, done: make(chan struct{})}
		c.startLocked(r)
		return r
	}
	if !force && (c.inflight.detail || !needDetail) {
		return c.inflight
	}
	if c.pending == nil {
		c.pending = &refresh{ctx: context.WithoutCancel(ctx), done: make(chan struct{})}
	}
	c.pending.detail = c.pending.detail || detail
	return c.pending
}

func (c *Cache) startLocked(r *refresh) {
	c.seq++
	r.gen = c.seq
	c.inflight = r
	go c.run(r)
}

func (c *Cache) run(r *refresh) {
	start := time.Now()
	recs, err := c.safeLoad(r)

	c.mu.Lock()
	if err != nil {
		r.err = err
	} else {
		snap := &Snapshot{Records: recs, BuiltAt: c.clock.Now(), Generation: r.gen, Detailed: r.detail}
		if cur := c.entry.Load(); cur == nil || cur.Generation < snap.Generation {
			c.entry.Store(snap)
		}
		r.snap = snap
	}
	c.inflight = nil
	if next := c.pending; next != nil {
		c.pending = nil
		c.startLocked(next)
	}
	c.mu.Unlock()
	close(r.done)

	c.report(r, time.Since(start))
}

func (c *Cache) safeLoad(r *refresh) (recs []domain.CustomerRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("customer refresh panicked: %v", p)
		}
	}()
	return c.load(r.ctx, r.detail)
}

func (c *Cache) report(r *refresh, took time.Duration) {
	meta := map[string]string{
		"generation": fmt.Sprint(r.gen),
		"detailed":   fmt.Sprint(r.detail),
		"duration":   took.String(),
	}
	if r.err != nil {
		metrics.ObserveCacheRefresh("failure", took.Seconds())
		c.log.Error().Err(r.err).Uint64("generation", r.gen).Dur("took", took).Msg("customer cache refresh failed")
		c.publish(r.ctx, "customers.cache.refresh_failed", meta)
		return
	}
	metrics.ObserveCacheRefresh("success", took.Seconds())
	metrics.SetCachedCustomers(len(r.snap.Records))
	c.log.Info().
		Uint64("generation", r.gen).
		Bool("detailed", r.detail).
		Int("customers", len(r.snap.Records)).
		Dur("took", took).
		Msg("customer cache refreshed")
	meta["customers"] = fmt.Sprint(len(r.snap.Records))
	c.publish(r.ctx, "customers.cache.refreshed", meta)
}

func (c *Cache) publish(ctx context.Context, typ string, meta map[string]string) {
	if c.pub == nil {
		return
	}
	_ = c.pub.Publish(ctx, evdomain.Event{ID: uuid.New(), Type: typ, Meta: meta, Time: time.Now().UTC()})
}
