package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "outreach"

var (
	// rateLimitExceeded counts HTTP 429 events from the rate limit middleware.
	// Labels:
	// - endpoint: short name like "customers:refresh", "drafts:create"
	rateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Number of requests rejected due to rate limiting (HTTP 429)",
		},
		[]string{"endpoint"},
	)

	// cacheLookups counts customer cache lookups.
	// Labels:
	// - outcome: hit | stale | miss | forced
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "customer_cache",
			Name:      "lookups_total",
			Help:      "Customer cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	// cacheRefreshDuration observes full fetch+aggregate refreshes.
	// Labels:
	// - result: success | failure
	cacheRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "customer_cache",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of customer cache refreshes.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"result"},
	)

	cachedCustomers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "customer_cache",
		Name:      "customers",
		Help:      "Number of customers in the published snapshot.",
	})

	// upstreamRequests counts requests to the commerce platform.
	// Labels:
	// - resource: customers | orders
	// - status: HTTP status code or "error"
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shopify",
			Name:      "requests_total",
			Help:      "Requests sent to the Shopify Admin API.",
		},
		[]string{"resource", "status"},
	)

	upstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shopify",
			Name:      "retries_total",
			Help:      "Retried Shopify requests by reason.",
		},
		[]string{"resource", "reason"},
	)

	// draftsTotal counts drafts by provider and result.
	draftsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drafts",
			Name:      "created_total",
			Help:      "Draft creation attempts by provider and result.",
		},
		[]string{"provider", "result"},
	)
)

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// IncRateLimitExceeded increments the 429 counter for the given endpoint.
func IncRateLimitExceeded(endpoint string) {
	rateLimitExceeded.WithLabelValues(orUnknown(endpoint)).Inc()
}

// IncCacheLookup records one customer cache lookup.
func IncCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(orUnknown(outcome)).Inc()
}

// ObserveCacheRefresh records a refresh duration in seconds.
func ObserveCacheRefresh(result string, seconds float64) {
	cacheRefreshDuration.WithLabelValues(orUnknown(result)).Observe(seconds)
}

// SetCachedCustomers sets the size of the published snapshot.
func SetCachedCustomers(n int) { cachedCustomers.Set(float64(n)) }

// IncUpstreamRequest records one Shopify request.
func IncUpstreamRequest(resource, status string) {
	upstreamRequests.WithLabelValues(orUnknown(resource), orUnknown(status)).Inc()
}

// IncUpstreamRetry records one retried Shopify request.
func IncUpstreamRetry(resource, reason string) {
	upstreamRetries.WithLabelValues(orUnknown(resource), orUnknown(reason)).Inc()
}

// IncDraft records a draft attempt.
func IncDraft(provider, result string) {
	draftsTotal.WithLabelValues(orUnknown(provider), orUnknown(result)).Inc()
}
