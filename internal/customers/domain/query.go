package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FilterCriteria is the parsed filter configuration. A nil pointer or an
// empty string means "no constraint" for that field.
type FilterCriteria struct {
	Search string

	MinOrders *decimal.Decimal
	MaxOrders *decimal.Decimal
	MinSpent  *decimal.Decimal
	MaxSpent  *decimal.Decimal

	// DaysSinceOrder keeps customers whose last order is at least this many
	// days old.
	DaysSinceOrder *int

	// Winback keeps customers with a gap of at least WinbackGapDays between
	// two consecutive orders.
	Winback        bool
	WinbackGapDays int

	GiftCardRequired bool

	// RequireEmail drops customers that cannot be contacted.
	RequireEmail bool
}

// RawCriteria is FilterCriteria as it arrives from a query string.
type RawCriteria struct {
	Search         string `query:"search"`
	MinOrders      string `query:"min_orders"`
	MaxOrders      string `query:"max_orders"`
	MinSpent       string `query:"min_spent"`
	MaxSpent       string `query:"max_spent"`
	DaysSinceOrder string `query:"days_since_order"`
	Winback        string `query:"winback"`
	WinbackGapDays string `query:"winback_gap_days"`
	GiftCard       string `query:"gift_card"`
}

// SortKey selects the field results are ordered by.
type SortKey string

const (
	SortLastOrderDate SortKey = "last_order_date"
	SortOrderCount    SortKey = "order_count"
	SortTotalSpent    SortKey = "total_spent"
	SortCustomerSince SortKey = "customer_since"
	SortName          SortKey = "name"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Query is one request against the customer set.
type Query struct {
	Criteria      FilterCriteria
	SortKey       SortKey
	SortDirection SortDirection
	ForceRefresh  bool
}

// CacheInfo describes the snapshot a query was answered from.
type CacheInfo struct {
	FromCache       bool `json:"from_cache"`
	CacheAgeSeconds int  `json:"cache_age_seconds"`
	CacheTTLSeconds int  `json:"cache_ttl_seconds"`
	TotalCustomers  int  `json:"total_customers"`
}

// CustomerView is the display shape of a CustomerRecord.
type CustomerView struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	OrderCount          int        `json:"order_count"`
	TotalSpent          float64    `json:"total_spent"`
	LastOrderDate       *time.Time `json:"last_order_date"`
	CustomerSince       *time.Time `json:"customer_since"`
	DaysSinceLastOrder  *int       `json:"days_since_last_order"`
	HasGiftCardPurchase bool       `json:"has_gift_card_purchase"`
}

// QueryResult is what Service.Query returns.
type QueryResult struct {
	Customers []CustomerView
	CacheInfo CacheInfo
}

// Service answers customer queries.
type Service interface {
	Query(ctx context.Context, q Query) (QueryResult, error)
}
