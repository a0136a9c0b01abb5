package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single product line of an order. ProductType carries the
// upstream category tag; GiftCard is set when the platform flags the line
// as a gift card directly.
type LineItem struct {
	Title       string
	ProductType string
	GiftCard    bool
}

// RawOrder is one upstream order. It is never modified after fetch.
type RawOrder struct {
	ID         string
	CustomerID string
	CreatedAt  time.Time
	Total      decimal.Decimal
	LineItems  []LineItem
}

// CustomerIdentity is the customer data copied verbatim from the platform.
type CustomerIdentity struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	// CreatedAt is the account creation time, when the platform reports one.
	CreatedAt *time.Time
}

// CustomerOrders pairs a customer with every order fetched for them.
type CustomerOrders struct {
	Customer CustomerIdentity
	Orders   []RawOrder
}

// CustomerRecord is the aggregated view of one customer.
//
// OrderCount always equals len(OrderTimestamps), LastOrderDate is the last
// element of OrderTimestamps (nil without orders) and TotalSpent is the
// exact sum of the order totals.
type CustomerRecord struct {
	CustomerIdentity

	OrderCount          int
	TotalSpent          decimal.Decimal
	CustomerSince       *time.Time
	LastOrderDate       *time.Time
	OrderTimestamps     []time.Time
	HasGiftCardPurchase bool
}

// FullName is "first last" with blanks dropped.
func (r CustomerRecord) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	default:
		return r.FirstName + " " + r.LastName
	}
}

// FetchOptions controls how much order detail the fetcher pulls.
type FetchOptions struct {
	// IncludeLineItems requests full line items, needed only for gift-card
	// detection and noticeably more expensive upstream.
	IncludeLineItems bool
}

// Fetcher pages through the commerce platform and returns every customer
// with their orders. Pagination and retries are its own concern.
type Fetcher interface {
	FetchAll(ctx context.Context, opts FetchOptions) ([]CustomerOrders, error)
}

// GiftCardPolicy decides when line-item detail is loaded.
type GiftCardPolicy string

const (
	// GiftCardLazy loads detail the first time a query filters on gift cards
	// and keeps loading it on later refreshes.
	GiftCardLazy GiftCardPolicy = "lazy"
	// GiftCardEager loads detail on every refresh.
	GiftCardEager GiftCardPolicy = "eager"
	// GiftCardOff never loads detail; gift-card filters match nothing.
	GiftCardOff GiftCardPolicy = "off"
)

// ParseGiftCardPolicy maps a config string to a policy, defaulting to lazy.
func ParseGiftCardPolicy(s string) GiftCardPolicy {
	switch GiftCardPolicy(s) {
	case GiftCardEager, GiftCardOff:
		return GiftCardPolicy(s)
	default:
		return GiftCardLazy
	}
}
