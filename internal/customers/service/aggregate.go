package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
)

// DefaultGiftCardProductType is the category tag Shopify uses for gift cards.
const DefaultGiftCardProductType = "gift card"

// Aggregator folds per-customer orders into CustomerRecords.
type Aggregator struct {
	// GiftCardProductType is matched case-insensitively against
	// LineItem.ProductType.
	GiftCardProductType string
}

// NewAggregator returns an Aggregator matching the given gift-card category.
func NewAggregator(giftCardProductType string) Aggregator {
	giftCardProductType = strings.TrimSpace(giftCardProductType)
	if giftCardProductType == "" {
		giftCardProductType = DefaultGiftCardProductType
	}
	return Aggregator{GiftCardProductType: giftCardProductType}
}

// Aggregate builds one record per customer, in input order. It fails on the
// first customer without an ID, duplicated customer or order that belongs
// to a different customer than the one it was grouped under.
func (a Aggregator) Aggregate(history []domain.CustomerOrders) ([]domain.CustomerRecord, error) {
	seen := make(map[string]struct{}, len(history))
	out := make([]domain.CustomerRecord, 0, len(history))
	for _, h := range history {
		id := h.Customer.ID
		if id == "" {
			ae := &domain.AggregationError{Reason: "order references an unknown customer"}
			if len(h.Orders) > 0 {
				ae.OrderID = h.Orders[0].ID
				ae.CustomerID = h.Orders[0].CustomerID
			} else {
				ae.Reason = "customer without identity"
			}
			return nil, ae
		}
		if _, dup := seen[id]; dup {
			return nil, &domain.AggregationError{CustomerID: id, Reason: "customer listed more than once"}
		}
		seen[id] = struct{}{}

		rec, err := a.aggregateOne(h)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (a Aggregator) aggregateOne(h domain.CustomerOrders) (domain.CustomerRecord, error) {
	orders := slices.Clone(h.Orders)
	for _, o := range orders {
		if o.CustomerID != h.Customer.ID {
			return domain.CustomerRecord{}, &domain.AggregationError{
				CustomerID: o.CustomerID,
				OrderID:    o.ID,
				Reason:     "order does not belong to customer " + h.Customer.ID,
			}
		}
	}
	slices.SortStableFunc(orders, func(x, y domain.RawOrder) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	rec := domain.CustomerRecord{
		CustomerIdentity: h.Customer,
		OrderCount:       len(orders),
		TotalSpent:       decimal.Zero,
		OrderTimestamps:  make([]time.Time, 0, len(orders)),
	}
	for _, o := range orders {
		rec.TotalSpent = rec.TotalSpent.Add(o.Total)
		rec.OrderTimestamps = append(rec.OrderTimestamps, o.CreatedAt)
		if !rec.HasGiftCardPurchase && a.hasGiftCard(o.LineItems) {
			rec.HasGiftCardPurchase = true
		}
	}
	if n := len(rec.OrderTimestamps); n > 0 {
		last := rec.OrderTimestamps[n-1]
		rec.LastOrderDate = &last
	}
	rec.CustomerSince = earliest(h.Customer.CreatedAt, rec.OrderTimestamps)
	return rec, nil
}

func (a Aggregator) hasGiftCard(items []domain.LineItem) bool {
	for _, li := range items {
		if li.GiftCard || strings.EqualFold(strings.TrimSpace(li.ProductType), a.GiftCardProductType) {
			return true
		}
	}
	return false
}

func earliest(created *time.Time, sorted []time.Time) *time.Time {
	var out *time.Time
	if created != nil {
		c := *created
		out = &c
	}
	if len(sorted) > 0 && (out == nil || sorted[0].Before(*out)) {
		first := sorted[0]
		out = &first
	}
	return out
}
