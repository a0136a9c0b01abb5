package service

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(days int) time.Time { return epoch.Add(time.Duration(days) * 24 * time.Hour) }

func order(id, customer string, days int, total string, items ...domain.LineItem) domain.RawOrder {
	return domain.RawOrder{
		ID:         id,
		CustomerID: customer,
		CreatedAt:  at(days),
		Total:      decimal.RequireFromString(total),
		LineItems:  items,
	}
}

func TestAggregate_Metrics(t *testing.T) {
	created := at(-30)
	history := []domain.CustomerOrders{{
		Customer: domain.CustomerIdentity{ID: "c1", FirstName: "Ann", LastName: "Archer", Email: "ann@example.com", CreatedAt: &created},
		Orders: []domain.RawOrder{
			order("o3", "c1", 40, "0.30"),
			order("o1", "c1", 0, "0.10"),
			order("o2", "c1", 10, "0.20", domain.LineItem{Title: "Mug", ProductType: "Kitchen"}),
		},
	}}

	recs, err := NewAggregator("").Aggregate(history)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	r := recs[0]

	assert.Equal(t, 3, r.OrderCount)
	assert.True(t, r.TotalSpent.Equal(decimal.RequireFromString("0.60")), "exact sum, got %s", r.TotalSpent)
	assert.Equal(t, []time.Time{at(0), at(10), at(40)}, r.OrderTimestamps)
	require.NotNil(t, r.LastOrderDate)
	assert.Equal(t, at(40), *r.LastOrderDate)
	require.NotNil(t, r.CustomerSince)
	assert.Equal(t, created, *r.CustomerSince)
	assert.False(t, r.HasGiftCardPurchase)
}

func TestAggregate_CustomerSinceFallsBackToFirstOrder(t *testing.T) {
	history := []domain.CustomerOrders{{
		Customer: domain.CustomerIdentity{ID: "c1"},
		Orders:   []domain.RawOrder{order("o1", "c1", 5, "1"), order("o2", "c1", 2, "1")},
	}}
	recs, err := NewAggregator("").Aggregate(history)
	require.NoError(t, err)
	require.NotNil(t, recs[0].CustomerSince)
	assert.Equal(t, at(2), *recs[0].CustomerSince)
}

func TestAggregate_ZeroOrders(t *testing.T) {
	recs, err := NewAggregator("").Aggregate([]domain.CustomerOrders{{Customer: domain.CustomerIdentity{ID: "c1"}}})
	require.NoError(t, err)
	r := recs[0]
	assert.Equal(t, 0, r.OrderCount)
	assert.True(t, r.TotalSpent.IsZero())
	assert.Nil(t, r.LastOrderDate)
	assert.Nil(t, r.CustomerSince)
	assert.Empty(t, r.OrderTimestamps)
}

func TestAggregate_GiftCardDetection(t *testing.T) {
	agg := NewAggregator("Gift Card")
	history := []domain.CustomerOrders{
		{Customer: domain.CustomerIdentity{ID: "flag"}, Orders: []domain.RawOrder{
			order("o1", "flag", 0, "25", domain.LineItem{Title: "Card", GiftCard: true}),
		}},
		{Customer: domain.CustomerIdentity{ID: "tag"}, Orders: []domain.RawOrder{
			order("o2", "tag", 0, "10", domain.LineItem{Title: "Tee"}),
			order("o3", "tag", 3, "50", domain.LineItem{Title: "Card", ProductType: " gift card "}),
		}},
		{Customer: domain.CustomerIdentity{ID: "none"}, Orders: []domain.RawOrder{
			order("o4", "none", 0, "10", domain.LineItem{Title: "Tee", ProductType: "Apparel"}),
		}},
	}
	recs, err := agg.Aggregate(history)
	require.NoError(t, err)
	assert.True(t, recs[0].HasGiftCardPurchase)
	assert.True(t, recs[1].HasGiftCardPurchase)
	assert.False(t, recs[2].HasGiftCardPurchase)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	orders := []domain.RawOrder{
		order("o1", "c1", 0, "10.01"),
		order("o2", "c1", 0, "20.02"),
		order("o3", "c1", 7, "30.03", domain.LineItem{GiftCard: true}),
		order("o4", "c1", 3, "40.04"),
		order("o5", "c1", 90, "0.99"),
	}
	agg := NewAggregator("")
	want, err := agg.Aggregate([]domain.CustomerOrders{{Customer: domain.CustomerIdentity{ID: "c1"}, Orders: orders}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.RawOrder(nil), orders...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, err := agg.Aggregate([]domain.CustomerOrders{{Customer: domain.CustomerIdentity{ID: "c1"}, Orders: shuffled}})
		require.NoError(t, err)
		assert.Equal(t, want[0].OrderTimestamps, got[0].OrderTimestamps)
		assert.True(t, want[0].TotalSpent.Equal(got[0].TotalSpent))
		assert.Equal(t, want[0].LastOrderDate, got[0].LastOrderDate)
		assert.Equal(t, want[0].CustomerSince, got[0].CustomerSince)
		assert.Equal(t, want[0].HasGiftCardPurchase, got[0].HasGiftCardPurchase)
		assert.Equal(t, want[0].OrderCount, got[0].OrderCount)
	}
}

func TestAggregate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var history []domain.CustomerOrders
	for c := 0; c < 30; c++ {
		id := string(rune('a' + c%26)) + string(rune('0'+c/26))
		co := domain.CustomerOrders{Customer: domain.CustomerIdentity{ID: id}}
		for o := 0; o < rng.Intn(8); o++ {
			cents := rng.Int63n(100000)
			co.Orders = append(co.Orders, domain.RawOrder{
				ID:         id + "-" + string(rune('0'+o)),
				CustomerID: id,
				CreatedAt:  at(rng.Intn(500)),
				Total:      decimal.New(cents, -2),
			})
		}
		history = append(history, co)
	}

	recs, err := NewAggregator("").Aggregate(history)
	require.NoError(t, err)
	require.Len(t, recs, len(history))
	for i, r := range recs {
		assert.Equal(t, r.OrderCount, len(r.OrderTimestamps))
		sum := decimal.Zero
		for _, o := range history[i].Orders {
			sum = sum.Add(o.Total)
		}
		assert.True(t, sum.Equal(r.TotalSpent))
		for j := 1; j < len(r.OrderTimestamps); j++ {
			assert.False(t, r.OrderTimestamps[j].Before(r.OrderTimestamps[j-1]))
		}
		if r.OrderCount > 0 {
			assert.Equal(t, r.OrderTimestamps[r.OrderCount-1], *r.LastOrderDate)
		} else {
			assert.Nil(t, r.LastOrderDate)
		}
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	orders := []domain.RawOrder{order("o2", "c1", 5, "1"), order("o1", "c1", 1, "1")}
	_, err := NewAggregator("").Aggregate([]domain.CustomerOrders{{Customer: domain.CustomerIdentity{ID: "c1"}, Orders: orders}})
	require.NoError(t, err)
	assert.Equal(t, "o2", orders[0].ID)
}

func TestAggregate_IntegrityErrors(t *testing.T) {
	tests := []struct {
		name    string
		history []domain.CustomerOrders
		orderID string
	}{
		{
			name: "order under unknown customer",
			history: []domain.CustomerOrders{
				{Customer: domain.CustomerIdentity{ID: "c1"}},
				{Orders: []domain.RawOrder{order("o9", "ghost", 0, "1")}},
			},
			orderID: "o9",
		},
		{
			name: "order grouped under the wrong customer",
			history: []domain.CustomerOrders{
				{Customer: domain.CustomerIdentity{ID: "c1"}, Orders: []domain.RawOrder{order("o1", "c2", 0, "1")}},
			},
			orderID: "o1",
		},
		{
			name: "duplicate customer",
			history: []domain.CustomerOrders{
				{Customer: domain.CustomerIdentity{ID: "c1"}},
				{Customer: domain.CustomerIdentity{ID: "c1"}},
			},
		},
		{
			name:    "customer without identity",
			history: []domain.CustomerOrders{{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := NewAggregator("").Aggregate(tt.history)
			require.Error(t, err)
			assert.Nil(t, recs)
			var ae *domain.AggregationError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.orderID, ae.OrderID)
		})
	}
}
