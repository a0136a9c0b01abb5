package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
)

// ParseSortKey returns the key named by s, defaulting to last_order_date.
func ParseSortKey(s string) domain.SortKey {
	switch k := domain.SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case domain.SortOrderCount, domain.SortTotalSpent, domain.SortCustomerSince, domain.SortName, domain.SortLastOrderDate:
		return k
	default:
		return domain.SortLastOrderDate
	}
}

// ParseSortDirection returns asc for "asc" and desc for anything else.
func ParseSortDirection(s string) domain.SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(domain.SortAsc)) {
		return domain.SortAsc
	}
	return domain.SortDesc
}

// Sort returns a stably sorted copy of records.
//
// Records whose sort field is missing (no last order, unknown customer
// since) always come first, whichever direction is requested. Equal keys
// keep their input order in both directions.
func Sort(records []domain.CustomerRecord, key domain.SortKey, dir domain.SortDirection) []domain.CustomerRecord {
	out := slices.Clone(records)
	compare := comparator(key)
	desc := dir == domain.SortDesc
	slices.SortStableFunc(out, func(a, b domain.CustomerRecord) int {
		c, decided := compare(a, b)
		if decided || !desc {
			return c
		}
		return -c
	})
	return out
}

// comparator returns a three-way compare for key. decided is true when the
// result comes from the missing-value rule and must not be reversed.
func comparator(key domain.SortKey) func(a, b domain.CustomerRecord) (c int, decided bool) {
	switch key {
	case domain.SortOrderCount:
		return func(a, b domain.CustomerRecord) (int, bool) {
			return cmp.Compare(a.OrderCount, b.OrderCount), false
		}
	case domain.SortTotalSpent:
		return func(a, b domain.CustomerRecord) (int, bool) {
			return a.TotalSpent.Cmp(b.TotalSpent), false
		}
	case domain.SortCustomerSince:
		return func(a, b domain.CustomerRecord) (int, bool) {
			return compareTimes(a.CustomerSince, b.CustomerSince)
		}
	case domain.SortName:
		return func(a, b domain.CustomerRecord) (int, bool) {
			if c := strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)); c != 0 {
				return c, false
			}
			return strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)), false
		}
	default:
		return func(a, b domain.CustomerRecord) (int, bool) {
			return compareTimes(a.LastOrderDate, b.LastOrderDate)
		}
	}
}

func compareTimes(a, b *time.Time) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	default:
		return a.Compare(*b), false
	}
}
