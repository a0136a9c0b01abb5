package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
)

const day = 24 * time.Hour

// maxDays is the longest span, in whole days, a time.Duration can hold.
// Thresholds beyond it can never be met.
const maxDays = math.MaxInt64 / int64(day)

// CriteriaDefaults fills criteria the caller may leave out.
type CriteriaDefaults struct {
	WinbackGapDays int
	RequireEmail   bool
}

// ParseCriteria turns raw query values into FilterCriteria. Malformed or
// negative numbers are treated as absent; nothing here returns an error.
func ParseCriteria(raw domain.RawCriteria, def CriteriaDefaults) domain.FilterCriteria {
	c := domain.FilterCriteria{
		Search:           strings.TrimSpace(raw.Search),
		MinOrders:        parseAmount(raw.MinOrders),
		MaxOrders:        parseAmount(raw.MaxOrders),
		MinSpent:         parseAmount(raw.MinSpent),
		MaxSpent:         parseAmount(raw.MaxSpent),
		DaysSinceOrder:   parseDays(raw.DaysSinceOrder),
		Winback:          parseFlag(raw.Winback),
		GiftCardRequired: parseFlag(raw.GiftCard),
		RequireEmail:     def.RequireEmail,
	}
	if c.Winback {
		c.WinbackGapDays = def.WinbackGapDays
		if n := parseDays(raw.WinbackGapDays); n != nil {
			c.WinbackGapDays = *n
		}
	}
	return c
}

func parseAmount(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

func parseDays(s string) *int {
	d := parseAmount(s)
	if d == nil {
		return nil
	}
	if d.GreaterThan(decimal.NewFromInt(maxDays)) {
		n := math.MaxInt
		return &n
	}
	n := int(d.Ceil().IntPart())
	return &n
}

func parseFlag(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "yes" || s == "on" {
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

type predicate func(r *domain.CustomerRecord) bool

// Filter returns the records satisfying every constraint in c. The input is
// not modified.
func Filter(records []domain.CustomerRecord, c domain.FilterCriteria, now time.Time) []domain.CustomerRecord {
	preds := compile(c, now)
	out := make([]domain.CustomerRecord, 0, len(records))
	for i := range records {
		if matchesAll(&records[i], preds) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchesAll(r *domain.CustomerRecord, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func compile(c domain.FilterCriteria, now time.Time) []predicate {
	var preds []predicate

	if c.RequireEmail {
		preds = append(preds, func(r *domain.CustomerRecord) bool {
			return strings.TrimSpace(r.Email) != ""
		})
	}
	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		preds = append(preds, func(r *domain.CustomerRecord) bool {
			hay := strings.ToLower(r.FirstName + " " + r.LastName + " " + r.Email)
			return strings.Contains(hay, q)
		})
	}
	if p := rangePredicate(c.MinOrders, c.MaxOrders, func(r *domain.CustomerRecord) decimal.Decimal {
		return decimal.NewFromInt(int64(r.OrderCount))
	}); p != nil {
		preds = append(preds, p)
	}
	if p := rangePredicate(c.MinSpent, c.MaxSpent, func(r *domain.CustomerRecord) decimal.Decimal {
		return r.TotalSpent
	}); p != nil {
		preds = append(preds, p)
	}
	if c.DaysSinceOrder != nil {
		threshold := *c.DaysSinceOrder
		preds = append(preds, func(r *domain.CustomerRecord) bool {
			if r.LastOrderDate == nil {
				return false
			}
			return DaysSince(*r.LastOrderDate, now) >= threshold
		})
	}
	if c.Winback {
		gap := c.WinbackGapDays
		preds = append(preds, func(r *domain.CustomerRecord) bool {
			return HasGapAtLeast(r.OrderTimestamps, gap)
		})
	}
	if c.GiftCardRequired {
		preds = append(preds, func(r *domain.CustomerRecord) bool {
			return r.HasGiftCardPurchase
		})
	}
	return preds
}

// rangePredicate builds an inclusive [min, max] check. It returns nil when
// neither bound is set and a reject-all predicate when min > max.
func rangePredicate(min, max *decimal.Decimal, value func(*domain.CustomerRecord) decimal.Decimal) predicate {
	switch {
	case min == nil && max == nil:
		return nil
	case min != nil && max != nil && min.GreaterThan(*max):
		return func(*domain.CustomerRecord) bool { return false }
	}
	return func(r *domain.CustomerRecord) bool {
		v := value(r)
		if min != nil && v.LessThan(*min) {
			return false
		}
		if max != nil && v.GreaterThan(*max) {
			return false
		}
		return true
	}
}

// DaysSince is the number of started days between t and now, i.e.
// ceil((now - t) / 24h).
func DaysSince(t, now time.Time) int {
	d := now.Sub(t)
	days := int(d / day)
	if d > 0 && d%day != 0 {
		days++
	}
	return days
}

// HasGapAtLeast reports whether two consecutive timestamps of the ascending
// slice ts are at least days whole days apart.
func HasGapAtLeast(ts []time.Time, days int) bool {
	for i := 1; i < len(ts); i++ {
		if int64(ts[i].Sub(ts[i-1])/day) >= int64(days) {
			return true
		}
	}
	return false
}
