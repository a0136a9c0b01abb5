package domain

import "fmt"

// FetchError is returned when the commerce platform cannot be read
// (transport failure, bad credentials, unexpected status).
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: upstream returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AggregationError reports an integrity problem in fetched data, such as an
// order pointing at a customer that was never returned.
type AggregationError struct {
	CustomerID string
	OrderID    string
	Reason     string
}

func (e *AggregationError) Error() string {
	switch {
	case e.OrderID != "":
		return fmt.Sprintf("aggregate: order %q (customer %q): %s", e.OrderID, e.CustomerID, e.Reason)
	case e.CustomerID != "":
		return fmt.Sprintf("aggregate: customer %q: %s", e.CustomerID, e.Reason)
	default:
		return "aggregate: " + e.Reason
	}
}
