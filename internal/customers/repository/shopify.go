package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/metrics"
)

// Ensure Shopify implements domain.Fetcher
var _ domain.Fetcher = (*Shopify)(nil)

const (
	customerFields = "id,email,first_name,last_name,created_at"
	orderFields    = "id,customer,created_at,total_price"
)

var nextLinkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Options configures the Shopify Admin REST client.
type Options struct {
	StoreURL    string
	AccessToken string
	APIVersion  string
	PageSize    int
	MaxRetries  int
	PageDelay   time.Duration
	// Backoff is the base delay for exponential backoff between retries.
	Backoff time.Duration
}

// OptionsFromConfig maps app config onto client options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		StoreURL:    cfg.ShopifyStoreURL,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		PageSize:    cfg.ShopifyPageSize,
		MaxRetries:  cfg.ShopifyMaxRetries,
		PageDelay:   cfg.ShopifyPageDelay,
		Backoff:     time.Second,
	}
}

// Shopify reads customers and their orders from the Shopify Admin REST API.
type Shopify struct {
	opts  Options
	http  *http.Client
	log   zerolog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewShopify(opts Options, client *http.Client) *Shopify {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.PageSize <= 0 || opts.PageSize > 250 {
		opts.PageSize = 250
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2024-01"
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Shopify{opts: opts, http: client, log: zerolog.Nop(), sleep: sleepCtx}
}

// SetLogger sets the logger used for paging and retry diagnostics.
func (s *Shopify) SetLogger(l zerolog.Logger) { s.log = l }

// FetchAll lists every customer and every order and groups the orders by
// customer. Guest orders are skipped. Orders whose customer is missing from
// the customer listing are returned under an empty identity.
func (s *Shopify) FetchAll(ctx context.Context, opts domain.FetchOptions) ([]domain.CustomerOrders, error) {
	if s.opts.StoreURL == "" || s.opts.AccessToken == "" {
		return nil, &domain.FetchError{Op: "customers", Err: errors.New("shopify store url or access token not configured")}
	}

	// Orders are listed before customers so that a customer who signs up and
	// orders mid-refresh is present in the later customer listing.
	orders, err := s.fetchOrders(ctx, opts.IncludeLineItems)
	if err != nil {
		return nil, err
	}
	customers, err := s.fetchCustomers(ctx)
	if err != nil {
		return nil, err
	}

	history := make([]domain.CustomerOrders, len(customers))
	index := make(map[string]int, len(customers))
	for i, c := range customers {
		history[i] = domain.CustomerOrders{Customer: c}
		index[c.ID] = i
	}
	var orphans []domain.RawOrder
	for _, o := range orders {
		i, ok := index[o.CustomerID]
		if !ok {
			orphans = append(orphans, o)
			continue
		}
		history[i].Orders = append(history[i].Orders, o)
	}
	if len(orphans) > 0 {
		s.log.Warn().Int("orders", len(orphans)).Msg("orders reference customers missing from the customer listing")
		history = append(history, domain.CustomerOrders{Orders: orphans})
	}
	s.log.Info().
		Int("customers", len(customers)).
		Int("orders", len(orders)).
		Bool("line_items", opts.IncludeLineItems).
		Msg("fetched shopify order history")
	return history, nil
}

type shopifyCustomer struct {
	ID        json.Number `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	CreatedAt string      `json:"created_at"`
}

type shopifyLineItem struct {
	Title       string `json:"title"`
	ProductType string `json:"product_type"`
	GiftCard    bool   `json:"gift_card"`
}

type shopifyOrder struct {
	ID         json.Number `json:"id"`
	CreatedAt  string      `json:"created_at"`
	TotalPrice string      `json:"total_price"`
	Customer   *struct {
		ID json.Number `json:"id"`
	} `json:"customer"`
	LineItems []shopifyLineItem `json:"line_items"`
}

func (s *Shopify) fetchCustomers(ctx context.Context) ([]domain.CustomerIdentity, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(s.opts.PageSize))
	q.Set("fields", customerFields)

	var out []domain.CustomerIdentity
	err := s.paginate(ctx, "customers", q, func(body []byte) error {
		var page struct {
			Customers []shopifyCustomer `json:"customers"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode customers page: %w", err)
		}
		for _, c := range page.Customers {
			ident := domain.CustomerIdentity{
				ID:        c.ID.String(),
				Email:     strings.TrimSpace(c.Email),
				FirstName: c.FirstName,
				LastName:  c.LastName,
			}
			if t, err := parseTime(c.CreatedAt); err == nil {
				ident.CreatedAt = &t
			}
			out = append(out, ident)
		}
		return nil
	})
	return out, err
}

func (s *Shopify) fetchOrders(ctx context.Context, lineItems bool) ([]domain.RawOrder, error) {
	fields := orderFields
	if lineItems {
		fields += ",line_items"
	}
	q := url.Values{}
	q.Set("status", "any")
	q.Set("limit", strconv.Itoa(s.opts.PageSize))
	q.Set("fields", fields)

	var out []domain.RawOrder
	err := s.paginate(ctx, "orders", q, func(body []byte) error {
		var page struct {
			Orders []shopifyOrder `json:"orders"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode orders page: %w", err)
		}
		for _, o := range page.Orders {
			if o.Customer == nil || o.Customer.ID == "" {
				continue
			}
			ro, err := toRawOrder(o)
			if err != nil {
				return err
			}
			out = append(out, ro)
		}
		return nil
	})
	return out, err
}

func toRawOrder(o shopifyOrder) (domain.RawOrder, error) {
	created, err := parseTime(o.CreatedAt)
	if err != nil {
		return domain.RawOrder{}, fmt.Errorf("order %s: invalid created_at %q", o.ID, o.CreatedAt)
	}
	total := decimal.Zero
	if strings.TrimSpace(o.TotalPrice) != "" {
		total, err = decimal.NewFromString(strings.TrimSpace(o.TotalPrice))
		if err != nil {
			return domain.RawOrder{}, fmt.Errorf("order %s: invalid total_price %q", o.ID, o.TotalPrice)
		}
	}
	ro := domain.RawOrder{
		ID:         o.ID.String(),
		CustomerID: o.Customer.ID.String(),
		CreatedAt:  created,
		Total:      total,
	}
	if len(o.LineItems) > 0 {
		ro.LineItems = make([]domain.LineItem, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			ro.LineItems = append(ro.LineItems, domain.LineItem{Title: li.Title, ProductType: li.ProductType, GiftCard: li.GiftCard})
		}
	}
	return ro, nil
}

// paginate walks a listing endpoint following Link rel="next" headers and
// hands every page body to fn.
func (s *Shopify) paginate(ctx context.Context, resource string, q url.Values, fn func(body []byte) error) error {
	next := s.endpoint(resource + ".json?" + q.Encode())
	for page := 1; next != ""; page++ {
		if page > 1 && s.opts.PageDelay > 0 {
			if err := s.sleep(ctx, s.opts.PageDelay); err != nil {
				return &domain.FetchError{Op: resource, Err: err}
			}
		}
		body, link, err := s.get(ctx, resource, next)
		if err != nil {
			return err
		}
		if err := fn(body); err != nil {
			return &domain.FetchError{Op: resource, Err: err}
		}
		s.log.Debug().Str("resource", resource).Int("page", page).Msg("fetched page")
		next = nextLink(link)
	}
	return nil
}

func (s *Shopify) endpoint(path string) string {
	base := s.opts.StoreURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return strings.TrimSuffix(base, "/") + "/admin/api/" + s.opts.APIVersion + "/" + path
}

// get performs one GET with retries on rate limiting (429, honouring
// Retry-After), server errors and transport failures.
func (s *Shopify) get(ctx context.Context, resource, rawURL string) ([]byte, string, error) {
	var lastErr error
	lastStatus := 0
	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		backoff := s.opts.Backoff * time.Duration(1<<attempt)
		last := attempt == s.opts.MaxRetries-1

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", &domain.FetchError{Op: resource, Err: err}
		}
		req.Header.Set("X-Shopify-Access-Token", s.opts.AccessToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := s.http.Do(req)
		if err != nil {
			metrics.IncUpstreamRequest(resource, "error")
			if ctx.Err() != nil {
				return nil, "", &domain.FetchError{Op: resource, Err: ctx.Err()}
			}
			lastErr, lastStatus = err, 0
			if last {
				break
			}
			metrics.IncUpstreamRetry(resource, "transport")
			s.log.Warn().Err(err).Str("resource", resource).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("shopify request failed, retrying")
			if err := s.sleep(ctx, backoff); err != nil {
				return nil, "", &domain.FetchError{Op: resource, Err: err}
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		metrics.IncUpstreamRequest(resource, strconv.Itoa(resp.StatusCode))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr, lastStatus = errors.New("rate limited"), resp.StatusCode
			if last {
				break
			}
			wait := retryAfter(resp.Header.Get("Retry-After"), 2*time.Second)
			if backoff < wait {
				wait = backoff
			}
			metrics.IncUpstreamRetry(resource, "rate_limited")
			s.log.Warn().Str("resource", resource).Int("attempt", attempt+1).Dur("sleep", wait).Msg("shopify rate limited")
			if err := s.sleep(ctx, wait); err != nil {
				return nil, "", &domain.FetchError{Op: resource, Err: err}
			}
			continue
		case resp.StatusCode >= 500:
			lastErr, lastStatus = fmt.Errorf("server error: %s", strings.TrimSpace(string(body))), resp.StatusCode
			if last {
				break
			}
			metrics.IncUpstreamRetry(resource, "server_error")
			if err := s.sleep(ctx, backoff); err != nil {
				return nil, "", &domain.FetchError{Op: resource, Err: err}
			}
			continue
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, "", &domain.FetchError{Op: resource, StatusCode: resp.StatusCode, Err: errors.New("shopify rejected the access token")}
		case resp.StatusCode >= 300:
			return nil, "", &domain.FetchError{Op: resource, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body)))}
		}
		if resp.StatusCode < 300 {
			if readErr != nil {
				return nil, "", &domain.FetchError{Op: resource, Err: readErr}
			}
			return body, resp.Header.Get("Link"), nil
		}
		break
	}
	if lastErr == nil {
		lastErr = errors.New("max retries exceeded")
	}
	return nil, "", &domain.FetchError{Op: resource, StatusCode: lastStatus, Err: fmt.Errorf("giving up after %d attempts: %w", s.opts.MaxRetries, lastErr)}
}

func nextLink(header string) string {
	if !strings.Contains(header, `rel="next"`) {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		if m := nextLinkRe.FindStringSubmatch(strings.TrimSpace(part)); m != nil {
			return m[1]
		}
	}
	return ""
}

func retryAfter(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
