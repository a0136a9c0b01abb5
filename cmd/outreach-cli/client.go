package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API response structures
type CustomerResponse struct {
	ID                 string  `json:"id" yaml:"id"`
	Email              string  `json:"email" yaml:"email"`
	FirstName          string  `json:"first_name" yaml:"first_name"`
	LastName           string  `json:"last_name" yaml:"last_name"`
	OrderCount         int     `json:"order_count" yaml:"order_count"`
	TotalSpent         float64 `json:"total_spent" yaml:"total_spent"`
	LastOrderDate      *string `json:"last_order_date" yaml:"last_order_date"`
	DaysSinceLastOrder *int    `json:"days_since_last_order" yaml:"days_since_last_order"`
	HasGiftCard        bool    `json:"has_gift_card_purchase" yaml:"has_gift_card_purchase"`
}

type CacheInfo struct {
	FromCache       bool `json:"from_cache" yaml:"from_cache"`
	CacheAgeSeconds int  `json:"cache_age_seconds" yaml:"cache_age_seconds"`
	CacheTTLSeconds int  `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	TotalCustomers  int  `json:"total_customers" yaml:"total_customers"`
}

type CustomerListResponse struct {
	Customers      []CustomerResponse `json:"customers" yaml:"customers"`
	Count          int                `json:"count" yaml:"count"`
	TotalCustomers int                `json:"total_customers" yaml:"total_customers"`
	CacheInfo      CacheInfo          `json:"cache_info" yaml:"cache_info"`
	FiltersApplied map[string]any     `json:"filters_applied" yaml:"filters_applied"`
}

type TemplateResponse struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Subject string `json:"subject" yaml:"subject"`
}

type PreviewResponse struct {
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
}

type DraftsResponse struct {
	Provider string `json:"provider" yaml:"provider"`
	Created  int    `json:"created" yaml:"created"`
	Drafts   []struct {
		Customer string `json:"customer" yaml:"customer"`
		DraftID  string `json:"draft_id" yaml:"draft_id"`
	} `json:"drafts" yaml:"drafts"`
	Errors []struct {
		Customer string `json:"customer" yaml:"customer"`
		Error    string `json:"error" yaml:"error"`
	} `json:"errors" yaml:"errors"`
}

type HealthResponse struct {
	Status            string `json:"status" yaml:"status"`
	Version           string `json:"version" yaml:"version"`
	Time              string `json:"time" yaml:"time"`
	ShopifyConfigured bool   `json:"shopify_configured" yaml:"shopify_configured"`
	CacheLoaded       bool   `json:"cache_loaded" yaml:"cache_loaded"`
	CachedCustomers   int    `json:"cached_customers,omitempty" yaml:"cached_customers,omitempty"`
	CacheAge          int    `json:"cache_age,omitempty" yaml:"cache_age,omitempty"`
}

type ErrorResponse struct {
	Error        string `json:"error"`
	AuthRequired bool   `json:"auth_required,omitempty"`
}

// CustomerFilters mirrors the query string of GET /api/customers.
type CustomerFilters struct {
	Search         string
	MinOrders      string
	MaxOrders      string
	MinSpent       string
	MaxSpent       string
	DaysSinceOrder string
	Winback        bool
	GiftCard       bool
	SortBy         string
	SortOrder      string
	Refresh        bool
}

func (f CustomerFilters) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("search", f.Search)
	set("min_orders", f.MinOrders)
	set("max_orders", f.MaxOrders)
	set("min_spent", f.MinSpent)
	set("max_spent", f.MaxSpent)
	set("days_since_order", f.DaysSinceOrder)
	set("sort_by", f.SortBy)
	set("sort_order", f.SortOrder)
	if f.Winback {
		v.Set("winback", "true")
	}
	if f.GiftCard {
		v.Set("gift_card", "true")
	}
	if f.Refresh {
		v.Set("refresh", "true")
	}
	return v
}

// HTTP client methods
func (c *OutreachClient) makeRequest(method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	url := strings.TrimSuffix(c.BaseURL, "/") + path
	logVerbose("Making %s request to %s", method, url)

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTP
	if hc == nil {
		// customer refreshes page through the whole store
		hc = &http.Client{Timeout: 5 * time.Minute}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logVerbose("Response status: %s", resp.Status)
	return resp, nil
}

func (c *OutreachClient) handleResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			if errResp.AuthRequired {
				return fmt.Errorf("API error (%d): %s (run the Gmail OAuth setup and restart the API)", resp.StatusCode, errResp.Error)
			}
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// ListCustomers prints the filtered customer list.
func (c *OutreachClient) ListCustomers(f CustomerFilters) error {
	path := "/api/customers"
	if q := f.values().Encode(); q != "" {
		path += "?" + q
	}
	resp, err := c.makeRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	var list CustomerListResponse
	if err := c.handleResponse(resp, &list); err != nil {
		return err
	}

	if c.Format != "table" {
		return c.formatOutput(list)
	}
	tw := c.table()
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tORDERS\tSPENT\tLAST ORDER\tDAYS\tGIFT CARD")
	for _, cu := range list.Customers {
		last, days := "-", "-"
		if cu.LastOrderDate != nil {
			last = shortDate(*cu.LastOrderDate)
		}
		if cu.DaysSinceLastOrder != nil {
			days = fmt.Sprint(*cu.DaysSinceLastOrder)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%s\t%s\t%s\n",
			cu.ID,
			strings.TrimSpace(cu.FirstName+" "+cu.LastName),
			cu.Email,
			cu.OrderCount,
			cu.TotalSpent,
			last,
			days,
			yesNo(cu.HasGiftCard))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	source := "fresh"
	if list.CacheInfo.FromCache {
		source = fmt.Sprintf("cached %ds ago", list.CacheInfo.CacheAgeSeconds)
	}
	fmt.Fprintf(c.out(), "\nShowing %d of %d customers (%s)\n", list.Count, list.TotalCustomers, source)
	return nil
}

func (c *OutreachClient) ListTemplates() error {
	resp, err := c.makeRequest(http.MethodGet, "/api/templates", nil)
	if err != nil {
		return err
	}
	var out struct {
		Templates []TemplateResponse `json:"templates"`
	}
	if err := c.handleResponse(resp, &out); err != nil {
		return err
	}

	if c.Format != "table" {
		return c.formatOutput(out.Templates)
	}
	tw := c.table()
	fmt.Fprintln(tw, "ID\tNAME\tSUBJECT")
	for _, t := range out.Templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Subject)
	}
	return tw.Flush()
}

// PreviewTemplate renders templateID for a sample recipient.
func (c *OutreachClient) PreviewTemplate(templateID string, customer map[string]string) error {
	payload := map[string]any{"template_id": templateID}
	if len(customer) > 0 {
		payload["customer"] = customer
	}
	resp, err := c.makeRequest(http.MethodPost, "/api/preview-template", payload)
	if err != nil {
		return err
	}
	var out PreviewResponse
	if err := c.handleResponse(resp, &out); err != nil {
		return err
	}

	if c.Format != "table" {
		return c.formatOutput(out)
	}
	w := c.out()
	fmt.Fprintf(w, "Subject: %s\n", out.Subject)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, out.Body)
	return nil
}

// CreateDrafts asks the API for one draft per customer.
func (c *OutreachClient) CreateDrafts(templateID, bossEmail string, customers []map[string]string) error {
	payload := map[string]any{
		"template_id": templateID,
		"boss_email":  bossEmail,
		"customers":   customers,
	}
	resp, err := c.makeRequest(http.MethodPost, "/api/create-drafts", payload)
	if err != nil {
		return err
	}
	var out DraftsResponse
	if err := c.handleResponse(resp, &out); err != nil {
		return err
	}

	if c.Format != "table" {
		return c.formatOutput(out)
	}
	w := c.out()
	fmt.Fprintf(w, "Created %d drafts via %s\n", out.Created, out.Provider)
	for _, d := range out.Drafts {
		fmt.Fprintf(w, "  %s: %s\n", d.Customer, d.DraftID)
	}
	if len(out.Errors) > 0 {
		fmt.Fprintf(w, "\n%d failed:\n", len(out.Errors))
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.Customer, e.Error)
		}
	}
	return nil
}

// Health check method
func (c *OutreachClient) CheckHealth() error {
	resp, err := c.makeRequest(http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	var health HealthResponse
	if err := c.handleResponse(resp, &health); err != nil {
		return err
	}

	if c.Format != "table" {
		return c.formatOutput(health)
	}
	w := c.out()
	fmt.Fprintf(w, "Outreach API Health Status:\n")
	fmt.Fprintf(w, "Status: %s\n", health.Status)
	fmt.Fprintf(w, "Version: %s\n", health.Version)
	fmt.Fprintf(w, "Shopify configured: %s\n", yesNo(health.ShopifyConfigured))
	if health.CacheLoaded {
		fmt.Fprintf(w, "Cache: %d customers, %ds old\n", health.CachedCustomers, health.CacheAge)
	} else {
		fmt.Fprintf(w, "Cache: empty\n")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func shortDate(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}
