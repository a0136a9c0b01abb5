package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestClient(t *testing.T, format string, h http.HandlerFunc) (*OutreachClient, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	var out bytes.Buffer
	return &OutreachClient{BaseURL: srv.URL + "/", Token: "tok", Format: format, HTTP: srv.Client(), Out: &out}, &out
}

const customersBody = `{
  "customers": [
    {"id":"7","email":"ann@example.com","first_name":"Ann","last_name":"Lee","order_count":3,"total_spent":120.5,
     "last_order_date":"2024-03-01T12:00:00Z","days_since_last_order":42,"has_gift_card_purchase":true},
    {"id":"8","email":"bo@example.com","first_name":"Bo","order_count":0,"total_spent":0,"last_order_date":null,"days_since_last_order":null}
  ],
  "success": true, "count": 2, "total_customers": 250,
  "cache_info": {"from_cache": true, "cache_age_seconds": 30, "cache_ttl_seconds": 43200, "total_customers": 250}
}`

func TestListCustomers_SendsFiltersAndPrintsTable(t *testing.T) {
	c, out := newTestClient(t, "table", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("min_spent"))
		assert.Equal(t, "true", q.Get("winback"))
		assert.Equal(t, "total_spent", q.Get("sort_by"))
		assert.False(t, q.Has("gift_card"))
		assert.False(t, q.Has("search"))
		_, _ = w.Write([]byte(customersBody))
	})

	require.NoError(t, c.ListCustomers(CustomerFilters{MinSpent: "100", Winback: true, SortBy: "total_spent"}))
	text := out.String()
	assert.Contains(t, text, "Ann Lee")
	assert.Contains(t, text, "120.50")
	assert.Contains(t, text, "2024-03-01")
	assert.Contains(t, text, "Showing 2 of 250 customers (cached 30s ago)")

	lines := strings.Split(text, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[2], "-")
}

func TestListCustomers_YAML(t *testing.T) {
	c, out := newTestClient(t, "yaml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(customersBody))
	})
	require.NoError(t, c.ListCustomers(CustomerFilters{}))

	var got CustomerListResponse
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 250, got.TotalCustomers)
	require.Len(t, got.Customers, 2)
	assert.Equal(t, "ann@example.com", got.Customers[0].Email)
	assert.True(t, got.Customers[0].HasGiftCard)
}

func TestHandleResponse_Errors(t *testing.T) {
	c, _ := newTestClient(t, "table", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/customers":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"shopify customers: 401 Unauthorized","success":false}`))
		case "/api/create-drafts":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Gmail authentication required. Please authenticate first.","success":false,"auth_required":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`not found`))
		}
	})

	err := c.ListCustomers(CustomerFilters{})
	require.Error(t, err)
	assert.Equal(t, "API error (502): shopify customers: 401 Unauthorized", err.Error())

	err = c.CreateDrafts("comeback", "boss@x.io", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuth setup")

	err = c.CheckHealth()
	require.Error(t, err)
	assert.Equal(t, "API error (404): not found", err.Error())
}

func TestPreviewTemplate(t *testing.T) {
	c, out := newTestClient(t, "table", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "comeback", body["template_id"])
		assert.Equal(t, map[string]any{"first_name": "Ann"}, body["customer"])
		_, _ = w.Write([]byte(`{"subject":"We Miss You, Ann!","body":"Hi Ann,","success":true}`))
	})
	require.NoError(t, c.PreviewTemplate("comeback", map[string]string{"first_name": "Ann"}))
	assert.Equal(t, "Subject: We Miss You, Ann!\n"+strings.Repeat("-", 60)+"\nHi Ann,\n", out.String())
}

func TestCreateDrafts_JSON(t *testing.T) {
	c, out := newTestClient(t, "json", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TemplateID string              `json:"template_id"`
			BossEmail  string              `json:"boss_email"`
			Customers  []map[string]string `json:"customers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "boss@x.io", body.BossEmail)
		require.Len(t, body.Customers, 1)
		_, _ = w.Write([]byte(`{"success":true,"provider":"smtp","created":1,"drafts":[{"customer":"a@x.io","draft_id":"smtp-1"}],"errors":[]}`))
	})
	require.NoError(t, c.CreateDrafts("thankyou", "boss@x.io", []map[string]string{{"email": "a@x.io"}}))

	var got DraftsResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "smtp", got.Provider)
	assert.Equal(t, 1, got.Created)
}

func TestFormatOutput_UnknownFormat(t *testing.T) {
	c := &OutreachClient{Format: "xml", Out: &bytes.Buffer{}}
	assert.Error(t, c.formatOutput(map[string]string{"a": "b"}))
}
