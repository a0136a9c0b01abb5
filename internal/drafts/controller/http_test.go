package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/validation"
	tdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

type fakeBatcher struct {
	reqs     []ddomain.BatchRequest
	res      ddomain.BatchResult
	err      error
	checkErr error
}

func (f *fakeBatcher) CreateBatch(_ context.Context, req ddomain.BatchRequest) (ddomain.BatchResult, error) {
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

func (f *fakeBatcher) Check(context.Context) error { return f.checkErr }

func newServer(f *fakeBatcher) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	New(f).Register(e)
	return e
}

func post(e *echo.Echo, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/api/create-drafts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRealIP, "10.2.2.2")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestCreateDrafts_Success(t *testing.T) {
	f := &fakeBatcher{res: ddomain.BatchResult{
		Provider: "gmail",
		Created:  1,
		Drafts:   []ddomain.Created{{Customer: "a@x.io", DraftID: "r1"}},
		Errors:   []ddomain.Failure{{Customer: "b@x.io", Error: "boom"}},
	}}
	rec, body := post(newServer(f), `{"template_id":"comeback","boss_email":" boss@x.io ","customers":[{"id":"1","email":"a@x.io","first_name":"Ann"},{"id":"2","email":"b@x.io"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, f.reqs, 1)
	assert.Equal(t, "boss@x.io", f.reqs[0].BossEmail)
	require.Len(t, f.reqs[0].Customers, 2)
	assert.Equal(t, "Ann", f.reqs[0].Customers[0].FirstName)

	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["created"])
	assert.Equal(t, "gmail", body["provider"])
	assert.Len(t, body["drafts"], 1)
	assert.Len(t, body["errors"], 1)
}

func TestCreateDrafts_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"missing boss", `{"template_id":"comeback","boss_email":"  "}`, nil, http.StatusBadRequest, "Boss email is required"},
		{"bad boss", `{"template_id":"comeback","boss_email":"nope"}`, nil, http.StatusBadRequest, ""},
		{"missing template id", `{"boss_email":"b@x.io"}`, nil, http.StatusBadRequest, ""},
		{"malformed", `{`, nil, http.StatusBadRequest, "invalid json"},
		{"unknown template", `{"template_id":"x","boss_email":"b@x.io"}`, tdomain.ErrTemplateNotFound, http.StatusNotFound, "Template not found"},
		{"provider", `{"template_id":"x","boss_email":"b@x.io"}`, errors.New("smtp not configured"), http.StatusInternalServerError, "smtp not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := post(newServer(&fakeBatcher{err: tt.err}), tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}
}

func TestCreateDrafts_AuthRequired(t *testing.T) {
	rec, body := post(newServer(&fakeBatcher{err: ddomain.ErrAuthRequired}), `{"template_id":"comeback","boss_email":"b@x.io"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, true, body["auth_required"])
}

func TestCreateDrafts_RateLimited(t *testing.T) {
	e := newServer(&fakeBatcher{})
	for i := 0; i < 10; i++ {
		rec, _ := post(e, `{"template_id":"comeback","boss_email":"b@x.io"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ := post(e, `{"template_id":"comeback","boss_email":"b@x.io"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGmailAuthStatus(t *testing.T) {
	get := func(f *fakeBatcher) map[string]any {
		rec := httptest.NewRecorder()
		newServer(f).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/gmail", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	ready := get(&fakeBatcher{})
	assert.Equal(t, true, ready["success"])

	out := get(&fakeBatcher{checkErr: ddomain.ErrAuthRequired})
	assert.Equal(t, false, out["success"])
	assert.Equal(t, true, out["auth_required"])
	assert.Equal(t, "Please configure Gmail OAuth", out["message"])
}
