package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
)

// Ensure Gmail implements domain.Drafter
var _ ddomain.Drafter = (*Gmail)(nil)

const (
	gmailDraftsURL    = "https://gmail.googleapis.com/gmail/v1/users/me/drafts"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	gmailComposeScope = "https://www.googleapis.com/auth/gmail.compose"
)

// authorizedUser is the credentials JSON written by the OAuth setup script.
type authorizedUser struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RefreshToken string   `json:"refresh_token"`
	Token        string   `json:"token"`
	TokenURI     string   `json:"token_uri"`
	Expiry       string   `json:"expiry"`
	Scopes       []string `json:"scopes"`
}

// Gmail creates drafts through the Gmail REST API.
type Gmail struct {
	cfg  config.Config
	http *http.Client
	now  func() time.Time

	mu sync.Mutex
	ts oauth2.TokenSource
}

// NewGmail uses base for both token refresh and API calls.
func NewGmail(cfg config.Config, base *http.Client) *Gmail {
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gmail{cfg: cfg, http: base, now: time.Now}
}

func (g *Gmail) Name() string { return "gmail" }

// tokenSource returns the token source shared by every call on g, building
// it from the stored credentials on first use. The source keeps the access
// token until it expires, so a batch of drafts refreshes at most once.
func (g *Gmail) tokenSource() (oauth2.TokenSource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ts != nil {
		return g.ts, nil
	}
	raw := strings.TrimSpace(g.cfg.GmailCredentials)
	if raw == "" {
		return nil, ddomain.ErrAuthRequired
	}
	var cred authorizedUser
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return nil, fmt.Errorf("%w: unreadable credentials: %v", ddomain.ErrAuthRequired, err)
	}
	if cred.RefreshToken == "" && cred.Token == "" {
		return nil, ddomain.ErrAuthRequired
	}
	tokenURL := cred.TokenURI
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}
	scopes := cred.Scopes
	if len(scopes) == 0 {
		scopes = []string{gmailComposeScope}
	}
	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
		Scopes:       scopes,
	}
	tok := &oauth2.Token{AccessToken: cred.Token, RefreshToken: cred.RefreshToken, TokenType: "Bearer"}
	if cred.Expiry != "" {
		if t, err := time.Parse(time.RFC3339, cred.Expiry); err == nil {
			tok.Expiry = t
		}
	}
	if tok.AccessToken != "" && tok.Expiry.IsZero() && tok.RefreshToken != "" {
		// Unknown expiry: force a refresh rather than trust a stale token.
		tok.Expiry = g.now().Add(-time.Minute)
	}
	// Refreshes run outside any single request's context.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, g.http)
	g.ts = conf.TokenSource(ctx, tok)
	return g.ts, nil
}

// dropToken discards the cached token after the API rejected it.
func (g *Gmail) dropToken() {
	g.mu.Lock()
	g.ts = nil
	g.mu.Unlock()
}

// Check obtains an access token, refreshing it when needed.
func (g *Gmail) Check(ctx context.Context) error {
	ts, err := g.tokenSource()
	if err != nil {
		return err
	}
	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("%w: %v", ddomain.ErrAuthRequired, err)
	}
	return nil
}

type gmailDraft struct {
	ID      string `json:"id,omitempty"`
	Message struct {
		Raw string `json:"raw,omitempty"`
	} `json:"message"`
}

func (g *Gmail) Create(ctx context.Context, d ddomain.Draft) (string, error) {
	ts, err := g.tokenSource()
	if err != nil {
		return "", err
	}
	hc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, g.http), ts)
	var payload gmailDraft
	payload.Message.Raw = base64.URLEncoding.EncodeToString(plainMessage("", d.To, d.Subject, d.Body, g.now()))
	buf, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gmailDraftsURL, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", fmt.Errorf("%w: %v", ddomain.ErrAuthRequired, err)
		}
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		g.dropToken()
		return "", ddomain.ErrAuthRequired
	case resp.StatusCode >= 300:
		return "", fmt.Errorf("gmail draft failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out gmailDraft
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gmail draft response: %w", err)
	}
	return out.ID, nil
}
