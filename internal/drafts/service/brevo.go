package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

// Ensure Brevo implements domain.Drafter
var _ ddomain.Drafter = (*Brevo)(nil)

const brevoSendURL = "https://api.brevo.com/v3/smtp/email"

type Brevo struct {
	cfg      config.Config
	settings sdomain.Service
	http     *http.Client
}

func NewBrevo(settings sdomain.Service, cfg config.Config, client *http.Client) *Brevo {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Brevo{settings: settings, cfg: cfg, http: client}
}

func (b *Brevo) Name() string { return "brevo" }

type brevoEmail struct {
	To          []map[string]string `json:"to"`
	Sender      map[string]string   `json:"sender"`
	Subject     string              `json:"subject"`
	TextContent string              `json:"textContent"`
	Tags        []string            `json:"tags,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

func (b *Brevo) credentials(ctx context.Context) (apiKey, sender string) {
	apiKey, _ = b.settings.GetString(ctx, sdomain.KeyBrevoAPIKey, b.cfg.BrevoAPIKey)
	sender, _ = b.settings.GetString(ctx, sdomain.KeyBrevoSender, b.cfg.BrevoSender)
	return apiKey, sender
}

func (b *Brevo) Check(ctx context.Context) error {
	if apiKey, sender := b.credentials(ctx); apiKey == "" || sender == "" {
		return fmt.Errorf("brevo not configured")
	}
	return nil
}

func (b *Brevo) Create(ctx context.Context, d ddomain.Draft) (string, error) {
	apiKey, sender := b.credentials(ctx)
	if apiKey == "" || sender == "" {
		return "", fmt.Errorf("brevo not configured")
	}
	payload := brevoEmail{
		To:          []map[string]string{{"email": d.Reviewer}},
		Sender:      map[string]string{"email": sender},
		Subject:     reviewSubject(d.Subject, d.To),
		TextContent: d.Body,
		Tags:        []string{"outreach-draft"},
	}
	buf, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoSendURL, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", apiKey)
	resp, err := b.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("brevo send failed: %s", resp.Status)
	}
	var out brevoResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out.MessageID, nil
}
