package service

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

// Ensure SMTP implements domain.Drafter
var _ ddomain.Drafter = (*SMTP)(nil)

// SMTP mails each draft to the reviewer instead of the customer.
type SMTP struct {
	cfg      config.Config
	settings sdomain.Service
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(settings sdomain.Service, cfg config.Config) *SMTP {
	return &SMTP{settings: settings, cfg: cfg, send: smtp.SendMail}
}

func (s *SMTP) Name() string { return "smtp" }

type smtpSettings struct {
	host, from, username, password string
	port                           int
}

func (s *SMTP) resolve(ctx context.Context) smtpSettings {
	var o smtpSettings
	o.host, _ = s.settings.GetString(ctx, sdomain.KeySMTPHost, s.cfg.SMTPHost)
	o.from, _ = s.settings.GetString(ctx, sdomain.KeySMTPFrom, s.cfg.SMTPFrom)
	o.username, _ = s.settings.GetString(ctx, sdomain.KeySMTPUsername, s.cfg.SMTPUsername)
	o.password, _ = s.settings.GetString(ctx, sdomain.KeySMTPPassword, s.cfg.SMTPPassword)
	o.port, _ = s.settings.GetInt(ctx, sdomain.KeySMTPPort, s.cfg.SMTPPort)
	return o
}

func (s *SMTP) Check(ctx context.Context) error {
	o := s.resolve(ctx)
	if o.host == "" || o.from == "" {
		return fmt.Errorf("smtp not configured")
	}
	return nil
}

func (s *SMTP) Create(ctx context.Context, d ddomain.Draft) (string, error) {
	o := s.resolve(ctx)
	if o.host == "" || o.from == "" {
		return "", fmt.Errorf("smtp not configured")
	}
	addr := fmt.Sprintf("%s:%d", o.host, o.port)
	msg := plainMessage(o.from, d.Reviewer, reviewSubject(d.Subject, d.To), d.Body, time.Now())
	var auth smtp.Auth
	if o.username != "" {
		auth = smtp.PlainAuth("", o.username, o.password, o.host)
	}
	if err := s.send(addr, auth, o.from, []string{d.Reviewer}, msg); err != nil {
		return "", err
	}
	// SMTP has no draft ID; a local one lets the reviewer correlate messages.
	return "smtp-" + uuid.NewString(), nil
}
