// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends account lifecycle mails via SMTP.
package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"codeberg.org/oliverandrich/inkwell/internal/config"
	"codeberg.org/oliverandrich/inkwell/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Mailer is the outbound mail collaborator consumed by the account and
// admin services. Send failures are treated as non-fatal by all callers.
type Mailer interface {
	SendVerification(ctx context.Context, toEmail, name, token string) error
	SendWelcome(ctx context.Context, toEmail, name string) error
}

// Disabled is a Mailer used when no SMTP server is configured. Every
// send fails, which callers already treat as non-fatal.
type Disabled struct{}

func (Disabled) SendVerification(context.Context, string, string, string) error {
	return fmt.Errorf("mail sending is disabled")
}

func (Disabled) SendWelcome(context.Context, string, string) error {
	return fmt.Errorf("mail sending is disabled")
}

// Service sends mail through an SMTP server using go-mail.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendVerification sends a verification email with the given token. The
// link embeds the raw token; the server only ever stores its hash.
func (s *Service) SendVerification(ctx context.Context, toEmail, name, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?email=%s&token=%s",
		s.baseURL, url.QueryEscape(toEmail), url.QueryEscape(token))

	subject := i18n.T(ctx, "email_verification_subject")
	body := i18n.TData(ctx, "email_verification_body", map[string]any{
		"Name":      displayName(name),
		"VerifyURL": verifyURL,
	})

	return s.send(toEmail, subject, body)
}

// SendWelcome sends the approval notification.
func (s *Service) SendWelcome(ctx context.Context, toEmail, name string) error {
	subject := i18n.T(ctx, "email_welcome_subject")
	body := i18n.TData(ctx, "email_welcome_body", map[string]any{
		"Name":      displayName(name),
		"SigninURL": s.baseURL + "/signin",
	})

	return s.send(toEmail, subject, body)
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "there"
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
