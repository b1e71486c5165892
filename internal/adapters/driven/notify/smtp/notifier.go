// Package smtp provides a notifier adapter that delivers reports by
// email over plain SMTP with optional AUTH.
package smtp

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

// DefaultPort is the standard SMTP submission port.
const DefaultPort = 587

// Config holds configuration for the SMTP notifier.
type Config struct {
	// Host is the SMTP server hostname (required).
	Host string

	// Port is the SMTP server port (default: 587).
	Port int

	// Username and Password enable PLAIN auth when both are set.
	Username string
	Password string

	// From is the sender address (required).
	From string

	// To is the recipient address (required).
	To string
}

// Notifier delivers reports by email.
type Notifier struct {
	cfg Config
}

// New creates an SMTP notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp: host is required")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("smtp: from and to addresses are required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return &Notifier{cfg: cfg}, nil
}

// Deliver sends the document as a plain-text email.
func (n *Notifier) Deliver(ctx context.Context, subject, body string) error {
	addr := net.JoinHostPort(n.cfg.Host, fmt.Sprint(n.cfg.Port))

	var auth smtp.Auth
	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	msg := buildMessage(n.cfg.From, n.cfg.To, subject, body)

	// net/smtp has no context support; run the send on a goroutine and
	// race it against the context.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.cfg.From, []string{n.cfg.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: smtp send to %s: %v", domain.ErrDelivery, n.cfg.To, err)
		}
		logger.Info("Report delivered to %s", n.cfg.To)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: smtp send to %s: %v", domain.ErrDelivery, n.cfg.To, ctx.Err())
	}
}

// buildMessage renders RFC 5322 headers plus the body.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// sanitizeHeader strips CR/LF so a subject cannot inject headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
