package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

var (
	ErrInvalidClient   = errors.New("notification gateway requires an sms sender")
	ErrMissingSenderID = errors.New("notification gateway requires a sender id")
	ErrNoRecipient     = errors.New("notification recipient has no phone number")
)

// Config carries the vendor-independent settings of the gateway.
type Config struct {
	SenderID string
	// Template is used when Notify is called without one.
	Template string
}

// DefaultConfig returns the stock sender id and confirmation template.
func DefaultConfig() Config {
	return Config{SenderID: domain.DefaultSenderID, Template: domain.DefaultTemplate}
}

// Gateway sends single-recipient SMS notifications through an SMSSender.
type Gateway struct {
	client   ports.SMSSender
	cfg      Config
	attempts ports.AttemptLog
}

type GatewayOption func(*Gateway)

// WithAttemptLog records every send in log. Recording failures never fail a send.
func WithAttemptLog(log ports.AttemptLog) GatewayOption {
	return func(g *Gateway) {
		g.attempts = log
	}
}

// NewGateway validates its collaborators up front.
func NewGateway(client ports.SMSSender, cfg Config, opts ...GatewayOption) (*Gateway, error) {
	if isNil(client) {
		return nil, ErrInvalidClient
	}
	cfg.SenderID = strings.TrimSpace(cfg.SenderID)
	if cfg.SenderID == "" {
		return nil, ErrMissingSenderID
	}
	g := &Gateway{client: client, cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Notify renders template for recipient and sends exactly one SMS to exactly one number.
func (g *Gateway) Notify(ctx context.Context, recipient domain.Recipient, template string) (*domain.Receipt, error) {
	phone := strings.TrimSpace(recipient.PhoneNumber)
	if phone == "" {
		return nil, ErrNoRecipient
	}
	if strings.TrimSpace(template) == "" {
		template = g.cfg.Template
	}
	message := domain.Render(template, recipient)
	receipt, err, _ := g.send(ctx, recipient.Reference, message, []string{phone})
	return receipt, err
}

// RetryFailed resends up to limit failed attempts, at most one per reference. A delivered
// resend supersedes every failed attempt for its reference; an undelivered one marks the
// original retried once the new attempt is recorded. An original is left failed when the
// new attempt could not be recorded, so the next run picks it up again.
func (g *Gateway) RetryFailed(ctx context.Context, limit int) (resent int, err error) {
	if g.attempts == nil {
		return 0, errors.New("notification attempt log not configured")
	}
	failed, err := g.attempts.ListByStatus(ctx, domain.AttemptFailed, limit)
	if err != nil {
		return 0, err
	}
	var errs []error
	seen := make(map[string]bool, len(failed))
	for _, attempt := range failed {
		if err := ctx.Err(); err != nil {
			return resent, err
		}
		if attempt.Reference != "" {
			if seen[attempt.Reference] {
				continue
			}
			seen[attempt.Reference] = true
		}
		_, sendErr, logErr := g.send(ctx, attempt.Reference, attempt.Message, attempt.Recipients)
		if sendErr == nil {
			resent++
		} else {
			errs = append(errs, fmt.Errorf("attempt %d: %w", attempt.ID, sendErr))
		}
		if logErr != nil {
			errs = append(errs, fmt.Errorf("attempt %d: record resend: %w", attempt.ID, logErr))
		}

		var status domain.AttemptStatus
		switch {
		case sendErr == nil && (logErr != nil || attempt.Reference == ""):
			status = domain.AttemptSuperseded
		case sendErr != nil && logErr == nil:
			status = domain.AttemptRetried
		default:
			continue
		}
		if err := g.attempts.UpdateStatus(ctx, attempt.ID, status); err != nil {
			errs = append(errs, fmt.Errorf("attempt %d: %w", attempt.ID, err))
		}
	}
	return resent, errors.Join(errs...)
}

// send calls the vendor once and logs the attempt. logErr reports a failed log write and
// never replaces err.
func (g *Gateway) send(ctx context.Context, reference, message string, recipients []string) (receipt *domain.Receipt, err, logErr error) {
	receipt, err = g.client.Send(ctx, ports.SendRequest{
		Message:    message,
		Recipients: recipients,
		SenderID:   g.cfg.SenderID,
	})
	logErr = g.record(ctx, reference, message, recipients, receipt, err)
	if err != nil {
		return nil, err, logErr
	}
	return receipt, nil, logErr
}

// record appends the attempt and, for a delivered message, supersedes earlier failed
// attempts with the same reference.
func (g *Gateway) record(ctx context.Context, reference, message string, recipients []string, receipt *domain.Receipt, sendErr error) error {
	if g.attempts == nil {
		return nil
	}
	attempt := &domain.Attempt{
		Provider:   g.client.Provider(),
		SenderID:   g.cfg.SenderID,
		Reference:  reference,
		Message:    message,
		Recipients: append([]string(nil), recipients...),
		Status:     domain.AttemptSent,
	}
	if sendErr != nil {
		attempt.Status = domain.AttemptFailed
		attempt.Error = sendErr.Error()
	}
	if receipt != nil {
		attempt.MessageID = receipt.MessageID
		attempt.Cost = receipt.Cost
	}
	if _, err := g.attempts.Record(ctx, attempt); err != nil {
		return err
	}
	if sendErr != nil || reference == "" {
		return nil
	}
	_, err := g.attempts.SupersedeFailed(ctx, reference)
	return err
}

func isNil(client ports.SMSSender) bool {
	if client == nil {
		return true
	}
	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
