// Package dryrun provides an SMS sender that only logs, for local runs without vendor credentials.
package dryrun

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

const ProviderName = "log"

type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sender{logger: logger}
}

func (s *Sender) Provider() string { return ProviderName }

func (s *Sender) Send(ctx context.Context, req ports.SendRequest) (*domain.Receipt, error) {
	id := uuid.NewString()
	s.logger.InfoContext(ctx, "sms not sent, dry run",
		slog.String("message_id", id),
		slog.String("sender_id", req.SenderID),
		slog.String("to", strings.Join(req.Recipients, ",")),
		slog.String("message", req.Message),
	)
	receipt := &domain.Receipt{Provider: ProviderName, MessageID: id, Status: "Logged"}
	if len(req.Recipients) > 0 {
		receipt.Number = req.Recipients[0]
	}
	return receipt, nil
}

var _ ports.SMSSender = (*Sender)(nil)
