package africastalking

import (
	"context"
	"errors"
	"fmt"

	atclient "github.com/agizo/agizo-api/internal/clients/http/africastalking"
	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

const ProviderName = "africastalking"

// Sender implements the SMS sender port on top of the Africa's Talking client.
type Sender struct {
	client *atclient.Client
}

func NewSender(client *atclient.Client) *Sender {
	return &Sender{client: client}
}

func (s *Sender) Provider() string { return ProviderName }

// Send returns a receipt for the first recipient; the gateway only ever sends to one.
func (s *Sender) Send(ctx context.Context, req ports.SendRequest) (*domain.Receipt, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("africastalking sender not configured")
	}
	res, err := s.client.SendMessage(ctx, req.Message, req.Recipients, req.SenderID)
	if err != nil {
		if errors.Is(err, atclient.ErrRejected) {
			return nil, fmt.Errorf("%w: %w", ports.ErrVendorRejected, err)
		}
		return nil, err
	}
	receipt := &domain.Receipt{Provider: ProviderName, Status: res.SMSMessageData.Message}
	if len(res.SMSMessageData.Recipients) > 0 {
		r := res.SMSMessageData.Recipients[0]
		receipt.MessageID = r.MessageID
		receipt.Number = r.Number
		receipt.Status = r.Status
		receipt.Cost = r.Cost
	}
	return receipt, nil
}

var _ ports.SMSSender = (*Sender)(nil)
