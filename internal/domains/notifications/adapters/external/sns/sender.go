package sns

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

const ProviderName = "sns"

// Publisher is the slice of the SNS client the sender needs.
type Publisher interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// Sender delivers SMS through Amazon SNS direct-to-phone publishing.
type Sender struct {
	client Publisher
}

func NewSender(client Publisher) *Sender {
	return &Sender{client: client}
}

func (s *Sender) Provider() string { return ProviderName }

// Send publishes once per recipient and returns the receipt of the last one.
func (s *Sender) Send(ctx context.Context, req ports.SendRequest) (*domain.Receipt, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("sns sender not configured")
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ports.ErrVendorRejected)
	}
	var receipt *domain.Receipt
	for _, number := range req.Recipients {
		out, err := s.client.Publish(ctx, &awssns.PublishInput{
			Message:           aws.String(req.Message),
			PhoneNumber:       aws.String(number),
			MessageAttributes: messageAttributes(req.SenderID),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrVendorRejected, err)
		}
		receipt = &domain.Receipt{
			Provider:  ProviderName,
			MessageID: aws.ToString(out.MessageId),
			Number:    number,
			Status:    "Published",
		}
	}
	return receipt, nil
}

func messageAttributes(senderID string) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(senderID)}
	}
	return attrs
}

var _ ports.SMSSender = (*Sender)(nil)
