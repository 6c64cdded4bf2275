package africastalking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atclient "github.com/agizo/agizo-api/internal/clients/http/africastalking"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

func newSender(t *testing.T, body string) *Sender {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	client, err := atclient.New(atclient.Config{Username: "sandbox", APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)
	return NewSender(client)
}

func TestSender_MapsReceipt(t *testing.T) {
	sender := newSender(t, `{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"statusCode":101,"number":"+254700000000","status":"Success","cost":"KES 0.8000","messageId":"ATXid_9"}]}}`)

	receipt, err := sender.Send(context.Background(), ports.SendRequest{Message: "hi", Recipients: []string{"+254700000000"}, SenderID: "Agizo"})
	require.NoError(t, err)
	assert.Equal(t, ProviderName, receipt.Provider)
	assert.Equal(t, "ATXid_9", receipt.MessageID)
	assert.Equal(t, "KES 0.8000", receipt.Cost)
	assert.Equal(t, "+254700000000", receipt.Number)
}

func TestSender_RejectionIsVendorRejected(t *testing.T) {
	sender := newSender(t, `{"SMSMessageData":{"Message":"Sent to 0/1","Recipients":[{"statusCode":406,"number":"+254700000000","status":"UserInBlacklist","cost":"0","messageId":"None"}]}}`)

	_, err := sender.Send(context.Background(), ports.SendRequest{Message: "hi", Recipients: []string{"+254700000000"}})
	require.ErrorIs(t, err, ports.ErrVendorRejected)
	require.ErrorIs(t, err, atclient.ErrRejected)
}

func TestSender_Unconfigured(t *testing.T) {
	_, err := NewSender(nil).Send(context.Background(), ports.SendRequest{})
	require.Error(t, err)
}
