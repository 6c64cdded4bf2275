// Package africastalking is a minimal client for the Africa's Talking bulk SMS API.
package africastalking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	SandboxBaseURL = "https://api.sandbox.africastalking.com"
	LiveBaseURL    = "https://api.africastalking.com"
	// SandboxUsername selects the sandbox environment.
	SandboxUsername = "sandbox"

	messagingPath = "/version1/messaging"
)

var (
	ErrMissingCredentials = errors.New("africastalking username and api key are required")
	// ErrRejected is returned when the API or any recipient reports a failure.
	ErrRejected = errors.New("africastalking rejected message")
)

// Config carries the account credentials. BaseURL defaults from Username.
type Config struct {
	Username   string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the messaging endpoint.
type Client struct {
	username   string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	username := strings.TrimSpace(cfg.Username)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if username == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = LiveBaseURL
		if username == SandboxUsername {
			baseURL = SandboxBaseURL
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{username: username, apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}, nil
}

// Recipient is the per-number outcome reported by the API.
type Recipient struct {
	StatusCode int    `json:"statusCode"`
	Number     string `json:"number"`
	Status     string `json:"status"`
	Cost       string `json:"cost"`
	MessageID  string `json:"messageId"`
}

// Accepted reports whether the API queued the message for this number.
func (r Recipient) Accepted() bool {
	switch r.StatusCode {
	case 100, 101, 102:
		return true
	}
	return false
}

// SendResponse mirrors the JSON body of a messaging call.
type SendResponse struct {
	SMSMessageData struct {
		Message    string      `json:"Message"`
		Recipients []Recipient `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendMessage posts one message to every number in to. from is the registered sender id.
func (c *Client) SendMessage(ctx context.Context, message string, to []string, from string) (*SendResponse, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("to", strings.Join(to, ","))
	form.Set("message", message)
	if from != "" {
		form.Set("from", from)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagingPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload SendResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode africastalking response: %w", err)
	}
	if len(payload.SMSMessageData.Recipients) == 0 {
		return &payload, fmt.Errorf("%w: %s", ErrRejected, payload.SMSMessageData.Message)
	}
	for _, r := range payload.SMSMessageData.Recipients {
		if !r.Accepted() {
			return &payload, fmt.Errorf("%w: %s: %s", ErrRejected, r.Number, r.Status)
		}
	}
	return &payload, nil
}
