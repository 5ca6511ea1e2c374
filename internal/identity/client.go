package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/giulianni/client-portal/internal"
)

// Client talks to the identity provider's admin API with a service key.
type Client struct {
	baseURL    string
	serviceKey string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    config.BaseURL,
		serviceKey: config.ServiceKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) CreateIdentity(ctx context.Context, email, credential string, attrs Attributes) (string, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      credential,
		"user_metadata": attrs,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/users", payload, &result); err != nil {
		return "", fmt.Errorf("create identity: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("create identity: provider returned no id")
	}

	c.logger.Info("identity created", "identity_id", result.ID)
	return result.ID, nil
}

func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/admin/users/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete identity %s: %w", id, err)
	}
	return nil
}

func (c *Client) ConfirmIdentity(ctx context.Context, id string) error {
	payload := map[string]interface{}{"email_confirm": true}
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+id, payload, nil); err != nil {
		return fmt.Errorf("confirm identity %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, result interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	} else {
		body = &bytes.Buffer{}
	}

	reqCtx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrIdentityNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("identity API returned status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
