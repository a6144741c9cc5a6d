package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to the external assessment engine over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an engine client. baseURL must not be empty; timeout
// falls back to 30s when zero.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("engine base URL is required")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// StartConversation opens a new engine session and returns its greeting
func (c *Client) StartConversation(ctx context.Context) (*StartConversationResponse, error) {
	var resp StartConversationResponse
	if err := c.post(ctx, "/start-conversation", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}
	return &resp, nil
}

// Chat forwards one user turn together with the transcript and the data
// collected so far
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, "/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("chat turn: %w", err)
	}
	return &resp, nil
}

// CompleteRecommendation requests the final eligibility, medication ranking
// and prescription for the collected data
func (c *Client) CompleteRecommendation(ctx context.Context, req CompleteRequest) (*CompleteRecommendationResponse, error) {
	var resp CompleteRecommendationResponse
	if err := c.post(ctx, "/recommendation/complete", req, &resp); err != nil {
		return nil, fmt.Errorf("complete recommendation: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	startTime := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("assessment engine request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("assessment engine returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return fmt.Errorf("engine returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.logger.Info("assessment engine request completed",
		zap.String("path", path),
		zap.Duration("processing_time", time.Since(startTime)),
	)
	return nil
}
