package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const maxDispatchResponseBytes = 4 << 20

// DispatchClient hands a task to the external responder and returns its
// single reply.
type DispatchClient interface {
	Dispatch(ctx context.Context, task string) (string, error)
}

type dispatchRequest struct {
	Task string `json:"task"`
}

type dispatchResponse struct {
	Content string `json:"content"`
}

// WebhookDispatcher posts tasks to the responder's webhook endpoint and
// blocks for the full round trip.
type WebhookDispatcher struct {
	url    string
	client *http.Client
}

func NewWebhookDispatcher(url string, timeout time.Duration) *WebhookDispatcher {
	return &WebhookDispatcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, task string) (string, error) {
	body, err := json.Marshal(dispatchRequest{Task: task})
	if err != nil {
		return "", fmt.Errorf("marshal dispatch request: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Dur("elapsed", elapsed).
			Msg("dispatch request error")
		return "", fmt.Errorf("dispatch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("dispatch rejected by responder")
		return "", fmt.Errorf("dispatch failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDispatchResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read dispatch response: %w", err)
	}

	var parsed dispatchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode dispatch response: %w", err)
	}
	if parsed.Content == "" {
		return "", fmt.Errorf("dispatch response missing content")
	}

	log.Info().
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("dispatch successful")

	return parsed.Content, nil
}
