// Package inference wraps the external large-language-model service.
//
// The analysis stages only depend on the Client interface: a prompt goes
// in, text comes out, or the call fails. Stages are responsible for
// absorbing failures into their own defaults; this package never retries.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/routing"
)

var (
	ErrInferenceFailed  = errors.New("INFERENCE_FAILED")
	ErrInferenceTimeout = errors.New("INFERENCE_TIMEOUT")
)

// Request is one completion request to the inference service.
type Request struct {
	Tier         routing.Tier
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	// ExpectJSON asks the provider for a structured (JSON) response.
	// Callers must still parse defensively; providers do not guarantee
	// valid JSON even in structured mode.
	ExpectJSON bool
}

// Client is the inference collaborator boundary.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config holds connection settings for the HTTP client.
type Config struct {
	BaseURL   string
	APIKey    string
	MiniModel string
	FullModel string
	Timeout   time.Duration
}

// HTTPClient calls an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

// NewHTTPClient builds a client with a bounded per-call timeout. There is
// no retry loop: a failed call surfaces immediately and the stage falls
// back to its default value.
func NewHTTPClient(config *Config, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"component": "inference-client",
		}),
	}
}

func (c *HTTPClient) modelFor(tier routing.Tier) string {
	if tier == routing.TierFull {
		return c.config.FullModel
	}
	return c.config.MiniModel
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues a single completion call and returns the raw text.
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	payload := chatRequest{
		Model: c.modelFor(req.Tier),
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
	}
	if req.ExpectJSON {
		payload.ResponseFormat = map[string]interface{}{"type": "json_object"}
	}

	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "", ErrInferenceTimeout
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrInferenceFailed, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrInferenceFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrInferenceFailed)
	}

	c.logger.Debug("inference call completed", map[string]interface{}{
		"tier":  string(req.Tier),
		"model": payload.Model,
	})

	return parsed.Choices[0].Message.Content, nil
}
