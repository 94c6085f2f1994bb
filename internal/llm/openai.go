package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/logging"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
// (OpenAI, Groq and similar).
type OpenAIClient struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
	tracker     *TokenTracker
	logger      *zap.Logger
}

// OpenAIConfig contains configuration for creating a new OpenAIClient.
type OpenAIConfig struct {
	// Endpoint is the API base URL, e.g. https://api.groq.com/openai/v1.
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Logger      *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
// Retries are disabled.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("API key is not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey).
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &OpenAIClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		tracker:     NewTokenTracker(),
		logger:      logging.OrNop(cfg.Logger).Named("openai"),
	}, nil
}

// Tracker returns the token tracker for this client.
func (c *OpenAIClient) Tracker() *TokenTracker {
	return c.tracker
}

// Generate posts one chat completion and returns the first choice's content.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if req.Model != "" {
		body.Model = req.Model
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out chatResponse
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		c.logger.Error("chat request failed", zap.String("model", body.Model), zap.Error(err))
		return "", &TransportError{Provider: "openai", Err: err}
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		err := fmt.Errorf("status %d: %s", resp.StatusCode(), msg)
		c.logger.Error("chat request rejected", zap.String("model", body.Model), zap.Error(err))
		return "", &TransportError{Provider: "openai", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &TransportError{Provider: "openai", Err: errors.New("response has no choices")}
	}

	c.tracker.Add(out.Usage.PromptTokens, out.Usage.CompletionTokens)
	c.logger.Info("response received",
		zap.String("model", body.Model),
		zap.Int64("prompt_tokens", out.Usage.PromptTokens),
		zap.Int64("completion_tokens", out.Usage.CompletionTokens))

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

var _ Transport = (*OpenAIClient)(nil)
