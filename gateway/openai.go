// Package gateway implements completion backends for the agent router.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

// ErrMissingAPIKey is returned by Complete when no API key is configured
var ErrMissingAPIKey = errors.New("openai api key not configured")

// UsageRecorder receives token counts reported by the API
type UsageRecorder interface {
	Record(model string, inputTokens, outputTokens int)
}

// Config holds OpenAI connection settings
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI calls the Responses API. It satisfies agent.Gateway.
type OpenAI struct {
	client openai.Client
	apiKey string
	model  string
	usage  UsageRecorder
	logger *zap.Logger
}

// NewOpenAI creates a new OpenAI gateway. Empty config fields take defaults.
// Retries are disabled: each Complete is exactly one attempt.
func NewOpenAI(cfg Config, usage UsageRecorder, logger *zap.Logger) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &OpenAI{
		client: client,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		usage:  usage,
		logger: logger,
	}
}

// Model returns the model identifier sent with every request
func (o *OpenAI) Model() string {
	return o.model
}

// Complete sends one Responses API request with the given system
// instructions and user input, and returns the aggregated output text.
func (o *OpenAI) Complete(ctx context.Context, systemInstructions, userPrompt string, maxTokens int) (string, error) {
	if o.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(o.model),
		Instructions: openai.String(systemInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(userPrompt),
		},
	}
	if maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(maxTokens))
	}

	start := time.Now()
	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai responses returned status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("openai responses request failed: %w", err)
	}

	o.logger.Debug("openai response",
		zap.String("model", o.model),
		zap.String("id", resp.ID),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	if o.usage != nil {
		o.usage.Record(o.model, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
	}

	return resp.OutputText(), nil
}
