package script

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// OpenAIGenerator implements Generator against an OpenAI-compatible chat
// completions endpoint.
type OpenAIGenerator struct {
	client       oai.Client
	model        string
	systemPrompt string
	temperature  float64
}

type config struct {
	baseURL      string
	timeout      time.Duration
	systemPrompt string
	temperature  float64
}

// Option is a functional option for OpenAIGenerator.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL, allowing any
// OpenAI-compatible server to back script generation.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *config) {
		c.systemPrompt = prompt
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(c *config) {
		c.temperature = temp
	}
}

// NewOpenAIGenerator constructs a Generator backed by the OpenAI API.
func NewOpenAIGenerator(apiKey, model string, opts ...Option) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("script: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("script: model must not be empty")
	}

	cfg := &config{systemPrompt: DefaultSystemPrompt}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &OpenAIGenerator{
		client:       oai.NewClient(reqOpts...),
		model:        model,
		systemPrompt: cfg.systemPrompt,
		temperature:  cfg.temperature,
	}, nil
}

// GenerateScript implements Generator.
func (g *OpenAIGenerator) GenerateScript(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("script: topic must not be empty")
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(g.systemPrompt),
			oai.UserMessage(topic),
		},
	}
	if g.temperature != 0 {
		params.Temperature = param.NewOpt(g.temperature)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("script: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("script: empty choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("script: model returned an empty script")
	}

	return content, nil
}
