package providers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agentcore/core/pkg/core"
)

// OpenAIProvider adapts OpenAI's chat completions API to core.Provider.
type OpenAIProvider struct {
	client       *openai.Client
	name         string
	defaultModel string
	retry        retryConfig
	available    bool
}

// OpenAIConfig configures an OpenAIProvider. BaseURL lets the same
// adapter serve OpenAI-compatible dialects (see NewPerplexityProvider).
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxRetries   int
	RetryDelay   time.Duration
}

// NewOpenAIProvider builds an OpenAIProvider.
func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	return newOpenAICompatProvider("openai", "gpt-4o", config)
}

// NewPerplexityProvider reuses the go-openai wire format against
// Perplexity's OpenAI-compatible endpoint, the same way the teacher's
// OpenRouter adapter rebases go-openai onto a different BaseURL.
func NewPerplexityProvider(config OpenAIConfig) *OpenAIProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.perplexity.ai"
	}
	return newOpenAICompatProvider("perplexity", "sonar", config)
}

func newOpenAICompatProvider(name, defaultModel string, config OpenAIConfig) *OpenAIProvider {
	if config.DefaultModel == "" {
		config.DefaultModel = defaultModel
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	p := &OpenAIProvider{
		name:         name,
		defaultModel: config.DefaultModel,
		retry:        retryConfig{maxRetries: config.MaxRetries, baseDelay: config.RetryDelay},
		available:    config.APIKey != "",
	}
	if p.available {
		cfg := openai.DefaultConfig(config.APIKey)
		if config.BaseURL != "" {
			cfg.BaseURL = config.BaseURL
		}
		client := openai.NewClientWithConfig(cfg)
		p.client = client
	}
	return p
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) Available() bool { return p.available }

func (p *OpenAIProvider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	if !p.available {
		return nil, errors.New(p.name + ": API key not configured")
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertOpenAIMessages(req.Messages),
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		tools, err := convertOpenAITools(req.Tools)
		if err != nil {
			return nil, wrapProviderError(p.name, model, err)
		}
		chatReq.Tools = tools
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, p.retry, func() error {
		var callErr error
		resp, callErr = p.client.CreateChatCompletion(ctx, chatReq)
		return callErr
	})
	if err != nil {
		return nil, wrapProviderError(p.name, model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, wrapProviderError(p.name, model, errors.New("empty choices in response"))
	}

	choice := resp.Choices[0]
	out := core.Message{Role: core.RoleAssistant, Content: choice.Message.Content}
	finish := core.FinishStop
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			ToolName:  tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	if len(out.ToolCalls) > 0 {
		finish = core.FinishToolCalls
	} else if choice.FinishReason == openai.FinishReasonLength {
		finish = core.FinishLength
	}

	return &core.CompletionResponse{
		Provider: p.name,
		Model:    model,
		Message:  out,
		Usage: &core.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: finish,
	}, nil
}

func convertOpenAIMessages(messages []core.Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		if m.Role == core.RoleTool {
			msg.ToolCallID = m.ToolCallID
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.ToolName,
					Arguments: string(tc.Arguments),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func convertOpenAITools(tools []core.ToolDefinition) ([]openai.Tool, error) {
	var out []openai.Tool
	for _, t := range tools {
		var params map[string]any
		if err := json.Unmarshal(t.Schema, &params); err != nil {
			return nil, err
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out, nil
}
