package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentcore/core/pkg/core"
)

// AnthropicProvider adapts Anthropic's Messages API to core.Provider with
// a single non-streaming call per Complete, since the agent loop consumes
// one full turn at a time rather than incremental tokens.
type AnthropicProvider struct {
	client       anthropic.Client
	defaultModel string
	retry        retryConfig
	available    bool
}

// AnthropicConfig configures an AnthropicProvider.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxRetries   int
	RetryDelay   time.Duration
}

// NewAnthropicProvider builds an AnthropicProvider. An empty APIKey is
// accepted so the provider can be registered and reported as unavailable
// rather than erroring at startup.
func NewAnthropicProvider(config AnthropicConfig) *AnthropicProvider {
	if config.DefaultModel == "" {
		config.DefaultModel = "claude-sonnet-4-20250514"
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	p := &AnthropicProvider{
		defaultModel: config.DefaultModel,
		retry:        retryConfig{maxRetries: config.MaxRetries, baseDelay: config.RetryDelay},
		available:    config.APIKey != "",
	}
	if p.available {
		opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
		if strings.TrimSpace(config.BaseURL) != "" {
			opts = append(opts, option.WithBaseURL(config.BaseURL))
		}
		p.client = anthropic.NewClient(opts...)
	}
	return p
}

func (p *AnthropicProvider) Name() string    { return "anthropic" }
func (p *AnthropicProvider) Available() bool { return p.available }

func (p *AnthropicProvider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	if !p.available {
		return nil, errors.New("anthropic: API key not configured")
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
	}

	var system string
	messages, err := convertAnthropicMessages(req.Messages, &system)
	if err != nil {
		return nil, wrapProviderError("anthropic", model, err)
	}
	params.Messages = messages
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if len(req.Tools) > 0 {
		tools, err := convertAnthropicTools(req.Tools)
		if err != nil {
			return nil, wrapProviderError("anthropic", model, err)
		}
		params.Tools = tools
	}

	var msg *anthropic.Message
	err = withRetry(ctx, p.retry, func() error {
		var callErr error
		msg, callErr = p.client.Messages.New(ctx, params)
		return callErr
	})
	if err != nil {
		return nil, wrapProviderError("anthropic", model, err)
	}

	out := core.Message{Role: core.RoleAssistant}
	var finish core.FinishReason = core.FinishStop
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += variant.Text
		case anthropic.ToolUseBlock:
			args, _ := json.Marshal(variant.Input)
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{
				ID:        variant.ID,
				ToolName:  variant.Name,
				Arguments: args,
			})
			finish = core.FinishToolCalls
		}
	}

	return &core.CompletionResponse{
		Provider: "anthropic",
		Model:    model,
		Message:  out,
		Usage: &core.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		FinishReason: finish,
	}, nil
}

func convertAnthropicMessages(messages []core.Message, system *string) ([]anthropic.MessageParam, error) {
	var out []anthropic.MessageParam
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			if *system != "" {
				*system += "\n"
			}
			*system += m.Content
			continue
		}

		var content []anthropic.ContentBlockParamUnion
		if m.Content != "" {
			content = append(content, anthropic.NewTextBlock(m.Content))
		}
		if m.Role == core.RoleTool {
			content = append(content, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))
		}
		for _, tc := range m.ToolCalls {
			var input map[string]any
			if len(tc.Arguments) > 0 {
				if err := json.Unmarshal(tc.Arguments, &input); err != nil {
					return nil, err
				}
			}
			content = append(content, anthropic.NewToolUseBlock(tc.ID, input, tc.ToolName))
		}

		if m.Role == core.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(content...))
		} else {
			out = append(out, anthropic.NewUserMessage(content...))
		}
	}
	return out, nil
}

func convertAnthropicTools(tools []core.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	var out []anthropic.ToolUnionParam
	for _, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(t.Schema, &schema); err != nil {
			return nil, err
		}
		toolParam := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if toolParam.OfTool != nil {
			toolParam.OfTool.Description = anthropic.String(t.Description)
		}
		out = append(out, toolParam)
	}
	return out, nil
}
