package providers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/agentcore/core/pkg/core"
)

// GeminiProvider adapts Google's Gen AI SDK to core.Provider.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	retry        retryConfig
	available    bool
}

// GeminiConfig configures a GeminiProvider.
type GeminiConfig struct {
	APIKey       string
	DefaultModel string
	MaxRetries   int
	RetryDelay   time.Duration
}

// NewGeminiProvider builds a GeminiProvider. If config.APIKey is empty the
// provider reports itself unavailable rather than erroring; the SDK client
// is only constructed when credentials are present since genai.NewClient
// performs network-adjacent setup.
func NewGeminiProvider(config GeminiConfig) (*GeminiProvider, error) {
	if config.DefaultModel == "" {
		config.DefaultModel = "gemini-2.0-flash"
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	p := &GeminiProvider{
		defaultModel: config.DefaultModel,
		retry:        retryConfig{maxRetries: config.MaxRetries, baseDelay: config.RetryDelay},
		available:    config.APIKey != "",
	}
	if p.available {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, errors.New("gemini: failed to create client: " + err.Error())
		}
		p.client = client
	}
	return p, nil
}

func (p *GeminiProvider) Name() string    { return "gemini" }
func (p *GeminiProvider) Available() bool { return p.available }

func (p *GeminiProvider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	if !p.available {
		return nil, errors.New("gemini: API key not configured")
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	contents, system := convertGeminiMessages(req.Messages)
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(min(req.MaxTokens, math.MaxInt32))
	}
	if len(req.Tools) > 0 {
		config.Tools = convertGeminiTools(req.Tools)
	}

	var resp *genai.GenerateContentResponse
	err := withRetry(ctx, p.retry, func() error {
		var callErr error
		resp, callErr = p.client.Models.GenerateContent(ctx, model, contents, config)
		return callErr
	})
	if err != nil {
		return nil, wrapProviderError("gemini", model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, wrapProviderError("gemini", model, errors.New("empty candidates in response"))
	}

	out := core.Message{Role: core.RoleAssistant}
	finish := core.FinishStop
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Content += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{
				ID:        part.FunctionCall.Name,
				ToolName:  part.FunctionCall.Name,
				Arguments: args,
			})
			finish = core.FinishToolCalls
		}
	}

	usage := &core.Usage{}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &core.CompletionResponse{
		Provider:     "gemini",
		Model:        model,
		Message:      out,
		Usage:        usage,
		FinishReason: finish,
	}, nil
}

func convertGeminiMessages(messages []core.Message) ([]*genai.Content, string) {
	var out []*genai.Content
	var system string

	for _, m := range messages {
		if m.Role == core.RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}

		content := &genai.Content{}
		switch m.Role {
		case core.RoleAssistant:
			content.Role = genai.RoleModel
		default:
			content.Role = genai.RoleUser
		}

		if m.Content != "" {
			content.Parts = append(content.Parts, &genai.Part{Text: m.Content})
		}
		for _, tc := range m.ToolCalls {
			var args map[string]any
			if len(tc.Arguments) > 0 {
				_ = json.Unmarshal(tc.Arguments, &args)
			}
			content.Parts = append(content.Parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{Name: tc.ToolName, Args: args},
			})
		}
		if m.Role == core.RoleTool {
			var response map[string]any
			if err := json.Unmarshal([]byte(m.Content), &response); err != nil {
				response = map[string]any{"result": m.Content}
			}
			content.Parts = append(content.Parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{Name: m.ToolCallID, Response: response},
			})
		}

		out = append(out, content)
	}
	return out, system
}

func convertGeminiTools(tools []core.ToolDefinition) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		var schemaMap map[string]any
		if err := json.Unmarshal(t.Schema, &schemaMap); err != nil {
			continue
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  geminiSchema(schemaMap),
		})
	}
	if len(declarations) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// geminiSchema converts a JSON-Schema map into Gemini's Schema type.
func geminiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	schema := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		schema.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := m["description"].(string); ok {
		schema.Description = desc
	}
	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				schema.Properties[name] = geminiSchema(propMap)
			}
		}
	}
	if required, ok := m["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		schema.Items = geminiSchema(items)
	}
	return schema
}
