package core

import "context"

// FinishReason is why a provider stopped generating.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	FinishLength    FinishReason = "length"
	FinishError     FinishReason = "error"
)

// Usage reports token accounting when a provider discloses it.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// CompletionRequest is the neutral shape every provider adapter accepts.
type CompletionRequest struct {
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Model       string           `json:"model,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
}

// CompletionResponse is the neutral shape every provider adapter returns.
type CompletionResponse struct {
	Provider     string       `json:"provider"`
	Model        string       `json:"model"`
	Message      Message      `json:"message"`
	Usage        *Usage       `json:"usage,omitempty"`
	FinishReason FinishReason `json:"finishReason"`
}

// Provider is the contract every LM adapter (C4) implements.
type Provider interface {
	Name() string
	// Available reports whether credentials are configured and the
	// provider has not been administratively disabled.
	Available() bool
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
