package config

import "github.com/agentcore/core/pkg/core"

// LLMConfig configures the providers available to the router and how it
// chooses between them (C5).
type LLMConfig struct {
	DefaultProvider string
	Providers       map[string]LLMProviderConfig

	// FallbackChain lists provider IDs to try, in order, when the default
	// provider's circuit is open or unregistered. Providers absent from
	// this list are still tried last, in registration order.
	FallbackChain []string

	Routing LLMRoutingConfig
}

// LLMProviderConfig holds one provider's credentials and default model.
type LLMProviderConfig struct {
	APIKey       string
	DefaultModel string
	BaseURL      string
}

// LLMRoutingConfig configures rule-based provider routing. Rules are
// matched in order by routing.Router; the first match wins.
type LLMRoutingConfig struct {
	Rules    []core.RoutingRule
	Fallback RoutingTarget
}

// RoutingTarget names a provider/model pair to fall back to when no rule
// matches a request.
type RoutingTarget struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}
