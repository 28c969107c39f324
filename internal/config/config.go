// Package config loads the agent runtime's configuration from the
// process environment: provider credentials, the default provider,
// optional routing rules, and the log level (spec.md §6).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/agentcore/core/internal/mcp"
	"github.com/agentcore/core/pkg/core"
)

// Config is the root configuration for the agent runtime.
type Config struct {
	LLM     LLMConfig
	Logging LoggingConfig
	MCP     mcp.Config
}

// LoggingConfig controls the structured logger's verbosity.
type LoggingConfig struct {
	Level string
}

type providerEnvVars struct {
	id         string
	apiKeyVar  string
	modelVar   string
	baseURLVar string
}

// knownProviders lists the providers spec.md §6 names explicitly. A
// provider is included in the loaded Config only if at least one of its
// environment variables is set.
var knownProviders = []providerEnvVars{
	{id: "anthropic", apiKeyVar: "ANTHROPIC_API_KEY", modelVar: "ANTHROPIC_MODEL", baseURLVar: "ANTHROPIC_BASE_URL"},
	{id: "openai", apiKeyVar: "OPENAI_API_KEY", modelVar: "OPENAI_MODEL", baseURLVar: "OPENAI_BASE_URL"},
	{id: "perplexity", apiKeyVar: "PERPLEXITY_API_KEY", modelVar: "PERPLEXITY_MODEL", baseURLVar: "PERPLEXITY_BASE_URL"},
	{id: "gemini", apiKeyVar: "GEMINI_API_KEY", modelVar: "GEMINI_MODEL", baseURLVar: "GEMINI_BASE_URL"},
}

// Load reads configuration from the process environment. It first calls
// godotenv.Load to populate os.Environ() from a .env file in the working
// directory, the same way the teacher's cmd packages do for local runs; a
// missing .env file is not an error, since deployments set real
// environment variables instead.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnviron(os.Environ())
}

// FromEnviron builds a Config from "KEY=VALUE" entries rather than the
// live process environment, so callers (mainly tests) can exercise
// loading without mutating os.Environ.
func FromEnviron(environ []string) (*Config, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}

	cfg := &Config{
		LLM: LLMConfig{
			DefaultProvider: env["DEFAULT_AI_PROVIDER"],
			Providers:       providersFromEnv(env),
			FallbackChain:   splitCommaList(env["AI_FALLBACK_CHAIN"]),
		},
		Logging: LoggingConfig{Level: envOrDefault(env, "LOG_LEVEL", "info")},
	}

	if path := env["ROUTING_RULES_FILE"]; path != "" {
		rules, err := loadRoutingRules(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.LLM.Routing.Rules = rules
	}

	if path := env["MCP_SERVERS_FILE"]; path != "" {
		servers, err := loadMCPServers(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.MCP = mcp.Config{Enabled: len(servers) > 0, Servers: servers}
	}

	return cfg, nil
}

func providersFromEnv(env map[string]string) map[string]LLMProviderConfig {
	providers := make(map[string]LLMProviderConfig)
	for _, p := range knownProviders {
		apiKey, model, baseURL := env[p.apiKeyVar], env[p.modelVar], env[p.baseURLVar]
		if apiKey == "" && model == "" && baseURL == "" {
			continue
		}
		providers[p.id] = LLMProviderConfig{APIKey: apiKey, DefaultModel: model, BaseURL: baseURL}
	}
	return providers
}

// loadRoutingRules reads a YAML list of routing rules from path. Keeping
// rules in a file rather than individual environment variables avoids an
// awkward env-var encoding for a list of structured match conditions.
func loadRoutingRules(path string) ([]core.RoutingRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routing rules: %w", err)
	}
	var rules []core.RoutingRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse routing rules: %w", err)
	}
	return rules, nil
}

// loadMCPServers reads a YAML list of MCP server definitions from path,
// the C9 counterpart of loadRoutingRules: one server's worth of config
// (transport, command, env, auto_start) has no natural env-var encoding.
func loadMCPServers(path string) ([]*mcp.ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mcp servers: %w", err)
	}
	var servers []*mcp.ServerConfig
	if err := yaml.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("parse mcp servers: %w", err)
	}
	return servers, nil
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return fallback
}

func splitCommaList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
