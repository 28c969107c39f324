package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvironPopulatesKnownProviders(t *testing.T) {
	cfg, err := FromEnviron([]string{
		"ANTHROPIC_API_KEY=ant-key",
		"ANTHROPIC_MODEL=claude-sonnet-4-20250514",
		"OPENAI_API_KEY=oai-key",
		"DEFAULT_AI_PROVIDER=anthropic",
		"LOG_LEVEL=debug",
	})
	require.NoError(t, err)

	require.Contains(t, cfg.LLM.Providers, "anthropic")
	assert.Equal(t, "ant-key", cfg.LLM.Providers["anthropic"].APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.LLM.Providers["anthropic"].DefaultModel)

	require.Contains(t, cfg.LLM.Providers, "openai")
	assert.Equal(t, "oai-key", cfg.LLM.Providers["openai"].APIKey)

	assert.NotContains(t, cfg.LLM.Providers, "gemini")
	assert.NotContains(t, cfg.LLM.Providers, "perplexity")

	assert.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestFromEnvironDefaultsLogLevel(t *testing.T) {
	cfg, err := FromEnviron(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.LLM.Providers)
}

func TestFromEnvironParsesFallbackChain(t *testing.T) {
	cfg, err := FromEnviron([]string{"AI_FALLBACK_CHAIN= openai, gemini ,,anthropic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"openai", "gemini", "anthropic"}, cfg.LLM.FallbackChain)
}

func TestFromEnvironLoadsRoutingRulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- taskTypes: ["coding"]
  keywords: ["refactor"]
  provider: anthropic
  model: claude-sonnet-4-20250514
  reason: coding tasks prefer Claude
- provider: openai
  model: gpt-4o
`), 0o644))

	cfg, err := FromEnviron([]string{"ROUTING_RULES_FILE=" + path})
	require.NoError(t, err)
	require.Len(t, cfg.LLM.Routing.Rules, 2)
	assert.Equal(t, "anthropic", cfg.LLM.Routing.Rules[0].Provider)
	assert.Equal(t, []string{"refactor"}, cfg.LLM.Routing.Rules[0].Keywords)
	assert.Equal(t, "openai", cfg.LLM.Routing.Rules[1].Provider)
}

func TestFromEnvironRoutingRulesFileMissing(t *testing.T) {
	_, err := FromEnviron([]string{"ROUTING_RULES_FILE=/nonexistent/rules.yaml"})
	require.Error(t, err)
}

func TestFromEnvironLoadsMCPServersFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: github
  name: GitHub
  transport: stdio
  command: mcp-github
  auto_start: true
`), 0o644))

	cfg, err := FromEnviron([]string{"MCP_SERVERS_FILE=" + path})
	require.NoError(t, err)
	assert.True(t, cfg.MCP.Enabled)
	require.Len(t, cfg.MCP.Servers, 1)
	assert.Equal(t, "github", cfg.MCP.Servers[0].ID)
	assert.True(t, cfg.MCP.Servers[0].AutoStart)
}

func TestFromEnvironNoMCPServersFileDisablesMCP(t *testing.T) {
	cfg, err := FromEnviron(nil)
	require.NoError(t, err)
	assert.False(t, cfg.MCP.Enabled)
	assert.Empty(t, cfg.MCP.Servers)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	os.Unsetenv("GEMINI_API_KEY")
	defer os.Unsetenv("GEMINI_API_KEY")

	cfg, err := Load()
	require.NoError(t, err)
	require.Contains(t, cfg.LLM.Providers, "gemini")
	assert.Equal(t, "from-dotenv", cfg.LLM.Providers["gemini"].APIKey)
}
