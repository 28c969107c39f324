// Command agentcore runs the autonomous tool-use orchestration core
// described in spec.md: an agent loop, a deterministic plan runner, and
// their shared provider-routing, tool-dispatch, journal, and audit
// infrastructure.
//
// # Environment variables
//
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY, PERPLEXITY_API_KEY, GEMINI_API_KEY
//   - ANTHROPIC_MODEL, OPENAI_MODEL, PERPLEXITY_MODEL, GEMINI_MODEL
//   - DEFAULT_AI_PROVIDER, AI_FALLBACK_CHAIN
//   - ROUTING_RULES_FILE, MCP_SERVERS_FILE
//   - LOG_LEVEL
//   - AGENTCORE_DATA_DIR (defaults to ~/.agentcore)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	workspaceFlag string
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "agentcore:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "agentcore",
		Short:        "Autonomous tool-use orchestration core",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "filesystem root the sandbox and built-in tools operate in (default: current directory)")

	root.AddCommand(
		buildRunCmd(),
		buildChatCmd(),
		buildPlanCmd(),
		buildStepsCmd(),
	)
	return root
}
