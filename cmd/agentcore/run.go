package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentcore/core/pkg/core"
)

var (
	maxIterations int
	maxToolCalls  int
)

func buildRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <objective>",
		Short: "runObjective: drive the agent loop toward an objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(workspaceFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			runID := uuid.NewString()
			budgets := core.Budgets{MaxIterations: maxIterations, MaxToolCalls: maxToolCalls}

			a.sink.EmitInfo(ctx, runID, core.EventAgentStart, "run started", map[string]any{"objective": args[0]})
			result := a.loop.Run(ctx, runID, args[0], budgets)
			a.sink.EmitInfo(ctx, runID, core.EventAgentComplete, "run finished", map[string]any{"success": result.Success})

			return printJSON(cmd, result)
		},
	}
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 10, "maximum agent loop iterations")
	cmd.Flags().IntVar(&maxToolCalls, "max-tool-calls", 25, "maximum tool calls across the run")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
