package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentcore/core/pkg/core"
)

func buildStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <plan.yaml>",
		Short: "runSteps: execute a plan deterministically, in dependency order, with retries and fallbacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := readPlanFile(args[0])
			if err != nil {
				return err
			}

			a, err := buildApp(workspaceFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			runID := uuid.NewString()
			report := a.runner.Run(cmd.Context(), runID, *plan)
			return printJSON(cmd, externalReport(runID, report))
		},
	}
}

// externalReport reshapes core.RunReport's flat fields into the nested
// {runId, report: {summary, timings:{totalMs}, stats:{...}, generatedAt}}
// wire format spec.md §6 names for stdout/audit output.
func externalReport(runID string, report *core.RunReport) map[string]any {
	return map[string]any{
		"runId": runID,
		"report": map[string]any{
			"summary":     report.Summary,
			"timings":     map[string]any{"totalMs": report.TotalMs},
			"stats":       map[string]any{"steps": report.Steps, "ok": report.OK, "retries": report.Retries, "fallbacks": report.Fallbacks},
			"generatedAt": report.GeneratedAt,
		},
	}
}

func readPlanFile(path string) (*core.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	var plan core.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan file: %w", err)
	}
	return &plan, nil
}
