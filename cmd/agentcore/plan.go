package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentcore/core/pkg/core"
)

var planOutputPath string

func buildPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <objective>",
		Short: "generatePlan: ask the router for a structured, dependency-ordered plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(workspaceFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			runID := uuid.NewString()
			plan, err := a.planner.GeneratePlan(cmd.Context(), runID, args[0])
			if err != nil {
				return err
			}

			if planOutputPath != "" {
				return writePlanFile(plan, planOutputPath)
			}
			return printJSON(cmd, plan)
		},
	}
	cmd.Flags().StringVarP(&planOutputPath, "output", "o", "", "write the generated plan as YAML to this path instead of stdout")
	return cmd
}

func writePlanFile(plan *core.Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
