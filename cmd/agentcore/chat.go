package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentcore/core/pkg/core"
)

func buildChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "chat: interactive turn-by-turn completion against the configured router",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(workspaceFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			runID := uuid.NewString()
			ctx := cmd.Context()
			messages := []core.Message{}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/exit" || line == "/quit" {
					return nil
				}
				messages = append(messages, core.Message{Role: core.RoleUser, Content: line})

				a.sink.EmitInfo(ctx, runID, core.EventAIRequest, "chat turn", nil)
				resp, _, err := a.router.Complete(ctx, &core.CompletionRequest{Messages: messages})
				if err != nil {
					fmt.Fprintln(out, "error:", err)
					continue
				}
				a.sink.EmitInfo(ctx, runID, core.EventAIResponse, "chat turn", map[string]any{"provider": resp.Provider})
				messages = append(messages, resp.Message)
				fmt.Fprintln(out, resp.Message.Content)
			}
		},
	}
}
