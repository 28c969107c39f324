// Package agentloop implements the synchronous LM-tool cycle (C8):
// drive the router and tool dispatcher under iteration/tool-call budgets
// until a completion phrase, the budget, or an unrecoverable router
// failure ends the run.
package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/routing"
	"github.com/agentcore/core/pkg/core"
)

// completionPhrases terminate the loop when found, case-insensitively, in
// an assistant turn that made no tool calls.
var completionPhrases = []string{
	"task complete",
	"objective complete",
	"successfully completed",
	"all done",
	"finished",
	"completed successfully",
	"mission accomplished",
}

func hasCompletionPhrase(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range completionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Completer is the subset of routing.Router the loop needs.
type Completer interface {
	Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, routing.Decision, error)
}

// Dispatcher is the subset of dispatch.Registry the loop needs.
type Dispatcher interface {
	Execute(ctx context.Context, runID, name string, args json.RawMessage) *core.ToolResult
}

// Loop drives one objective's LM-tool cycle.
type Loop struct {
	router       Completer
	dispatcher   Dispatcher
	tools        []core.ToolDefinition
	sink         *audit.Sink
	systemPrompt string
}

// Config carries the pieces wired in at construction time.
type Config struct {
	SystemPrompt string
	Tools        []core.ToolDefinition
}

// New builds a Loop. sink may be nil to disable audit emission.
func New(router Completer, dispatcher Dispatcher, sink *audit.Sink, cfg Config) *Loop {
	return &Loop{
		router:       router,
		dispatcher:   dispatcher,
		tools:        cfg.Tools,
		sink:         sink,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Run drives messages through the router/dispatcher cycle of spec.md
// §4.8 until a completion phrase, the iteration budget, or an
// unrecoverable router failure ends the run.
func (l *Loop) Run(ctx context.Context, runID, objective string, budgets core.Budgets) *core.AgentResult {
	messages := []core.Message{
		{Role: core.RoleSystem, Content: l.systemPrompt},
		{Role: core.RoleUser, Content: objective},
	}

	var errs []string
	finalResponse := ""
	iterations := 0
	toolCalls := 0
	freePassGiven := false

	l.emitInfo(ctx, runID, core.EventAgentStart, "agent loop start", map[string]any{"objective": objective})

	for iterations < budgets.MaxIterations {
		iterations++

		newMessages, text, complete, iterErr := l.runIteration(ctx, runID, messages, budgets, &toolCalls, &freePassGiven, &errs)
		messages = newMessages
		if text != "" {
			finalResponse = text
		}
		if iterErr != nil {
			errs = append(errs, iterErr.Error())
			messages = append(messages, core.Message{
				Role:    core.RoleUser,
				Content: fmt.Sprintf("An error occurred: %v. Please continue or summarize your progress.", iterErr),
			})
			continue
		}
		if complete {
			break
		}
	}

	result := &core.AgentResult{
		Success:       len(errs) == 0,
		FinalResponse: finalResponse,
		Iterations:    iterations,
		ToolCalls:     toolCalls,
		Errors:        errs,
		Context:       messages,
	}
	l.emitInfo(ctx, runID, "AGENT_END", "agent loop end", map[string]any{
		"iterations": result.Iterations, "toolCalls": result.ToolCalls, "success": result.Success,
	})
	return result
}

// runIteration executes one pass of the loop and reports whether the run
// should terminate. A panic escaping the router or dispatcher is
// recovered and surfaced as iterErr, per spec.md §4.8 step 6.
func (l *Loop) runIteration(
	ctx context.Context,
	runID string,
	messages []core.Message,
	budgets core.Budgets,
	toolCalls *int,
	freePassGiven *bool,
	errs *[]string,
) (out []core.Message, lastText string, complete bool, iterErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			iterErr = fmt.Errorf("panic: %v", rec)
			out = messages
		}
	}()

	req := &core.CompletionRequest{Messages: messages, Tools: l.tools}
	resp, _, err := l.router.Complete(ctx, req)
	if err != nil {
		return messages, "", false, err
	}

	messages = append(messages, resp.Message)
	lastText = resp.Message.Content

	if len(resp.Message.ToolCalls) == 0 && resp.FinishReason == core.FinishStop {
		if hasCompletionPhrase(resp.Message.Content) {
			l.emitInfo(ctx, runID, core.EventAgentComplete, "completion phrase detected", nil)
			return messages, lastText, true, nil
		}
		if !*freePassGiven {
			*freePassGiven = true
			return messages, lastText, false, nil
		}
		messages = append(messages, core.Message{
			Role:    core.RoleUser,
			Content: "Please summarize your progress if the objective is complete, or continue working toward it.",
		})
		return messages, lastText, false, nil
	}

	for _, tc := range resp.Message.ToolCalls {
		if *toolCalls >= budgets.MaxToolCalls {
			break
		}
		*toolCalls++

		args := tc.Arguments
		if !json.Valid(args) {
			args = json.RawMessage("{}")
		}

		result := l.dispatcher.Execute(ctx, runID, tc.ToolName, args)
		var content string
		if result != nil && result.Success {
			b, _ := json.Marshal(result.Output)
			content = string(b)
		} else {
			errText := "tool call failed"
			if result != nil {
				errText = result.Error
			}
			*errs = append(*errs, errText)
			b, _ := json.Marshal(map[string]string{"error": errText})
			content = string(b)
		}
		messages = append(messages, core.Message{Role: core.RoleTool, Content: content, ToolCallID: tc.ID})
	}

	return messages, lastText, false, nil
}

func (l *Loop) emitInfo(ctx context.Context, runID, eventType, message string, data map[string]any) {
	if l.sink == nil {
		return
	}
	l.sink.EmitInfo(ctx, runID, eventType, message, data)
}
