package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/agentcore/core/pkg/core"
)

// defaultCLIExecTimeout bounds a single invocation of the wrapped CLI
// tool; local model-serving CLIs (e.g. a llama.cpp or ollama front-end)
// can legitimately take longer than a hosted API round trip.
const defaultCLIExecTimeout = 120 * time.Second

// CLIExecProvider adapts an arbitrary command-line LM client to
// core.Provider by shelling out once per Complete call: it writes the
// last user message to the command's stdin and treats stdout as the
// assistant's reply. It does not support tool calls, since CLI tools
// have no structured function-calling contract in general.
type CLIExecProvider struct {
	name    string
	command string
	args    []string
	timeout time.Duration
}

// CLIExecConfig configures a CLIExecProvider.
type CLIExecConfig struct {
	Name    string
	Command string
	Args    []string
	Timeout time.Duration
}

// NewCLIExecProvider builds a CLIExecProvider.
func NewCLIExecProvider(config CLIExecConfig) *CLIExecProvider {
	if config.Timeout <= 0 {
		config.Timeout = defaultCLIExecTimeout
	}
	return &CLIExecProvider{
		name:    config.Name,
		command: config.Command,
		args:    config.Args,
		timeout: config.Timeout,
	}
}

func (p *CLIExecProvider) Name() string    { return p.name }
func (p *CLIExecProvider) Available() bool { return p.command != "" }

func (p *CLIExecProvider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	if p.command == "" {
		return nil, errors.New(p.name + ": no command configured")
	}

	prompt := lastUserPrompt(req.Messages)
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, wrapProviderError(p.name, p.command, fmt.Errorf("%w: %s", err, stderr.String()))
	}

	return &core.CompletionResponse{
		Provider:     p.name,
		Model:        p.command,
		Message:      core.Message{Role: core.RoleAssistant, Content: strings.TrimSpace(stdout.String())},
		FinishReason: core.FinishStop,
	}, nil
}

func lastUserPrompt(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
