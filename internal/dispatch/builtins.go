package dispatch

import (
	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/routing"
	"github.com/agentcore/core/internal/sandbox"
	"github.com/agentcore/core/internal/tools/adapter"
	"github.com/agentcore/core/internal/tools/approval"
	"github.com/agentcore/core/internal/tools/editor"
	"github.com/agentcore/core/internal/tools/exec"
	"github.com/agentcore/core/internal/tools/filesystem"
	"github.com/agentcore/core/internal/tools/journaltool"
	"github.com/agentcore/core/internal/tools/memory"
	"github.com/agentcore/core/internal/tools/report"
	"github.com/agentcore/core/internal/tools/search"
	"github.com/agentcore/core/internal/tools/think"
	"github.com/agentcore/core/pkg/core"
)

// BuiltinsConfig bundles the shared infrastructure every built-in tool
// needs. Any field may be nil or zero; the corresponding tools degrade to
// their documented "not configured" / no-op behavior rather than failing
// to register.
type BuiltinsConfig struct {
	Workspace       string
	Policy          *sandbox.Policy
	Journal         *journal.Journal
	Sink            *audit.Sink
	Router          *routing.Router
	MemoryStore     memory.Store
	ApprovalHooks   approval.Decider
	EmailHandler    adapter.Handler
	CalendarHandler adapter.Handler
	ChatHandler     adapter.Handler
	NotifyHandler   adapter.Handler
	ComputerHandler adapter.Handler
}

// RegisterBuiltins constructs and registers every built-in named in
// spec.md §4.6 against r. It is the single place that wires the tool
// layer's shared dependencies (sandbox, journal, router, audit sink)
// into concrete tool instances.
func RegisterBuiltins(r *Registry, cfg BuiltinsConfig) error {
	procManager := exec.NewManager(cfg.Workspace)

	tools := []Tool{
		filesystem.New(filesystem.Config{Workspace: cfg.Workspace}, cfg.Policy, cfg.Journal),
		editor.New(editor.Config{Workspace: cfg.Workspace}, cfg.Policy, cfg.Journal),
		exec.NewExecTool("terminal", procManager, cfg.Policy, cfg.Journal),
		exec.NewProcessTool(procManager),
		search.New(cfg.Router),
		think.New(),
		memory.New(cfg.MemoryStore),
		approval.New(cfg.Sink, cfg.ApprovalHooks),
		report.New(cfg.Sink),
		journaltool.New(cfg.Journal),
		adapter.New(adapter.Config{Name: "computer", Description: "Screenshot, mouse, keyboard, and window operations on a remote desktop.", Action: core.ActionBrowserAction}, cfg.Journal, cfg.ComputerHandler),
		adapter.New(adapter.Config{Name: "email", Description: "Send or read email.", Action: core.ActionEmailSend}, cfg.Journal, cfg.EmailHandler),
		adapter.New(adapter.Config{Name: "calendar", Description: "Create or query calendar events.", Action: core.ActionCalendarEvent}, cfg.Journal, cfg.CalendarHandler),
		adapter.New(adapter.Config{Name: "chat", Description: "Send a chat message to a configured channel.", Action: core.ActionChatMessage}, cfg.Journal, cfg.ChatHandler),
		adapter.New(adapter.Config{Name: "notify", Description: "Send a generic notification.", Action: core.ActionNotify}, cfg.Journal, cfg.NotifyHandler),
	}

	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
