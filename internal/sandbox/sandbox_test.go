package sandbox

import (
	"testing"
)

func TestPolicyDecideFilesystem(t *testing.T) {
	p := NewPolicy("/workspace", nil)

	tests := []struct {
		name      string
		path      string
		wantAllow bool
		wantReason string
	}{
		{name: "relative path inside root", path: "demo/main.sh", wantAllow: true},
		{name: "absolute path inside root", path: "/workspace/demo/main.sh", wantAllow: true},
		{name: "absolute path outside root", path: "/etc/passwd", wantAllow: false, wantReason: "path_outside_sandbox"},
		{name: "relative traversal escapes root", path: "../outside/main.sh", wantAllow: false, wantReason: "path_outside_sandbox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := p.Decide(Step{Kind: KindFilesystem, Path: tt.path})
			if v.Allow != tt.wantAllow {
				t.Fatalf("Allow = %v, want %v", v.Allow, tt.wantAllow)
			}
			if !tt.wantAllow && v.Reason != tt.wantReason {
				t.Fatalf("Reason = %q, want %q", v.Reason, tt.wantReason)
			}
		})
	}
}

func TestPolicyDecideTerminal(t *testing.T) {
	p := NewPolicy("/workspace", []string{`^\./demo_v2/main\.sh$`, `^echo `})

	tests := []struct {
		name      string
		command   string
		wantAllow bool
	}{
		{name: "matches first pattern", command: "./demo_v2/main.sh", wantAllow: true},
		{name: "matches second pattern", command: "echo hello", wantAllow: true},
		{name: "matches no pattern", command: "rm -rf /", wantAllow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := p.Decide(Step{Kind: KindTerminal, Command: tt.command})
			if v.Allow != tt.wantAllow {
				t.Fatalf("Allow = %v, want %v", v.Allow, tt.wantAllow)
			}
			if !tt.wantAllow && v.Reason != "terminal_cmd_not_whitelisted" {
				t.Fatalf("Reason = %q, want terminal_cmd_not_whitelisted", v.Reason)
			}
		})
	}
}

func TestPolicyDecideOtherKindAllowsByDefault(t *testing.T) {
	p := NewPolicy("/workspace", nil)
	v := p.Decide(Step{Kind: KindOther})
	if !v.Allow {
		t.Fatalf("expected default allow for non-filesystem/terminal kinds")
	}
}

func TestPreCheckReturnsCoreError(t *testing.T) {
	p := NewPolicy("/workspace", nil)
	err := p.PreCheck(Step{Kind: KindFilesystem, Path: "/etc/passwd"})
	if err == nil {
		t.Fatal("expected denial error")
	}
}
