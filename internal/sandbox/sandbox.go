// Package sandbox implements the pure allow/deny policy that mediates
// filesystem and shell effects (C2). Decide never touches the filesystem
// or a subprocess itself — it only judges a proposed Step.
package sandbox

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Kind is the effect category a Step proposes.
type Kind string

const (
	KindFilesystem Kind = "filesystem"
	KindTerminal   Kind = "terminal"
	KindOther      Kind = "other"
)

// Step is the minimal shape Decide needs to judge a proposed effect.
type Step struct {
	Kind Kind
	// Path is the target of a filesystem effect.
	Path string
	// Command is the shell command string of a terminal effect.
	Command string
}

// Verdict is the outcome of Decide.
type Verdict struct {
	Allow  bool
	Reason string
}

func allow() Verdict { return Verdict{Allow: true} }

func deny(reason string) Verdict { return Verdict{Allow: false, Reason: reason} }

// Policy holds the configured allow-list state Decide consults.
type Policy struct {
	// AllowedRoot is the filesystem prefix every filesystem effect's
	// target path must normalize under.
	AllowedRoot string
	// CommandWhitelist is the set of regular expressions a terminal
	// effect's command must match at least one of.
	CommandWhitelist []*regexp.Regexp
}

// NewPolicy compiles a Policy from a root directory and a list of regex
// patterns. Patterns that fail to compile are skipped rather than
// aborting construction, mirroring the "never refuse to run" posture the
// plan runner takes on cyclic graphs (spec.md §4.7) — a bad pattern
// should shrink the whitelist, not crash the host.
func NewPolicy(allowedRoot string, commandPatterns []string) *Policy {
	p := &Policy{AllowedRoot: allowedRoot}
	for _, pat := range commandPatterns {
		if re, err := regexp.Compile(pat); err == nil {
			p.CommandWhitelist = append(p.CommandWhitelist, re)
		}
	}
	return p
}

// Decide applies the rules of spec.md §4.1: DENY filesystem effects whose
// normalized target escapes AllowedRoot; DENY terminal effects whose
// command matches no whitelist pattern; ALLOW everything else.
func (p *Policy) Decide(step Step) Verdict {
	switch step.Kind {
	case KindFilesystem:
		if !p.pathAllowed(step.Path) {
			return deny("path_outside_sandbox")
		}
		return allow()
	case KindTerminal:
		if !p.commandAllowed(step.Command) {
			return deny("terminal_cmd_not_whitelisted")
		}
		return allow()
	default:
		return allow()
	}
}

func (p *Policy) pathAllowed(path string) bool {
	root := strings.TrimSpace(p.AllowedRoot)
	if root == "" {
		return false
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	var targetAbs string
	if filepath.IsAbs(path) {
		targetAbs = filepath.Clean(path)
	} else {
		targetAbs, err = filepath.Abs(filepath.Join(rootAbs, path))
		if err != nil {
			return false
		}
	}
	rel, err := filepath.Rel(rootAbs, targetAbs)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

func (p *Policy) commandAllowed(cmd string) bool {
	if len(p.CommandWhitelist) == 0 {
		return false
	}
	for _, re := range p.CommandWhitelist {
		if re.MatchString(cmd) {
			return true
		}
	}
	return false
}
