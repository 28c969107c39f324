package sandbox

import (
	"fmt"

	"github.com/agentcore/core/pkg/core"
)

// PreCheck runs before every effectful step. A denial returns a
// core.CoreError of kind DENIED carrying the policy's reason so callers
// (C6 dispatch, C7 plan runner) can short-circuit without inspecting the
// Verdict directly.
func (p *Policy) PreCheck(step Step) error {
	v := p.Decide(step)
	if v.Allow {
		return nil
	}
	return core.NewError(core.KindDenied, v.Reason, nil)
}

// PostValidator inspects the captured result of an effect that already
// passed PreCheck and rejects it if a semantic expectation fails, e.g. a
// terminal step whose stdout is missing a required sentinel string.
type PostValidator func(output string) error

// PostValidate is a convenience wrapper so call sites share one error
// shape (VALIDATION_FAIL) regardless of which semantic check failed.
func PostValidate(output string, check PostValidator) error {
	if check == nil {
		return nil
	}
	if err := check(output); err != nil {
		return core.NewError(core.KindValidationFail, fmt.Sprintf("post-validate: %v", err), err)
	}
	return nil
}
