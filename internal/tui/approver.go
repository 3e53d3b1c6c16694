package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/ShayCichocki/mastercoder/internal/orchestrator"
)

// ErrPromptAborted is returned when the user aborts a confirmation prompt.
var ErrPromptAborted = errors.New("prompt aborted")

// confirmFunc asks a yes/no question and returns the answer.
type confirmFunc func(title, description string) (bool, error)

// ConfirmApprover asks on the terminal before each gated phase.
type ConfirmApprover struct {
	confirm confirmFunc
}

var _ orchestrator.Approver = (*ConfirmApprover)(nil)

// NewConfirmApprover creates an approver backed by a huh confirm prompt.
func NewConfirmApprover() *ConfirmApprover {
	return &ConfirmApprover{confirm: huhConfirm}
}

// Approve prompts for phaseDescription. An aborted prompt counts as a decline.
func (a *ConfirmApprover) Approve(ctx context.Context, phaseDescription string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := a.confirm(fmt.Sprintf("Run %s?", phaseDescription), "Declining skips this phase and continues with the next one.")
	if errors.Is(err, ErrPromptAborted) {
		return false, nil
	}
	return ok, err
}

// ConfirmPlan asks once whether to execute a plan of n agents.
func ConfirmPlan(agents, phases int) (bool, error) {
	ok, err := huhConfirm(
		fmt.Sprintf("Execute %d agents across %d phases?", agents, phases),
		"",
	)
	if errors.Is(err, ErrPromptAborted) {
		return false, nil
	}
	return ok, err
}

func huhConfirm(title, description string) (bool, error) {
	var answer bool
	c := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if description != "" {
		c = c.Description(description)
	}

	if err := huh.NewForm(huh.NewGroup(c)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrPromptAborted
		}
		return false, err
	}
	return answer, nil
}
