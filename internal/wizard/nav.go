// Package wizard runs the multi-step creation flows for grocery lists and
// recipes. Drafts are plain data; every transition is loaded, applied and
// saved through a DraftStore.
package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteStep blocks forward navigation until the step's required fields are set.
	ErrIncompleteStep = errors.New("wizard: current step is incomplete")
	// ErrNotFinalStep is returned by Finish before the last step is reached.
	ErrNotFinalStep = errors.New("wizard: not on the final step")
	// ErrWrongStep is returned when an edit targets a step other than the current one.
	ErrWrongStep     = errors.New("wizard: field belongs to another step")
	ErrDraftNotFound = errors.New("wizard: draft not found")
	ErrItemNotFound  = errors.New("wizard: item not found")
)

// Nav is a step index bounded to [1, Steps]. Drafts embed it, so its JSON
// names must not collide with draft fields such as a recipe's "steps".
type Nav struct {
	Step  int `json:"step"`
	Steps int `json:"step_count"`
}

func newNav(steps int) Nav { return Nav{Step: 1, Steps: steps} }

func (n Nav) Final() bool { return n.Step == n.Steps }

// forward advances one step. It stays put on the final step.
func (n *Nav) forward() {
	if n.Step < n.Steps {
		n.Step++
	}
}

// Back is always permitted and stays put on the first step.
func (n *Nav) Back() {
	if n.Step > 1 {
		n.Step--
	}
}

func (n Nav) require(step int) error {
	if n.Step != step {
		return fmt.Errorf("%w: on step %d, not %d", ErrWrongStep, n.Step, step)
	}
	return nil
}

func incomplete(reason string) error {
	return fmt.Errorf("%w: %s", ErrIncompleteStep, reason)
}
