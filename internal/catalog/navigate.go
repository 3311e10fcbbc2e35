package catalog

import "fmt"

// UnknownStepError records a navigation request for a step that is not in
// the catalog. Navigate recovers from it by redirecting to the first step.
type UnknownStepError struct {
	StepID string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q", e.StepID)
}

// Position describes where a step sits in the wizard.
type Position struct {
	Step     Step   `json:"step"`
	Progress int    `json:"progress"`
	Prev     string `json:"prev"`
	Next     string `json:"next"`
	// Redirected is set when the requested step was unknown.
	Redirected bool   `json:"redirected,omitempty"`
	Requested  string `json:"requested,omitempty"`
}

// UnknownStep returns the recovered error when the position is a redirect.
func (p Position) UnknownStep() error {
	if !p.Redirected {
		return nil
	}
	return &UnknownStepError{StepID: p.Requested}
}

// Navigate resolves stepID to its position. The terminal step's next is
// itself; every other step points at its neighbours, with the first step's
// prev pointing back at the first step.
func (c *Catalog) Navigate(stepID string) Position {
	step, ok := c.Step(stepID)
	pos := Position{Requested: stepID}
	if !ok {
		step = c.First()
		pos.Redirected = true
	}
	pos.Step = step
	pos.Progress = c.Progress(step.ID)
	pos.Prev = step.Prev
	pos.Next = step.Next
	if step.Terminal {
		pos.Next = step.ID
	}
	return pos
}
