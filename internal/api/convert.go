package api

import (
	"errors"

	"quickstart/internal/catalog"
	"quickstart/internal/sections"
	"quickstart/internal/services"
	"quickstart/internal/settings"
	"quickstart/internal/validators"
	"quickstart/internal/wizard"
)

// FromStep converts a catalog step to its API representation.
func FromStep(step catalog.Step) Step {
	return Step{
		ID:          step.ID,
		DisplayName: step.DisplayName,
		Position:    step.Position,
		Ordinal:     step.Ordinal,
		Prev:        step.Prev,
		Next:        step.Next,
		Terminal:    step.Terminal,
	}
}

// FromSteps converts a catalog's steps in order.
func FromSteps(steps []catalog.Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, step := range steps {
		out = append(out, FromStep(step))
	}
	return out
}

// FromPosition converts a navigation result.
func FromPosition(pos catalog.Position) Position {
	return Position{
		Step:       FromStep(pos.Step),
		Progress:   pos.Progress,
		Prev:       pos.Prev,
		Next:       pos.Next,
		Redirected: pos.Redirected,
		Requested:  pos.Requested,
	}
}

// FromRecord converts a stored section. Form fields are derived from the data.
func FromRecord(rec settings.Record) Record {
	dto := Record{
		RunID:       rec.RunID,
		Section:     rec.Section,
		Stored:      rec.Exists(),
		Validated:   rec.Validated,
		UserEntered: rec.UserEntered,
		Data:        rec.Data,
	}
	if rec.Data != nil {
		dto.Form = sections.ToForm(rec.Section, rec.Data)
	}
	if !rec.UpdatedAt.IsZero() {
		dto.UpdatedAt = rec.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromRecords converts every record of a run.
func FromRecords(records []settings.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

// FromStepView converts the data shown on a step. Unstored sections carry
// their defaults so clients can prefill forms.
func FromStepView(view *wizard.StepView) StepResponse {
	if view == nil {
		return StepResponse{}
	}
	rec := FromRecord(view.Record)
	rec.Section = view.Position.Step.ID
	rec.Data = view.Data
	rec.Form = view.Form
	return StepResponse{Position: FromPosition(view.Position), Record: rec}
}

// FromValidation converts an external check result.
func FromValidation(result validators.Result) ValidationResult {
	dto := ValidationResult{
		Section:   result.Section,
		Validated: result.Validated,
		Error:     result.Error,
		Metadata:  result.Metadata,
	}
	var ext *validators.ExternalValidationError
	if errors.As(result.Err, &ext) {
		dto.Timeout = ext.Timeout
	} else if errors.Is(result.Err, services.ErrTimeout) {
		dto.Timeout = true
	}
	return dto
}

// FromSubmission converts the outcome of a step submission.
func FromSubmission(sub *wizard.Submission) Submission {
	if sub == nil {
		return Submission{}
	}
	dto := Submission{
		Record: FromRecord(sub.Record),
		Next:   FromPosition(sub.Next),
	}
	for _, w := range sub.Warnings {
		dto.Warnings = append(dto.Warnings, FieldWarning{Field: w.Field, Value: w.Value, Expected: w.Expected})
	}
	if sub.Check != nil {
		check := FromValidation(*sub.Check)
		dto.Check = &check
	}
	return dto
}

// FromFinalize converts a finalized run.
func FromFinalize(res *wizard.Result) FinalizeResult {
	if res == nil {
		return FinalizeResult{}
	}
	dto := FinalizeResult{
		RunID: res.RunID,
		Verdict: Verdict{
			Status:  string(res.Verdict.Status),
			Path:    res.Verdict.Path,
			Message: res.Verdict.Message,
		},
		Included: []string{},
		Config:   res.Text,
	}
	if res.Composite != nil {
		dto.Included = append(dto.Included, res.Composite.Included...)
		dto.Omitted = res.Composite.Omitted
	}
	return dto
}

// FromRunStatus converts the minimum-settings summary of a run.
func FromRunStatus(runID string, st wizard.Status) RunStatus {
	return RunStatus{
		RunID:              runID,
		PlexValid:          st.PlexValid,
		TMDbValid:          st.TMDbValid,
		MinimumSettings:    st.MinimumSettings(),
		NotifiarrAvailable: st.NotifiarrAvailable,
		GotifyAvailable:    st.GotifyAvailable,
	}
}
