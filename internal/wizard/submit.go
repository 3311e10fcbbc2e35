package wizard

import (
	"context"
	"fmt"

	"quickstart/internal/catalog"
	"quickstart/internal/logging"
	"quickstart/internal/sections"
	"quickstart/internal/services"
	"quickstart/internal/settings"
	"quickstart/internal/validators"
)

// Submission is the outcome of storing one step.
type Submission struct {
	Record settings.Record
	// Next is where the wizard goes after this step, computed after the
	// write so a new library selection is already reflected.
	Next catalog.Position
	// Warnings are non-fatal field coercion problems.
	Warnings []*sections.InputNormalizationError
	// Check is set when the section was revalidated server-side.
	Check *validators.Result
}

// SubmitStep normalizes raw form fields for stepID and stores them. The
// synthetic start and final steps store nothing. A storage failure leaves the
// previously stored record untouched.
func (s *Service) SubmitStep(ctx context.Context, runID, stepID string, raw map[string]string) (*Submission, error) {
	id, err := canonicalRun(runID)
	if err != nil {
		return nil, err
	}
	ctx = services.WithStep(services.WithRunID(ctx, id), stepID)
	logger := logging.WithContext(ctx, s.logger)

	if stepID == sections.StartID || stepID == sections.FinalID {
		next, err := s.Navigate(ctx, id, stepID)
		if err != nil {
			return nil, err
		}
		return &Submission{Record: settings.Record{RunID: id, Section: stepID}, Next: s.advance(ctx, id, next)}, nil
	}

	def, ok := sections.Lookup(stepID)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "wizard", "submit", fmt.Sprintf("unknown section %q", stepID), nil)
	}

	data, warnings := sections.Normalize(stepID, raw)
	for _, w := range warnings {
		logger.Warn("field kept as text", logging.String("field", w.Field), logging.String("expected", w.Expected))
	}
	userEntered := sections.UserEntered(stepID, data)

	rec := settings.Record{RunID: id, Section: stepID, UserEntered: userEntered, Data: data}
	sub := &Submission{Warnings: warnings}
	switch {
	case def.Checked && s.revalidate && s.checks.Has(stepID) && userEntered:
		result := s.checks.Validate(ctx, stepID, validators.Credentials(raw))
		sub.Check = &result
		rec.Validated = result.Validated
		mergeMetadata(data, result.Metadata)
		data.Set(sections.ValidatedKey, sections.BoolValue(result.Validated))
	case def.Checked:
		flag, _ := data.Get(sections.ValidatedKey)
		rec.Validated = flag.Truthy()
	default:
		rec.Validated = userEntered
	}

	if err := s.store.Put(ctx, rec); err != nil {
		logger.Error("section not saved", logging.Error(err))
		return nil, err
	}
	stored, err := s.store.Get(ctx, id, stepID)
	if err != nil {
		return nil, err
	}
	sub.Record = stored
	logger.Info("section saved",
		logging.Bool("validated", stored.Validated),
		logging.Bool("user_entered", stored.UserEntered),
	)

	current, err := s.Navigate(ctx, id, stepID)
	if err != nil {
		return nil, err
	}
	sub.Next = s.advance(ctx, id, current)
	return sub, nil
}

// advance returns the position following pos.
func (s *Service) advance(ctx context.Context, runID string, pos catalog.Position) catalog.Position {
	next, err := s.Navigate(ctx, runID, pos.Next)
	if err != nil {
		return pos
	}
	return next
}

// mergeMetadata copies check results into data for keys the section already
// carries, such as Plex's db_cache or Trakt's authorization block.
func mergeMetadata(data, metadata *sections.Map) {
	if metadata == nil {
		return
	}
	for key, value := range metadata.All() {
		if data.Has(key) {
			data.Set(key, value.Clone())
		}
	}
}
