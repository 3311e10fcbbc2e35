package wizard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"quickstart/internal/assemble"
	"quickstart/internal/logging"
	"quickstart/internal/render"
	"quickstart/internal/schema"
	"quickstart/internal/services"
)

// FinalizeOptions tune the rendered output.
type FinalizeOptions struct {
	// HeaderStyle overrides wizard.header_style when set.
	HeaderStyle string
}

// Result is a finalized run. Text is produced even when the verdict is
// invalid or unknown so the user can see what would be written.
type Result struct {
	RunID     string
	Composite *assemble.Composite
	Verdict   schema.Verdict
	Text      string
}

// Finalize assembles, validates and renders the run. Nothing is cached
// between calls.
func (s *Service) Finalize(ctx context.Context, runID string, opts FinalizeOptions) (*Result, error) {
	id, err := canonicalRun(runID)
	if err != nil {
		return nil, err
	}
	ctx = services.WithRunID(ctx, id)

	var (
		composite *assemble.Composite
		loaded    *schema.Schema
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		composite, err = s.assembler.Assemble(gctx, id)
		return err
	})
	g.Go(func() error {
		loaded = s.schemas.Load(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble run: %w", err)
	}

	verdict := schema.Validate(composite.Document, loaded)

	style := opts.HeaderStyle
	if style == "" {
		style = s.headerStyle
	}
	text, err := render.Render(composite.Document, render.Options{HeaderStyle: style, RunID: id})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "wizard", "render", "render config", err)
	}

	logging.WithContext(ctx, s.logger).Info("run finalized",
		logging.String("verdict", string(verdict.Status)),
		logging.String("path", verdict.Path),
		logging.Int("sections", len(composite.Included)),
	)
	return &Result{RunID: id, Composite: composite, Verdict: verdict, Text: text}, nil
}
