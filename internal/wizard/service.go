package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"quickstart/internal/assemble"
	"quickstart/internal/catalog"
	"quickstart/internal/config"
	"quickstart/internal/logging"
	"quickstart/internal/runid"
	"quickstart/internal/schema"
	"quickstart/internal/sections"
	"quickstart/internal/services"
	"quickstart/internal/settings"
	"quickstart/internal/validators"
)

// SchemaSource supplies the configuration schema; nil means unavailable.
type SchemaSource interface {
	Load(ctx context.Context) *schema.Schema
}

// Checker runs external credential checks.
type Checker interface {
	Has(section string) bool
	Validate(ctx context.Context, section string, creds validators.Credentials) validators.Result
}

// Service is the wizard core.
type Service struct {
	store       settings.Store
	assembler   *assemble.Assembler
	schemas     SchemaSource
	checks      Checker
	revalidate  bool
	headerStyle string
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSchemaSource overrides the schema loader.
func WithSchemaSource(source SchemaSource) Option {
	return func(s *Service) { s.schemas = source }
}

// WithChecker overrides the external validator registry.
func WithChecker(checker Checker) Option {
	return func(s *Service) { s.checks = checker }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New wires a service over store using cfg for everything else.
func New(cfg *config.Config, store settings.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		revalidate:  cfg.Wizard.RevalidateOnSubmit,
		headerStyle: cfg.Wizard.HeaderStyle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.schemas == nil {
		s.schemas = schema.NewLoader(cfg, schema.WithLogger(s.logger))
	}
	if s.checks == nil {
		s.checks = validators.NewRegistry(cfg, validators.WithLogger(s.logger))
	}
	assembleOpts := []assemble.Option{assemble.WithLogger(s.logger)}
	if !cfg.RequireValidated() {
		assembleOpts = append(assembleOpts, assemble.WithUserEnteredOnly())
	}
	s.assembler = assemble.New(store, assembleOpts...)
	s.logger = logging.NewComponentLogger(s.logger, "wizard")
	return s
}

// NewRun returns a run identity not used by any stored run.
func (s *Service) NewRun(ctx context.Context) (string, error) {
	existing, err := s.store.Runs(ctx)
	if err != nil {
		return "", fmt.Errorf("list runs: %w", err)
	}
	id, err := runid.NewUnique(func(candidate string) (bool, error) {
		return slices.Contains(existing, candidate), nil
	})
	if err != nil {
		return "", err
	}
	logging.WithContext(ctx, s.logger).Info("run created", logging.String(logging.FieldRunID, id))
	return id, nil
}

// Runs lists stored runs, most recently updated first.
func (s *Service) Runs(ctx context.Context) ([]string, error) {
	return s.store.Runs(ctx)
}

// Catalog builds the run's step catalog from its library selection.
func (s *Service) Catalog(ctx context.Context, runID string) (*catalog.Catalog, error) {
	id, err := canonicalRun(runID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, id, sections.LibrarySelectionID)
	if err != nil {
		return nil, fmt.Errorf("read library selection: %w", err)
	}
	var libs []sections.Library
	if rec.Exists() {
		libs = sections.SelectedLibraries(rec.Data)
	}
	return catalog.Build(libs), nil
}

// Navigate resolves stepID within the run's catalog. Unknown steps resolve to
// the first step and are logged, never returned as errors.
func (s *Service) Navigate(ctx context.Context, runID, stepID string) (catalog.Position, error) {
	cat, err := s.Catalog(ctx, runID)
	if err != nil {
		return catalog.Position{}, err
	}
	pos := cat.Navigate(stepID)
	if unknown := pos.UnknownStep(); unknown != nil {
		logging.WithContext(ctx, s.logger).Debug("redirecting unknown step",
			logging.String(logging.FieldRunID, runID),
			logging.Error(unknown),
		)
	}
	return pos, nil
}

// StepView is everything needed to show one step.
type StepView struct {
	Position catalog.Position
	Record   settings.Record
	// Data is the stored data, or the section defaults when nothing is stored.
	Data *sections.Map
	Form map[string]string
}

// Step loads the position and current data of a step.
func (s *Service) Step(ctx context.Context, runID, stepID string) (*StepView, error) {
	id, err := canonicalRun(runID)
	if err != nil {
		return nil, err
	}
	pos, err := s.Navigate(ctx, id, stepID)
	if err != nil {
		return nil, err
	}
	view := &StepView{Position: pos}
	section := pos.Step.ID
	if pos.Step.Terminal || section == sections.StartID {
		view.Data = sections.NewMap()
		view.Form = map[string]string{}
		return view, nil
	}
	rec, err := s.store.Get(ctx, id, section)
	if err != nil {
		return nil, fmt.Errorf("read section %s: %w", section, err)
	}
	view.Record = rec
	view.Data = rec.Data
	if !rec.Exists() {
		view.Data = sections.Defaults(section)
	}
	view.Form = sections.ToForm(section, view.Data)
	return view, nil
}

// Records lists the stored sections of a run.
func (s *Service) Records(ctx context.Context, runID string) ([]settings.Record, error) {
	id, err := canonicalRun(runID)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, id)
}

// Reset clears one section of a run, or the whole run when section is empty.
func (s *Service) Reset(ctx context.Context, runID, section string) error {
	id, err := canonicalRun(runID)
	if err != nil {
		return err
	}
	if err := s.store.Reset(ctx, id, section); err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Info("run reset",
		logging.String(logging.FieldRunID, id),
		logging.String(logging.FieldStep, section),
	)
	return nil
}

// ValidateSection runs the external check for section.
func (s *Service) ValidateSection(ctx context.Context, section string, creds validators.Credentials) validators.Result {
	return s.checks.Validate(ctx, section, creds)
}

// Status summarizes which prerequisite sections of a run are validated.
type Status struct {
	PlexValid          bool `json:"plex_valid"`
	TMDbValid          bool `json:"tmdb_valid"`
	NotifiarrAvailable bool `json:"notifiarr_available"`
	GotifyAvailable    bool `json:"gotify_available"`
}

// MinimumSettings reports whether the run can produce a usable config.
func (st Status) MinimumSettings() bool {
	return st.PlexValid && st.TMDbValid
}

// Status reads the validation flags the wizard pages depend on.
func (s *Service) Status(ctx context.Context, runID string) (Status, error) {
	id, err := canonicalRun(runID)
	if err != nil {
		return Status{}, err
	}
	flags := make(map[string]bool, 4)
	for _, section := range []string{"plex", "tmdb", "notifiarr", "gotify"} {
		rec, err := s.store.Get(ctx, id, section)
		if err != nil {
			return Status{}, fmt.Errorf("read section %s: %w", section, err)
		}
		flags[section] = rec.Exists() && rec.Validated
	}
	return Status{
		PlexValid:          flags["plex"],
		TMDbValid:          flags["tmdb"],
		NotifiarrAvailable: flags["notifiarr"],
		GotifyAvailable:    flags["gotify"],
	}, nil
}

func canonicalRun(runID string) (string, error) {
	id, err := runid.Normalize(runID)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "wizard", "run identity", "invalid run identity", err)
	}
	return id, nil
}
