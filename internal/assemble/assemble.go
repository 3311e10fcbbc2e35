package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"quickstart/internal/logging"
	"quickstart/internal/sections"
	"quickstart/internal/settings"
)

// fetchConcurrency bounds parallel record reads for one assembly.
const fetchConcurrency = 8

// Composite is the assembled document plus the bookkeeping of which sections
// made it in.
type Composite struct {
	Document *sections.Map
	// Included and Omitted list section ids in canonical order; library steps
	// are listed by their step id.
	Included []string
	Omitted  []string
}

// Assembler builds composite documents from a settings store.
type Assembler struct {
	store            settings.Store
	requireValidated bool
	logger           *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithUserEnteredOnly drops the validated requirement from the inclusion rule.
func WithUserEnteredOnly() Option {
	return func(a *Assembler) { a.requireValidated = false }
}

// WithLogger sets the assembler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// New returns an assembler reading from store.
func New(store settings.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:            store,
		requireValidated: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "assemble")
	return a
}

// Included reports whether rec passes the assembler's inclusion rule.
func (a *Assembler) Included(rec settings.Record) bool {
	if !rec.Exists() || !rec.UserEntered {
		return false
	}
	return rec.Validated || !a.requireValidated
}

// Assemble merges every includable section of runID.
func (a *Assembler) Assemble(ctx context.Context, runID string) (*Composite, error) {
	selection, err := a.store.Get(ctx, runID, sections.LibrarySelectionID)
	if err != nil {
		return nil, fmt.Errorf("read library selection: %w", err)
	}
	var libs []sections.Library
	if selection.Exists() {
		libs = sections.SelectedLibraries(selection.Data)
	}

	ids := make([]string, 0, len(sections.CanonicalOrder)+len(libs))
	for _, id := range sections.CanonicalOrder {
		if id != sections.LibrariesKey {
			ids = append(ids, id)
		}
	}
	for _, lib := range libs {
		ids = append(ids, lib.StepID())
	}

	results := make([]settings.Record, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := a.store.Get(gctx, runID, id)
			if err != nil {
				return fmt.Errorf("read section %s: %w", id, err)
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	records := make(map[string]settings.Record, len(ids))
	for i, id := range ids {
		records[id] = results[i]
	}

	composite := &Composite{Document: sections.NewMap()}
	for _, id := range sections.CanonicalOrder {
		if id == sections.LibrariesKey {
			a.addLibraries(composite, libs, records)
			continue
		}
		rec := records[id]
		if !a.Included(rec) {
			composite.Omitted = append(composite.Omitted, id)
			continue
		}
		def, _ := sections.Lookup(id)
		composite.Document.Set(id, sections.MapValue(clean(rec.Data, &def)))
		composite.Included = append(composite.Included, id)
	}

	a.logger.Debug("assembled document",
		logging.String(logging.FieldRunID, runID),
		logging.String("included", strings.Join(composite.Included, ",")),
		logging.Int("omitted", len(composite.Omitted)),
	)
	return composite, nil
}

func (a *Assembler) addLibraries(composite *Composite, libs []sections.Library, records map[string]settings.Record) {
	libraries := sections.NewMap()
	for _, lib := range libs {
		id := lib.StepID()
		rec := records[id]
		if !a.Included(rec) {
			composite.Omitted = append(composite.Omitted, id)
			continue
		}
		def := sections.LibraryDefinition(lib)
		libraries.Set(lib.Name, sections.MapValue(clean(rec.Data, &def)))
		composite.Included = append(composite.Included, id)
	}
	if libraries.Len() > 0 {
		composite.Document.Set(sections.LibrariesKey, sections.MapValue(libraries))
	}
}

func clean(data *sections.Map, def *sections.Definition) *sections.Map {
	stripped := sections.StripTransient(data, def)
	out := sections.NewMap()
	for key, value := range stripped.All() {
		out.Set(key, coerceBools(value))
	}
	return out
}

// coerceBools turns string "true"/"false" leftovers into booleans at any depth.
func coerceBools(value sections.Value) sections.Value {
	switch value.Kind() {
	case sections.KindString:
		s, _ := value.Str()
		switch {
		case strings.EqualFold(s, "true"):
			return sections.BoolValue(true)
		case strings.EqualFold(s, "false"):
			return sections.BoolValue(false)
		}
	case sections.KindList:
		items, _ := value.List()
		out := make([]sections.Value, 0, len(items))
		for _, item := range items {
			out = append(out, coerceBools(item))
		}
		return sections.ListValue(out...)
	case sections.KindMap:
		m, _ := value.Map()
		out := sections.NewMap()
		for key, item := range m.All() {
			out.Set(key, coerceBools(item))
		}
		return sections.MapValue(out)
	}
	return value
}
