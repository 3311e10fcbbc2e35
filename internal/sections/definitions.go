package sections

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SectionKind selects how a section's fields are laid out.
type SectionKind int

const (
	// Simple sections keep every field at the top level.
	Simple SectionKind = iota
	// OAuth sections nest token fields under an authorization sub-map.
	OAuth
)

// Well-known identifiers.
const (
	StartID            = "start"
	FinalID            = "final"
	LibrarySelectionID = "library_selection"
	SettingsID         = "settings"
	LibrariesKey       = "libraries"
	AuthorizationKey   = "authorization"
	ValidatedKey       = "validated"
	RunOrderKey        = "run_order"
)

// Definition describes one wizard section.
type Definition struct {
	ID string
	// Name overrides the title-cased identifier in user-facing text.
	Name string
	// Prefix is the catalog position key, e.g. "010".
	Prefix string
	Kind   SectionKind
	// Checked sections have an external credential check.
	Checked bool
	// Emitted sections appear in the final document.
	Emitted bool
	// IntFields are expected to hold integers.
	IntFields []string
	// Transient fields are dropped during assembly in addition to the
	// common transient keys.
	Transient []string
	// Library is set for per-library steps.
	Library *Library
}

// DisplayName returns the user-facing section title.
func (d Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return titleCaser.String(strings.ReplaceAll(d.ID, "_", " "))
}

// ExpectsInt reports whether field should hold an integer.
func (d Definition) ExpectsInt(field string) bool {
	for _, f := range d.IntFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsTransient reports whether key is dropped from the final document.
func (d Definition) IsTransient(key string) bool {
	if IsTransientKey(key) {
		return true
	}
	for _, f := range d.Transient {
		if f == key {
			return true
		}
	}
	return false
}

// IsTransientKey reports whether key is internal to the wizard: the valid
// marker, the validated flag, and tmp_ scratch fields.
func IsTransientKey(key string) bool {
	return key == "valid" || key == ValidatedKey || strings.HasPrefix(key, "tmp_")
}

var titleCaser = cases.Title(language.English)

var definitions = []Definition{
	{ID: StartID, Prefix: "001"},
	{ID: "plex", Prefix: "010", Checked: true, Emitted: true, IntFields: []string{"timeout", "db_cache"}},
	{ID: LibrarySelectionID, Prefix: "011"},
	{ID: "tmdb", Name: "TMDb", Prefix: "020", Checked: true, Emitted: true, IntFields: []string{"cache_expiration"}},
	{ID: "tautulli", Prefix: "030", Checked: true, Emitted: true},
	{ID: "github", Name: "GitHub", Prefix: "040", Checked: true, Emitted: true},
	{ID: "omdb", Name: "OMDb", Prefix: "050", Checked: true, Emitted: true, IntFields: []string{"cache_expiration"}},
	{ID: "mdblist", Name: "MDBList", Prefix: "060", Checked: true, Emitted: true, IntFields: []string{"cache_expiration"}},
	{ID: "notifiarr", Prefix: "070", Checked: true, Emitted: true},
	{ID: "gotify", Prefix: "080", Checked: true, Emitted: true},
	{ID: "webhooks", Prefix: "090", Emitted: true},
	{ID: "anidb", Name: "AniDB", Prefix: "100", Emitted: true, IntFields: []string{"cache_expiration"}},
	{ID: "radarr", Prefix: "110", Checked: true, Emitted: true},
	{ID: "sonarr", Prefix: "120", Checked: true, Emitted: true},
	{ID: "trakt", Prefix: "130", Kind: OAuth, Checked: true, Emitted: true, Transient: []string{"url"}},
	{ID: "mal", Name: "MyAnimeList", Prefix: "140", Kind: OAuth, Emitted: true, Transient: []string{"url", "code_verifier"}},
	{ID: SettingsID, Prefix: "150", Emitted: true, IntFields: []string{
		"cache_expiration", "run_again_delay", "minimum_items", "item_refresh_delay",
		"asset_depth", "overlay_artwork_quality",
	}},
	{ID: "playlist_files", Prefix: "160", Emitted: true},
}

var definitionIndex = func() map[string]Definition {
	index := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		index[def.ID] = def
	}
	return index
}()

// CanonicalOrder lists the top-level keys of the final document in the order
// they are emitted. LibrariesKey aggregates the per-library steps.
var CanonicalOrder = []string{
	LibrariesKey,
	"playlist_files",
	SettingsID,
	"webhooks",
	"plex",
	"tmdb",
	"tautulli",
	"github",
	"omdb",
	"mdblist",
	"notifiarr",
	"gotify",
	"anidb",
	"radarr",
	"sonarr",
	"trakt",
	"mal",
}

// DefaultRunOrder is used when settings carry no run_order.
var DefaultRunOrder = []string{"operations", "metadata", "collections", "overlays"}

// FinalPrefix positions the synthetic terminal step.
const FinalPrefix = "900"

// Definitions returns the fixed section table in catalog order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup resolves a section identifier, including per-library step ids.
func Lookup(id string) (Definition, bool) {
	if def, ok := definitionIndex[id]; ok {
		return def, true
	}
	if lib, ok := ParseLibraryStepID(id); ok {
		return LibraryDefinition(lib), true
	}
	return Definition{}, false
}

// LibraryDefinition synthesizes the definition of a per-library step.
func LibraryDefinition(lib Library) Definition {
	l := lib
	return Definition{
		ID:        lib.StepID(),
		Name:      lib.Name,
		Prefix:    lib.Type.GroupPrefix(),
		Emitted:   true,
		IntFields: []string{"minimum_items"},
		Library:   &l,
	}
}
