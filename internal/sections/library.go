package sections

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// LibraryType is the Plex library kind of a selected library.
type LibraryType string

const (
	MovieLibrary LibraryType = "movie"
	ShowLibrary  LibraryType = "show"
	MusicLibrary LibraryType = "music"
)

// LibraryTypes lists the repeatable library groups in catalog order.
var LibraryTypes = []LibraryType{MovieLibrary, ShowLibrary, MusicLibrary}

// ParseLibraryType accepts Plex and wizard spellings of a library kind.
func ParseLibraryType(raw string) (LibraryType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies", "mov":
		return MovieLibrary, true
	case "show", "shows", "tv", "sho":
		return ShowLibrary, true
	case "music", "artist", "mus":
		return MusicLibrary, true
	}
	return "", false
}

// StepPrefix is the short tag used in per-library step ids.
func (t LibraryType) StepPrefix() string {
	switch t {
	case MovieLibrary:
		return "mov"
	case ShowLibrary:
		return "sho"
	case MusicLibrary:
		return "mus"
	}
	return ""
}

// GroupPrefix is the catalog position key of the repeatable group.
func (t LibraryType) GroupPrefix() string {
	switch t {
	case MovieLibrary:
		return "012"
	case ShowLibrary:
		return "013"
	case MusicLibrary:
		return "014"
	}
	return ""
}

// Library is one library the user selected for configuration.
type Library struct {
	Name string
	Type LibraryType
	// Step overrides the derived step id. UniqueLibraries sets it when a
	// name slugs to an id an earlier library already holds.
	Step string
}

// StepID returns the wizard step and section id of the library.
func (l Library) StepID() string {
	if l.Step != "" {
		return l.Step
	}
	return l.Type.StepPrefix() + "-" + slug.Make(l.Name)
}

// UniqueLibraries drops repeated selections of the same library and gives
// every remaining library its own step id. A name whose slug is already
// taken, such as "A B" after "a-b", gets a numeric suffix: "mov-a-b-2".
func UniqueLibraries(libs []Library) []Library {
	type key struct {
		name string
		kind LibraryType
	}
	picked := make(map[key]struct{}, len(libs))
	taken := make(map[string]struct{}, len(libs))
	out := make([]Library, 0, len(libs))
	for _, lib := range libs {
		k := key{name: lib.Name, kind: lib.Type}
		if _, dup := picked[k]; dup {
			continue
		}
		picked[k] = struct{}{}
		base := lib.StepID()
		id := base
		for n := 2; ; n++ {
			if _, used := taken[id]; !used {
				break
			}
			id = base + "-" + strconv.Itoa(n)
		}
		if id != base {
			lib.Step = id
		}
		taken[id] = struct{}{}
		out = append(out, lib)
	}
	return out
}

// ParseLibraryStepID recognises ids produced by Library.StepID. The returned
// Name is the slug, not the original library name.
func ParseLibraryStepID(id string) (Library, bool) {
	tag, rest, ok := strings.Cut(id, "-")
	if !ok || rest == "" {
		return Library{}, false
	}
	for _, t := range LibraryTypes {
		if t.StepPrefix() == tag {
			return Library{Name: rest, Type: t}, true
		}
	}
	return Library{}, false
}

// SelectedLibraries reads the library list stored by the library selection
// step. Entries without a name or with an unknown type are skipped, and the
// rest pass through UniqueLibraries.
func SelectedLibraries(data *Map) []Library {
	raw, ok := data.Get(LibrariesKey)
	if !ok {
		return nil
	}
	items, ok := raw.List()
	if !ok {
		return nil
	}
	libs := make([]Library, 0, len(items))
	for _, item := range items {
		entry, ok := item.Map()
		if !ok {
			continue
		}
		nameValue, _ := entry.Get("name")
		name, _ := nameValue.Str()
		typeValue, _ := entry.Get("type")
		typeName, _ := typeValue.Str()
		libType, ok := ParseLibraryType(typeName)
		name = strings.TrimSpace(name)
		if !ok || name == "" || slug.Make(name) == "" {
			continue
		}
		libs = append(libs, Library{Name: name, Type: libType})
	}
	return UniqueLibraries(libs)
}

// LibrariesValue encodes a selection the way the library selection step stores it.
func LibrariesValue(libs []Library) Value {
	items := make([]Value, 0, len(libs))
	for _, lib := range libs {
		entry := NewMap()
		entry.Set("name", StringValue(lib.Name))
		entry.Set("type", StringValue(string(lib.Type)))
		items = append(items, MapValue(entry))
	}
	return ListValue(items...)
}
