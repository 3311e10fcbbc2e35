package sections_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"quickstart/internal/sections"
)

func TestJSONKeepsKeyOrder(t *testing.T) {
	input := `{"zeta":1,"alpha":{"b":true,"a":null},"list":["x",2]}`
	value, err := sections.ParseJSON([]byte(input))
	require.NoError(t, err)

	m, ok := value.Map()
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "list"}, m.Keys())

	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(encoded))
	assert.Equal(t, input, string(encoded))

	var decoded sections.Map
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, decoded.Equal(m))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	_, err := sections.ParseJSON([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	value, err := sections.ParseYAML([]byte("b: 1\na:\n  - yes please\n  - \"true\"\n  - null\nc: text\n"))
	require.NoError(t, err)
	m, _ := value.Map()
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())

	list, _ := m.Get("a")
	items, _ := list.List()
	require.Len(t, items, 3)
	assert.Equal(t, sections.KindString, items[0].Kind())
	assert.Equal(t, sections.KindString, items[1].Kind())
	assert.True(t, items[2].IsNull())

	out, err := yaml.Marshal(value)
	require.NoError(t, err)
	again, err := sections.ParseYAML(out)
	require.NoError(t, err)
	assert.True(t, value.Equal(again), "yaml round trip changed value:\n%s", out)
}

func TestMapEqualIgnoresOrder(t *testing.T) {
	a := sections.NewMap()
	a.Set("x", sections.IntValue(1))
	a.Set("y", sections.StringValue("v"))
	b := sections.NewMap()
	b.Set("y", sections.StringValue("v"))
	b.Set("x", sections.IntValue(1))
	assert.True(t, a.Equal(b))

	b.Set("x", sections.IntValue(2))
	assert.False(t, a.Equal(b))
	assert.Equal(t, []string{"y", "x"}, b.Keys(), "overwriting keeps position")

	b.Delete("y")
	assert.Equal(t, []string{"x"}, b.Keys())
	var nilMap *sections.Map
	assert.True(t, nilMap.Equal(sections.NewMap()))
}

func TestLibraryStepIDs(t *testing.T) {
	lib := sections.Library{Name: "TV Shows", Type: sections.ShowLibrary}
	assert.Equal(t, "sho-tv-shows", lib.StepID())

	parsed, ok := sections.ParseLibraryStepID("sho-tv-shows")
	require.True(t, ok)
	assert.Equal(t, sections.ShowLibrary, parsed.Type)

	_, ok = sections.ParseLibraryStepID("plex")
	assert.False(t, ok)

	def, ok := sections.Lookup("mus-music")
	require.True(t, ok)
	assert.Equal(t, "014", def.Prefix)
	assert.NotNil(t, def.Library)

	data := sections.NewMap()
	data.Set(sections.LibrariesKey, sections.LibrariesValue([]sections.Library{
		{Name: "Movies", Type: sections.MovieLibrary},
		{Name: "Movies", Type: sections.MovieLibrary},
		{Name: "", Type: sections.MusicLibrary},
		{Name: "Music", Type: sections.MusicLibrary},
	}))
	libs := sections.SelectedLibraries(data)
	assert.Equal(t, []sections.Library{
		{Name: "Movies", Type: sections.MovieLibrary},
		{Name: "Music", Type: sections.MusicLibrary},
	}, libs)
}

func TestUniqueLibrariesSuffixesCollidingSlugs(t *testing.T) {
	data := sections.NewMap()
	data.Set(sections.LibrariesKey, sections.LibrariesValue([]sections.Library{
		{Name: "A B", Type: sections.MovieLibrary},
		{Name: "a-b", Type: sections.MovieLibrary},
		{Name: "a b", Type: sections.MovieLibrary},
		{Name: "A B", Type: sections.ShowLibrary},
	}))
	libs := sections.SelectedLibraries(data)
	require.Len(t, libs, 4)

	var stepIDs []string
	for _, lib := range libs {
		stepIDs = append(stepIDs, lib.StepID())
	}
	assert.Equal(t, []string{"mov-a-b", "mov-a-b-2", "mov-a-b-3", "sho-a-b"}, stepIDs)
	assert.Equal(t, "a-b", libs[1].Name)

	def, ok := sections.Lookup("mov-a-b-2")
	require.True(t, ok)
	assert.Equal(t, "mov-a-b-2", def.ID)
}

func TestDisplayNames(t *testing.T) {
	names := map[string]string{
		"playlist_files":            "Playlist Files",
		"tmdb":                      "TMDb",
		"plex":                      "Plex",
		sections.LibrarySelectionID: "Library Selection",
	}
	for id, want := range names {
		def, ok := sections.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, want, def.DisplayName())
	}
}
