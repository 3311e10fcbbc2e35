package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickstart/internal/render"
	"quickstart/internal/sections"
)

func sampleDoc() *sections.Map {
	plex := sections.NewMap()
	plex.Set("url", sections.StringValue("http://x"))
	plex.Set("timeout", sections.IntValue(60))
	plex.Set("token", sections.NullValue())
	plex.Set("clean_bundles", sections.BoolValue(true))
	plex.Set("tag", sections.StringValue("true"))

	settings := sections.NewMap()
	settings.Set("run_order", sections.StringList("operations", "metadata"))
	settings.Set("asset_folders", sections.BoolValue(false))

	movies := sections.NewMap()
	movies.Set("collection_files", sections.ListValue())

	libraries := sections.NewMap()
	libraries.Set("Movies", sections.MapValue(movies))

	doc := sections.NewMap()
	doc.Set("libraries", sections.MapValue(libraries))
	doc.Set("settings", sections.MapValue(settings))
	doc.Set("plex", sections.MapValue(plex))
	return doc
}

func assertRoundTrips(t *testing.T, text string, doc *sections.Map) {
	t.Helper()
	parsed, err := sections.ParseYAML([]byte(text))
	require.NoError(t, err)
	parsedMap, ok := parsed.Map()
	require.True(t, ok)
	assert.True(t, parsedMap.Equal(doc), "rendered text does not parse back to the document:\n%s", text)
	assert.Equal(t, doc.Keys(), parsedMap.Keys())
}

func TestRenderWithoutBanners(t *testing.T) {
	doc := sampleDoc()
	text, err := render.Render(doc, render.Options{HeaderStyle: render.StyleNone})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "libraries:\n"), "got:\n%s", text)
	assert.NotContains(t, text, "#")
	assert.Contains(t, text, "  timeout: 60\n")
	assert.Contains(t, text, "  token: null\n")
	assert.Contains(t, text, "  clean_bundles: true\n")
	assert.Contains(t, text, `  tag: "true"`)
	assert.Contains(t, text, "collection_files: []")
	assert.Less(t, strings.Index(text, "url:"), strings.Index(text, "timeout:"), "insertion order is kept")
	assert.Less(t, strings.Index(text, "settings:"), strings.Index(text, "plex:"))
	assert.Contains(t, text, "\n\nsettings:\n", "sections are separated by a blank line")
	assertRoundTrips(t, text, doc)
}

func TestRenderASCIIBanners(t *testing.T) {
	doc := sampleDoc()
	text, err := render.Render(doc, render.Options{RunID: "brave-otter"})
	require.NoError(t, err)

	body := strings.Index(text, "libraries:")
	require.Positive(t, body)
	for _, line := range strings.Split(text[:body], "\n") {
		if line == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(line, "#") && strings.HasSuffix(line, "#"), "banner line not framed: %q", line)
	}
	assert.True(t, strings.HasPrefix(text, "####"))
	assert.Contains(t, text, "Run: brave-otter")
	assert.Contains(t, text, "Generated by Quickstart")
	assertRoundTrips(t, text, doc)
}

func TestRenderDividerBanners(t *testing.T) {
	doc := sampleDoc()
	text, err := render.Render(doc, render.Options{HeaderStyle: "Divider", Title: "My Server"})
	require.NoError(t, err)

	assert.Contains(t, text, "# My Server configuration")
	assert.Contains(t, text, "#===== Libraries ")
	assert.Contains(t, text, "#===== Plex ")
	assert.Less(t, strings.Index(text, "#===== Plex "), strings.Index(text, "plex:"))
	assertRoundTrips(t, text, doc)
}

func TestRenderEmptyDocument(t *testing.T) {
	text, err := render.Render(sections.NewMap(), render.Options{HeaderStyle: render.StyleNone})
	require.NoError(t, err)
	assert.Empty(t, text)

	text, err = render.Render(nil, render.Options{HeaderStyle: render.StyleDivider})
	require.NoError(t, err)
	assert.Contains(t, text, "Kometa configuration")
}

func TestRenderRejectsUnknownStyle(t *testing.T) {
	_, err := render.Render(sampleDoc(), render.Options{HeaderStyle: "fancy"})
	require.Error(t, err)
}
