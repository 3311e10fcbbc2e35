package assemble_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickstart/internal/assemble"
	"quickstart/internal/sections"
	"quickstart/internal/services"
	"quickstart/internal/settings"
)

const run = "brave-otter"

func mapOf(pairs ...any) *sections.Map {
	m := sections.NewMap()
	for i := 0; i < len(pairs); i += 2 {
		var v sections.Value
		switch raw := pairs[i+1].(type) {
		case nil:
			v = sections.NullValue()
		case sections.Value:
			v = raw
		case string:
			v = sections.StringValue(raw)
		case int:
			v = sections.IntValue(int64(raw))
		case bool:
			v = sections.BoolValue(raw)
		case *sections.Map:
			v = sections.MapValue(raw)
		default:
			panic("unsupported test value")
		}
		m.Set(pairs[i].(string), v)
	}
	return m
}

func put(t *testing.T, store settings.Store, section string, validated, userEntered bool, data *sections.Map) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), settings.Record{
		RunID: run, Section: section, Validated: validated, UserEntered: userEntered, Data: data,
	}))
}

func TestAssembleIncludesOnlyValidatedUserEnteredSections(t *testing.T) {
	store := settings.NewMemoryStore()
	put(t, store, "plex", true, true, mapOf("url", "http://x", "token", "abc"))
	put(t, store, "tmdb", false, true, mapOf("apikey", "k"))
	put(t, store, "github", true, false, mapOf("token", nil))

	composite, err := assemble.New(store).Assemble(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, []string{"plex"}, composite.Document.Keys())
	assert.Equal(t, []string{"plex"}, composite.Included)
	assert.Contains(t, composite.Omitted, "tmdb")
	assert.Contains(t, composite.Omitted, "github")
	assert.Contains(t, composite.Omitted, "settings")
}

func TestAssembleUserEnteredOnly(t *testing.T) {
	store := settings.NewMemoryStore()
	put(t, store, "tmdb", false, true, mapOf("apikey", "k"))
	put(t, store, "omdb", false, false, mapOf("apikey", nil))

	composite, err := assemble.New(store, assemble.WithUserEnteredOnly()).Assemble(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, []string{"tmdb"}, composite.Document.Keys())
}

func TestAssembleFollowsCanonicalOrder(t *testing.T) {
	store := settings.NewMemoryStore()
	put(t, store, "mal", true, true, mapOf("client_id", "c"))
	put(t, store, "plex", true, true, mapOf("url", "http://x"))
	put(t, store, "settings", true, true, mapOf("cache", true))
	put(t, store, "webhooks", true, true, mapOf("error", nil))

	composite, err := assemble.New(store).Assemble(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, []string{"settings", "webhooks", "plex", "mal"}, composite.Document.Keys())
}

func TestAssembleStripsTransientKeysAndCoercesBooleans(t *testing.T) {
	store := settings.NewMemoryStore()
	put(t, store, "plex", true, true, mapOf(
		"url", "http://x",
		"valid", true,
		"validated", true,
		"tmp_user_list", "a,b",
		"clean_bundles", "TRUE",
		"empty_trash", "false",
	))
	put(t, store, "trakt", true, true, mapOf(
		"client_id", "id",
		"authorization", mapOf("access_token", "tok", "url", "https://trakt.tv/oauth", "valid", "true"),
	))

	composite, err := assemble.New(store).Assemble(context.Background(), run)
	require.NoError(t, err)

	plex, ok := composite.Document.Get("plex")
	require.True(t, ok)
	plexMap, _ := plex.Map()
	assert.Equal(t, []string{"url", "clean_bundles", "empty_trash"}, plexMap.Keys())
	cleanBundles, _ := plexMap.Get("clean_bundles")
	assert.True(t, cleanBundles.Equal(sections.BoolValue(true)))
	emptyTrash, _ := plexMap.Get("empty_trash")
	assert.True(t, emptyTrash.Equal(sections.BoolValue(false)))

	trakt, _ := composite.Document.Get("trakt")
	traktMap, _ := trakt.Map()
	auth, _ := traktMap.Get("authorization")
	authMap, _ := auth.Map()
	assert.Equal(t, []string{"access_token"}, authMap.Keys())
}

func TestAssembleGathersLibraries(t *testing.T) {
	store := settings.NewMemoryStore()
	movies := sections.Library{Name: "Movies", Type: sections.MovieLibrary}
	shows := sections.Library{Name: "TV Shows", Type: sections.ShowLibrary}
	kids := sections.Library{Name: "Kids", Type: sections.MovieLibrary}

	selection := sections.NewMap()
	selection.Set(sections.LibrariesKey, sections.LibrariesValue([]sections.Library{movies, shows, kids}))
	put(t, store, sections.LibrarySelectionID, true, true, selection)
	put(t, store, kids.StepID(), true, true, mapOf("minimum_items", 2))
	put(t, store, movies.StepID(), true, true, mapOf("collection_files", "default: basic"))
	put(t, store, "plex", true, true, mapOf("url", "http://x"))

	composite, err := assemble.New(store).Assemble(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, []string{"libraries", "plex"}, composite.Document.Keys())

	libs, _ := composite.Document.Get("libraries")
	libsMap, _ := libs.Map()
	assert.Equal(t, []string{"Movies", "Kids"}, libsMap.Keys(), "libraries keep selection order")
	assert.Contains(t, composite.Omitted, shows.StepID())
	assert.NotContains(t, composite.Document.Keys(), sections.LibrarySelectionID)
}

func TestAssembleKeepsLibrariesWithCollidingSlugs(t *testing.T) {
	store := settings.NewMemoryStore()
	selection := sections.NewMap()
	selection.Set(sections.LibrariesKey, sections.LibrariesValue([]sections.Library{
		{Name: "A B", Type: sections.MovieLibrary},
		{Name: "a-b", Type: sections.MovieLibrary},
	}))
	put(t, store, sections.LibrarySelectionID, true, true, selection)
	put(t, store, "mov-a-b", true, true, mapOf("minimum_items", 1))
	put(t, store, "mov-a-b-2", true, true, mapOf("minimum_items", 2))

	composite, err := assemble.New(store).Assemble(context.Background(), run)
	require.NoError(t, err)

	libs, _ := composite.Document.Get("libraries")
	libsMap, _ := libs.Map()
	assert.Equal(t, []string{"A B", "a-b"}, libsMap.Keys())
	second, _ := libsMap.Get("a-b")
	secondMap, _ := second.Map()
	minimum, _ := secondMap.Get("minimum_items")
	assert.True(t, minimum.Equal(sections.IntValue(2)))
}

func TestAssembleEmptyRun(t *testing.T) {
	composite, err := assemble.New(settings.NewMemoryStore()).Assemble(context.Background(), run)
	require.NoError(t, err)
	assert.Zero(t, composite.Document.Len())
	assert.Empty(t, composite.Included)
}

type failingStore struct {
	settings.Store
	section string
}

func (f failingStore) Get(ctx context.Context, runID, section string) (settings.Record, error) {
	if section == f.section {
		return settings.Record{}, &settings.StorageError{Op: "get", RunID: runID, Section: section, Err: errors.New("disk gone")}
	}
	return f.Store.Get(ctx, runID, section)
}

func TestAssembleAbortsOnStorageError(t *testing.T) {
	store := settings.NewMemoryStore()
	put(t, store, "plex", true, true, mapOf("url", "http://x"))

	_, err := assemble.New(failingStore{Store: store, section: "tmdb"}).Assemble(context.Background(), run)
	require.Error(t, err)
	var storageErr *settings.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.True(t, errors.Is(err, services.ErrStorage))
	assert.Contains(t, err.Error(), "tmdb")
}
