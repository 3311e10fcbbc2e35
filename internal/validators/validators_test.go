package validators_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickstart/internal/config"
	"quickstart/internal/sections"
	"quickstart/internal/services"
	"quickstart/internal/validators"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func fakeServices(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /:/prefs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "plex-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`<MediaContainer size="2"><Setting id="FriendlyName" value="box"/><Setting id="DatabaseCacheSize" value="40"/></MediaContainer>`))
	})
	mux.HandleFunc("GET /library/sections", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<MediaContainer><Directory title="Movies" type="movie"/><Directory title="TV Shows" type="show"/><Directory title="Music" type="artist"/><Directory title="Photos" type="photo"/></MediaContainer>`))
	})
	mux.HandleFunc("GET /configuration", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "tmdb-key" {
			http.Error(w, `{"status_code":7}`, http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"images": map[string]any{}})
	})
	mux.HandleFunc("GET /api/v2", func(w http.ResponseWriter, r *http.Request) {
		result := "error"
		if r.URL.Query().Get("apikey") == "tautulli-key" {
			result = "success"
		}
		writeJSON(w, map[string]any{"response": map[string]any{"result": result, "message": "Invalid apikey"}})
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token gh-token" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"login": "octo"})
	})
	mux.HandleFunc("GET /omdb/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "omdb-key" {
			writeJSON(w, map[string]any{"Response": "False", "Error": "Invalid API key!"})
			return
		}
		writeJSON(w, map[string]any{"Response": "True", "Title": "The Shawshank Redemption"})
	})
	mux.HandleFunc("GET /mdblist/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "mdblist-key" {
			writeJSON(w, map[string]any{"response": false, "error": "Invalid API key!"})
			return
		}
		writeJSON(w, map[string]any{"title": "The Shawshank Redemption", "response": true})
	})
	mux.HandleFunc("GET /user/validate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "notifiarr-key" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"result": "success"})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"version": "2.4.0"})
	})
	mux.HandleFunc("GET /application", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Gotify-Key") != "gotify-token" {
			http.Error(w, "nope", http.StatusUnauthorized)
			return
		}
		writeJSON(w, []any{})
	})
	arrAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Api-Key") != "arr-key" {
				http.Error(w, "nope", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("GET /api/v3/system/status", arrAuth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"version": "5.2.6"})
	}))
	mux.HandleFunc("GET /api/v3/rootfolder", arrAuth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"path": "/movies"}, {"path": "/4k"}})
	}))
	mux.HandleFunc("GET /api/v3/qualityprofile", arrAuth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"name": "HD-1080p"}})
	}))
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["code"] != "1234" || req["grant_type"] != "authorization_code" {
			http.Error(w, "invalid_grant", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{
			"access_token": "acc", "token_type": "bearer", "expires_in": 7776000,
			"refresh_token": "ref", "scope": "public", "created_at": 1700000000,
		})
	})
	mux.HandleFunc("GET /users/settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("trakt-api-key") == "locked-client" {
			w.WriteHeader(http.StatusLocked)
			return
		}
		writeJSON(w, map[string]any{"user": map[string]any{"username": "u"}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newRegistry(t *testing.T, server *httptest.Server, opts ...validators.Option) *validators.Registry {
	t.Helper()
	cfg := config.Default()
	cfg.Services = config.Services{
		TMDBBaseURL:      server.URL,
		TraktBaseURL:     server.URL,
		OMDbBaseURL:      server.URL + "/omdb",
		GitHubBaseURL:    server.URL,
		MDBListBaseURL:   server.URL + "/mdblist",
		NotifiarrBaseURL: server.URL,
	}
	opts = append([]validators.Option{validators.WithHTTPClient(server.Client())}, opts...)
	return validators.NewRegistry(&cfg, opts...)
}

func TestChecksAcceptGoodCredentials(t *testing.T) {
	server := fakeServices(t)
	registry := newRegistry(t, server)

	tests := []struct {
		section string
		creds   validators.Credentials
	}{
		{"plex", validators.Credentials{"plex_url": server.URL, "plex_token": "plex-token"}},
		{"tmdb", validators.Credentials{"tmdb_apikey": "tmdb-key"}},
		{"tautulli", validators.Credentials{"tautulli_url": server.URL, "tautulli_apikey": "tautulli-key"}},
		{"github", validators.Credentials{"github_token": "gh-token"}},
		{"omdb", validators.Credentials{"omdb_apikey": "omdb-key"}},
		{"mdblist", validators.Credentials{"apikey": "mdblist-key"}},
		{"notifiarr", validators.Credentials{"notifiarr_apikey": "notifiarr-key"}},
		{"gotify", validators.Credentials{"gotify_url": server.URL, "gotify_token": "gotify-token"}},
		{"radarr", validators.Credentials{"radarr_url": server.URL, "radarr_token": "arr-key"}},
		{"sonarr", validators.Credentials{"url": server.URL, "token": "arr-key"}},
		{"trakt", validators.Credentials{"trakt_client_id": "cid", "trakt_client_secret": "sec", "trakt_pin": "1234"}},
	}
	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			result := registry.Validate(context.Background(), tt.section, tt.creds)
			assert.True(t, result.Validated, "error: %s", result.Error)
			assert.NoError(t, result.Err)
		})
	}
}

func TestChecksRejectBadCredentials(t *testing.T) {
	server := fakeServices(t)
	registry := newRegistry(t, server)

	tests := []struct {
		section string
		creds   validators.Credentials
		message string
	}{
		{"plex", validators.Credentials{"plex_url": server.URL, "plex_token": "wrong"}, "invalid plex url or token"},
		{"plex", validators.Credentials{"plex_token": "plex-token"}, "url is required"},
		{"tmdb", validators.Credentials{"tmdb_apikey": "wrong"}, "invalid tmdb api key"},
		{"tautulli", validators.Credentials{"tautulli_url": server.URL, "tautulli_apikey": "wrong"}, "tautulli: Invalid apikey"},
		{"github", validators.Credentials{"github_token": "wrong"}, "invalid github token"},
		{"omdb", validators.Credentials{"omdb_apikey": "wrong"}, "omdb: Invalid API key!"},
		{"mdblist", validators.Credentials{"mdblist_apikey": "wrong"}, "mdblist: Invalid API key!"},
		{"notifiarr", validators.Credentials{"notifiarr_apikey": "wrong"}, "invalid notifiarr api key"},
		{"gotify", validators.Credentials{"gotify_url": server.URL, "gotify_token": "wrong"}, "invalid gotify token"},
		{"radarr", validators.Credentials{"radarr_url": server.URL, "radarr_token": "wrong"}, "invalid radarr url or api key"},
		{"trakt", validators.Credentials{"trakt_client_id": "cid", "trakt_client_secret": "sec", "trakt_pin": "0000"}, "invalid trakt pin, client_id, or client_secret"},
		{"trakt", validators.Credentials{"trakt_client_id": "locked-client", "trakt_client_secret": "sec", "trakt_pin": "1234"}, "account is locked; please contact Trakt support"},
	}
	for _, tt := range tests {
		t.Run(tt.section+"/"+tt.message, func(t *testing.T) {
			result := registry.Validate(context.Background(), tt.section, tt.creds)
			assert.False(t, result.Validated)
			assert.Equal(t, tt.message, result.Error)

			var verr *validators.ExternalValidationError
			require.True(t, errors.As(result.Err, &verr))
			assert.False(t, verr.Timeout)
			assert.True(t, errors.Is(result.Err, services.ErrExternal))
		})
	}
}

func TestPlexMetadata(t *testing.T) {
	server := fakeServices(t)
	result := newRegistry(t, server).Validate(context.Background(), "plex",
		validators.Credentials{"plex_url": server.URL + "/", "plex_token": "plex-token"})
	require.True(t, result.Validated, result.Error)

	dbCache, _ := result.Metadata.Get("db_cache")
	assert.True(t, dbCache.Equal(sections.IntValue(40)))
	movies, _ := result.Metadata.Get("movie_libraries")
	assert.True(t, movies.Equal(sections.StringList("Movies")))
	music, _ := result.Metadata.Get("music_libraries")
	assert.True(t, music.Equal(sections.StringList("Music")))
}

func TestTraktMetadataCarriesAuthorization(t *testing.T) {
	server := fakeServices(t)
	result := newRegistry(t, server).Validate(context.Background(), "trakt",
		validators.Credentials{"trakt_client_id": "cid", "trakt_client_secret": "sec", "trakt_pin": "1234"})
	require.True(t, result.Validated, result.Error)

	auth, ok := result.Metadata.Get(sections.AuthorizationKey)
	require.True(t, ok)
	authMap, _ := auth.Map()
	assert.Equal(t, []string{"access_token", "token_type", "expires_in", "refresh_token", "scope", "created_at"}, authMap.Keys())
	expires, _ := authMap.Get("expires_in")
	assert.True(t, expires.Equal(sections.IntValue(7776000)))
}

func TestArrMetadata(t *testing.T) {
	server := fakeServices(t)
	result := newRegistry(t, server).Validate(context.Background(), "radarr",
		validators.Credentials{"radarr_url": server.URL, "radarr_token": "arr-key"})
	require.True(t, result.Validated, result.Error)
	folders, _ := result.Metadata.Get("root_folders")
	assert.True(t, folders.Equal(sections.StringList("/movies", "/4k")))
}

func TestValidateTimesOut(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		slow.Close()
	})

	registry := newRegistry(t, slow, validators.WithTimeout(50*time.Millisecond))
	start := time.Now()
	result := registry.Validate(context.Background(), "tmdb", validators.Credentials{"tmdb_apikey": "k"})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, result.Validated)

	var verr *validators.ExternalValidationError
	require.True(t, errors.As(result.Err, &verr))
	assert.True(t, verr.Timeout)
	assert.True(t, errors.Is(result.Err, services.ErrTimeout))
}

func TestValidateUnknownSection(t *testing.T) {
	registry := newRegistry(t, fakeServices(t))
	assert.False(t, registry.Has("webhooks"))
	result := registry.Validate(context.Background(), "webhooks", nil)
	assert.False(t, result.Validated)
	assert.True(t, errors.Is(result.Err, validators.ErrNoChecker))
}

func TestRegistryListsEveryCheckedSection(t *testing.T) {
	registry := newRegistry(t, fakeServices(t))
	for _, def := range sections.Definitions() {
		assert.Equal(t, def.Checked, registry.Has(def.ID), def.ID)
	}
	assert.Len(t, registry.Sections(), 11)
}

func TestRegisterOverridesCheck(t *testing.T) {
	registry := newRegistry(t, fakeServices(t))
	registry.Register("anidb", func(context.Context, validators.Env, validators.Credentials) (*sections.Map, error) {
		return nil, nil
	})
	assert.True(t, registry.Validate(context.Background(), "anidb", nil).Validated)
}
