package validators

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"quickstart/internal/sections"
)

func checkTMDb(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	key, err := required(creds, "tmdb", "apikey")
	if err != nil {
		return nil, err
	}
	status, err := getJSON(ctx, env, joinURL(env.Services.TMDBBaseURL, "/configuration", url.Values{"api_key": {key}}), nil, nil)
	if status == http.StatusUnauthorized {
		return nil, reject("invalid tmdb api key")
	}
	return nil, err
}

func checkTautulli(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	base, err := required(creds, "tautulli", "url")
	if err != nil {
		return nil, err
	}
	key, err := required(creds, "tautulli", "apikey")
	if err != nil {
		return nil, err
	}
	var body struct {
		Response struct {
			Result  string `json:"result"`
			Message string `json:"message"`
		} `json:"response"`
	}
	query := url.Values{"apikey": {key}, "cmd": {"get_tautulli_info"}}
	if _, err := getJSON(ctx, env, joinURL(base, "/api/v2", query), nil, &body); err != nil {
		return nil, err
	}
	if body.Response.Result != "success" {
		if body.Response.Message != "" {
			return nil, reject("tautulli: %s", body.Response.Message)
		}
		return nil, reject("invalid tautulli url or api key")
	}
	return nil, nil
}

func checkGitHub(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	token, err := required(creds, "github", "token")
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "token "+token)
	var user struct {
		Login string `json:"login"`
	}
	status, err := getJSON(ctx, env, joinURL(env.Services.GitHubBaseURL, "/user", nil), header, &user)
	if status == http.StatusUnauthorized {
		return nil, reject("invalid github token")
	}
	if err != nil {
		return nil, err
	}
	metadata := sections.NewMap()
	metadata.Set("login", sections.StringValue(user.Login))
	return metadata, nil
}

// omdbProbeID is a title every OMDb key can look up.
const omdbProbeID = "tt0111161"

func checkOMDb(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	key, err := required(creds, "omdb", "apikey")
	if err != nil {
		return nil, err
	}
	var body struct {
		Response string `json:"Response"`
		Error    string `json:"Error"`
	}
	status, err := getJSON(ctx, env, joinURL(env.Services.OMDbBaseURL, "/", url.Values{"apikey": {key}, "i": {omdbProbeID}}), nil, &body)
	if status == http.StatusUnauthorized {
		return nil, reject("invalid omdb api key")
	}
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(body.Response, "true") {
		return nil, reject("omdb: %s", firstNonEmpty(body.Error, "key rejected"))
	}
	return nil, nil
}

func checkMDBList(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	key, err := required(creds, "mdblist", "apikey")
	if err != nil {
		return nil, err
	}
	var body struct {
		Response *bool  `json:"response"`
		Error    string `json:"error"`
	}
	if _, err := getJSON(ctx, env, joinURL(env.Services.MDBListBaseURL, "/", url.Values{"apikey": {key}, "i": {omdbProbeID}}), nil, &body); err != nil {
		return nil, err
	}
	if body.Error != "" || (body.Response != nil && !*body.Response) {
		return nil, reject("mdblist: %s", firstNonEmpty(body.Error, "key rejected"))
	}
	return nil, nil
}

func checkNotifiarr(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	key, err := required(creds, "notifiarr", "apikey")
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("X-API-Key", key)
	var body struct {
		Result string `json:"result"`
	}
	status, err := getJSON(ctx, env, joinURL(env.Services.NotifiarrBaseURL, "/user/validate", nil), header, &body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, reject("invalid notifiarr api key")
	}
	if err != nil {
		return nil, err
	}
	if body.Result != "success" {
		return nil, reject("invalid notifiarr api key")
	}
	return nil, nil
}

func checkGotify(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	base, err := required(creds, "gotify", "url")
	if err != nil {
		return nil, err
	}
	token, err := required(creds, "gotify", "token")
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("X-Gotify-Key", token)
	var version struct {
		Version string `json:"version"`
	}
	status, err := getJSON(ctx, env, joinURL(base, "/version", nil), nil, &version)
	if err != nil {
		return nil, err
	}
	status, err = getJSON(ctx, env, joinURL(base, "/application", nil), header, nil)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, reject("invalid gotify token")
	}
	if err != nil {
		return nil, err
	}
	metadata := sections.NewMap()
	metadata.Set("version", sections.StringValue(version.Version))
	return metadata, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
