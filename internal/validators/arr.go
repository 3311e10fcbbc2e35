package validators

import (
	"context"
	"net/http"

	"quickstart/internal/sections"
)

func checkRadarr(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	return checkArr(ctx, env, creds, "radarr")
}

func checkSonarr(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	return checkArr(ctx, env, creds, "sonarr")
}

// checkArr validates a Radarr or Sonarr API key against the v3 API and lists
// the root folders and quality profiles the step's dropdowns offer.
func checkArr(ctx context.Context, env Env, creds Credentials, section string) (*sections.Map, error) {
	base, err := required(creds, section, "url")
	if err != nil {
		return nil, err
	}
	token, err := required(creds, section, "token")
	if err != nil {
		return nil, err
	}
	header := func() http.Header {
		h := http.Header{}
		h.Set("X-Api-Key", token)
		return h
	}

	var status struct {
		Version string `json:"version"`
	}
	code, err := getJSON(ctx, env, joinURL(base, "/api/v3/system/status", nil), header(), &status)
	if code == http.StatusUnauthorized {
		return nil, reject("invalid %s url or api key", section)
	}
	if err != nil {
		return nil, err
	}

	var folders []struct {
		Path string `json:"path"`
	}
	if _, err := getJSON(ctx, env, joinURL(base, "/api/v3/rootfolder", nil), header(), &folders); err != nil {
		return nil, err
	}
	var profiles []struct {
		Name string `json:"name"`
	}
	if _, err := getJSON(ctx, env, joinURL(base, "/api/v3/qualityprofile", nil), header(), &profiles); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(folders))
	for _, f := range folders {
		paths = append(paths, f.Path)
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	metadata := sections.NewMap()
	metadata.Set("version", sections.StringValue(status.Version))
	metadata.Set("root_folders", stringList(paths))
	metadata.Set("quality_profiles", stringList(names))
	return metadata, nil
}
