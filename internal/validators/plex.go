package validators

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"quickstart/internal/sections"
)

type plexPrefs struct {
	Settings []struct {
		ID    string `xml:"id,attr"`
		Value string `xml:"value,attr"`
	} `xml:"Setting"`
}

type plexLibrarySections struct {
	Directories []struct {
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	} `xml:"Directory"`
}

// checkPlex reads the server preferences for the database cache size and
// lists the libraries the library selection step offers.
func checkPlex(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	base, err := required(creds, "plex", "url")
	if err != nil {
		return nil, err
	}
	token, err := required(creds, "plex", "token")
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("X-Plex-Token", token)

	var prefs plexPrefs
	if err := getPlexXML(ctx, env, joinURL(base, "/:/prefs", nil), header, &prefs); err != nil {
		return nil, err
	}
	dbCache := int64(-1)
	for _, setting := range prefs.Settings {
		if setting.ID != "DatabaseCacheSize" {
			continue
		}
		if v, convErr := strconv.ParseInt(setting.Value, 10, 64); convErr == nil {
			dbCache = v
		}
	}
	if dbCache < 0 {
		return nil, reject("unable to retrieve db_cache from plex settings")
	}

	var libs plexLibrarySections
	if err := getPlexXML(ctx, env, joinURL(base, "/library/sections", nil), header, &libs); err != nil {
		return nil, err
	}
	var movies, shows, music []string
	for _, dir := range libs.Directories {
		switch dir.Type {
		case "movie":
			movies = append(movies, dir.Title)
		case "show":
			shows = append(shows, dir.Title)
		case "artist":
			music = append(music, dir.Title)
		}
	}

	metadata := sections.NewMap()
	metadata.Set("db_cache", sections.IntValue(dbCache))
	metadata.Set("movie_libraries", stringList(movies))
	metadata.Set("show_libraries", stringList(shows))
	metadata.Set("music_libraries", stringList(music))
	return metadata, nil
}

func getPlexXML(ctx context.Context, env Env, target string, header http.Header, out any) error {
	header.Set("Accept", "application/xml")
	resp, err := get(ctx, env, target, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		drain(resp)
		return reject("invalid plex url or token")
	case resp.StatusCode != http.StatusOK:
		drain(resp)
		return fmt.Errorf("plex returned %s", resp.Status)
	}
	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode plex response: %w", err)
	}
	return nil
}
