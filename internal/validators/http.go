package validators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"quickstart/internal/sections"
)

const (
	userAgent    = "Kometa-Quickstart"
	maxBodyBytes = 1 << 20
)

func required(creds Credentials, section, field string) (string, error) {
	value := creds.Get(section, field)
	if value == "" {
		return "", reject("%s is required", field)
	}
	return value, nil
}

func joinURL(base, path string, query url.Values) string {
	target := strings.TrimRight(strings.TrimSpace(base), "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// get issues a GET and returns the response for the caller to close.
func get(ctx context.Context, env Env, target string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, reject("invalid url: %v", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := env.Client.Do(req)
	if err != nil {
		// url.Error repeats the full URL, query string and all.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("request %s: %w", redact(req.URL), err)
	}
	return resp, nil
}

// getJSON fetches target and decodes a 200 response into out. Other statuses
// are returned as errors carrying the status line.
func getJSON(ctx context.Context, env Env, target string, header http.Header, out any) (int, error) {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Accept", "application/json")
	resp, err := get(ctx, env, target, header)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		drain(resp)
		return resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil {
		drain(resp)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
}

// redact drops query strings, which often carry API keys.
func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}

func stringList(items []string) sections.Value {
	return sections.StringList(items...)
}
