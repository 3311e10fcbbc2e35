package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"quickstart/internal/sections"
)

const traktRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

type traktToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

// checkTrakt exchanges the PIN for tokens and confirms the account is usable.
// The tokens come back as the section's authorization metadata.
func checkTrakt(ctx context.Context, env Env, creds Credentials) (*sections.Map, error) {
	clientID, err := required(creds, "trakt", "client_id")
	if err != nil {
		return nil, err
	}
	clientSecret, err := required(creds, "trakt", "client_secret")
	if err != nil {
		return nil, err
	}
	pin, err := required(creds, "trakt", "pin")
	if err != nil {
		return nil, err
	}

	token, err := exchangeTraktPIN(ctx, env, clientID, clientSecret, pin)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+token.AccessToken)
	header.Set("trakt-api-version", "2")
	header.Set("trakt-api-key", clientID)
	status, err := getJSON(ctx, env, joinURL(env.Services.TraktBaseURL, "/users/settings", nil), header, nil)
	if status == http.StatusLocked {
		return nil, reject("account is locked; please contact Trakt support")
	}
	if err != nil {
		return nil, err
	}

	authorization := sections.NewMap()
	authorization.Set("access_token", sections.StringValue(token.AccessToken))
	authorization.Set("token_type", sections.StringValue(token.TokenType))
	authorization.Set("expires_in", sections.IntValue(token.ExpiresIn))
	authorization.Set("refresh_token", sections.StringValue(token.RefreshToken))
	authorization.Set("scope", sections.StringValue(token.Scope))
	authorization.Set("created_at", sections.IntValue(token.CreatedAt))
	metadata := sections.NewMap()
	metadata.Set(sections.AuthorizationKey, sections.MapValue(authorization))
	return metadata, nil
}

func exchangeTraktPIN(ctx context.Context, env Env, clientID, clientSecret, pin string) (*traktToken, error) {
	payload, err := json.Marshal(map[string]string{
		"code":          pin,
		"client_id":     clientID,
		"client_secret": clientSecret,
		"redirect_uri":  traktRedirectURI,
		"grant_type":    "authorization_code",
	})
	if err != nil {
		return nil, fmt.Errorf("encode trakt token request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(env.Services.TraktBaseURL, "/oauth/token", nil), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build trakt token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	resp, err := env.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trakt token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		drain(resp)
		return nil, reject("invalid trakt pin, client_id, or client_secret")
	}
	var token traktToken
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode trakt token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, reject("trakt returned no access token")
	}
	return &token, nil
}
