package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
)

// AuthService provides authentication operations for the Last.fm API.
type AuthService struct {
	client *Client
}

// GetToken requests an authentication token from Last.fm.
//
// This is the first step in the authentication flow. After obtaining a token,
// the user must authorize it by visiting the URL returned by GetAuthURL.
func (a *AuthService) GetToken(ctx context.Context) (*Token, error) {
	resp, err := a.client.call(ctx, "auth.getToken", nil, false)
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	if err := unmarshalInner(resp, &token); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse token response: %w", err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("lastfm: empty token in response")
	}

	return &Token{Token: token.Token}, nil
}

// GetAuthURL returns the URL where users authorize the token.
func (a *AuthService) GetAuthURL(token string) string {
	q := url.Values{}
	q.Set("api_key", a.client.apiKey)
	q.Set("token", token)
	return "https://www.last.fm/api/auth/?" + q.Encode()
}

// GetSession exchanges an authorized token for a session key.
//
// The session key does not expire and should be stored and passed as
// Config.SessionKey (or via SetSessionKey) for radio requests.
//
// Example:
//
//	session, err := client.Auth().GetSession(ctx, token.Token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.SetSessionKey(session.Key)
func (a *AuthService) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("lastfm: token is required")
	}

	resp, err := a.client.call(ctx, "auth.getSession", map[string]string{"token": token}, false)
	if err != nil {
		return nil, err
	}

	var session sessionResponse
	if err := unmarshalInner(resp, &session); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse session response: %w", err)
	}

	return &Session{
		Key:        session.Key,
		Username:   session.Name,
		Subscriber: session.Subscriber == 1,
	}, nil
}

type tokenResponse struct {
	Token string `xml:"token"`
}

type sessionResponse struct {
	Name       string `xml:"session>name"`
	Key        string `xml:"session>key"`
	Subscriber int    `xml:"session>subscriber"`
}

// unmarshalInner decodes the inner XML of an <lfm> envelope.
func unmarshalInner(data []byte, v interface{}) error {
	// Wrap inner XML in root element for proper unmarshaling
	wrapped := []byte("<root>" + string(data) + "</root>")
	return xml.Unmarshal(wrapped, v)
}
