package lastfm

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestAuthService_GetToken(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantToken   string
		errContains string
	}{
		{
			name:      "token",
			response:  `<lfm status="ok"><token>f3c1a9</token></lfm>`,
			wantToken: "f3c1a9",
		},
		{
			name:        "invalid api key",
			response:    `<lfm status="failed"><error code="10">Invalid API key</error></lfm>`,
			errContains: "error 10",
		},
		{
			name:        "empty token",
			response:    `<lfm status="ok"><token></token></lfm>`,
			errContains: "empty token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.FormValue("method"); got != "auth.getToken" {
					t.Errorf("expected auth.getToken, got %q", got)
				}
				if r.FormValue("sk") != "" {
					t.Error("expected no session key on auth.getToken")
				}
				_, _ = w.Write([]byte(tt.response))
			}, Config{MaxRetries: 1})

			token, err := client.Auth().GetToken(context.Background())
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token.Token != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, token.Token)
			}
		})
	}
}

func TestAuthService_GetAuthURL(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {}, Config{})

	u, err := url.Parse(client.Auth().GetAuthURL("f3c1a9"))
	if err != nil {
		t.Fatalf("invalid auth URL: %v", err)
	}
	if u.Host != "www.last.fm" || u.Path != "/api/auth/" {
		t.Errorf("unexpected auth URL %s", u)
	}
	if u.Query().Get("api_key") != "test-api-key" || u.Query().Get("token") != "f3c1a9" {
		t.Errorf("unexpected auth URL query %s", u.RawQuery)
	}
}

func TestAuthService_GetSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("token"); got != "f3c1a9" {
			t.Errorf("expected token f3c1a9, got %q", got)
		}
		_, _ = w.Write([]byte(`<lfm status="ok">
	<session>
		<name>listener</name>
		<key>d580d57f32848f5dcf574d1ce18d78b2</key>
		<subscriber>1</subscriber>
	</session>
</lfm>`))
	}, Config{})

	session, err := client.Auth().GetSession(context.Background(), "f3c1a9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Key != "d580d57f32848f5dcf574d1ce18d78b2" || session.Username != "listener" || !session.Subscriber {
		t.Errorf("unexpected session %+v", session)
	}
}

func TestAuthService_GetSession_RequiresToken(t *testing.T) {
	called := false
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		called = true
	}, Config{})

	if _, err := client.Auth().GetSession(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty token")
	}
	if called {
		t.Error("expected no request without a token")
	}
}
