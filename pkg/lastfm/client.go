// Package lastfm provides a client for the Last.fm API 2.0.
//
// This package implements the parts of the Last.fm API needed to
// listen to Last.fm radio: authentication, tuning a station, fetching
// the station playlist and resolving artist names on the web site.
// It is designed to be used as a standalone SDK.
//
// Example usage:
//
//	import "github.com/jfmyers9/stationfm/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    APISecret:  "your-api-secret",
//	    SessionKey: "saved-session-key",
//	})
//
//	station, err := client.Radio().Tune(ctx, "lastfm://artist/cher/similarartists")
package lastfm

import (
	"fmt"
	"net/http"
	"time"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: Last.fm API key
	APISecret  string       // Required: Last.fm API secret
	SessionKey string       // Optional: Session key for authenticated requests
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: Base URL for API (defaults to Last.fm API, used for testing)
	WebURL     string       // Optional: Base URL of the Last.fm web site (resource lookups)
	MaxRetries int          // Optional: Attempts per API call (defaults to 3, 1 disables retries)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Last.fm API operations.
type Client struct {
	apiKey     string
	apiSecret  string
	sessionKey string
	httpClient *http.Client
	baseURL    string
	webURL     string
	maxRetries int
	backoff    time.Duration // First retry delay, initialBackoff when zero
	logger     Logger

	auth     *AuthService
	radio    *RadioService
	resource *ResourceService
}

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultWebURL is the Last.fm web site hosting the ajax resource endpoint.
	DefaultWebURL = "http://www.last.fm/"

	// DefaultMaxRetries is the number of attempts made for temporary failures.
	DefaultMaxRetries = 3
)

// NewClient creates a new Last.fm API client.
//
// Returns an error if required configuration (APIKey, APISecret) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("lastfm: APISecret is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	webURL := cfg.WebURL
	if webURL == "" {
		webURL = DefaultWebURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		sessionKey: cfg.SessionKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		webURL:     webURL,
		maxRetries: maxRetries,
		logger:     cfg.Logger,
	}

	c.auth = &AuthService{client: c}
	c.radio = &RadioService{client: c}
	c.resource = &ResourceService{client: c}

	return c, nil
}

// Auth returns the authentication service.
func (c *Client) Auth() *AuthService {
	return c.auth
}

// Radio returns the radio service.
func (c *Client) Radio() *RadioService {
	return c.radio
}

// Resource returns the web resource lookup service.
func (c *Client) Resource() *ResourceService {
	return c.resource
}

// SetSessionKey sets the session key for authenticated requests.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
}

// GetSessionKey returns the current session key.
func (c *Client) GetSessionKey() string {
	return c.sessionKey
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
