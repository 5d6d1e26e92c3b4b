package lastfm

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Base represents the root XML response from Last.fm API.
type Base struct {
	XMLName xml.Name `xml:"lfm"`
	Status  string   `xml:"status,attr"`
	Inner   []byte   `xml:",innerxml"`
}

// APIError represents an error response from the Last.fm API.
type APIError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

const (
	apiStatusFailed = "failed"

	userAgent = "stationfm/1.0"

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// call makes a signed POST to the API and returns the inner XML of the
// <lfm> envelope. Temporary failures are attempted up to maxRetries
// times with exponential backoff.
func (c *Client) call(ctx context.Context, method string, params map[string]string, requiresAuth bool) ([]byte, error) {
	signed := make(map[string]string, len(params)+3)
	for k, v := range params {
		signed[k] = v
	}
	signed["method"] = method
	signed["api_key"] = c.apiKey

	if requiresAuth {
		if c.sessionKey == "" {
			return nil, ErrNoSessionKey
		}
		signed["sk"] = c.sessionKey
	}

	body := signedForm(signed, c.apiSecret).Encode()
	backoff := c.backoff
	if backoff <= 0 {
		backoff = initialBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			c.logDebugf("lastfm: retrying %s after %v: %v", method, backoff, lastErr)
			if !sleep(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
		}

		c.logDebugf("lastfm: calling %s (attempt %d/%d)", method, attempt, c.maxRetries)

		inner, retry, err := c.post(ctx, body)
		if err == nil {
			return inner, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// post performs one API request. retry reports whether the failure is
// temporary.
func (c *Client) post(ctx context.Context, body string) (inner []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, isNetworkError(err), fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("server error: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return decodeEnvelope(data)
}

// decodeEnvelope unwraps an <lfm> document, turning status="failed"
// into an *Error.
func decodeEnvelope(data []byte) (inner []byte, retry bool, err error) {
	var base Base
	if err := xml.Unmarshal(data, &base); err != nil {
		return nil, false, fmt.Errorf("failed to parse XML response: %w", err)
	}

	if base.Status != apiStatusFailed {
		return base.Inner, false, nil
	}

	var apiErr APIError
	if err := xml.Unmarshal(base.Inner, &apiErr); err != nil {
		return nil, false, fmt.Errorf("failed to parse error response: %w", err)
	}
	lfmErr := &Error{Code: apiErr.Code, Message: strings.TrimSpace(apiErr.Message)}
	return nil, lfmErr.Temporary(), lfmErr
}

// get issues an unsigned GET against the Last.fm web site and returns
// the raw body. It never retries.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := strings.TrimRight(c.webURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	c.logDebugf("lastfm: GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
