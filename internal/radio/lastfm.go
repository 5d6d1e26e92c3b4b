package radio

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/jfmyers9/stationfm/pkg/lastfm"
)

// LastFM is the Service backed by the Last.fm radio API.
type LastFM struct {
	client *lastfm.Client
}

// NewLastFM wraps a Last.fm client.
func NewLastFM(client *lastfm.Client) *LastFM {
	return &LastFM{client: client}
}

// Authenticated implements Service.
func (l *LastFM) Authenticated() bool {
	return l.client.GetSessionKey() != ""
}

// Tune implements Service with radio.tune.
func (l *LastFM) Tune(ctx context.Context, station string) (string, error) {
	st, err := l.client.Radio().Tune(ctx, station)
	if err != nil {
		var apiErr *lastfm.Error
		if errors.As(err, &apiErr) {
			return "", &RemoteError{Station: station, Code: apiErr.Code, Message: apiErr.Message}
		}
		return "", noResponse(errors.Wrap(err, "radio.tune failed"))
	}
	return st.Name, nil
}
