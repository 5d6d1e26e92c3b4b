package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/internal/config"
	"github.com/jfmyers9/stationfm/internal/decoder"
	"github.com/jfmyers9/stationfm/internal/playback"
	"github.com/jfmyers9/stationfm/pkg/lastfm"
)

// newLastFMClient builds the API client from the configuration. Calls
// are made once: radio commands report failures instead of retrying.
func newLastFMClient(cfg *config.Config, logger zerolog.Logger) (*lastfm.Client, error) {
	if cfg.LastFM.APIKey == "" || cfg.LastFM.APISecret == "" {
		return nil, fmt.Errorf("Last.fm API credentials missing, run 'stationfm auth' first")
	}

	return lastfm.NewClient(lastfm.Config{
		APIKey:     cfg.LastFM.APIKey,
		APISecret:  cfg.LastFM.APISecret,
		SessionKey: cfg.LastFM.SessionKey,
		WebURL:     cfg.LastFM.WebURL,
		MaxRetries: 1,
		Logger:     lastfmLogger{logger: logger.With().Str("component", "lastfm").Logger()},
	})
}

// newDecoder selects the decoder named in the configuration
func newDecoder(cfg *config.Config, logger zerolog.Logger) (playback.Decoder, error) {
	switch cfg.Player.Decoder {
	case config.DecoderBeep:
		return decoder.NewBeep(logger), nil
	case config.DecoderExec, "":
		dec, err := decoder.NewExec(cfg.Player.Command, logger)
		if err != nil {
			return nil, err
		}
		return dec, nil
	default:
		return nil, fmt.Errorf("unknown decoder %q", cfg.Player.Decoder)
	}
}
