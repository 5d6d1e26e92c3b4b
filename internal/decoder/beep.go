package decoder

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/internal/playback"
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	speakerBuffer     = 250 * time.Millisecond
	resampleQuality   = 4

	volumeStep = 0.25
	minVolume  = -5.0
	maxVolume  = 1.0
)

// Beep decodes MP3 in process and plays it on the default audio device.
// The speaker is initialized on first use and shared by all tracks.
type Beep struct {
	mu          sync.Mutex
	initialized bool
	volume      float64
	logger      zerolog.Logger
}

// NewBeep creates an in-process decoder.
func NewBeep(logger zerolog.Logger) *Beep {
	return &Beep{
		logger: logger.With().Str("component", "decoder").Str("player", "beep").Logger(),
	}
}

func (b *Beep) initSpeaker() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(speakerBuffer)); err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	b.initialized = true
	b.logger.Debug().Int("sample_rate", int(speakerSampleRate)).Msg("Speaker initialized")
	return nil
}

// Decode implements playback.Decoder.
func (b *Beep) Decode(ctx context.Context, audio io.Reader, control io.Reader) error {
	streamer, format, err := mp3.Decode(io.NopCloser(audio))
	if err != nil {
		return errors.Wrap(err, "failed to decode mp3 stream")
	}
	defer func() { _ = streamer.Close() }()

	if err := b.initSpeaker(); err != nil {
		return err
	}

	var source beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		source = beep.Resample(resampleQuality, format.SampleRate, speakerSampleRate, streamer)
	}

	b.mu.Lock()
	volume := &effects.Volume{
		Streamer: source,
		Base:     2,
		Volume:   b.volume,
		Silent:   b.volume <= minVolume,
	}
	b.mu.Unlock()

	ctrl := &beep.Ctrl{Streamer: volume}
	done := make(chan struct{})
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { close(done) })))

	go b.forward(control, ctrl, volume)

	select {
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	case <-done:
	}

	if err := streamer.Err(); err != nil {
		return errors.Wrap(err, "mp3 stream failed")
	}
	return nil
}

func (b *Beep) forward(control io.Reader, ctrl *beep.Ctrl, volume *effects.Volume) {
	buf := make([]byte, 1)
	for {
		if _, err := control.Read(buf); err != nil {
			return
		}

		cmd := playback.Command(buf[0])
		switch cmd {
		case playback.CommandPause:
			speaker.Lock()
			ctrl.Paused = !ctrl.Paused
			speaker.Unlock()
		case playback.CommandVolumeUp, playback.CommandVolumeDown:
			level := b.adjustVolume(cmd)
			speaker.Lock()
			volume.Volume = level
			volume.Silent = level <= minVolume
			speaker.Unlock()
		default:
			b.logger.Debug().Uint8("byte", buf[0]).Msg("Ignoring unknown control byte")
			continue
		}
		b.logger.Debug().Str("command", cmd.String()).Msg("Applied control command")
	}
}

// adjustVolume steps the shared volume level and returns the new value.
func (b *Beep) adjustVolume(cmd playback.Command) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cmd == playback.CommandVolumeUp {
		b.volume += volumeStep
	} else {
		b.volume -= volumeStep
	}
	b.volume = min(max(b.volume, minVolume), maxVolume)
	return b.volume
}
