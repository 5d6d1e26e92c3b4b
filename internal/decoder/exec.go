// Package decoder turns a fetched MP3 stream into sound, either through
// an external player command or in process.
package decoder

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/stationfm/internal/playback"
)

// DefaultCommand is the player used when none is configured. It reads
// MP3 data from stdin.
var DefaultCommand = []string{"mpg123", "-q", "-"}

const defaultWaitDelay = 2 * time.Second

// Exec pipes audio into an external player process.
type Exec struct {
	command   []string
	waitDelay time.Duration
	logger    zerolog.Logger
}

// NewExec creates a decoder running command. The audio stream is
// written to the command's stdin.
func NewExec(command []string, logger zerolog.Logger) (*Exec, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("player command is empty")
	}
	return &Exec{
		command:   append([]string(nil), command...),
		waitDelay: defaultWaitDelay,
		logger:    logger.With().Str("component", "decoder").Str("player", command[0]).Logger(),
	}, nil
}

// Decode implements playback.Decoder. Cancelling ctx interrupts the
// player; the resulting exit is reported as ctx.Err().
func (e *Exec) Decode(ctx context.Context, audio io.Reader, control io.Reader) error {
	var paused atomic.Bool
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.command[0], e.command[1:]...)
	cmd.Stdin = audio
	cmd.Stderr = &stderr
	cmd.WaitDelay = e.waitDelay
	cmd.Cancel = func() error {
		if paused.Load() {
			_ = resumeProcess(cmd.Process)
		}
		return interruptProcess(cmd.Process)
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", e.command[0])
	}

	go e.forward(cmd.Process, control, &paused)

	err := cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return errors.Wrapf(err, "%s: %s", e.command[0], msg)
		}
		return errors.Wrapf(err, "%s failed", e.command[0])
	}
	return nil
}

// forward applies control commands to the player until control is
// closed.
func (e *Exec) forward(proc *os.Process, control io.Reader, paused *atomic.Bool) {
	buf := make([]byte, 1)
	for {
		if _, err := control.Read(buf); err != nil {
			return
		}

		switch cmd := playback.Command(buf[0]); cmd {
		case playback.CommandPause:
			var err error
			if paused.Load() {
				err = resumeProcess(proc)
			} else {
				err = pauseProcess(proc)
			}
			if err != nil {
				e.logger.Debug().Err(err).Msg("Failed to toggle pause")
				continue
			}
			paused.Store(!paused.Load())
			e.logger.Debug().Bool("paused", paused.Load()).Msg("Toggled pause")
		default:
			e.logger.Debug().Str("command", cmd.String()).Msg("Command not supported by external player")
		}
	}
}
