package radio

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// CommandKind identifies a user command for the Runner.
type CommandKind int

const (
	CommandSkip CommandKind = iota
	CommandPause
	CommandVolumeUp
	CommandVolumeDown
	CommandTune
	CommandInfo
	CommandQuit
	CommandDelayChange // Sent on configuration changes, not parsed
)

// String returns a human-readable representation of the CommandKind
func (k CommandKind) String() string {
	switch k {
	case CommandSkip:
		return "skip"
	case CommandPause:
		return "pause"
	case CommandVolumeUp:
		return "volume-up"
	case CommandVolumeDown:
		return "volume-down"
	case CommandTune:
		return "tune"
	case CommandInfo:
		return "info"
	case CommandQuit:
		return "quit"
	case CommandDelayChange:
		return "delay-change"
	default:
		return "unknown"
	}
}

// Command is a user request handled by the Runner.
type Command struct {
	Kind    CommandKind
	Station string // Set for CommandTune, may be empty
	Enabled bool   // Set for CommandDelayChange
}

// ErrUnknownCommand is returned by ParseCommand for unrecognized input.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand parses one line of interactive input:
//
//	n            skip to the next track
//	p            pause or resume
//	+ / -        volume up / down
//	i            show the current track
//	q            quit
//	s <station>  tune to a station (also "tune <station>")
//
// A tune command without a station is valid and cancels a delayed change.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.Wrap(ErrUnknownCommand, "empty input")
	}

	verb := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch verb {
	case "n", "next", "skip":
		return Command{Kind: CommandSkip}, nil
	case "p", "pause":
		return Command{Kind: CommandPause}, nil
	case "+":
		return Command{Kind: CommandVolumeUp}, nil
	case "-":
		return Command{Kind: CommandVolumeDown}, nil
	case "i", "info":
		return Command{Kind: CommandInfo}, nil
	case "q", "quit":
		return Command{Kind: CommandQuit}, nil
	case "s", "tune":
		return Command{Kind: CommandTune, Station: arg}, nil
	default:
		return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", fields[0])
	}
}
