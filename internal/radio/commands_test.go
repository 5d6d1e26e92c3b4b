package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"n", Command{Kind: CommandSkip}},
		{"  next  ", Command{Kind: CommandSkip}},
		{"p", Command{Kind: CommandPause}},
		{"+", Command{Kind: CommandVolumeUp}},
		{"-", Command{Kind: CommandVolumeDown}},
		{"i", Command{Kind: CommandInfo}},
		{"Q", Command{Kind: CommandQuit}},
		{"s artists/metallica", Command{Kind: CommandTune, Station: "artists/metallica"}},
		{"tune lastfm://globaltags/hip hop", Command{Kind: CommandTune, Station: "lastfm://globaltags/hip hop"}},
		{"s", Command{Kind: CommandTune}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Unknown(t *testing.T) {
	for _, line := range []string{"", "   ", "x", "play"} {
		_, err := ParseCommand(line)
		assert.ErrorIs(t, err, ErrUnknownCommand, "%q", line)
	}
}

func TestCommandKind_String(t *testing.T) {
	assert.Equal(t, "tune", CommandTune.String())
	assert.Equal(t, "delay-change", CommandDelayChange.String())
	assert.Equal(t, "unknown", CommandKind(99).String())
}
