/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/stationfm/internal/config"
	"github.com/jfmyers9/stationfm/internal/nowplaying"
	"github.com/jfmyers9/stationfm/internal/playback"
)

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Display the track stationfm is playing",
	Long: `Display the track currently played by 'stationfm play'.

The output format can be customized in ~/.config/stationfm/config.yaml
using a Go template. Available fields: .Creator, .Title, .Album,
.Duration, .Position, .Station, .StationURL, .Paused

Exit codes:
  0 - A track is playing
  1 - Nothing playing or the track is paused`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
}

// trackView is the data handed to the output template
type trackView struct {
	playback.NowPlaying
	StationURL string
	Position   time.Duration
	Paused     bool
}

func runNow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.OutputFormat = format
	}
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.OutputWidth
	}

	rec, err := nowplaying.Load(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("failed to read now playing: %w", err)
	}

	if rec.Track == nil || rec.Paused() {
		os.Exit(1)
		return nil
	}

	output, err := formatTrack(newTrackView(rec, time.Now()), cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), padToWidth(output, width))
	return nil
}

func newTrackView(rec nowplaying.Record, now time.Time) trackView {
	view := trackView{
		StationURL: rec.StationURL,
		Position:   rec.Played(now).Truncate(time.Second),
		Paused:     rec.Paused(),
	}
	if rec.Track != nil {
		view.NowPlaying = *rec.Track
	}
	return view
}

// formatTrack applies the template to the track data
func formatTrack(view trackView, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width measured
// in terminal columns. Truncated text ends with "...". A width <= 0
// leaves text unchanged.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	const ellipsis = "..."

	if runewidth.StringWidth(text) > width {
		if width <= runewidth.StringWidth(ellipsis) {
			return runewidth.Truncate(ellipsis, width, "")
		}
		text = runewidth.Truncate(text, width-runewidth.StringWidth(ellipsis), "") + ellipsis
	}

	if w := runewidth.StringWidth(text); w < width {
		text += strings.Repeat(" ", width-w)
	}
	return text
}
