package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/stationfm/internal/config"
	"github.com/jfmyers9/stationfm/pkg/lastfm"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Last.fm",
	Long: `Authenticate with Last.fm to enable radio playback.

Radio stations can only be tuned with a Last.fm session:
1. Enter your Last.fm API key and secret
2. Open the printed URL and authorize stationfm
3. The session key is saved to your config file

API credentials are available at https://www.last.fm/api/account/create`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := setupLogger(logFile, logLevel)
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, _ = fmt.Fprintln(out, "Last.fm Authentication")
	_, _ = fmt.Fprintln(out)

	if cfg.LastFM.APIKey != "" && cfg.LastFM.APISecret != "" {
		_, _ = fmt.Fprintf(out, "Using API key %s.\n", cfg.LastFM.APIKey)
		if !confirm(reader, out, "Keep these credentials? [Y/n]: ") {
			cfg.LastFM.APIKey = ""
			cfg.LastFM.APISecret = ""
		}
	}

	if cfg.LastFM.APIKey == "" {
		if cfg.LastFM.APIKey, err = prompt(reader, out, "API Key: "); err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
	}
	if cfg.LastFM.APISecret == "" {
		if cfg.LastFM.APISecret, err = prompt(reader, out, "API Secret: "); err != nil {
			return fmt.Errorf("failed to read API secret: %w", err)
		}
	}

	client, err := newLastFMClient(cfg, logger)
	if err != nil {
		return err
	}

	token, err := client.Auth().GetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\nAuthorize stationfm at:\n\n  %s\n\n", client.Auth().GetAuthURL(token.Token))
	_, _ = fmt.Fprint(out, "Press Enter once done...")
	_, _ = reader.ReadString('\n')

	session, err := fetchSession(ctx, client, token.Token)
	if err != nil {
		return err
	}

	cfg.LastFM.SessionKey = session.Key
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\nAuthenticated as %s.\n", session.Username)
	if !session.Subscriber {
		_, _ = fmt.Fprintln(out, "Note: some stations are only available to subscribers.")
	}
	_, _ = fmt.Fprintf(out, "Session saved to %s/config.yaml\n", cfg.Dir())

	return nil
}

// fetchSession exchanges the token, retrying while Last.fm has not yet
// registered the authorization.
func fetchSession(ctx context.Context, client *lastfm.Client, token string) (*lastfm.Session, error) {
	const (
		attempts   = 3
		retryDelay = 2 * time.Second
	)

	var err error
	for i := 0; i < attempts; i++ {
		var session *lastfm.Session
		session, err = client.Auth().GetSession(ctx, token)
		if err == nil {
			return session, nil
		}
		if i < attempts-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to get session key after %d attempts: %w", attempts, err)
}

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("value is required")
	}
	return value, nil
}

func confirm(reader *bufio.Reader, out io.Writer, label string) bool {
	_, _ = fmt.Fprint(out, label)
	line, _ := reader.ReadString('\n')
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}
