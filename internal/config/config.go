package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix    = "STATIONFM"
	envConfigDir = "STATIONFM_CONFIG_DIR"

	configName = "config"
	configType = "yaml"

	DecoderExec = "exec"
	DecoderBeep = "beep"
)

// ErrNoConfigFile is returned by Watch when no config file was read.
var ErrNoConfigFile = errors.New("no config file to watch")

// Config holds application configuration
type Config struct {
	// Output format template for the now command
	// Default: "{{.Creator}} - {{.Title}}"
	OutputFormat string `validate:"required"`

	// Fixed width of the now output, 0 disables padding
	OutputWidth int `validate:"gte=0"`

	LastFM LastFMConfig
	Radio  RadioConfig
	Player PlayerConfig

	dir string
	v   *viper.Viper
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey     string
	APISecret  string
	SessionKey string
	WebURL     string `validate:"omitempty,url"`
}

// RadioConfig holds station behaviour settings
type RadioConfig struct {
	// Wait for the current track to end before switching stations
	DelayChange bool

	// Ask for tracks outside the listener's library
	Discovery bool

	// Station tuned by play when none is given
	DefaultStation string

	// Requested stream bitrate, 0 lets the service decide
	Bitrate int `validate:"oneof=0 64 128"`
}

// PlayerConfig selects how audio is decoded
type PlayerConfig struct {
	Decoder string   `validate:"oneof=exec beep"`
	Command []string `validate:"required_if=Decoder exec,dive,required"`
}

// Load reads configuration from the config directory and environment
func Load() (*Config, error) {
	return LoadFrom(GetConfigDir())
}

// LoadFrom reads configuration from dir and environment. A .env file in
// the working directory or in dir is loaded first; variables already set
// in the environment win.
func LoadFrom(dir string) (*Config, error) {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := fromViper(v, dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_format", "{{.Creator}} - {{.Title}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("radio.delay_change", false)
	v.SetDefault("radio.discovery", false)
	v.SetDefault("radio.bitrate", 0)
	v.SetDefault("player.decoder", DecoderExec)
	v.SetDefault("player.command", []string{"mpg123", "-q", "-"})
}

func fromViper(v *viper.Viper, dir string) *Config {
	return &Config{
		OutputFormat: v.GetString("output_format"),
		OutputWidth:  v.GetInt("output_width"),
		LastFM: LastFMConfig{
			APIKey:     v.GetString("lastfm.api_key"),
			APISecret:  v.GetString("lastfm.api_secret"),
			SessionKey: v.GetString("lastfm.session_key"),
			WebURL:     v.GetString("lastfm.web_url"),
		},
		Radio: RadioConfig{
			DelayChange:    v.GetBool("radio.delay_change"),
			Discovery:      v.GetBool("radio.discovery"),
			DefaultStation: v.GetString("radio.default_station"),
			Bitrate:        v.GetInt("radio.bitrate"),
		},
		Player: PlayerConfig{
			Decoder: strings.ToLower(v.GetString("player.decoder")),
			Command: v.GetStringSlice("player.command"),
		},
		dir: dir,
		v:   v,
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Dir returns the directory the configuration was loaded from
func (c *Config) Dir() string {
	return c.dir
}

// StatePath returns the path of the now-playing state file
func (c *Config) StatePath() string {
	return filepath.Join(c.dir, "now.json")
}

// HistoryPath returns the path of the station history database
func (c *Config) HistoryPath() string {
	return filepath.Join(c.dir, "history.db")
}

// Watch calls fn with the reloaded configuration every time the config
// file changes. Invalid configurations are passed with their error.
func (c *Config) Watch(fn func(*Config, error)) error {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return ErrNoConfigFile
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next := fromViper(c.v, c.dir)
		fn(next, next.Validate())
	})
	c.v.WatchConfig()
	return nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	if dir := os.Getenv(envConfigDir); dir != "" {
		_ = os.MkdirAll(dir, 0755)
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "stationfm")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to config.yaml in its directory
func (c *Config) Save() error {
	dir := c.dir
	if dir == "" {
		dir = getConfigDir()
	}

	v := viper.New()
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("lastfm.api_key", c.LastFM.APIKey)
	v.Set("lastfm.api_secret", c.LastFM.APISecret)
	v.Set("lastfm.session_key", c.LastFM.SessionKey)
	if c.LastFM.WebURL != "" {
		v.Set("lastfm.web_url", c.LastFM.WebURL)
	}
	v.Set("radio.delay_change", c.Radio.DelayChange)
	v.Set("radio.discovery", c.Radio.Discovery)
	v.Set("radio.default_station", c.Radio.DefaultStation)
	v.Set("radio.bitrate", c.Radio.Bitrate)
	v.Set("player.decoder", c.Player.Decoder)
	v.Set("player.command", c.Player.Command)

	if err := v.WriteConfigAs(filepath.Join(dir, configName+"."+configType)); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
