package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "default"

// DefaultResponseTimeout is how long to wait for a conductor reply, in seconds.
const DefaultResponseTimeout = 300

// DefaultHeartbeatInterval is the heartbeat interval in minutes.
const DefaultHeartbeatInterval = 15

// TelegramMaxLength is Telegram's message length limit.
const TelegramMaxLength = 4096

// Config is the bridge configuration, read from the [conductor] section of
// agent-deck's config.toml. Loaded once at startup and never mutated.
type Config struct {
	// Enabled activates the conductor bridge
	Enabled bool `toml:"enabled"`

	// HeartbeatInterval is the interval in minutes between heartbeat checks.
	// A value <= 0 disables the heartbeat entirely.
	HeartbeatInterval int `toml:"heartbeat_interval"`

	// Profiles is the ordered list of agent-deck profiles to manage.
	// The first profile is the default routing target.
	Profiles []string `toml:"profiles"`

	// ResponseTimeout is how long to wait for a conductor reply, in seconds
	// Default: 300
	ResponseTimeout int `toml:"response_timeout"`

	// DeckBin is the agent-deck binary to invoke (default: "agent-deck")
	DeckBin string `toml:"deck_bin"`

	// LogLevel is the minimum log level (default: "info")
	LogLevel string `toml:"log_level"`

	// Telegram defines Telegram bot integration settings
	Telegram TelegramSettings `toml:"telegram"`
}

// TelegramSettings defines Telegram bot configuration for the conductor bridge
type TelegramSettings struct {
	// Token is the Telegram bot token from @BotFather
	Token string `toml:"token"`

	// UserID is the authorized Telegram user ID from @userinfobot
	UserID int64 `toml:"user_id"`

	// UserIDs optionally allow-lists additional authorized user IDs
	UserIDs []int64 `toml:"user_ids"`
}

// tomlFile mirrors the top-level structure of config.toml. Only the
// [conductor] section is decoded; everything else belongs to agent-deck.
type tomlFile struct {
	Conductor Config `toml:"conductor"`
}

// DefaultConfigPath returns ~/.agent-deck/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := AgentDeckDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// AgentDeckDir returns the agent-deck home directory (~/.agent-deck).
func AgentDeckDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".agent-deck"), nil
}

// ConductorDir returns the conductor base directory (~/.agent-deck/conductor).
func ConductorDir() (string, error) {
	dir, err := AgentDeckDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conductor"), nil
}

// ConductorProfileDir returns the working path for a profile's conductor
// session (~/.agent-deck/conductor/<profile>).
func ConductorProfileDir(profile string) (string, error) {
	base, err := ConductorDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, profile), nil
}

// Load reads and validates the bridge configuration from the given path.
// Missing required fields are an error; the caller exits non-zero.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config not found: %s", path)
	}

	var file tomlFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := file.Conductor
	if !cfg.Enabled {
		return nil, fmt.Errorf("[conductor] section missing or not enabled in %s", path)
	}
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("conductor.telegram.token not set in %s", path)
	}
	if cfg.Telegram.UserID == 0 && len(cfg.Telegram.UserIDs) == 0 {
		return nil, fmt.Errorf("conductor.telegram.user_id not set in %s", path)
	}

	cfg.applyDefaults(md)
	return &cfg, nil
}

func (c *Config) applyDefaults(md toml.MetaData) {
	if len(c.Profiles) == 0 {
		c.Profiles = []string{DefaultProfile}
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.DeckBin == "" {
		c.DeckBin = "agent-deck"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	// Only an absent heartbeat_interval gets the default. An explicit
	// value <= 0, zero included, disables the heartbeat and is kept as-is.
	if !md.IsDefined("conductor", "heartbeat_interval") {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
}

// AllowedIDs returns the authorized Telegram user IDs. When user_ids is set
// it takes priority; otherwise the single user_id is the whole allow-list.
func (c *Config) AllowedIDs() []int64 {
	if len(c.Telegram.UserIDs) > 0 {
		return c.Telegram.UserIDs
	}
	if c.Telegram.UserID != 0 {
		return []int64{c.Telegram.UserID}
	}
	return nil
}

// AlertID returns the identity that receives out-of-band heartbeat alerts.
func (c *Config) AlertID() int64 {
	if c.Telegram.UserID != 0 {
		return c.Telegram.UserID
	}
	if len(c.Telegram.UserIDs) > 0 {
		return c.Telegram.UserIDs[0]
	}
	return 0
}
