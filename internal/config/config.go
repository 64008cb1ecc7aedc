// Package config handles configuration loading, validation, and
// hot-reloading for layoutd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Layouts names the two keyboard layouts the daemon toggles between.
	Layouts LayoutsConfig `toml:"layouts" json:"layouts" yaml:"layouts"`

	// Hotkeys binds the engine commands to key chords.
	Hotkeys HotkeysConfig `toml:"hotkeys" json:"hotkeys" yaml:"hotkeys"`

	// Timing tunes the correction executor.
	Timing TimingConfig `toml:"timing" json:"timing" yaml:"timing"`

	// Dictionary locates wordlists and the personal dictionary.
	Dictionary DictionaryConfig `toml:"dictionary" json:"dictionary" yaml:"dictionary"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// IPC configuration for the control socket.
	IPC IPCConfig `toml:"ipc" json:"ipc" yaml:"ipc"`

	// StartEnabled determines whether correction is active at startup.
	StartEnabled bool `toml:"start_enabled" json:"start_enabled" yaml:"start_enabled"`

	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// LayoutsConfig names the system layout identifiers.
type LayoutsConfig struct {
	// Latin is the system identifier of the Latin layout
	// (e.g. "xkb:us::eng" under IBus).
	Latin string `toml:"latin" json:"latin" yaml:"latin"`

	// Cyrillic is the system identifier of the Cyrillic layout
	// (e.g. "xkb:ua:winkeys:ukr").
	Cyrillic string `toml:"cyrillic" json:"cyrillic" yaml:"cyrillic"`
}

// HotkeysConfig holds the command chords as parseable strings, e.g.
// "ctrl+alt+z". See ParseChord for the accepted syntax.
type HotkeysConfig struct {
	// FixLast converts the most recent deferred word.
	FixLast string `toml:"fix_last" json:"fix_last" yaml:"fix_last"`

	// Toggle enables or disables automatic correction.
	Toggle string `toml:"toggle" json:"toggle" yaml:"toggle"`

	// ForceConvert converts the current word regardless of spellcheck.
	ForceConvert string `toml:"force_convert" json:"force_convert" yaml:"force_convert"`
}

// TimingConfig tunes delays on the correction path.
type TimingConfig struct {
	// SettleDelayMs is how long after a word boundary the engine waits
	// before capturing document anchors for a deferred word.
	SettleDelayMs int `toml:"settle_delay_ms" json:"settle_delay_ms" yaml:"settle_delay_ms"`

	// SwitchPollIntervalMs is the poll interval while waiting for a
	// layout switch to take effect.
	SwitchPollIntervalMs int `toml:"switch_poll_interval_ms" json:"switch_poll_interval_ms" yaml:"switch_poll_interval_ms"`

	// SwitchRetryLimit is the number of polls before typing anyway.
	SwitchRetryLimit int `toml:"switch_retry_limit" json:"switch_retry_limit" yaml:"switch_retry_limit"`

	// RelocationWindowRunes bounds the anchored search around a deferred
	// word's recorded position.
	RelocationWindowRunes int `toml:"relocation_window_runes" json:"relocation_window_runes" yaml:"relocation_window_runes"`
}

// DictionaryConfig locates the spellcheck data.
type DictionaryConfig struct {
	// EnglishWordlist is the path to the English wordlist file.
	EnglishWordlist string `toml:"english_wordlist" json:"english_wordlist" yaml:"english_wordlist"`

	// UkrainianWordlist is the path to the Ukrainian wordlist file.
	UkrainianWordlist string `toml:"ukrainian_wordlist" json:"ukrainian_wordlist" yaml:"ukrainian_wordlist"`

	// EnglishTag is the concrete language tag reported for English.
	EnglishTag string `toml:"english_tag" json:"english_tag" yaml:"english_tag"`

	// UkrainianTag is the concrete language tag reported for Ukrainian.
	UkrainianTag string `toml:"ukrainian_tag" json:"ukrainian_tag" yaml:"ukrainian_tag"`

	// DatabasePath is the SQLite database holding the personal
	// dictionary and correction history.
	DatabasePath string `toml:"database_path" json:"database_path" yaml:"database_path"`

	// CustomTablePath optionally overrides the built-in character table
	// with a JSON mapping file.
	CustomTablePath string `toml:"custom_table_path" json:"custom_table_path" yaml:"custom_table_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", or "file".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output is "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// IPCConfig holds control socket configuration.
type IPCConfig struct {
	// Enabled determines whether the IPC server is started.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// SocketPath is the path to the Unix socket.
	SocketPath string `toml:"socket_path" json:"socket_path" yaml:"socket_path"`

	// TimeoutSec is the per-connection timeout.
	TimeoutSec int `toml:"timeout_sec" json:"timeout_sec" yaml:"timeout_sec"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir := PlatformDataDir()

	return &Config{
		Version: Version,
		Layouts: LayoutsConfig{
			Latin:    "xkb:us::eng",
			Cyrillic: "xkb:ua:winkeys:ukr",
		},
		Hotkeys: HotkeysConfig{
			FixLast:      "ctrl+alt+z",
			Toggle:       "ctrl+alt+l",
			ForceConvert: "ctrl+alt+x",
		},
		Timing: TimingConfig{
			SettleDelayMs:         150,
			SwitchPollIntervalMs:  50,
			SwitchRetryLimit:      10,
			RelocationWindowRunes: 256,
		},
		Dictionary: DictionaryConfig{
			EnglishWordlist:   "/usr/share/dict/words",
			UkrainianWordlist: filepath.Join(dataDir, "uk_UA.dic"),
			EnglishTag:        "en_US",
			UkrainianTag:      "uk_UA",
			DatabasePath:      filepath.Join(dataDir, "layoutd.db"),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "file",
			FilePath: filepath.Join(PlatformLogDir(), "layoutd.log"),
		},
		IPC: IPCConfig{
			Enabled:    true,
			SocketPath: DefaultSocketPath(),
			TimeoutSec: 10,
		},
		StartEnabled: true,
	}
}

// ConfigPath returns the default configuration file path. The
// LAYOUTD_CONFIG environment variable overrides it.
func ConfigPath() string {
	if env := os.Getenv("LAYOUTD_CONFIG"); env != "" {
		return env
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Dictionary.DatabasePath),
		filepath.Dir(c.Logging.FilePath),
		filepath.Dir(c.IPC.SocketPath),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies LAYOUTD_* environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("LAYOUTD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LAYOUTD_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("LAYOUTD_SOCKET_PATH"); v != "" {
		c.IPC.SocketPath = v
	}
	if v := os.Getenv("LAYOUTD_DATABASE_PATH"); v != "" {
		c.Dictionary.DatabasePath = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Config{
		Version:      c.Version,
		Layouts:      c.Layouts,
		Hotkeys:      c.Hotkeys,
		Timing:       c.Timing,
		Dictionary:   c.Dictionary,
		Logging:      c.Logging,
		IPC:          c.IPC,
		StartEnabled: c.StartEnabled,
	}
}

// SaveConfig writes cfg to path as TOML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
