package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"cipherkit/internal/hashing"
	"cipherkit/internal/stegano"
	"cipherkit/internal/substitution"
	"cipherkit/internal/transposition"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// EnvPrefix is prepended to every environment override, e.g.
// CIPHERKIT_DEFAULTS_CAESAR_SHIFT=5.
const EnvPrefix = "CIPHERKIT"

// Config represents the complete cipherkit configuration
type Config struct {
	Version int `json:"version" yaml:"version" toml:"version" mapstructure:"version"`

	Logging  LoggingConfig  `json:"logging" yaml:"logging" toml:"logging" mapstructure:"logging"`
	Defaults DefaultsConfig `json:"defaults" yaml:"defaults" toml:"defaults" mapstructure:"defaults"`
	Hash     HashConfig     `json:"hash" yaml:"hash" toml:"hash" mapstructure:"hash"`
	History  HistoryConfig  `json:"history" yaml:"history" toml:"history" mapstructure:"history"`
	Server   ServerConfig   `json:"server" yaml:"server" toml:"server" mapstructure:"server"`
	Stegano  SteganoConfig  `json:"stegano" yaml:"stegano" toml:"stegano" mapstructure:"stegano"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" yaml:"format" toml:"format" mapstructure:"format"`
	Level      string `json:"level" yaml:"level" toml:"level" mapstructure:"level"`
	File       string `json:"file" yaml:"file" toml:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" yaml:"maxSize" toml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" toml:"max_backups" mapstructure:"max_backups"`
}

// DefaultsConfig holds the parameters used when a command omits them.
type DefaultsConfig struct {
	CaesarShift    int    `json:"caesarShift" yaml:"caesarShift" toml:"caesar_shift" mapstructure:"caesar_shift"`
	Rot13Shift     int    `json:"rot13Shift" yaml:"rot13Shift" toml:"rot13_shift" mapstructure:"rot13_shift"`
	Rails          int    `json:"rails" yaml:"rails" toml:"rails" mapstructure:"rails"`
	RailMode       string `json:"railMode" yaml:"railMode" toml:"rail_mode" mapstructure:"rail_mode"`
	ScytaleColumns int    `json:"scytaleColumns" yaml:"scytaleColumns" toml:"scytale_columns" mapstructure:"scytale_columns"`
	BaconVariant   string `json:"baconVariant" yaml:"baconVariant" toml:"bacon_variant" mapstructure:"bacon_variant"`
	MaxInputBytes  int    `json:"maxInputBytes" yaml:"maxInputBytes" toml:"max_input_bytes" mapstructure:"max_input_bytes"`
}

// HashConfig configures file digests
type HashConfig struct {
	FileAlgorithms []string `json:"fileAlgorithms" yaml:"fileAlgorithms" toml:"file_algorithms" mapstructure:"file_algorithms"`
	ChunkSize      int      `json:"chunkSize" yaml:"chunkSize" toml:"chunk_size" mapstructure:"chunk_size"`
}

// HistoryConfig configures the operation journal
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" toml:"path" mapstructure:"path"`
	Limit   int    `json:"limit" yaml:"limit" toml:"limit" mapstructure:"limit"`
}

// ServerConfig configures `cipherkit serve`
type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr" mapstructure:"addr"`
	ReadTimeoutSec  int    `json:"readTimeoutSec" yaml:"readTimeoutSec" toml:"read_timeout_sec" mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `json:"writeTimeoutSec" yaml:"writeTimeoutSec" toml:"write_timeout_sec" mapstructure:"write_timeout_sec"`
}

// SteganoConfig configures image embedding
type SteganoConfig struct {
	Channels string `json:"channels" yaml:"channels" toml:"channels" mapstructure:"channels"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Defaults: DefaultsConfig{
			CaesarShift:    substitution.DefaultCaesarShift,
			Rot13Shift:     substitution.Rot13Shift,
			Rails:          transposition.DefaultRails,
			RailMode:       transposition.OmitAll.String(),
			ScytaleColumns: transposition.DefaultScytaleColumns,
			BaconVariant:   substitution.BaconModern.String(),
			MaxInputBytes:  1 << 20,
		},
		Hash: HashConfig{
			FileAlgorithms: append([]string(nil), hashing.DefaultFileAlgorithms...),
			ChunkSize:      hashing.DefaultChunkSize,
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   50,
		},
		Server: ServerConfig{
			Addr:            "localhost:8088",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 15,
		},
		Stegano: SteganoConfig{
			Channels: stegano.RGB.String(),
		},
	}
}

// Setting is one flattened config key with its value.
type Setting struct {
	Key   string
	Value interface{}
}

// EnvName returns the environment variable that overrides the setting.
func (s Setting) EnvName() string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(s.Key, ".", "_"))
}

// Settings flattens the configuration into dotted keys, in file order.
func (c *Config) Settings() []Setting {
	return []Setting{
		{"version", c.Version},
		{"logging.format", c.Logging.Format},
		{"logging.level", c.Logging.Level},
		{"logging.file", c.Logging.File},
		{"logging.max_size", c.Logging.MaxSize},
		{"logging.max_backups", c.Logging.MaxBackups},
		{"defaults.caesar_shift", c.Defaults.CaesarShift},
		{"defaults.rot13_shift", c.Defaults.Rot13Shift},
		{"defaults.rails", c.Defaults.Rails},
		{"defaults.rail_mode", c.Defaults.RailMode},
		{"defaults.scytale_columns", c.Defaults.ScytaleColumns},
		{"defaults.bacon_variant", c.Defaults.BaconVariant},
		{"defaults.max_input_bytes", c.Defaults.MaxInputBytes},
		{"hash.file_algorithms", c.Hash.FileAlgorithms},
		{"hash.chunk_size", c.Hash.ChunkSize},
		{"history.enabled", c.History.Enabled},
		{"history.path", c.History.Path},
		{"history.limit", c.History.Limit},
		{"server.addr", c.Server.Addr},
		{"server.read_timeout_sec", c.Server.ReadTimeoutSec},
		{"server.write_timeout_sec", c.Server.WriteTimeoutSec},
		{"stegano.channels", c.Stegano.Channels},
	}
}

// LoadConfig loads configuration from the TOML file at path and applies
// CIPHERKIT_* environment overrides. A missing file yields the defaults
// (still subject to the environment).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Registering every key is what lets AutomaticEnv reach Unmarshal.
	for _, s := range DefaultConfig().Settings() {
		v.SetDefault(s.Key, s.Value)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}

	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}

	if c.Defaults.Rails < 2 {
		return &ConfigError{Field: "defaults.rails", Message: "must be at least 2"}
	}
	if _, err := transposition.ParseMode(c.Defaults.RailMode); err != nil {
		return &ConfigError{Field: "defaults.rail_mode", Message: err.Error()}
	}
	if c.Defaults.ScytaleColumns < 1 {
		return &ConfigError{Field: "defaults.scytale_columns", Message: "must be at least 1"}
	}
	if _, err := substitution.ParseBaconVariant(c.Defaults.BaconVariant); err != nil {
		return &ConfigError{Field: "defaults.bacon_variant", Message: err.Error()}
	}
	if c.Defaults.MaxInputBytes <= 0 {
		return &ConfigError{Field: "defaults.max_input_bytes", Message: "must be positive"}
	}

	for _, name := range c.Hash.FileAlgorithms {
		if !hashing.Supported(name) {
			return &ConfigError{Field: "hash.file_algorithms", Message: fmt.Sprintf("unsupported algorithm %q", name)}
		}
	}
	if c.Hash.ChunkSize <= 0 {
		return &ConfigError{Field: "hash.chunk_size", Message: "must be positive"}
	}

	if c.History.Limit <= 0 {
		return &ConfigError{Field: "history.limit", Message: "must be positive"}
	}

	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "must not be empty"}
	}

	if _, err := stegano.ParseChannels(c.Stegano.Channels); err != nil {
		return &ConfigError{Field: "stegano.channels", Message: err.Error()}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
