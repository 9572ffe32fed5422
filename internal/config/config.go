package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents an eventd daemon configuration file.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string `toml:"listen_addr"`
	// CatalogPath points at the YAML event catalog.
	CatalogPath string `toml:"catalog_path"`
	// LogPath is the JSON log file. Empty logs to stderr only.
	LogPath string `toml:"log_path"`
	// LogLevel is the minimum level logged: debug, info, warn, or error.
	LogLevel string `toml:"log_level"`
	// StreamBuffer is the per-subscriber envelope buffer of the live
	// stream endpoint. Slow consumers past this buffer miss envelopes.
	StreamBuffer int `toml:"stream_buffer"`

	Dispatch DispatchConfig `toml:"dispatch"`
	Redis    RedisConfig    `toml:"redis"`
}

// DispatchConfig adjusts payload validation.
type DispatchConfig struct {
	// LenientFields accepts payload fields the schema does not declare
	// instead of rejecting the request.
	LenientFields bool `toml:"lenient_fields"`
}

// RedisConfig enables the Redis pub/sub delivery sink.
type RedisConfig struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	Password      string `toml:"password"`
	DB            int    `toml:"db"`
	ChannelPrefix string `toml:"channel_prefix"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ListenAddr:   ":8080",
		CatalogPath:  "catalog.yaml",
		LogLevel:     "info",
		StreamBuffer: 256,
		Redis: RedisConfig{
			Addr:          "127.0.0.1:6379",
			ChannelPrefix: "events:",
		},
	}
}

// Load reads config from the given path, filling omitted fields with
// defaults. Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	d := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.CatalogPath == "" {
		c.CatalogPath = d.CatalogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.StreamBuffer <= 0 {
		c.StreamBuffer = d.StreamBuffer
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = d.Redis.Addr
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = d.Redis.ChannelPrefix
	}
}
