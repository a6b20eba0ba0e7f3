package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DefaultMaxBufferSize caps unparsed buffered bytes per connection when the
// config does not say otherwise.
const DefaultMaxBufferSize = 8 * 1024 * 1024 // 8 MB

// Config is the top-level configuration loaded from config.toml.
type Config struct {
	Listen  ListenConfig  `toml:"listen"`
	Decode  DecodeConfig  `toml:"decode"`
	Journal JournalConfig `toml:"journal"`
}

// ListenConfig describes the daemon's listeners. Nil means disabled.
type ListenConfig struct {
	// Unix socket path. Defaults to <dataDir>/framewire.sock.
	Socket *string `toml:"socket,omitempty"`
	// TCP listen address (e.g. "0.0.0.0:9400").
	TCP *string `toml:"tcp,omitempty"`
	// HTTP listen address serving /ws (WebSocket ingest) and /metrics.
	HTTP *string `toml:"http,omitempty"`
}

// DecodeConfig carries the per-connection decoder settings.
type DecodeConfig struct {
	// MaxBufferSize caps unparsed buffered bytes per connection. 0 = unbounded.
	MaxBufferSize int `toml:"max_buffer_size"`
	// DestroyOnError closes a connection after its first decode error.
	DestroyOnError bool `toml:"destroy_on_error"`
	// Schema points at a JSON Schema document (JSON or YAML) gating messages.
	Schema *string `toml:"schema,omitempty"`
}

// JournalConfig controls the received-message journal.
type JournalConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoadConfig reads config.toml from dataDir, applies FRAMEWIRE_* environment
// overrides, and validates the result.
func LoadConfig(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, "config.toml")

	cfg := &Config{
		Decode: DecodeConfig{MaxBufferSize: DefaultMaxBufferSize},
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if v := os.Getenv("FRAMEWIRE_SOCKET"); v != "" {
		cfg.Listen.Socket = &v
	}
	if v := os.Getenv("FRAMEWIRE_TCP"); v != "" {
		cfg.Listen.TCP = &v
	}
	if v := os.Getenv("FRAMEWIRE_HTTP"); v != "" {
		cfg.Listen.HTTP = &v
	}
	if v := os.Getenv("FRAMEWIRE_SCHEMA"); v != "" {
		cfg.Decode.Schema = &v
	}
	if v := os.Getenv("FRAMEWIRE_MAX_BUFFER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FRAMEWIRE_MAX_BUFFER_SIZE: %q", v)
		}
		cfg.Decode.MaxBufferSize = n
	}
	if v := os.Getenv("FRAMEWIRE_JOURNAL"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FRAMEWIRE_JOURNAL: %q", v)
		}
		cfg.Journal.Enabled = enabled
	}

	if cfg.Decode.MaxBufferSize < 0 {
		return nil, fmt.Errorf("decode.max_buffer_size must be non-negative, got %d", cfg.Decode.MaxBufferSize)
	}
	return cfg, nil
}

// SocketPath resolves the daemon's Unix socket path for dataDir.
func (c *Config) SocketPath(dataDir string) string {
	if c.Listen.Socket != nil && *c.Listen.Socket != "" {
		return *c.Listen.Socket
	}
	return filepath.Join(dataDir, "framewire.sock")
}
