// Package config loads bus definitions from YAML or TOML files and opens the
// lines they describe.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Bus kinds.
const (
	KindSerial = "serial"
	KindTCP    = "tcp"
)

// Protocols.
const (
	ProtocolAdam = "adam"
	ProtocolPiv  = "piv"
)

// Log backends.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// Defaults applied to fields left empty.
const (
	DefaultBaudRate  = 9600
	DefaultDataBits  = 8
	DefaultStopBits  = 1
	DefaultParity    = "none"
	DefaultTimeoutMS = 1000
	DefaultLogLevel  = "info"
)

var (
	// ErrUnsupportedFormat indicates a file extension other than .yaml, .yml
	// or .toml.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrInvalid indicates a configuration that failed validation.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the root of a configuration file.
type Config struct {
	Log   LogConfig   `yaml:"log" toml:"log"`
	Buses []BusConfig `yaml:"buses" toml:"buses"`
}

// LogConfig selects the logger backend.
type LogConfig struct {
	// Level is one of debug, info, warn, error or fatal.
	Level string `yaml:"level" toml:"level"`
	// Backend is slog (the default) or zerolog.
	Backend string `yaml:"backend" toml:"backend"`
	// Source adds the caller location to slog records.
	Source bool `yaml:"source" toml:"source"`
}

// BusConfig describes one physical RS-485 bus.
type BusConfig struct {
	Name string `yaml:"name" toml:"name"`
	// Kind is serial or tcp.
	Kind string `yaml:"kind" toml:"kind"`

	// Serial settings.
	Path     string `yaml:"path" toml:"path"`
	BaudRate int    `yaml:"baud_rate" toml:"baud_rate"`
	DataBits int    `yaml:"data_bits" toml:"data_bits"`
	Parity   string `yaml:"parity" toml:"parity"`
	StopBits int    `yaml:"stop_bits" toml:"stop_bits"`

	// Address is the host:port of a TCP-to-serial gateway.
	Address string `yaml:"address" toml:"address"`

	// TimeoutMS is the reply timeout of the protocol client.
	TimeoutMS      int `yaml:"timeout_ms" toml:"timeout_ms"`
	WriteTimeoutMS int `yaml:"write_timeout_ms" toml:"write_timeout_ms"`
	ReadChunkSize  int `yaml:"read_chunk_size" toml:"read_chunk_size"`

	// Debug wraps the line in a decorator that logs traffic at debug level.
	Debug  bool   `yaml:"debug" toml:"debug"`
	Prefix string `yaml:"prefix" toml:"prefix"`

	// Protocol is adam or piv.
	Protocol string `yaml:"protocol" toml:"protocol"`
	// Modules lists the module addresses present on the bus.
	Modules []int `yaml:"modules" toml:"modules"`
}

// Timeout returns the reply timeout.
func (b *BusConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// Load reads the configuration file at path. The format is chosen by the
// file extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	return Parse(data, format)
}

// Parse decodes data in the given format ("yaml", "yml" or "toml"), applies
// defaults and validates the result.
func Parse(data []byte, format string) (*Config, error) {
	cfg := &Config{}

	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("config: decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Backend == "" {
		c.Log.Backend = BackendSlog
	}

	for i := range c.Buses {
		b := &c.Buses[i]
		if b.Kind == KindSerial {
			if b.BaudRate == 0 {
				b.BaudRate = DefaultBaudRate
			}
			if b.DataBits == 0 {
				b.DataBits = DefaultDataBits
			}
			if b.StopBits == 0 {
				b.StopBits = DefaultStopBits
			}
			if b.Parity == "" {
				b.Parity = DefaultParity
			}
		}
		if b.TimeoutMS == 0 {
			b.TimeoutMS = DefaultTimeoutMS
		}
		if b.Prefix == "" {
			b.Prefix = b.Name
		}
	}
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Backend != "" && c.Log.Backend != BackendSlog && c.Log.Backend != BackendZerolog {
		return fmt.Errorf("%w: unknown log backend %q", ErrInvalid, c.Log.Backend)
	}

	names := make(map[string]struct{}, len(c.Buses))
	for i := range c.Buses {
		b := &c.Buses[i]
		if b.Name == "" {
			return fmt.Errorf("%w: bus #%d has no name", ErrInvalid, i)
		}
		if _, dup := names[b.Name]; dup {
			return fmt.Errorf("%w: duplicate bus name %q", ErrInvalid, b.Name)
		}
		names[b.Name] = struct{}{}

		if err := b.validate(); err != nil {
			return fmt.Errorf("%w: bus %q: %w", ErrInvalid, b.Name, err)
		}
	}

	return nil
}

// Bus returns the bus with the given name.
func (c *Config) Bus(name string) (*BusConfig, bool) {
	for i := range c.Buses {
		if c.Buses[i].Name == name {
			return &c.Buses[i], true
		}
	}

	return nil, false
}

func (b *BusConfig) validate() error {
	switch b.Kind {
	case KindSerial:
		if b.Path == "" {
			return errors.New("serial bus needs a path")
		}
		if _, err := b.serialMode(); err != nil {
			return err
		}
	case KindTCP:
		if b.Address == "" {
			return errors.New("tcp bus needs an address")
		}
	default:
		return fmt.Errorf("unknown kind %q", b.Kind)
	}

	if b.Protocol != ProtocolAdam && b.Protocol != ProtocolPiv {
		return fmt.Errorf("unknown protocol %q", b.Protocol)
	}
	if b.TimeoutMS < 0 || b.WriteTimeoutMS < 0 || b.ReadChunkSize < 0 {
		return errors.New("timeouts and chunk size must not be negative")
	}

	for _, addr := range b.Modules {
		if addr < 0 || addr > 0xFF {
			return fmt.Errorf("module address %d out of range", addr)
		}
	}

	return nil
}
