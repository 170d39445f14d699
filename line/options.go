package line

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-rs485/logger"
)

const (
	// DefaultReadChunkSize is the size of a single bulk read.
	DefaultReadChunkSize = 4096

	// MaxReadChunkSize bounds WithReadChunkSize.
	MaxReadChunkSize = 64 * 1024

	// DefaultWriteTimeout bounds a socket write.
	DefaultWriteTimeout = time.Second
)

type lineConfig struct {
	name         string
	chunkSize    int
	writeTimeout time.Duration
	logger       logger.Logger
}

func newLineConfig(opts []Option) (*lineConfig, error) {
	cfg := &lineConfig{
		chunkSize:    DefaultReadChunkSize,
		writeTimeout: DefaultWriteTimeout,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.name != "" {
		cfg.logger = cfg.logger.With("line", cfg.name)
	}

	return cfg, nil
}

// Option is a functional option for configuring a line.
type Option interface {
	apply(*lineConfig) error
}

type optFunc func(*lineConfig) error

func (f optFunc) apply(cfg *lineConfig) error { return f(cfg) }

// WithName labels the line in log output.
func WithName(name string) Option {
	return optFunc(func(cfg *lineConfig) error {
		cfg.name = name
		return nil
	})
}

// WithLogger sets the logger for the line.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *lineConfig) error {
		if l == nil {
			return errors.New("line: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithReadChunkSize sets the maximum number of bytes taken from the device in
// one read. Must be in [1, MaxReadChunkSize].
func WithReadChunkSize(n int) Option {
	return optFunc(func(cfg *lineConfig) error {
		if n < 1 || n > MaxReadChunkSize {
			return fmt.Errorf("line: read chunk size %d out of range [1, %d]", n, MaxReadChunkSize)
		}
		cfg.chunkSize = n

		return nil
	})
}

// WithWriteTimeout bounds a single write on socket lines.
func WithWriteTimeout(d time.Duration) Option {
	return optFunc(func(cfg *lineConfig) error {
		if d <= 0 {
			return errors.New("line: write timeout must be positive")
		}
		cfg.writeTimeout = d

		return nil
	})
}
