package adam

import (
	"errors"
	"time"

	"github.com/arloliu/go-rs485/logger"
)

// DefaultTimeout is how long a client waits for a reply.
const DefaultTimeout = time.Second

type clientConfig struct {
	timeout time.Duration
	logger  logger.Logger
}

// ClientOption is a functional option for configuring a Client.
type ClientOption interface {
	apply(*clientConfig) error
}

type clientOptFunc func(*clientConfig) error

func (f clientOptFunc) apply(cfg *clientConfig) error { return f(cfg) }

// WithTimeout sets the reply timeout.
func WithTimeout(d time.Duration) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("adam: timeout must be positive")
		}
		cfg.timeout = d

		return nil
	})
}

// WithLogger sets the logger for the client.
func WithLogger(l logger.Logger) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if l == nil {
			return errors.New("adam: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
