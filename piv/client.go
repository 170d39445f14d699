package piv

import (
	"fmt"
	"time"

	"github.com/arloliu/go-rs485/internal/exchange"
	"github.com/arloliu/go-rs485/line"
	"github.com/arloliu/go-rs485/logger"
)

// Client sends and receives packets over a shared line.
//
// Query holds the line's guard for the whole exchange. Send and Receive do
// not take the guard; callers pairing them by hand must lock the line
// themselves.
type Client struct {
	line    line.Line
	timeout time.Duration
	logger  logger.Logger
	stats   *exchange.Stats
}

// NewClient creates a client on l.
func NewClient(l line.Line, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: DefaultTimeout,
		logger:  logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return &Client{
		line:    l,
		timeout: cfg.timeout,
		logger:  cfg.logger,
		stats:   exchange.NewStats(),
	}, nil
}

// Timeout returns the reply timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Stats returns the Query counters for the module at addr.
func (c *Client) Stats(addr byte) (exchange.Snapshot, bool) {
	return c.stats.Get(addr)
}

// Send writes one packet carrying payload to the module at addr without
// waiting for a reply.
func (c *Client) Send(addr byte, payload []byte) error {
	if err := c.line.Write(Encode(addr, payload)); err != nil {
		return fmt.Errorf("piv: send to %d: %w", addr, err)
	}

	return nil
}

// Receive reads one packet and returns its payload if it comes from addr.
func (c *Client) Receive(addr byte) ([]byte, error) {
	return c.receive(addr, c.timeout)
}

func (c *Client) receive(addr byte, timeout time.Duration) ([]byte, error) {
	frame, err := c.line.ReadFrame(timeout, Stop)
	if err != nil {
		return nil, fmt.Errorf("piv: waiting for reply from %d: %w", addr, err)
	}

	return Decode(frame, addr)
}

// Query sends payload to the module at addr and returns the reply payload.
func (c *Client) Query(addr byte, payload []byte) ([]byte, error) {
	return c.queryWithin(addr, payload, c.timeout)
}

func (c *Client) queryWithin(addr byte, payload []byte, timeout time.Duration) ([]byte, error) {
	reply, err := c.query(addr, payload, timeout)
	c.stats.Record(addr, err)

	if err != nil {
		c.logger.Warn("piv: query failed", "address", addr, "request", fmt.Sprintf("%X", payload), "error", err)
		return nil, err
	}
	c.logger.Debug("piv: query", "address", addr, "request", fmt.Sprintf("%X", payload), "reply", fmt.Sprintf("%X", reply))

	return reply, nil
}

func (c *Client) query(addr byte, payload []byte, timeout time.Duration) ([]byte, error) {
	c.line.Lock()
	defer c.line.Unlock()

	if err := c.Send(addr, payload); err != nil {
		return nil, err
	}

	return c.receive(addr, timeout)
}

// Module is a Client bound to one module address.
type Module struct {
	client  *Client
	addr    byte
	timeout time.Duration
}

// ModuleOption configures a Module handle.
type ModuleOption func(*Module)

// WithModuleTimeout overrides the client's reply timeout for one module.
// Non-positive values are ignored.
func WithModuleTimeout(d time.Duration) ModuleOption {
	return func(m *Module) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// Module returns a handle for the module at addr. Without options it uses
// the client's reply timeout.
func (c *Client) Module(addr byte, opts ...ModuleOption) *Module {
	m := &Module{client: c, addr: addr, timeout: c.timeout}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Address returns the module address.
func (m *Module) Address() byte { return m.addr }

// Timeout returns the reply timeout used for this module.
func (m *Module) Timeout() time.Duration { return m.timeout }

// Query sends payload to the module and returns the reply payload.
func (m *Module) Query(payload []byte) ([]byte, error) {
	return m.client.queryWithin(m.addr, payload, m.timeout)
}

// Send writes payload to the module without waiting for a reply.
func (m *Module) Send(payload []byte) error {
	return m.client.Send(m.addr, payload)
}
