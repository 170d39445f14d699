package adam

import "time"

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

// Query sends command to the module and returns the reply payload.
func (m *Module) Query(command string) (string, error) {
	return m.client.query(m.addr, command, m.timeout)
}

// Write sends data to the module and checks the acknowledgement.
func (m *Module) Write(data string) error {
	return m.client.write(m.addr, data, m.timeout)
}
