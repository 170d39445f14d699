// Package exchange keeps per-module request statistics for protocol clients.
package exchange

import (
	"errors"
	"slices"
	"sync/atomic"

	"github.com/arloliu/go-rs485/line"
	"github.com/puzpuzpuz/xsync/v3"
)

// Snapshot is a point-in-time copy of one module's counters.
type Snapshot struct {
	// Requests counts completed exchanges, successful or not.
	Requests uint64
	// Failures counts exchanges that returned an error, timeouts included.
	Failures uint64
	// Timeouts counts exchanges that ended without a reply frame.
	Timeouts uint64
}

type counters struct {
	requests atomic.Uint64
	failures atomic.Uint64
	timeouts atomic.Uint64
}

// Stats maps module addresses to their counters. It is safe for concurrent use.
type Stats struct {
	modules *xsync.MapOf[byte, *counters]
}

// NewStats creates an empty registry.
func NewStats() *Stats {
	return &Stats{modules: xsync.NewMapOf[byte, *counters]()}
}

// Record accounts one finished exchange with the module at addr.
func (s *Stats) Record(addr byte, err error) {
	c, _ := s.modules.LoadOrCompute(addr, func() *counters { return &counters{} })

	c.requests.Add(1)
	if err == nil {
		return
	}
	c.failures.Add(1)
	if errors.Is(err, line.ErrTimeout) {
		c.timeouts.Add(1)
	}
}

// Get returns the counters of the module at addr, and false if the module was
// never addressed.
func (s *Stats) Get(addr byte) (Snapshot, bool) {
	c, ok := s.modules.Load(addr)
	if !ok {
		return Snapshot{}, false
	}

	return Snapshot{
		Requests: c.requests.Load(),
		Failures: c.failures.Load(),
		Timeouts: c.timeouts.Load(),
	}, true
}

// Addresses returns every address seen so far in ascending order.
func (s *Stats) Addresses() []byte {
	addrs := make([]byte, 0, s.modules.Size())
	s.modules.Range(func(addr byte, _ *counters) bool {
		addrs = append(addrs, addr)
		return true
	})
	slices.Sort(addrs)

	return addrs
}
