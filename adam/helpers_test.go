package adam

import (
	"bufio"
	"bytes"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/go-rs485/line"
	"github.com/stretchr/testify/require"
)

// fakeLine answers each written request through respond. Its guard records
// whether it was ever held twice.
type fakeLine struct {
	respond func(request []byte) ([]byte, error)

	guard      sync.Mutex
	held       atomic.Int32
	overlapped atomic.Bool
	locks      atomic.Int32

	mu       sync.Mutex
	requests [][]byte
	pending  [][]byte
	timeouts []time.Duration
}

func newFakeLine(respond func(request []byte) ([]byte, error)) *fakeLine {
	return &fakeLine{respond: respond}
}

// replyWith answers every request with the same reply.
func replyWith(reply string) *fakeLine {
	return newFakeLine(func([]byte) ([]byte, error) { return []byte(reply), nil })
}

func (f *fakeLine) Lock() {
	f.guard.Lock()
	if f.held.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	f.locks.Add(1)
}

func (f *fakeLine) Unlock() {
	f.held.Add(-1)
	f.guard.Unlock()
}

func (f *fakeLine) Write(data []byte) error {
	if f.held.Load() == 0 {
		f.overlapped.Store(true)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, bytes.Clone(data))

	return nil
}

func (f *fakeLine) ReadFrame(timeout time.Duration, delim byte) ([]byte, error) {
	f.mu.Lock()
	f.timeouts = append(f.timeouts, timeout)
	request := f.requests[len(f.requests)-1]
	f.mu.Unlock()

	if delim != Delimiter {
		return nil, &line.TimeoutError{Timeout: timeout, Delimiter: delim}
	}

	return f.respond(bytes.TrimSuffix(request, []byte{Delimiter}))
}

func (f *fakeLine) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = string(r)
	}

	return out
}

func newTestClient(t *testing.T, l line.Line, opts ...ClientOption) *Client {
	t.Helper()

	c, err := NewClient(l, opts...)
	require.NoError(t, err)

	return c
}

// serveModules runs a fake bus on the far end of a pipe. Each request frame
// is passed to handle and a non-empty result is written back with a CR.
func serveModules(t *testing.T, conn net.Conn, handle func(request string) string) {
	t.Helper()

	go func() {
		r := bufio.NewReader(conn)
		for {
			request, err := r.ReadString(Delimiter)
			if err != nil {
				return
			}
			reply := handle(request[:len(request)-1])
			if reply == "" {
				continue
			}
			if _, err := conn.Write([]byte(reply + "\r")); err != nil {
				return
			}
		}
	}()
}
