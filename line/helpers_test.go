package line

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"
)

// fakePort emulates a go.bug.st/serial port: a zero read timeout polls, a
// positive one waits for data, and an expired wait returns (0, nil).
type fakePort struct {
	feed chan []byte

	mu       sync.Mutex
	pending  []byte
	timeout  time.Duration
	written  bytes.Buffer
	readLens []int
	timeouts []time.Duration
	closed   bool
}

func newFakePort() *fakePort {
	return &fakePort{feed: make(chan []byte, 64)}
}

// push queues data to arrive as one chunk per byte.
func (p *fakePort) pushBytes(data string) {
	for i := 0; i < len(data); i++ {
		p.feed <- []byte{data[i]}
	}
}

func (p *fakePort) push(data string) {
	p.feed <- []byte(data)
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.timeout = t
	p.timeouts = append(p.timeouts, t)

	return nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	p.readLens = append(p.readLens, len(b))
	timeout := p.timeout
	empty := len(p.pending) == 0
	p.mu.Unlock()

	if empty {
		var chunk []byte
		if timeout == 0 {
			select {
			case chunk = <-p.feed:
			default:
				return 0, nil
			}
		} else {
			select {
			case chunk = <-p.feed:
			case <-time.After(timeout):
				return 0, nil
			}
		}
		p.mu.Lock()
		p.pending = append(p.pending, chunk...)
		p.mu.Unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	n := copy(b, p.pending)
	p.pending = p.pending[n:]

	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	return nil
}

func (p *fakePort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.written.String()
}

// scriptSource replays canned Receive results in order and then reports no data.
type scriptSource struct {
	steps []scriptStep
	calls int
	sent  [][]byte
}

type scriptStep struct {
	data []byte
	err  error
}

func (s *scriptSource) Send(data []byte) error {
	s.sent = append(s.sent, append([]byte(nil), data...))
	return nil
}

func (s *scriptSource) Receive(remaining time.Duration) ([]byte, error) {
	s.calls++
	if len(s.steps) == 0 {
		time.Sleep(min(remaining, 5*time.Millisecond))
		return nil, nil
	}
	step := s.steps[0]
	s.steps = s.steps[1:]

	return step.data, step.err
}

func (s *scriptSource) Close() error { return nil }

// newPipeConn creates a net.Pipe pair and registers cleanup.
func newPipeConn(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	return local, remote
}

// mustWrite writes data to w, failing the test on error.
func mustWrite(t *testing.T, w net.Conn, data []byte) {
	t.Helper()

	if _, err := w.Write(data); err != nil {
		t.Errorf("mustWrite: %v", err)
	}
}
