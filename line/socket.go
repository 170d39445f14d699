package line

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// minSocketPoll bounds the read of an already expired deadline. A deadline in
// the past fails before any read is attempted, so buffered data would be missed.
const minSocketPoll = time.Millisecond

type socketSource struct {
	conn         net.Conn
	chunk        []byte
	writeTimeout time.Duration
}

// NewSocketLine creates a line over a connection to a TCP to serial gateway.
func NewSocketLine(conn net.Conn, opts ...Option) (*Buffered, error) {
	cfg, err := newLineConfig(opts)
	if err != nil {
		return nil, err
	}

	src := &socketSource{
		conn:         conn,
		chunk:        make([]byte, cfg.chunkSize),
		writeTimeout: cfg.writeTimeout,
	}

	return newBuffered(src, cfg), nil
}

// DialSocket connects to a TCP to serial gateway at addr and wraps the
// connection in a line.
func DialSocket(ctx context.Context, addr string, opts ...Option) (*Buffered, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("line: dial %s: %w", addr, err)
	}

	l, err := NewSocketLine(conn, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	l.logger.Info("line: gateway connected", "addr", addr)

	return l, nil
}

func (s *socketSource) Send(data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	defer func() { _ = s.conn.SetWriteDeadline(time.Time{}) }()

	for written := 0; written < len(data); {
		n, err := s.conn.Write(data[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

// Receive attempts a bulk read bounded by remaining. If it yields nothing,
// a single byte read follows. Timeouts and EAGAIN mean no data yet.
func (s *socketSource) Receive(remaining time.Duration) ([]byte, error) {
	if remaining < minSocketPoll {
		remaining = minSocketPoll
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(remaining)); err != nil {
		return nil, err
	}

	n, err := s.conn.Read(s.chunk)
	if n > 0 {
		return cloneBytes(s.chunk[:n]), nil
	}
	if err != nil {
		if isTransient(err) {
			return nil, nil
		}
		return nil, err
	}

	n, err = s.conn.Read(s.chunk[:1])
	if n > 0 {
		return cloneBytes(s.chunk[:n]), nil
	}
	if err != nil && !isTransient(err) {
		return nil, err
	}

	return nil, nil
}

func (s *socketSource) Close() error {
	return s.conn.Close()
}

func isTransient(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, syscall.EAGAIN) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
