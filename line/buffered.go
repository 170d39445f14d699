package line

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-rs485/deadline"
	"github.com/arloliu/go-rs485/logger"
)

// Buffered is a Line over a raw Source. It is created once per physical
// connection and lives as long as the connection.
type Buffered struct {
	guard   sync.Mutex
	writeMu sync.Mutex

	src    Source
	cfg    *lineConfig
	logger logger.Logger

	// buf holds received bytes not yet returned as a frame. Only touched
	// while guard is held.
	buf []byte

	closed  atomic.Bool
	metrics *Metrics
}

var _ Line = (*Buffered)(nil)

// NewBuffered creates a line over an arbitrary Source.
func NewBuffered(src Source, opts ...Option) (*Buffered, error) {
	cfg, err := newLineConfig(opts)
	if err != nil {
		return nil, err
	}

	return newBuffered(src, cfg), nil
}

func newBuffered(src Source, cfg *lineConfig) *Buffered {
	return &Buffered{
		src:     src,
		cfg:     cfg,
		logger:  cfg.logger,
		metrics: newMetrics(),
	}
}

// Lock acquires the bus guard.
func (b *Buffered) Lock() { b.guard.Lock() }

// Unlock releases the bus guard.
func (b *Buffered) Unlock() { b.guard.Unlock() }

// Metrics returns the line counters.
func (b *Buffered) Metrics() *Metrics { return b.metrics }

// Write transmits data. Concurrent writes never interleave, but a request and
// its reply are only kept together by holding the guard.
func (b *Buffered) Write(data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if len(data) == 0 {
		return ErrEmptyWrite
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.src.Send(data); err != nil {
		return fmt.Errorf("line: send: %w", err)
	}
	b.metrics.BytesSent.Add(int64(len(data)))

	return nil
}

// ReadFrame implements Line.
//
// A frame already sitting in the buffer is returned without touching the
// device. Otherwise the source is polled, each poll bounded by the time left
// until the deadline, until a delimiter shows up. Empty frames are dropped.
//
// On timeout a *TimeoutError carrying the buffered bytes is returned and the
// bytes stay buffered. Any other source error is returned as is.
func (b *Buffered) ReadFrame(timeout time.Duration, delim byte) ([]byte, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	var recvErr error
	frame, ok := deadline.Retry(timeout, func(remaining time.Duration) ([]byte, bool) {
		if frame, found := b.extract(delim); found {
			return frame, true
		}

		data, err := b.src.Receive(remaining)
		if err != nil {
			recvErr = err
			return nil, true
		}
		if len(data) > 0 {
			b.buf = append(b.buf, data...)
			b.metrics.BytesReceived.Add(int64(len(data)))
		}

		return b.extract(delim)
	})

	if recvErr != nil {
		b.logger.Error("line: receive failed", "error", recvErr)
		return nil, fmt.Errorf("line: receive: %w", recvErr)
	}

	if !ok {
		b.metrics.ReadTimeouts.Inc()
		b.logger.Debug("line: read timeout",
			"timeout", timeout,
			"delimiter", delim,
			"buffered", fmt.Sprintf("% X", b.buf),
		)

		return nil, &TimeoutError{
			Timeout:   timeout,
			Delimiter: delim,
			Buffered:  bytes.Clone(b.buf),
		}
	}

	b.metrics.FramesReceived.Inc()

	return frame, nil
}

// Pending returns a copy of the bytes received but not yet returned as a
// frame. The guard must be held.
func (b *Buffered) Pending() []byte {
	return bytes.Clone(b.buf)
}

// Close closes the underlying source. Further reads and writes fail with
// ErrClosed.
func (b *Buffered) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.logger.Info("line: closing")

	return b.src.Close()
}

// extract removes the first non-empty delimited frame from the buffer.
func (b *Buffered) extract(delim byte) ([]byte, bool) {
	for {
		idx := bytes.IndexByte(b.buf, delim)
		if idx < 0 {
			return nil, false
		}

		frame := bytes.Clone(b.buf[:idx])
		n := copy(b.buf, b.buf[idx+1:])
		b.buf = b.buf[:n]

		if len(frame) == 0 {
			b.metrics.EmptyFrames.Inc()
			continue
		}

		return frame, true
	}
}
