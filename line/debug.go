package line

import (
	"fmt"
	"io"
	"time"

	"github.com/arloliu/go-rs485/logger"
)

// DebugLine logs the raw traffic of another line at debug level.
//
// It forwards every call unchanged, including Lock and Unlock, and keeps no
// buffer or lock of its own, so it can be stacked freely.
type DebugLine struct {
	inner  Line
	logger logger.Logger
}

var _ Line = (*DebugLine)(nil)

// NewDebugLine wraps inner. prefix labels the log records; a nil logger means
// the package default.
func NewDebugLine(inner Line, prefix string, l logger.Logger) *DebugLine {
	if l == nil {
		l = logger.GetLogger()
	}
	if prefix != "" {
		l = l.With("prefix", prefix)
	}

	return &DebugLine{inner: inner, logger: l}
}

func (d *DebugLine) Lock() { d.inner.Lock() }

func (d *DebugLine) Unlock() { d.inner.Unlock() }

func (d *DebugLine) Write(data []byte) error {
	d.logger.Debug("sending", "data", hexString(data))

	return d.inner.Write(data)
}

func (d *DebugLine) ReadFrame(timeout time.Duration, delim byte) ([]byte, error) {
	frame, err := d.inner.ReadFrame(timeout, delim)
	if err != nil {
		d.logger.Debug("read frame failed", "timeout", timeout, "error", err)
		return nil, err
	}
	d.logger.Debug("read frame", "data", hexString(frame))

	return frame, nil
}

// Unwrap returns the decorated line.
func (d *DebugLine) Unwrap() Line { return d.inner }

// Close closes the decorated line if it can be closed.
func (d *DebugLine) Close() error {
	if c, ok := d.inner.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

func hexString(b []byte) string {
	return fmt.Sprintf("%X", b)
}
