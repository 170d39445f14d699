package line

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("line: read timeout")

	// ErrClosed is returned by operations on a closed line.
	ErrClosed = errors.New("line: closed")

	// ErrEmptyWrite is returned when Write is called without data.
	ErrEmptyWrite = errors.New("line: empty write")
)

// Line is a buffered, deadline bounded byte stream shared by all modules on
// one physical bus.
//
// Lock and Unlock form the bus guard. A protocol exchange must hold it from
// the request Write until the reply ReadFrame returns.
type Line interface {
	sync.Locker

	// Write transmits data as is; no framing is added.
	Write(data []byte) error

	// ReadFrame returns the bytes before the next delim byte, waiting at most
	// timeout for it to arrive. The delimiter is consumed and not returned.
	// Bytes after the delimiter stay buffered for the next call.
	ReadFrame(timeout time.Duration, delim byte) ([]byte, error)
}

// Source is a raw byte source and sink, such as a serial port or a socket.
type Source interface {
	// Send writes all of data.
	Send(data []byte) error

	// Receive waits at most remaining for new bytes and returns them. A nil
	// or empty result with a nil error means no data arrived yet.
	Receive(remaining time.Duration) ([]byte, error)

	// Close releases the underlying device.
	Close() error
}

// TimeoutError reports that no delimiter arrived before the deadline.
type TimeoutError struct {
	// Timeout is the budget the read was given.
	Timeout time.Duration
	// Delimiter is the byte that was awaited.
	Delimiter byte
	// Buffered holds the bytes received so far without a delimiter. They are
	// still in the line's buffer.
	Buffered []byte
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("line: no frame delimited by 0x%02X within %v, buffered: [% X]",
		e.Delimiter, e.Timeout, e.Buffered)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
