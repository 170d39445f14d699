package line

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// SerialPort is the part of serial.Port a serial line needs.
//
// Read must return (0, nil) when the read timeout expires without data, and a
// read timeout of zero must poll without blocking, as go.bug.st/serial does.
type SerialPort interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
}

type serialSource struct {
	port  SerialPort
	chunk []byte
}

// NewSerialLine creates a line over an open serial port.
func NewSerialLine(port SerialPort, opts ...Option) (*Buffered, error) {
	cfg, err := newLineConfig(opts)
	if err != nil {
		return nil, err
	}

	src := &serialSource{
		port:  port,
		chunk: make([]byte, cfg.chunkSize),
	}

	return newBuffered(src, cfg), nil
}

// OpenSerial opens the serial device at path with the given mode and wraps it
// in a line. A nil mode means 9600 8N1.
func OpenSerial(path string, mode *serial.Mode, opts ...Option) (*Buffered, error) {
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 9600,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("line: open %s: %w", path, err)
	}

	l, err := NewSerialLine(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	l.logger.Info("line: serial port opened", "path", path, "baudRate", mode.BaudRate)

	return l, nil
}

func (s *serialSource) Send(data []byte) error {
	for written := 0; written < len(data); {
		n, err := s.port.Write(data[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

// Receive drains everything the driver already holds. When nothing is
// pending it waits for a single byte for at most remaining.
func (s *serialSource) Receive(remaining time.Duration) ([]byte, error) {
	if err := s.port.SetReadTimeout(0); err != nil {
		return nil, err
	}

	n, err := s.port.Read(s.chunk)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return cloneBytes(s.chunk[:n]), nil
	}

	if remaining < 0 {
		remaining = 0
	}
	if err := s.port.SetReadTimeout(remaining); err != nil {
		return nil, err
	}

	n, err = s.port.Read(s.chunk[:1])
	if err != nil {
		return nil, err
	}

	return cloneBytes(s.chunk[:n]), nil
}

func (s *serialSource) Close() error {
	if c, ok := s.port.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)

	return out
}
