package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/arloliu/go-rs485/line"
	"github.com/arloliu/go-rs485/logger"
)

// ClosableLine is a line that owns its backend.
type ClosableLine interface {
	line.Line
	Close() error
}

// OpenLine opens the serial port or TCP connection described by bus. With
// Debug set the line is wrapped in a traffic-logging decorator.
func OpenLine(ctx context.Context, bus *BusConfig, l logger.Logger) (ClosableLine, error) {
	if l == nil {
		l = logger.GetLogger()
	}

	opts := []line.Option{
		line.WithName(bus.Name),
		line.WithLogger(l),
	}
	if bus.ReadChunkSize > 0 {
		opts = append(opts, line.WithReadChunkSize(bus.ReadChunkSize))
	}
	if bus.WriteTimeoutMS > 0 {
		opts = append(opts, line.WithWriteTimeout(time.Duration(bus.WriteTimeoutMS)*time.Millisecond))
	}

	var (
		buffered *line.Buffered
		err      error
	)
	switch bus.Kind {
	case KindSerial:
		mode, merr := bus.serialMode()
		if merr != nil {
			return nil, merr
		}
		buffered, err = line.OpenSerial(bus.Path, mode, opts...)
	case KindTCP:
		buffered, err = line.DialSocket(ctx, bus.Address, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalid, bus.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("config: open bus %q: %w", bus.Name, err)
	}

	if bus.Debug {
		return line.NewDebugLine(buffered, bus.Prefix, l), nil
	}

	return buffered, nil
}

func (b *BusConfig) serialMode() (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: b.BaudRate,
		DataBits: b.DataBits,
	}

	switch strings.ToLower(b.Parity) {
	case "none", "n":
		mode.Parity = serial.NoParity
	case "odd", "o":
		mode.Parity = serial.OddParity
	case "even", "e":
		mode.Parity = serial.EvenParity
	case "mark", "m":
		mode.Parity = serial.MarkParity
	case "space", "s":
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("unknown parity %q", b.Parity)
	}

	switch b.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", b.StopBits)
	}

	if b.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", b.BaudRate)
	}
	if b.DataBits < 5 || b.DataBits > 8 {
		return nil, fmt.Errorf("invalid data bits %d", b.DataBits)
	}

	return mode, nil
}

// NewLogger builds the logger selected by the log section, writing to stderr.
func NewLogger(cfg LogConfig) (logger.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendSlog, "":
		return logger.NewSlogWriter(os.Stderr, level, cfg.Source), nil
	case BackendZerolog:
		return logger.NewZerolog(os.Stderr, level), nil
	default:
		return nil, fmt.Errorf("%w: unknown log backend %q", ErrInvalid, cfg.Backend)
	}
}

func (c LogConfig) level() (logger.Level, error) {
	name := c.Level
	if name == "" {
		name = DefaultLogLevel
	}

	level, ok := logger.ParseLevel(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Level)
	}

	return level, nil
}
