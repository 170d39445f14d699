package line

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Metrics contains counters for one line.
// Counter values can be used as the value of a prometheus CounterFunc.
type Metrics struct {
	// BytesSent counts bytes handed to the device.
	BytesSent *xsync.Counter
	// BytesReceived counts bytes read from the device.
	BytesReceived *xsync.Counter
	// FramesReceived counts frames returned by ReadFrame.
	FramesReceived *xsync.Counter
	// EmptyFrames counts adjacent delimiters that were discarded.
	EmptyFrames *xsync.Counter
	// ReadTimeouts counts ReadFrame calls that ended without a frame.
	ReadTimeouts *xsync.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		BytesSent:      xsync.NewCounter(),
		BytesReceived:  xsync.NewCounter(),
		FramesReceived: xsync.NewCounter(),
		EmptyFrames:    xsync.NewCounter(),
		ReadTimeouts:   xsync.NewCounter(),
	}
}
