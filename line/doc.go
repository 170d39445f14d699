// Package line turns a raw RS-485 byte stream into delimited frames.
//
// An RS-485 bus is half-duplex and carries no framing of its own: the
// operating system hands out whatever bytes have arrived, possibly half a
// reply or a reply and a half. A Line owns a receive buffer, extracts frames
// terminated by a caller chosen delimiter byte, and bounds every read by a
// deadline computed once per call.
//
// # Backends
//
// Two raw byte sources are provided:
//
//   - Serial lines (NewSerialLine, OpenSerial) talk to an RS-232/USB to RS-485
//     converter through go.bug.st/serial. Everything already received is
//     drained in one read; otherwise a single byte is awaited for at most the
//     remaining time.
//   - Socket lines (NewSocketLine, DialSocket) talk to a TCP to serial gateway.
//     A bulk read is attempted with a read deadline; timeouts are treated as
//     "no data yet" and left to the deadline loop.
//
// NewDebugLine decorates any Line and logs the raw traffic.
//
// # Mutual exclusion
//
// Replies carry no correlation identifier, so a request and its reply must
// not interleave with another exchange on the same bus. Every Line is also a
// sync.Locker: protocol clients hold the lock from writing a request until the
// matching reply frame has been read. The receive buffer is only safe to touch
// while the lock is held.
package line
