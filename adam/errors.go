package adam

import (
	"errors"
	"fmt"
)

var (
	// ErrBadReply indicates a reply of the right kind with the wrong content:
	// too short, wrong leading byte, wrong address, or a mismatched echo.
	ErrBadReply = errors.New("adam: bad reply")

	// ErrDeviceRejected indicates the module answered "?" to a write request.
	ErrDeviceRejected = errors.New("adam: request rejected by module")

	// ErrUnknownReplyKind indicates a write reply starting with an
	// unrecognised byte.
	ErrUnknownReplyKind = errors.New("adam: unknown reply kind")
)

// ReplyError describes an unacceptable reply, with the raw exchange attached.
type ReplyError struct {
	// Kind is one of ErrBadReply, ErrDeviceRejected or ErrUnknownReplyKind.
	Kind error
	// Request is the request sent, without the trailing carriage return.
	Request []byte
	// Reply is the reply frame received, without the trailing carriage return.
	Reply []byte
	// Reason explains what was wrong.
	Reason string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%v: reply %q to request %q: %s", e.Kind, e.Reply, e.Request, e.Reason)
}

func (e *ReplyError) Unwrap() error { return e.Kind }
