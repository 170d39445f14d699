package piv

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrPacketTooShort indicates fewer than two bytes after unescaping.
	ErrPacketTooShort = errors.New("piv: packet too short")

	// ErrInvalidShift indicates a malformed escape sequence.
	ErrInvalidShift = errors.New("piv: invalid shift")

	// ErrChecksumMismatch indicates the checksum byte does not match the body.
	ErrChecksumMismatch = errors.New("piv: checksum mismatch")

	// ErrAddressMismatch indicates a reply from a different module address.
	ErrAddressMismatch = errors.New("piv: address mismatch")
)

// PacketError describes a rejected packet with the offending bytes attached.
type PacketError struct {
	// Kind is one of the package's sentinel errors.
	Kind error
	// Reason explains what was wrong.
	Reason string
	// Bytes holds the raw frame the error refers to.
	Bytes []byte
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("%v: %s: [% X]", e.Kind, e.Reason, e.Bytes)
}

func (e *PacketError) Unwrap() error { return e.Kind }

func packetError(kind error, reason string, raw []byte) *PacketError {
	return &PacketError{Kind: kind, Reason: reason, Bytes: bytes.Clone(raw)}
}
