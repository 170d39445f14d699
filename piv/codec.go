package piv

import "bytes"

// Framing bytes.
const (
	Start byte = 0xAA
	Stop  byte = 0xAB
	Shift byte = 0xAC
)

// Reserved lists the bytes that must be escaped inside a packet body.
var Reserved = [3]byte{Start, Stop, Shift}

// minBody is the smallest unescaped body: address plus checksum.
const minBody = 2

func isReserved(b byte) bool {
	for _, r := range Reserved {
		if b == r {
			return true
		}
	}

	return false
}

// Checksum returns the XOR of all bytes of data.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}

	return sum
}

// Encode builds the wire packet carrying payload for the module at addr,
// including the Start and Stop bytes.
func Encode(addr byte, payload []byte) []byte {
	// worst case every body byte is escaped
	packet := make([]byte, 0, 2*(len(payload)+2)+2)
	packet = append(packet, Start)
	packet = appendStuffed(packet, addr)
	for _, b := range payload {
		packet = appendStuffed(packet, b)
	}
	packet = appendStuffed(packet, addr^Checksum(payload))

	return append(packet, Stop)
}

func appendStuffed(dst []byte, b byte) []byte {
	if isReserved(b) {
		return append(dst, Shift, b-Start)
	}

	return append(dst, b)
}

// Decode validates a frame read up to, but not including, the Stop byte and
// returns its payload. One leading Start byte is dropped if present. The
// unescaped body must carry a correct checksum and the expected address.
func Decode(frame []byte, expected byte) ([]byte, error) {
	raw := frame
	if len(raw) > 0 && raw[0] == Start {
		raw = raw[1:]
	}

	body, err := unstuff(raw)
	if err != nil {
		return nil, err
	}

	if len(body) < minBody {
		return nil, packetError(ErrPacketTooShort, "packet is too short", frame)
	}

	sum := body[len(body)-1]
	body = body[:len(body)-1]
	if Checksum(body) != sum {
		return nil, packetError(ErrChecksumMismatch, "bad checksum", frame)
	}

	if body[0] != expected {
		return nil, packetError(ErrAddressMismatch, "invalid address", frame)
	}

	return bytes.Clone(body[1:]), nil
}

func unstuff(raw []byte) ([]byte, error) {
	body := make([]byte, 0, len(raw))
	shifted := false

	for _, b := range raw {
		if b == Shift {
			if shifted {
				return nil, packetError(ErrInvalidShift, "double shift", raw)
			}
			shifted = true

			continue
		}

		if shifted {
			if isReserved(b) || int(b)+int(Start) > 0xFF {
				return nil, packetError(ErrInvalidShift, "shifted byte out of range", raw)
			}
			b += Start
			shifted = false
		}
		body = append(body, b)
	}

	if shifted {
		return nil, packetError(ErrInvalidShift, "shift at end of packet", raw)
	}

	return body, nil
}
