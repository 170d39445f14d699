package piv

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	assert.Equal(t, byte(0), Checksum(nil))
	assert.Equal(t, byte(0x05), Checksum([]byte{0x05}))
	assert.Equal(t, byte(0x05^0x01^0xFF), Checksum([]byte{0x05, 0x01, 0xFF}))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		addr    byte
		payload []byte
		want    []byte
	}{
		{
			name:    "plain",
			addr:    0x05,
			payload: []byte{0x01},
			want:    []byte{Start, 0x05, 0x01, 0x04, Stop},
		},
		{
			name: "empty payload",
			addr: 0x07,
			want: []byte{Start, 0x07, 0x07, Stop},
		},
		{
			name:    "reserved payload bytes",
			addr:    0x01,
			payload: []byte{Start, Stop, Shift},
			want:    []byte{Start, 0x01, Shift, 0x00, Shift, 0x01, Shift, 0x02, Shift, 0x02, Stop},
		},
		{
			name:    "reserved address",
			addr:    Stop,
			payload: []byte{0x10},
			want:    []byte{Start, Shift, 0x01, 0x10, Stop ^ 0x10, Stop},
		},
		{
			name:    "reserved checksum",
			addr:    0x01,
			payload: []byte{0x01 ^ Shift},
			want:    []byte{Start, 0x01, 0x01 ^ Shift, Shift, 0x02, Stop},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.addr, tt.payload))
		})
	}
}

func TestEncode_BodyIsSelfChecking(t *testing.T) {
	packet := Encode(0x33, []byte{0xAA, 0x00, 0x7F, 0xFE})

	body, err := unstuff(packet[1 : len(packet)-1])
	require.NoError(t, err)
	assert.Equal(t, byte(0), Checksum(body))
}

func TestEncode_NoReservedBytesInsideBody(t *testing.T) {
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}

	packet := Encode(Start, payload)
	assert.Equal(t, Start, packet[0])
	assert.Equal(t, Stop, packet[len(packet)-1])

	for _, b := range packet[1 : len(packet)-1] {
		assert.NotEqual(t, Start, b)
		assert.NotEqual(t, Stop, b)
	}
}

// roundTripPayloads places every reserved byte alone, first, last, in the
// middle and repeated, plus all of them together.
func roundTripPayloads() [][]byte {
	payloads := [][]byte{
		nil,
		{0x01},
		Reserved[:],
		{0x03, 0x00, 0x00, 0x01, 0x2C},
	}

	var mixed []byte
	for _, r := range Reserved {
		payloads = append(payloads,
			[]byte{r},
			[]byte{r, 0x01},
			[]byte{0x01, r},
			[]byte{0x01, r, 0x02},
			[]byte{r, r, r},
		)
		mixed = append(mixed, 0xFF, r)
	}

	return append(payloads, mixed)
}

func TestRoundTrip(t *testing.T) {
	addrs := append([]byte{0x00, 0x01, 0xFF}, Reserved[:]...)

	for _, addr := range addrs {
		for _, payload := range roundTripPayloads() {
			packet := Encode(addr, payload)
			frame := packet[:len(packet)-1]

			got, err := Decode(frame, addr)
			require.NoError(t, err, "addr %#x payload % X", addr, payload)
			if len(payload) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, payload, got)
			}

			body, err := unstuff(frame[1:])
			require.NoError(t, err)
			assert.Equal(t, byte(0), Checksum(body), "addr %#x payload % X", addr, payload)
		}
	}
}

func TestEncode_EscapesEveryReservedByte(t *testing.T) {
	for _, r := range Reserved {
		assert.True(t, isReserved(r))
		packet := Encode(0x01, []byte{r})
		assert.Equal(t, []byte{Start, 0x01, Shift, r - Start}, packet[:4], "byte %#x", r)
	}

	for b := 0; b <= 0xFF; b++ {
		if !isReserved(byte(b)) {
			assert.NotContains(t, Reserved[:], byte(b))
		}
	}
}

func TestDecode_ShiftBeforeReservedByte(t *testing.T) {
	for _, r := range Reserved {
		frame := []byte{Start, 0x01, Shift, r, 0x00}

		_, err := Decode(frame, 0x01)
		require.ErrorIs(t, err, ErrInvalidShift, "byte %#x", r)
	}
}

func TestDecode_WithoutStart(t *testing.T) {
	got, err := Decode([]byte{0x05, 0x01, 0x04}, 0x05)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)
}

func TestDecode_NonCanonicalShift(t *testing.T) {
	// Shift followed by 0x10 is accepted as 0xBA even though 0xBA needs no escape.
	frame := []byte{Start, 0x01, Shift, 0x10, 0x01 ^ 0xBA}

	got, err := Decode(frame, 0x01)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBA}, got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		frame  []byte
		kind   error
		reason string
	}{
		{name: "empty", frame: nil, kind: ErrPacketTooShort},
		{name: "start only", frame: []byte{Start}, kind: ErrPacketTooShort},
		{name: "address only", frame: []byte{Start, 0x05}, kind: ErrPacketTooShort},
		{name: "escaped address only", frame: []byte{Start, Shift, 0x01}, kind: ErrPacketTooShort},
		{name: "double shift", frame: []byte{Start, 0x01, Shift, Shift, 0x00}, kind: ErrInvalidShift, reason: "double shift"},
		{name: "shift then reserved", frame: []byte{Start, 0x01, Shift, Stop, 0x00}, kind: ErrInvalidShift},
		{name: "shift out of range", frame: []byte{Start, 0x01, Shift, 0x56, 0x00}, kind: ErrInvalidShift},
		{name: "trailing shift", frame: []byte{Start, 0x01, 0x01, Shift}, kind: ErrInvalidShift, reason: "end of packet"},
		{name: "bad checksum", frame: []byte{Start, 0x05, 0x01, 0x05}, kind: ErrChecksumMismatch},
		{name: "stray leading byte", frame: []byte{0x00, Start, 0x05, 0x01, 0x04}, kind: ErrChecksumMismatch},
		{name: "other address", frame: []byte{Start, 0x06, 0x01, 0x07}, kind: ErrAddressMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Decode(tt.frame, 0x05)
			assert.Nil(t, payload)
			require.ErrorIs(t, err, tt.kind)

			var pktErr *PacketError
			require.ErrorAs(t, err, &pktErr)
			if tt.reason != "" {
				assert.Contains(t, pktErr.Reason, tt.reason)
			}
		})
	}
}

func TestDecode_ErrorCarriesFrame(t *testing.T) {
	frame := []byte{Start, 0x06, 0x01, 0x07}

	_, err := Decode(frame, 0x05)

	var pktErr *PacketError
	require.ErrorAs(t, err, &pktErr)
	assert.Equal(t, frame, pktErr.Bytes)
	assert.Contains(t, err.Error(), "AA 06 01 07")

	frame[1] = 0x00
	assert.False(t, bytes.Equal(frame, pktErr.Bytes), "error must keep its own copy")
}
