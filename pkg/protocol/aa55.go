package protocol

import (
	"bytes"

	"github.com/marcelblijleven/goodwe/pkg/utils/binutil"
)

// The AA55 dialect is spoken by the ES/EM/BP families and by older
// generations in general. It is most probably the RS-485 serial framing
// carried verbatim over UDP.
//
// Request:  AA 55 C0 7F | payload | checksum(2, additive)
// Response: AA 55 7F C0 | type(2) | length(1) | data | checksum(2)
//
// The checksum covers every byte that precedes it.

var (
	aa55RequestHeader  = []byte{0xAA, 0x55, 0xC0, 0x7F}
	aa55ResponseHeader = []byte{0xAA, 0x55, 0x7F, 0xC0}
)

// EncodeAA55Request frames payload as an AA55 request.
func EncodeAA55Request(payload []byte) []byte {
	frame := make([]byte, 0, len(aa55RequestHeader)+len(payload)+2)
	frame = append(frame, aa55RequestHeader...)
	frame = append(frame, payload...)
	return binutil.AppendUint16(frame, Checksum16(frame))
}

// DecodeAA55Response validates an AA55 response frame and answers its
// response type and payload data.
func DecodeAA55Response(frame []byte) (responseType uint16, payload []byte, err error) {
	if len(frame) < 9 {
		if bytes.HasPrefix(aa55ResponseHeader, frame) || bytes.HasPrefix(frame, aa55ResponseHeader) {
			return 0, nil, frameErrorf(FrameIncomplete, "%d of at least 9 bytes", len(frame))
		}
		return 0, nil, frameErrorf(FrameTooShort, "%d bytes", len(frame))
	}
	if !bytes.Equal(frame[0:4], aa55ResponseHeader) {
		return 0, nil, frameErrorf(FrameHeaderMismatch, "%x", frame[0:4])
	}
	expected := int(frame[6]) + 9
	if len(frame) < expected {
		return 0, nil, frameErrorf(FrameIncomplete, "%d of %d bytes", len(frame), expected)
	}
	if len(frame) > expected {
		return 0, nil, frameErrorf(FrameUnexpected, "length %d, expected %d", len(frame), expected)
	}
	if sum := Checksum16(frame[:expected-2]); sum != binutil.ParseUint16(frame[expected-2:]) {
		return 0, nil, frameErrorf(FrameChecksumMismatch, "computed %04x, frame carries %04x", sum, binutil.ParseUint16(frame[expected-2:]))
	}
	return binutil.ParseUint16(frame[4:6]), frame[7 : expected-2], nil
}

// NewAA55Command builds an AA55 command from the request payload and
// the response type expected in the reply.
func NewAA55Command(payload []byte, responseType uint16) *Command {
	return &Command{
		Request: EncodeAA55Request(payload),
		Validate: func(frame []byte) error {
			rt, _, err := DecodeAA55Response(frame)
			if err != nil {
				return err
			}
			if rt != responseType {
				return frameErrorf(FrameUnexpected, "response type %04x, expected %04x", rt, responseType)
			}
			return nil
		},
		Trim: func(frame []byte) []byte {
			return frame[7 : len(frame)-2]
		},
	}
}

// NewAA55ReadCommand reads count registers starting at offset.
func NewAA55ReadCommand(offset int, count int) *Command {
	payload := []byte{0x01, 0x1A, 0x03}
	payload = binutil.AppendUint16(payload, uint16(offset))
	payload = append(payload, byte(count))
	return NewAA55Command(payload, 0x019A)
}

// NewAA55WriteCommand sets a single register to value.
func NewAA55WriteCommand(register int, value int) *Command {
	payload := []byte{0x02, 0x39, 0x05}
	payload = binutil.AppendUint16(payload, uint16(register))
	payload = append(payload, 0x01)
	payload = binutil.AppendUint16(payload, uint16(value))
	return NewAA55Command(payload, 0x02B9)
}

// NewAA55WriteMultiCommand sets len(values)/2 registers starting at offset.
func NewAA55WriteMultiCommand(offset int, values []byte) *Command {
	payload := []byte{0x02, 0x39, 0x0B}
	payload = binutil.AppendUint16(payload, uint16(offset))
	payload = append(payload, byte(len(values)))
	payload = append(payload, values...)
	return NewAA55Command(payload, 0x02B9)
}
