package protocol

import (
	"encoding/hex"
)

// Command is a single request/response exchange definition: the raw
// request frame plus the knowledge needed to recognise, validate and
// strip the matching reply. Commands are built fresh per call and hold
// no state beyond one exchange.
type Command struct {
	// Request is the complete encoded request frame.
	Request []byte
	// Validate checks a raw reply frame. A nil error means the frame is
	// a complete, checksum-verified answer to this command.
	Validate func(frame []byte) error
	// Trim strips header and trailer from a validated reply, leaving
	// the payload bytes.
	Trim func(frame []byte) []byte
	// baseAddress and wordSize map catalog addresses to offsets within
	// the trimmed payload (modbus registers are 2 bytes wide, AA55
	// payloads are byte addressed from zero).
	baseAddress int
	wordSize    int
}

// String renders the request frame as hex, the form devices and logs use.
func (c *Command) String() string {
	return hex.EncodeToString(c.Request)
}

// BaseAddress answers the catalog address of the first payload byte.
func (c *Command) BaseAddress() int {
	return c.baseAddress
}

// PayloadOffset maps a catalog address to a byte offset within the
// trimmed response payload.
func (c *Command) PayloadOffset(address int) int {
	if c.wordSize == 0 {
		return address
	}
	return (address - c.baseAddress) * c.wordSize
}

// RawCommand builds a command from preassembled request bytes that
// accepts any non-empty reply. It is the escape hatch used by the
// network scan and by diagnostics.
func RawCommand(request []byte) *Command {
	return &Command{
		Request: request,
		Validate: func(frame []byte) error {
			if len(frame) == 0 {
				return frameErrorf(FrameTooShort, "empty frame")
			}
			return nil
		},
		Trim: func(frame []byte) []byte { return frame },
	}
}
