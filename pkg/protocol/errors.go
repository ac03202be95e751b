package protocol

import (
	"errors"
	"fmt"
)

// ErrMaxRetries is returned by a transport when the retry budget is
// exhausted without receiving a valid response.
var ErrMaxRetries = errors.New("no valid response received within retry budget")

// FrameErrorKind classifies why a received frame was not accepted.
type FrameErrorKind int

const (
	// FrameTooShort means the frame is shorter than the dialect's minimum.
	FrameTooShort FrameErrorKind = iota
	// FrameHeaderMismatch means the magic bytes or response type differ.
	FrameHeaderMismatch
	// FrameChecksumMismatch means the checksum or CRC did not verify.
	FrameChecksumMismatch
	// FrameUnexpected means command code or payload length differ from
	// what the request implies.
	FrameUnexpected
	// FrameIncomplete means the frame is a valid prefix of a longer one;
	// the transport should keep reading and revalidate.
	FrameIncomplete
)

func (k FrameErrorKind) String() string {
	switch k {
	case FrameTooShort:
		return "too short"
	case FrameHeaderMismatch:
		return "header mismatch"
	case FrameChecksumMismatch:
		return "checksum mismatch"
	case FrameUnexpected:
		return "unexpected reply"
	case FrameIncomplete:
		return "incomplete"
	default:
		return "invalid"
	}
}

// FrameError reports a frame that failed validation. During family
// detection it simply means "not this dialect"; during normal operation
// it is a hard error.
type FrameError struct {
	Kind   FrameErrorKind
	Detail string
}

func (e *FrameError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid frame: %s", e.Kind)
	}
	return fmt.Sprintf("invalid frame: %s: %s", e.Kind, e.Detail)
}

func frameErrorf(kind FrameErrorKind, format string, args ...interface{}) *FrameError {
	return &FrameError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsFrameIncomplete answers whether err indicates a fragmented frame
// that may still complete with more bytes.
func IsFrameIncomplete(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe) && fe.Kind == FrameIncomplete
}

// failureCodes is the standard Modbus exception code table.
var failureCodes = map[byte]string{
	1:  "illegal function",
	2:  "illegal data address",
	3:  "illegal data value",
	4:  "slave device failure",
	5:  "acknowledge",
	6:  "slave device busy",
	7:  "negative acknowledgement",
	8:  "memory parity error",
	10: "gateway path unavailable",
	11: "gateway target device failed to respond",
}

// RejectedError reports a structurally valid response carrying a
// protocol exception, i.e. the device understood and refused the request.
type RejectedError struct {
	Code byte
}

func (e *RejectedError) Error() string {
	if reason, ok := failureCodes[e.Code]; ok {
		return fmt.Sprintf("request rejected: %s", reason)
	}
	return fmt.Sprintf("request rejected: unknown code %d", e.Code)
}

// IsIllegalDataAddress answers whether err is a rejection for an
// unsupported register address, used to prune unsupported settings.
func IsIllegalDataAddress(err error) bool {
	var re *RejectedError
	return errors.As(err, &re) && re.Code == 2
}
