package transport

import (
	"context"
	"time"

	"github.com/marcelblijleven/goodwe/pkg/protocol"
)

const (
	DefaultTimeout = 1 * time.Second
	DefaultRetries = 3

	// Probes are exploratory, a dialect the device does not speak
	// never answers and should not burn the full retry budget.
	probeRetries = 1

	// Large enough for the longest runtime data frame any known
	// family produces.
	maxFrameSize = 1024
)

// Transport sends protocol commands to an inverter and returns the raw
// validated response frame. Implementations serialize access, the
// devices answer exactly one request at a time.
type Transport interface {
	Exchange(ctx context.Context, cmd *protocol.Command) ([]byte, error)
	Close() error
}

// Prober is the optional probing side of a transport. Probe sends the
// command with a single attempt, family detection uses it to cycle
// through the dialects quickly.
type Prober interface {
	Probe(ctx context.Context, cmd *protocol.Command) ([]byte, error)
}

// Options tune the request/response cycle shared by both transports.
type Options struct {
	// Timeout is the time to wait for a response to a single request
	// before it is sent again.
	Timeout time.Duration
	// Retries is the number of requests sent before giving up.
	Retries int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	return o
}

// Connect opens a transport matching the address kind.
func Connect(ctx context.Context, addr Address, opts Options) (Transport, error) {
	if addr.Kind == TCP {
		return ConnectTCP(ctx, addr, opts)
	}
	return ConnectUDP(ctx, addr, opts)
}

// deadline caps the per-attempt timeout by the context deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}
