package transport

import (
	"context"
	"encoding/hex"
	"net"
	"os"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/pkg/protocol"
)

// udpTransport talks to the WiFi dongle with raw datagrams. The dongle
// is lossy, it regularly swallows requests under load, so every
// exchange resends the request until a valid response arrives or the
// retry budget runs out. Responses longer than a single datagram are
// accumulated until the frame validates complete.
type udpTransport struct {
	addr Address
	opts Options

	mu   sync.Mutex
	conn *net.UDPConn
}

// ConnectUDP binds a datagram socket to the inverter address.
func ConnectUDP(ctx context.Context, addr Address, opts Options) (Transport, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr.hostPort())
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", addr)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", addr)
	}
	klog.V(2).InfoS("Connected inverter endpoint", "address", addr.String())
	return &udpTransport{addr: addr, opts: opts.withDefaults(), conn: conn}, nil
}

func (t *udpTransport) Exchange(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	return t.exchange(ctx, cmd, t.opts.Retries)
}

// Probe sends the command once, unanswered probes fail after a single
// timeout instead of the full retry budget.
func (t *udpTransport) Probe(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	return t.exchange(ctx, cmd, probeRetries)
}

func (t *udpTransport) exchange(ctx context.Context, cmd *protocol.Command, retries int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		klog.V(2).InfoS("Sending request", "address", t.addr.String(), "request", cmd.String(), "attempt", attempt)
		if _, err := t.conn.Write(cmd.Request); err != nil {
			return nil, errors.Wrapf(err, "send request to %s", t.addr)
		}
		frame, err := t.receive(ctx, cmd)
		if err == nil {
			return frame, nil
		}
		var rejected *protocol.RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		if !os.IsTimeout(err) {
			return nil, err
		}
		klog.V(2).InfoS("No valid response, resending", "address", t.addr.String(), "attempt", attempt)
	}
	return nil, errors.Wrapf(protocol.ErrMaxRetries, "%s after %d attempts", t.addr, retries)
}

// receive reads datagrams until a response validates, the attempt times
// out or the device rejects the request. Invalid frames are dropped and
// the read continues, stray datagrams from earlier retries show up here.
func (t *udpTransport) receive(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	if err := t.conn.SetReadDeadline(deadline(ctx, t.opts.Timeout)); err != nil {
		return nil, errors.Wrap(err, "set read deadline")
	}
	buf := make([]byte, maxFrameSize)
	var frame []byte
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			return nil, err
		}
		frame = append(frame, buf[:n]...)
		klog.V(2).InfoS("Received frame", "address", t.addr.String(), "frame", hex.EncodeToString(frame))

		err = cmd.Validate(frame)
		if err == nil {
			return frame, nil
		}
		var rejected *protocol.RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		if protocol.IsFrameIncomplete(err) {
			// More datagrams of the same response are on the way.
			continue
		}
		klog.V(2).InfoS("Dropping invalid frame", "address", t.addr.String(), "reason", err.Error())
		frame = frame[:0]
	}
}

func (t *udpTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Close()
}
