package transport

import (
	"context"
	"encoding/hex"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/pkg/protocol"
)

// tcpTransport talks Modbus TCP to a LAN dongle. The dongle keeps the
// connection open between requests but drops it silently after idle
// periods, a broken write or read triggers one reconnect before the
// attempt counts as failed.
type tcpTransport struct {
	addr Address
	opts Options

	mu   sync.Mutex
	conn net.Conn
}

// ConnectTCP establishes the stream connection to the inverter address.
func ConnectTCP(ctx context.Context, addr Address, opts Options) (Transport, error) {
	opts = opts.withDefaults()
	t := &tcpTransport{addr: addr, opts: opts}
	if err := t.dial(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tcpTransport) dial(ctx context.Context) error {
	dialer := net.Dialer{Timeout: t.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr.hostPort())
	if err != nil {
		return errors.Wrapf(err, "connect %s", t.addr)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(10 * time.Second)
	}
	klog.V(2).InfoS("Connected inverter endpoint", "address", t.addr.String())
	t.conn = conn
	return nil
}

func (t *tcpTransport) Exchange(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	return t.exchange(ctx, cmd, t.opts.Retries)
}

// Probe sends the command with a single attempt, see Prober.
func (t *tcpTransport) Probe(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	return t.exchange(ctx, cmd, probeRetries)
}

func (t *tcpTransport) exchange(ctx context.Context, cmd *protocol.Command, retries int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.conn == nil {
			if err := t.dial(ctx); err != nil {
				klog.ErrorS(err, "Reconnect failed", "address", t.addr.String(), "attempt", attempt)
				continue
			}
		}
		klog.V(2).InfoS("Sending request", "address", t.addr.String(), "request", cmd.String(), "attempt", attempt)
		frame, err := t.roundTrip(ctx, cmd)
		if err == nil {
			return frame, nil
		}
		var rejected *protocol.RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		klog.V(2).InfoS("No valid response, reconnecting", "address", t.addr.String(),
			"reason", err.Error(), "attempt", attempt)
		_ = t.conn.Close()
		t.conn = nil
	}
	return nil, errors.Wrapf(protocol.ErrMaxRetries, "%s after %d attempts", t.addr, retries)
}

func (t *tcpTransport) roundTrip(ctx context.Context, cmd *protocol.Command) ([]byte, error) {
	if err := t.conn.SetDeadline(deadline(ctx, t.opts.Timeout)); err != nil {
		return nil, errors.Wrap(err, "set deadline")
	}
	if _, err := t.conn.Write(cmd.Request); err != nil {
		return nil, errors.Wrapf(err, "send request to %s", t.addr)
	}
	buf := make([]byte, maxFrameSize)
	var frame []byte
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			if os.IsTimeout(err) && len(frame) > 0 {
				return nil, errors.Errorf("incomplete response from %s: %s", t.addr, hex.EncodeToString(frame))
			}
			return nil, err
		}
		frame = append(frame, buf[:n]...)
		klog.V(2).InfoS("Received frame", "address", t.addr.String(), "frame", hex.EncodeToString(frame))

		err = cmd.Validate(frame)
		if err == nil {
			return frame, nil
		}
		// A short prefix means the rest of the frame is still in
		// flight on the stream.
		var frameErr *protocol.FrameError
		if errors.As(err, &frameErr) &&
			(frameErr.Kind == protocol.FrameIncomplete || frameErr.Kind == protocol.FrameTooShort) {
			continue
		}
		return nil, err
	}
}

func (t *tcpTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
