package transport

import (
	"context"
	"encoding/hex"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelblijleven/goodwe/pkg/protocol"
)

// deviceInfoFrame is a captured ES series device info response.
const deviceInfoFrame = "aa557fc001824d323532354b4757353034382d45534123313000000000000000" +
	"00000000000039353034384553413030305730303030333630303431302d3034" +
	"3032352d3235203431302d30323033342d323001102f"

// mockDatagramServer answers datagrams on a loopback socket. The first
// drop requests are swallowed to exercise the resend path.
func mockDatagramServer(t *testing.T, drop int, respond func(request []byte) [][]byte) Address {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, maxFrameSize)
		received := 0
		for {
			n, raddr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			received++
			if received <= drop {
				continue
			}
			for _, frame := range respond(buf[:n]) {
				_, _ = conn.WriteToUDP(frame, raddr)
			}
		}
	}()
	return NewAddress("127.0.0.1", conn.LocalAddr().(*net.UDPAddr).Port)
}

func TestUDPExchangeResendsDroppedRequests(t *testing.T) {
	addr := mockDatagramServer(t, 2, func(request []byte) [][]byte {
		return [][]byte{[]byte("pong")}
	})
	tr, err := ConnectUDP(context.Background(), addr, Options{Timeout: 100 * time.Millisecond, Retries: 3})
	require.NoError(t, err)
	defer tr.Close()

	frame, err := tr.Exchange(context.Background(), protocol.RawCommand([]byte("ping")))
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), frame)
}

func TestUDPExchangeMaxRetries(t *testing.T) {
	addr := mockDatagramServer(t, 100, nil)
	tr, err := ConnectUDP(context.Background(), addr, Options{Timeout: 50 * time.Millisecond, Retries: 2})
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Exchange(context.Background(), protocol.RawCommand([]byte("ping")))
	assert.True(t, errors.Is(err, protocol.ErrMaxRetries))
}

func TestUDPProbeSingleAttempt(t *testing.T) {
	var requests int32
	addr := mockDatagramServer(t, 0, func(request []byte) [][]byte {
		atomic.AddInt32(&requests, 1)
		return nil
	})
	tr, err := ConnectUDP(context.Background(), addr, Options{Timeout: 50 * time.Millisecond, Retries: 3})
	require.NoError(t, err)
	defer tr.Close()

	prober, ok := tr.(Prober)
	require.True(t, ok)
	_, err = prober.Probe(context.Background(), protocol.RawCommand([]byte("ping")))
	assert.True(t, errors.Is(err, protocol.ErrMaxRetries))
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestUDPExchangeReassemblesSplitResponse(t *testing.T) {
	frame, err := hex.DecodeString(deviceInfoFrame)
	require.NoError(t, err)
	addr := mockDatagramServer(t, 0, func(request []byte) [][]byte {
		return [][]byte{frame[:20], frame[20:]}
	})
	tr, err := ConnectUDP(context.Background(), addr, Options{Timeout: time.Second, Retries: 1})
	require.NoError(t, err)
	defer tr.Close()

	cmd := protocol.NewAA55Command([]byte{0x01, 0x02, 0x00}, 0x0182)
	received, err := tr.Exchange(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, frame, received)
}

func TestUDPExchangeContextCancelled(t *testing.T) {
	addr := mockDatagramServer(t, 100, nil)
	tr, err := ConnectUDP(context.Background(), addr, Options{Timeout: time.Second, Retries: 3})
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = tr.Exchange(ctx, protocol.RawCommand([]byte("ping")))
	require.Error(t, err)
	assert.False(t, errors.Is(err, protocol.ErrMaxRetries))
}

func TestTCPExchange(t *testing.T) {
	response, err := hex.DecodeString("000100000007f7030401020304")
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, maxFrameSize)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		// Stream fragmentation, the response arrives in two chunks.
		_, _ = conn.Write(response[:5])
		time.Sleep(20 * time.Millisecond)
		_, _ = conn.Write(response[5:])
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	tr, err := ConnectTCP(context.Background(), Address{Host: "127.0.0.1", Port: port, Kind: TCP}, Options{Timeout: time.Second, Retries: 1})
	require.NoError(t, err)
	defer tr.Close()

	frame, err := tr.Exchange(context.Background(), protocol.NewModbusTCPReadCommand(0xf7, 0x0401, 2))
	require.NoError(t, err)
	assert.Equal(t, response, frame)
}
