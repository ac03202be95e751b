package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	device, err := ParseResponse([]byte("192.168.1.14,34EA34B14D8D,Solar-WiFi123W0001\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Device{IP: "192.168.1.14", MAC: "34EA34B14D8D", Name: "Solar-WiFi123W0001"}, device)

	_, err = ParseResponse([]byte("garbage"))
	assert.Error(t, err)
}

func TestSearchCollectsResponses(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, maxResponseSize)
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if string(buf[:n]) != probe {
			return
		}
		// Answer twice and throw in a malformed line, both must be
		// collapsed into one device.
		_, _ = conn.WriteToUDP([]byte("192.168.1.14,34EA34B14D8D,Solar-WiFi123W0001"), raddr)
		_, _ = conn.WriteToUDP([]byte("malformed"), raddr)
		_, _ = conn.WriteToUDP([]byte("192.168.1.14,34EA34B14D8D,Solar-WiFi123W0001"), raddr)
	}()

	devices, err := Search(context.Background(), Options{
		Broadcast: conn.LocalAddr().String(),
		Timeout:   200 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "192.168.1.14", devices[0].IP)
	assert.Equal(t, "Solar-WiFi123W0001", devices[0].Name)
}

func TestSearchTimesOutEmpty(t *testing.T) {
	devices, err := Search(context.Background(), Options{
		Broadcast: "127.0.0.1:48891",
		Timeout:   50 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Empty(t, devices)
}
