package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	assert.Equal(t, UDP, NewAddress("192.168.1.14", 8899).Kind)
	assert.Equal(t, TCP, NewAddress("192.168.1.14", 502).Kind)
	assert.Equal(t, UDP, NewAddress("192.168.1.14", 1337).Kind)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("192.168.1.14")
	require.NoError(t, err)
	assert.Equal(t, Address{Host: "192.168.1.14", Port: 8899, Kind: UDP}, addr)

	addr, err = ParseAddress("inverter.local:502")
	require.NoError(t, err)
	assert.Equal(t, Address{Host: "inverter.local", Port: 502, Kind: TCP}, addr)

	addr, err = ParseAddress("192.168.1.14:8899:tcp")
	require.NoError(t, err)
	assert.Equal(t, TCP, addr.Kind)

	for _, invalid := range []string{"", ":8899", "host:notaport", "host:0", "host:8899:carrier-pigeon"} {
		_, err = ParseAddress(invalid)
		assert.Error(t, err, invalid)
	}
}
