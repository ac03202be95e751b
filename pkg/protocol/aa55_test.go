package protocol

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}

func TestAA55ReadCommand(t *testing.T) {
	cmd := NewAA55ReadCommand(0x0701, 16)
	assert.Equal(t, fromHex(t, "aa55c07f011a030701100274"), cmd.Request)
}

func TestAA55WriteCommand(t *testing.T) {
	cmd := NewAA55WriteCommand(0x0560, 0x0002)
	assert.Equal(t, fromHex(t, "aa55c07f023905056001000202e6"), cmd.Request)
}

func TestAA55WriteMultiCommand(t *testing.T) {
	cmd := NewAA55WriteMultiCommand(0x0701, fromHex(t, "08070605"))
	assert.Equal(t, fromHex(t, "aa55c07f02390b0701040807060502aa"), cmd.Request)
}

func TestDecodeAA55Response(t *testing.T) {
	// Device info response produced by an ES series inverter.
	frame := fromHex(t, "aa557fc001824d323532354b4757353034382d45534123313000000000000000"+
		"00000000000039353034384553413030305730303030333630303431302d3034"+
		"3032352d3235203431302d30323033342d323001102f")

	responseType, payload, err := DecodeAA55Response(frame)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0182), responseType)
	assert.Equal(t, int(frame[6]), len(payload))
	assert.Equal(t, frame[7:len(frame)-2], payload)
}

func TestDecodeAA55ResponseIncomplete(t *testing.T) {
	frame := fromHex(t, "aa557fc001868c0927")

	_, _, err := DecodeAA55Response(frame)
	require.Error(t, err)
	assert.True(t, IsFrameIncomplete(err))

	// A bare header prefix is incomplete too, not malformed.
	_, _, err = DecodeAA55Response(fromHex(t, "aa557f"))
	require.Error(t, err)
	assert.True(t, IsFrameIncomplete(err))
}

func TestDecodeAA55ResponseHeaderMismatch(t *testing.T) {
	_, _, err := DecodeAA55Response(fromHex(t, "aa55c07f011a030701100274"))
	require.Error(t, err)
	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, FrameHeaderMismatch, frameErr.Kind)
}

func TestDecodeAA55ResponseChecksumMismatch(t *testing.T) {
	frame := fromHex(t, "aa557fc00186020102aa55")

	_, _, err := DecodeAA55Response(frame)
	require.Error(t, err)
	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, FrameChecksumMismatch, frameErr.Kind)
}

func TestAA55CommandValidate(t *testing.T) {
	cmd := NewAA55Command([]byte{0x01, 0x06, 0x00}, 0x0186)

	frame := append(fromHex(t, "aa557fc0018602ffff"), 0, 0)
	sum := Checksum16(frame[:len(frame)-2])
	frame[len(frame)-2] = byte(sum >> 8)
	frame[len(frame)-1] = byte(sum)
	require.NoError(t, cmd.Validate(frame))
	assert.Equal(t, fromHex(t, "ffff"), cmd.Trim(frame))

	// Response type not matching the request is unexpected.
	other := append(fromHex(t, "aa557fc0018202ffff"), 0, 0)
	sum = Checksum16(other[:len(other)-2])
	other[len(other)-2] = byte(sum >> 8)
	other[len(other)-1] = byte(sum)
	err := cmd.Validate(other)
	require.Error(t, err)
	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, FrameUnexpected, frameErr.Kind)
}
