package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelblijleven/goodwe/pkg/utils/binutil"
)

func TestModbusTCPReadRequest(t *testing.T) {
	cmd := NewModbusTCPReadCommand(0xf7, 0x88b8, 0x21)
	require.Len(t, cmd.Request, 12)
	assert.Equal(t, fromHex(t, "00000006f70388b80021"), cmd.Request[2:])
	assert.NotEqual(t, uint16(0), binutil.ParseUint16(cmd.Request[0:2]))
}

func TestModbusTCPWriteRequest(t *testing.T) {
	cmd := NewModbusTCPWriteCommand(0xf7, 0xb798, 0x0002)
	require.Len(t, cmd.Request, 12)
	assert.Equal(t, fromHex(t, "00000006f706b7980002"), cmd.Request[2:])
}

func TestModbusTCPWriteMultiRequest(t *testing.T) {
	cmd := NewModbusTCPWriteMultiCommand(0xf7, 0xb798, fromHex(t, "08070605"))
	require.Len(t, cmd.Request, 17)
	assert.Equal(t, fromHex(t, "0000000bf710b798000204"+"08070605"), cmd.Request[2:])
}

func TestTransactionIDRolls(t *testing.T) {
	first := nextTransactionID()
	second := nextTransactionID()
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, uint16(0), second)
	assert.NotEqual(t, uint16(0xFFFF), second)
}

func TestValidateModbusTCPReadResponse(t *testing.T) {
	assert.NoError(t, validateModbusTCPResponse(fromHex(t, "000100000007f7030401020304"), ModbusReadCmd, 0x0401, 2))
	// Dongle firmware announcing the hardcoded byte count 6.
	assert.NoError(t, validateModbusTCPResponse(fromHex(t, "000100000006f7030401020304"), ModbusReadCmd, 0x0401, 2))

	err := validateModbusTCPResponse(fromHex(t, "000100000007f70304"), ModbusReadCmd, 0x0401, 2)
	assert.True(t, IsFrameIncomplete(err))

	assertFrameErrorKind(t, validateModbusTCPResponse(fromHex(t, "000100000007"), ModbusReadCmd, 0x0401, 2),
		FrameTooShort)
	assertFrameErrorKind(t, validateModbusTCPResponse(fromHex(t, "000100010007f7030401020304"), ModbusReadCmd, 0x0401, 2),
		FrameHeaderMismatch)
	// Payload of 3 registers when 2 were requested.
	assertFrameErrorKind(t, validateModbusTCPResponse(fromHex(t, "000100000009f70306010203040506"), ModbusReadCmd, 0x0401, 2),
		FrameUnexpected)
}

func TestValidateModbusTCPReadResponseRejected(t *testing.T) {
	err := validateModbusTCPResponse(fromHex(t, "000100000003f78302"), ModbusReadCmd, 0x0401, 2)
	require.Error(t, err)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, byte(0x02), rejected.Code)
	assert.True(t, IsIllegalDataAddress(err))
}

func TestValidateModbusTCPWriteResponse(t *testing.T) {
	assert.NoError(t, validateModbusTCPResponse(fromHex(t, "000100000006f706b12c0014"), ModbusWriteCmd, 0xb12c, 0x14))
	assert.NoError(t, validateModbusTCPResponse(fromHex(t, "000100000006f706b12cffff"), ModbusWriteCmd, 0xb12c, -1))

	err := validateModbusTCPResponse(fromHex(t, "000100000006f706b12c"), ModbusWriteCmd, 0xb12c, 0x14)
	assert.True(t, IsFrameIncomplete(err))

	assertFrameErrorKind(t, validateModbusTCPResponse(fromHex(t, "000100000006f706b12c0012"), ModbusWriteCmd, 0xb12c, 0x14),
		FrameUnexpected)
	assertFrameErrorKind(t, validateModbusTCPResponse(fromHex(t, "000100000006f706b12d0014"), ModbusWriteCmd, 0xb12c, 0x14),
		FrameUnexpected)
}

func TestValidateModbusTCPWriteMultiResponse(t *testing.T) {
	assert.NoError(t, validateModbusTCPResponse(fromHex(t, "000100000006f71088b80003"), ModbusWriteMultiCmd, 0x88b8, 0x03))

	assertFrameErrorKind(t, validateModbusTCPResponse(fromHex(t, "000100000006f71088b80001"), ModbusWriteMultiCmd, 0x88b8, 0x03),
		FrameUnexpected)
}

func TestModbusTCPReadTrim(t *testing.T) {
	cmd := NewModbusTCPReadCommand(0xf7, 0x0401, 2)
	frame := fromHex(t, "000100000007f7030401020304")
	require.NoError(t, cmd.Validate(frame))
	assert.Equal(t, fromHex(t, "01020304"), cmd.Trim(frame))
	assert.Equal(t, 2, cmd.PayloadOffset(0x0402))
}
