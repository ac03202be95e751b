package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModbusRTUReadRequest(t *testing.T) {
	cmd := NewModbusRTUReadCommand(0xf7, 0x88b8, 0x21)
	assert.Equal(t, fromHex(t, "f70388b800213ac1"), cmd.Request)
	assert.Equal(t, 0x88b8, cmd.BaseAddress())
	assert.Equal(t, 4, cmd.PayloadOffset(0x88ba))
}

func TestModbusRTUWriteRequest(t *testing.T) {
	cmd := NewModbusRTUWriteCommand(0xf7, 0x88b8, 0x00ff)
	assert.Equal(t, fromHex(t, "f70688b800ff7699"), cmd.Request)

	cmd = NewModbusRTUWriteCommand(0xf7, 0x88b8, -1)
	assert.Equal(t, fromHex(t, "f70688b8ffff3769"), cmd.Request)

	cmd = NewModbusRTUWriteCommand(0xf7, 0xb798, 0x0002)
	assert.Equal(t, fromHex(t, "f706b7980002bac6"), cmd.Request)
}

func TestModbusRTUWriteMultiRequest(t *testing.T) {
	cmd := NewModbusRTUWriteMultiCommand(0xf7, 0x88b8, fromHex(t, "010203040506"))
	assert.Equal(t, fromHex(t, "f71088b8000306010203040506102e"), cmd.Request)

	cmd = NewModbusRTUWriteMultiCommand(0xf7, 0xb798, fromHex(t, "08070605"))
	assert.Equal(t, fromHex(t, "f710b79800020408070605851b"), cmd.Request)
}

func assertFrameErrorKind(t *testing.T, err error, kind FrameErrorKind) {
	t.Helper()
	require.Error(t, err)
	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, kind, frameErr.Kind)
}

func TestValidateModbusRTUReadResponse(t *testing.T) {
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f7030401020304cd33"), ModbusReadCmd, 0x0401, 2))
	// Trailing garbage after the frame end is tolerated.
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f7030401020304cd33ffffff"), ModbusReadCmd, 0x0401, 2))

	err := validateModbusRTUResponse(fromHex(t, "aa55f7030401020304"), ModbusReadCmd, 0x0401, 2)
	assert.True(t, IsFrameIncomplete(err))

	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f703"), ModbusReadCmd, 0x0401, 2),
		FrameTooShort)
	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f70304010203043346"), ModbusReadCmd, 0x0401, 2),
		FrameChecksumMismatch)
	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f70306010203040506b417"), ModbusReadCmd, 0x0401, 2),
		FrameUnexpected)
}

func TestValidateModbusRTUReadResponseRejected(t *testing.T) {
	err := validateModbusRTUResponse(fromHex(t, "aa55f783040102030405b35e"), ModbusReadCmd, 0x0401, 2)
	require.Error(t, err)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, byte(0x04), rejected.Code)
}

func TestValidateModbusRTUWriteResponse(t *testing.T) {
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f706b12c00147ba6"), ModbusWriteCmd, 0xb12c, 0x14))
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f706b12cffff7a19"), ModbusWriteCmd, 0xb12c, -1))
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f706b12c00147ba6ffffff"), ModbusWriteCmd, 0xb12c, 0x14))

	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f7066b12"), ModbusWriteCmd, 0xb12c, 0x14),
		FrameUnexpected)
	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f706b12c00147ba7"), ModbusWriteCmd, 0xb12c, 0x14),
		FrameChecksumMismatch)
	// Echoed value not matching the written one.
	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f706b12c0012fba4"), ModbusWriteCmd, 0xb12c, 0x14),
		FrameUnexpected)
}

func TestValidateModbusRTUWriteMultiResponse(t *testing.T) {
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f71088b800033f1b"), ModbusWriteMultiCmd, 0x88b8, 0x03))
	assert.NoError(t, validateModbusRTUResponse(fromHex(t, "aa55f71088b800033f1bffffff"), ModbusWriteMultiCmd, 0x88b8, 0x03))

	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f71088b8"), ModbusWriteMultiCmd, 0x88b8, 0x03),
		FrameUnexpected)
	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f71088b800033f1c"), ModbusWriteMultiCmd, 0x88b8, 0x03),
		FrameChecksumMismatch)
	// Echoed register count not matching the request.
	assertFrameErrorKind(t, validateModbusRTUResponse(fromHex(t, "aa55f71088b80001beda"), ModbusWriteMultiCmd, 0x88b8, 0x03),
		FrameUnexpected)
}

func TestModbusRTUReadTrim(t *testing.T) {
	cmd := NewModbusRTUReadCommand(0xf7, 0x0401, 2)
	frame := fromHex(t, "aa55f7030401020304cd33")
	require.NoError(t, cmd.Validate(frame))
	assert.Equal(t, fromHex(t, "01020304"), cmd.Trim(frame))
}
