package protocol

import (
	"github.com/marcelblijleven/goodwe/pkg/utils/binutil"
)

// The Modbus RTU dialect is spoken by newer families (ET/EH/BT/BH and
// DT/MS/NS/XS) over UDP datagrams to port 8899. Requests are plain RTU
// frames; responses are RTU frames prefixed with the two magic bytes
// AA 55. The CRC-16 covers the frame from the communication address
// onward and is transmitted least significant byte first.

const (
	ModbusReadCmd       byte = 0x03
	ModbusWriteCmd      byte = 0x06
	ModbusWriteMultiCmd byte = 0x10
)

var modbusRTUResponseHeader = []byte{0xAA, 0x55}

// EncodeModbusRTURequest builds the 8-byte single-parameter RTU request.
func EncodeModbusRTURequest(commAddr byte, cmd byte, offset uint16, value uint16) []byte {
	frame := make([]byte, 0, 8)
	frame = append(frame, commAddr, cmd)
	frame = binutil.AppendUint16(frame, offset)
	frame = binutil.AppendUint16(frame, value)
	return binutil.AppendUint16LittleEndian(frame, CRC16(frame))
}

// EncodeModbusRTUMultiRequest builds the write-multiple-registers RTU request.
func EncodeModbusRTUMultiRequest(commAddr byte, cmd byte, offset uint16, values []byte) []byte {
	frame := make([]byte, 0, 9+len(values))
	frame = append(frame, commAddr, cmd)
	frame = binutil.AppendUint16(frame, offset)
	frame = binutil.AppendUint16(frame, uint16(len(values)/2))
	frame = append(frame, byte(len(values)))
	frame = append(frame, values...)
	return binutil.AppendUint16LittleEndian(frame, CRC16(frame))
}

// validateModbusRTUResponse checks an RTU response frame against the
// request that provoked it. For read commands value is the register
// count, for writes the written value echoed back by the device.
func validateModbusRTUResponse(frame []byte, cmd byte, offset int, value int) error {
	if len(frame) <= 4 {
		return frameErrorf(FrameTooShort, "%d bytes", len(frame))
	}
	if frame[0] != modbusRTUResponseHeader[0] || frame[1] != modbusRTUResponseHeader[1] {
		return frameErrorf(FrameHeaderMismatch, "%x", frame[0:2])
	}
	var expected int
	switch frame[3] {
	case ModbusReadCmd:
		if int(frame[4]) != value*2 {
			return frameErrorf(FrameUnexpected, "payload length %d, expected %d", frame[4], value*2)
		}
		expected = int(frame[4]) + 7
		if len(frame) < expected {
			return frameErrorf(FrameIncomplete, "%d of %d bytes", len(frame), expected)
		}
	case ModbusWriteCmd, ModbusWriteMultiCmd:
		if len(frame) < 10 {
			return frameErrorf(FrameUnexpected, "length %d, expected %d", len(frame), 10)
		}
		expected = 10
		if echo := binutil.ParseUint16(frame[4:6]); echo != uint16(offset) {
			return frameErrorf(FrameUnexpected, "offset %x, expected %x", echo, offset)
		}
		if echo := binutil.ParseUint16(frame[6:8]); echo != uint16(value) {
			return frameErrorf(FrameUnexpected, "value %x, expected %x", echo, uint16(value))
		}
	default:
		// Unknown or exception command, checksum the whole frame.
		expected = len(frame)
	}

	if sum := CRC16(frame[2 : expected-2]); sum != binutil.ParseUint16LittleEndian(frame[expected-2:expected]) {
		return frameErrorf(FrameChecksumMismatch, "computed %04x, frame carries %04x",
			sum, binutil.ParseUint16LittleEndian(frame[expected-2:expected]))
	}

	if frame[3] != cmd {
		return &RejectedError{Code: frame[4]}
	}
	return nil
}

// NewModbusRTUReadCommand reads count registers starting at offset.
func NewModbusRTUReadCommand(commAddr byte, offset int, count int) *Command {
	return &Command{
		Request: EncodeModbusRTURequest(commAddr, ModbusReadCmd, uint16(offset), uint16(count)),
		Validate: func(frame []byte) error {
			return validateModbusRTUResponse(frame, ModbusReadCmd, offset, count)
		},
		Trim: func(frame []byte) []byte {
			return frame[5 : 5+int(frame[4])]
		},
		baseAddress: offset,
		wordSize:    2,
	}
}

// NewModbusRTUWriteCommand sets the single register to value.
func NewModbusRTUWriteCommand(commAddr byte, register int, value int) *Command {
	return &Command{
		Request: EncodeModbusRTURequest(commAddr, ModbusWriteCmd, uint16(register), uint16(value)),
		Validate: func(frame []byte) error {
			return validateModbusRTUResponse(frame, ModbusWriteCmd, register, value)
		},
		Trim: func(frame []byte) []byte {
			return frame[4 : len(frame)-2]
		},
		baseAddress: register,
		wordSize:    2,
	}
}

// NewModbusRTUWriteMultiCommand sets len(values)/2 registers starting at offset.
func NewModbusRTUWriteMultiCommand(commAddr byte, offset int, values []byte) *Command {
	count := len(values) / 2
	return &Command{
		Request: EncodeModbusRTUMultiRequest(commAddr, ModbusWriteMultiCmd, uint16(offset), values),
		Validate: func(frame []byte) error {
			return validateModbusRTUResponse(frame, ModbusWriteMultiCmd, offset, count)
		},
		Trim: func(frame []byte) []byte {
			return frame[4 : len(frame)-2]
		},
		baseAddress: offset,
		wordSize:    2,
	}
}
