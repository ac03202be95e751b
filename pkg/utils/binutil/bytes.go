// Package binutil parses and writes the big-endian integer encodings
// used on the inverter wire. Registers are 16 bit words transmitted
// most significant byte first; wider values span consecutive registers
// in plain ABCD order.
package binutil

import "math"

func ParseUint16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func ParseInt16(b []byte) int16 {
	return int16(ParseUint16(b))
}

func ParseUint32(b []byte) uint32 {
	return uint32(b[0])<<24 |
		uint32(b[1])<<16 |
		uint32(b[2])<<8 |
		uint32(b[3])
}

func ParseInt32(b []byte) int32 {
	return int32(ParseUint32(b))
}

func ParseFloat32(b []byte) float32 {
	return math.Float32frombits(ParseUint32(b))
}

// ParseUint16LittleEndian parses the byte-swapped order used by the
// Modbus RTU CRC trailer.
func ParseUint16LittleEndian(b []byte) uint16 {
	return uint16(b[1])<<8 | uint16(b[0])
}

func WriteUint16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func AppendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func AppendUint16LittleEndian(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func AppendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
