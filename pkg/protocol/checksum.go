package protocol

// crc16Table is the lookup table for the Modbus flavour of CRC-16
// (polynomial 0xA001, reflected), built once at program start.
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		buffer := uint16(i << 1)
		var crc uint16
		for n := 8; n > 0; n-- {
			buffer >>= 1
			if (buffer^crc)&0x0001 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// CRC16 computes the Modbus CRC-16 checksum of data.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = (crc >> 8) ^ crc16Table[(crc^uint16(b))&0xFF]
	}
	return crc
}

// Checksum16 computes the plain additive 16-bit checksum used by the
// AA55 dialect, a running byte sum truncated to 16 bits.
func Checksum16(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
