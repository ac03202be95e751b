package catalog

import (
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

// Constructor shorthand for the catalog tables. Each helper pins the
// wire encoding and unit of one physical quantity.

func voltage(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Voltage, Unit: "V", Kind: kind}
}

func current(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Current, Unit: "A", Kind: kind}
}

func frequency(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Frequency, Unit: "Hz", Kind: kind}
}

func power(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.UInt16, Unit: "W", Kind: kind}
}

func powerS(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Int16, Unit: "W", Kind: kind}
}

func power4(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.UInt32, Unit: "W", Kind: kind}
}

func power4S(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.Int32, Unit: "W", Kind: kind}
}

func apparent(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Int16, Unit: "VA", Kind: kind}
}

func apparent4(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.Int32, Unit: "VA", Kind: kind}
}

func reactive(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Int16, Unit: "var", Kind: kind}
}

func reactive4(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.Int32, Unit: "var", Kind: kind}
}

func energy(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Energy, Unit: "kWh", Kind: kind}
}

func energy4(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.Energy4, Unit: "kWh", Kind: kind}
}

func temp(id string, address int, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Temperature, Unit: "C", Kind: kind}
}

func integer(id string, address int, name, unit string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.UInt16, Unit: unit, Kind: kind}
}

func long(id string, address int, name, unit string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.UInt32, Unit: unit, Kind: kind}
}

func byteSensor(id string, address int, name, unit string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 1,
		Decode: sensor.Byte, Unit: unit, Kind: kind}
}

func decimal(id string, address int, scale float64, name, unit string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Decimal, Scale: scale, Unit: unit, Kind: kind}
}

func float32Sensor(id string, address int, name, unit string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.Float32, Unit: unit, Kind: kind}
}

func timestamp(id string, address int, name string) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 6,
		Decode: sensor.Timestamp}
}

func enum(id string, address int, labels map[int]string, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 1,
		Decode: sensor.Enum, Labels: labels, Kind: kind}
}

func enum2(id string, address int, labels map[int]string, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 2,
		Decode: sensor.Enum2, Labels: labels, Kind: kind}
}

func bitmap(id string, address int, labels map[int]string, name string, kind sensor.Kind) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Address: address, Length: 4,
		Decode: sensor.Bitmap, Labels: labels, Kind: kind}
}

func calculated(id, name, unit string, kind sensor.Kind, calc func(*sensor.Block) (interface{}, bool)) sensor.Descriptor {
	return sensor.Descriptor{ID: id, Name: name, Unit: unit, Kind: kind,
		Decode: sensor.Calculated, Calc: calc}
}

func writable(d sensor.Descriptor, r *sensor.Range) sensor.Descriptor {
	d.Writable = true
	d.Range = r
	return d
}

// Raw readers shared by the calculated sensors.

func rawUint16(block *sensor.Block, address int) (int, bool) {
	raw, ok := block.Bytes(address, 2)
	if !ok {
		return 0, false
	}
	return int(raw[0])<<8 | int(raw[1]), true
}

func rawInt16(block *sensor.Block, address int) (int, bool) {
	value, ok := rawUint16(block, address)
	if !ok {
		return 0, false
	}
	return int(int16(value)), true
}

// rawUint32 reads two consecutive registers, byte-addressed blocks only.
func rawUint32(block *sensor.Block, address int) (int, bool) {
	high, ok := rawUint16(block, address)
	if !ok {
		return 0, false
	}
	low, ok := rawUint16(block, address+2)
	if !ok {
		return 0, false
	}
	return high<<16 | low, true
}

func rawByte(block *sensor.Block, address int) (int, bool) {
	raw, ok := block.Bytes(address, 1)
	if !ok {
		return 0, false
	}
	return int(int8(raw[0])), true
}

// scaled10 reads an unsigned register as value/10, sentinel as 0.
func scaled10(block *sensor.Block, address int) (float64, bool) {
	value, ok := rawUint16(block, address)
	if !ok {
		return 0, false
	}
	if value == 0xFFFF {
		return 0, true
	}
	return float64(value) / 10, true
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}

func round(value float64) int {
	if value < 0 {
		return int(value - 0.5)
	}
	return int(value + 0.5)
}
