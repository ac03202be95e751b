package sensor

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/marcelblijleven/goodwe/pkg/utils/binutil"
)

// Read decodes the sensor value from the block. The second result is
// false when the device reports the value as undefined, the all-ones
// sentinel on counters and -1/32767 on temperatures.
func (d *Descriptor) Read(block *Block) (interface{}, bool, error) {
	if d.Decode == Calculated {
		value, ok := d.Calc(block)
		return value, ok, nil
	}
	raw, ok := block.Bytes(d.Address, d.Length)
	if !ok {
		return nil, false, &DecodeFailure{ID: d.ID, Reason: fmt.Sprintf(
			"payload of %d bytes does not cover address %d", block.Len(), d.Address)}
	}

	switch d.Decode {
	case Voltage, Current:
		value := binutil.ParseUint16(raw)
		if value == 0xFFFF {
			return 0.0, true, nil
		}
		return float64(value) / 10, true, nil
	case CurrentSigned:
		return float64(binutil.ParseInt16(raw)) / 10, true, nil
	case Frequency:
		return float64(binutil.ParseInt16(raw)) / 100, true, nil
	case UInt16:
		value := binutil.ParseUint16(raw)
		return int(value), value != 0xFFFF, nil
	case Int16:
		return int(binutil.ParseInt16(raw)), true, nil
	case UInt32:
		value := binutil.ParseUint32(raw)
		return int(value), value != 0xFFFFFFFF, nil
	case Int32:
		return int(binutil.ParseInt32(raw)), true, nil
	case Energy:
		value := binutil.ParseUint16(raw)
		return float64(value) / 10, value != 0xFFFF, nil
	case Energy4:
		value := binutil.ParseUint32(raw)
		return float64(value) / 10, value != 0xFFFFFFFF, nil
	case Temperature:
		value := binutil.ParseInt16(raw)
		return float64(value) / 10, value != -1 && value != 32767, nil
	case CellVoltage:
		value := binutil.ParseUint16(raw)
		if value == 0xFFFF {
			return 0.0, true, nil
		}
		return float64(value) / 100, true, nil
	case Byte, ByteH:
		return int(int8(raw[0])), true, nil
	case ByteL:
		return int(int8(raw[1])), true, nil
	case Decimal:
		return float64(binutil.ParseInt16(raw)) / d.Scale, true, nil
	case Float32:
		return float64(binutil.ParseFloat32(raw)), true, nil
	case Timestamp:
		return time.Date(2000+int(raw[0]), time.Month(raw[1]), int(raw[2]),
			int(raw[3]), int(raw[4]), int(raw[5]), 0, time.UTC), true, nil
	case Enum:
		return d.label(int(raw[0])), true, nil
	case Enum2:
		return d.label(int(binutil.ParseUint16(raw))), true, nil
	case Bitmap:
		bits := binutil.ParseInt32(raw)
		if bits == -1 {
			bits = 0
		}
		return decodeBitmap(uint32(bits), d.Labels), true, nil
	case String:
		return strings.TrimRight(string(raw), "\x00 "), true, nil
	default:
		return nil, false, &DecodeFailure{ID: d.ID, Reason: fmt.Sprintf("unsupported decode kind %d", d.Decode)}
	}
}

func (d *Descriptor) label(value int) string {
	if label, ok := d.Labels[value]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%d)", value)
}

func decodeBitmap(bits uint32, labels map[int]string) string {
	var set []string
	for i := 0; i < 32; i++ {
		if bits&(1<<i) != 0 {
			if label, ok := labels[i]; ok {
				set = append(set, label)
			} else {
				set = append(set, fmt.Sprintf("err%d", i))
			}
		}
	}
	return strings.Join(set, ", ")
}

// EncodeValue turns a setting value back into register bytes. For the
// half-register byte kinds the unaffected half is taken from current.
func (d *Descriptor) EncodeValue(value float64, current []byte) ([]byte, error) {
	if !d.Range.Permits(value) {
		return nil, errors.Errorf("value %v out of range for %s", value, d.ID)
	}
	switch d.Decode {
	case Voltage, Current:
		return binutil.AppendUint16(nil, uint16(value*10)), nil
	case CurrentSigned:
		return binutil.AppendUint16(nil, uint16(int16(value*10))), nil
	case Frequency:
		return binutil.AppendUint16(nil, uint16(int16(value*100))), nil
	case UInt16, Enum2:
		return binutil.AppendUint16(nil, uint16(value)), nil
	case Int16, Enum:
		return binutil.AppendUint16(nil, uint16(int16(value))), nil
	case UInt32:
		return binutil.AppendUint32(nil, uint32(value)), nil
	case Int32:
		return binutil.AppendUint32(nil, uint32(int32(value))), nil
	case Decimal:
		return binutil.AppendUint16(nil, uint16(int16(value*d.Scale))), nil
	case Byte:
		return []byte{byte(int8(value))}, nil
	case ByteH:
		if len(current) < 2 {
			return nil, errors.Errorf("cannot encode %s without current register value", d.ID)
		}
		return []byte{byte(int8(value)), current[1]}, nil
	case ByteL:
		if len(current) < 2 {
			return nil, errors.Errorf("cannot encode %s without current register value", d.ID)
		}
		return []byte{current[0], byte(int8(value))}, nil
	default:
		return nil, errors.Errorf("sensor %s is not writable", d.ID)
	}
}

// EncodeTimestamp encodes a datetime setting payload.
func EncodeTimestamp(t time.Time) []byte {
	return []byte{
		byte(t.Year() - 2000), byte(t.Month()), byte(t.Day()),
		byte(t.Hour()), byte(t.Minute()), byte(t.Second()),
	}
}
