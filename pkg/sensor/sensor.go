// Package sensor maps raw register payloads to named, typed values.
// Every inverter family publishes its data as a flat block of
// big-endian registers, a Descriptor pins one value inside such a
// block and knows how to decode and encode it.
package sensor

import (
	"fmt"
)

// Kind groups sensors by the part of the installation they describe.
type Kind string

const (
	PV      Kind = "PV"
	AC      Kind = "AC"
	UPS     Kind = "UPS"
	Battery Kind = "BAT"
	Grid    Kind = "GRID"
	BMS     Kind = "BMS"
)

// DecodeKind selects the wire representation of a sensor value.
type DecodeKind int

const (
	// Voltage is an unsigned 16-bit value scaled by 10, the all-ones
	// sentinel reads as 0.
	Voltage DecodeKind = iota
	// Current is encoded like Voltage.
	Current
	// CurrentSigned is a signed 16-bit value scaled by 10.
	CurrentSigned
	// Frequency is a signed 16-bit value scaled by 100.
	Frequency
	// UInt16 is an unsigned 16-bit value, all-ones reads as undefined.
	UInt16
	// Int16 is a signed 16-bit value.
	Int16
	// UInt32 is an unsigned 32-bit value, all-ones reads as undefined.
	UInt32
	// Int32 is a signed 32-bit value.
	Int32
	// Energy is an unsigned 16-bit value scaled by 10 in kWh,
	// all-ones reads as undefined.
	Energy
	// Energy4 is the 32-bit variant of Energy.
	Energy4
	// Temperature is a signed 16-bit value scaled by 10, -1 and
	// 32767 read as undefined.
	Temperature
	// CellVoltage is an unsigned 16-bit value scaled by 100.
	CellVoltage
	// Byte is a signed 8-bit value.
	Byte
	// ByteH is the signed high byte of a 16-bit register.
	ByteH
	// ByteL is the signed low byte of a 16-bit register.
	ByteL
	// Decimal is a signed 16-bit value scaled by the descriptor scale.
	Decimal
	// Float32 is an IEEE-754 single precision value.
	Float32
	// Timestamp is a 6-byte datetime, year offset by 2000.
	Timestamp
	// Enum is a single byte mapped through the label table.
	Enum
	// Enum2 is a 16-bit register mapped through the label table.
	Enum2
	// Bitmap is a 32-bit flag word rendered as the comma separated
	// labels of all set bits.
	Bitmap
	// String is a run of ASCII bytes, trailing NUL and spaces trimmed.
	String
	// Calculated derives its value from other registers of the block.
	Calculated
)

// Range limits the values accepted when writing a holding register.
type Range struct {
	Min float64
	Max float64
}

func (r *Range) Permits(value float64) bool {
	if r == nil {
		return true
	}
	return value >= r.Min && value <= r.Max
}

// Descriptor describes a single sensor or setting within a register
// block. Address is a register address for word-oriented families and
// a byte offset for the older byte-oriented ones, the owning block
// knows which.
type Descriptor struct {
	ID      string
	Name    string
	Address int
	Length  int
	Decode  DecodeKind
	Scale   float64
	Unit    string
	Kind    Kind
	Labels  map[int]string
	Range   *Range
	Calc    func(block *Block) (interface{}, bool)
	// Writable marks settings that accept WriteSetting.
	Writable bool
}

// DecodeFailure reports a payload that cannot hold the sensor value.
type DecodeFailure struct {
	ID     string
	Reason string
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("cannot decode sensor %s: %s", e.ID, e.Reason)
}
