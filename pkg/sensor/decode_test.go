package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readValue(t *testing.T, d Descriptor, payload []byte) (interface{}, bool) {
	t.Helper()
	value, ok, err := d.Read(RawBlock(payload))
	require.NoError(t, err)
	return value, ok
}

func TestReadVoltage(t *testing.T) {
	d := Descriptor{ID: "vpv1", Decode: Voltage, Length: 2}

	value, ok := readValue(t, d, []byte{0x0D, 0xFE})
	assert.True(t, ok)
	assert.Equal(t, 358.2, value)

	value, ok = readValue(t, d, []byte{0xFF, 0xFF})
	assert.True(t, ok)
	assert.Equal(t, 0.0, value)
}

func TestReadFrequency(t *testing.T) {
	d := Descriptor{ID: "fgrid", Decode: Frequency, Length: 2}
	value, ok := readValue(t, d, []byte{0x13, 0x89})
	assert.True(t, ok)
	assert.Equal(t, 50.01, value)
}

func TestReadEnergyUndefined(t *testing.T) {
	d := Descriptor{ID: "e_day", Decode: Energy, Length: 2}

	value, ok := readValue(t, d, []byte{0x00, 0x64})
	assert.True(t, ok)
	assert.Equal(t, 10.0, value)

	_, ok = readValue(t, d, []byte{0xFF, 0xFF})
	assert.False(t, ok)
}

func TestReadTemperature(t *testing.T) {
	d := Descriptor{ID: "temperature", Decode: Temperature, Length: 2}

	value, ok := readValue(t, d, []byte{0x01, 0x18})
	assert.True(t, ok)
	assert.Equal(t, 28.0, value)

	// Both undefined sentinels.
	_, ok = readValue(t, d, []byte{0xFF, 0xFF})
	assert.False(t, ok)
	_, ok = readValue(t, d, []byte{0x7F, 0xFF})
	assert.False(t, ok)
}

func TestReadByteHalves(t *testing.T) {
	payload := []byte{0xFE, 0x07}

	value, _ := readValue(t, Descriptor{ID: "h", Decode: ByteH, Length: 2}, payload)
	assert.Equal(t, -2, value)
	value, _ = readValue(t, Descriptor{ID: "l", Decode: ByteL, Length: 2}, payload)
	assert.Equal(t, 7, value)
}

func TestReadTimestamp(t *testing.T) {
	d := Descriptor{ID: "timestamp", Decode: Timestamp, Length: 6}
	value, ok := readValue(t, d, []byte{0x18, 0x05, 0x1A, 0x0E, 0x0E, 0x12})
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 26, 14, 14, 18, 0, time.UTC), value)
}

func TestReadEnum(t *testing.T) {
	d := Descriptor{ID: "work_mode", Decode: Enum2, Length: 2,
		Labels: map[int]string{0: "Wait Mode", 1: "Normal"}}

	value, _ := readValue(t, d, []byte{0x00, 0x01})
	assert.Equal(t, "Normal", value)

	value, _ = readValue(t, d, []byte{0x00, 0x09})
	assert.Equal(t, "Unknown (9)", value)
}

func TestReadBitmap(t *testing.T) {
	d := Descriptor{ID: "errors", Decode: Bitmap, Length: 4,
		Labels: map[int]string{0: "GFCI Device Failure", 2: "TBD"}}

	value, _ := readValue(t, d, []byte{0x00, 0x00, 0x00, 0x05})
	assert.Equal(t, "GFCI Device Failure, TBD", value)

	value, _ = readValue(t, d, []byte{0x00, 0x00, 0x00, 0x02})
	assert.Equal(t, "err1", value)

	// All-ones means no error flags at all.
	value, _ = readValue(t, d, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	assert.Equal(t, "", value)
}

func TestReadShortPayload(t *testing.T) {
	d := Descriptor{ID: "vpv1", Decode: Voltage, Address: 10, Length: 2}
	_, _, err := d.Read(RawBlock([]byte{0x01, 0x02}))
	require.Error(t, err)
	var failure *DecodeFailure
	assert.ErrorAs(t, err, &failure)
}

func TestReadCalculated(t *testing.T) {
	d := Descriptor{ID: "ppv", Decode: Calculated, Calc: func(block *Block) (interface{}, bool) {
		raw, ok := block.Bytes(0, 2)
		if !ok {
			return nil, false
		}
		return 2 * int(raw[1]), true
	}}
	value, ok := readValue(t, d, []byte{0x00, 0x15})
	assert.True(t, ok)
	assert.Equal(t, 42, value)
}

func TestEncodeValue(t *testing.T) {
	d := Descriptor{ID: "grid_export_limit", Decode: UInt16, Length: 2,
		Range: &Range{Min: 0, Max: 10000}, Writable: true}

	raw, err := d.EncodeValue(4000, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0F, 0xA0}, raw)

	_, err = d.EncodeValue(20000, nil)
	assert.Error(t, err)
}

func TestEncodeByteHalves(t *testing.T) {
	d := Descriptor{ID: "h", Decode: ByteH, Length: 2, Writable: true}
	raw, err := d.EncodeValue(-2, []byte{0x00, 0x07})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0x07}, raw)

	_, err = d.EncodeValue(-2, nil)
	assert.Error(t, err)
}

func TestRuntimeDataOrder(t *testing.T) {
	data := NewRuntimeData()
	data.Set("vpv1", 358.2)
	data.Set("ppv", 2000)
	data.Set("vpv1", 360.0)

	assert.Equal(t, []string{"vpv1", "ppv"}, data.IDs())
	value, ok := data.Get("vpv1")
	assert.True(t, ok)
	assert.Equal(t, 360.0, value)

	encoded, err := data.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"vpv1":360,"ppv":2000}`, string(encoded))
}
