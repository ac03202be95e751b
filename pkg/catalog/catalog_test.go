package catalog

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

func TestCatalogsValidate(t *testing.T) {
	for _, c := range []*Catalog{ET(), ES(), DT()} {
		assert.NoError(t, c.Validate())
	}
}

// esRuntimePayload is the running data payload of a captured ES
// inverter response, header and checksum already trimmed.
const esRuntimePayload = "09270047020fe600420102140002005001180004000000320000640064640200" +
	"00010a11009e0ce11389010a11000303e1138901020201000000000002378000" +
	"0053c3012600770001ad1510c30100200100000001000003e500000840000018" +
	"051a0e0e120000000000000000000000000000000000000000000000000000ca" +
	"260000baab02000000000000"

func TestESRuntimeFromCapturedFrame(t *testing.T) {
	payload, err := hex.DecodeString(esRuntimePayload)
	require.NoError(t, err)
	require.Len(t, payload, esRuntimeSize)

	block := sensor.RawBlock(payload)
	data := sensor.NewRuntimeData()
	for _, d := range ES().Runtime.Sensors {
		value, ok, err := d.Read(block)
		require.NoError(t, err, d.ID)
		if ok {
			data.Set(d.ID, value)
		}
	}

	expected := map[string]interface{}{
		"vpv1":       234.3,
		"ipv1":       7.1,
		"ppv1":       1664,
		"pv1_mode":   "PV panels connected, producing power",
		"vpv2":       407.0,
		"ipv2":       6.6,
		"ppv2":       2686,
		"ppv":        4350,
		"vbattery1":  53.2,
		"battery_temperature": 28.0,
		"ibattery1":  0.4,
		"pbattery1":  21,
		"battery_soc": 100,
		"battery_soh": 100,
		"battery_mode": "Discharge",
		"vgrid":      257.7,
		"igrid":      15.8,
		"pgrid":      3297,
		"fgrid":      50.01,
		"grid_mode":  "Inverter On",
		"vload":      257.7,
		"iload":      0.3,
		"pload":      993,
		"load_mode":  "The inverter is connected to the load",
		"work_mode":  "Normal (On-Grid)",
		"temperature": 51.3,
		"e_total":    14528.0,
		"h_total":    21443,
		"e_day":      29.4,
		"e_load_day": 11.9,
		"e_load_total": 10984.5,
		"total_power": 4291,
		"grid_in_out": "Exporting Power",
		"pback_up":   0,
		"plant_power": 993,
		"house_consumption": 1074,
		"diagnose_result": "Charge time on, Charge current low",
	}
	for id, want := range expected {
		got, ok := data.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, want, got, id)
	}
}

func TestParseFamily(t *testing.T) {
	for name, want := range map[string]Family{
		"ET": FamilyET, "eh": FamilyET, "BT": FamilyET, "BH": FamilyET,
		"ES": FamilyES, "em": FamilyES, "BP": FamilyES,
		"DT": FamilyDT, "ms": FamilyDT, "NS": FamilyDT, "XS": FamilyDT,
	} {
		family, err := ParseFamily(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, family, name)
	}

	_, err := ParseFamily("carport")
	assert.Error(t, err)
}

func TestFamilyFromSerial(t *testing.T) {
	family, ok := FamilyFromSerial("95048ESA000W0000")
	require.True(t, ok)
	assert.Equal(t, FamilyES, family)

	family, ok = FamilyFromSerial("9010KETU000W0000")
	require.True(t, ok)
	assert.Equal(t, FamilyET, family)

	family, ok = FamilyFromSerial("5010KDTS00AW0000")
	require.True(t, ok)
	assert.Equal(t, FamilyDT, family)

	_, ok = FamilyFromSerial("0000000000000000")
	assert.False(t, ok)
}

func TestSettingLookup(t *testing.T) {
	d, ok := ET().Setting("grid_export_limit")
	require.True(t, ok)
	assert.True(t, d.Writable)
	assert.True(t, d.Range.Permits(10000))
	assert.False(t, d.Range.Permits(10001))

	// ES settings live in the settings block.
	d, ok = ES().Setting("grid_export_limit")
	require.True(t, ok)
	assert.True(t, d.Writable)

	_, ok = DT().Setting("no_such_setting")
	assert.False(t, ok)
}
