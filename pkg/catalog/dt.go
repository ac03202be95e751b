package catalog

import (
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

// The DT family (DT, MS, NS, XS grid inverters) is register-addressed:
// catalog addresses are the actual Modbus register numbers, the running
// data block starts at 30100 (0x7594) and the meter block at 30195.
const (
	DTDeviceInfoOffset = 0x7531
	DTDeviceInfoCount  = 0x28
	DTRuntimeOffset    = 30100
	DTRuntimeCount     = 0x49
	DTMeterOffset      = 30195
	DTMeterCount       = 0xF
	DTModelOffset      = 0x9CED
	DTModelCount       = 0x08
)

func DT() *Catalog {
	return &Catalog{
		Runtime: Block{
			Name:    "runtime",
			Offset:  DTRuntimeOffset,
			Size:    DTRuntimeCount * 2,
			Sensors: dtRuntimeSensors(),
		},
		Meter: &Block{
			Name:    "meter",
			Offset:  DTMeterOffset,
			Size:    DTMeterCount * 2,
			Sensors: dtMeterSensors(),
		},
		Settings: dtSettings(),
	}
}

func dtRuntimeSensors() []sensor.Descriptor {
	return []sensor.Descriptor{
		timestamp("timestamp", 30100, "Timestamp"),
		voltage("vpv1", 30103, "PV1 Voltage", sensor.PV),
		current("ipv1", 30104, "PV1 Current", sensor.PV),
		calculated("ppv1", "PV1 Power", "W", sensor.PV, dtStringPower(30103, 30104)),
		voltage("vpv2", 30105, "PV2 Voltage", sensor.PV),
		current("ipv2", 30106, "PV2 Current", sensor.PV),
		calculated("ppv2", "PV2 Power", "W", sensor.PV, dtStringPower(30105, 30106)),
		voltage("vpv3", 30107, "PV3 Voltage", sensor.PV),
		current("ipv3", 30108, "PV3 Current", sensor.PV),
		calculated("ppv3", "PV3 Power", "W", sensor.PV, dtStringPower(30107, 30108)),
		calculated("ppv", "PV Power", "W", sensor.PV, dtPVPower),
		voltage("vline1", 30115, "On-grid L1-L2 Voltage", sensor.AC),
		voltage("vline2", 30116, "On-grid L2-L3 Voltage", sensor.AC),
		voltage("vline3", 30117, "On-grid L3-L1 Voltage", sensor.AC),
		voltage("vgrid1", 30118, "On-grid L1 Voltage", sensor.AC),
		voltage("vgrid2", 30119, "On-grid L2 Voltage", sensor.AC),
		voltage("vgrid3", 30120, "On-grid L3 Voltage", sensor.AC),
		current("igrid1", 30121, "On-grid L1 Current", sensor.AC),
		current("igrid2", 30122, "On-grid L2 Current", sensor.AC),
		current("igrid3", 30123, "On-grid L3 Current", sensor.AC),
		frequency("fgrid1", 30124, "On-grid L1 Frequency", sensor.AC),
		frequency("fgrid2", 30125, "On-grid L2 Frequency", sensor.AC),
		frequency("fgrid3", 30126, "On-grid L3 Frequency", sensor.AC),
		calculated("pgrid1", "On-grid L1 Power", "W", sensor.AC, dtStringPower(30118, 30121)),
		calculated("pgrid2", "On-grid L2 Power", "W", sensor.AC, dtStringPower(30119, 30122)),
		calculated("pgrid3", "On-grid L3 Power", "W", sensor.AC, dtStringPower(30120, 30123)),
		power4("total_inverter_power", 30127, "Total Power", sensor.AC),
		enum2("work_mode", 30129, workModesDT, "Work Mode", ""),
		long("error_codes", 30130, "Error Codes", "", ""),
		integer("warning_code", 30132, "Warning code", "", ""),
		apparent4("apparent_power", 30133, "Apparent Power", sensor.AC),
		reactive4("reactive_power", 30135, "Reactive Power", sensor.AC),
		powerS("total_input_power", 30138, "Total Input Power", sensor.PV),
		decimal("power_factor", 30139, 1000, "Power Factor", "", sensor.Grid),
		temp("temperature", 30141, "Inverter Temperature", sensor.AC),
		temp("temperature_heatsink", 30142, "Heatsink Temperature", sensor.AC),
		energy("e_day", 30144, "Today's PV Generation", sensor.PV),
		energy4("e_total", 30145, "Total PV Generation", sensor.PV),
		long("h_total", 30147, "Hours Total", "h", sensor.PV),
		enum2("safety_country", 30149, safetyCountries, "Safety Country", sensor.AC),
		integer("funbit", 30162, "FunctionBit", "", sensor.PV),
		voltage("vbus", 30163, "Bus Voltage", sensor.PV),
		voltage("vnbus", 30164, "NBus Voltage", sensor.PV),
		bitmap("derating_mode", 30165, deratingModeCodes, "Derating Mode", ""),
		integer("rssi", 30172, "RSSI", "", ""),
	}
}

// dtStringPower multiplies the voltage and current registers of one
// PV string or grid phase.
func dtStringPower(vreg, ireg int) func(*sensor.Block) (interface{}, bool) {
	return func(block *sensor.Block) (interface{}, bool) {
		v, vok := scaled10(block, vreg)
		i, iok := scaled10(block, ireg)
		if !vok || !iok {
			return nil, false
		}
		return round(v * i), true
	}
}

func dtPVPower(block *sensor.Block) (interface{}, bool) {
	total := 0
	for _, regs := range [][2]int{{30103, 30104}, {30105, 30106}, {30107, 30108}} {
		value, ok := dtStringPower(regs[0], regs[1])(block)
		if !ok {
			return nil, false
		}
		total += value.(int)
	}
	return total, true
}

func dtMeterSensors() []sensor.Descriptor {
	return []sensor.Descriptor{
		power4S("meter_active_power", 30195, "Meter Active Power", sensor.Grid),
		energy4("meter_e_total_exp", 30197, "Meter Total Energy (export)", sensor.Grid),
		energy4("meter_e_total_imp", 30199, "Meter Total Energy (import)", sensor.Grid),
		integer("meter_comm_status", 30209, "Meter Communication Status", "", sensor.Grid),
	}
}

func dtSettings() []sensor.Descriptor {
	return []sensor.Descriptor{
		writable(timestamp("time", 40313, "Inverter time"), nil),
		writable(integer("shadow_scan_pv1", 40326, "Shadow Scan Status PV1", "", sensor.PV), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("grid_export", 40327, "Grid Export Limit Enabled", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("grid_export_limit", 40328, "Grid Export Limit", "%", sensor.Grid), &sensor.Range{Min: 0, Max: 100}),
		writable(integer("start", 40330, "Start / Power On", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("stop", 40331, "Stop / Power Off", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("restart", 40332, "Restart", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("grid_export_hw", 40345, "Grid Export Limit Enabled (HW)", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("shadow_scan_pv1_time", 40347, "Shadow Scan PV1 Time", "", sensor.PV), nil),
		writable(integer("shadow_scan_pv2", 40352, "Shadow Scan Status PV2", "", sensor.PV), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("shadow_scan_pv2_time", 40353, "Shadow Scan PV2 Time", "", sensor.PV), nil),
		writable(integer("shadow_scan_pv3", 40362, "Shadow Scan Status PV3", "", sensor.PV), &sensor.Range{Min: 0, Max: 1}),
	}
}
