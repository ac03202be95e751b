package catalog

import (
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

// The ES family (ES, EM, BP storage hybrids) speaks the AA55 dialect.
// Runtime data and settings each arrive as one byte-addressed payload
// requested by payload type, individual settings are written through
// AA55 register writes at their block offsets.
const (
	// Expected payload sizes of the running data and settings frames.
	esRuntimeSize  = 0x8C
	esSettingsSize = 0x56
)

func ES() *Catalog {
	return &Catalog{
		Runtime: Block{
			Name:          "runtime",
			Size:          esRuntimeSize,
			ByteAddressed: true,
			Sensors:       esRuntimeSensors(),
		},
		SettingsBlock: &Block{
			Name:          "settings",
			Size:          esSettingsSize,
			ByteAddressed: true,
			Sensors:       esSettings(),
		},
	}
}

func esRuntimeSensors() []sensor.Descriptor {
	return []sensor.Descriptor{
		voltage("vpv1", 0, "PV1 Voltage", sensor.PV),
		current("ipv1", 2, "PV1 Current", sensor.PV),
		calculated("ppv1", "PV1 Power", "W", sensor.PV, esPV1Power),
		enum("pv1_mode", 4, pvModes, "PV1 Mode", sensor.PV),
		voltage("vpv2", 5, "PV2 Voltage", sensor.PV),
		current("ipv2", 7, "PV2 Current", sensor.PV),
		calculated("ppv2", "PV2 Power", "W", sensor.PV, esPV2Power),
		enum("pv2_mode", 9, pvModes, "PV2 Mode", sensor.PV),
		calculated("ppv", "PV Power", "W", sensor.PV, esPVPower),
		voltage("vbattery1", 10, "Battery Voltage", sensor.Battery),
		integer("battery_status", 14, "Battery Status", "", sensor.Battery),
		temp("battery_temperature", 16, "Battery Temperature", sensor.Battery),
		calculated("ibattery1", "Battery Current", "A", sensor.Battery, esBatteryCurrent),
		calculated("pbattery1", "Battery Power", "W", sensor.Battery, esBatteryPower),
		integer("battery_charge_limit", 20, "Battery Charge Limit", "A", sensor.Battery),
		integer("battery_discharge_limit", 22, "Battery Discharge Limit", "A", sensor.Battery),
		integer("battery_error", 24, "Battery Error Code", "", sensor.Battery),
		byteSensor("battery_soc", 26, "Battery State of Charge", "%", sensor.Battery),
		byteSensor("battery_soh", 29, "Battery State of Health", "%", sensor.Battery),
		enum("battery_mode", 30, batteryModesES, "Battery Mode", sensor.Battery),
		integer("battery_warning", 31, "Battery Warning", "", sensor.Battery),
		byteSensor("meter_status", 33, "Meter Status code", "", sensor.AC),
		voltage("vgrid", 34, "On-grid Voltage", sensor.AC),
		current("igrid", 36, "On-grid Current", sensor.AC),
		calculated("pgrid", "On-grid Export Power", "W", sensor.AC, esGridPower),
		frequency("fgrid", 40, "On-grid Frequency", sensor.AC),
		enum("grid_mode", 42, workModesES, "Work Mode", sensor.Grid),
		voltage("vload", 43, "Back-up Voltage", sensor.UPS),
		current("iload", 45, "Back-up Current", sensor.UPS),
		power("pload", 47, "On-grid Power", sensor.AC),
		frequency("fload", 49, "Back-up Frequency", sensor.UPS),
		enum("load_mode", 51, loadModes, "Load Mode", sensor.AC),
		enum("work_mode", 52, energyModes, "Energy Mode", sensor.AC),
		temp("temperature", 53, "Inverter Temperature", ""),
		long("error_codes", 55, "Error Codes", "", ""),
		energy4("e_total", 59, "Total PV Generation", sensor.PV),
		long("h_total", 63, "Hours Total", "h", sensor.PV),
		energy("e_day", 67, "Today's PV Generation", sensor.PV),
		energy("e_load_day", 69, "Today's Load", sensor.AC),
		energy4("e_load_total", 71, "Total Load", sensor.AC),
		powerS("total_power", 75, "Total Power", sensor.AC),
		byteSensor("effective_work_mode", 77, "Effective Work Mode code", "", ""),
		integer("effective_relay_control", 78, "Effective Relay Control", "", ""),
		enum("grid_in_out", 80, gridInOutModes, "On-grid Mode", sensor.Grid),
		power("pback_up", 81, "Back-up Power", sensor.UPS),
		calculated("plant_power", "Plant Power", "W", sensor.AC, esPlantPower),
		decimal("meter_power_factor", 83, 1000, "Meter Power Factor", "", sensor.Grid),
		bitmap("diagnose_result", 89, diagStatusCodes, "Diag Status", ""),
		calculated("house_consumption", "House Consumption", "W", sensor.AC, esHouseConsumption),
	}
}

func esPV1Power(block *sensor.Block) (interface{}, bool) {
	v, vok := scaled10(block, 0)
	i, iok := scaled10(block, 2)
	if !vok || !iok {
		return nil, false
	}
	return round(v * i), true
}

func esPV2Power(block *sensor.Block) (interface{}, bool) {
	v, vok := scaled10(block, 5)
	i, iok := scaled10(block, 7)
	if !vok || !iok {
		return nil, false
	}
	return round(v * i), true
}

func esPVPower(block *sensor.Block) (interface{}, bool) {
	p1, ok1 := esPV1Power(block)
	p2, ok2 := esPV2Power(block)
	if !ok1 || !ok2 {
		return nil, false
	}
	return p1.(int) + p2.(int), true
}

// esBatteryCurrent is unsigned on the wire, battery mode 3 means the
// battery is charging and flips the sign.
func esBatteryCurrent(block *sensor.Block) (interface{}, bool) {
	i, ok := scaled10(block, 18)
	if !ok {
		return nil, false
	}
	mode, ok := rawByte(block, 30)
	if !ok {
		return nil, false
	}
	if mode == 3 {
		return -i, true
	}
	return i, true
}

func esBatteryPower(block *sensor.Block) (interface{}, bool) {
	v, vok := scaled10(block, 10)
	i, iok := scaled10(block, 18)
	mode, mok := rawByte(block, 30)
	if !vok || !iok || !mok {
		return nil, false
	}
	power := abs(round(v * i))
	if mode == 3 {
		return -power, true
	}
	return power, true
}

// esGridPower is unsigned on the wire, grid mode 2 means importing and
// flips the sign.
func esGridPower(block *sensor.Block) (interface{}, bool) {
	power, ok := rawInt16(block, 38)
	if !ok {
		return nil, false
	}
	mode, ok := rawByte(block, 80)
	if !ok {
		return nil, false
	}
	if mode == 2 {
		return -abs(power), true
	}
	return abs(power), true
}

func esPlantPower(block *sensor.Block) (interface{}, bool) {
	load, lok := rawUint16(block, 47)
	backup, bok := rawUint16(block, 81)
	if !lok || !bok {
		return nil, false
	}
	if load == 0xFFFF {
		load = 0
	}
	if backup == 0xFFFF {
		backup = 0
	}
	return load + backup, true
}

func esHouseConsumption(block *sensor.Block) (interface{}, bool) {
	pv, pok := esPVPower(block)
	battery, bok := esBatteryPower(block)
	grid, gok := esGridPower(block)
	if !pok || !bok || !gok {
		return nil, false
	}
	return pv.(int) + battery.(int) - grid.(int), true
}

func esSettings() []sensor.Descriptor {
	return []sensor.Descriptor{
		writable(integer("backup_supply", 12, "Backup Supply", "", ""), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("off_grid_charge", 14, "Off-grid Charge", "", ""), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("shadow_scan", 16, "Shadow Scan", "", sensor.PV), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("grid_export", 18, "Export Limit Enabled", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		integer("capacity", 22, "Capacity", "", ""),
		decimal("charge_v", 24, 10, "Charge Voltage", "V", ""),
		integer("charge_i", 26, "Charge Current", "A", ""),
		integer("discharge_i", 28, "Discharge Current", "A", ""),
		decimal("discharge_v", 30, 10, "Discharge Voltage", "V", ""),
		calculated("dod", "Depth of Discharge", "%", "", esDepthOfDischarge),
		integer("battery_activated", 34, "Battery Activated", "", ""),
		integer("bp_off_grid_charge", 36, "BP Off-grid Charge", "", ""),
		integer("bp_pv_discharge", 38, "BP PV Discharge", "", ""),
		integer("bp_bms_protocol", 40, "BP BMS Protocol", "", ""),
		writable(integer("power_factor", 42, "Power Factor", "", ""), nil),
		writable(integer("grid_export_limit", 52, "Grid Export Limit", "W", sensor.Grid), &sensor.Range{Min: 0, Max: 10000}),
		writable(integer("battery_soc_protection", 56, "Battery SoC Protection", "", sensor.Battery), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("work_mode", 66, "Work Mode", "", ""), &sensor.Range{Min: 0, Max: 3}),
		integer("grid_quality_check", 68, "Grid Quality Check", "", ""),
	}
}

func esDepthOfDischarge(block *sensor.Block) (interface{}, bool) {
	value, ok := rawUint16(block, 32)
	if !ok {
		return nil, false
	}
	if value == 0xFFFF {
		value = 0
	}
	return 100 - value, true
}
