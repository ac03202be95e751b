package catalog

import (
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

// Register offsets of the ET family (ET, EH, BT, BH hybrids). The
// firmware groups its data into the running data block at 0x891C, the
// battery BMS block at 0x9088 and the meter block at 0x8CA0. Sensors
// of those blocks are addressed by byte offset within the payload,
// settings are individual holding registers.
const (
	ETDeviceInfoOffset = 0x88B8
	ETDeviceInfoCount  = 0x21
	ETRuntimeOffset    = 0x891C
	ETRuntimeCount     = 0x7D
	ETMeterOffset      = 0x8CA0
	ETMeterCount       = 0x2D
	ETBatteryOffset    = 0x9088
	ETBatteryCount     = 0x18

	// Byte offset of the battery mode register within the runtime
	// payload, it decides whether the battery block is worth reading.
	etBatteryModeOffset = 168
)

func ET() *Catalog {
	return &Catalog{
		Runtime: Block{
			Name:          "runtime",
			Offset:        ETRuntimeOffset,
			Size:          ETRuntimeCount * 2,
			ByteAddressed: true,
			Sensors:       etRuntimeSensors(),
		},
		Battery: &Block{
			Name:          "battery",
			Offset:        ETBatteryOffset,
			Size:          ETBatteryCount * 2,
			ByteAddressed: true,
			Sensors:       etBatterySensors(),
		},
		Meter: &Block{
			Name:          "meter",
			Offset:        ETMeterOffset,
			Size:          ETMeterCount * 2,
			ByteAddressed: true,
			Sensors:       etMeterSensors(),
		},
		Settings: etSettings(),
	}
}

// ETHasBattery reports whether the runtime payload shows a battery,
// inverters without one answer the battery block read with garbage.
func ETHasBattery(runtime *sensor.Block) bool {
	value, ok := rawUint16(runtime, etBatteryModeOffset)
	return ok && value != 0
}

func etRuntimeSensors() []sensor.Descriptor {
	return []sensor.Descriptor{
		timestamp("timestamp", 0, "Timestamp"),
		voltage("vpv1", 6, "PV1 Voltage", sensor.PV),
		current("ipv1", 8, "PV1 Current", sensor.PV),
		power4("ppv1", 10, "PV1 Power", sensor.PV),
		voltage("vpv2", 14, "PV2 Voltage", sensor.PV),
		current("ipv2", 16, "PV2 Current", sensor.PV),
		power4("ppv2", 18, "PV2 Power", sensor.PV),
		calculated("ppv", "PV Power", "W", sensor.PV, etPVPower),
		enum("pv2_mode", 40, pvModes, "PV2 Mode", sensor.PV),
		enum("pv1_mode", 41, pvModes, "PV1 Mode", sensor.PV),
		voltage("vgrid", 42, "On-grid L1 Voltage", sensor.AC),
		current("igrid", 44, "On-grid L1 Current", sensor.AC),
		frequency("fgrid", 46, "On-grid L1 Frequency", sensor.AC),
		power("pgrid", 50, "On-grid L1 Power", sensor.AC),
		voltage("vgrid2", 52, "On-grid L2 Voltage", sensor.AC),
		current("igrid2", 54, "On-grid L2 Current", sensor.AC),
		frequency("fgrid2", 56, "On-grid L2 Frequency", sensor.AC),
		power("pgrid2", 60, "On-grid L2 Power", sensor.AC),
		voltage("vgrid3", 62, "On-grid L3 Voltage", sensor.AC),
		current("igrid3", 64, "On-grid L3 Current", sensor.AC),
		frequency("fgrid3", 66, "On-grid L3 Frequency", sensor.AC),
		power("pgrid3", 70, "On-grid L3 Power", sensor.AC),
		enum2("grid_mode", 72, gridModes, "Grid Mode", sensor.PV),
		power("total_inverter_power", 76, "Total Power", sensor.AC),
		powerS("active_power", 80, "Active Power", sensor.Grid),
		calculated("grid_in_out", "On-grid Mode", "", sensor.Grid, etGridInOut),
		reactive("reactive_power", 84, "Reactive Power", sensor.Grid),
		apparent("apparent_power", 88, "Apparent Power", sensor.Grid),
		voltage("backup_v1", 90, "Back-up L1 Voltage", sensor.UPS),
		current("backup_i1", 92, "Back-up L1 Current", sensor.UPS),
		frequency("backup_f1", 94, "Back-up L1 Frequency", sensor.UPS),
		integer("load_mode1", 96, "Load Mode L1", "", ""),
		power("backup_p1", 100, "Back-up L1 Power", sensor.UPS),
		voltage("backup_v2", 102, "Back-up L2 Voltage", sensor.UPS),
		current("backup_i2", 104, "Back-up L2 Current", sensor.UPS),
		frequency("backup_f2", 106, "Back-up L2 Frequency", sensor.UPS),
		integer("load_mode2", 108, "Load Mode L2", "", ""),
		power("backup_p2", 112, "Back-up L2 Power", sensor.UPS),
		voltage("backup_v3", 114, "Back-up L3 Voltage", sensor.UPS),
		current("backup_i3", 116, "Back-up L3 Current", sensor.UPS),
		frequency("backup_f3", 118, "Back-up L3 Frequency", sensor.UPS),
		integer("load_mode3", 120, "Load Mode L3", "", ""),
		power("backup_p3", 124, "Back-up L3 Power", sensor.UPS),
		power("load_p1", 128, "Load L1", sensor.AC),
		power("load_p2", 132, "Load L2", sensor.AC),
		power("load_p3", 136, "Load L3", sensor.AC),
		power("backup_ptotal", 140, "Back-up Load", sensor.UPS),
		power("load_ptotal", 144, "Load", sensor.AC),
		integer("ups_load", 146, "Ups Load", "%", sensor.UPS),
		temp("temperature_air", 148, "Inverter Temperature (Air)", sensor.AC),
		temp("temperature_module", 150, "Inverter Temperature (Module)", ""),
		temp("temperature", 152, "Inverter Temperature (Radiator)", sensor.AC),
		integer("function_bit", 154, "Function Bit", "", ""),
		voltage("bus_voltage", 156, "Bus Voltage", ""),
		voltage("nbus_voltage", 158, "NBus Voltage", ""),
		voltage("vbattery1", 160, "Battery Voltage", sensor.Battery),
		current("ibattery1", 162, "Battery Current", sensor.Battery),
		calculated("pbattery1", "Battery Power", "W", sensor.Battery, etBatteryPower),
		enum2("battery_mode", etBatteryModeOffset, batteryModesET, "Battery Mode", sensor.Battery),
		integer("warning_code", 170, "Warning code", "", ""),
		enum2("safety_country", 172, safetyCountries, "Safety Country", sensor.AC),
		enum2("work_mode", 174, workModesET, "Work Mode", ""),
		integer("operation_mode", 176, "Operation Mode code", "", ""),
		bitmap("errors", 178, errorCodes, "Errors", ""),
		energy4("e_total", 182, "Total PV Generation", sensor.PV),
		energy4("e_day", 186, "Today's PV Generation", sensor.PV),
		energy4("e_total_exp", 190, "Total Energy (export)", sensor.AC),
		long("h_total", 194, "Hours Total", "h", sensor.PV),
		energy("e_day_exp", 198, "Today Energy (export)", sensor.AC),
		energy4("e_total_imp", 200, "Total Energy (import)", sensor.AC),
		energy("e_day_imp", 204, "Today Energy (import)", sensor.AC),
		energy4("e_load_total", 206, "Total Load", sensor.AC),
		energy("e_load_day", 210, "Today Load", sensor.AC),
		energy4("e_bat_charge_total", 212, "Total Battery Charge", sensor.Battery),
		energy("e_bat_charge_day", 216, "Today Battery Charge", sensor.Battery),
		energy4("e_bat_discharge_total", 218, "Total Battery Discharge", sensor.Battery),
		energy("e_bat_discharge_day", 222, "Today Battery Discharge", sensor.Battery),
		bitmap("diagnose_result", 240, diagStatusCodes, "Diag Status", ""),
		calculated("house_consumption", "House Consumption", "W", sensor.AC, etHouseConsumption),
	}
}

// etPVPower sums the per-string PV powers, undefined strings count as 0.
func etPVPower(block *sensor.Block) (interface{}, bool) {
	total := 0
	for _, offset := range []int{10, 18} {
		if value, ok := rawUint32(block, offset); ok && value != 0xFFFFFFFF {
			total += value
		}
	}
	return total, true
}

// etBatteryPower multiplies battery voltage and current.
func etBatteryPower(block *sensor.Block) (interface{}, bool) {
	v, ok := scaled10(block, 160)
	if !ok {
		return nil, false
	}
	i, ok := scaled10(block, 162)
	if !ok {
		return nil, false
	}
	return round(v * i), true
}

// etGridInOut derives the grid direction label from the active power sign.
func etGridInOut(block *sensor.Block) (interface{}, bool) {
	power, ok := rawInt16(block, 80)
	if !ok {
		return nil, false
	}
	switch {
	case power < -90:
		return gridInOutModes[2], true
	case power >= 90:
		return gridInOutModes[1], true
	default:
		return gridInOutModes[0], true
	}
}

// etHouseConsumption is PV power plus battery power minus grid export.
func etHouseConsumption(block *sensor.Block) (interface{}, bool) {
	pv, _ := etPVPower(block)
	battery, ok := etBatteryPower(block)
	if !ok {
		return nil, false
	}
	grid, ok := rawInt16(block, 80)
	if !ok {
		return nil, false
	}
	return pv.(int) + battery.(int) - grid, true
}

func etBatterySensors() []sensor.Descriptor {
	return []sensor.Descriptor{
		integer("battery_bms", 0, "Battery BMS", "", sensor.Battery),
		integer("battery_index", 2, "Battery Index", "", sensor.Battery),
		integer("battery_status", 4, "Battery Status", "", sensor.Battery),
		temp("battery_temperature", 6, "Battery Temperature", sensor.Battery),
		integer("battery_charge_limit", 8, "Battery Charge Limit", "A", sensor.Battery),
		integer("battery_discharge_limit", 10, "Battery Discharge Limit", "A", sensor.Battery),
		integer("battery_error_l", 12, "Battery Error L", "", sensor.Battery),
		integer("battery_soc", 14, "Battery State of Charge", "%", sensor.Battery),
		integer("battery_soh", 16, "Battery State of Health", "%", sensor.Battery),
		integer("battery_modules", 18, "Battery Modules", "", sensor.Battery),
		integer("battery_warning_l", 20, "Battery Warning L", "", sensor.Battery),
		integer("battery_protocol", 22, "Battery Protocol", "", sensor.Battery),
		integer("battery_error_h", 24, "Battery Error H", "", sensor.Battery),
		integer("battery_warning_h", 28, "Battery Warning H", "", sensor.Battery),
		integer("battery_sw_version", 30, "Battery Software Version", "", sensor.Battery),
		integer("battery_hw_version", 32, "Battery Hardware Version", "", sensor.Battery),
		integer("battery_max_cell_temp_id", 34, "Battery Max Cell Temperature ID", "", sensor.Battery),
		integer("battery_min_cell_temp_id", 36, "Battery Min Cell Temperature ID", "", sensor.Battery),
		integer("battery_max_cell_voltage_id", 38, "Battery Max Cell Voltage ID", "", sensor.Battery),
		integer("battery_min_cell_voltage_id", 40, "Battery Min Cell Voltage ID", "", sensor.Battery),
		temp("battery_max_cell_temp", 42, "Battery Max Cell Temperature", sensor.Battery),
		temp("battery_min_cell_temp", 44, "Battery Min Cell Temperature", sensor.Battery),
		voltage("battery_max_cell_voltage", 46, "Battery Max Cell Voltage", sensor.Battery),
	}
}

func etMeterSensors() []sensor.Descriptor {
	return []sensor.Descriptor{
		integer("commode", 0, "Commode", "", ""),
		integer("rssi", 2, "RSSI", "", ""),
		integer("manufacture_code", 4, "Manufacture Code", "", ""),
		integer("meter_test_status", 6, "Meter Test Status", "", ""),
		integer("meter_comm_status", 8, "Meter Communication Status", "", ""),
		power("active_power1", 10, "Active Power L1", sensor.Grid),
		power("active_power2", 12, "Active Power L2", sensor.Grid),
		power("active_power3", 14, "Active Power L3", sensor.Grid),
		power("active_power_total", 16, "Active Power Total", sensor.Grid),
		reactive("reactive_power_total", 18, "Reactive Power Total", sensor.Grid),
		decimal("meter_power_factor1", 20, 1000, "Meter Power Factor L1", "", sensor.Grid),
		decimal("meter_power_factor2", 22, 1000, "Meter Power Factor L2", "", sensor.Grid),
		decimal("meter_power_factor3", 24, 1000, "Meter Power Factor L3", "", sensor.Grid),
		decimal("meter_power_factor", 26, 1000, "Meter Power Factor", "", sensor.Grid),
		frequency("meter_freq", 28, "Meter Frequency", sensor.Grid),
		float32Sensor("meter_e_total_exp", 30, "Meter Total Energy (export)", "kWh", sensor.Grid),
		float32Sensor("meter_e_total_imp", 34, "Meter Total Energy (import)", "kWh", sensor.Grid),
		power4("meter_active_power1", 38, "Meter Active Power L1", sensor.Grid),
		power4("meter_active_power2", 42, "Meter Active Power L2", sensor.Grid),
		power4("meter_active_power3", 46, "Meter Active Power L3", sensor.Grid),
		power4("meter_active_power_total", 50, "Meter Active Power Total", sensor.Grid),
		reactive4("meter_reactive_power1", 54, "Meter Reactive Power L1", sensor.Grid),
		reactive4("meter_reactive_power2", 58, "Meter Reactive Power L2", sensor.Grid),
		reactive4("meter_reactive_power3", 62, "Meter Reactive Power L3", sensor.Grid),
		reactive4("meter_reactive_power_total", 66, "Meter Reactive Power Total", sensor.Grid),
		apparent4("meter_apparent_power1", 70, "Meter Apparent Power L1", sensor.Grid),
		apparent4("meter_apparent_power2", 74, "Meter Apparent Power L2", sensor.Grid),
		apparent4("meter_apparent_power3", 78, "Meter Apparent Power L3", sensor.Grid),
		apparent4("meter_apparent_power_total", 82, "Meter Apparent Power Total", sensor.Grid),
		integer("meter_type", 86, "Meter Type", "", sensor.Grid),
		integer("meter_sw_version", 88, "Meter Software Version", "", sensor.Grid),
	}
}

func etSettings() []sensor.Descriptor {
	return []sensor.Descriptor{
		writable(integer("comm_address", 45127, "Communication Address", "", ""), &sensor.Range{Min: 1, Max: 247}),
		writable(timestamp("time", 45200, "Inverter time"), nil),
		writable(integer("sensitivity_check", 45246, "Sensitivity Check Mode", "", sensor.AC), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("cold_start", 45248, "Cold Start", "", sensor.AC), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("shadow_scan", 45251, "Shadow Scan", "", sensor.PV), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("backup_supply", 45252, "Backup Supply", "", sensor.UPS), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("unbalanced_output", 45264, "Unbalanced Output", "", sensor.AC), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("battery_capacity", 45350, "Battery Capacity", "Ah", sensor.Battery), nil),
		writable(integer("battery_modules", 45351, "Battery Modules", "", sensor.Battery), nil),
		writable(voltage("battery_charge_voltage", 45352, "Battery Charge Voltage", sensor.Battery), nil),
		writable(current("battery_charge_current", 45353, "Battery Charge Current", sensor.Battery), nil),
		writable(voltage("battery_discharge_voltage", 45354, "Battery Discharge Voltage", sensor.Battery), nil),
		writable(current("battery_discharge_current", 45355, "Battery Discharge Current", sensor.Battery), nil),
		writable(integer("battery_discharge_depth", 45356, "Battery Discharge Depth", "%", sensor.Battery), &sensor.Range{Min: 0, Max: 100}),
		writable(voltage("battery_discharge_voltage_offline", 45357, "Battery Discharge Voltage (off-line)", sensor.Battery), nil),
		writable(integer("battery_discharge_depth_offline", 45358, "Battery Discharge Depth (off-line)", "%", sensor.Battery), &sensor.Range{Min: 0, Max: 100}),
		writable(decimal("power_factor", 45482, 100, "Power Factor", "", ""), &sensor.Range{Min: -1, Max: 1}),
		writable(integer("work_mode", 47000, "Work Mode", "", sensor.AC), &sensor.Range{Min: 0, Max: 5}),
		writable(integer("battery_soc_protection", 47500, "Battery SoC Protection", "", sensor.Battery), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("grid_export", 47509, "Grid Export Enabled", "", sensor.Grid), &sensor.Range{Min: 0, Max: 1}),
		writable(integer("grid_export_limit", 47510, "Grid Export Limit", "W", sensor.Grid), &sensor.Range{Min: 0, Max: 10000}),
	}
}
