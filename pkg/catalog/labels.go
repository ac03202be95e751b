package catalog

// Label tables for the enum and bitmap registers. Values outside a
// table render as "Unknown (n)".

var pvModes = map[int]string{
	0: "PV panels not connected",
	1: "PV panels connected, no power",
	2: "PV panels connected, producing power",
}

var gridModes = map[int]string{
	0: "Not connected to grid",
	1: "Connected to grid",
	2: "Fault",
}

var gridInOutModes = map[int]string{
	0: "Idle",
	1: "Exporting Power",
	2: "Importing Power",
}

var batteryModesET = map[int]string{
	0: "No battery",
	1: "Standby",
	2: "Discharge",
	3: "Charge",
	4: "To be charged",
	5: "To be discharged",
}

var batteryModesES = map[int]string{
	0: "No battery or battery disconnected",
	1: "Spare",
	2: "Discharge",
	3: "Charge",
	4: "To be charged",
	5: "To be discharged",
}

var workModesET = map[int]string{
	0: "Wait Mode",
	1: "Normal (On-Grid)",
	2: "Normal (Off-Grid)",
	3: "Fault Mode",
	4: "Flash Mode",
	5: "Check Mode",
}

var workModesDT = map[int]string{
	0: "Wait Mode",
	1: "Normal",
	2: "Error",
	4: "Check Mode",
}

var workModesES = map[int]string{
	0: "Inverter On - Standby",
	1: "Inverter On",
	2: "Inverter Abnormal, stopping PV",
	3: "Inverter Severely Abnormal, stopping all",
}

var loadModes = map[int]string{
	0: "The inverter is disconnected from the load",
	1: "The inverter is connected to the load",
}

var energyModes = map[int]string{
	0:   "Check Mode",
	1:   "Wait Mode",
	2:   "Normal (On-Grid)",
	4:   "Normal (Off-Grid)",
	8:   "Flash Mode",
	16:  "Fault Mode",
	32:  "Battery Standby",
	64:  "Battery Charging",
	128: "Battery Discharging",
}

var errorCodes = map[int]string{
	0:  "GFCI Device Failure",
	1:  "AC HCT Failure",
	3:  "DCI Consistency Failure",
	4:  "GFCI Consistency Failure",
	7:  "Relay Device Failure",
	8:  "Isolation Failure",
	9:  "DC Bus High",
	11: "AC HCT Check Failure",
	12: "Utility Phase Failure",
	13: "Over Temperature",
	14: "Auto Test Failure",
	15: "PV Over Voltage",
	16: "Fan Failure",
	17: "Vac Failure",
	18: "Isolation Check Failure",
	19: "DC Injection High",
	22: "Fac Consistency Failure",
	23: "Vac Consistency Failure",
	25: "Relay Check Failure",
	29: "Fac Failure",
	30: "EEPROM R/W Failure",
	31: "Internal Communication Failure",
}

var diagStatusCodes = map[int]string{
	0:  "Battery voltage low",
	1:  "Battery SOC low",
	2:  "Battery SOC in back",
	3:  "BMS: charge disabled",
	4:  "Self-use off",
	5:  "Discharge time on",
	6:  "Charge time on",
	7:  "Discharge driver on",
	8:  "BMS: discharge disabled",
	9:  "Battery overcharged",
	10: "Battery voltage high",
	11: "Charge current low",
	12: "Export power limit set",
	13: "SOC delta too volatile",
	14: "Battery self discharge too high",
}

var deratingModeCodes = map[int]string{
	0: "Active power limited by grid",
	1: "Reactive power setting",
	2: "Frequency derating",
	3: "Vac high derating",
	4: "Over temperature derating",
	5: "PV over voltage derating",
}

// A subset of the vendor safety country table, the long tail of codes
// falls back to the numeric rendering.
var safetyCountries = map[int]string{
	0:  "Italy",
	1:  "Czech",
	2:  "Germany",
	3:  "Spain",
	4:  "Greece",
	5:  "Denmark",
	6:  "Belgium",
	7:  "Romania",
	8:  "G98",
	9:  "Australia",
	10: "France",
	11: "China",
	13: "Poland",
	14: "South Africa",
	15: "AustraliaL",
	16: "Brazil",
	17: "Thailand MEA",
	18: "Thailand PEA",
	20: "Korea",
	21: "Sweden",
	22: "Europe General",
	25: "Netherlands",
	26: "Japan",
	28: "India",
	32: "50Hz 230Vac Default",
	33: "Warehouse",
}
