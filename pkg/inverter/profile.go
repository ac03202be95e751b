package inverter

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/marcelblijleven/goodwe/pkg/catalog"
	"github.com/marcelblijleven/goodwe/pkg/protocol"
	"github.com/marcelblijleven/goodwe/pkg/transport"
	"github.com/marcelblijleven/goodwe/pkg/utils/binutil"
)

// Modbus communication addresses the families listen on.
const (
	ETCommAddr byte = 0xF7
	DTCommAddr byte = 0x7F
)

// AA55 request payloads and expected response types of the ES family.
var (
	esDeviceInfoPayload = []byte{0x01, 0x02, 0x00}
	esRuntimePayload    = []byte{0x01, 0x06, 0x00}
	esSettingsPayload   = []byte{0x01, 0x09, 0x00}
)

const (
	esDeviceInfoResponse uint16 = 0x0182
	esRuntimeResponse    uint16 = 0x0186
	esSettingsResponse   uint16 = 0x0189
)

// profile binds one inverter family to a concrete wire dialect. The
// modbus families speak RTU framing over UDP and standard MBAP framing
// over TCP, the ES family speaks AA55 regardless.
type profile struct {
	family  catalog.Family
	catalog *catalog.Catalog

	read       func(offset, count int) *protocol.Command
	write      func(register, value int) *protocol.Command
	writeMulti func(offset int, values []byte) *protocol.Command

	blockCommand      func(b *catalog.Block) *protocol.Command
	deviceInfoCommand func() *protocol.Command
	parseDeviceInfo   func(payload []byte) (*DeviceInfo, error)
}

func newProfile(family catalog.Family, kind transport.Kind) *profile {
	if family == catalog.FamilyES {
		return newAA55Profile()
	}
	commAddr := ETCommAddr
	if family == catalog.FamilyDT {
		commAddr = DTCommAddr
	}
	p := &profile{family: family, catalog: catalog.ForFamily(family)}
	if kind == transport.TCP {
		p.read = func(offset, count int) *protocol.Command {
			return protocol.NewModbusTCPReadCommand(commAddr, offset, count)
		}
		p.write = func(register, value int) *protocol.Command {
			return protocol.NewModbusTCPWriteCommand(commAddr, register, value)
		}
		p.writeMulti = func(offset int, values []byte) *protocol.Command {
			return protocol.NewModbusTCPWriteMultiCommand(commAddr, offset, values)
		}
	} else {
		p.read = func(offset, count int) *protocol.Command {
			return protocol.NewModbusRTUReadCommand(commAddr, offset, count)
		}
		p.write = func(register, value int) *protocol.Command {
			return protocol.NewModbusRTUWriteCommand(commAddr, register, value)
		}
		p.writeMulti = func(offset int, values []byte) *protocol.Command {
			return protocol.NewModbusRTUWriteMultiCommand(commAddr, offset, values)
		}
	}
	p.blockCommand = func(b *catalog.Block) *protocol.Command {
		return p.read(b.Offset, b.Size/2)
	}
	if family == catalog.FamilyDT {
		p.deviceInfoCommand = func() *protocol.Command {
			return p.read(catalog.DTDeviceInfoOffset, catalog.DTDeviceInfoCount)
		}
		p.parseDeviceInfo = parseDTDeviceInfo
	} else {
		p.deviceInfoCommand = func() *protocol.Command {
			return p.read(catalog.ETDeviceInfoOffset, catalog.ETDeviceInfoCount)
		}
		p.parseDeviceInfo = parseETDeviceInfo
	}
	return p
}

func newAA55Profile() *profile {
	p := &profile{family: catalog.FamilyES, catalog: catalog.ES()}
	p.read = func(offset, count int) *protocol.Command {
		return protocol.NewAA55ReadCommand(offset, count)
	}
	p.write = func(register, value int) *protocol.Command {
		return protocol.NewAA55WriteCommand(register, value)
	}
	p.writeMulti = func(offset int, values []byte) *protocol.Command {
		return protocol.NewAA55WriteMultiCommand(offset, values)
	}
	p.blockCommand = func(b *catalog.Block) *protocol.Command {
		if b.Name == "settings" {
			return protocol.NewAA55Command(esSettingsPayload, esSettingsResponse)
		}
		return protocol.NewAA55Command(esRuntimePayload, esRuntimeResponse)
	}
	p.deviceInfoCommand = func() *protocol.Command {
		return protocol.NewAA55Command(esDeviceInfoPayload, esDeviceInfoResponse)
	}
	p.parseDeviceInfo = parseESDeviceInfo
	return p
}

// parseETDeviceInfo decodes the 0x88B8 identity block.
func parseETDeviceInfo(payload []byte) (*DeviceInfo, error) {
	if len(payload) < 66 {
		return nil, errors.Errorf("device info payload too short: %d bytes", len(payload))
	}
	info := &DeviceInfo{
		Family:          catalog.FamilyET,
		ModbusVersion:   int(binutil.ParseUint16(payload[0:2])),
		RatedPower:      int(binutil.ParseUint16(payload[2:4])),
		ACOutputType:    int(binutil.ParseUint16(payload[4:6])),
		SerialNumber:    cleanASCII(payload[6:22]),
		ModelName:       cleanASCII(payload[22:32]),
		DSP1Version:     int(binutil.ParseUint16(payload[32:34])),
		DSP2Version:     int(binutil.ParseUint16(payload[34:36])),
		DSPSVNVersion:   int(binutil.ParseUint16(payload[36:38])),
		ARMVersion:      int(binutil.ParseUint16(payload[38:40])),
		ARMSVNVersion:   int(binutil.ParseUint16(payload[40:42])),
		SoftwareVersion: cleanASCII(payload[42:54]),
		ARMFirmware:     cleanASCII(payload[54:66]),
	}
	info.SinglePhase = catalog.IsSinglePhase(info.SerialNumber)
	return info, nil
}

// parseDTDeviceInfo decodes the 0x7531 identity block. The model name
// register run is blank on some firmwares, the session falls back to
// the dedicated model register block then.
func parseDTDeviceInfo(payload []byte) (*DeviceInfo, error) {
	if len(payload) < 76 {
		return nil, errors.Errorf("device info payload too short: %d bytes", len(payload))
	}
	info := &DeviceInfo{
		Family:        catalog.FamilyDT,
		SerialNumber:  cleanASCII(payload[6:22]),
		ModelName:     cleanASCII(payload[22:32]),
		DSP1Version:   int(binutil.ParseUint16(payload[66:68])),
		DSP2Version:   int(binutil.ParseUint16(payload[68:70])),
		ARMVersion:    int(binutil.ParseUint16(payload[70:72])),
		DSPSVNVersion: int(binutil.ParseUint16(payload[72:74])),
		ARMSVNVersion: int(binutil.ParseUint16(payload[74:76])),
	}
	info.Firmware = fmt.Sprintf("%d.%d.%02x", info.DSP1Version, info.DSP2Version, info.ARMVersion)
	info.SinglePhase = catalog.IsSinglePhase(info.SerialNumber)
	return info, nil
}

// parseESDeviceInfo decodes the AA55 0x0182 identity payload. The
// firmware field is five characters, two DSP revision digits each plus
// one base-36 ARM revision character.
func parseESDeviceInfo(payload []byte) (*DeviceInfo, error) {
	if len(payload) < 63 {
		return nil, errors.Errorf("device info payload too short: %d bytes", len(payload))
	}
	info := &DeviceInfo{
		Family:          catalog.FamilyES,
		Firmware:        cleanASCII(payload[0:5]),
		ModelName:       cleanASCII(payload[5:15]),
		SerialNumber:    cleanASCII(payload[31:47]),
		SoftwareVersion: cleanASCII(payload[51:63]),
	}
	if len(info.Firmware) >= 2 {
		info.DSP1Version = parseDecimal(info.Firmware[0:2])
	}
	if len(info.Firmware) >= 4 {
		info.DSP2Version = parseDecimal(info.Firmware[2:4])
	}
	if len(info.Firmware) >= 5 {
		if value, ok := parseBase36Digit(info.Firmware[4]); ok {
			info.ARMVersion = value
		}
	}
	info.SinglePhase = catalog.IsSinglePhase(info.SerialNumber)
	return info, nil
}
