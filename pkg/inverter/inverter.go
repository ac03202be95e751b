// Package inverter is the user-facing session layer. It connects a
// transport to the family catalogs, identifies the device and exposes
// runtime data reads and setting writes as single calls.
package inverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/marcelblijleven/goodwe/pkg/catalog"
)

var (
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrReadOnlySetting = errors.New("setting is not writable")
	ErrDetectFailed    = errors.New("unable to identify inverter family")
)

// DeviceInfo is the identity block read from the inverter once per
// session. Fields not reported by a family stay zero.
type DeviceInfo struct {
	Family        catalog.Family `json:"family"`
	SerialNumber  string         `json:"serialNumber"`
	ModelName     string         `json:"modelName,omitempty"`
	RatedPower    int            `json:"ratedPower,omitempty"`
	ACOutputType  int            `json:"acOutputType,omitempty"`
	ModbusVersion int            `json:"modbusVersion,omitempty"`
	DSP1Version   int            `json:"dsp1Version,omitempty"`
	DSP2Version   int            `json:"dsp2Version,omitempty"`
	DSPSVNVersion int            `json:"dspSvnVersion,omitempty"`
	ARMVersion    int            `json:"armVersion,omitempty"`
	ARMSVNVersion int            `json:"armSvnVersion,omitempty"`
	// Firmware is the combined version string, assembled when the
	// device does not report one directly.
	Firmware        string `json:"firmware,omitempty"`
	SoftwareVersion string `json:"softwareVersion,omitempty"`
	ARMFirmware     string `json:"armFirmware,omitempty"`
	SinglePhase     bool   `json:"singlePhase"`
}

func (d *DeviceInfo) String() string {
	return fmt.Sprintf("%s %s (%s)", d.Family, strings.TrimSpace(d.ModelName), d.SerialNumber)
}

func cleanASCII(raw []byte) string {
	return strings.TrimRight(string(raw), "\x00 ")
}

// parseBase36Digit decodes a single base-36 firmware revision character.
func parseBase36Digit(c byte) (int, bool) {
	value, err := strconv.ParseInt(string(c), 36, 32)
	if err != nil {
		return 0, false
	}
	return int(value), true
}

// parseDecimal reads a decimal firmware revision field, malformed
// fields count as revision 0.
func parseDecimal(s string) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return value
}
