package catalog

import (
	"strings"

	"github.com/pkg/errors"
)

// Family identifies the protocol generation of an inverter. The many
// marketing model lines collapse into three families speaking the same
// registers: the ET hybrids, the ES storage hybrids on the AA55
// dialect and the DT grid inverters.
type Family string

const (
	FamilyET Family = "ET"
	FamilyES Family = "ES"
	FamilyDT Family = "DT"
)

// ParseFamily accepts a family name or any of its model line aliases.
func ParseFamily(name string) (Family, error) {
	switch strings.ToUpper(name) {
	case "ET", "EH", "BT", "BH":
		return FamilyET, nil
	case "ES", "EM", "BP":
		return FamilyES, nil
	case "DT", "MS", "NS", "XS":
		return FamilyDT, nil
	default:
		return "", errors.Errorf("unknown inverter family %q", name)
	}
}

// ForFamily returns the register catalog of the family.
func ForFamily(family Family) *Catalog {
	switch family {
	case FamilyES:
		return ES()
	case FamilyDT:
		return DT()
	default:
		return ET()
	}
}

// Serial number tags identifying the family, matched as substrings the
// way the vendor tools do.
var (
	etModelTags = []string{
		"ETU", "ETL", "ETR", "BHN", "EHU", "BHU", "EHR", "BTU",
		"ESN", "EBN", "EMN", "SPN", "ERN", "ESC", "HLB", "HMB", "HBB", "EOA",
		"ETT", "HTA", "HUB", "AEB", "SPB", "CUB", "EUB", "HEB", "ERB", "BTT",
		"ETF", "ARB", "URB", "EBR",
		"AES", "HHI", "ABP", "EHB", "HSB", "HUA", "CUA",
		"ETC", "BTC", "BTN",
	}
	esModelTags = []string{"ESU", "EMU", "ESA", "BPS", "BPU", "EMJ", "IJL"}
	dtModelTags = []string{
		"DTU", "DTS", "MSU", "MST", "MSC", "DSN", "DTN", "DST",
		"NSU", "SSN", "SST", "SSX", "SSY", "PSB", "PSC",
	}

	singlePhaseTags = []string{
		"DSN", "DST", "NSU", "SSN", "SST", "SSX", "SSY", "MSU", "MST", "PSB", "PSC", "MSC",
		"EHB", "EHU", "EHR", "HSB",
		"ESN", "EMN", "ERN", "EBN", "HLB", "HMB", "HBB", "SPN",
	}
)

// FamilyFromSerial matches the serial number against the known model
// tags. The second result is false when no tag matches.
func FamilyFromSerial(serial string) (Family, bool) {
	for _, tag := range etModelTags {
		if strings.Contains(serial, tag) {
			return FamilyET, true
		}
	}
	for _, tag := range esModelTags {
		if strings.Contains(serial, tag) {
			return FamilyES, true
		}
	}
	for _, tag := range dtModelTags {
		if strings.Contains(serial, tag) {
			return FamilyDT, true
		}
	}
	return "", false
}

// IsSinglePhase reports whether the serial number belongs to a single
// phase model.
func IsSinglePhase(serial string) bool {
	for _, tag := range singlePhaseTags {
		if strings.Contains(serial, tag) {
			return true
		}
	}
	return false
}
