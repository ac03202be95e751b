package inverter

import (
	"context"

	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/pkg/catalog"
	"github.com/marcelblijleven/goodwe/pkg/protocol"
	"github.com/marcelblijleven/goodwe/pkg/transport"
)

// detect finds the family of an unidentified inverter by probing the
// dialects in turn. The AA55 identity request is tried first, only the
// ES generation answers it. The modbus families are told apart by the
// model tag embedded in their serial number.
func detect(ctx context.Context, tr transport.Transport, kind transport.Kind) (catalog.Family, *DeviceInfo, error) {
	var failures []error

	// Probes go out with a reduced retry budget, a dialect the device
	// does not speak never answers.
	probe := tr.Exchange
	if p, ok := tr.(transport.Prober); ok {
		probe = p.Probe
	}

	if kind != transport.TCP {
		// AA55 is serial framing carried over UDP, TCP connected
		// devices never speak it.
		cmd := protocol.NewAA55Command(esDeviceInfoPayload, esDeviceInfoResponse)
		frame, err := probe(ctx, cmd)
		if err == nil {
			info, perr := parseESDeviceInfo(cmd.Trim(frame))
			if perr == nil {
				return catalog.FamilyES, info, nil
			}
			failures = append(failures, errors.Wrap(perr, "AA55 probe"))
		} else {
			failures = append(failures, errors.Wrap(err, "AA55 probe"))
		}
		klog.V(3).InfoS("Inverter did not answer AA55 identity probe")
	}

	for _, family := range []catalog.Family{catalog.FamilyET, catalog.FamilyDT} {
		p := newProfile(family, kind)
		cmd := p.deviceInfoCommand()
		frame, err := probe(ctx, cmd)
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "%s probe", family))
			klog.V(3).InfoS("Inverter did not answer identity probe", "family", family)
			continue
		}
		info, err := p.parseDeviceInfo(cmd.Trim(frame))
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "%s probe", family))
			continue
		}
		// Trust the serial number model tag over the probe that
		// happened to get through, both modbus dialects share framing.
		if detected, ok := catalog.FamilyFromSerial(info.SerialNumber); ok && detected != family {
			klog.V(2).InfoS("Serial number names a different family", "probed", family, "detected", detected, "serialNumber", info.SerialNumber)
			p = newProfile(detected, kind)
			cmd = p.deviceInfoCommand()
			if frame, err = probe(ctx, cmd); err != nil {
				failures = append(failures, errors.Wrapf(err, "%s probe", detected))
				continue
			}
			if info, err = p.parseDeviceInfo(cmd.Trim(frame)); err != nil {
				failures = append(failures, errors.Wrapf(err, "%s probe", detected))
				continue
			}
			return detected, info, nil
		}
		return family, info, nil
	}

	return "", nil, errors.Wrap(ErrDetectFailed, utilerrors.NewAggregate(failures).Error())
}
