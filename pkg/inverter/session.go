package inverter

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/pkg/catalog"
	"github.com/marcelblijleven/goodwe/pkg/protocol"
	"github.com/marcelblijleven/goodwe/pkg/sensor"
	"github.com/marcelblijleven/goodwe/pkg/transport"
	"github.com/marcelblijleven/goodwe/pkg/utils/binutil"
	"github.com/marcelblijleven/goodwe/pkg/utils/uuidutil"
)

// Session is a connected inverter. It owns the transport, knows the
// family catalog and turns register exchanges into typed data.
type Session struct {
	id      string
	addr    transport.Address
	tr      transport.Transport
	profile *profile
	info    *DeviceInfo
}

// Connect opens a transport to addr and identifies the inverter. An
// empty family runs protocol detection first.
func Connect(ctx context.Context, addr transport.Address, family catalog.Family, opts transport.Options) (*Session, error) {
	tr, err := transport.Connect(ctx, addr, opts)
	if err != nil {
		return nil, err
	}
	s, err := newSession(ctx, addr, tr, family)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	return s, nil
}

func newSession(ctx context.Context, addr transport.Address, tr transport.Transport, family catalog.Family) (*Session, error) {
	s := &Session{id: uuidutil.UUID(), addr: addr, tr: tr}
	if family == "" {
		detected, info, err := detect(ctx, tr, addr.Kind)
		if err != nil {
			return nil, err
		}
		s.profile = newProfile(detected, addr.Kind)
		s.info = info
		klog.V(2).InfoS("Detected inverter", "session", s.id, "address", addr.String(), "family", detected, "serialNumber", info.SerialNumber)
		return s, nil
	}
	s.profile = newProfile(family, addr.Kind)
	info, err := s.readDeviceInfo(ctx)
	if err != nil {
		return nil, err
	}
	s.info = info
	klog.V(2).InfoS("Connected inverter", "session", s.id, "address", addr.String(), "family", family, "serialNumber", info.SerialNumber)
	return s, nil
}

// DeviceInfo answers the identity block read during Connect.
func (s *Session) DeviceInfo() *DeviceInfo {
	return s.info
}

// Family answers the detected or configured inverter family.
func (s *Session) Family() catalog.Family {
	return s.profile.family
}

// Sensors lists the runtime sensors of this inverter.
func (s *Session) Sensors() []sensor.Descriptor {
	var all []sensor.Descriptor
	for _, block := range s.profile.catalog.Blocks() {
		all = append(all, block.Sensors...)
	}
	return all
}

// Settings lists the settings of this inverter, writable ones included.
func (s *Session) Settings() []sensor.Descriptor {
	c := s.profile.catalog
	if c.SettingsBlock != nil {
		return append(append([]sensor.Descriptor{}, c.Settings...), c.SettingsBlock.Sensors...)
	}
	return c.Settings
}

func (s *Session) Close() error {
	return s.tr.Close()
}

func (s *Session) readDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	cmd := s.profile.deviceInfoCommand()
	frame, err := s.tr.Exchange(ctx, cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "reading device info from %s", s.addr.String())
	}
	info, err := s.profile.parseDeviceInfo(cmd.Trim(frame))
	if err != nil {
		return nil, err
	}
	if info.Family == catalog.FamilyDT && info.ModelName == "" {
		// Some DT firmwares leave the model registers of the identity
		// block blank and publish the name elsewhere.
		if name, err := s.readDTModelName(ctx); err == nil {
			info.ModelName = name
		} else {
			klog.V(3).InfoS("Inverter sent no model name", "session", s.id, "err", err)
		}
	}
	return info, nil
}

func (s *Session) readDTModelName(ctx context.Context) (string, error) {
	cmd := s.profile.read(catalog.DTModelOffset, catalog.DTModelCount)
	frame, err := s.tr.Exchange(ctx, cmd)
	if err != nil {
		return "", err
	}
	payload := cmd.Trim(frame)
	if len(payload) < 16 {
		return "", errors.Errorf("model name payload too short: %d bytes", len(payload))
	}
	return cleanASCII(payload[0:16]), nil
}

// ReadRuntimeData reads all runtime blocks and decodes them into one
// ordered result. Sensors the device reports as undefined are left out.
func (s *Session) ReadRuntimeData(ctx context.Context) (*sensor.RuntimeData, error) {
	c := s.profile.catalog
	data := sensor.NewRuntimeData()
	runtime, err := s.readBlock(ctx, &c.Runtime)
	if err != nil {
		return nil, err
	}
	decodeBlock(data, &c.Runtime, runtime)
	// The battery block of an inverter without a battery holds garbage,
	// the battery mode register of the runtime block tells them apart.
	if c.Battery != nil && catalog.ETHasBattery(runtime) {
		blk, err := s.readBlock(ctx, c.Battery)
		if err != nil {
			return nil, err
		}
		decodeBlock(data, c.Battery, blk)
	}
	if c.Meter != nil {
		blk, err := s.readBlock(ctx, c.Meter)
		if err != nil {
			return nil, err
		}
		decodeBlock(data, c.Meter, blk)
	}
	return data, nil
}

// ReadSettingsData reads and decodes every known setting.
func (s *Session) ReadSettingsData(ctx context.Context) (*sensor.RuntimeData, error) {
	data := sensor.NewRuntimeData()
	c := s.profile.catalog
	if c.SettingsBlock != nil {
		blk, err := s.readBlock(ctx, c.SettingsBlock)
		if err != nil {
			return nil, err
		}
		decodeBlock(data, c.SettingsBlock, blk)
	}
	for _, d := range c.Settings {
		value, err := s.readSetting(ctx, &d)
		if err != nil {
			klog.V(2).InfoS("Failed to read setting", "session", s.id, "setting", d.ID, "err", err)
			continue
		}
		data.Set(d.ID, value)
	}
	return data, nil
}

// ReadSetting reads a single setting by id.
func (s *Session) ReadSetting(ctx context.Context, id string) (interface{}, error) {
	d, ok := s.profile.catalog.Setting(id)
	if !ok {
		return nil, errors.Wrap(ErrUnknownSetting, id)
	}
	if s.profile.catalog.SettingsBlock != nil {
		// Settings of the AA55 families live in one block, read it
		// whole and pick the value out.
		blk, err := s.readBlock(ctx, s.profile.catalog.SettingsBlock)
		if err != nil {
			return nil, err
		}
		value, _, err := d.Read(blk)
		return value, err
	}
	return s.readSetting(ctx, &d)
}

func (s *Session) readSetting(ctx context.Context, d *sensor.Descriptor) (interface{}, error) {
	count := (d.Length + d.Length%2) / 2
	cmd := s.profile.read(d.Address, count)
	frame, err := s.tr.Exchange(ctx, cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "reading setting %s", d.ID)
	}
	value, _, err := d.Read(sensor.NewBlock(cmd, cmd.Trim(frame)))
	return value, err
}

// WriteSetting writes a numeric setting. The value is range checked
// against the catalog before anything is sent.
func (s *Session) WriteSetting(ctx context.Context, id string, value float64) error {
	d, ok := s.profile.catalog.Setting(id)
	if !ok {
		return errors.Wrap(ErrUnknownSetting, id)
	}
	if !d.Writable {
		return errors.Wrap(ErrReadOnlySetting, id)
	}
	var current []byte
	if d.Decode == sensor.ByteH || d.Decode == sensor.ByteL {
		// Registers hold 16 bits, writing half of one needs the other
		// half read first.
		cmd := s.profile.read(d.Address, 1)
		frame, err := s.tr.Exchange(ctx, cmd)
		if err != nil {
			return errors.Wrapf(err, "reading setting %s before write", d.ID)
		}
		current = cmd.Trim(frame)
	}
	raw, err := d.EncodeValue(value, current)
	if err != nil {
		return err
	}
	var cmd *protocol.Command
	if len(raw) <= 2 {
		cmd = s.profile.write(d.Address, int(binutil.ParseUint16(raw)))
	} else {
		cmd = s.profile.writeMulti(d.Address, raw)
	}
	klog.V(2).InfoS("Writing setting", "session", s.id, "setting", d.ID, "value", value)
	if _, err := s.tr.Exchange(ctx, cmd); err != nil {
		return errors.Wrapf(err, "writing setting %s", d.ID)
	}
	return nil
}

// SetTime sets the inverter clock.
func (s *Session) SetTime(ctx context.Context, t time.Time) error {
	encoded := sensor.EncodeTimestamp(t)
	var cmd *protocol.Command
	if s.profile.family == catalog.FamilyES {
		payload := append([]byte{0x03, 0x02, 0x06}, encoded...)
		cmd = protocol.NewAA55Command(payload, 0x0382)
	} else {
		d, ok := s.profile.catalog.Setting("time")
		if !ok {
			return errors.Wrap(ErrUnknownSetting, "time")
		}
		cmd = s.profile.writeMulti(d.Address, encoded)
	}
	klog.V(2).InfoS("Setting inverter time", "session", s.id, "time", t.Format(time.RFC3339))
	if _, err := s.tr.Exchange(ctx, cmd); err != nil {
		return errors.Wrap(err, "setting inverter time")
	}
	return nil
}

// GetGridExportLimit reads the export power limit, in watts on the
// hybrid families and percent of rated power on DT.
func (s *Session) GetGridExportLimit(ctx context.Context) (int, error) {
	value, err := s.ReadSetting(ctx, "grid_export_limit")
	if err != nil {
		return 0, err
	}
	limit, ok := value.(int)
	if !ok {
		return 0, errors.Errorf("unexpected export limit value %v", value)
	}
	return limit, nil
}

// SetGridExportLimit writes the export power limit. The ES family has
// a dedicated command for it instead of a register write.
func (s *Session) SetGridExportLimit(ctx context.Context, limit int) error {
	if s.profile.family == catalog.FamilyES {
		if limit < 0 || limit > 10000 {
			return errors.Errorf("export limit %d out of range", limit)
		}
		payload := binutil.AppendUint16([]byte{0x03, 0x35, 0x02}, uint16(limit))
		cmd := protocol.NewAA55Command(payload, 0x03B5)
		if _, err := s.tr.Exchange(ctx, cmd); err != nil {
			return errors.Wrap(err, "setting export limit")
		}
		return nil
	}
	return s.WriteSetting(ctx, "grid_export_limit", float64(limit))
}

// ReadRegisterRange reads count raw registers starting at offset,
// the diagnostics escape hatch for registers no catalog covers.
func (s *Session) ReadRegisterRange(ctx context.Context, offset, count int) ([]byte, error) {
	cmd := s.profile.read(offset, count)
	frame, err := s.tr.Exchange(ctx, cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %d registers at %d", count, offset)
	}
	return cmd.Trim(frame), nil
}

func (s *Session) readBlock(ctx context.Context, block *catalog.Block) (*sensor.Block, error) {
	cmd := s.profile.blockCommand(block)
	frame, err := s.tr.Exchange(ctx, cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s block", block.Name)
	}
	payload := cmd.Trim(frame)
	if block.ByteAddressed {
		return sensor.RawBlock(payload), nil
	}
	return sensor.NewBlock(cmd, payload), nil
}

// decodeBlock decodes every sensor of the block into data. A sensor the
// payload does not cover is logged and left out, the rest of the
// reading stays usable.
func decodeBlock(data *sensor.RuntimeData, block *catalog.Block, blk *sensor.Block) {
	for _, d := range block.Sensors {
		value, ok, err := d.Read(blk)
		if err != nil {
			klog.ErrorS(err, "Dropping sensor value", "block", block.Name, "sensor", d.ID)
			continue
		}
		if !ok {
			continue
		}
		data.Set(d.ID, value)
	}
}
