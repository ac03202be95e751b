// Package catalog holds the per-family register maps: which data
// blocks an inverter family publishes, the sensors inside them and the
// writable settings. The maps are transcriptions of the registers the
// vendor firmware is known to expose.
package catalog

import (
	"github.com/pkg/errors"

	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

// Block is one readable run of registers.
type Block struct {
	Name string
	// Offset is the register offset passed to the read command. AA55
	// blocks are requested by payload type instead and leave it 0.
	Offset int
	// Size is the expected payload size in bytes.
	Size int
	// ByteAddressed marks blocks whose sensors use byte offsets into
	// the payload instead of register addresses.
	ByteAddressed bool
	Sensors       []sensor.Descriptor
}

// Catalog is the full register map of one inverter family.
type Catalog struct {
	Runtime Block
	// Battery and Meter are extra runtime blocks, nil when the family
	// does not publish them.
	Battery *Block
	Meter   *Block
	// Settings are holding registers read and written individually.
	Settings []sensor.Descriptor
	// SettingsBlock is set on families that publish settings as one
	// readable block.
	SettingsBlock *Block
}

// Blocks returns all runtime blocks in read order.
func (c *Catalog) Blocks() []*Block {
	blocks := []*Block{&c.Runtime}
	if c.Battery != nil {
		blocks = append(blocks, c.Battery)
	}
	if c.Meter != nil {
		blocks = append(blocks, c.Meter)
	}
	return blocks
}

// Setting looks a writable or readable setting up by id, checking the
// settings block as well.
func (c *Catalog) Setting(id string) (sensor.Descriptor, bool) {
	for _, d := range c.Settings {
		if d.ID == id {
			return d, true
		}
	}
	if c.SettingsBlock != nil {
		for _, d := range c.SettingsBlock.Sensors {
			if d.ID == id {
				return d, true
			}
		}
	}
	return sensor.Descriptor{}, false
}

// Validate checks that every sensor fits its block and that no two
// sensors claim the same payload bytes.
func (c *Catalog) Validate() error {
	for _, block := range c.Blocks() {
		if err := block.validate(); err != nil {
			return err
		}
	}
	if c.SettingsBlock != nil {
		if err := c.SettingsBlock.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) validate() error {
	claimed := make([]string, b.Size)
	for _, d := range b.Sensors {
		if d.Decode == sensor.Calculated {
			continue
		}
		start, end, ok := b.span(d)
		if !ok || end > b.Size {
			return errors.Errorf("sensor %s does not fit block %s", d.ID, b.Name)
		}
		for i := start; i < end; i++ {
			if claimed[i] != "" {
				return errors.Errorf("sensors %s and %s overlap in block %s", claimed[i], d.ID, b.Name)
			}
			claimed[i] = d.ID
		}
	}
	return nil
}

func (b *Block) span(d sensor.Descriptor) (start, end int, ok bool) {
	start = d.Address
	if !b.ByteAddressed {
		start = (d.Address - b.Offset) * 2
	}
	if start < 0 {
		return 0, 0, false
	}
	switch d.Decode {
	case sensor.ByteL:
		return start + 1, start + 2, true
	case sensor.ByteH:
		return start, start + 1, true
	default:
		return start, start + d.Length, true
	}
}
