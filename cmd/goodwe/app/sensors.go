package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marcelblijleven/goodwe/cmd/goodwe/options"
	"github.com/marcelblijleven/goodwe/pkg/catalog"
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

func newSensorsCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sensors",
		Short: "List the sensors and settings of an inverter family",
		Long: `List the sensors and settings of an inverter family.
With --family the catalog is listed offline, otherwise the inverter
named by --host is connected and identified first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := o.ParseFamily()
			if err != nil {
				return err
			}
			var sensors, settings []sensor.Descriptor
			if family != "" {
				c := catalog.ForFamily(family)
				for _, block := range c.Blocks() {
					sensors = append(sensors, block.Sensors...)
				}
				settings = append(settings, c.Settings...)
				if c.SettingsBlock != nil {
					settings = append(settings, c.SettingsBlock.Sensors...)
				}
			} else {
				ctx, cancel := signalContext()
				defer cancel()
				s, err := connect(ctx, o)
				if err != nil {
					return err
				}
				defer s.Close()
				family = s.Family()
				sensors = s.Sensors()
				settings = s.Settings()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s sensors:\n", family)
			for _, d := range sensors {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", d.ID, d.Unit, d.Name)
			}
			fmt.Fprintf(w, "%s settings:\n", family)
			for _, d := range settings {
				access := "ro"
				if d.Writable {
					access = "rw"
				}
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.ID, access, d.Unit, d.Name)
			}
			return w.Flush()
		},
	}
}
