package app

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/marcelblijleven/goodwe/cmd/goodwe/options"
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

func newReadCmd(o *options.Options) *cobra.Command {
	var deviceInfo bool
	cmd := &cobra.Command{
		Use:   "read [sensor-id ...]",
		Short: "Read runtime data, all sensors or the named ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()

			if deviceInfo {
				return printJSON(cmd.OutOrStdout(), s.DeviceInfo())
			}

			data, err := s.ReadRuntimeData(ctx)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printJSON(cmd.OutOrStdout(), data)
			}
			selected := sensor.NewRuntimeData()
			for _, id := range args {
				value, ok := data.Get(id)
				if !ok {
					return errors.Errorf("no value for sensor %q", id)
				}
				selected.Set(id, value)
			}
			return printJSON(cmd.OutOrStdout(), selected)
		},
	}
	cmd.Flags().BoolVar(&deviceInfo, "device-info", false, "Print the device identity block instead of runtime data")
	return cmd
}
