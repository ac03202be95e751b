package app

import (
	"context"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/cmd/goodwe/options"
	"github.com/marcelblijleven/goodwe/pkg/publisher"
)

func newPublishCmd(o *options.Options) *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Periodically publish runtime data over MQTT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := publisher.LoadConfig(configFile)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := publisher.New(cfg, s)
			if err != nil {
				return err
			}
			klog.V(1).InfoS("Publisher started", "inverter", s.DeviceInfo().String(), "topic", p.Topic())
			if err := p.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "publisher.yaml", "Publisher config file")
	return cmd
}
