package app

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelblijleven/goodwe/pkg/discovery"
)

func newScanCmd() *cobra.Command {
	var broadcast string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find GoodWe inverters on the local network",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			devices, err := discovery.Search(ctx, discovery.Options{Broadcast: broadcast, Timeout: timeout})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), devices)
		},
	}
	cmd.Flags().StringVar(&broadcast, "broadcast", discovery.DefaultBroadcast, "Broadcast address the probe is sent to")
	cmd.Flags().DurationVar(&timeout, "scan-timeout", time.Second, "How long to collect responses")
	return cmd
}
