package app

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/cmd/goodwe/options"
	"github.com/marcelblijleven/goodwe/pkg/inverter"
)

const ComponentGoodwe = "goodwe"

// NewGoodweCmd assembles the command tree. The connection flags are
// persistent, every subcommand that talks to an inverter shares them.
func NewGoodweCmd() *cobra.Command {
	o := options.NewDefaultOptions()
	cmd := &cobra.Command{
		Use:           ComponentGoodwe,
		Long:          `Read runtime data from GoodWe solar inverters and manage their settings over the local network.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	o.AddFlags(cmd.PersistentFlags())
	logFlags := flag.NewFlagSet(ComponentGoodwe, flag.ContinueOnError)
	klog.InitFlags(logFlags)
	cmd.PersistentFlags().AddGoFlagSet(logFlags)

	cmd.AddCommand(
		newSensorsCmd(o),
		newReadCmd(o),
		newSettingsCmd(o),
		newGetSettingCmd(o),
		newSetSettingCmd(o),
		newExportLimitCmd(o),
		newSetTimeCmd(o),
		newRegistersCmd(o),
		newScanCmd(),
		newPublishCmd(o),
	)
	return cmd
}

// connect validates the connection flags and opens a session.
func connect(ctx context.Context, o *options.Options) (*inverter.Session, error) {
	if errs := options.Validate(o); len(errs) != 0 {
		return nil, utilerrors.NewAggregate(errs)
	}
	family, err := o.ParseFamily()
	if err != nil {
		return nil, err
	}
	return inverter.Connect(ctx, o.Address(), family, o.TransportOptions())
}

// signalContext ends the context on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	exitCh := make(chan os.Signal, 1)
	signal.Notify(exitCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-exitCh
		cancel()
	}()
	return ctx, cancel
}

func printJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
