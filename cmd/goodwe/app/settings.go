package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/marcelblijleven/goodwe/cmd/goodwe/options"
)

func newSettingsCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Read all settings of the inverter",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()
			data, err := s.ReadSettingsData(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

func newGetSettingCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get-setting <id>",
		Short: "Read a single setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()
			value, err := s.ReadSetting(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
			return nil
		},
	}
}

func newSetSettingCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-setting <id> <value>",
		Short: "Write a single setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.Wrapf(err, "invalid value %q", args[1])
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.WriteSetting(ctx, args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %v\n", args[0], value)
			return nil
		},
	}
}

func newExportLimitCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "export-limit [watts]",
		Short: "Read or write the grid export power limit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()
			if len(args) == 0 {
				limit, err := s.GetGridExportLimit(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", limit)
				return nil
			}
			limit, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(err, "invalid export limit %q", args[0])
			}
			if err := s.SetGridExportLimit(ctx, limit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export limit set to %d\n", limit)
			return nil
		},
	}
}

func newSetTimeCmd(o *options.Options) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "set-time",
		Short: "Set the inverter clock, to the current time by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now()
			if at != "" {
				var err error
				if t, err = time.Parse(time.RFC3339, at); err != nil {
					return errors.Wrapf(err, "invalid time %q", at)
				}
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.SetTime(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inverter time set to %s\n", t.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "time", "", "Time to set in RFC 3339 form instead of the current time")
	return cmd
}
