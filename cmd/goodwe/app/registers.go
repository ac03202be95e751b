package app

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/marcelblijleven/goodwe/cmd/goodwe/options"
)

func newRegistersCmd(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "registers <offset> <count>",
		Short: "Read raw registers, offsets accept decimal or 0x hex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.ParseInt(args[0], 0, 32)
			if err != nil {
				return errors.Wrapf(err, "invalid offset %q", args[0])
			}
			count, err := strconv.ParseInt(args[1], 0, 32)
			if err != nil || count <= 0 || count > 125 {
				return errors.Errorf("invalid register count %q", args[1])
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := connect(ctx, o)
			if err != nil {
				return err
			}
			defer s.Close()
			payload, err := s.ReadRegisterRange(ctx, int(offset), int(count))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(payload))
			return nil
		},
	}
}
