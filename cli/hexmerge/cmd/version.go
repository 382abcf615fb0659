package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/hexmerge/internal/debug"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "hexmerge %s\n", debug.ReadBuildInfo())
			return err
		},
	}
}
