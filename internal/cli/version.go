package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/farmkeeper/pkg/farmkeeper"
)

const modulePath = "github.com/mesh-intelligence/farmkeeper"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the farmkeeper version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "farmkeeper v%s\nmodule: %s\n", farmkeeper.Version, modulePath)
			return nil
		},
	}
}
