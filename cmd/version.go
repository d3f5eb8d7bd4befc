package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trusttrade/trusttrade/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trusttrade %s\n", version.Version)
	},
}

func init() {
	root.AddCommand(versionCmd)
}
