package cmd

import (
	"fmt"

	"github.com/atbphosting/clumsyloader/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "clumsyloader "+version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
