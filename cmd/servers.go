package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atbphosting/clumsyloader/internal/tui"
	"github.com/spf13/cobra"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the servers your API key can access",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServers(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

func runServers(ctx context.Context, out io.Writer) error {
	client, err := newPanelClient(ctx, os.Stderr)
	if err != nil {
		return err
	}

	servers, err := client.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("fetching servers: %w", err)
	}
	if len(servers) == 0 {
		fmt.Fprintln(out, "No servers found")
		return nil
	}

	rows := make([][]string, 0, len(servers))
	for _, s := range servers {
		rows = append(rows, []string{s.Identifier, s.UUID, s.Name})
	}
	fmt.Fprintln(out, tui.RenderTable([]string{"IDENTIFIER", "UUID", "NAME"}, rows))
	return nil
}
