package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atbphosting/clumsyloader/internal/tui"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups <server>",
	Short: "List the backups of a server",
	Long: `Lists the backups of one server. The server can be given by its short
identifier, its UUID or its exact name, as shown by "clumsyloader servers".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackups(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}

func runBackups(ctx context.Context, out io.Writer, serverRef string) error {
	client, err := newPanelClient(ctx, os.Stderr)
	if err != nil {
		return err
	}

	server, err := resolveServer(ctx, client, serverRef)
	if err != nil {
		return err
	}

	backups, err := client.ListBackups(ctx, server.UUID)
	if err != nil {
		return fmt.Errorf("fetching backups for %s: %w", server.Name, err)
	}
	if len(backups) == 0 {
		fmt.Fprintf(out, "No backups found for %s\n", server.Name)
		return nil
	}

	rows := make([][]string, 0, len(backups))
	for _, b := range backups {
		rows = append(rows, []string{b.UUID, b.CreatedAt, humanize.Bytes(b.Bytes), b.Name})
	}
	fmt.Fprintf(out, "Backups for %s (%s):\n", server.Name, server.Identifier)
	fmt.Fprintln(out, tui.RenderTable([]string{"UUID", "CREATED", "SIZE", "NAME"}, rows))
	return nil
}
