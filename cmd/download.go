package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atbphosting/clumsyloader/internal/tui"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <server> <backup-uuid>",
	Short: "Download one backup without the menus",
	Long: `Downloads a backup archive to <output-dir>/<backup-uuid>.tar.gz.

Examples:
  clumsyloader download 1a7ce997 904df120-a66d-4c61-a3a7-6c7b3b2a7d4e
  clumsyloader download Survival 904df120-a66d-4c61-a3a7-6c7b3b2a7d4e -o /srv/archives
  clumsyloader download Survival 904df120-... --copy-to s3:offsite/minecraft`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

// runDownload prints the archive path to out; progress and status go to stderr
func runDownload(ctx context.Context, out io.Writer, serverRef, backupUUID string) error {
	if err := checkCopyDestination(ctx); err != nil {
		return err
	}

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
	var total uint64
	found := false
	for _, b := range backups {
		if strings.EqualFold(b.UUID, backupUUID) {
			backupUUID = b.UUID
			total = b.Bytes
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("backup %q not found on server %s", backupUUID, server.Name)
	}

	link, err := client.DownloadLink(ctx, server.Identifier, backupUUID)
	if err != nil {
		return fmt.Errorf("requesting download link: %w", err)
	}

	res, err := newEngine(os.Stderr).Fetch(ctx, link, backupUUID, total)
	if err != nil {
		return fmt.Errorf("downloading backup %s: %w", backupUUID, err)
	}

	if err := finishDownload(ctx, tui.NewStatus(os.Stderr), res); err != nil {
		return err
	}
	fmt.Fprintln(out, res.Path)
	return nil
}
