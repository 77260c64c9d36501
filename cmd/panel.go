package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atbphosting/clumsyloader/internal/download"
	"github.com/atbphosting/clumsyloader/internal/panel"
	"github.com/atbphosting/clumsyloader/internal/storage"
	"github.com/atbphosting/clumsyloader/internal/tui"
	"github.com/dustin/go-humanize"
)

const apiKeyEnv = "CLUMSY_API_KEY"

// newPanelClient builds a client for the configured panel, asking for the
// API key when CLUMSY_API_KEY is unset. Prompts are written to out.
func newPanelClient(ctx context.Context, out io.Writer) (*panel.Client, error) {
	apiKey := strings.TrimSpace(os.Getenv(apiKeyEnv))
	if apiKey == "" {
		var err error
		apiKey, err = tui.PromptAPIKey(ctx, os.Stdin, out, isTerminal(os.Stdin))
		if err != nil {
			return nil, err
		}
	}
	return panel.NewClient(cfg.PanelURL, apiKey, panel.WithUserAgent(cfg.UserAgent))
}

func newEngine(progressOut io.Writer) *download.Engine {
	return download.NewEngine(
		download.WithDir(cfg.OutputDir),
		download.WithProgress(func(total uint64) download.Progress {
			return tui.NewProgressBar(progressOut, total)
		}),
	)
}

// checkCopyDestination fails early when the offsite copy could not succeed
func checkCopyDestination(ctx context.Context) error {
	if cfg.CopyTo == "" {
		return nil
	}
	if err := storage.CheckDestination(ctx, cfg.CopyTo); err != nil {
		return fmt.Errorf("copy_to %s: %w", cfg.CopyTo, err)
	}
	return nil
}

// finishDownload reports the saved archive and copies it offsite when configured
func finishDownload(ctx context.Context, status *tui.Status, res *download.Result) error {
	status.Success(fmt.Sprintf("💾 Saved %s (%s)", res.Path, humanize.Bytes(res.Written)))
	if res.Expected != 0 && res.Written != res.Expected {
		status.Warn(fmt.Sprintf("Archive is %s but the panel reported %s", humanize.Bytes(res.Written), humanize.Bytes(res.Expected)))
	}

	if cfg.CopyTo == "" {
		return nil
	}
	status.Info(fmt.Sprintf("☁️  Copying to %s...", cfg.CopyTo))
	remote, err := storage.CopyArchive(ctx, res.Path, cfg.CopyTo)
	if err != nil {
		return fmt.Errorf("copying archive to %s: %w", cfg.CopyTo, err)
	}
	status.Success(fmt.Sprintf("✅ Copied %s to %s (%s)", remote.Name, remote.Dest, humanize.Bytes(uint64(remote.Size))))
	return nil
}

// resolveServer finds a server by identifier, UUID or exact name
func resolveServer(ctx context.Context, client *panel.Client, ref string) (panel.Server, error) {
	servers, err := client.ListServers(ctx)
	if err != nil {
		return panel.Server{}, fmt.Errorf("fetching servers: %w", err)
	}
	for _, s := range servers {
		if s.Identifier == ref || strings.EqualFold(s.UUID, ref) || s.Name == ref {
			return s, nil
		}
	}
	return panel.Server{}, fmt.Errorf("server %q not found", ref)
}
