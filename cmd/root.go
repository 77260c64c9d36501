package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atbphosting/clumsyloader/internal/config"
	"github.com/atbphosting/clumsyloader/internal/logger"
	"github.com/atbphosting/clumsyloader/internal/orchestrator"
	"github.com/atbphosting/clumsyloader/internal/storage"
	"github.com/atbphosting/clumsyloader/internal/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile       string
	rcloneCfgFile string
	panelURL      string
	outputDir     string
	copyTo        string
	verbose       bool

	cfg       *config.Config
	logCloser io.Closer

	// set once the interactive flow starts, so fatal errors wait for Enter
	interactiveRun bool
)

var rootCmd = &cobra.Command{
	Use:   "clumsyloader",
	Short: "Download game server backups from ATBP Hosting",
	Long: `ClumsyLoader lists the servers and backups of your ATBP Hosting account and
downloads the selected backup archive to the current directory.

Run without arguments on a terminal to pick a server and backup from menus.
The API key is read from CLUMSY_API_KEY, or prompted for.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Menus need a TTY on both stdin and stdout
		if !isInteractive() {
			return cmd.Help()
		}
		interactiveRun = true
		return runInteractive(cmd.Context())
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		tui.PrintFatal(os.Stderr, err)
		if interactiveRun && isInteractive() {
			tui.WaitForEnter(os.Stdin, os.Stderr)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ./clumsyloader.yaml)")
	flags.StringVar(&rcloneCfgFile, "rclone-config", "", "rclone config file (default: ~/.config/rclone/rclone.conf)")
	flags.StringVar(&panelURL, "panel-url", "", "panel base URL (default: "+config.DefaultPanelURL+")")
	flags.StringVarP(&outputDir, "output-dir", "o", "", "directory archives are saved to (default: .)")
	flags.StringVar(&copyTo, "copy-to", "", "rclone destination to copy finished archives to")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "clumsyloader.yaml"
}

// setup loads the config, applies flag overrides and starts logging
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.LoadOrDefault(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("panel-url") {
		cfg.PanelURL = panelURL
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("copy-to") {
		cfg.CopyTo = copyTo
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg.CopyTo = storage.ExpandDest(cfg.CopyTo)

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logCloser, err = logger.Init(level, cfg.LogFile)
	if err != nil {
		return err
	}

	storage.Init(rcloneCfgFile)
	log.Debug().Str("config", getConfigPath()).Str("panel", cfg.PanelURL).Str("output_dir", cfg.OutputDir).Msg("config loaded")
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func isInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func runInteractive(ctx context.Context) error {
	if err := checkCopyDestination(ctx); err != nil {
		return err
	}

	client, err := newPanelClient(ctx, os.Stdout)
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	status := tui.NewStatus(os.Stdout)
	flow := orchestrator.New(client, tui.NewSelector(os.Stdin, os.Stdout), newEngine(os.Stdout), status)

	res, err := flow.Run(ctx)
	if err != nil {
		return err
	}
	log.Debug().Stringer("outcome", res.Outcome).Msg("flow finished")
	if res.Outcome != orchestrator.OutcomeDownloaded {
		return nil
	}
	return finishDownload(ctx, status, res.Download)
}
