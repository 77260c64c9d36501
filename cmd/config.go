package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Prints the configuration in effect after defaults and flags are applied.
The API key is never stored in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit(cmd.OutOrStdout(), forceInit)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing config file")
}

func runConfigShow(out io.Writer) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprintf(out, "# %s\n%s", cfg.Path(), data)
	return nil
}

func runConfigInit(out io.Writer, force bool) error {
	if _, err := os.Stat(cfg.Path()); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfg.Path())
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", cfg.Path())
	return nil
}
