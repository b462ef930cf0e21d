package main

import (
	"fmt"
	"os"

	"github.com/aretw0/autograde/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "autograde",
	Short:         "Autograde grades learners working through shell exercises",
	Long:          `Autograde checks snapshots of a learner's shell (command, output, cwd, files and environment) against an ordered catalogue of exercises.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("catalog", "", "Catalogue file or Markdown directory (env AUTOGRADE_CATALOG)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env AUTOGRADE_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (env AUTOGRADE_LOG_FORMAT)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	rootCmd.PersistentFlags().String("hooks", "", "YAML or JSON file of external eject hook programs (env AUTOGRADE_HOOKS)")
	rootCmd.PersistentFlags().Bool("markdown", false, "Render messages as Markdown (env AUTOGRADE_MARKDOWN)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog, _ = flags.GetString("catalog")
	} else if len(args) > 0 {
		cfg.Catalog = args[0]
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("hooks") {
		cfg.Hooks, _ = flags.GetString("hooks")
	}
	if flags.Changed("markdown") {
		cfg.Markdown, _ = flags.GetBool("markdown")
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		cfg.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
