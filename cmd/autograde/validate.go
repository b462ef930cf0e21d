package main

import (
	"context"
	"fmt"

	"github.com/aretw0/autograde"
	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check a catalogue for errors",
	Long:  `Loads the catalogue and reports every invalid field (bad regular expressions, unknown states, conflicting eject rules, duplicate names).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}

		hookRegistry, err := loadHooks(cfg)
		if err != nil {
			return err
		}

		cat, err := autograde.LoadCatalog(context.Background(), cfg.Catalog, hookRegistry)
		if err != nil {
			verrs := catalog.ValidationErrors(err)
			if len(verrs) == 0 {
				return err
			}
			for _, verr := range verrs {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", verr.Error())
			}
			return fmt.Errorf("validation failed: %d errors", len(verrs))
		}
		if _, err := cat.NewRegistry(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Catalogue is valid: %d exercises\n", len(cat.Exercises))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
