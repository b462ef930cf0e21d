package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/autograde"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of autograde",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autograde version %s\n", strings.TrimSpace(autograde.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
