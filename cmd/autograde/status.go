package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [catalog]",
	Short: "Print the exercise status of a session",
	Long:  `Reads the session's progress from the configured store (AUTOGRADE_STORE) and prints every exercise, marking the active one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")

		ctx := context.Background()
		tutor, be, err := openTutor(ctx, cfg, stdoutFile(cmd), nil)
		if err != nil {
			return err
		}
		defer be.close()

		_, text, err := tutor.Sessions().Status(ctx, sessionID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("session", "local", "Session to report on")
}
