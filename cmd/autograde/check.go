package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [catalog]",
	Short: "Grade the current shell against one exercise",
	Long: `Builds a snapshot from the current shell (working directory and environment) plus
the given command and output, and grades it within a session of the configured store.
With --assume-prior every exercise before the target counts as complete.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		exercise, _ := flags.GetString("exercise")
		command, _ := flags.GetString("command")
		output, _ := flags.GetString("output")
		sessionID, _ := flags.GetString("session")
		assumePrior, _ := flags.GetBool("assume-prior")

		if output == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read output: %w", err)
			}
			output = string(b)
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		ctx := context.Background()
		tutor, be, err := openTutor(ctx, cfg, stdoutFile(cmd), nil)
		if err != nil {
			return err
		}
		defer be.close()

		if assumePrior {
			if err := completePrior(ctx, tutor.Sessions(), sessionID, exercise); err != nil {
				return err
			}
		}

		res, err := tutor.Sessions().Submit(ctx, sessionID, domain.UserState{
			ExerciseName: exercise,
			Command:      command,
			Cwd:          cwd,
			Output:       output,
			Environ:      domain.EnvironFromPairs(os.Environ()),
		})
		if err != nil {
			var rej *domain.RejectionError
			if errors.As(err, &rej) {
				fmt.Fprintln(cmd.OutOrStdout(), rej.Reason)
				return errors.New("not complete")
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		if !res.Completed {
			return errors.New("not complete")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("exercise", "", "Exercise to grade")
	checkCmd.Flags().String("command", "", "Command line that was run")
	checkCmd.Flags().String("output", "", "Output of the command ('-' reads stdin)")
	checkCmd.Flags().String("session", "local", "Session to grade within")
	checkCmd.Flags().Bool("assume-prior", false, "Treat every earlier exercise as complete")
	_ = checkCmd.MarkFlagRequired("exercise")
}
