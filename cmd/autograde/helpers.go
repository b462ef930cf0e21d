package main

import (
	"context"
	"os"

	"github.com/aretw0/autograde/pkg/session"
	"github.com/aretw0/autograde/pkg/tracker"
	"github.com/spf13/cobra"
)

// stdoutFile returns the command's output as a file when it is one, so that
// terminal detection works; redirected writers get os.Stdout's profile.
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return os.Stdout
}

// completePrior marks every exercise sequenced before target as complete.
func completePrior(ctx context.Context, sessions *session.Manager, sessionID, target string) error {
	return sessions.Do(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		reg := tr.Registry()
		_, idx, err := reg.Find(target)
		if err != nil {
			return err
		}
		for i := 0; i < idx; i++ {
			if err := reg.MarkComplete(reg.At(i).Name); err != nil {
				return err
			}
		}
		return nil
	})
}
