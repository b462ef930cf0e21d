package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/autograde/internal/presentation/graph"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/tracker"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [catalog]",
	Short: "Print the curriculum as a Mermaid flowchart",
	Long:  `Prints the exercise chain in Mermaid syntax. With --session, completed and active exercises are highlighted.`,
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

		if sessionID == "" {
			reg, err := tutor.Catalog().NewRegistry()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(reg.All(), nil))
			return nil
		}

		var out string
		err = tutor.Sessions().Do(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
			reg := tr.Registry()
			overlay := &graph.Overlay{Completed: reg.Completed()}
			if _, active, err := reg.Active(); err == nil {
				overlay.Active = active.Name
			} else if !errors.Is(err, domain.ErrAllComplete) {
				return err
			}
			out = graph.GenerateMermaid(reg.All(), overlay)
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the progress of this session")
}
