package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/autograde/internal/presentation/tui"
	httpAdapter "github.com/aretw0/autograde/pkg/adapters/http"
	"github.com/aretw0/autograde/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve [catalog]",
	Short: "Start the HTTP grading server",
	Long:  `Serves learner sessions over plain-text HTTP routes (/{session}/start, /{session}/submit, ...).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := observability.NewMetrics(true)
		tutor, be, err := openTutor(ctx, cfg, os.Stdout, metrics)
		if err != nil {
			return err
		}
		defer be.close()

		if cfg.Color && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(os.Stdout)
		}

		logger := cfg.Logger()
		logger.Info("catalogue loaded", "path", cfg.Catalog, "exercises", len(tutor.Catalog().Exercises), "store", cfg.Store)

		srv := httpAdapter.NewServer(tutor.Sessions(),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithCORSOrigins(cfg.CORSOrigins...),
		)
		return srv.Run(ctx, cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (env AUTOGRADE_LISTEN_ADDR)")
}
