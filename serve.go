package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hicap-oss/parley/internal/server"
)

func newServeCmd() *cobra.Command {
	var flagAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: help["serve"],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = flagAddr
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "parley",
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", help["addr"])
	return cmd
}
