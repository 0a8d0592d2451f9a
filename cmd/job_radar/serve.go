package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-radar/internal/server"
	"github.com/jonathan/job-radar/internal/trigger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes paginated job and company listings and runs the ingestion pipeline on a request-driven schedule.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cycle := trigger.Cycle(a.ingest, a.reconcile)
	run := func(ctx context.Context) error {
		err := cycle(ctx)
		a.display.Invalidate() // listings pick up the new cycle's rows immediately
		return err
	}

	trig, err := trigger.New(a.cfg.TriggerInterval(), run)
	if err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}
	defer trig.Close()

	addr := a.cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv, err := server.New(server.Config{Addr: addr}, a.display, a.display, trig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
