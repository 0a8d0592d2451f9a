package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion and reconciliation cycle",
	Long:  `Fetch postings from the search provider, validate and enrich them, reconcile company profiles, then exit.`,
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fetched := a.ingest.UpdateJobSource(ctx)
	if !fetched {
		fmt.Println("No postings ingested this cycle")
	}

	reconciled := a.reconcile.UpdateCompanyProfiles(ctx)
	if !reconciled {
		fmt.Println("No company profiles updated this cycle")
	}

	fmt.Println("Cycle complete")
	return nil
}
