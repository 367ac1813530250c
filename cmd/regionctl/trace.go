package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regionnet/internal/config"
	"regionnet/pkg/regionnet"
)

func newTraceCmd(flags *globalFlags) *cobra.Command {
	var (
		runID     string
		storeKind string
		dbPath    string
		list      bool
	)
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded runs and output snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaults := config.DefaultConfig()
			if storeKind == "" {
				storeKind = defaults.Trace.Store
			}
			if dbPath == "" {
				dbPath = defaults.Trace.DBPath
			}
			logger, err := newLogger(cmd.ErrOrStderr(), flags, defaults.Log)
			if err != nil {
				return err
			}
			client, err := regionnet.New(regionnet.Options{StoreKind: storeKind, DBPath: dbPath, Logger: logger})
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			if list || runID == "" {
				runs, err := client.Runs(cmd.Context())
				if err != nil {
					return err
				}
				for _, run := range runs {
					fmt.Fprintf(out, "%s graph=%s status=%s steps=%d/%d created=%s\n", run.ID, run.GraphName, run.Status, run.CompletedSteps, run.Steps, run.CreatedAtUTC)
				}
				return nil
			}

			snapshots, err := client.Trace(cmd.Context(), runID)
			if err != nil {
				return err
			}
			for _, s := range snapshots {
				fmt.Fprintf(out, "step=%d %s.%s %s\n", s.Step, s.Region, s.Output, formatValues(s.Values))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID to show")
	cmd.Flags().BoolVar(&list, "list", false, "List recorded runs")
	cmd.Flags().StringVar(&storeKind, "store", "", "Trace store: memory|sqlite")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite trace database path")
	return cmd
}
