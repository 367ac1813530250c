package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"regionnet/pkg/regionnet"
)

const maxPrintedValues = 8

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		graphPath string
		steps     int
		storeKind string
		dbPath    string
		runID     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a graph and record output traces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(graphPath)
			if err != nil {
				return err
			}
			if storeKind != "" {
				cfg.Trace.Store = storeKind
			}
			if dbPath != "" {
				cfg.Trace.DBPath = dbPath
			}
			logger, err := newLogger(cmd.ErrOrStderr(), flags, cfg.Log)
			if err != nil {
				return err
			}

			client, err := regionnet.New(regionnet.Options{
				StoreKind: cfg.Trace.Store,
				DBPath:    cfg.Trace.DBPath,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Run(cmd.Context(), regionnet.RunRequest{
				Config: cfg,
				RunID:  runID,
				Steps:  steps,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run_id=%s graph=%s steps=%d snapshots=%d\n", summary.RunID, summary.GraphName, summary.Steps, summary.Snapshots)
			fmt.Fprintf(out, "order=%s\n", strings.Join(summary.Order, ","))
			for _, name := range summary.Order {
				for _, key := range sortedOutputKeys(summary.Final, name) {
					fmt.Fprintf(out, "%s %s\n", key, formatValues(summary.Final[key]))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&graphPath, "file", "f", "", "Graph YAML file")
	cmd.Flags().IntVar(&steps, "steps", 0, "Override run.steps from the graph file")
	cmd.Flags().StringVar(&storeKind, "store", "", "Trace store: memory|sqlite (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite trace database path")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run ID (default: random UUID)")
	return cmd
}

func sortedOutputKeys(final map[string][]float64, region string) []string {
	var keys []string
	prefix := region + "."
	for key := range final {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func formatValues(values []float64) string {
	shown := values
	if len(shown) > maxPrintedValues {
		shown = shown[:maxPrintedValues]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = fmt.Sprintf("%g", v)
	}
	s := "[" + strings.Join(parts, " ")
	if len(values) > maxPrintedValues {
		s += fmt.Sprintf(" ... +%d", len(values)-maxPrintedValues)
	}
	return s + "]"
}
