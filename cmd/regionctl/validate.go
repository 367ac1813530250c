package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var graphPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a graph file without running it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(graphPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok graph=%s regions=%d links=%d steps=%d\n",
				cfg.Graph.Name, len(cfg.Graph.Regions), len(cfg.Graph.Links), cfg.Run.Steps)
			return nil
		},
	}
	cmd.Flags().StringVarP(&graphPath, "file", "f", "", "Graph YAML file")
	return cmd
}
