package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regionnet/internal/regions"
)

func newKindsCmd() *cobra.Command {
	var activations bool
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List registered region kinds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := regions.List()
			if activations {
				names = regions.ListActivations()
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&activations, "activations", false, "list activation functions for the activate kind instead")
	return cmd
}
