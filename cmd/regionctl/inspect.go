package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"regionnet/internal/engine"
	"regionnet/pkg/regionnet"
)

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var graphPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the buffer layout of every output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(graphPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), flags, cfg.Log)
			if err != nil {
				return err
			}
			infos, err := regionnet.Inspect(cfg.Graph, engine.WithLogger(logger))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REGION\tOUTPUT\tTYPE\tLEVEL\tNODES\tWIDTH\tCOUNT\tSIZE\tLINKS")
			var total uint64
			for _, info := range infos {
				level := "node"
				if info.RegionLevel {
					level = "region"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%d\n",
					info.Region, info.Output, info.Type, level, info.Nodes, info.NodeWidth,
					info.Count, humanize.Bytes(uint64(info.Bytes)), info.Links)
				total += uint64(info.Bytes)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total=%s outputs=%d\n", humanize.Bytes(total), len(infos))
			return nil
		},
	}
	cmd.Flags().StringVarP(&graphPath, "file", "f", "", "Graph YAML file")
	return cmd
}
