package main

import (
	"github.com/spf13/cobra"

	dea "github.com/ANU-WALD/dea-course"
)

func (c *config) newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump input",
		Short: "Print a raster as a JSON dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := readDataset(args[0])
			if err != nil {
				return err
			}
			return dea.WriteDatasetJSON(cmd.OutOrStdout(), ds)
		},
	}
}
