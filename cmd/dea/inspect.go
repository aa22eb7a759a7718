package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	dea "github.com/ANU-WALD/dea-course"
)

func (c *config) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect file",
		Short: "Print the structure of a GeoTIFF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, name := filepath.Split(args[0])
			if dir == "" {
				dir = "."
			}
			info, err := dea.ReadGeoTIFFInfo(os.DirFS(dir), name)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "size: %dx%d\n", info.Width, info.Height)
			fmt.Fprintf(w, "bands: %d\n", info.Bands)
			fmt.Fprintf(w, "bits per sample: %d\n", info.BitsPerSample)
			fmt.Fprintf(w, "sample format: %d\n", info.SampleFormat)
			fmt.Fprintf(w, "compression: %d\n", info.Compression)
			fmt.Fprintf(w, "predictor: %d\n", info.Predictor)
			fmt.Fprintf(w, "nodata: %s\n", info.NoData)
			epsg, ok := info.EPSG()
			if ok {
				fmt.Fprintf(w, "crs: EPSG:%d\n", epsg)
			}
			transform, err := info.Transform()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "transform: %v\n", transform)

			if ok {
				bounds, err := dea.GeographicBounds(fmt.Sprintf("EPSG:%d", epsg), info.Width, info.Height, transform)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "bounds: %f %f %f %f\n", bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat)
			}
			return nil
		},
	}
}
