package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	dea "github.com/ANU-WALD/dea-course"
)

func (c *config) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export input output",
		Short: "Write a dataset to a compressed multi-band GeoTIFF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := readDataset(args[0])
			if err != nil {
				return err
			}
			if err := dea.WriteGeoTIFF(args[1], ds, dea.WithExportLogger(c.logger)); err != nil {
				return err
			}

			if bounds, err := ds.Bounds(); err != nil {
				c.logger.WithError(err).Warn("cannot compute bounds")
			} else {
				c.logger.WithFields(logrus.Fields{
					"minLon": bounds.MinLon,
					"minLat": bounds.MinLat,
					"maxLon": bounds.MaxLon,
					"maxLat": bounds.MaxLat,
				}).Info("exported")
			}

			if quicklook := c.viper.GetString("quicklook"); quicklook != "" {
				return writeQuicklook(quicklook, ds)
			}
			return nil
		},
	}
	cmd.Flags().String("quicklook", "", "also write a quicklook TIFF to this file")
	_ = c.viper.BindPFlag("quicklook", cmd.Flags().Lookup("quicklook"))
	return cmd
}

// readDataset reads a JSON dataset or any raster GDAL can open.
func readDataset(filename string) (*dea.Dataset, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return dea.ReadDataset(filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return dea.ReadDatasetJSON(file)
}

func writeQuicklook(filename string, ds *dea.Dataset) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	return dea.WriteQuicklook(file, ds)
}
