package dea

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	geoTIFFExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dea_geotiff_exports_total",
		Help: "The total number of GeoTIFF files written",
	})
	geoTIFFBandsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dea_geotiff_bands_written_total",
		Help: "The total number of bands written to GeoTIFF files",
	})
	geoTIFFExportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dea_geotiff_export_errors_total",
		Help: "The total number of failed GeoTIFF exports",
	})
)

var registerDrivers = sync.OnceFunc(godal.RegisterAll)

const (
	predictorHorizontal    = 2
	predictorFloatingPoint = 3
)

type exportOptions struct {
	noData float64
	zLevel int
	logger logrus.FieldLogger
}

// An ExportOption sets an option on a GeoTIFF export.
type ExportOption func(*exportOptions)

// WithNoData sets the nodata value of every band. The default is 0.
func WithNoData(noData float64) ExportOption {
	return func(o *exportOptions) {
		o.noData = noData
	}
}

// WithZLevel sets the deflate compression level. The default is 4.
func WithZLevel(zLevel int) ExportOption {
	return func(o *exportOptions) {
		o.zLevel = zLevel
	}
}

// WithExportLogger sets the logger used during the export.
func WithExportLogger(logger logrus.FieldLogger) ExportOption {
	return func(o *exportOptions) {
		o.logger = logger
	}
}

// WriteGeoTIFF writes ds to filename as a deflate-compressed GeoTIFF with
// one band per variable, in order. The data type of the file is the data
// type of the first variable. An existing file is overwritten.
func WriteGeoTIFF(filename string, ds *Dataset, options ...ExportOption) (err error) {
	o := &exportOptions{
		noData: 0,
		zLevel: 4,
		logger: discardLogger(),
	}
	for _, option := range options {
		option(o)
	}

	defer func() {
		if err != nil {
			geoTIFFExportErrors.Inc()
		}
	}()

	if err := ds.Validate(); err != nil {
		return err
	}
	dt, err := dataType(ds.Variables[0].Data)
	if err != nil {
		return err
	}
	predictor := predictorHorizontal
	if isFloat(dt) {
		predictor = predictorFloatingPoint
	}

	registerDrivers()

	sr, err := godal.NewSpatialRef(ds.CRS)
	if err != nil {
		return err
	}
	defer sr.Close()

	gds, err := godal.Create(godal.GTiff, filename, len(ds.Variables), dt, ds.Width, ds.Height,
		godal.CreationOption(
			"COMPRESS=DEFLATE",
			"ZLEVEL="+strconv.Itoa(o.zLevel),
			"PREDICTOR="+strconv.Itoa(predictor),
		),
	)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = gds.Close()
		}
	}()

	if err := gds.SetSpatialRef(sr); err != nil {
		return err
	}
	if err := gds.SetGeoTransform(ds.Transform.GeoTransform()); err != nil {
		return err
	}

	for i, band := range gds.Bands() {
		variable := ds.Variables[i]
		if err := band.SetNoData(o.noData); err != nil {
			return err
		}
		if err := band.Write(0, 0, variable.Data, ds.Width, ds.Height); err != nil {
			return fmt.Errorf("%s: %w", variable.Name, err)
		}
		if err := band.SetDescription(variable.Name); err != nil {
			return err
		}
		geoTIFFBandsWritten.Inc()
		o.logger.WithFields(logrus.Fields{
			"band":     i + 1,
			"variable": variable.Name,
		}).Debug("wrote band")
	}

	closed = true
	if err := gds.Close(); err != nil {
		return err
	}

	geoTIFFExports.Inc()
	o.logger.WithFields(logrus.Fields{
		"filename":  filename,
		"bands":     len(ds.Variables),
		"dtype":     dt.String(),
		"predictor": predictor,
	}).Info("wrote GeoTIFF")
	return nil
}

// ReadDataset reads every band of the raster filename into a Dataset.
// Variables are named after band descriptions, falling back to band_N. The
// transform of a raster without a geotransform is the identity.
func ReadDataset(filename string) (*Dataset, error) {
	registerDrivers()

	gds, err := godal.Open(filename)
	if err != nil {
		return nil, err
	}
	defer gds.Close()

	structure := gds.Structure()
	ds := &Dataset{
		Width:  structure.SizeX,
		Height: structure.SizeY,
	}

	if sr := gds.SpatialRef(); sr != nil {
		wkt, err := sr.WKT()
		sr.Close()
		if err != nil {
			return nil, err
		}
		ds.CRS = wkt
	}

	ds.Transform = Affine{A: 1, E: 1}
	if gt, err := gds.GeoTransform(); err == nil {
		ds.Transform = AffineFromGeoTransform(gt)
	}

	for i, band := range gds.Bands() {
		data, err := makeSamples(band.Structure().DataType, ds.Width*ds.Height)
		if err != nil {
			return nil, err
		}
		if err := band.Read(0, 0, data, ds.Width, ds.Height); err != nil {
			return nil, err
		}
		name := band.Description()
		if name == "" {
			name = "band_" + strconv.Itoa(i+1)
		}
		ds.Variables = append(ds.Variables, Variable{
			Name: name,
			Data: data,
		})
	}

	return ds, nil
}
