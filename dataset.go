// Package dea writes, reads, and previews the gridded datasets used in the
// Digital Earth Australia course.
package dea

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
)

var (
	ErrMissingCRS          = errors.New("missing crs")
	ErrNoVariables         = errors.New("no data variables")
	ErrSampleOutOfRange    = errors.New("sample out of range")
	ErrUnsupportedDataType = errors.New("unsupported data type")
)

// An Affine is an affine transform from pixel coordinates to spatial
// coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// AffineFromGeoTransform returns the Affine equivalent of a GDAL
// geotransform.
func AffineFromGeoTransform(gt [6]float64) Affine {
	return Affine{
		A: gt[1], B: gt[2], C: gt[0],
		D: gt[4], E: gt[5], F: gt[3],
	}
}

// GeoTransform returns a in GDAL geotransform order.
func (a Affine) GeoTransform() [6]float64 {
	return [6]float64{a.C, a.A, a.B, a.F, a.D, a.E}
}

// Apply returns the spatial coordinates of the pixel corner at col, row.
func (a Affine) Apply(col, row float64) (float64, float64) {
	return a.A*col + a.B*row + a.C, a.D*col + a.E*row + a.F
}

// A Variable is a named grid of samples in row-major order.
type Variable struct {
	Name string
	Data any
}

// A Dataset is a set of variables sharing a pixel grid and a spatial
// reference.
type Dataset struct {
	Variables []Variable
	Width     int
	Height    int
	CRS       string
	Transform Affine
}

// Variable returns the variable called name.
func (ds *Dataset) Variable(name string) (Variable, bool) {
	for _, v := range ds.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Validate checks that ds can be written.
func (ds *Dataset) Validate() error {
	if len(ds.Variables) == 0 {
		return ErrNoVariables
	}
	if ds.CRS == "" {
		return ErrMissingCRS
	}
	pixels := ds.Width * ds.Height
	for _, v := range ds.Variables {
		n, err := sampleCount(v.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		if n != pixels {
			return fmt.Errorf("%s: found %d samples, expected %dx%d", v.Name, n, ds.Width, ds.Height)
		}
	}
	return nil
}

var dtypeNames = map[godal.DataType]string{
	godal.Byte:    "uint8",
	godal.Int16:   "int16",
	godal.UInt16:  "uint16",
	godal.Int32:   "int32",
	godal.UInt32:  "uint32",
	godal.Float32: "float32",
	godal.Float64: "float64",
}

// dataType returns the GDAL data type of data.
func dataType(data any) (godal.DataType, error) {
	switch data.(type) {
	case []uint8:
		return godal.Byte, nil
	case []int16:
		return godal.Int16, nil
	case []uint16:
		return godal.UInt16, nil
	case []int32:
		return godal.Int32, nil
	case []uint32:
		return godal.UInt32, nil
	case []float32:
		return godal.Float32, nil
	case []float64:
		return godal.Float64, nil
	default:
		return godal.Unknown, fmt.Errorf("%T: %w", data, ErrUnsupportedDataType)
	}
}

func sampleCount(data any) (int, error) {
	switch data := data.(type) {
	case []uint8:
		return len(data), nil
	case []int16:
		return len(data), nil
	case []uint16:
		return len(data), nil
	case []int32:
		return len(data), nil
	case []uint32:
		return len(data), nil
	case []float32:
		return len(data), nil
	case []float64:
		return len(data), nil
	default:
		return 0, fmt.Errorf("%T: %w", data, ErrUnsupportedDataType)
	}
}

// makeSamples returns a zeroed sample slice of n elements for dt.
func makeSamples(dt godal.DataType, n int) (any, error) {
	switch dt {
	case godal.Byte:
		return make([]uint8, n), nil
	case godal.Int16:
		return make([]int16, n), nil
	case godal.UInt16:
		return make([]uint16, n), nil
	case godal.Int32:
		return make([]int32, n), nil
	case godal.UInt32:
		return make([]uint32, n), nil
	case godal.Float32:
		return make([]float32, n), nil
	case godal.Float64:
		return make([]float64, n), nil
	default:
		return nil, fmt.Errorf("%s: %w", dt, ErrUnsupportedDataType)
	}
}

// isFloat returns whether dt is a floating point type.
func isFloat(dt godal.DataType) bool {
	return dt == godal.Float32 || dt == godal.Float64
}

// float64Samples returns data converted to float64s.
func float64Samples(data any) ([]float64, error) {
	switch data := data.(type) {
	case []uint8:
		return convertSamples(data), nil
	case []int16:
		return convertSamples(data), nil
	case []uint16:
		return convertSamples(data), nil
	case []int32:
		return convertSamples(data), nil
	case []uint32:
		return convertSamples(data), nil
	case []float32:
		return convertSamples(data), nil
	case []float64:
		return data, nil
	default:
		return nil, fmt.Errorf("%T: %w", data, ErrUnsupportedDataType)
	}
}

func convertSamples[T uint8 | int16 | uint16 | int32 | uint32 | float32](data []T) []float64 {
	samples := make([]float64, len(data))
	for i, sample := range data {
		samples[i] = float64(sample)
	}
	return samples
}
