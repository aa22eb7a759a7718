package dea

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

type datasetJSON struct {
	CRS       string         `json:"crs"`
	Transform []float64      `json:"transform"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Variables []variableJSON `json:"variables"`
}

type variableJSON struct {
	Name  string     `json:"name"`
	DType string     `json:"dtype"`
	Data  []*float64 `json:"data"`
}

// ReadDatasetJSON reads a Dataset from its JSON representation:
//
//	{
//	  "crs": "EPSG:3577",
//	  "transform": [a, b, c, d, e, f],
//	  "width": 2,
//	  "height": 1,
//	  "variables": [{"name": "red", "dtype": "uint16", "data": [1, 2]}]
//	}
//
// The transform is in affine order. The default dtype is float32. JSON null
// samples are read as NaN.
func ReadDatasetJSON(r io.Reader) (*Dataset, error) {
	var dj datasetJSON
	if err := json.NewDecoder(r).Decode(&dj); err != nil {
		return nil, err
	}
	if len(dj.Transform) != 6 {
		return nil, fmt.Errorf("transform: found %d coefficients, expected 6", len(dj.Transform))
	}

	ds := &Dataset{
		CRS:    dj.CRS,
		Width:  dj.Width,
		Height: dj.Height,
		Transform: Affine{
			A: dj.Transform[0], B: dj.Transform[1], C: dj.Transform[2],
			D: dj.Transform[3], E: dj.Transform[4], F: dj.Transform[5],
		},
	}
	for _, vj := range dj.Variables {
		samples := make([]float64, len(vj.Data))
		for i, sample := range vj.Data {
			if sample == nil {
				samples[i] = math.NaN()
			} else {
				samples[i] = *sample
			}
		}
		data, err := castSamples(samples, vj.DType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", vj.Name, err)
		}
		ds.Variables = append(ds.Variables, Variable{
			Name: vj.Name,
			Data: data,
		})
	}
	return ds, nil
}

// WriteDatasetJSON writes ds as JSON in the format read by ReadDatasetJSON.
// NaN samples are written as null.
func WriteDatasetJSON(w io.Writer, ds *Dataset) error {
	dj := datasetJSON{
		CRS: ds.CRS,
		Transform: []float64{
			ds.Transform.A, ds.Transform.B, ds.Transform.C,
			ds.Transform.D, ds.Transform.E, ds.Transform.F,
		},
		Width:  ds.Width,
		Height: ds.Height,
	}
	for _, v := range ds.Variables {
		dt, err := dataType(v.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		samples, err := float64Samples(v.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		data := make([]*float64, len(samples))
		for i := range samples {
			if !math.IsNaN(samples[i]) {
				data[i] = &samples[i]
			}
		}
		dj.Variables = append(dj.Variables, variableJSON{
			Name:  v.Name,
			DType: dtypeNames[dt],
			Data:  data,
		})
	}
	return json.NewEncoder(w).Encode(dj)
}

// castSamples converts samples to a slice of dtype. Integer dtypes reject
// NaN and samples outside their range.
func castSamples(samples []float64, dtype string) (any, error) {
	switch dtype {
	case "uint8":
		return castInteger[uint8](samples, 0, math.MaxUint8)
	case "int16":
		return castInteger[int16](samples, math.MinInt16, math.MaxInt16)
	case "uint16":
		return castInteger[uint16](samples, 0, math.MaxUint16)
	case "int32":
		return castInteger[int32](samples, math.MinInt32, math.MaxInt32)
	case "uint32":
		return castInteger[uint32](samples, 0, math.MaxUint32)
	case "", "float32":
		result := make([]float32, len(samples))
		for i, sample := range samples {
			result[i] = float32(sample)
		}
		return result, nil
	case "float64":
		return samples, nil
	default:
		return nil, fmt.Errorf("%s: %w", dtype, ErrUnsupportedDataType)
	}
}

// castInteger truncates samples to T. Samples must lie in [minValue,
// maxValue].
func castInteger[T uint8 | int16 | uint16 | int32 | uint32](samples []float64, minValue, maxValue float64) ([]T, error) {
	result := make([]T, len(samples))
	for i, sample := range samples {
		if math.IsNaN(sample) || sample < minValue || sample > maxValue {
			return nil, fmt.Errorf("sample %d: %v: %w", i, sample, ErrSampleOutOfRange)
		}
		result[i] = T(sample)
	}
	return result, nil
}
