package dea_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	dea "github.com/ANU-WALD/dea-course"
)

func TestReadDatasetJSON(t *testing.T) {
	ds, err := dea.ReadDatasetJSON(strings.NewReader(`{
		"crs": "EPSG:3577",
		"transform": [30, 0, 1500000, 0, -30, -3900000],
		"width": 2,
		"height": 1,
		"variables": [
			{"name": "red", "dtype": "uint16", "data": [512, 1024]},
			{"name": "ndvi", "data": [0.5, null]}
		]
	}`))
	assert.NoError(t, err)
	assert.Equal(t, "EPSG:3577", ds.CRS)
	assert.Equal(t, albers, ds.Transform)
	assert.Equal(t, 2, ds.Width)
	assert.Equal(t, 1, ds.Height)
	assert.Equal(t, 2, len(ds.Variables))
	assert.Equal(t, dea.Variable{Name: "red", Data: []uint16{512, 1024}}, ds.Variables[0])
	ndvi := ds.Variables[1].Data.([]float32)
	assert.Equal(t, float32(0.5), ndvi[0])
	assert.True(t, math.IsNaN(float64(ndvi[1])))
	assert.NoError(t, ds.Validate())
}

func TestReadDatasetJSONIntegerLimits(t *testing.T) {
	ds, err := dea.ReadDatasetJSON(strings.NewReader(`{
		"transform": [1, 0, 0, 0, -1, 0],
		"width": 3,
		"height": 1,
		"variables": [
			{"name": "a", "dtype": "uint8", "data": [0, 255, 2.7]},
			{"name": "b", "dtype": "int16", "data": [-32768, 32767, 0]}
		]
	}`))
	assert.NoError(t, err)
	assert.Equal(t, []dea.Variable{
		{Name: "a", Data: []uint8{0, 255, 2}},
		{Name: "b", Data: []int16{-32768, 32767, 0}},
	}, ds.Variables)
}

func TestReadDatasetJSONErrors(t *testing.T) {
	for _, tc := range []struct {
		name          string
		json          string
		expectedError error
	}{
		{
			name: "syntax",
			json: `{`,
		},
		{
			name: "transform",
			json: `{"transform": [1, 2, 3]}`,
		},
		{
			name:          "dtype",
			json:          `{"transform": [1, 0, 0, 0, -1, 0], "variables": [{"name": "a", "dtype": "complex64", "data": [1]}]}`,
			expectedError: dea.ErrUnsupportedDataType,
		},
		{
			name:          "uint8_overflow",
			json:          `{"transform": [1, 0, 0, 0, -1, 0], "variables": [{"name": "a", "dtype": "uint8", "data": [300]}]}`,
			expectedError: dea.ErrSampleOutOfRange,
		},
		{
			name:          "uint8_negative",
			json:          `{"transform": [1, 0, 0, 0, -1, 0], "variables": [{"name": "a", "dtype": "uint8", "data": [-1]}]}`,
			expectedError: dea.ErrSampleOutOfRange,
		},
		{
			name:          "uint8_null",
			json:          `{"transform": [1, 0, 0, 0, -1, 0], "variables": [{"name": "a", "dtype": "uint8", "data": [1, null]}]}`,
			expectedError: dea.ErrSampleOutOfRange,
		},
		{
			name:          "int16_overflow",
			json:          `{"transform": [1, 0, 0, 0, -1, 0], "variables": [{"name": "a", "dtype": "int16", "data": [40000]}]}`,
			expectedError: dea.ErrSampleOutOfRange,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dea.ReadDatasetJSON(strings.NewReader(tc.json))
			assert.Error(t, err)
			if tc.expectedError != nil {
				assert.IsError(t, err, tc.expectedError)
			}
		})
	}
}

func TestWriteDatasetJSON(t *testing.T) {
	ds := newTestDataset(2, 2,
		dea.Variable{Name: "water", Data: []uint8{0, 1, 1, 0}},
		dea.Variable{Name: "depth", Data: []float64{0, 1.25, math.NaN(), 0}},
	)
	var buffer bytes.Buffer
	assert.NoError(t, dea.WriteDatasetJSON(&buffer, ds))
	assert.Contains(t, buffer.String(), `"data":[0,1.25,null,0]`)

	actual, err := dea.ReadDatasetJSON(&buffer)
	assert.NoError(t, err)
	assert.Equal(t, ds.CRS, actual.CRS)
	assert.Equal(t, ds.Transform, actual.Transform)
	assert.Equal(t, ds.Variables[0], actual.Variables[0])
	depth := actual.Variables[1].Data.([]float64)
	assert.Equal(t, []float64{0, 1.25}, depth[:2])
	assert.True(t, math.IsNaN(depth[2]))
}
