package dea

import (
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAffine(t *testing.T) {
	a := Affine{
		A: 25, B: 0.5, C: 1000,
		D: -0.5, E: -25, F: 2000,
	}
	gt := a.GeoTransform()
	assert.Equal(t, [6]float64{1000, 25, 0.5, 2000, -0.5, -25}, gt)
	assert.Equal(t, a, AffineFromGeoTransform(gt))

	for _, tc := range []struct {
		col, row  float64
		expectedX float64
		expectedY float64
	}{
		{col: 0, row: 0, expectedX: 1000, expectedY: 2000},
		{col: 1, row: 0, expectedX: 1025, expectedY: 1999.5},
		{col: 0, row: 2, expectedX: 1001, expectedY: 1950},
		{col: 4, row: 4, expectedX: 1102, expectedY: 1898},
	} {
		x, y := a.Apply(tc.col, tc.row)
		assert.Equal(t, tc.expectedX, x)
		assert.Equal(t, tc.expectedY, y)
	}
}

func TestDatasetVariable(t *testing.T) {
	ds := &Dataset{
		Variables: []Variable{
			{Name: "red", Data: []float32{1}},
			{Name: "green", Data: []float32{2}},
		},
	}
	v, ok := ds.Variable("green")
	assert.True(t, ok)
	assert.Equal(t, Variable{Name: "green", Data: []float32{2}}, v)
	_, ok = ds.Variable("blue")
	assert.False(t, ok)
}

func TestFloat64Samples(t *testing.T) {
	for _, data := range []any{
		[]uint8{1, 2, 3},
		[]int16{1, 2, 3},
		[]uint16{1, 2, 3},
		[]int32{1, 2, 3},
		[]uint32{1, 2, 3},
		[]float32{1, 2, 3},
		[]float64{1, 2, 3},
	} {
		actual, err := float64Samples(data)
		assert.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, actual)

		dt, err := dataType(data)
		assert.NoError(t, err)
		samples, err := makeSamples(dt, 3)
		assert.NoError(t, err)
		n, err := sampleCount(samples)
		assert.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	_, err := float64Samples([]int64{1})
	assert.IsError(t, err, ErrUnsupportedDataType)
}

func TestWriteGeoTIFFMetrics(t *testing.T) {
	exports := testutil.ToFloat64(geoTIFFExports)
	bands := testutil.ToFloat64(geoTIFFBandsWritten)
	exportErrors := testutil.ToFloat64(geoTIFFExportErrors)

	ds := &Dataset{
		Variables: []Variable{
			{Name: "a", Data: []int32{1, 2}},
			{Name: "b", Data: []int32{3, 4}},
		},
		Width:     2,
		Height:    1,
		CRS:       "EPSG:4326",
		Transform: Affine{A: 0.1, C: 140, E: -0.1, F: -30},
	}
	assert.NoError(t, WriteGeoTIFF(filepath.Join(t.TempDir(), "metrics.tif"), ds))
	assert.Error(t, WriteGeoTIFF(filepath.Join(t.TempDir(), "metrics.tif"), &Dataset{}))

	assert.Equal(t, exports+1, testutil.ToFloat64(geoTIFFExports))
	assert.Equal(t, bands+2, testutil.ToFloat64(geoTIFFBandsWritten))
	assert.Equal(t, exportErrors+1, testutil.ToFloat64(geoTIFFExportErrors))
}
