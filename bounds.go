package dea

import (
	"math"

	"github.com/twpayne/go-proj/v10"
)

// Bounds is a longitude/latitude envelope in degrees.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// GeographicBounds returns the longitude/latitude envelope of the corners
// of a width by height pixel grid placed by transform in crs.
func GeographicBounds(crs string, width, height int, transform Affine) (Bounds, error) {
	if crs == "" {
		return Bounds{}, ErrMissingCRS
	}
	pj, err := proj.NewCRSToCRS(crs, "EPSG:4326", nil)
	if err != nil {
		return Bounds{}, err
	}
	// Use longitude, latitude axis order on both sides.
	pj, err = pj.NormalizeForVisualization()
	if err != nil {
		return Bounds{}, err
	}

	coords := cornerCoords(width, height, transform)
	if err := pj.ForwardFloat64Slices(coords); err != nil {
		return Bounds{}, err
	}

	bounds := Bounds{
		MinLon: math.Inf(1),
		MinLat: math.Inf(1),
		MaxLon: math.Inf(-1),
		MaxLat: math.Inf(-1),
	}
	for _, coord := range coords {
		bounds.MinLon = min(bounds.MinLon, coord[0])
		bounds.MinLat = min(bounds.MinLat, coord[1])
		bounds.MaxLon = max(bounds.MaxLon, coord[0])
		bounds.MaxLat = max(bounds.MaxLat, coord[1])
	}
	return bounds, nil
}

// Bounds returns the longitude/latitude envelope of ds.
func (ds *Dataset) Bounds() (Bounds, error) {
	return GeographicBounds(ds.CRS, ds.Width, ds.Height, ds.Transform)
}

// cornerCoords returns the model coordinates of the four outer corners of
// the pixel grid.
func cornerCoords(width, height int, transform Affine) [][]float64 {
	coordsFlat := make([]float64, 8)
	coords := make([][]float64, 4)
	for i, corner := range [][2]float64{
		{0, 0},
		{float64(width), 0},
		{0, float64(height)},
		{float64(width), float64(height)},
	} {
		coordsFlat[2*i], coordsFlat[2*i+1] = transform.Apply(corner[0], corner[1])
		coords[i] = coordsFlat[2*i : 2*i+2]
	}
	return coords
}
