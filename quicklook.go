package dea

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

var errNoValidSamples = errors.New("no valid samples")

type quicklookOptions struct {
	bands  []string
	size   int
	noData float64
	low    float64
	high   float64
}

// A QuicklookOption sets an option on a quicklook.
type QuicklookOption func(*quicklookOptions)

// WithQuicklookBands sets the variables rendered as gray (one name) or as
// red, green, and blue (three names).
func WithQuicklookBands(bands ...string) QuicklookOption {
	return func(o *quicklookOptions) {
		o.bands = bands
	}
}

// WithQuicklookSize sets the maximum width and height of the quicklook.
func WithQuicklookSize(size int) QuicklookOption {
	return func(o *quicklookOptions) {
		o.size = size
	}
}

// WithQuicklookNoData sets the sample value rendered as transparent.
func WithQuicklookNoData(noData float64) QuicklookOption {
	return func(o *quicklookOptions) {
		o.noData = noData
	}
}

// WithQuicklookStretch sets the low and high percentiles of the linear
// stretch.
func WithQuicklookStretch(low, high float64) QuicklookOption {
	return func(o *quicklookOptions) {
		o.low = low
		o.high = high
	}
}

// WriteQuicklook writes a stretched, downscaled 8-bit preview of ds to w
// as a deflate-compressed TIFF.
func WriteQuicklook(w io.Writer, ds *Dataset, options ...QuicklookOption) error {
	img, err := Quicklook(ds, options...)
	if err != nil {
		return err
	}
	return tiff.Encode(w, img, &tiff.Options{
		Compression: tiff.Deflate,
		Predictor:   true,
	})
}

// Quicklook returns a stretched, downscaled 8-bit preview of ds.
func Quicklook(ds *Dataset, options ...QuicklookOption) (image.Image, error) {
	o := &quicklookOptions{
		size: 512,
		low:  2,
		high: 98,
	}
	for _, option := range options {
		option(o)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	names := o.bands
	if len(names) == 0 {
		n := 1
		if len(ds.Variables) >= 3 {
			n = 3
		}
		for _, v := range ds.Variables[:n] {
			names = append(names, v.Name)
		}
	}
	if len(names) != 1 && len(names) != 3 {
		return nil, fmt.Errorf("%d quicklook bands, expected 1 or 3", len(names))
	}

	channels := make([][]uint8, len(names))
	valid := make([]bool, ds.Width*ds.Height)
	for i := range valid {
		valid[i] = true
	}
	for i, name := range names {
		v, ok := ds.Variable(name)
		if !ok {
			return nil, fmt.Errorf("%s: no such variable", name)
		}
		samples, err := float64Samples(v.Data)
		if err != nil {
			return nil, err
		}
		channels[i], err = stretch(samples, o.noData, o.low, o.high, valid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if len(channels) == 1 {
		channels = append(channels, channels[0], channels[0])
	}

	src := image.NewNRGBA(image.Rect(0, 0, ds.Width, ds.Height))
	for y := range ds.Height {
		for x := range ds.Width {
			i := y*ds.Width + x
			if !valid[i] {
				continue
			}
			src.SetNRGBA(x, y, color.NRGBA{R: channels[0][i], G: channels[1][i], B: channels[2][i], A: 0xff})
		}
	}

	width, height := quicklookSize(ds.Width, ds.Height, o.size)
	if width == ds.Width && height == ds.Height {
		return src, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// stretch linearly maps samples between the low and high percentiles of the
// valid samples onto 0-255. It clears valid for nodata and NaN samples.
func stretch(samples []float64, noData, low, high float64, valid []bool) ([]uint8, error) {
	sorted := make([]float64, 0, len(samples))
	for i, sample := range samples {
		if math.IsNaN(sample) || sample == noData {
			valid[i] = false
			continue
		}
		sorted = append(sorted, sample)
	}
	if len(sorted) == 0 {
		return nil, errNoValidSamples
	}
	slices.Sort(sorted)
	lo, hi := percentile(sorted, low), percentile(sorted, high)

	result := make([]uint8, len(samples))
	for i, sample := range samples {
		if math.IsNaN(sample) || sample == noData {
			continue
		}
		var value float64
		if hi > lo {
			value = 255 * (sample - lo) / (hi - lo)
		}
		result[i] = uint8(math.Round(min(max(value, 0), 255)))
	}
	return result, nil
}

// percentile returns the pth percentile of sorted using the nearest rank.
func percentile(sorted []float64, p float64) float64 {
	index := int(math.Round(p / 100 * float64(len(sorted)-1)))
	return sorted[min(max(index, 0), len(sorted)-1)]
}

// quicklookSize returns width and height scaled so that neither exceeds
// size, preserving the aspect ratio.
func quicklookSize(width, height, size int) (int, int) {
	if size <= 0 || (width <= size && height <= size) {
		return width, height
	}
	if width >= height {
		return size, max(height*size/width, 1)
	}
	return max(width*size/height, 1), size
}
