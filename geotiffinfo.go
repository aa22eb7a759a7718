package dea

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
)

// TIFF constants.
const (
	CompressionNone    = 1
	CompressionLZW     = 5
	CompressionDeflate = 8

	SampleFormatUint  = 1
	SampleFormatInt   = 2
	SampleFormatFloat = 3

	rasterPixelIsPoint = 2
)

type readAtReadSeeker interface {
	io.ReaderAt
	io.ReadSeeker
}

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal
// the IFD of a strip or tile organized GeoTIFF.
type geoTIFFIFD struct {
	ImageWidth                uint32    `tiff:"field,tag=256"`
	ImageLength               uint32    `tiff:"field,tag=257"`
	BitsPerSample             []uint16  `tiff:"field,tag=258"`
	Compression               uint16    `tiff:"field,tag=259"`
	PhotometricInterpretation uint16    `tiff:"field,tag=262"`
	SamplesPerPixel           uint16    `tiff:"field,tag=277"`
	PlanarConfiguration       uint16    `tiff:"field,tag=284"`
	Predictor                 uint16    `tiff:"field,tag=317"`
	SampleFormat              []uint16  `tiff:"field,tag=339"`
	ModelPixelScaleTag        []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag          []float64 `tiff:"field,tag=33922"`
	ModelTransformationTag    []float64 `tiff:"field,tag=34264"`
	GeoKeyDirectoryTag        []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag        []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag         string    `tiff:"field,tag=34737"`
	GDALNoData                string    `tiff:"field,tag=42113"`
}

// A GeoTIFFInfo describes the structure of a GeoTIFF file.
type GeoTIFFInfo struct {
	Width               int
	Height              int
	Bands               int
	BitsPerSample       int
	SampleFormat        int
	Compression         int
	Predictor           int
	PlanarConfiguration int
	NoData              string
	PixelScale          []float64
	Tiepoint            []float64
	ModelTransformation []float64
	GeoKeys             *GeoKeys
}

// ReadGeoTIFFInfo reads the structure of the GeoTIFF filename in fsys.
func ReadGeoTIFFInfo(fsys fs.FS, filename string) (*GeoTIFFInfo, error) {
	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r, ok := file.(readAtReadSeeker)
	if !ok {
		return nil, errors.ErrUnsupported
	}

	tiffTIFF, err := tiff.Parse(r, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}
	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}

	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	info := &GeoTIFFInfo{
		Width:               int(ifd.ImageWidth),
		Height:              int(ifd.ImageLength),
		Bands:               int(ifd.SamplesPerPixel),
		Compression:         int(ifd.Compression),
		Predictor:           int(ifd.Predictor),
		PlanarConfiguration: int(ifd.PlanarConfiguration),
		NoData:              ifd.GDALNoData,
		PixelScale:          ifd.ModelPixelScaleTag,
		Tiepoint:            ifd.ModelTiepointTag,
		ModelTransformation: ifd.ModelTransformationTag,
		BitsPerSample:       1,
		SampleFormat:        SampleFormatUint,
	}
	if info.Bands == 0 {
		info.Bands = 1
	}
	if info.Predictor == 0 {
		info.Predictor = 1
	}
	if len(ifd.BitsPerSample) > 0 {
		info.BitsPerSample = int(ifd.BitsPerSample[0])
	}
	if len(ifd.SampleFormat) > 0 {
		info.SampleFormat = int(ifd.SampleFormat[0])
	}

	if len(ifd.GeoKeyDirectoryTag) > 0 {
		info.GeoKeys, err = ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
		if err != nil {
			return nil, err
		}
	}

	return info, nil
}

// EPSG returns the EPSG code of i's CRS, if known.
func (i *GeoTIFFInfo) EPSG() (int, bool) {
	if i.GeoKeys == nil {
		return 0, false
	}
	return i.GeoKeys.EPSG()
}

// Transform returns i's affine transform from pixel corners to model
// coordinates.
func (i *GeoTIFFInfo) Transform() (Affine, error) {
	var a Affine
	switch {
	case len(i.ModelTransformation) == 16:
		m := i.ModelTransformation
		a = Affine{
			A: m[0], B: m[1], C: m[3],
			D: m[4], E: m[5], F: m[7],
		}
	case len(i.PixelScale) == 3 && len(i.Tiepoint) == 6:
		scaleX, scaleY := i.PixelScale[0], i.PixelScale[1]
		col, row := i.Tiepoint[0], i.Tiepoint[1]
		x, y := i.Tiepoint[3], i.Tiepoint[4]
		a = Affine{
			A: scaleX, C: x - col*scaleX,
			E: -scaleY, F: y + row*scaleY,
		}
	default:
		return Affine{}, errors.ErrUnsupported
	}
	if i.GeoKeys != nil && i.GeoKeys.Params[GeoKeyGTRasterType] == rasterPixelIsPoint {
		a.C -= (a.A + a.B) / 2
		a.F -= (a.D + a.E) / 2
	}
	return a, nil
}
