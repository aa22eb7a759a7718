package dea

import (
	"errors"
	"fmt"
)

var errParse = errors.New("parse error")

const (
	geoDoubleParamsTag = 34736
	geoASCIIParamsTag  = 34737
)

// A GeoKey is a key in a GeoTIFF GeoKey directory.
type GeoKey uint16

const (
	GeoKeyGTModelType  GeoKey = 1024
	GeoKeyGTRasterType GeoKey = 1025
	GeoKeyGTCitation   GeoKey = 1026

	GeoKeyGeodeticCRS            GeoKey = 2048
	GeoKeyGeogCitation           GeoKey = 2049
	GeoKeyGeodeticDatum          GeoKey = 2050
	GeoKeyPrimeMeridian          GeoKey = 2051
	GeoKeyAngularUnits           GeoKey = 2054
	GeoKeyGeogAngularUnitSize    GeoKey = 2055
	GeoKeyEllipsoid              GeoKey = 2056
	GeoKeyEllipsoidSemiMajorAxis GeoKey = 2057
	GeoKeyEllipsoidInvFlattening GeoKey = 2059
	GeoKeyPrimeMeridianLongitude GeoKey = 2061

	GeoKeyProjectedCRS  GeoKey = 3072
	GeoKeyPCSCitation   GeoKey = 3073
	GeoKeyProjection    GeoKey = 3074
	GeoKeyProjMethod    GeoKey = 3075
	GeoKeyLinearUnits   GeoKey = 3076
	GeoKeyFalseEasting  GeoKey = 3082
	GeoKeyFalseNorthing GeoKey = 3083
	GeoKeyCenterLong    GeoKey = 3088
	GeoKeyCenterLat     GeoKey = 3089
)

// Model types.
const (
	ModelTypeProjected  = 1
	ModelTypeGeographic = 2
)

// userDefined is the GeoKey value for a CRS without an EPSG code.
const userDefined = 32767

// GeoKeys are the parsed contents of a GeoKey directory.
type GeoKeys struct {
	Params       map[GeoKey]int
	DoubleParams map[GeoKey]float64
	ASCIIParams  map[GeoKey]string
}

// ParseGeoKeys parses a GeoKeyDirectoryTag and its associated
// GeoDoubleParamsTag and GeoASCIIParamsTag values.
func ParseGeoKeys(directory []uint16, doubleParams []float64, asciiParams []byte) (*GeoKeys, error) {
	if len(directory) < 4 {
		return nil, errParse
	}

	// The header is version, revision, minor revision, and key count.
	if directory[0] != 1 || directory[1] != 1 || directory[2] > 1 {
		return nil, errParse
	}
	numberOfKeys := int(directory[3])
	if len(directory) != 4+4*numberOfKeys {
		return nil, errParse
	}

	geoKeys := &GeoKeys{
		Params:       make(map[GeoKey]int),
		DoubleParams: make(map[GeoKey]float64),
		ASCIIParams:  make(map[GeoKey]string),
	}
	for i := range numberOfKeys {
		entry := directory[4+4*i : 4+4*(i+1)]
		key := GeoKey(entry[0])
		location, count, value := int(entry[1]), int(entry[2]), int(entry[3])
		switch location {
		case 0:
			if count != 1 {
				return nil, errParse
			}
			geoKeys.Params[key] = value
		case geoDoubleParamsTag:
			if count != 1 {
				return nil, errors.ErrUnsupported
			}
			if value >= len(doubleParams) {
				return nil, fmt.Errorf("geokey %d: double param %d: %w", key, value, errParse)
			}
			geoKeys.DoubleParams[key] = doubleParams[value]
		case geoASCIIParamsTag:
			if value+count > len(asciiParams) {
				return nil, fmt.Errorf("geokey %d: ascii param %d: %w", key, value, errParse)
			}
			geoKeys.ASCIIParams[key] = string(asciiParams[value : value+count])
		default:
			return nil, errors.ErrUnsupported
		}
	}
	return geoKeys, nil
}

// EPSG returns the EPSG code of the CRS described by k, or false if there
// is none.
func (k *GeoKeys) EPSG() (int, bool) {
	var key GeoKey
	switch k.Params[GeoKeyGTModelType] {
	case ModelTypeProjected:
		key = GeoKeyProjectedCRS
	case ModelTypeGeographic:
		key = GeoKeyGeodeticCRS
	default:
		return 0, false
	}
	code, ok := k.Params[key]
	if !ok || code == userDefined {
		return 0, false
	}
	return code, true
}
