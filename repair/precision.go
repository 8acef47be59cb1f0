package repair

import "math"

// DefaultPrecision is plenty for WGS84 coordinates (~1cm at the equator).
const DefaultPrecision = 7

// TruncateCoordinates rounds every coordinate of the geometry to the given
// number of decimal places, in place, and returns the geometry. The geometry
// is expected to be freshly serialized, so mutation cannot alias anything.
func TruncateCoordinates(geom map[string]any, precision int) map[string]any {
	if geom == nil {
		return nil
	}
	coords, ok := geom["coordinates"]
	if !ok {
		return geom
	}

	ratio := math.Pow(10, float64(precision))
	geom["coordinates"] = roundTree(coords, ratio)
	return geom
}

func roundTree(node any, ratio float64) any {
	switch v := node.(type) {
	case []any:
		for i := range v {
			v[i] = roundTree(v[i], ratio)
		}
		return v
	case float64:
		return math.Round(v*ratio) / ratio
	default:
		return node
	}
}
