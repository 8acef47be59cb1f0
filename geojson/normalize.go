package geojson

// Required coordinate nesting per geometry type: a Polygon is a list of
// rings of positions, a MultiPolygon adds one more level.
const (
	polygonDepth      = 3
	multiPolygonDepth = 4
)

// maxDepthFixes bounds the normalization loop so a pathological coordinate
// tree cannot spin it forever.
const maxDepthFixes = 8

// Depth measures the nesting depth of a coordinate tree, following only the
// first element at each level. A non-sequence or an empty sequence has
// depth 0.
func Depth(coords any) int {
	seq, ok := coords.([]any)
	if !ok || len(seq) == 0 {
		return 0
	}
	return 1 + Depth(seq[0])
}

// NormalizeDepth corrects Polygon and MultiPolygon geometries whose
// coordinate nesting does not match their declared type: a geometry one
// level too shallow is wrapped, a deeper one is unwrapped by taking the
// first element, repeatedly until the depth is right. Other geometry types,
// nil geometries and geometries missing "type" or "coordinates" come back
// unchanged.
//
// The input is never mutated; a corrected geometry is returned as a fresh
// map sharing the inner coordinate slices.
func NormalizeDepth(geom map[string]any) map[string]any {
	if geom == nil {
		return nil
	}

	gtype, ok := geom["type"].(string)
	if !ok {
		return geom
	}
	coords, ok := geom["coordinates"]
	if !ok {
		return geom
	}

	var target int
	switch gtype {
	case "Polygon":
		target = polygonDepth
	case "MultiPolygon":
		target = multiPolygonDepth
	default:
		return geom
	}

	fixed := coords
	for i := 0; i < maxDepthFixes; i++ {
		d := Depth(fixed)
		if d == target {
			break
		}
		if d == target-1 && d >= 2 {
			fixed = []any{fixed}
		} else if d > target {
			fixed = fixed.([]any)[0]
		} else {
			// Too shallow to wrap safely; let the engine reject it.
			return geom
		}
	}
	if Depth(fixed) != target {
		return geom
	}

	out := make(map[string]any, len(geom))
	for k, v := range geom {
		out[k] = v
	}
	out["coordinates"] = fixed
	return out
}
