// Package repair implements the two-stage geometry repair pipeline:
// coordinate depth normalization followed by validity repair, applied per
// feature with bad features dropped rather than failing the run.
package repair

import "github.com/bsaid97/go-geojson-repair/geojson"

// RepairValidity returns a topologically valid version of g, or nil when the
// geometry cannot be repaired. A valid input comes back as-is. An invalid one
// is pushed through a zero-width buffer; buffered reports whether that was
// needed, so callers can both account for it and release the extra geometry.
func RepairValidity(eng geojson.Engine, g geojson.Geometry) (out geojson.Geometry, buffered bool) {
	if eng.IsValid(g) {
		return g, false
	}

	fixed, err := eng.BufferZero(g)
	if err != nil {
		return nil, false
	}
	if !eng.IsValid(fixed) {
		eng.Destroy(fixed)
		return nil, false
	}
	return fixed, true
}
