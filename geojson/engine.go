package geojson

// Geometry is an engine-native geometry value. It is opaque to the repair
// pipeline and only ever handed back to the engine that produced it.
type Geometry any

// Engine is the geometry backend the repair pipeline runs against. The
// production implementation wraps GEOS; tests inject a fake. Implementations
// must not let backend panics escape: every failure comes back as an error
// (or as invalid from IsValid).
type Engine interface {
	// Parse interprets a GeoJSON geometry mapping as a native geometry.
	Parse(geom map[string]any) (Geometry, error)

	// IsValid reports whether the geometry is topologically valid.
	IsValid(g Geometry) bool

	// ValidReason describes why a geometry is invalid, for reporting.
	ValidReason(g Geometry) string

	// BufferZero runs a zero-width buffer over the geometry, the usual
	// heuristic for resolving self-intersections and degenerate rings.
	BufferZero(g Geometry) (Geometry, error)

	// ToMap serializes a native geometry back to a GeoJSON mapping.
	ToMap(g Geometry) (map[string]any, error)

	// Destroy releases a native geometry. Safe on nil.
	Destroy(g Geometry)
}
