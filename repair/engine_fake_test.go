package repair

import (
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/bsaid97/go-geojson-repair/geojson"
)

// fakeGeom is the fake engine's native geometry: the dict it was parsed from
// plus a validity bit.
type fakeGeom struct {
	dict  map[string]any
	valid bool
}

// fakeEngine implements geojson.Engine without GEOS. Validity is decided by
// the invalid predicate (everything valid when nil); BufferZero repairs when
// repairable is true. created/destroyed track native geometry lifetimes and
// are atomic because batch tests share one engine across workers.
type fakeEngine struct {
	invalid    func(geom map[string]any) bool
	repairable bool
	bufferErr  bool

	created   atomic.Int64
	destroyed atomic.Int64
}

func (e *fakeEngine) Parse(geom map[string]any) (geojson.Geometry, error) {
	if _, ok := geom["type"].(string); !ok {
		return nil, eris.New("fake: geometry has no type")
	}
	if _, ok := geom["coordinates"].([]any); !ok {
		return nil, eris.New("fake: coordinates is not a list")
	}

	valid := true
	if e.invalid != nil && e.invalid(geom) {
		valid = false
	}
	e.created.Add(1)
	return &fakeGeom{dict: geom, valid: valid}, nil
}

func (e *fakeEngine) IsValid(g geojson.Geometry) bool {
	return g.(*fakeGeom).valid
}

func (e *fakeEngine) ValidReason(g geojson.Geometry) string {
	if g.(*fakeGeom).valid {
		return "Valid Geometry"
	}
	return "Self-intersection"
}

func (e *fakeEngine) BufferZero(g geojson.Geometry) (geojson.Geometry, error) {
	if e.bufferErr {
		return nil, eris.New("fake: topology exception")
	}
	e.created.Add(1)
	return &fakeGeom{dict: g.(*fakeGeom).dict, valid: e.repairable}, nil
}

func (e *fakeEngine) ToMap(g geojson.Geometry) (map[string]any, error) {
	src := g.(*fakeGeom).dict
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

func (e *fakeEngine) Destroy(g geojson.Geometry) {
	if g != nil {
		e.destroyed.Add(1)
	}
}

// balanced reports whether every created geometry was destroyed.
func (e *fakeEngine) balanced() bool {
	return e.created.Load() == e.destroyed.Load()
}
