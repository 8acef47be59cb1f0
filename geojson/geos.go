package geojson

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geos"
)

// bufferQuadSegs is the segment count used when the zero-width buffer has to
// approximate curves; irrelevant for the usual polygonal inputs.
const bufferQuadSegs = 8

// GeosEngine implements Engine on top of GEOS. GEOS reports hard errors by
// panicking through its error handler, so every method traps panics and
// converts them to errors.
type GeosEngine struct{}

// NewGeosEngine returns a GEOS-backed geometry engine.
func NewGeosEngine() *GeosEngine {
	return &GeosEngine{}
}

func (e *GeosEngine) Parse(geom map[string]any) (g Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, eris.Errorf("geos: parse: %v", r)
		}
	}()

	raw, err := json.Marshal(geom)
	if err != nil {
		return nil, eris.Wrap(err, "geos: encode geometry")
	}

	parsed, err := geos.NewGeomFromGeoJSON(string(raw))
	if err != nil {
		return nil, eris.Wrap(err, "geos: parse geometry")
	}
	return parsed, nil
}

func (e *GeosEngine) IsValid(g Geometry) (valid bool) {
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()
	return g.(*geos.Geom).IsValid()
}

func (e *GeosEngine) ValidReason(g Geometry) (reason string) {
	defer func() {
		if r := recover(); r != nil {
			reason = "unknown validity failure"
		}
	}()
	return g.(*geos.Geom).IsValidReason()
}

func (e *GeosEngine) BufferZero(g Geometry) (out Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, eris.Errorf("geos: zero buffer: %v", r)
		}
	}()

	buffered := g.(*geos.Geom).Buffer(0, bufferQuadSegs)
	if buffered == nil {
		return nil, eris.New("geos: zero buffer returned no geometry")
	}
	return buffered, nil
}

func (e *GeosEngine) ToMap(g Geometry) (out map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, eris.Errorf("geos: serialize: %v", r)
		}
	}()

	raw := g.(*geos.Geom).ToGeoJSON(-1)
	var geom map[string]any
	if err := json.Unmarshal([]byte(raw), &geom); err != nil {
		return nil, eris.Wrap(err, "geos: decode serialized geometry")
	}
	return geom, nil
}

func (e *GeosEngine) Destroy(g Geometry) {
	if gg, ok := g.(*geos.Geom); ok && gg != nil {
		gg.Destroy()
	}
}
