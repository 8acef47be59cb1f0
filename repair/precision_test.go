package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCoordinates_Polygon(t *testing.T) {
	geom := map[string]any{
		"type": "Polygon",
		"coordinates": []any{
			[]any{[]any{4.123456789012, 52.987654321098}, []any{4.2, 52.3}},
		},
	}

	TruncateCoordinates(geom, 7)

	ring := geom["coordinates"].([]any)[0].([]any)
	assert.Equal(t, 4.1234568, ring[0].([]any)[0])
	assert.Equal(t, 52.9876543, ring[0].([]any)[1])
	assert.Equal(t, 4.2, ring[1].([]any)[0])
}

func TestTruncateCoordinates_MultiPolygonNesting(t *testing.T) {
	geom := map[string]any{
		"type": "MultiPolygon",
		"coordinates": []any{
			[]any{[]any{[]any{1.23456, 2.34567}}},
		},
	}

	TruncateCoordinates(geom, 2)

	pos := geom["coordinates"].([]any)[0].([]any)[0].([]any)[0].([]any)
	assert.Equal(t, 1.23, pos[0])
	assert.Equal(t, 2.35, pos[1])
}

func TestTruncateCoordinates_NonNumericLeavesUntouched(t *testing.T) {
	geom := map[string]any{"type": "Polygon", "coordinates": "not-a-list"}
	TruncateCoordinates(geom, 7)
	assert.Equal(t, "not-a-list", geom["coordinates"])
}

func TestTruncateCoordinates_NilAndMissing(t *testing.T) {
	assert.Nil(t, TruncateCoordinates(nil, 7))

	geom := map[string]any{"type": "Polygon"}
	assert.Equal(t, geom, TruncateCoordinates(geom, 7))
}
