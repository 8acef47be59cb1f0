package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsaid97/go-geojson-repair/geojson"
)

func parseFake(t *testing.T, eng *fakeEngine, geom map[string]any) geojson.Geometry {
	t.Helper()
	g, err := eng.Parse(geom)
	require.NoError(t, err)
	return g
}

func squareGeom() map[string]any {
	return map[string]any{
		"type":        "Polygon",
		"coordinates": []any{[]any{[]any{0.0, 0.0}, []any{1.0, 0.0}, []any{1.0, 1.0}, []any{0.0, 0.0}}},
	}
}

func TestRepairValidity_ValidPassesThrough(t *testing.T) {
	eng := &fakeEngine{}
	g := parseFake(t, eng, squareGeom())

	out, buffered := RepairValidity(eng, g)
	assert.Same(t, g, out)
	assert.False(t, buffered)
}

func TestRepairValidity_BufferRepairsInvalid(t *testing.T) {
	eng := &fakeEngine{invalid: func(map[string]any) bool { return true }, repairable: true}
	g := parseFake(t, eng, squareGeom())

	out, buffered := RepairValidity(eng, g)
	require.NotNil(t, out)
	assert.True(t, buffered)
	assert.NotSame(t, g, out)
	assert.True(t, eng.IsValid(out))
}

func TestRepairValidity_BufferErrorDrops(t *testing.T) {
	eng := &fakeEngine{invalid: func(map[string]any) bool { return true }, bufferErr: true}
	g := parseFake(t, eng, squareGeom())

	out, buffered := RepairValidity(eng, g)
	assert.Nil(t, out)
	assert.False(t, buffered)
}

func TestRepairValidity_StillInvalidDropsAndReleases(t *testing.T) {
	eng := &fakeEngine{invalid: func(map[string]any) bool { return true }, repairable: false}
	g := parseFake(t, eng, squareGeom())

	out, _ := RepairValidity(eng, g)
	assert.Nil(t, out)
	// The failed buffer result must not leak.
	assert.Equal(t, int64(1), eng.destroyed.Load())
}
