package view

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconquer.ai/internal/scene"
	"cityconquer.ai/internal/scene/assembler"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
)

var testGrid = tuning.Grid{Min: -5, Max: 5, CellSpacing: 23.4}

func TestCamera_RoundTrip(t *testing.T) {
	c := Camera{CenterX: 10, CenterZ: -4, Zoom: 3, Width: 800, Height: 600}
	sx, sy := c.WorldToScreen(10, -4)
	assert.Equal(t, 400.0, sx)
	assert.Equal(t, 300.0, sy)

	x, z := c.ScreenToWorld(c.WorldToScreen(37.5, 12.25))
	assert.InDelta(t, 37.5, x, 1e-9)
	assert.InDelta(t, 12.25, z, 1e-9)
}

func TestCamera_ZoomKeepsCursorPoint(t *testing.T) {
	c := Camera{Zoom: 2, Width: 800, Height: 600}
	wx, wz := c.ScreenToWorld(100, 50)
	c.ZoomBy(1.5, 100, 50)
	assert.Equal(t, 3.0, c.Zoom)
	x, z := c.ScreenToWorld(100, 50)
	assert.InDelta(t, wx, x, 1e-9)
	assert.InDelta(t, wz, z, 1e-9)

	c.ZoomBy(1000, 0, 0)
	assert.Equal(t, ZoomMax, c.Zoom)
	c.ZoomBy(0.00001, 0, 0)
	assert.Equal(t, ZoomMin, c.Zoom)
}

func TestFitGrid(t *testing.T) {
	c := FitGrid(testGrid, 936, 600)
	assert.InDelta(t, 0, c.CenterX, 1e-9)
	assert.InDelta(t, 600/234.0, c.Zoom, 1e-9)

	x0, y0 := c.WorldToScreen(-5*23.4, -5*23.4)
	x1, y1 := c.WorldToScreen(5*23.4, 5*23.4)
	assert.InDelta(t, 0, y0, 1e-6)
	assert.InDelta(t, 600, y1, 1e-6)
	assert.Greater(t, x0, 0.0)
	assert.Less(t, x1, 936.0)
}

func TestCellAt(t *testing.T) {
	c, ok := CellAt(testGrid, 0.1, 0.1)
	require.True(t, ok)
	assert.Equal(t, store.Cell{}, c)

	c, ok = CellAt(testGrid, -0.1, 23.5)
	require.True(t, ok)
	assert.Equal(t, store.Cell{X: -1, Z: 1}, c)

	_, ok = CellAt(testGrid, 5*23.4, 0)
	assert.False(t, ok)
	_, ok = CellAt(testGrid, -5*23.4-0.01, 0)
	assert.False(t, ok)

	r := CellRect(testGrid, store.Cell{X: -1, Z: 1})
	assert.Equal(t, Rect{MinX: -23.4, MinZ: 23.4, MaxX: 0, MaxZ: 46.8}, r)
}

func TestFootprint(t *testing.T) {
	o := scene.NewObject("lane")
	o.Mesh = &scene.Mesh{Positions: []scene.Vec3{{X: -1, Z: -4}, {X: 1, Z: 4}}}
	o.Position = scene.Vec3{X: 10, Z: 20}

	r, ok := Footprint(o)
	require.True(t, ok)
	assert.Equal(t, Rect{MinX: 9, MinZ: 16, MaxX: 11, MaxZ: 24}, r)

	o.Rotation.Y = math.Pi / 2
	o.Scale = scene.Vec3{X: 2, Y: 1, Z: 1}
	r, ok = Footprint(o)
	require.True(t, ok)
	assert.InDelta(t, 6, r.MinX, 1e-9)
	assert.InDelta(t, 14, r.MaxX, 1e-9)
	assert.InDelta(t, 18, r.MinZ, 1e-9)
	assert.InDelta(t, 22, r.MaxZ, 1e-9)

	_, ok = Footprint(scene.NewObject("empty"))
	assert.False(t, ok)
}

func TestMenuAndFormLines(t *testing.T) {
	s := store.NewState(tuning.Defaults().Game, []store.TileSeed{
		{Cell: store.Cell{}, Template: "park"},
		{Cell: store.Cell{X: 1}, Template: "suburb"},
	})
	lines := MenuLines(store.Menu(s))
	assert.Equal(t, "No tile selected", lines[len(lines)-1])

	s = store.Reduce(s, store.SelectTile{Tile: store.Cell{X: 1}})
	s = store.Reduce(s, store.ToggleForm{})
	s = store.Reduce(s, store.UpdatePersonOnConquerForm{Person: s.People[1]})
	s = store.Reduce(s, store.SetErrorOnConquerForm{Message: store.ErrNoPeopleSelected})

	lines = MenuLines(store.Menu(s))
	assert.Contains(t, lines, "Tile (1, 0) suburb: free")
	assert.Contains(t, lines, "[F] conquer")

	form := FormLines(store.ConquerForm(s), s.People)
	require.NotEmpty(t, form)
	assert.Equal(t, "Conquer (1, 0)", form[0])
	assert.Contains(t, form, "[2][x] "+s.People[1].Name)
	assert.Contains(t, form, "Success 33.33%")
	assert.Contains(t, form, "! No people selected")

	s = store.Reduce(s, store.ToggleForm{})
	assert.Nil(t, FormLines(store.ConquerForm(s), s.People))
}

func TestEventLinesAndSummary(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, EventLines([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a"}, EventLines([]string{"a"}, 4))

	res := &assembler.Result{
		RunID:         "r1",
		Scene:         scene.New(),
		Intersections: 1,
		Lanes:         4,
		Assignments: []assembler.Assignment{
			{Template: "park"}, {Template: "suburb"}, {Template: "park"},
		},
	}
	out := Summary(res, store.State{Turn: 2})
	assert.True(t, strings.HasPrefix(out, "run r1\n"))
	assert.Contains(t, out, "intersections=1 lanes=4 buildings=0 objects=0")
	assert.Contains(t, out, "  park: 2\n  suburb: 1\n")
	assert.Contains(t, out, "turn=2")
}
