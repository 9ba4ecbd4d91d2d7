// Package view draws an assembled city top-down with ebiten and projects
// screen input back onto the grid.
package view

import (
	"math"

	"cityconquer.ai/internal/scene"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
)

const (
	ZoomMin = 0.5
	ZoomMax = 12.0
)

// Camera maps the world XZ plane onto the screen. World +X goes right and
// world +Z goes down. Zoom is pixels per world unit.
type Camera struct {
	CenterX, CenterZ float64
	Zoom             float64
	Width, Height    int
}

func (c Camera) WorldToScreen(x, z float64) (sx, sy float64) {
	sx = (x-c.CenterX)*c.Zoom + float64(c.Width)/2
	sy = (z-c.CenterZ)*c.Zoom + float64(c.Height)/2
	return sx, sy
}

func (c Camera) ScreenToWorld(sx, sy float64) (x, z float64) {
	x = (sx-float64(c.Width)/2)/c.Zoom + c.CenterX
	z = (sy-float64(c.Height)/2)/c.Zoom + c.CenterZ
	return x, z
}

// Pan moves the centre by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.CenterX += dx / c.Zoom
	c.CenterZ += dy / c.Zoom
}

// ZoomBy scales the zoom by f, keeping the world point under (sx, sy) fixed.
func (c *Camera) ZoomBy(f, sx, sy float64) {
	wx, wz := c.ScreenToWorld(sx, sy)
	c.Zoom = math.Min(ZoomMax, math.Max(ZoomMin, c.Zoom*f))
	nx, nz := c.ScreenToWorld(sx, sy)
	c.CenterX += wx - nx
	c.CenterZ += wz - nz
}

// FitGrid centres the camera on the grid and picks the largest zoom that
// shows all of it.
func FitGrid(g tuning.Grid, width, height int) Camera {
	lo := float64(g.Min) * g.CellSpacing
	hi := float64(g.Max) * g.CellSpacing
	span := hi - lo
	c := Camera{CenterX: (lo + hi) / 2, CenterZ: (lo + hi) / 2, Zoom: 1, Width: width, Height: height}
	if span > 0 {
		c.Zoom = math.Min(float64(width), float64(height)) / span
	}
	c.Zoom = math.Min(ZoomMax, math.Max(ZoomMin, c.Zoom))
	return c
}

// CellAt returns the grid cell covering world point (x, z). Cell (i, j)
// covers [i*spacing, (i+1)*spacing) on both axes.
func CellAt(g tuning.Grid, x, z float64) (store.Cell, bool) {
	if g.CellSpacing <= 0 {
		return store.Cell{}, false
	}
	cx := int(math.Floor(x / g.CellSpacing))
	cz := int(math.Floor(z / g.CellSpacing))
	if cx < g.Min || cx >= g.Max || cz < g.Min || cz >= g.Max {
		return store.Cell{}, false
	}
	return store.Cell{X: cx, Z: cz}, true
}

// Rect is an axis-aligned XZ rectangle in world units.
type Rect struct {
	MinX, MinZ, MaxX, MaxZ float64
}

func CellRect(g tuning.Grid, c store.Cell) Rect {
	s := g.CellSpacing
	return Rect{MinX: float64(c.X) * s, MinZ: float64(c.Z) * s, MaxX: float64(c.X+1) * s, MaxZ: float64(c.Z+1) * s}
}

// Footprint is the XZ extent of o's mesh after scale, Y rotation and
// translation.
func Footprint(o *scene.Object) (Rect, bool) {
	if o == nil || o.Mesh == nil {
		return Rect{}, false
	}
	lo, hi, ok := o.Mesh.Bounds()
	if !ok {
		return Rect{}, false
	}
	sin, cos := math.Sincos(o.Rotation.Y)
	r := Rect{MinX: math.Inf(1), MinZ: math.Inf(1), MaxX: math.Inf(-1), MaxZ: math.Inf(-1)}
	for _, p := range [4][2]float64{{lo.X, lo.Z}, {lo.X, hi.Z}, {hi.X, lo.Z}, {hi.X, hi.Z}} {
		x := p[0] * o.Scale.X
		z := p[1] * o.Scale.Z
		// Right-handed rotation about +Y.
		wx := x*cos + z*sin + o.Position.X
		wz := -x*sin + z*cos + o.Position.Z
		r.MinX = math.Min(r.MinX, wx)
		r.MaxX = math.Max(r.MaxX, wx)
		r.MinZ = math.Min(r.MinZ, wz)
		r.MaxZ = math.Max(r.MaxZ, wz)
	}
	return r, true
}
