package view

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"cityconquer.ai/internal/scene"
	"cityconquer.ai/internal/sim/catalogs"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
)

var (
	colBackground = color.RGBA{R: 24, G: 30, B: 24, A: 255}
	colRoad       = color.RGBA{R: 70, G: 70, B: 76, A: 255}
	colTaken      = color.RGBA{R: 60, G: 140, B: 220, A: 70}
	colConquering = color.RGBA{R: 230, G: 170, B: 40, A: 70}
	colSelected   = color.RGBA{R: 255, G: 255, B: 255, A: 220}
	colPanel      = color.RGBA{R: 6, G: 10, B: 6, A: 210}
	colPanelEdge  = color.RGBA{R: 60, G: 100, B: 60, A: 180}
)

const (
	lineH = 16
	charW = 6
	padX  = 6
	padY  = 4
)

func fillRect(dst *ebiten.Image, cam Camera, r Rect, c color.Color) {
	x0, y0 := cam.WorldToScreen(r.MinX, r.MinZ)
	x1, y1 := cam.WorldToScreen(r.MaxX, r.MaxZ)
	vector.FillRect(dst, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), c, false)
}

func strokeRect(dst *ebiten.Image, cam Camera, r Rect, w float32, c color.Color) {
	x0, y0 := cam.WorldToScreen(r.MinX, r.MinZ)
	x1, y1 := cam.WorldToScreen(r.MaxX, r.MaxZ)
	vector.StrokeRect(dst, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), w, c, false)
}

// DrawScene draws every placed object as its footprint, tinted with the
// material's base colour. Objects without a mesh are drawn as a dot.
func DrawScene(dst *ebiten.Image, cam Camera, sc *scene.Scene) {
	dst.Fill(colBackground)
	// Roads first so buildings sit on top.
	for _, pass := range []catalogs.ModelType{catalogs.ModelRoad, catalogs.ModelBuilding} {
		for _, o := range sc.Objects {
			if o.Type != pass {
				continue
			}
			var c color.Color = colRoad
			if o.Material != nil && o.Material.BaseColor.A > 0 {
				c = o.Material.BaseColor
			}
			if r, ok := Footprint(o); ok {
				fillRect(dst, cam, r, c)
				continue
			}
			sx, sy := cam.WorldToScreen(o.Position.X, o.Position.Z)
			vector.FillCircle(dst, float32(sx), float32(sy), 2, c, false)
		}
	}
}

// DrawTiles overlays tile ownership and the selection.
func DrawTiles(dst *ebiten.Image, cam Camera, g tuning.Grid, s store.State) {
	for _, t := range s.Tiles {
		switch {
		case t.Taken:
			fillRect(dst, cam, CellRect(g, t.Cell), colTaken)
		case t.ConquerCounter > 0:
			fillRect(dst, cam, CellRect(g, t.Cell), colConquering)
		}
	}
	if s.SelectedTile != nil {
		strokeRect(dst, cam, CellRect(g, *s.SelectedTile), 2, colSelected)
	}
}

// DrawPanel draws lines of debug text in a framed box with its top-left at
// (x, y). It returns the box height.
func DrawPanel(dst *ebiten.Image, lines []string, x, y int) int {
	if len(lines) == 0 {
		return 0
	}
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	w := float32(maxLen*charW + padX*2)
	h := float32(len(lines)*lineH + padY*2)
	vector.FillRect(dst, float32(x), float32(y), w, h, colPanel, false)
	vector.StrokeRect(dst, float32(x), float32(y), w, h, 1, colPanelEdge, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(dst, l, x+padX, y+padY+i*lineH)
	}
	return int(h)
}
