package main

import (
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"cityconquer.ai/internal/city"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/view"
)

var personKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type game struct {
	s   *city.Session
	cam view.Camera
	log *logrus.Entry

	dragging  bool
	lastX     int
	lastY     int
	dragMoved bool
	notice    string
	noticeTTL int
}

func newGame(s *city.Session, w, h int, log *logrus.Entry) *game {
	return &game{s: s, cam: view.FitGrid(s.Tuning.Grid, w, h), log: log}
}

func (g *game) Update() error {
	st := g.s.Store

	if _, wy := ebiten.Wheel(); wy != 0 {
		mx, my := ebiten.CursorPosition()
		g.cam.ZoomBy(math.Pow(1.12, wy), float64(mx), float64(my))
	}
	pan := 6.0
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pan(0, -pan)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pan(0, pan)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Pan(-pan, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Pan(pan, 0)
	}

	g.updateMouse()

	state := st.State()
	if state.DisplayConquerForm {
		for i, k := range personKeys {
			if i < len(state.People) && !state.People[i].Busy && inpututil.IsKeyJustPressed(k) {
				st.Dispatch(store.UpdatePersonOnConquerForm{Person: state.People[i]})
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && state.SelectedTile != nil {
			store.SubmitConquer(st, *state.SelectedTile, store.SelectedPeople(state), 0)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			store.CloseConquerForm(st)
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyF) && store.Menu(state).ShowConquerButton {
		st.Dispatch(store.ToggleForm{})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		st.Dispatch(store.EndTurn{})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		st.Dispatch(store.RemoveEventMessage{})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copySummary()
	}
	if g.noticeTTL > 0 {
		g.noticeTTL--
	}
	return nil
}

// updateMouse pans on drag and selects the tile under the cursor on a click.
func (g *game) updateMouse() {
	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging, g.dragMoved = true, false
		g.lastX, g.lastY = mx, my
		return
	}
	if g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		dx, dy := mx-g.lastX, my-g.lastY
		if dx != 0 || dy != 0 {
			g.cam.Pan(float64(-dx), float64(-dy))
			g.dragMoved = true
		}
		g.lastX, g.lastY = mx, my
		return
	}
	if g.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
		if g.dragMoved {
			return
		}
		wx, wz := g.cam.ScreenToWorld(float64(mx), float64(my))
		if c, ok := view.CellAt(g.s.Tuning.Grid, wx, wz); ok {
			g.s.Store.Dispatch(store.SelectTile{Tile: c})
		}
	}
}

func (g *game) copySummary() {
	text := view.Summary(g.s.Result, g.s.Store.State())
	if err := clipboard.WriteAll(text); err != nil {
		g.log.WithError(err).Warn("clipboard")
		g.setNotice("clipboard unavailable")
		return
	}
	g.setNotice("summary copied")
}

func (g *game) setNotice(s string) {
	g.notice = s
	g.noticeTTL = 120
}

func (g *game) Draw(screen *ebiten.Image) {
	state := g.s.Store.State()
	view.DrawScene(screen, g.cam, g.s.Result.Scene)
	view.DrawTiles(screen, g.cam, g.s.Tuning.Grid, state)

	y := 8
	y += view.DrawPanel(screen, view.MenuLines(store.Menu(state)), 8, y) + 6
	y += view.DrawPanel(screen, view.FormLines(store.ConquerForm(state), state.People), 8, y) + 6

	events := view.EventLines(state.UI.EventMessages, 6)
	if g.noticeTTL > 0 {
		events = append(events, g.notice)
	}
	view.DrawPanel(screen, events, 8, y)

	help := []string{"click=select  drag/WASD=pan  wheel=zoom", "F=conquer  E=end turn  C=copy summary"}
	view.DrawPanel(screen, help, 8, g.cam.Height-2*16-16)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.cam.Width, g.cam.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
