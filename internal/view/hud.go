package view

import (
	"fmt"
	"slices"
	"strings"

	"cityconquer.ai/internal/scene/assembler"
	"cityconquer.ai/internal/sim/store"
)

// MenuLines is the text of the status panel.
func MenuLines(m store.MenuView) []string {
	lines := []string{
		fmt.Sprintf("Turn %d", m.Turn),
		fmt.Sprintf("Population %d/%d", m.CurrentPopulation, m.MaxPopulation),
		fmt.Sprintf("Food %d (%+d/turn)", m.Food, m.FoodGrowth),
	}
	if m.SelectedTile == nil {
		return append(lines, "No tile selected")
	}
	t := m.SelectedTile
	state := "free"
	switch {
	case t.Taken:
		state = "taken"
	case t.ConquerCounter > 0:
		state = fmt.Sprintf("conquering, %d turns left", t.ConquerCounter)
	}
	lines = append(lines, fmt.Sprintf("Tile %s %s: %s", t.Cell, t.Template, state))
	if m.ShowConquerButton {
		lines = append(lines, "[F] conquer")
	}
	return lines
}

// FormLines is the text of the conquer form. people is the full roster so
// every person gets a numbered toggle.
func FormLines(f store.ConquerFormView, people []store.Person) []string {
	if !f.Display {
		return nil
	}
	lines := []string{"Conquer"}
	if f.SelectedTile != nil {
		lines[0] = fmt.Sprintf("Conquer %s", f.SelectedTile.Cell)
	}
	selected := map[store.PersonID]bool{}
	for _, p := range f.SelectedPeople {
		if p != nil {
			selected[p.ID] = true
		}
	}
	for i, p := range people {
		mark := " "
		if selected[p.ID] {
			mark = "x"
		}
		busy := ""
		if p.Busy {
			busy = " (busy)"
		}
		lines = append(lines, fmt.Sprintf("[%d][%s] %s%s", i+1, mark, p.Name, busy))
	}
	lines = append(lines, fmt.Sprintf("Success %.2f%%", f.SuccessProbability))
	if f.Error != "" {
		lines = append(lines, "! "+f.Error)
	}
	return append(lines, "[Enter] send  [Esc] close")
}

// EventLines returns the newest n event messages, newest last.
func EventLines(msgs []string, n int) []string {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return slices.Clone(msgs)
}

// Summary is the plain-text run report copied to the clipboard.
func Summary(res *assembler.Result, s store.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", res.RunID)
	fmt.Fprintf(&b, "intersections=%d lanes=%d buildings=%d objects=%d\n",
		res.Intersections, res.Lanes, res.Buildings, res.Scene.Len())

	counts := map[string]int{}
	for _, a := range res.Assignments {
		counts[a.Template]++
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(&b, "  %s: %d\n", n, counts[n])
	}
	m := store.Menu(s)
	fmt.Fprintf(&b, "turn=%d population=%d/%d food=%d taken=%d\n",
		m.Turn, m.CurrentPopulation, m.MaxPopulation, m.Food, store.TakenTiles(s))
	return b.String()
}

// TileSeeds turns an assembly's template assignments into store tiles.
func TileSeeds(res *assembler.Result) []store.TileSeed {
	out := make([]store.TileSeed, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		out = append(out, store.TileSeed{Cell: store.Cell{X: a.Cell.X, Z: a.Cell.Z}, Template: a.Template})
	}
	return out
}
