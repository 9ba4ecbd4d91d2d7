package store

import (
	"fmt"
	"slices"
)

// Reduce is the root reducer. Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case UpdatePersonOnConquerForm, SetErrorOnConquerForm, ClearSelectedPeople, AddEventMessage, RemoveEventMessage:
		s.UI = ReduceUI(s.UI, a)
		return s
	case SelectTile:
		return selectTile(s, a)
	case ToggleForm:
		s.DisplayConquerForm = !s.DisplayConquerForm
		return s
	case Conquer:
		return conquer(s, a)
	case EndTurn:
		return endTurn(s)
	default:
		return s
	}
}

func selectTile(s State, a SelectTile) State {
	if tileIndex(s.Tiles, a.Tile) < 0 {
		return s
	}
	c := a.Tile
	s.SelectedTile = &c
	return s
}

func conquer(s State, a Conquer) State {
	i := tileIndex(s.Tiles, a.Tile)
	if i < 0 || len(a.People) == 0 || !CanConquer(s.Tiles[i]) || anyBusy(s.People, a.People) {
		return s
	}
	turns := a.Turns
	if turns <= 0 {
		turns = s.Rules.ConquerTurns
	}
	if turns <= 0 {
		turns = 1
	}

	tiles := slices.Clone(s.Tiles)
	t := tiles[i]
	t.ConquerCounter = turns
	t.Conquerors = slices.Clone(a.People)
	tiles[i] = t
	s.Tiles = tiles

	s.People = setBusy(s.People, a.People, true)
	s.UI.EventMessages = append(slices.Clone(s.UI.EventMessages),
		fmt.Sprintf("Conquest of %s started with %d people", t.Cell, len(a.People)))
	return s
}

func endTurn(s State) State {
	growth := FoodGrowth(s)
	s.Turn++

	food := s.FoodAmount + growth
	switch {
	case food < 0:
		food = 0
		if s.Population > 0 {
			s.Population--
		}
	case food > 0 && s.Population < s.MaxPopulation:
		s.Population++
	}
	s.FoodAmount = food

	var (
		tiles    []MapTile
		messages []string
	)
	for i, t := range s.Tiles {
		if t.ConquerCounter <= 0 {
			continue
		}
		if tiles == nil {
			tiles = slices.Clone(s.Tiles)
		}
		t.ConquerCounter--
		if t.ConquerCounter == 0 {
			t.Taken = true
			s.People = setBusy(s.People, t.Conquerors, false)
			t.Conquerors = nil
			s.MaxPopulation += s.Rules.PopulationPerTile
			messages = append(messages, fmt.Sprintf("Tile %s conquered", t.Cell))
		}
		tiles[i] = t
	}
	if tiles != nil {
		s.Tiles = tiles
	}
	if len(messages) > 0 {
		s.UI.EventMessages = append(slices.Clone(s.UI.EventMessages), messages...)
	}
	return s
}

// anyBusy reports whether one of ids is already away on a conquest.
func anyBusy(people []Person, ids []PersonID) bool {
	for _, p := range people {
		if p.Busy && slices.Contains(ids, p.ID) {
			return true
		}
	}
	return false
}

func setBusy(people []Person, ids []PersonID, busy bool) []Person {
	out := slices.Clone(people)
	for i := range out {
		if slices.Contains(ids, out[i].ID) {
			out[i].Busy = busy
		}
	}
	return out
}
