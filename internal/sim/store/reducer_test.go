package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconquer.ai/internal/sim/tuning"
)

func testGame() tuning.Game {
	return tuning.Game{
		StartPopulation:    3,
		StartMaxPopulation: 5,
		StartFood:          10,
		BaseFood:           2,
		FoodPerTile:        2,
		FoodPerPerson:      1,
		PopulationPerTile:  2,
		ConquerTurns:       3,
		StartTiles:         [][2]int{{0, 0}},
		People:             []string{"Ada", "Bram", "Cato", "Dara"},
	}
}

func testState() State {
	var seeds []TileSeed
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			seeds = append(seeds, TileSeed{Cell: Cell{X: x, Z: z}, Template: "suburb"})
		}
	}
	return NewState(testGame(), seeds)
}

func TestNewState(t *testing.T) {
	s := testState()
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, 3, s.Population)
	assert.Equal(t, 5, s.MaxPopulation)
	assert.Equal(t, 10, s.FoodAmount)
	require.Len(t, s.People, 4)
	assert.Equal(t, Person{ID: 1, Name: "Ada"}, s.People[0])
	require.Len(t, s.Tiles, 9)
	assert.Equal(t, 1, TakenTiles(s))
	assert.Nil(t, s.SelectedTile)
}

func TestReduce_UnknownIsIdentity(t *testing.T) {
	s := testState()
	s = Reduce(s, SelectTile{Tile: Cell{X: 1, Z: 1}})
	s = Reduce(s, AddEventMessage{Content: "hello"})
	assert.Equal(t, s, Reduce(s, UnknownAction{Kind: "SOMETHING_ELSE"}))
}

func TestReduce_SelectTile(t *testing.T) {
	s := testState()
	next := Reduce(s, SelectTile{Tile: Cell{X: 1, Z: 0}})
	require.NotNil(t, next.SelectedTile)
	assert.Equal(t, Cell{X: 1, Z: 0}, *next.SelectedTile)
	assert.Nil(t, s.SelectedTile)

	// Cells off the grid are ignored.
	assert.Equal(t, next, Reduce(next, SelectTile{Tile: Cell{X: 40, Z: 0}}))
}

func TestReduce_ToggleForm(t *testing.T) {
	s := Reduce(testState(), ToggleForm{})
	assert.True(t, s.DisplayConquerForm)
	s = Reduce(s, ToggleForm{})
	assert.False(t, s.DisplayConquerForm)
}

func TestReduce_ConquerStarts(t *testing.T) {
	s := testState()
	c := Cell{X: 1, Z: 1}
	next := Reduce(s, Conquer{Tile: c, People: []PersonID{1, 3}})

	tile, ok := SelectedTile(Reduce(next, SelectTile{Tile: c}))
	require.True(t, ok)
	assert.Equal(t, 3, tile.ConquerCounter)
	assert.Equal(t, []PersonID{1, 3}, tile.Conquerors)
	assert.False(t, CanConquer(tile))

	assert.True(t, next.People[0].Busy)
	assert.False(t, next.People[1].Busy)
	assert.True(t, next.People[2].Busy)
	require.Len(t, next.UI.EventMessages, 1)
	assert.Contains(t, next.UI.EventMessages[0], "(1, 1)")

	// Input untouched.
	for _, p := range s.People {
		assert.False(t, p.Busy)
	}
	for _, tl := range s.Tiles {
		assert.Zero(t, tl.ConquerCounter)
	}
	assert.Empty(t, s.UI.EventMessages)
}

func TestReduce_ConquerIneligibleIsIdentity(t *testing.T) {
	s := testState()
	// Taken start tile.
	assert.Equal(t, s, Reduce(s, Conquer{Tile: Cell{}, People: []PersonID{1}}))
	// No people.
	assert.Equal(t, s, Reduce(s, Conquer{Tile: Cell{X: 1}}))
	// Unknown cell.
	assert.Equal(t, s, Reduce(s, Conquer{Tile: Cell{X: 9}, People: []PersonID{1}}))
	// Already running.
	running := Reduce(s, Conquer{Tile: Cell{X: 1}, People: []PersonID{1}})
	assert.Equal(t, running, Reduce(running, Conquer{Tile: Cell{X: 1}, People: []PersonID{2}}))
}

func TestReduce_EndTurnCompletesConquest(t *testing.T) {
	s := testState()
	c := Cell{X: -1, Z: 0}
	s = Reduce(s, Conquer{Tile: c, People: []PersonID{2}, Turns: 2})
	maxPop := s.MaxPopulation

	s = Reduce(s, EndTurn{})
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, 1, TakenTiles(s))
	assert.True(t, s.People[1].Busy)

	s = Reduce(s, EndTurn{})
	assert.Equal(t, 3, s.Turn)
	assert.Equal(t, 2, TakenTiles(s))
	assert.False(t, s.People[1].Busy)
	assert.Equal(t, maxPop+2, s.MaxPopulation)

	s = Reduce(s, SelectTile{Tile: c})
	tile, ok := SelectedTile(s)
	require.True(t, ok)
	assert.True(t, tile.Taken)
	assert.Zero(t, tile.ConquerCounter)
	assert.Empty(t, tile.Conquerors)
	assert.Equal(t, "Tile (-1, 0) conquered", s.UI.EventMessages[len(s.UI.EventMessages)-1])
}

func TestReduce_ConquerWithBusyPersonIsIdentity(t *testing.T) {
	s := Reduce(testState(), Conquer{Tile: Cell{X: 1}, People: []PersonID{1}, Turns: 1})
	s = Reduce(s, Conquer{Tile: Cell{Z: 1}, People: []PersonID{1, 2}, Turns: 3})

	second := s.Tiles[tileIndex(s.Tiles, Cell{Z: 1})]
	assert.Zero(t, second.ConquerCounter)
	assert.Empty(t, second.Conquerors)
	assert.False(t, s.People[1].Busy)

	s = Reduce(s, EndTurn{})
	assert.False(t, s.People[0].Busy)
	for _, tile := range s.Tiles {
		assert.Zero(t, tile.ConquerCounter, "tile %s", tile.Cell)
	}

	// Once freed, the same person can go again.
	s = Reduce(s, Conquer{Tile: Cell{Z: 1}, People: []PersonID{1}, Turns: 2})
	assert.Equal(t, 2, s.Tiles[tileIndex(s.Tiles, Cell{Z: 1})].ConquerCounter)
	assert.True(t, s.People[0].Busy)
}

func TestReduce_EndTurnFood(t *testing.T) {
	s := testState()
	// 2 base + 1 tile * 2 - 3 people * 1 = 1
	assert.Equal(t, 1, FoodGrowth(s))
	s = Reduce(s, EndTurn{})
	assert.Equal(t, 11, s.FoodAmount)
	assert.Equal(t, 4, s.Population)

	// Growth stops at the cap.
	s.Population = s.MaxPopulation
	s = Reduce(s, EndTurn{})
	assert.Equal(t, s.MaxPopulation, s.Population)

	// Starvation clamps food and shrinks the population.
	s.FoodAmount = 0
	s.Population = 10
	s.MaxPopulation = 10
	s = Reduce(s, EndTurn{})
	assert.Equal(t, 0, s.FoodAmount)
	assert.Equal(t, 9, s.Population)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := testState()
	s = Reduce(s, Conquer{Tile: Cell{X: 1}, People: []PersonID{1}, Turns: 1})
	people := append([]Person(nil), s.People...)
	tiles := append([]MapTile(nil), s.Tiles...)
	msgs := append([]string(nil), s.UI.EventMessages...)

	Reduce(s, EndTurn{})
	Reduce(s, Conquer{Tile: Cell{X: -1}, People: []PersonID{2}})
	Reduce(s, AddEventMessage{Content: "x"})

	assert.Equal(t, people, s.People)
	assert.Equal(t, tiles, s.Tiles)
	assert.Equal(t, msgs, s.UI.EventMessages)
}

func TestReduce_HandlesEverySupportedType(t *testing.T) {
	samples := map[string]Action{
		ActionUpdatePersonOnConquerForm: UpdatePersonOnConquerForm{Person: Person{ID: 2}},
		ActionSetErrorOnConquerForm:     SetErrorOnConquerForm{Message: "bad"},
		ActionClearSelectedPeople:       ClearSelectedPeople{},
		ActionAddEventMessage:           AddEventMessage{Content: "x"},
		ActionRemoveEventMessage:        RemoveEventMessage{},
		ActionConquer:                   Conquer{Tile: Cell{X: 1}, People: []PersonID{1}},
		ActionEndTurn:                   EndTurn{},
		ActionToggleForm:                ToggleForm{},
		ActionSelectTile:                SelectTile{Tile: Cell{X: 1}},
	}
	require.Len(t, samples, len(supportedActionTypes))

	base := testState()
	base.UI.ConquerForm.SelectedPeople = []PersonID{1}
	base.UI.EventMessages = []string{"m"}
	for _, typ := range supportedActionTypes {
		a, ok := samples[typ]
		require.True(t, ok, "no sample for %s", typ)
		assert.Equal(t, typ, a.Type())
		assert.NotEqual(t, base, Reduce(base, a), "%s had no effect", typ)
	}
}
