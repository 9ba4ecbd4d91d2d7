package store

import (
	"fmt"

	"cityconquer.ai/internal/sim/tuning"
)

type PersonID int

type Person struct {
	ID   PersonID `json:"id"`
	Name string   `json:"name,omitempty"`
	Busy bool     `json:"busy,omitempty"`
}

type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (c Cell) String() string { return fmt.Sprintf("(%d, %d)", c.X, c.Z) }

type MapTile struct {
	Cell     Cell
	Template string
	Taken    bool
	// ConquerCounter counts the turns left on a running conquest; 0 means none.
	ConquerCounter int
	Conquerors     []PersonID
}

type Rules struct {
	BaseFood          int
	FoodPerTile       int
	FoodPerPerson     int
	PopulationPerTile int
	ConquerTurns      int
}

// State is the whole store. Values are shared between successive states, so
// reducers copy a slice before changing it.
type State struct {
	Turn          int
	Population    int
	MaxPopulation int
	FoodAmount    int

	People []Person
	Tiles  []MapTile

	SelectedTile       *Cell
	DisplayConquerForm bool

	Rules Rules
	UI    UIState
}

type TileSeed struct {
	Cell     Cell
	Template string
}

// NewState builds the turn-one state for the given grid tiles.
func NewState(g tuning.Game, seeds []TileSeed) State {
	s := State{
		Turn:          1,
		Population:    g.StartPopulation,
		MaxPopulation: g.StartMaxPopulation,
		FoodAmount:    g.StartFood,
		Rules: Rules{
			BaseFood:          g.BaseFood,
			FoodPerTile:       g.FoodPerTile,
			FoodPerPerson:     g.FoodPerPerson,
			PopulationPerTile: g.PopulationPerTile,
			ConquerTurns:      g.ConquerTurns,
		},
	}
	for i, name := range g.People {
		s.People = append(s.People, Person{ID: PersonID(i + 1), Name: name})
	}
	taken := map[Cell]bool{}
	for _, c := range g.StartTiles {
		taken[Cell{X: c[0], Z: c[1]}] = true
	}
	for _, seed := range seeds {
		s.Tiles = append(s.Tiles, MapTile{Cell: seed.Cell, Template: seed.Template, Taken: taken[seed.Cell]})
	}
	return s
}

func tileIndex(tiles []MapTile, c Cell) int {
	for i := range tiles {
		if tiles[i].Cell == c {
			return i
		}
	}
	return -1
}
