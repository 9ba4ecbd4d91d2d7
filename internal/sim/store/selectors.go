package store

// SelectedPeople resolves the conquer form's ids against s.People. Ids with
// no matching person resolve to nil and are kept in place.
func SelectedPeople(s State) []*Person {
	ids := s.UI.ConquerForm.SelectedPeople
	out := make([]*Person, len(ids))
	for i, id := range ids {
		for j := range s.People {
			if s.People[j].ID == id {
				p := s.People[j]
				out[i] = &p
				break
			}
		}
	}
	return out
}

// SuccessProbability is the conquest success estimate, in percent, for the
// given number of people.
func SuccessProbability(people int) float64 {
	if people < 1 {
		return 0
	}
	if people >= 3 {
		return 100
	}
	return float64(people) * 33.33
}

func CanConquer(t MapTile) bool {
	return !t.Taken && t.ConquerCounter == 0
}

func SelectedTile(s State) (MapTile, bool) {
	if s.SelectedTile == nil {
		return MapTile{}, false
	}
	i := tileIndex(s.Tiles, *s.SelectedTile)
	if i < 0 {
		return MapTile{}, false
	}
	return s.Tiles[i], true
}

func TakenTiles(s State) int {
	n := 0
	for _, t := range s.Tiles {
		if t.Taken {
			n++
		}
	}
	return n
}

// FoodGrowth is the change in food applied by the next END_TURN.
func FoodGrowth(s State) int {
	return s.Rules.BaseFood + TakenTiles(s)*s.Rules.FoodPerTile - s.Population*s.Rules.FoodPerPerson
}

type MenuView struct {
	Turn              int
	SelectedTile      *MapTile
	CurrentPopulation int
	MaxPopulation     int
	Food              int
	FoodGrowth        int
	ShowConquerButton bool
}

func Menu(s State) MenuView {
	v := MenuView{
		Turn:              s.Turn,
		CurrentPopulation: s.Population,
		MaxPopulation:     s.MaxPopulation,
		Food:              s.FoodAmount,
		FoodGrowth:        FoodGrowth(s),
	}
	if t, ok := SelectedTile(s); ok {
		v.SelectedTile = &t
		v.ShowConquerButton = CanConquer(t)
	}
	return v
}

type ConquerFormView struct {
	ConquerCounter     int
	Display            bool
	Error              string
	SelectedTile       *MapTile
	SelectedPeople     []*Person
	SuccessProbability float64
}

func ConquerForm(s State) ConquerFormView {
	people := SelectedPeople(s)
	v := ConquerFormView{
		Display:            s.DisplayConquerForm,
		Error:              s.UI.ConquerForm.Error,
		SelectedPeople:     people,
		SuccessProbability: SuccessProbability(len(people)),
	}
	if t, ok := SelectedTile(s); ok {
		v.SelectedTile = &t
		v.ConquerCounter = t.ConquerCounter
	}
	return v
}
