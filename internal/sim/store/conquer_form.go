package store

const (
	ErrNoPeopleSelected = "No people selected"
	ErrPeopleBusy       = "Selected people are busy"
)

type Dispatcher interface {
	Dispatch(Action) State
}

// SubmitConquer validates the form and, when people are selected, starts the
// conquest and closes the form. Validation failures land in the form error.
func SubmitConquer(d Dispatcher, tile Cell, people []*Person, turns int) State {
	ids := make([]PersonID, 0, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		if p.Busy {
			return d.Dispatch(SetErrorOnConquerForm{Message: ErrPeopleBusy})
		}
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return d.Dispatch(SetErrorOnConquerForm{Message: ErrNoPeopleSelected})
	}
	d.Dispatch(SetErrorOnConquerForm{})
	d.Dispatch(ClearSelectedPeople{})
	d.Dispatch(Conquer{Tile: tile, People: ids, Turns: turns})
	return d.Dispatch(ToggleForm{})
}

func CloseConquerForm(d Dispatcher) State {
	d.Dispatch(SetErrorOnConquerForm{})
	return d.Dispatch(ToggleForm{})
}
