package store

import "slices"

type UIState struct {
	ConquerForm   ConquerFormState
	EventMessages []string
}

type ConquerFormState struct {
	// SelectedPeople holds ids in selection order, never duplicated.
	SelectedPeople []PersonID
	Error          string
}

// ReduceUI applies the UI actions. It never writes to s's slices; anything
// it does not handle comes back unchanged.
func ReduceUI(s UIState, a Action) UIState {
	switch a := a.(type) {
	case UpdatePersonOnConquerForm:
		sel := s.ConquerForm.SelectedPeople
		id := a.Person.ID
		if slices.Contains(sel, id) {
			s.ConquerForm.SelectedPeople = slices.DeleteFunc(slices.Clone(sel), func(v PersonID) bool { return v == id })
		} else {
			s.ConquerForm.SelectedPeople = append(slices.Clone(sel), id)
		}
		return s

	case SetErrorOnConquerForm:
		s.ConquerForm.Error = a.Message
		return s

	case ClearSelectedPeople:
		s.ConquerForm.SelectedPeople = nil
		return s

	case AddEventMessage:
		s.EventMessages = append(slices.Clone(s.EventMessages), a.Content)
		return s

	case RemoveEventMessage:
		if len(s.EventMessages) == 0 {
			return s
		}
		s.EventMessages = slices.Clone(s.EventMessages[:len(s.EventMessages)-1])
		return s

	default:
		return s
	}
}
