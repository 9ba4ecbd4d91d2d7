package store

import (
	"encoding/json"
	"fmt"

	"cityconquer.ai/schemas"
)

const (
	ActionUpdatePersonOnConquerForm = "UPDATE_PERSON_ON_CONQUER_FORM"
	ActionSetErrorOnConquerForm     = "SET_ERROR_ON_CONQUER_FORM"
	ActionClearSelectedPeople       = "CLEAR_SELECTED_PEOPLE"
	ActionAddEventMessage           = "ADD_EVENT_MESSAGE"
	ActionRemoveEventMessage        = "REMOVE_EVENT_MESSAGE"
	ActionConquer                   = "CONQUER"
	ActionEndTurn                   = "END_TURN"
	ActionToggleForm                = "TOGGLE_FORM"
	ActionSelectTile                = "SELECT_TILE"
)

var supportedActionTypes = []string{
	ActionUpdatePersonOnConquerForm,
	ActionSetErrorOnConquerForm,
	ActionClearSelectedPeople,
	ActionAddEventMessage,
	ActionRemoveEventMessage,
	ActionConquer,
	ActionEndTurn,
	ActionToggleForm,
	ActionSelectTile,
}

// Action is a closed set: only the types in this file implement it.
type Action interface {
	Type() string
	isAction()
}

type UpdatePersonOnConquerForm struct{ Person Person }

type SetErrorOnConquerForm struct {
	// Message replaces the form error; "" clears it.
	Message string
}

type ClearSelectedPeople struct{}

type AddEventMessage struct{ Content string }

type RemoveEventMessage struct{}

type Conquer struct {
	Tile   Cell
	People []PersonID
	// Turns until the tile is taken; <= 0 uses Rules.ConquerTurns.
	Turns int
}

type EndTurn struct{}

type ToggleForm struct{}

type SelectTile struct{ Tile Cell }

// UnknownAction carries a type string no reducer handles.
type UnknownAction struct{ Kind string }

func (UpdatePersonOnConquerForm) Type() string { return ActionUpdatePersonOnConquerForm }
func (SetErrorOnConquerForm) Type() string     { return ActionSetErrorOnConquerForm }
func (ClearSelectedPeople) Type() string       { return ActionClearSelectedPeople }
func (AddEventMessage) Type() string           { return ActionAddEventMessage }
func (RemoveEventMessage) Type() string        { return ActionRemoveEventMessage }
func (Conquer) Type() string                   { return ActionConquer }
func (EndTurn) Type() string                   { return ActionEndTurn }
func (ToggleForm) Type() string                { return ActionToggleForm }
func (SelectTile) Type() string                { return ActionSelectTile }
func (a UnknownAction) Type() string           { return a.Kind }

func (UpdatePersonOnConquerForm) isAction() {}
func (SetErrorOnConquerForm) isAction()     {}
func (ClearSelectedPeople) isAction()       {}
func (AddEventMessage) isAction()           {}
func (RemoveEventMessage) isAction()        {}
func (Conquer) isAction()                   {}
func (EndTurn) isAction()                   {}
func (ToggleForm) isAction()                {}
func (SelectTile) isAction()                {}
func (UnknownAction) isAction()             {}

type wireAction struct {
	Type    string     `json:"type"`
	Person  *Person    `json:"person,omitempty"`
	Message *string    `json:"message,omitempty"`
	Content *string    `json:"content,omitempty"`
	Tile    *Cell      `json:"tile,omitempty"`
	People  []PersonID `json:"people,omitempty"`
	Turns   int        `json:"turns,omitempty"`
}

func EncodeAction(a Action) ([]byte, error) {
	w := wireAction{Type: a.Type()}
	switch a := a.(type) {
	case UpdatePersonOnConquerForm:
		w.Person = &a.Person
	case SetErrorOnConquerForm:
		w.Message = &a.Message
	case AddEventMessage:
		w.Content = &a.Content
	case Conquer:
		w.Tile = &a.Tile
		w.People = a.People
		w.Turns = a.Turns
	case SelectTile:
		w.Tile = &a.Tile
	case ClearSelectedPeople, RemoveEventMessage, EndTurn, ToggleForm, UnknownAction:
	default:
		return nil, fmt.Errorf("encode action: unsupported %T", a)
	}
	return json.Marshal(w)
}

// DecodeAction parses a wire action. Unrecognised types decode to
// UnknownAction rather than failing.
func DecodeAction(raw []byte) (Action, error) {
	if err := schemas.ValidateJSON(schemas.Action, raw); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	var w wireAction
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	missing := func(field string) error {
		return fmt.Errorf("decode action: %s requires %s", w.Type, field)
	}
	switch w.Type {
	case ActionUpdatePersonOnConquerForm:
		if w.Person == nil {
			return nil, missing("person")
		}
		return UpdatePersonOnConquerForm{Person: *w.Person}, nil
	case ActionSetErrorOnConquerForm:
		var msg string
		if w.Message != nil {
			msg = *w.Message
		}
		return SetErrorOnConquerForm{Message: msg}, nil
	case ActionClearSelectedPeople:
		return ClearSelectedPeople{}, nil
	case ActionAddEventMessage:
		if w.Content == nil {
			return nil, missing("content")
		}
		return AddEventMessage{Content: *w.Content}, nil
	case ActionRemoveEventMessage:
		return RemoveEventMessage{}, nil
	case ActionConquer:
		if w.Tile == nil {
			return nil, missing("tile")
		}
		return Conquer{Tile: *w.Tile, People: w.People, Turns: w.Turns}, nil
	case ActionEndTurn:
		return EndTurn{}, nil
	case ActionToggleForm:
		return ToggleForm{}, nil
	case ActionSelectTile:
		if w.Tile == nil {
			return nil, missing("tile")
		}
		return SelectTile{Tile: *w.Tile}, nil
	default:
		return UnknownAction{Kind: w.Type}, nil
	}
}
