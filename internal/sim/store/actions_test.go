package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	cases := map[string]Action{
		`{"type":"UPDATE_PERSON_ON_CONQUER_FORM","person":{"id":4,"name":"Dara"}}`: UpdatePersonOnConquerForm{Person: Person{ID: 4, Name: "Dara"}},
		`{"type":"SET_ERROR_ON_CONQUER_FORM","message":"No people selected"}`:     SetErrorOnConquerForm{Message: "No people selected"},
		`{"type":"SET_ERROR_ON_CONQUER_FORM"}`:                                    SetErrorOnConquerForm{},
		`{"type":"CLEAR_SELECTED_PEOPLE"}`:                                        ClearSelectedPeople{},
		`{"type":"ADD_EVENT_MESSAGE","content":"hi"}`:                             AddEventMessage{Content: "hi"},
		`{"type":"REMOVE_EVENT_MESSAGE"}`:                                         RemoveEventMessage{},
		`{"type":"CONQUER","tile":{"x":1,"z":-2},"people":[1,2],"turns":4}`:       Conquer{Tile: Cell{X: 1, Z: -2}, People: []PersonID{1, 2}, Turns: 4},
		`{"type":"END_TURN"}`:                                                     EndTurn{},
		`{"type":"TOGGLE_FORM"}`:                                                  ToggleForm{},
		`{"type":"SELECT_TILE","tile":{"x":0,"z":3}}`:                             SelectTile{Tile: Cell{Z: 3}},
		`{"type":"TELEPORT","tile":{"x":0,"z":3}}`:                                UnknownAction{Kind: "TELEPORT"},
	}
	for raw, want := range cases {
		got, err := DecodeAction([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestDecodeAction_Errors(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{}`,
		`{"type":""}`,
		`{"type":"CONQUER","people":["a"]}`,
		`{"type":"CONQUER"}`,
		`{"type":"SELECT_TILE","tile":{"x":1}}`,
		`{"type":"UPDATE_PERSON_ON_CONQUER_FORM"}`,
		`{"type":"ADD_EVENT_MESSAGE"}`,
	} {
		_, err := DecodeAction([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestEncodeAction_DecodesBack(t *testing.T) {
	for _, a := range []Action{
		UpdatePersonOnConquerForm{Person: Person{ID: 1}},
		SetErrorOnConquerForm{Message: "m"},
		AddEventMessage{Content: "c"},
		Conquer{Tile: Cell{X: 2}, People: []PersonID{3}},
		SelectTile{Tile: Cell{X: -4, Z: 4}},
		EndTurn{},
	} {
		raw, err := EncodeAction(a)
		require.NoError(t, err)
		got, err := DecodeAction(raw)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestDecodedUnknownReducesAsIdentity(t *testing.T) {
	a, err := DecodeAction([]byte(`{"type":"FLY_AWAY","content":"x"}`))
	require.NoError(t, err)
	s := testState()
	assert.Equal(t, s, Reduce(s, a))
}
