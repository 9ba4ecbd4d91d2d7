package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconquer.ai/internal/logging"
	persistlog "cityconquer.ai/internal/persistence/log"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
)

func TestReplayFromActionLog(t *testing.T) {
	dir := t.TempDir()
	l := persistlog.NewActionLogger(dir, logging.Discard())
	recorded := []store.Action{
		store.SelectTile{Tile: store.Cell{X: 1}},
		store.Conquer{Tile: store.Cell{X: 1}, People: []store.PersonID{1}, Turns: 1},
		store.EndTurn{},
	}
	// An earlier session with the same sequence numbers must not leak in.
	earlier := []store.Action{store.EndTurn{}, store.EndTurn{}, store.AddEventMessage{Content: "old"}}
	for i, a := range earlier {
		require.NoError(t, l.WriteAction(store.ActionRecord{RunID: "run-1", Seq: uint64(i + 1), Action: a, At: time.Now()}))
	}
	for i, a := range recorded {
		require.NoError(t, l.WriteAction(store.ActionRecord{RunID: "run-2", Seq: uint64(i + 1), Action: a, At: time.Now()}))
	}
	require.NoError(t, l.Close())

	run, got, err := readActions(filepath.Join(dir, "actions"), "")
	require.NoError(t, err)
	assert.Equal(t, "run-2", run)
	assert.Equal(t, recorded, got)

	run, old, err := readActions(filepath.Join(dir, "actions"), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run)
	assert.Equal(t, earlier, old)

	s := replayState(got, tuning.Defaults().Game)
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, 2, store.TakenTiles(s))
	require.NotNil(t, s.SelectedTile)
	assert.Equal(t, store.Cell{X: 1}, *s.SelectedTile)
}
