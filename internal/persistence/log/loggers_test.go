package log

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconquer.ai/internal/logging"
	"cityconquer.ai/internal/scene/assembler"
	"cityconquer.ai/internal/sim/store"
)

func readAll(t *testing.T, dir, prefix string) []json.RawMessage {
	t.Helper()
	paths, err := Files(dir, prefix)
	require.NoError(t, err)
	var lines []json.RawMessage
	for _, p := range paths {
		require.NoError(t, ReadJSONLZstd(p, func(m json.RawMessage) error {
			lines = append(lines, m)
			return nil
		}))
	}
	return lines
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "x")
	at := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return at }

	require.NoError(t, w.Write(map[string]int{"n": 1}))
	require.NoError(t, w.Write(map[string]int{"n": 2}))
	at = at.Add(2 * time.Minute)
	require.NoError(t, w.Write(map[string]int{"n": 3}))
	require.NoError(t, w.Close())

	paths, err := Files(dir, "x")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "x-2026-03-01-10.jsonl.zst", filepath.Base(paths[0]))
	assert.Equal(t, "x-2026-03-01-11.jsonl.zst", filepath.Base(paths[1]))

	lines := readAll(t, dir, "x")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"n":3}`, string(lines[2]))
}

func TestJSONLZstdWriter_AppendsAcrossSessions(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(dir, "s")
		w.now = func() time.Time { return at }
		require.NoError(t, w.Write(map[string]int{"session": i}))
		require.NoError(t, w.Close())
	}
	lines := readAll(t, dir, "s")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"session":1}`, string(lines[1]))
}

func TestActionLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewActionLogger(dir, logging.Discard())
	st := store.New(store.State{Turn: 1}, store.WithRecorder(l), store.WithRunID("run-7"))

	st.Dispatch(store.AddEventMessage{Content: "hi"})
	st.Dispatch(store.Conquer{Tile: store.Cell{X: 2, Z: -1}, People: []store.PersonID{1}})
	st.Dispatch(store.EndTurn{})
	require.NoError(t, l.Close())

	var got []store.Action
	for _, raw := range readAll(t, filepath.Join(dir, "actions"), "actions") {
		var e ActionLogEntry
		require.NoError(t, json.Unmarshal(raw, &e))
		a, err := store.DecodeAction(e.Action)
		require.NoError(t, err)
		assert.Equal(t, e.Type, a.Type())
		assert.Equal(t, "run-7", e.RunID)
		got = append(got, a)
	}
	assert.Equal(t, []store.Action{
		store.AddEventMessage{Content: "hi"},
		store.Conquer{Tile: store.Cell{X: 2, Z: -1}, People: []store.PersonID{1}},
		store.EndTurn{},
	}, got)
}

func TestPlacementLogger(t *testing.T) {
	dir := t.TempDir()
	l := NewPlacementLogger(dir)
	res := &assembler.Result{
		RunID: "run-1",
		Placements: []assembler.Placement{
			{Seq: 0, Kind: assembler.KindIntersection, Model: "roadIntersection", Scale: [3]float64{1, 1, 1}},
			{Seq: 1, Kind: assembler.KindBuilding, Model: "house", Template: "suburb", Cell: assembler.Cell{X: 1}},
		},
	}
	require.NoError(t, l.WriteRun(res))
	require.NoError(t, l.Close())

	lines := readAll(t, filepath.Join(dir, "placements"), "placements")
	require.Len(t, lines, 2)
	var e PlacementLogEntry
	require.NoError(t, json.Unmarshal(lines[1], &e))
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, res.Placements[1], e.Placement)
}
