package city

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	persistlog "cityconquer.ai/internal/persistence/log"
	"cityconquer.ai/internal/sim/store"
)

func TestSession_EndToEnd(t *testing.T) {
	data := t.TempDir()
	s, err := Open(context.Background(), Options{ConfigDir: "../../configs", DataDir: data, Seed: 7})
	require.NoError(t, err)

	assert.Len(t, s.Result.Assignments, 100)
	assert.Equal(t, 100, s.Result.Intersections)
	assert.Equal(t, 400, s.Result.Lanes)
	assert.Len(t, s.Store.State().Tiles, 100)

	_, err = s.DispatchJSON([]byte(`{"type":"SELECT_TILE","tile":{"x":1,"z":0}}`))
	require.NoError(t, err)
	st, err := s.DispatchJSON([]byte(`{"type":"CONQUER","tile":{"x":1,"z":0},"people":[1]}`))
	require.NoError(t, err)
	tile, ok := store.SelectedTile(st)
	require.True(t, ok)
	assert.Equal(t, 3, tile.ConquerCounter)

	_, err = s.DispatchJSON([]byte(`{"type":42}`))
	assert.Error(t, err)
	require.NoError(t, s.Close())

	paths, err := persistlog.Files(filepath.Join(data, "actions"), "actions")
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	var n int
	for _, p := range paths {
		require.NoError(t, persistlog.ReadJSONLZstd(p, func(json.RawMessage) error { n++; return nil }))
	}
	assert.Equal(t, 2, n)

	db, err := sql.Open("sqlite", filepath.Join(data, "index", "city.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	var placements, actions int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM placements WHERE run_id=?`, s.Result.RunID).Scan(&placements))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM actions`).Scan(&actions))
	assert.Equal(t, len(s.Result.Placements), placements)
	assert.Equal(t, 2, actions)
}

func TestSession_SameSeedSameCity(t *testing.T) {
	a, err := Open(context.Background(), Options{ConfigDir: "../../configs", Seed: 11})
	require.NoError(t, err)
	b, err := Open(context.Background(), Options{ConfigDir: "../../configs", Seed: 11})
	require.NoError(t, err)
	assert.Equal(t, a.Result.Assignments, b.Result.Assignments)
	assert.NoError(t, a.Close())
	assert.NoError(t, b.Close())
}

func TestSession_BadConfigDir(t *testing.T) {
	_, err := Open(context.Background(), Options{ConfigDir: t.TempDir()})
	assert.Error(t, err)
}
