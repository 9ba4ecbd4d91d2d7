package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"cityconquer.ai/internal/scene/assembler"
	"cityconquer.ai/internal/sim/catalogs"
	"cityconquer.ai/internal/sim/encoding"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
)

// SQLiteIndex is a queryable copy of what the JSONL logs hold. Writes are
// queued to one writer goroutine and dropped when the queue is full.
type SQLiteIndex struct {
	db  *sql.DB
	log *logrus.Entry

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun    atomic.Uint64
	dropAction atomic.Uint64
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqAction
)

type req struct {
	kind reqKind

	run    runRow
	action actionRow
}

type runRow struct {
	RunID       string
	Seed        int64
	CreatedAt   string
	Cells       int
	Palette     string
	Layout      string
	Assignments []assembler.Assignment
	Placements  []assembler.Placement
}

type actionRow struct {
	RunID  string
	Seq    uint64
	Turn   int
	Type   string
	JSON   string
	At     string
	Failed bool
}

type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropRunTotal    uint64
	DropActionTotal uint64
}

func OpenSQLite(path string, log *logrus.Entry) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:  db,
		log: log,
		ch:  make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

// schemaVersion is bumped whenever a table changes shape. The index is a read
// model of the logs, so an older layout is dropped and rebuilt empty.
const schemaVersion = "2"

func resetStaleSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`); err != nil {
		return err
	}
	var v string
	err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version'`).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if v == schemaVersion {
		return nil
	}
	for _, table := range []string{"runs", "tile_assignments", "placements", "actions"} {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	if err := resetStaleSchema(db); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			placements INTEGER NOT NULL,
			palette_json TEXT NOT NULL,
			layout_rle TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tile_assignments (
			run_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			template TEXT NOT NULL,
			PRIMARY KEY (run_id, x, z)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_template ON tile_assignments(template);`,
		`CREATE TABLE IF NOT EXISTS placements (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			model TEXT NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			template TEXT,
			px REAL NOT NULL,
			py REAL NOT NULL,
			pz REAL NOT NULL,
			rotation_y REAL NOT NULL,
			sx REAL NOT NULL,
			sy REAL NOT NULL,
			sz REAL NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_model ON placements(model, run_id);`,
		`CREATE TABLE IF NOT EXISTS actions (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			turn INTEGER NOT NULL,
			type TEXT NOT NULL,
			act_json TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_turn ON actions(run_id, turn, seq);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) DB() *sql.DB { return s.db }

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropRunTotal:    s.dropRun.Load(),
		DropActionTotal: s.dropAction.Load(),
	}
}

// Close drains the queue and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun queues an assembly result for indexing.
func (s *SQLiteIndex) RecordRun(res *assembler.Result, seed int64) {
	if s == nil || s.closed.Load() || res == nil {
		return
	}
	templates := make([]string, len(res.Assignments))
	for i, a := range res.Assignments {
		templates[i] = a.Template
	}
	palette := slices.Compact(slices.Sorted(slices.Values(templates)))
	layout, err := encoding.EncodeLayout(palette, templates)
	if err != nil {
		return
	}
	paletteJSON, _ := json.Marshal(palette)
	r := runRow{
		RunID:       res.RunID,
		Seed:        seed,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		Cells:       len(res.Assignments),
		Palette:     string(paletteJSON),
		Layout:      layout,
		Assignments: res.Assignments,
		Placements:  res.Placements,
	}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		s.dropRun.Add(1)
	}
}

// RecordAction satisfies store.ActionRecorder.
func (s *SQLiteIndex) RecordAction(rec store.ActionRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	raw, err := store.EncodeAction(rec.Action)
	r := actionRow{
		RunID:  rec.RunID,
		Seq:    rec.Seq,
		Turn:   rec.Turn,
		Type:   rec.Action.Type(),
		JSON:   string(raw),
		At:     rec.At.UTC().Format(time.RFC3339Nano),
		Failed: err != nil,
	}
	select {
	case s.ch <- req{kind: reqAction, action: r}:
	default:
		s.dropAction.Add(1)
	}
}

// UpsertCatalogs stores the raw config files and the tuning in effect, keyed
// by name with their digests.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	read := func(name, file, digest string) {
		if configDir == "" {
			return
		}
		b, err := os.ReadFile(filepath.Join(configDir, file))
		if err != nil {
			return
		}
		rows = append(rows, kv{name: name, digest: digest, json: b})
	}
	read("models", "models.json", cats.Models.Digest)
	read("grid_tiles", "grid_tiles.json", cats.Tiles.Digest)
	if b, _ := json.Marshal(cats.Tiles.Names); len(b) > 0 {
		rows = append(rows, kv{name: "tile_names", digest: cats.Tiles.Digest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,seed,cells,placements,palette_json,layout_rle,created_at) VALUES(?,?,?,?,?,?,?)`)
	insertAssignment, _ := s.db.Prepare(`INSERT OR REPLACE INTO tile_assignments(run_id,x,z,template) VALUES(?,?,?,?)`)
	insertPlacement, _ := s.db.Prepare(`INSERT OR REPLACE INTO placements(run_id,seq,kind,model,x,z,template,px,py,pz,rotation_y,sx,sy,sz) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertAction, _ := s.db.Prepare(`INSERT OR REPLACE INTO actions(run_id,seq,turn,type,act_json,at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertRun, insertAssignment, insertPlacement, insertAction} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil && s.log != nil {
			s.log.WithError(err).Warn("index commit failed")
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func(err error) {
		if s.log != nil {
			s.log.WithError(err).Warn("index write failed")
		}
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqRun:
			run := r.run
			if insertRun == nil || insertAssignment == nil || insertPlacement == nil {
				continue
			}
			if _, err := tx.Stmt(insertRun).Exec(run.RunID, run.Seed, run.Cells, len(run.Placements), run.Palette, run.Layout, run.CreatedAt); err != nil {
				rollback(err)
				continue
			}
			opCount++
			for _, a := range run.Assignments {
				if _, err := tx.Stmt(insertAssignment).Exec(run.RunID, a.Cell.X, a.Cell.Z, a.Template); err != nil {
					rollback(err)
					break
				}
				opCount++
			}
			if tx == nil {
				continue
			}
			for _, p := range run.Placements {
				var tmpl any
				if p.Template != "" {
					tmpl = p.Template
				}
				if _, err := tx.Stmt(insertPlacement).Exec(
					run.RunID, p.Seq, string(p.Kind), p.Model, p.Cell.X, p.Cell.Z, tmpl,
					p.Position[0], p.Position[1], p.Position[2], p.RotationY,
					p.Scale[0], p.Scale[1], p.Scale[2],
				); err != nil {
					rollback(err)
					break
				}
				opCount++
			}

		case reqAction:
			a := r.action
			if insertAction == nil || a.Failed {
				continue
			}
			if _, err := tx.Stmt(insertAction).Exec(a.RunID, int64(a.Seq), a.Turn, a.Type, a.JSON, a.At); err != nil {
				rollback(err)
				continue
			}
			opCount++
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
