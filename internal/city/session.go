// Package city wires configuration, model loading, assembly, the game store
// and the on-disk logs into one session shared by the binaries.
package city

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cityconquer.ai/internal/logging"
	"cityconquer.ai/internal/persistence/indexdb"
	persistlog "cityconquer.ai/internal/persistence/log"
	"cityconquer.ai/internal/scene/assembler"
	"cityconquer.ai/internal/scene/loader"
	"cityconquer.ai/internal/sim/catalogs"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
	"cityconquer.ai/internal/view"
)

type Options struct {
	ConfigDir  string
	TuningPath string // default <ConfigDir>/tuning.yaml
	DataDir    string // empty disables the JSONL logs and the index
	DisableDB  bool
	// Seed drives template selection; 0 picks one from the clock.
	Seed int64
	// Progress receives loader progress, if set.
	Progress func(loader.Progress)
}

type Session struct {
	Tuning   tuning.Tuning
	Catalogs *catalogs.Catalogs
	Seed     int64
	Result   *assembler.Result
	Store    *store.Store

	actions    *persistlog.ActionLogger
	placements *persistlog.PlacementLogger
	index      *indexdb.SQLiteIndex
	log        *logrus.Entry
}

// Open loads configuration, assembles the city and starts the store. Every
// dispatched action is recorded to the action log and the index.
func Open(ctx context.Context, opts Options) (*Session, error) {
	tp := strings.TrimSpace(opts.TuningPath)
	if tp == "" {
		tp = filepath.Join(opts.ConfigDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
		tune = tuning.Defaults()
	}
	logging.Init(tune.Log.Level, tune.Log.Format)
	log := logging.Component("city")

	cats, err := catalogs.Load(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	root := tune.Loader.AssetRoot
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(filepath.Clean(opts.ConfigDir)), root)
	}
	l := loader.New(os.DirFS(root))
	l.MaxConcurrent = tune.Loader.MaxConcurrent
	l.Timeout = tune.Loader.Timeout.Std()
	l.Progress = opts.Progress

	res, err := assembler.Run(ctx, l, cats, assembler.Config{
		Grid:  tune.Grid,
		Roads: tune.Roads,
		Rand:  rand.New(rand.NewSource(seed)),
	})
	if err != nil {
		return nil, err
	}

	s := &Session{Tuning: tune, Catalogs: cats, Seed: seed, Result: res, log: log.WithField("run_id", res.RunID)}
	if err := s.openLogs(opts); err != nil {
		_ = s.Close()
		return nil, err
	}

	storeOpts := []store.Option{
		store.WithLogger(logging.Component("store")),
		store.WithRecorder(s),
		store.WithRunID(res.RunID),
	}
	s.Store = store.New(store.NewState(tune.Game, view.TileSeeds(res)), storeOpts...)

	s.log.WithFields(logrus.Fields{
		"seed":    seed,
		"objects": res.Scene.Len(),
		"models":  len(cats.Models.Defs),
	}).Info("session ready")
	return s, nil
}

func (s *Session) openLogs(opts Options) error {
	if strings.TrimSpace(opts.DataDir) == "" {
		return nil
	}
	s.actions = persistlog.NewActionLogger(opts.DataDir, logging.Component("actionlog"))
	s.placements = persistlog.NewPlacementLogger(opts.DataDir)
	if err := s.placements.WriteRun(s.Result); err != nil {
		return fmt.Errorf("placement log: %w", err)
	}
	if opts.DisableDB {
		return nil
	}
	idx, err := indexdb.OpenSQLite(filepath.Join(opts.DataDir, "index", "city.sqlite"), logging.Component("indexdb"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	s.index = idx
	if err := idx.UpsertCatalogs(opts.ConfigDir, s.Catalogs, s.Tuning); err != nil {
		s.log.WithError(err).Warn("index catalogs failed")
	}
	idx.RecordRun(s.Result, s.Seed)
	return nil
}

// RecordAction fans a dispatched action out to the action log and the index.
func (s *Session) RecordAction(r store.ActionRecord) {
	if s.actions != nil {
		s.actions.RecordAction(r)
	}
	if s.index != nil {
		s.index.RecordAction(r)
	}
}

// DispatchJSON decodes one wire action and dispatches it.
func (s *Session) DispatchJSON(raw []byte) (store.State, error) {
	a, err := store.DecodeAction(raw)
	if err != nil {
		return store.State{}, err
	}
	return s.Store.Dispatch(a), nil
}

func (s *Session) Close() error {
	var errs []error
	if s.actions != nil {
		errs = append(errs, s.actions.Close())
	}
	if s.placements != nil {
		errs = append(errs, s.placements.Close())
	}
	if s.index != nil {
		errs = append(errs, s.index.Close())
	}
	return errors.Join(errs...)
}
