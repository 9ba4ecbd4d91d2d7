package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cityconquer.ai/internal/city"
	"cityconquer.ai/internal/logging"
	"cityconquer.ai/internal/scene/loader"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/view"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory (empty disables logs)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index")
		seed       = flag.Int64("seed", 0, "template selection seed (0 = from clock)")
		actions    = flag.String("actions", "", "JSONL file of store actions to dispatch after assembly (optional)")
		endTurns   = flag.Int("end_turns", 0, "END_TURN actions to dispatch after the action file")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Component("citygen")
	s, err := city.Open(ctx, city.Options{
		ConfigDir:  *configDir,
		TuningPath: *tuningPath,
		DataDir:    *dataDir,
		DisableDB:  *disableDB,
		Seed:       *seed,
		Progress: func(p loader.Progress) {
			log.WithField("model", p.Model.String()).Debugf("loaded %d/%d", p.Done, p.Total)
		},
	})
	if err != nil {
		log.WithError(err).Fatal("assemble city")
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("close session")
		}
	}()

	if *actions != "" {
		if err := replay(s, *actions); err != nil {
			log.WithError(err).Error("dispatch actions")
			return
		}
	}
	for i := 0; i < *endTurns; i++ {
		s.Store.Dispatch(store.EndTurn{})
	}

	fmt.Print(view.Summary(s.Result, s.Store.State()))
	for _, m := range s.Store.State().UI.EventMessages {
		fmt.Println("event:", m)
	}
}

func replay(s *city.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		if _, err := s.DispatchJSON(raw); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
	return sc.Err()
}
