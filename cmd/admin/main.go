package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "cityconquer.ai/internal/persistence/log"
	"cityconquer.ai/internal/sim/store"
	"cityconquer.ai/internal/sim/tuning"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "dump":
			dumpCmd(os.Args[2:])
			return
		case "replay":
			replayCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	for _, kind := range []string{"actions", "placements"} {
		paths, err := persistlog.Files(filepath.Join(*dataDir, kind), kind)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
	}
}

// dumpCmd prints the decompressed lines of the action or placement log.
func dumpCmd(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	runID := fs.String("run", "", "run_id filter")
	typ := fs.String("type", "", "action type filter (actions)")
	_ = fs.Parse(args)

	kind := "actions"
	if fs.NArg() > 0 {
		kind = strings.TrimSpace(fs.Arg(0))
	}
	if kind != "actions" && kind != "placements" {
		fmt.Fprintln(os.Stderr, "usage: admin dump [-data ./data] [-run ID] [-type T] actions|placements")
		os.Exit(2)
	}

	paths, err := persistlog.Files(filepath.Join(*dataDir, kind), kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
	for _, p := range paths {
		err := persistlog.ReadJSONLZstd(p, func(raw json.RawMessage) error {
			switch kind {
			case "actions":
				var e persistlog.ActionLogEntry
				if err := json.Unmarshal(raw, &e); err != nil {
					return err
				}
				if *typ != "" && e.Type != *typ {
					return nil
				}
				if *runID != "" && e.RunID != *runID {
					return nil
				}
			case "placements":
				var e persistlog.PlacementLogEntry
				if err := json.Unmarshal(raw, &e); err != nil {
					return err
				}
				if *runID != "" && e.RunID != *runID {
					return nil
				}
			}
			fmt.Println(string(raw))
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
	}
}

// replayCmd reduces one run's recorded actions over a fresh state and prints
// the resulting menu. Without -run the most recently logged run is used. The
// action log carries no grid, so the replayed state only holds the start tiles
// and the cells the actions name.
func replayCmd(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "tuning.yaml with the game rules")
	runID := fs.String("run", "", "run id (optional; defaults to latest)")
	_ = fs.Parse(args)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	run, entries, err := readActions(filepath.Join(*dataDir, "actions"), *runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read actions:", err)
		os.Exit(1)
	}
	s := replayState(entries, tune.Game)
	printJSON(struct {
		RunID   string         `json:"run_id"`
		Actions int            `json:"actions"`
		Menu    store.MenuView `json:"menu"`
		Taken   int            `json:"taken"`
		Events  []string       `json:"events"`
	}{run, len(entries), store.Menu(s), store.TakenTiles(s), s.UI.EventMessages})
}

// readActions decodes the logged actions of runID, or of the last run in the
// log when runID is empty, and returns the run it picked.
func readActions(dir, runID string) (string, []store.Action, error) {
	paths, err := persistlog.Files(dir, "actions")
	if err != nil {
		return "", nil, err
	}
	type logged struct {
		run    string
		action store.Action
	}
	var all []logged
	for _, p := range paths {
		err := persistlog.ReadJSONLZstd(p, func(raw json.RawMessage) error {
			var e persistlog.ActionLogEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			if runID != "" && e.RunID != runID {
				return nil
			}
			a, err := store.DecodeAction(e.Action)
			if err != nil {
				return fmt.Errorf("run %s seq %d: %w", e.RunID, e.Seq, err)
			}
			all = append(all, logged{run: e.RunID, action: a})
			return nil
		})
		if err != nil {
			return "", nil, err
		}
	}
	if runID == "" && len(all) > 0 {
		runID = all[len(all)-1].run
	}
	var out []store.Action
	for _, l := range all {
		if l.run == runID {
			out = append(out, l.action)
		}
	}
	return runID, out, nil
}

func replayState(actions []store.Action, g tuning.Game) store.State {
	seen := map[store.Cell]bool{}
	var seeds []store.TileSeed
	add := func(c store.Cell) {
		if !seen[c] {
			seen[c] = true
			seeds = append(seeds, store.TileSeed{Cell: c})
		}
	}
	for _, c := range g.StartTiles {
		add(store.Cell{X: c[0], Z: c[1]})
	}
	for _, a := range actions {
		switch a := a.(type) {
		case store.SelectTile:
			add(a.Tile)
		case store.Conquer:
			add(a.Tile)
		}
	}
	s := store.NewState(g, seeds)
	for _, a := range actions {
		s = store.Reduce(s, a)
	}
	return s
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
