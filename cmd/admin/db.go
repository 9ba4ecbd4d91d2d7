package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"cityconquer.ai/internal/sim/encoding"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	runID := fs.String("run", "", "run id (optional; defaults to latest)")
	model := fs.String("model", "", "model filter (placements)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "runs"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	if *limit <= 0 {
		*limit = 20
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "city.sqlite")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if (q == "placements" || q == "assignments" || q == "layout" || q == "actions") && *runID == "" {
		id, err := latestRunID(db)
		if err != nil {
			fmt.Fprintln(os.Stderr, "latest run:", err)
			os.Exit(1)
		}
		if id == "" {
			fmt.Fprintln(os.Stderr, "no runs found")
			os.Exit(2)
		}
		*runID = id
	}

	switch q {
	case "runs":
		type row struct {
			RunID      string `json:"run_id"`
			Seed       int64  `json:"seed"`
			Cells      int    `json:"cells"`
			Placements int    `json:"placements"`
			CreatedAt  string `json:"created_at"`
		}
		queryRows(db, `SELECT run_id,seed,cells,placements,created_at FROM runs ORDER BY created_at DESC LIMIT ?`,
			[]any{*limit}, func(rs *sql.Rows) (any, error) {
				var r row
				err := rs.Scan(&r.RunID, &r.Seed, &r.Cells, &r.Placements, &r.CreatedAt)
				return r, err
			})

	case "assignments":
		type row struct {
			RunID    string `json:"run_id"`
			X        int    `json:"x"`
			Z        int    `json:"z"`
			Template string `json:"template"`
		}
		queryRows(db, `SELECT run_id,x,z,template FROM tile_assignments WHERE run_id=? ORDER BY x,z`,
			[]any{*runID}, func(rs *sql.Rows) (any, error) {
				var r row
				err := rs.Scan(&r.RunID, &r.X, &r.Z, &r.Template)
				return r, err
			})

	case "layout":
		var paletteJSON, layout string
		var cells int
		row := db.QueryRow(`SELECT cells,palette_json,layout_rle FROM runs WHERE run_id=?`, *runID)
		if err := row.Scan(&cells, &paletteJSON, &layout); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		var palette []string
		if err := json.Unmarshal([]byte(paletteJSON), &palette); err != nil {
			fmt.Fprintln(os.Stderr, "palette:", err)
			os.Exit(1)
		}
		templates, err := encoding.DecodeLayout(palette, layout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "decode:", err)
			os.Exit(1)
		}
		printJSON(struct {
			RunID     string   `json:"run_id"`
			Cells     int      `json:"cells"`
			Palette   []string `json:"palette"`
			Templates []string `json:"templates"`
		}{*runID, cells, palette, templates})

	case "templates":
		type row struct {
			Template string `json:"template"`
			Cells    int    `json:"cells"`
		}
		queryRows(db, `SELECT template,COUNT(*) FROM tile_assignments GROUP BY template ORDER BY COUNT(*) DESC`,
			nil, func(rs *sql.Rows) (any, error) {
				var r row
				err := rs.Scan(&r.Template, &r.Cells)
				return r, err
			})

	case "placements":
		type row struct {
			Seq       int        `json:"seq"`
			Kind      string     `json:"kind"`
			Model     string     `json:"model"`
			X         int        `json:"x"`
			Z         int        `json:"z"`
			Template  string     `json:"template,omitempty"`
			Position  [3]float64 `json:"position"`
			RotationY float64    `json:"rotation_y,omitempty"`
			Scale     [3]float64 `json:"scale"`
		}
		query := `SELECT seq,kind,model,x,z,COALESCE(template,''),px,py,pz,rotation_y,sx,sy,sz FROM placements WHERE run_id=?`
		qargs := []any{*runID}
		if *model != "" {
			query += ` AND model=?`
			qargs = append(qargs, *model)
		}
		query += ` ORDER BY seq LIMIT ?`
		qargs = append(qargs, *limit)
		queryRows(db, query, qargs, func(rs *sql.Rows) (any, error) {
			var r row
			err := rs.Scan(&r.Seq, &r.Kind, &r.Model, &r.X, &r.Z, &r.Template, &r.Position[0], &r.Position[1], &r.Position[2], &r.RotationY, &r.Scale[0], &r.Scale[1], &r.Scale[2])
			return r, err
		})

	case "actions":
		type row struct {
			Seq  int64  `json:"seq"`
			Turn int    `json:"turn"`
			Type string `json:"type"`
			JSON string `json:"action"`
			At   string `json:"at"`
		}
		queryRows(db, `SELECT seq,turn,type,act_json,at FROM actions WHERE run_id=? ORDER BY seq DESC LIMIT ?`,
			[]any{*runID, *limit}, func(rs *sql.Rows) (any, error) {
				var r row
				err := rs.Scan(&r.Seq, &r.Turn, &r.Type, &r.JSON, &r.At)
				return r, err
			})

	case "catalogs":
		type row struct {
			Name      string `json:"name"`
			Digest    string `json:"digest"`
			UpdatedAt string `json:"updated_at"`
		}
		queryRows(db, `SELECT name,digest,updated_at FROM catalogs ORDER BY name`,
			nil, func(rs *sql.Rows) (any, error) {
				var r row
				err := rs.Scan(&r.Name, &r.Digest, &r.UpdatedAt)
				return r, err
			})

	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data|-db PATH] [-run ID] [-model M] [-limit N] runs|assignments|layout|templates|placements|actions|catalogs")
		os.Exit(2)
	}
}

func queryRows(db *sql.DB, query string, args []any, scan func(*sql.Rows) (any, error)) {
	rows, err := db.Query(query, args...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		printJSON(r)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}

func latestRunID(db *sql.DB) (string, error) {
	if db == nil {
		return "", fmt.Errorf("nil db")
	}
	var id sql.NullString
	if err := db.QueryRow(`SELECT run_id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id.String, nil
}
