// Package assembler lays out the city: a deterministic road network over the
// grid followed by one randomly chosen tile template per cell.
package assembler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cityconquer.ai/internal/logging"
	"cityconquer.ai/internal/scene"
	"cityconquer.ai/internal/sim/catalogs"
	"cityconquer.ai/internal/sim/tuning"
)

// Rand picks template indices. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`
}

type Assignment struct {
	Cell     Cell   `json:"cell"`
	Template string `json:"template"`
}

type PlacementKind string

const (
	KindIntersection PlacementKind = "intersection"
	KindLane         PlacementKind = "lane"
	KindBuilding     PlacementKind = "building"
)

// Placement describes one object put into the scene.
type Placement struct {
	Seq       int           `json:"seq"`
	Kind      PlacementKind `json:"kind"`
	Model     string        `json:"model"`
	Cell      Cell          `json:"cell"`
	Template  string        `json:"template,omitempty"`
	Position  [3]float64    `json:"position"`
	RotationY float64       `json:"rotation_y,omitempty"`
	Scale     [3]float64    `json:"scale"`
}

type Result struct {
	RunID       string
	Scene       *scene.Scene
	Assignments []Assignment
	Placements  []Placement

	Intersections int
	Lanes         int
	Buildings     int
}

type Config struct {
	Grid  tuning.Grid
	Roads tuning.Roads
	// Rand defaults to a time-seeded source.
	Rand Rand
	Log  *logrus.Entry
}

type Assembler struct {
	cat   *scene.Catalog
	tiles catalogs.TileCatalog
	grid  tuning.Grid
	roads tuning.Roads
	rng   Rand
	log   *logrus.Entry
}

func New(cat *scene.Catalog, tiles catalogs.TileCatalog, cfg Config) *Assembler {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	log := cfg.Log
	if log == nil {
		log = logging.Component("assembler")
	}
	return &Assembler{cat: cat, tiles: tiles, grid: cfg.Grid, roads: cfg.Roads, rng: rng, log: log}
}

// CatalogLoader is the part of loader.Loader that Run needs.
type CatalogLoader interface {
	Load(ctx context.Context, defs []catalogs.ModelDef) (*scene.Catalog, error)
}

// Run loads the model catalog and assembles the city. No pass runs unless
// every model loaded.
func Run(ctx context.Context, l CatalogLoader, cats *catalogs.Catalogs, cfg Config) (*Result, error) {
	cat, err := l.Load(ctx, cats.Models.Defs)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	return New(cat, cats.Tiles, cfg).Assemble()
}

func (a *Assembler) Assemble() (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Scene: scene.New()}
	log := a.log.WithField("run_id", res.RunID)

	if err := a.BuildRoads(res); err != nil {
		return nil, err
	}
	if err := a.PlaceTiles(res); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"cells":         a.grid.Cells(),
		"intersections": res.Intersections,
		"lanes":         res.Lanes,
		"buildings":     res.Buildings,
	}).Info("city assembled")
	return res, nil
}

func (a *Assembler) origin(c Cell) scene.Vec3 {
	return scene.Vec3{X: float64(c.X) * a.grid.CellSpacing, Z: float64(c.Z) * a.grid.CellSpacing}
}

func (a *Assembler) cells(fn func(Cell) error) error {
	for x := a.grid.Min; x < a.grid.Max; x++ {
		for z := a.grid.Min; z < a.grid.Max; z++ {
			if err := fn(Cell{X: x, Z: z}); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildRoads places one intersection and every configured lane piece on each
// cell. It uses no randomness.
func (a *Assembler) BuildRoads(res *Result) error {
	return a.cells(func(c Cell) error {
		o := a.origin(c)
		obj, err := a.cat.Instance(catalogs.ModelRoad, a.roads.Intersection)
		if err != nil {
			return fmt.Errorf("roads at %v: %w", c, err)
		}
		obj.Position = o
		a.place(res, obj, KindIntersection, c, "")
		res.Intersections++

		for _, p := range a.roads.Pieces {
			lane, err := a.cat.Instance(catalogs.ModelRoad, p.Model)
			if err != nil {
				return fmt.Errorf("roads at %v: %w", c, err)
			}
			lane.Rotation.Y += p.RotationY
			lane.Position = o.Add(scene.V3(p.Offset))
			a.place(res, lane, KindLane, c, "")
			res.Lanes++
		}
		return nil
	})
}

// PlaceTiles assigns each cell a template chosen uniformly from the sorted
// template names and instantiates its assets relative to the cell origin.
func (a *Assembler) PlaceTiles(res *Result) error {
	names := a.tiles.Names
	if len(names) == 0 {
		return fmt.Errorf("tiles: empty template catalog")
	}
	return a.cells(func(c Cell) error {
		i := a.rng.Intn(len(names))
		if i < 0 || i >= len(names) {
			return fmt.Errorf("tiles: random index %d out of range [0,%d)", i, len(names))
		}
		name := names[i]
		o := a.origin(c)
		for _, asset := range a.tiles.ByName[name].Assets {
			obj, err := a.cat.Instance(catalogs.ModelBuilding, asset.Name)
			if err != nil {
				return fmt.Errorf("tile %q at %v: %w", name, c, err)
			}
			if asset.Scale != nil {
				obj.Scale = scene.V3(*asset.Scale)
			}
			obj.Position = o.Add(scene.V3(asset.Offset))
			a.place(res, obj, KindBuilding, c, name)
			res.Buildings++
		}
		res.Assignments = append(res.Assignments, Assignment{Cell: c, Template: name})
		return nil
	})
}

func (a *Assembler) place(res *Result, obj *scene.Object, kind PlacementKind, c Cell, template string) {
	res.Scene.Add(obj)
	res.Placements = append(res.Placements, Placement{
		Seq:       len(res.Placements),
		Kind:      kind,
		Model:     obj.Model,
		Cell:      c,
		Template:  template,
		Position:  [3]float64{obj.Position.X, obj.Position.Y, obj.Position.Z},
		RotationY: obj.Rotation.Y,
		Scale:     [3]float64{obj.Scale.X, obj.Scale.Y, obj.Scale.Z},
	})
}
