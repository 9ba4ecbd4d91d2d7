package tuning

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Grid   Grid   `yaml:"grid"`
	Roads  Roads  `yaml:"roads"`
	Loader Loader `yaml:"loader"`
	Game   Game   `yaml:"game"`
	Log    Log    `yaml:"log"`
}

// Grid is the square world grid. Cells run over [Min, Max) on both axes and
// sit CellSpacing world units apart.
type Grid struct {
	Min         int     `yaml:"min"`
	Max         int     `yaml:"max"`
	CellSpacing float64 `yaml:"cell_spacing"`
}

type Roads struct {
	Intersection string      `yaml:"intersection"`
	Pieces       []RoadPiece `yaml:"pieces"`
}

// RoadPiece is one lane segment placed relative to every cell origin.
type RoadPiece struct {
	Model     string     `yaml:"model"`
	Offset    [3]float64 `yaml:"offset"`
	RotationY float64    `yaml:"rotation_y"`
}

type Loader struct {
	Timeout       Duration `yaml:"timeout"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	AssetRoot     string   `yaml:"asset_root"`
}

type Game struct {
	StartPopulation    int      `yaml:"start_population"`
	StartMaxPopulation int      `yaml:"start_max_population"`
	StartFood          int      `yaml:"start_food"`
	BaseFood           int      `yaml:"base_food"`
	FoodPerTile        int      `yaml:"food_per_tile"`
	FoodPerPerson      int      `yaml:"food_per_person"`
	PopulationPerTile  int      `yaml:"population_per_tile"`
	ConquerTurns       int      `yaml:"conquer_turns"`
	StartTiles         [][2]int `yaml:"start_tiles"`
	People             []string `yaml:"people"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration accepts Go duration strings ("30s") in yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

func (d Duration) Std() time.Duration { return time.Duration(d) }

func Defaults() Tuning {
	return Tuning{
		Grid: Grid{Min: -5, Max: 5, CellSpacing: 23.4},
		Roads: Roads{
			Intersection: "roadIntersection",
			Pieces: []RoadPiece{
				{Model: "roadLane1", Offset: [3]float64{0.2, 0, 7.6}},
				{Model: "roadLane1", Offset: [3]float64{6.7, 0, -0.1}, RotationY: 1.5708},
				{Model: "roadLane3", Offset: [3]float64{0.7, 0, 15}},
				{Model: "roadLane3", Offset: [3]float64{14.1, 0, -0.6}, RotationY: 1.5708},
			},
		},
		Loader: Loader{
			Timeout:   Duration(30 * time.Second),
			AssetRoot: ".",
		},
		Game: Game{
			StartPopulation:    3,
			StartMaxPopulation: 5,
			StartFood:          10,
			BaseFood:           2,
			FoodPerTile:        2,
			FoodPerPerson:      1,
			PopulationPerTile:  2,
			ConquerTurns:       3,
			StartTiles:         [][2]int{{0, 0}},
			People:             []string{"Ada", "Bram", "Cato"},
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Grid.Max <= t.Grid.Min {
		return fmt.Errorf("grid: max (%d) must be greater than min (%d)", t.Grid.Max, t.Grid.Min)
	}
	if t.Grid.CellSpacing <= 0 {
		return fmt.Errorf("grid: cell_spacing must be positive")
	}
	if strings.TrimSpace(t.Roads.Intersection) == "" {
		return fmt.Errorf("roads: missing intersection model")
	}
	for i, p := range t.Roads.Pieces {
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("roads: piece %d has no model", i)
		}
	}
	if t.Loader.MaxConcurrent < 0 {
		return fmt.Errorf("loader: max_concurrent must be >= 0")
	}
	if t.Loader.Timeout < 0 {
		return fmt.Errorf("loader: negative timeout")
	}
	if t.Game.ConquerTurns <= 0 {
		return fmt.Errorf("game: conquer_turns must be positive")
	}
	return nil
}

// Cells reports how many grid cells the grid covers.
func (g Grid) Cells() int {
	n := g.Max - g.Min
	if n <= 0 {
		return 0
	}
	return n * n
}
