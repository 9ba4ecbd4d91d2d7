package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cityconquer.ai/schemas"
)

// ErrUnknownModel is returned when a template or road layout references a
// model that the catalog does not define.
var ErrUnknownModel = errors.New("unknown model reference")

type ModelType string

const (
	ModelRoad     ModelType = "road"
	ModelBuilding ModelType = "building"
)

type Catalogs struct {
	Models ModelCatalog
	Tiles  TileCatalog
}

type ModelCatalog struct {
	Defs   []ModelDef
	Digest string
}

type ModelDef struct {
	Type        ModelType  `json:"type"`
	Name        string     `json:"name"`
	ObjFilePath string     `json:"obj_file_path"`
	ImgFilePath string     `json:"img_file_path"`
	Scale       [3]float64 `json:"scale"`
}

func (d ModelDef) Key() ModelKey { return ModelKey{Type: d.Type, Name: d.Name} }

type ModelKey struct {
	Type ModelType
	Name string
}

func (k ModelKey) String() string { return string(k.Type) + "/" + k.Name }

type TileCatalog struct {
	ByName map[string]TileTemplate
	Names  []string // sorted
	Digest string
}

type TileTemplate struct {
	Assets []AssetPlacement `json:"assets"`
}

type AssetPlacement struct {
	Name   string      `json:"name"`
	Offset [3]float64  `json:"offset"`
	Scale  *[3]float64 `json:"scale,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadModels(filepath.Join(configDir, "models.json"), &c.Models); err != nil {
		return nil, err
	}
	if err := loadTiles(filepath.Join(configDir, "grid_tiles.json"), &c.Tiles); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadModels(path string, out *ModelCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseModels(raw, out)
}

func parseModels(raw []byte, out *ModelCatalog) error {
	if err := schemas.ValidateJSON(schemas.Models, raw); err != nil {
		return fmt.Errorf("models.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []ModelDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("models.json: %w", err)
	}
	seen := map[ModelKey]struct{}{}
	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("models.json: empty name")
		}
		if _, ok := seen[d.Key()]; ok {
			return fmt.Errorf("models.json: duplicate model %s", d.Key())
		}
		seen[d.Key()] = struct{}{}
	}
	out.Defs = defs
	return nil
}

func loadTiles(path string, out *TileCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseTiles(raw, out)
}

func parseTiles(raw []byte, out *TileCatalog) error {
	if err := schemas.ValidateJSON(schemas.GridTiles, raw); err != nil {
		return fmt.Errorf("grid_tiles.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	byName := map[string]TileTemplate{}
	if err := json.Unmarshal(raw, &byName); err != nil {
		return fmt.Errorf("grid_tiles.json: %w", err)
	}
	if len(byName) == 0 {
		return fmt.Errorf("grid_tiles.json: no templates")
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out.ByName = byName
	out.Names = names
	return nil
}

// Validate checks that every tile asset names a building model.
func (c *Catalogs) Validate() error {
	known := map[ModelKey]struct{}{}
	for _, d := range c.Models.Defs {
		known[d.Key()] = struct{}{}
	}
	for _, name := range c.Tiles.Names {
		for i, a := range c.Tiles.ByName[name].Assets {
			k := ModelKey{Type: ModelBuilding, Name: a.Name}
			if _, ok := known[k]; !ok {
				return fmt.Errorf("grid_tiles.json: template %q asset %d: %w: %s", name, i, ErrUnknownModel, k)
			}
		}
	}
	return nil
}

// RequireModels reports the first name in names missing from the catalog
// under type t.
func (c *Catalogs) RequireModels(t ModelType, names ...string) error {
	known := map[string]struct{}{}
	for _, d := range c.Models.Defs {
		if d.Type == t {
			known[d.Name] = struct{}{}
		}
	}
	for _, n := range names {
		if _, ok := known[n]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownModel, ModelKey{Type: t, Name: n})
		}
	}
	return nil
}
