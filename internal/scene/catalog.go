package scene

import (
	"fmt"
	"sort"

	"cityconquer.ai/internal/sim/catalogs"
)

// Catalog holds loaded model prototypes keyed by type and name. It is filled
// once by the loader and only read afterwards.
type Catalog struct {
	models map[catalogs.ModelKey]*Object
}

func NewCatalog() *Catalog {
	return &Catalog{models: map[catalogs.ModelKey]*Object{}}
}

func (c *Catalog) Register(key catalogs.ModelKey, proto *Object) {
	c.models[key] = proto
}

// Prototype returns the registered object itself. Callers must not mutate it.
func (c *Catalog) Prototype(t catalogs.ModelType, name string) (*Object, bool) {
	o, ok := c.models[catalogs.ModelKey{Type: t, Name: name}]
	return o, ok
}

// Instance returns an independent clone of the named prototype.
func (c *Catalog) Instance(t catalogs.ModelType, name string) (*Object, error) {
	o, ok := c.Prototype(t, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalogs.ErrUnknownModel, catalogs.ModelKey{Type: t, Name: name})
	}
	return o.Clone(), nil
}

func (c *Catalog) Len() int { return len(c.models) }

// Keys lists registered keys ordered by type then name.
func (c *Catalog) Keys() []catalogs.ModelKey {
	keys := make([]catalogs.ModelKey, 0, len(c.models))
	for k := range c.models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}
