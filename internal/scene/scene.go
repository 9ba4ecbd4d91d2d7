// Package scene is the in-memory scene graph handed to renderers.
package scene

import "cityconquer.ai/internal/sim/catalogs"

type Scene struct {
	Objects []*Object
}

func New() *Scene { return &Scene{} }

func (s *Scene) Add(o *Object) { s.Objects = append(s.Objects, o) }

func (s *Scene) Len() int { return len(s.Objects) }

// CountModel counts top-level objects placed from the given model.
func (s *Scene) CountModel(t catalogs.ModelType, name string) int {
	n := 0
	for _, o := range s.Objects {
		if o.Type == t && o.Model == name {
			n++
		}
	}
	return n
}

func (s *Scene) CountType(t catalogs.ModelType) int {
	n := 0
	for _, o := range s.Objects {
		if o.Type == t {
			n++
		}
	}
	return n
}

// Bounds is the XZ extent of all placed object origins.
func (s *Scene) Bounds() (min, max Vec3, ok bool) {
	if len(s.Objects) == 0 {
		return Vec3{}, Vec3{}, false
	}
	min, max = s.Objects[0].Position, s.Objects[0].Position
	for _, o := range s.Objects[1:] {
		p := o.Position
		min.X, max.X = minf(min.X, p.X), maxf(max.X, p.X)
		min.Y, max.Y = minf(min.Y, p.Y), maxf(max.Y, p.Y)
		min.Z, max.Z = minf(min.Z, p.Z), maxf(max.Z, p.Z)
	}
	return min, max, true
}
