package scene

import (
	"image/color"
	"slices"

	"cityconquer.ai/internal/sim/catalogs"
)

type Vec3 struct {
	X, Y, Z float64
}

func V3(a [3]float64) Vec3 { return Vec3{X: a[0], Y: a[1], Z: a[2]} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// Mul is component-wise.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{X: v.X * o.X, Y: v.Y * o.Y, Z: v.Z * o.Z} }

var One = Vec3{X: 1, Y: 1, Z: 1}

// Mesh is triangle geometry in model space.
type Mesh struct {
	Positions []Vec3
	Indices   []int
	Groups    []MeshGroup
}

type MeshGroup struct {
	Name       string
	IndexBegin int
	IndexCount int
}

// Bounds returns the axis-aligned box of the mesh positions.
func (m *Mesh) Bounds() (min, max Vec3, ok bool) {
	if m == nil || len(m.Positions) == 0 {
		return Vec3{}, Vec3{}, false
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min.X, max.X = minf(min.X, p.X), maxf(max.X, p.X)
		min.Y, max.Y = minf(min.Y, p.Y), maxf(max.Y, p.Y)
		min.Z, max.Z = minf(min.Z, p.Z), maxf(max.Z, p.Z)
	}
	return min, max, true
}

func (m *Mesh) clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Positions: slices.Clone(m.Positions),
		Indices:   slices.Clone(m.Indices),
		Groups:    slices.Clone(m.Groups),
	}
}

type Material struct {
	TexturePath string
	Width       int
	Height      int
	BaseColor   color.RGBA
}

func (m *Material) clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Object is a node of the scene graph. Prototypes live in a Catalog and are
// never placed directly; placement always goes through Clone.
type Object struct {
	Name  string
	Type  catalogs.ModelType
	Model string

	Position Vec3
	Rotation Vec3 // euler radians
	Scale    Vec3

	Mesh     *Mesh
	Material *Material

	CastShadow    bool
	ReceiveShadow bool

	Children []*Object
}

func NewObject(name string) *Object {
	return &Object{Name: name, Scale: One}
}

// Clone deep-copies o and its subtree. Mutating the clone, including its mesh
// and material, never reaches o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	c.Mesh = o.Mesh.clone()
	c.Material = o.Material.clone()
	if len(o.Children) > 0 {
		c.Children = make([]*Object, len(o.Children))
		for i, ch := range o.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

func (o *Object) Add(children ...*Object) {
	o.Children = append(o.Children, children...)
}

// Traverse visits o and every descendant depth first.
func (o *Object) Traverse(fn func(*Object)) {
	if o == nil {
		return
	}
	fn(o)
	for _, ch := range o.Children {
		ch.Traverse(fn)
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
