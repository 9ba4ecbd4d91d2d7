package loader

import (
	"fmt"
	"io/fs"

	"github.com/udhos/gwob"

	"cityconquer.ai/internal/logging"
	"cityconquer.ai/internal/scene"
)

// loadOBJ parses a Wavefront OBJ file into an object with one child per
// group, or a single mesh on the object itself when there is only one group.
func loadOBJ(fsys fs.FS, path string) (*scene.Object, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log := logging.Component("obj").WithField("path", path)
	o, err := gwob.NewObjFromReader(path, f, &gwob.ObjParserOptions{
		Logger: func(msg string) { log.Debug(msg) },
	})
	if err != nil {
		return nil, err
	}
	if o.StrideSize <= 0 {
		return nil, fmt.Errorf("obj: bad stride %d", o.StrideSize)
	}

	stride := o.StrideSize / 4
	off := o.StrideOffsetPosition / 4
	n := len(o.Coord) / stride
	positions := make([]scene.Vec3, n)
	for i := 0; i < n; i++ {
		b := i*stride + off
		positions[i] = scene.Vec3{X: float64(o.Coord[b]), Y: float64(o.Coord[b+1]), Z: float64(o.Coord[b+2])}
	}
	if len(o.Indices) == 0 {
		return nil, fmt.Errorf("obj: no faces")
	}

	mesh := &scene.Mesh{Positions: positions, Indices: append([]int(nil), o.Indices...)}
	for _, g := range o.Groups {
		if g.IndexCount == 0 {
			continue
		}
		mesh.Groups = append(mesh.Groups, scene.MeshGroup{Name: g.Name, IndexBegin: g.IndexBegin, IndexCount: g.IndexCount})
	}

	root := scene.NewObject(path)
	root.Mesh = mesh
	return root, nil
}
