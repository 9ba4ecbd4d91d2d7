// Package loader builds a scene.Catalog from model definitions, loading every
// model concurrently and failing as a whole on the first error.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cityconquer.ai/internal/logging"
	"cityconquer.ai/internal/scene"
	"cityconquer.ai/internal/sim/catalogs"
)

type LoadError struct {
	Model catalogs.ModelKey
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Model, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type Progress struct {
	Model catalogs.ModelKey
	Done  int
	Total int
}

type Loader struct {
	// FS resolves obj_file_path and img_file_path.
	FS fs.FS

	// MaxConcurrent bounds in-flight loads; 0 means one goroutine per model.
	MaxConcurrent int

	// Timeout bounds the whole load; 0 disables it.
	Timeout time.Duration

	// Progress is called after each model finishes. It may be called from
	// several goroutines at once.
	Progress func(Progress)

	Log *logrus.Entry
}

func New(fsys fs.FS) *Loader {
	return &Loader{FS: fsys, Log: logging.Component("loader")}
}

// Load loads every definition and registers it in a fresh catalog. Either all
// models load or an error is returned; a partial catalog is never exposed.
func (l *Loader) Load(ctx context.Context, defs []catalogs.ModelDef) (*scene.Catalog, error) {
	log := l.Log
	if log == nil {
		log = logging.Component("loader")
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	if l.MaxConcurrent > 0 {
		g.SetLimit(l.MaxConcurrent)
	}

	protos := make([]*scene.Object, len(defs))
	var done atomic.Int64
	// g.Go blocks once the limit is reached and reads from FS cannot be
	// interrupted, so both issuing and the join run in the background and
	// Load gives up on them when ctx ends.
	errc := make(chan error, 1)
	go func() {
		for i, def := range defs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return &LoadError{Model: def.Key(), Err: err}
				}
				obj, err := l.loadModel(def)
				if err != nil {
					return err
				}
				protos[i] = obj
				n := int(done.Add(1))
				log.WithFields(logrus.Fields{"model": def.Key().String(), "done": n, "total": len(defs)}).Debug("model loaded")
				if l.Progress != nil {
					l.Progress(Progress{Model: def.Key(), Done: n, Total: len(defs)})
				}
				return nil
			})
		}
		errc <- g.Wait()
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = &LoadError{Err: ctx.Err()}
	}
	if err != nil {
		log.WithError(err).Error("model catalog load failed")
		return nil, err
	}

	cat := scene.NewCatalog()
	for i, def := range defs {
		cat.Register(def.Key(), protos[i])
	}
	log.WithField("models", cat.Len()).Info("model catalog loaded")
	return cat, nil
}

func (l *Loader) loadModel(def catalogs.ModelDef) (*scene.Object, error) {
	mat, err := loadMaterial(l.FS, def.ImgFilePath)
	if err != nil {
		return nil, &LoadError{Model: def.Key(), Path: def.ImgFilePath, Err: err}
	}
	obj, err := loadOBJ(l.FS, def.ObjFilePath)
	if err != nil {
		return nil, &LoadError{Model: def.Key(), Path: def.ObjFilePath, Err: err}
	}

	obj.Name = def.Name
	obj.Type = def.Type
	obj.Model = def.Name
	obj.Scale = scene.V3(def.Scale)
	obj.Traverse(func(o *scene.Object) {
		if o.Mesh == nil {
			return
		}
		o.CastShadow = true
		o.ReceiveShadow = true
		o.Material = mat
	})
	return obj, nil
}
