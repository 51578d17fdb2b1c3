// Package loader resolves a 3MF build across model parts into a flat,
// deduplicated set of meshes and placements ready for rendering.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/threemf/pkg/opc"
	"github.com/Faultbox/threemf/pkg/threemf"
)

// PartSource provides the parts of a package. *opc.Reader implements it.
// ReadPart must report absent parts with an error matching
// opc.ErrPartNotFound, and must be safe for concurrent use.
type PartSource interface {
	ReadPart(name string) ([]byte, error)
	RootModelPath() (string, error)
}

// Loader flattens packages read from a PartSource.
type Loader struct {
	src         PartSource
	log         *zap.Logger
	concurrency int
	decode      threemf.DecodeOptions
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithConcurrency bounds how many parts are decoded at once. Values below
// one remove the bound.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		l.concurrency = n
	}
}

// WithDecodeOptions sets the options used to decode every model part.
func WithDecodeOptions(opts threemf.DecodeOptions) Option {
	return func(l *Loader) {
		l.decode = opts
	}
}

// New creates a Loader reading from src.
func New(src PartSource, opts ...Option) *Loader {
	l := &Loader{
		src:         src,
		log:         zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		l.concurrency = -1
	}
	return l
}

// Load decodes the root model part and flattens it.
func (l *Loader) Load(ctx context.Context) (*LoadedModel, error) {
	rootPath, err := l.src.RootModelPath()
	if err != nil {
		return nil, fmt.Errorf("locating root model: %w", err)
	}
	rootPath = opc.NormalizePath(rootPath)
	root, err := l.readModel(rootPath)
	if err != nil {
		return nil, err
	}
	return l.Flatten(ctx, rootPath, root)
}

// Flatten resolves every build item of root, which was decoded from the
// part rootPath. Other parts are read from the source as needed.
func (l *Loader) Flatten(ctx context.Context, rootPath string, root *threemf.Model) (*LoadedModel, error) {
	f := newFlattener(l, rootPath, root)
	defer f.parts.Close()

	paths := f.discover()
	l.log.Debug("discovered model parts", zap.Strings("parts", paths))

	models, err := l.loadParts(ctx, paths)
	if err != nil {
		return nil, err
	}
	for i, p := range paths {
		f.parts.Preload(p, models[i])
		f.register(p, models[i])
	}

	out := &LoadedModel{Root: root, RootPath: f.rootPath}
	for i, item := range root.Build.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		li, err := f.resolveItem(item)
		if err != nil {
			return nil, fmt.Errorf("build item %d: %w", i, err)
		}
		out.Items = append(out.Items, li)
	}

	if out.Meshes, err = f.materialize(ctx); err != nil {
		return nil, err
	}
	out.Models = f.models
	out.ModelPaths = f.paths

	hits, misses := f.parts.Cache().Stats()
	l.log.Debug("flattened build",
		zap.Int("items", len(out.Items)),
		zap.Int("meshes", len(out.Meshes)),
		zap.Int("models", len(out.Models)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)
	return out, nil
}

func (l *Loader) loadParts(ctx context.Context, paths []string) ([]*threemf.Model, error) {
	models := make([]*threemf.Model, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := l.readModel(p)
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

func (l *Loader) readModel(path string) (*threemf.Model, error) {
	data, err := l.src.ReadPart(path)
	if errors.Is(err, opc.ErrPartNotFound) {
		return nil, &ModelNotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	opts := l.decode
	hook := opts.OnUnknown
	opts.OnUnknown = func(parent, element threemf.Name) {
		l.log.Debug("skipping unknown element",
			zap.String("part", path),
			zap.String("parent", parent.Local),
			zap.String("namespace", element.Space),
			zap.String("element", element.Local),
		)
		if hook != nil {
			hook(parent, element)
		}
	}

	m, err := opts.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	l.log.Debug("loaded model part", zap.String("part", path), zap.Int("resources", m.Resources.Len()))
	return m, nil
}
