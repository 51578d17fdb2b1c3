package loader

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/threemf/internal/assets"
	"github.com/Faultbox/threemf/pkg/opc"
	"github.com/Faultbox/threemf/pkg/threemf"
)

// flattener holds the state of one Flatten call. Resolution runs on a
// single goroutine; only materialize fans out, and by then every field
// is read-only.
type flattener struct {
	limit    int
	rootPath string
	root     *threemf.Model
	parts    *assets.Manager[*threemf.Model]

	models     []*threemf.Model
	paths      []string
	modelIndex map[string]int

	leaves    []ObjectRef
	leafIndex map[ObjectRef]int

	// spelling maps opc.PartKey to the first spelling of a part name, so
	// references differing only in case address one part.
	spelling map[string]string
}

func newFlattener(l *Loader, rootPath string, root *threemf.Model) *flattener {
	f := &flattener{
		limit:      l.concurrency,
		root:       root,
		parts:      assets.NewManager(l.readModel),
		modelIndex: make(map[string]int),
		leafIndex:  make(map[ObjectRef]int),
		spelling:   make(map[string]string),
	}
	f.rootPath = f.canonical(rootPath)
	return f
}

// canonical returns the normalized name a part is known by.
func (f *flattener) canonical(name string) string {
	name = opc.NormalizePath(name)
	key := opc.PartKey(name)
	if first, ok := f.spelling[key]; ok {
		return first
	}
	f.spelling[key] = name
	return name
}

// discover returns the parts named directly by the root build and by
// components of root objects, in document order.
func (f *flattener) discover() []string {
	seen := map[string]bool{f.rootPath: true}
	var out []string
	add := func(p string) {
		if p == "" {
			return
		}
		p = f.canonical(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, item := range f.root.Build.Items {
		add(item.Path)
	}
	for _, obj := range f.root.Resources.Objects() {
		for _, c := range obj.Components {
			add(c.Path)
		}
	}
	return out
}

// chain accumulates what a component inherits from the objects above it.
type chain struct {
	transforms  []threemf.Matrix3D
	names       []string
	partNumbers []string
	group       *threemf.ResourceID
	index       *threemf.ResourceIndex
	stack       []ObjectRef
}

func (f *flattener) register(path string, m *threemf.Model) int {
	if idx, ok := f.modelIndex[path]; ok {
		return idx
	}
	f.modelIndex[path] = len(f.models)
	f.models = append(f.models, m)
	f.paths = append(f.paths, path)
	return len(f.models) - 1
}

// model returns the model at path, loading parts not seen before.
func (f *flattener) model(path string) (*threemf.Model, error) {
	if path == f.rootPath {
		return f.root, nil
	}
	m, err := f.parts.Load(path)
	if err != nil {
		return nil, err
	}
	f.register(path, m)
	return m, nil
}

func (f *flattener) partPath(current, ref string) string {
	if ref == "" {
		return current
	}
	return f.canonical(ref)
}

func (f *flattener) object(path string, id threemf.ResourceID) (*threemf.Object, error) {
	m, err := f.model(path)
	if err != nil {
		return nil, err
	}
	obj := m.Resources.Object(id)
	if obj == nil {
		e := &ObjectNotFoundError{Path: path, ID: id}
		if path == f.rootPath {
			e.Path = ""
		}
		return nil, e
	}
	return obj, nil
}

func (f *flattener) resolveItem(item threemf.Item) (LoadedItem, error) {
	path := f.partPath(f.rootPath, item.Path)
	obj, err := f.object(path, item.ObjectID)
	if err != nil {
		return LoadedItem{}, err
	}

	c := chain{partNumbers: []string{item.PartNumber}}
	if item.Transform != nil {
		c.transforms = []threemf.Matrix3D{*item.Transform}
	}
	out := LoadedItem{Item: item, Object: obj}
	if err := f.walk(path, obj, c, &out.Components); err != nil {
		return LoadedItem{}, err
	}
	return out, nil
}

func (f *flattener) walk(path string, obj *threemf.Object, c chain, out *[]LoadedComponent) error {
	ref := ObjectRef{Path: path, ID: obj.ID}
	if slices.Contains(c.stack, ref) {
		return &CyclicReferenceError{Chain: append(slices.Clone(c.stack), ref)}
	}
	c.stack = append(slices.Clip(c.stack), ref)
	c.names = append(slices.Clip(c.names), obj.Name)
	c.partNumbers = append(slices.Clip(c.partNumbers), obj.PartNumber)
	if obj.PropertyGroupID != nil {
		c.group = obj.PropertyGroupID
	}
	if obj.PropertyIndex != nil {
		c.index = obj.PropertyIndex
	}

	if obj.Mesh != nil {
		*out = append(*out, LoadedComponent{
			MeshIndex:       f.leaf(ref),
			Transforms:      c.transforms,
			PropertyGroupID: c.group,
			PropertyIndex:   c.index,
			Names:           c.names,
			PartNumbers:     c.partNumbers,
		})
		return nil
	}

	for _, comp := range obj.Components {
		target := f.partPath(path, comp.Path)
		child, err := f.object(target, comp.ObjectID)
		if err != nil {
			return err
		}
		next := c
		if comp.Transform != nil {
			next.transforms = append(slices.Clip(c.transforms), *comp.Transform)
		}
		if err := f.walk(target, child, next, out); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) leaf(ref ObjectRef) int {
	if idx, ok := f.leafIndex[ref]; ok {
		return idx
	}
	f.leafIndex[ref] = len(f.leaves)
	f.leaves = append(f.leaves, ref)
	return len(f.leaves) - 1
}

// materialize looks up the geometry of every distinct leaf.
func (f *flattener) materialize(ctx context.Context) ([]LoadedMesh, error) {
	meshes := make([]LoadedMesh, len(f.leaves))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	for i, ref := range f.leaves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, idx := f.root, RootModelIndex
			if ref.Path != f.rootPath {
				idx = f.modelIndex[ref.Path]
				m = f.models[idx]
			}
			obj := m.Resources.Object(ref.ID)
			meshes[i] = LoadedMesh{
				Ref:        ref,
				ModelIndex: idx,
				Object:     obj,
				Mesh:       obj.Mesh,
				Bounds:     obj.Mesh.Bounds(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}
