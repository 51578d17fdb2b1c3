package loader

import (
	"fmt"

	"github.com/Faultbox/threemf/pkg/math"
	"github.com/Faultbox/threemf/pkg/threemf"
)

// RootModelIndex is the model index of meshes owned by the root part.
const RootModelIndex = -1

// ObjectRef addresses an object across model parts.
type ObjectRef struct {
	Path string // normalized part name
	ID   threemf.ResourceID
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s#%d", r.Path, r.ID)
}

// LoadedModel is the flattened, read-only view of a package.
type LoadedModel struct {
	Root     *threemf.Model
	RootPath string

	// Models holds every other loaded model part, in first-discovery order.
	Models     []*threemf.Model
	ModelPaths []string

	// Meshes holds one entry per distinct mesh object reached from the
	// build, in first-discovery order.
	Meshes []LoadedMesh
	Items  []LoadedItem
}

// LoadedMesh is a deduplicated mesh object.
type LoadedMesh struct {
	Ref        ObjectRef
	ModelIndex int // index into Models, or RootModelIndex
	Object     *threemf.Object
	Mesh       *threemf.Mesh
	Bounds     math.Box3 // in object space
}

// LoadedItem is a build item with its components flattened.
type LoadedItem struct {
	Item threemf.Item

	// Object is the item's target object, in the part named by the item.
	Object     *threemf.Object
	Components []LoadedComponent
}

// LoadedComponent is one placement of a mesh reached from a build item.
type LoadedComponent struct {
	MeshIndex int

	// Transforms is ordered root to leaf. Links without a transform are
	// omitted.
	Transforms []threemf.Matrix3D

	PropertyGroupID *threemf.ResourceID
	PropertyIndex   *threemf.ResourceIndex

	// Names has one entry per object on the chain, root to leaf.
	// PartNumbers additionally starts with the build item's part number.
	// Objects without a name or part number still contribute an empty
	// entry, so position i always belongs to the same link of the chain.
	Names       []string
	PartNumbers []string
}

// WorldTransform composes the chain into a single transform mapping mesh
// coordinates into build space.
func (c *LoadedComponent) WorldTransform() threemf.Matrix3D {
	world := threemf.Identity3D
	for i := len(c.Transforms) - 1; i >= 0; i-- {
		world = world.Mul(c.Transforms[i])
	}
	return world
}

// WorldMatrix is WorldTransform as a render matrix, composed link by link
// from the root.
func (c *LoadedComponent) WorldMatrix() math.Mat4 {
	world := math.Identity()
	for _, t := range c.Transforms {
		world = world.Mul(t.Mat4())
	}
	return world
}

// Property returns the inherited property reference, if both parts of it
// were set somewhere on the chain.
func (c *LoadedComponent) Property() (threemf.PropertyReference, bool) {
	if c.PropertyGroupID == nil || c.PropertyIndex == nil {
		return threemf.PropertyReference{}, false
	}
	return threemf.PropertyReference{GroupID: *c.PropertyGroupID, Index: *c.PropertyIndex}, true
}

// Model returns the model part owning a mesh.
func (lm *LoadedModel) Model(mesh LoadedMesh) *threemf.Model {
	if mesh.ModelIndex == RootModelIndex {
		return lm.Root
	}
	return lm.Models[mesh.ModelIndex]
}

// Bounds returns the build-space bounds of every placed mesh.
func (lm *LoadedModel) Bounds() math.Box3 {
	var box math.Box3
	for _, item := range lm.Items {
		for i := range item.Components {
			c := &item.Components[i]
			box.Union(c.WorldMatrix().TransformBox(lm.Meshes[c.MeshIndex].Bounds))
		}
	}
	return box
}

// Stats summarizes a loaded model.
type Stats struct {
	Items      int
	Placements int
	Meshes     int
	Models     int // including the root
	Vertices   int // over distinct meshes
	Triangles  int // over distinct meshes

	// PlacedTriangles counts every placement, so instanced meshes count
	// once per instance.
	PlacedTriangles int
}

// Stats computes summary counts.
func (lm *LoadedModel) Stats() Stats {
	s := Stats{
		Items:  len(lm.Items),
		Meshes: len(lm.Meshes),
		Models: len(lm.Models) + 1,
	}
	for _, m := range lm.Meshes {
		s.Vertices += len(m.Mesh.Vertices)
		s.Triangles += len(m.Mesh.Triangles)
	}
	for _, item := range lm.Items {
		s.Placements += len(item.Components)
		for _, c := range item.Components {
			s.PlacedTriangles += len(lm.Meshes[c.MeshIndex].Mesh.Triangles)
		}
	}
	return s
}
