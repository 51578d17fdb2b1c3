package threemf

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strconv"

	"github.com/Faultbox/threemf/pkg/math"
	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Mesh is triangle geometry.
type Mesh struct {
	Vertices     []Vertex
	Triangles    []Triangle
	TriangleSets []TriangleSet
}

// Vertex is a point in model units.
type Vertex struct {
	X, Y, Z float64
}

// Triangle references three vertices and optionally overrides the owning
// object's properties.
type Triangle struct {
	V1, V2, V3    ResourceIndex
	PropertyGroup *ResourceID      // pid
	Properties    *PropertyIndices // p1, p2, p3
}

// PropertyIndices is either one index for the whole triangle or one per
// corner.
type PropertyIndices struct {
	P1, P2, P3 ResourceIndex
	PerVertex  bool
}

// UniformProperty uses one index for all three corners.
func UniformProperty(index ResourceIndex) *PropertyIndices {
	return &PropertyIndices{P1: index, P2: index, P3: index}
}

// PerVertexProperty uses a distinct index per corner.
func PerVertexProperty(p1, p2, p3 ResourceIndex) *PropertyIndices {
	return &PropertyIndices{P1: p1, P2: p2, P3: p3, PerVertex: true}
}

// ResolvedProperties returns the triangle's property references, falling
// back to the object's pid and pindex. It returns one reference for a
// uniform triangle, three for per-vertex, and nil when nothing applies.
func (t Triangle) ResolvedProperties(obj *Object) []PropertyReference {
	var groupID ResourceID
	switch {
	case t.PropertyGroup != nil:
		groupID = *t.PropertyGroup
	case obj != nil && obj.PropertyGroupID != nil:
		groupID = *obj.PropertyGroupID
	default:
		return nil
	}

	switch {
	case t.Properties != nil && t.Properties.PerVertex:
		return []PropertyReference{
			{GroupID: groupID, Index: t.Properties.P1},
			{GroupID: groupID, Index: t.Properties.P2},
			{GroupID: groupID, Index: t.Properties.P3},
		}
	case t.Properties != nil:
		return []PropertyReference{{GroupID: groupID, Index: t.Properties.P1}}
	case obj != nil && obj.PropertyIndex != nil:
		return []PropertyReference{{GroupID: groupID, Index: *obj.PropertyIndex}}
	}
	return nil
}

// TriangleSet is a named subset of triangle indices, held as compact runs.
type TriangleSet struct {
	Name       string
	Identifier string
	Ranges     []IndexRange // sorted, disjoint, never adjacent
}

// IndexRange is an inclusive run of triangle indices.
type IndexRange struct {
	Start, End int
}

// Add includes one triangle index.
func (s *TriangleSet) Add(i int) {
	s.AddRange(i, i)
}

// AddRange includes every index from start to end inclusive, merging with
// overlapping or adjacent runs. An empty range (start > end) is ignored.
func (s *TriangleSet) AddRange(start, end int) {
	if start > end {
		return
	}
	lo := sort.Search(len(s.Ranges), func(i int) bool { return s.Ranges[i].End >= start-1 })
	hi := sort.Search(len(s.Ranges), func(i int) bool { return s.Ranges[i].Start > end+1 })
	merged := IndexRange{Start: start, End: end}
	if lo < hi {
		merged.Start = min(merged.Start, s.Ranges[lo].Start)
		merged.End = max(merged.End, s.Ranges[hi-1].End)
	}
	s.Ranges = slices.Replace(s.Ranges, lo, hi, merged)
}

// Contains reports whether triangle index i is in the set.
func (s *TriangleSet) Contains(i int) bool {
	n := sort.Search(len(s.Ranges), func(k int) bool { return s.Ranges[k].End >= i })
	return n < len(s.Ranges) && s.Ranges[n].Start <= i
}

// Len returns the number of indices in the set.
func (s *TriangleSet) Len() int {
	n := 0
	for _, r := range s.Ranges {
		n += r.End - r.Start + 1
	}
	return n
}

// Indices yields the indices in ascending order.
func (s *TriangleSet) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, r := range s.Ranges {
			for i := r.Start; i <= r.End; i++ {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// Bounds returns the axis-aligned bounds of the vertices.
func (m *Mesh) Bounds() math.Box3 {
	var box math.Box3
	for _, v := range m.Vertices {
		box.Extend(math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)})
	}
	return box
}

func decodeMesh(n *xmltree.Node) (*Mesh, error) {
	vertices, err := requireChild(n, elemVertices)
	if err != nil {
		return nil, err
	}
	triangles, err := requireChild(n, elemTriangles)
	if err != nil {
		return nil, err
	}

	m := &Mesh{}
	vs := children(vertices, elemVertex)
	m.Vertices = make([]Vertex, 0, len(vs))
	for _, e := range vs {
		r := readAttrs(e)
		v := Vertex{X: r.Number(attrX), Y: r.Number(attrY), Z: r.Number(attrZ)}
		if err := r.Err(); err != nil {
			return nil, err
		}
		m.Vertices = append(m.Vertices, v)
	}

	ts := children(triangles, elemTriangle)
	m.Triangles = make([]Triangle, 0, len(ts))
	for _, e := range ts {
		t, err := decodeTriangle(e)
		if err != nil {
			return nil, err
		}
		m.Triangles = append(m.Triangles, t)
	}

	if sets := child(n, elemTriangleSets); sets != nil {
		for _, e := range children(sets, elemTriangleSet) {
			set, err := decodeTriangleSet(e, len(m.Triangles))
			if err != nil {
				return nil, err
			}
			m.TriangleSets = append(m.TriangleSets, set)
		}
	}
	return m, nil
}

func decodeTriangle(n *xmltree.Node) (Triangle, error) {
	r := readAttrs(n)
	t := Triangle{
		V1:            r.Index(attrV1),
		V2:            r.Index(attrV2),
		V3:            r.Index(attrV3),
		PropertyGroup: r.OptID(attrPID),
	}
	if p1 := r.OptIndex(attrP1); p1 != nil {
		p2, p3 := r.OptIndex(attrP2), r.OptIndex(attrP3)
		if p2 != nil && p3 != nil {
			t.Properties = PerVertexProperty(*p1, *p2, *p3)
		} else {
			t.Properties = UniformProperty(*p1)
		}
	}
	return t, r.Err()
}

func decodeTriangleSet(n *xmltree.Node, triangles int) (TriangleSet, error) {
	r := readAttrs(n)
	set := TriangleSet{Name: r.String(attrTSName), Identifier: r.String(attrIdentifier)}
	if err := r.Err(); err != nil {
		return TriangleSet{}, err
	}

	for _, e := range n.Children {
		er := readAttrs(e)
		switch {
		case e.Is(elemRef.Space, elemRef.Local):
			i := int(er.Index(attrIndex))
			if er.Err() == nil && i >= triangles {
				raw := strconv.Itoa(i)
				er.fail(attrIndex, raw, &ValueError{Kind: "triangle index", Raw: raw})
			}
			if er.Err() == nil {
				set.Add(i)
			}
		case e.Is(elemRefRange.Space, elemRefRange.Local):
			start, end := int(er.Index(attrStartIndex)), int(er.Index(attrEndIndex))
			if er.Err() == nil && start > end {
				er.fail(attrEndIndex, strconv.Itoa(end), &ValueError{Kind: "triangle range", Raw: fmt.Sprintf("%d..%d", start, end)})
			}
			if er.Err() == nil && end >= triangles {
				raw := strconv.Itoa(end)
				er.fail(attrEndIndex, raw, &ValueError{Kind: "triangle index", Raw: raw})
			}
			if er.Err() == nil {
				set.AddRange(start, end)
			}
		}
		if err := er.Err(); err != nil {
			return TriangleSet{}, err
		}
	}
	return set, nil
}

func (m *Mesh) encode(parent *xmltree.Node) {
	n := parent.AddElement(elemMesh.Space, elemMesh.Local)

	vertices := n.AddElement(elemVertices.Space, elemVertices.Local)
	for _, v := range m.Vertices {
		w := writeAttrs(vertices.AddElement(elemVertex.Space, elemVertex.Local))
		w.Number(attrX, v.X)
		w.Number(attrY, v.Y)
		w.Number(attrZ, v.Z)
	}

	triangles := n.AddElement(elemTriangles.Space, elemTriangles.Local)
	for _, t := range m.Triangles {
		w := writeAttrs(triangles.AddElement(elemTriangle.Space, elemTriangle.Local))
		w.Index(attrV1, t.V1)
		w.Index(attrV2, t.V2)
		w.Index(attrV3, t.V3)
		w.OptID(attrPID, t.PropertyGroup)
		if p := t.Properties; p != nil {
			w.Index(attrP1, p.P1)
			if p.PerVertex {
				w.Index(attrP2, p.P2)
				w.Index(attrP3, p.P3)
			}
		}
	}

	if len(m.TriangleSets) == 0 {
		return
	}
	sets := n.AddElement(elemTriangleSets.Space, elemTriangleSets.Local)
	for _, set := range m.TriangleSets {
		e := sets.AddElement(elemTriangleSet.Space, elemTriangleSet.Local)
		w := writeAttrs(e)
		w.String(attrTSName, set.Name)
		w.String(attrIdentifier, set.Identifier)
		for _, run := range set.Ranges {
			if run.Start == run.End {
				writeAttrs(e.AddElement(elemRef.Space, elemRef.Local)).Int(attrIndex, run.Start)
				continue
			}
			rw := writeAttrs(e.AddElement(elemRefRange.Space, elemRefRange.Local))
			rw.Int(attrStartIndex, run.Start)
			rw.Int(attrEndIndex, run.End)
		}
	}
}
