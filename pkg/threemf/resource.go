package threemf

import (
	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Resource is one entry of a model's <resources> section. The set of
// implementations is closed; each knows its own element identity.
type Resource interface {
	ResourceID() ResourceID
	ElementName() Name

	setResourceID(ResourceID)
	encode(parent *xmltree.Node, st encodeState)
}

type decodeFunc func(n *xmltree.Node) (Resource, error)

// registry maps a <resources> child element to its decoder. Elements not
// listed here are skipped.
var registry = map[Name]decodeFunc{
	elemObject:             decodeObject,
	elemBaseMaterials:      decodeBaseMaterialGroup,
	elemColorGroup:         decodeColorGroup,
	elemCompositeMaterials: decodeCompositeMaterialGroup,
	elemMultiproperties:    decodeMultiproperties,
	elemTexture2D:          decodeTexture2D,
	elemTexture2DGroup:     decodeTexture2DGroup,
	elemMetallicDisplay:    decodeMetallicDisplayProperties,
	elemMetallicTexture:    decodeMetallicTextureDisplayProperties,
	elemSpecularDisplay:    decodeSpecularDisplayProperties,
	elemSpecularTexture:    decodeSpecularTextureDisplayProperties,
	elemTranslucentDisplay: decodeTranslucentDisplayProperties,
}

// IsRegistered reports whether resources with this element identity are
// decoded.
func IsRegistered(name Name) bool {
	_, ok := registry[name]
	return ok
}

// ResourceContainer holds a model's resources in document order.
type ResourceContainer struct {
	Resources []Resource
}

// Resource returns the first resource with the given id, or nil.
func (c *ResourceContainer) Resource(id ResourceID) Resource {
	for _, r := range c.Resources {
		if r.ResourceID() == id {
			return r
		}
	}
	return nil
}

// Object returns the object with the given id, or nil if the id is absent
// or names another kind of resource.
func (c *ResourceContainer) Object(id ResourceID) *Object {
	obj, _ := c.Resource(id).(*Object)
	return obj
}

// Objects returns all objects in document order.
func (c *ResourceContainer) Objects() []*Object {
	var out []*Object
	for _, r := range c.Resources {
		if obj, ok := r.(*Object); ok {
			out = append(out, obj)
		}
	}
	return out
}

// NextFreeID returns one more than the highest id in use.
func (c *ResourceContainer) NextFreeID() ResourceID {
	var highest ResourceID
	for _, r := range c.Resources {
		if r.ResourceID() > highest {
			highest = r.ResourceID()
		}
	}
	return highest + 1
}

// Add appends r under a fresh id and returns that id.
func (c *ResourceContainer) Add(r Resource) ResourceID {
	id := c.NextFreeID()
	r.setResourceID(id)
	c.Resources = append(c.Resources, r)
	return id
}

// Len returns the number of resources.
func (c *ResourceContainer) Len() int {
	return len(c.Resources)
}

func decodeResources(n *xmltree.Node, opts DecodeOptions) (ResourceContainer, error) {
	var c ResourceContainer
	for _, e := range n.Children {
		decode, ok := registry[e.Name]
		if !ok {
			if opts.OnUnknown != nil {
				opts.OnUnknown(n.Name, e.Name)
			}
			continue
		}
		r, err := decode(e)
		if err != nil {
			return ResourceContainer{}, err
		}
		c.Resources = append(c.Resources, r)
	}
	return c, nil
}

func (c *ResourceContainer) encode(parent *xmltree.Node, st encodeState) {
	n := parent.AddElement(elemResources.Space, elemResources.Local)
	for _, r := range c.Resources {
		r.encode(n, st)
	}
}

// PropertyReference points at one entry of a property group.
type PropertyReference struct {
	GroupID ResourceID
	Index   ResourceIndex
}
