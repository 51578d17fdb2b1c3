package threemf

import (
	"github.com/google/uuid"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Object is a mesh or an assembly of components. Exactly one of Mesh and
// Components is set.
type Object struct {
	ID              ResourceID
	Type            *ObjectType
	Thumbnail       string
	PartNumber      string
	Name            string
	PropertyGroupID *ResourceID    // pid
	PropertyIndex   *ResourceIndex // pindex
	UUID            *uuid.UUID     // p:UUID

	Metadata     []Metadata
	Mesh         *Mesh
	Components   []Component
	Alternatives []Alternative
}

func (o *Object) ResourceID() ResourceID      { return o.ID }
func (o *Object) ElementName() Name           { return elemObject }
func (o *Object) setResourceID(id ResourceID) { o.ID = id }

// EffectiveType returns the object type, defaulting to model.
func (o *Object) EffectiveType() ObjectType {
	if o.Type != nil {
		return *o.Type
	}
	return ObjectModel
}

// IsMesh reports whether the object holds geometry directly.
func (o *Object) IsMesh() bool {
	return o.Mesh != nil
}

// DefaultProperty returns the object-level property reference, if both
// pid and pindex are set.
func (o *Object) DefaultProperty() (PropertyReference, bool) {
	if o.PropertyGroupID == nil || o.PropertyIndex == nil {
		return PropertyReference{}, false
	}
	return PropertyReference{GroupID: *o.PropertyGroupID, Index: *o.PropertyIndex}, true
}

// Component places another object inside an assembly.
type Component struct {
	ObjectID  ResourceID
	Transform *Matrix3D
	Path      string // p:path, a model part in the same package
	UUID      *uuid.UUID
}

// Alternative is a pa:alternative representation of an object.
type Alternative struct {
	ObjectID        ResourceID
	UUID            *uuid.UUID
	Path            string
	ModelResolution *ModelResolution
}

func decodeObject(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	o := &Object{
		ID:              r.ID(attrID),
		Type:            optional(r, attrType, ParseObjectType),
		Thumbnail:       r.OptString(attrThumbnail),
		PartNumber:      r.OptString(attrPartNumber),
		Name:            r.OptString(attrName),
		PropertyGroupID: r.OptID(attrPID),
		PropertyIndex:   r.OptIndex(attrPIndex),
		UUID:            r.OptUUID(attrUUID),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	metadata, err := decodeMetadataGroup(n)
	if err != nil {
		return nil, err
	}
	o.Metadata = metadata

	if mesh := child(n, elemMesh); mesh != nil {
		if o.Mesh, err = decodeMesh(mesh); err != nil {
			return nil, err
		}
	} else if comps := child(n, elemComponents); comps != nil {
		if o.Components, err = decodeComponents(comps); err != nil {
			return nil, err
		}
	} else {
		return nil, &ElementError{Parent: n.Name, Element: "mesh or components"}
	}

	if alts := child(n, elemAlternatives); alts != nil {
		for _, e := range children(alts, elemAlternative) {
			ar := readAttrs(e)
			a := Alternative{
				ObjectID:        ar.ID(attrAltObjectID),
				UUID:            ar.OptUUID(attrUUID),
				Path:            ar.OptString(attrAltPath),
				ModelResolution: optional(ar, attrModelResolution, ParseModelResolution),
			}
			if err := ar.Err(); err != nil {
				return nil, err
			}
			o.Alternatives = append(o.Alternatives, a)
		}
	}
	return o, nil
}

func decodeComponents(n *xmltree.Node) ([]Component, error) {
	var out []Component
	for _, e := range children(n, elemComponent) {
		r := readAttrs(e)
		c := Component{
			ObjectID:  r.ID(attrObjectID),
			Transform: r.OptMatrix(attrTransform),
			Path:      r.OptString(attrProdPath),
			UUID:      r.OptUUID(attrUUID),
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (o *Object) encode(parent *xmltree.Node, st encodeState) {
	n := parent.AddElement(elemObject.Space, elemObject.Local)
	w := writeAttrs(n)
	w.ID(attrID, o.ID)
	if o.Type != nil {
		w.String(attrType, o.Type.String())
	}
	w.OptString(attrThumbnail, o.Thumbnail)
	w.OptString(attrPartNumber, o.PartNumber)
	w.OptString(attrName, o.Name)
	w.OptID(attrPID, o.PropertyGroupID)
	w.OptIndex(attrPIndex, o.PropertyIndex)
	w.OptUUID(attrUUID, st.uuid(o.UUID))

	encodeMetadataGroup(n, o.Metadata)

	if o.Mesh != nil {
		o.Mesh.encode(n)
	} else {
		comps := n.AddElement(elemComponents.Space, elemComponents.Local)
		for _, c := range o.Components {
			cw := writeAttrs(comps.AddElement(elemComponent.Space, elemComponent.Local))
			cw.ID(attrObjectID, c.ObjectID)
			cw.OptMatrix(attrTransform, c.Transform)
			cw.OptString(attrProdPath, c.Path)
			cw.OptUUID(attrUUID, c.UUID)
		}
	}

	if len(o.Alternatives) > 0 {
		alts := n.AddElement(elemAlternatives.Space, elemAlternatives.Local)
		for _, a := range o.Alternatives {
			aw := writeAttrs(alts.AddElement(elemAlternative.Space, elemAlternative.Local))
			aw.ID(attrAltObjectID, a.ObjectID)
			aw.OptUUID(attrUUID, a.UUID)
			aw.OptString(attrAltPath, a.Path)
			if a.ModelResolution != nil {
				aw.String(attrModelResolution, a.ModelResolution.String())
			}
		}
	}
}
