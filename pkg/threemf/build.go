package threemf

import (
	"github.com/google/uuid"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Build lists the objects to manufacture.
type Build struct {
	UUID  *uuid.UUID
	Items []Item
}

// Item places one object into the build.
type Item struct {
	ObjectID   ResourceID
	Transform  *Matrix3D
	PartNumber string
	Path       string // p:path, the model part holding the object
	UUID       *uuid.UUID
	Printable  *bool // PrusaSlicer extension
	Metadata   []Metadata

	// CustomAttributes keeps attributes this package does not interpret,
	// in document order.
	CustomAttributes []xmltree.Attr
}

var knownItemAttrs = map[Name]bool{
	attrObjectID:   true,
	attrTransform:  true,
	attrPartNumber: true,
	attrProdPath:   true,
	attrUUID:       true,
	attrPrintable:  true,
}

func decodeBuild(n *xmltree.Node) (Build, error) {
	r := readAttrs(n)
	b := Build{UUID: r.OptUUID(attrUUID)}
	if err := r.Err(); err != nil {
		return Build{}, err
	}
	for _, e := range children(n, elemItem) {
		item, err := decodeItem(e)
		if err != nil {
			return Build{}, err
		}
		b.Items = append(b.Items, item)
	}
	return b, nil
}

func decodeItem(n *xmltree.Node) (Item, error) {
	r := readAttrs(n)
	item := Item{
		ObjectID:   r.ID(attrObjectID),
		Transform:  r.OptMatrix(attrTransform),
		PartNumber: r.OptString(attrPartNumber),
		Path:       r.OptString(attrProdPath),
		UUID:       r.OptUUID(attrUUID),
		Printable:  r.OptBool(attrPrintable),
	}
	if err := r.Err(); err != nil {
		return Item{}, err
	}

	metadata, err := decodeMetadataGroup(n)
	if err != nil {
		return Item{}, err
	}
	item.Metadata = metadata

	for _, a := range n.Attrs {
		name := Name{Space: canonicalSpace(a.Name), Local: a.Name.Local}
		if !knownItemAttrs[name] {
			item.CustomAttributes = append(item.CustomAttributes, xmltree.Attr{Name: name, Value: a.Value})
		}
	}
	return item, nil
}

func (b *Build) encode(parent *xmltree.Node, st encodeState) {
	n := parent.AddElement(elemBuild.Space, elemBuild.Local)
	writeAttrs(n).OptUUID(attrUUID, st.uuid(b.UUID))
	for i := range b.Items {
		b.Items[i].encode(n, st)
	}
}

func (it *Item) encode(parent *xmltree.Node, st encodeState) {
	n := parent.AddElement(elemItem.Space, elemItem.Local)
	w := writeAttrs(n)
	w.ID(attrObjectID, it.ObjectID)
	w.OptMatrix(attrTransform, it.Transform)
	w.OptString(attrPartNumber, it.PartNumber)
	w.OptString(attrProdPath, it.Path)
	w.OptUUID(attrUUID, st.uuid(it.UUID))
	w.OptBool(attrPrintable, it.Printable)
	for _, a := range it.CustomAttributes {
		setAttr(n, a.Name, a.Value)
	}
	encodeMetadataGroup(n, it.Metadata)
}

// encodeState carries model-wide settings into element encoders.
type encodeState struct {
	assignUUIDs bool // production extension required
}

func (st encodeState) uuid(id *uuid.UUID) *uuid.UUID {
	if id != nil || !st.assignUUIDs {
		return id
	}
	fresh := uuid.New()
	return &fresh
}
