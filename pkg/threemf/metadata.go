package threemf

import (
	"strings"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Well-known metadata names.
const (
	MetaTitle            = "Title"
	MetaDesigner         = "Designer"
	MetaDescription      = "Description"
	MetaCopyright        = "Copyright"
	MetaLicenseTerms     = "LicenseTerms"
	MetaRating           = "Rating"
	MetaCreationDate     = "CreationDate"
	MetaModificationDate = "ModificationDate"
	MetaApplication      = "Application"
)

var wellKnownMetadata = map[string]bool{
	MetaTitle:            true,
	MetaDesigner:         true,
	MetaDescription:      true,
	MetaCopyright:        true,
	MetaLicenseTerms:     true,
	MetaRating:           true,
	MetaCreationDate:     true,
	MetaModificationDate: true,
	MetaApplication:      true,
}

// Metadata is a named text value attached to a model, object or item.
type Metadata struct {
	Name     string
	Value    string
	Preserve *bool
	Type     string
}

// IsWellKnown reports whether the name is one the core format defines.
func (m Metadata) IsWellKnown() bool {
	return wellKnownMetadata[m.Name]
}

// MetadataValue returns the value of the first entry with the given name.
func MetadataValue(entries []Metadata, name string) (string, bool) {
	for _, m := range entries {
		if m.Name == name {
			return m.Value, true
		}
	}
	return "", false
}

func decodeMetadata(n *xmltree.Node) (Metadata, error) {
	r := readAttrs(n)
	m := Metadata{
		Name:     r.String(attrName),
		Preserve: r.OptBool(attrPreserve),
		Type:     r.OptString(attrType),
		Value:    strings.TrimSpace(n.Text),
	}
	return m, r.Err()
}

func decodeMetadataList(parent *xmltree.Node) ([]Metadata, error) {
	var out []Metadata
	for _, e := range children(parent, elemMetadata) {
		m, err := decodeMetadata(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeMetadataGroup(parent *xmltree.Node) ([]Metadata, error) {
	group := child(parent, elemMetadataGroup)
	if group == nil {
		return nil, nil
	}
	return decodeMetadataList(group)
}

func encodeMetadataList(parent *xmltree.Node, entries []Metadata) {
	for _, m := range entries {
		n := parent.AddElement(elemMetadata.Space, elemMetadata.Local)
		w := writeAttrs(n)
		w.String(attrName, m.Name)
		w.OptBool(attrPreserve, m.Preserve)
		w.OptString(attrType, m.Type)
		n.Text = m.Value
	}
}

func encodeMetadataGroup(parent *xmltree.Node, entries []Metadata) {
	if len(entries) == 0 {
		return
	}
	encodeMetadataList(parent.AddElement(elemMetadataGroup.Space, elemMetadataGroup.Local), entries)
}
