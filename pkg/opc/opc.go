// Package opc reads and writes the ZIP-based Open Packaging container that
// holds 3MF model parts, textures and thumbnails.
package opc

import (
	"encoding/xml"
	"path"
	"strings"
)

// Relationship types.
const (
	RelTypeModel       = "http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"
	RelTypeTexture     = "http://schemas.microsoft.com/3dmanufacturing/2013/01/3dtexture"
	RelTypeThumbnail   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail"
	RelTypePrintTicket = "http://schemas.microsoft.com/3dmanufacturing/2013/01/printticket"
)

// Content types.
const (
	ContentTypeModel         = "application/vnd.ms-package.3dmanufacturing-3dmodel+xml"
	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeTexture       = "application/vnd.ms-package.3dmanufacturing-3dmodeltexture"
	ContentTypePNG           = "image/png"
	ContentTypeJPEG          = "image/jpeg"
)

// Well-known part names.
const (
	RootModelPart    = "/3D/3dmodel.model"
	ContentTypesPart = "/[Content_Types].xml"
	RootRelsPart     = "/_rels/.rels"
)

const (
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship links a source part to a target part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type relationshipsDoc struct {
	XMLName       xml.Name
	Relationships []Relationship `xml:"Relationship"`
}

type contentTypesDoc struct {
	XMLName   xml.Name
	Defaults  []contentTypeDefault  `xml:"Default"`
	Overrides []contentTypeOverride `xml:"Override"`
}

type contentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// NormalizePath turns a part name or zip entry name into canonical form:
// forward slashes with a single leading slash.
func NormalizePath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return path.Clean(name)
}

// PartKey returns the form under which part names compare equal. OPC part
// names are case-insensitive.
func PartKey(name string) string {
	return strings.ToLower(NormalizePath(name))
}

// RelsPartFor returns the relationships part describing source. The
// package itself is source "/".
func RelsPartFor(source string) string {
	source = NormalizePath(source)
	if source == "/" {
		return RootRelsPart
	}
	dir, file := path.Split(source)
	return path.Join(dir, "_rels", file+".rels")
}

// SourceFor is the inverse of RelsPartFor. It reports false for parts
// that are not relationships parts.
func SourceFor(relsPart string) (string, bool) {
	relsPart = NormalizePath(relsPart)
	dir, file := path.Split(relsPart)
	if path.Base(dir) != "_rels" || !strings.HasSuffix(file, ".rels") {
		return "", false
	}
	source := path.Join(path.Dir(path.Clean(dir)), strings.TrimSuffix(file, ".rels"))
	return NormalizePath(source), true
}

// ResolveTarget resolves a relationship target against its source part.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return NormalizePath(target)
	}
	base := "/"
	if s := NormalizePath(source); s != "/" {
		base = path.Dir(s)
	}
	return NormalizePath(path.Join(base, target))
}

// ContentTypes maps parts to MIME types.
type ContentTypes struct {
	Defaults  map[string]string // lower-case extension -> type
	Overrides map[string]string // normalized part name -> type
}

func newContentTypes() *ContentTypes {
	return &ContentTypes{Defaults: map[string]string{}, Overrides: map[string]string{}}
}

// Lookup returns the content type of a part.
func (c *ContentTypes) Lookup(part string) string {
	part = NormalizePath(part)
	for name, ct := range c.Overrides {
		if strings.EqualFold(name, part) {
			return ct
		}
	}
	return c.Defaults[extension(part)]
}

// add registers ct as the extension default when possible and as a part
// override otherwise.
func (c *ContentTypes) add(part, ct string) {
	part = NormalizePath(part)
	ext := extension(part)
	switch existing, ok := c.Defaults[ext]; {
	case ext != "" && !ok:
		c.Defaults[ext] = ct
	case ok && existing == ct:
	default:
		c.Overrides[part] = ct
	}
}

func extension(part string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(part), "."))
}
