package threemf

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

func canonicalSpace(name Name) string {
	if name.Space == "" {
		return NamespaceCore
	}
	return name.Space
}

// lookupAttr finds an attribute by its logical identity. 3MF lets an
// attribute whose namespace equals its element's namespace appear
// unprefixed. A core attribute not found that way is missing; it is never
// matched against a prefixed attribute.
func lookupAttr(n *xmltree.Node, name Name) (string, bool) {
	space := canonicalSpace(name)
	if space == n.Name.Space {
		if v, ok := n.Attr("", name.Local); ok {
			return v, true
		}
	}
	if space == NamespaceCore {
		return "", false
	}
	return n.Attr(space, name.Local)
}

// setAttr writes an attribute, collapsing to the unprefixed form when the
// attribute namespace equals the element namespace.
func setAttr(n *xmltree.Node, name Name, value string) {
	space := canonicalSpace(name)
	if space == n.Name.Space {
		n.SetAttr("", name.Local, value)
		return
	}
	n.SetAttr(space, name.Local, value)
}

func child(n *xmltree.Node, name Name) *xmltree.Node {
	return n.Child(name.Space, name.Local)
}

func children(n *xmltree.Node, name Name) []*xmltree.Node {
	return n.ChildrenNamed(name.Space, name.Local)
}

func requireChild(n *xmltree.Node, name Name) (*xmltree.Node, error) {
	c := child(n, name)
	if c == nil {
		return nil, &ElementError{Parent: n.Name, Element: name.Local}
	}
	return c, nil
}

// attrReader decodes attributes of one element. The first failure sticks
// and later reads become no-ops, so decoders check err once at the end.
type attrReader struct {
	node *xmltree.Node
	err  error
}

func readAttrs(n *xmltree.Node) *attrReader {
	return &attrReader{node: n}
}

func (r *attrReader) raw(name Name, required bool) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := lookupAttr(r.node, name)
	if !ok && required {
		r.err = &AttributeError{Element: r.node.Name, Attribute: name, Err: ErrMissingAttribute}
	}
	return v, ok
}

func (r *attrReader) fail(name Name, raw string, err error) {
	r.err = &AttributeError{Element: r.node.Name, Attribute: name, Raw: raw, Err: err}
}

// required decodes a mandatory attribute; a missing or malformed value is
// an error.
func required[T any](r *attrReader, name Name, parse func(string) (T, error)) T {
	var zero T
	raw, ok := r.raw(name, true)
	if !ok {
		return zero
	}
	v, err := parse(raw)
	if err != nil {
		r.fail(name, raw, err)
		return zero
	}
	return v
}

// optional decodes an attribute that may be omitted. A malformed value is
// treated as absent.
func optional[T any](r *attrReader, name Name, parse func(string) (T, error)) *T {
	raw, ok := r.raw(name, false)
	if !ok {
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (r *attrReader) String(name Name) string {
	return required(r, name, func(s string) (string, error) { return s, nil })
}

func (r *attrReader) OptString(name Name) string {
	v, _ := r.raw(name, false)
	return v
}

func (r *attrReader) ID(name Name) ResourceID { return required(r, name, parseResourceID) }

func (r *attrReader) OptID(name Name) *ResourceID { return optional(r, name, parseResourceID) }

func (r *attrReader) Index(name Name) ResourceIndex { return required(r, name, parseResourceIndex) }

func (r *attrReader) OptIndex(name Name) *ResourceIndex {
	return optional(r, name, parseResourceIndex)
}

func (r *attrReader) Number(name Name) float64 { return required(r, name, parseNumber) }

func (r *attrReader) OptNumber(name Name) *float64 { return optional(r, name, parseNumber) }

func (r *attrReader) Color(name Name) Color { return required(r, name, ParseColor) }

func (r *attrReader) OptColor(name Name) *Color { return optional(r, name, ParseColor) }

func (r *attrReader) OptMatrix(name Name) *Matrix3D { return optional(r, name, ParseMatrix3D) }

func (r *attrReader) OptBool(name Name) *bool { return optional(r, name, parseBool) }

func (r *attrReader) OptUUID(name Name) *uuid.UUID { return optional(r, name, parseUUID) }

func (r *attrReader) Err() error { return r.err }

// attrWriter mirrors attrReader for encoding; nil optionals are skipped.
type attrWriter struct {
	node *xmltree.Node
}

func writeAttrs(n *xmltree.Node) attrWriter {
	return attrWriter{node: n}
}

func (w attrWriter) String(name Name, v string) {
	setAttr(w.node, name, v)
}

func (w attrWriter) OptString(name Name, v string) {
	if v != "" {
		setAttr(w.node, name, v)
	}
}

func (w attrWriter) Int(name Name, v int) {
	setAttr(w.node, name, strconv.Itoa(v))
}

func (w attrWriter) ID(name Name, v ResourceID) { w.Int(name, int(v)) }

func (w attrWriter) OptID(name Name, v *ResourceID) {
	if v != nil {
		w.Int(name, int(*v))
	}
}

func (w attrWriter) Index(name Name, v ResourceIndex) { w.Int(name, int(v)) }

func (w attrWriter) OptIndex(name Name, v *ResourceIndex) {
	if v != nil {
		w.Int(name, int(*v))
	}
}

func (w attrWriter) Number(name Name, v float64) {
	setAttr(w.node, name, formatNumber(v))
}

func (w attrWriter) OptNumber(name Name, v *float64) {
	if v != nil {
		w.Number(name, *v)
	}
}

func (w attrWriter) OptColor(name Name, v *Color) {
	if v != nil {
		setAttr(w.node, name, v.String())
	}
}

func (w attrWriter) OptMatrix(name Name, v *Matrix3D) {
	if v != nil {
		setAttr(w.node, name, v.String())
	}
}

func (w attrWriter) OptBool(name Name, v *bool) {
	if v != nil {
		setAttr(w.node, name, formatBool(*v))
	}
}

func (w attrWriter) OptUUID(name Name, v *uuid.UUID) {
	if v != nil {
		setAttr(w.node, name, v.String())
	}
}
