// Package xmltree provides a small mutable XML element tree with resolved
// namespaces. It knows nothing about 3MF; namespace quirks of the model
// format live with the format code.
package xmltree

import (
	"encoding/xml"
)

// Common XML namespaces.
const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// Name is a namespace-resolved XML name. Space holds the namespace URI,
// never a prefix.
type Name = xml.Name

// Attr is a single attribute with a resolved name.
type Attr struct {
	Name  Name
	Value string
}

// Namespace is a namespace declaration. An empty Prefix declares the
// default namespace.
type Namespace struct {
	Prefix string
	URI    string
}

// Node is an element in the tree.
type Node struct {
	Name     Name
	Attrs    []Attr
	Children []*Node
	Text     string

	namespaces []Namespace
}

// NewElement creates an element with the given namespace URI and local name.
func NewElement(space, local string) *Node {
	return &Node{Name: Name{Space: space, Local: local}}
}

// Is reports whether the element has exactly this namespace and local name.
func (n *Node) Is(space, local string) bool {
	return n.Name.Space == space && n.Name.Local == local
}

// Attr returns the value of the attribute with the exact resolved name.
func (n *Node) Attr(space, local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing one with the same name.
func (n *Node) SetAttr(space, local, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Space == space && n.Attrs[i].Name.Local == local {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: Name{Space: space, Local: local}, Value: value})
}

// RemoveAttr deletes the attribute if present.
func (n *Node) RemoveAttr(space, local string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Space == space && n.Attrs[i].Name.Local == local {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// AddChild appends child and returns it.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// AddElement creates a child element, appends it and returns it.
func (n *Node) AddElement(space, local string) *Node {
	return n.AddChild(NewElement(space, local))
}

// Child returns the first child element with the exact name, or nil.
func (n *Node) Child(space, local string) *Node {
	for _, c := range n.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all child elements with the exact name, in order.
func (n *Node) ChildrenNamed(space, local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Is(space, local) {
			out = append(out, c)
		}
	}
	return out
}

// Declare adds a namespace declaration to this element. Redeclaring a
// prefix replaces its URI.
func (n *Node) Declare(prefix, uri string) {
	for i := range n.namespaces {
		if n.namespaces[i].Prefix == prefix {
			n.namespaces[i].URI = uri
			return
		}
	}
	n.namespaces = append(n.namespaces, Namespace{Prefix: prefix, URI: uri})
}

// Namespaces returns the declarations made on this element.
func (n *Node) Namespaces() []Namespace {
	return append([]Namespace(nil), n.namespaces...)
}

// PrefixFor returns the prefix declared on this element for uri.
func (n *Node) PrefixFor(uri string) (string, bool) {
	for _, ns := range n.namespaces {
		if ns.URI == uri {
			return ns.Prefix, true
		}
	}
	return "", false
}

// URIFor returns the URI declared on this element for prefix.
func (n *Node) URIFor(prefix string) (string, bool) {
	for _, ns := range n.namespaces {
		if ns.Prefix == prefix {
			return ns.URI, true
		}
	}
	return "", false
}

// Walk calls fn for n and every descendant element, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// NamespacesInUse returns every namespace URI used by an element or
// attribute name anywhere in the subtree.
func (n *Node) NamespacesInUse() map[string]bool {
	used := make(map[string]bool)
	n.Walk(func(e *Node) {
		if e.Name.Space != "" {
			used[e.Name.Space] = true
		}
		for _, a := range e.Attrs {
			if a.Name.Space != "" {
				used[a.Name.Space] = true
			}
		}
	})
	return used
}
