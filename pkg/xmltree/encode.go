package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// EncodeOptions controls document output.
type EncodeOptions struct {
	// Indent, when non-empty, pretty-prints with this indent per level.
	Indent string
	// OmitDeclaration drops the <?xml ...?> prolog.
	OmitDeclaration bool
}

// Encode writes root as a complete XML document. Namespaced names are
// written with the prefixes declared on the element or its ancestors;
// undeclared namespaces get a generated prefix on first use.
func Encode(w io.Writer, root *Node, opts EncodeOptions) error {
	enc := xml.NewEncoder(w)
	if opts.Indent != "" {
		enc.Indent("", opts.Indent)
	}
	if !opts.OmitDeclaration {
		decl := xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)}
		if err := enc.EncodeToken(decl); err != nil {
			return err
		}
	}
	e := &encoder{enc: enc}
	if err := e.element(root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	if opts.Indent != "" {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

type encoder struct {
	enc       *xml.Encoder
	scopes    [][]Namespace
	generated int
}

func (e *encoder) lookupPrefix(uri string) (string, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		for _, ns := range e.scopes[i] {
			if ns.URI == uri {
				// A prefix is only usable if no inner scope rebinds it.
				if bound, _ := e.lookupURI(ns.Prefix); bound == uri {
					return ns.Prefix, true
				}
			}
		}
	}
	return "", false
}

func (e *encoder) lookupURI(prefix string) (string, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		for _, ns := range e.scopes[i] {
			if ns.Prefix == prefix {
				return ns.URI, true
			}
		}
	}
	return "", false
}

func (e *encoder) element(n *Node) error {
	decls := append([]Namespace(nil), n.namespaces...)
	e.scopes = append(e.scopes, decls)
	defer func() { e.scopes = e.scopes[:len(e.scopes)-1] }()

	qualify := func(uri string, attr bool) string {
		if uri == XMLNamespace {
			return "xml"
		}
		if prefix, ok := e.lookupPrefix(uri); ok && (prefix != "" || !attr) {
			return prefix
		}
		if attr {
			// Attributes cannot use the default namespace; find or make a prefixed binding.
			for i := len(e.scopes) - 1; i >= 0; i-- {
				for _, ns := range e.scopes[i] {
					if ns.URI == uri && ns.Prefix != "" {
						return ns.Prefix
					}
				}
			}
		}
		e.generated++
		prefix := fmt.Sprintf("ns%d", e.generated)
		e.scopes[len(e.scopes)-1] = append(e.scopes[len(e.scopes)-1], Namespace{Prefix: prefix, URI: uri})
		return prefix
	}

	var elementName string
	if n.Name.Space == "" {
		elementName = n.Name.Local
		if def, ok := e.lookupURI(""); ok && def != "" {
			e.scopes[len(e.scopes)-1] = append(e.scopes[len(e.scopes)-1], Namespace{})
		}
	} else {
		elementName = joinName(qualify(n.Name.Space, false), n.Name.Local)
	}

	attrs := make([]xml.Attr, 0, len(n.Attrs))
	for _, a := range n.Attrs {
		local := a.Name.Local
		if a.Name.Space != "" {
			local = joinName(qualify(a.Name.Space, true), a.Name.Local)
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: local}, Value: a.Value})
	}

	// Declarations go first so the output reads naturally.
	scope := e.scopes[len(e.scopes)-1]
	start := xml.StartElement{Name: xml.Name{Local: elementName}}
	for _, ns := range scope {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: xmlnsName(ns.Prefix)}, Value: ns.URI})
	}
	start.Attr = append(start.Attr, attrs...)

	if err := e.enc.EncodeToken(start); err != nil {
		return err
	}
	if strings.TrimSpace(n.Text) != "" {
		if err := e.enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := e.element(c); err != nil {
			return err
		}
	}
	return e.enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func joinName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// xmlnsName is the attribute name declaring prefix; the empty prefix
// declares the default namespace.
func xmlnsName(prefix string) string {
	if prefix == "" {
		return "xmlns"
	}
	return "xmlns:" + prefix
}
