package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/Faultbox/threemf/pkg/encoding"
)

// ErrNoRoot is returned when the input has no root element.
var ErrNoRoot = errors.New("xml document has no root element")

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = encoding.CharsetReader

	var stack []*Node
	var root *Node

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("unexpected element %s after document end", t.Name.Local)
			}
			elem := &Node{Name: t.Name}
			convertAttrs(elem, t.Attr)
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, elem)
			} else {
				root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isIgnorableOutsideRoot(string(t)) {
					return nil, fmt.Errorf("unexpected character data outside root element")
				}
				continue
			}
			stack[len(stack)-1].Text += string(t)
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

func convertAttrs(elem *Node, attrs []xml.Attr) {
	elem.Attrs = make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			elem.namespaces = append(elem.namespaces, Namespace{Prefix: a.Name.Local, URI: a.Value})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			elem.namespaces = append(elem.namespaces, Namespace{URI: a.Value})
		default:
			elem.Attrs = append(elem.Attrs, Attr{Name: a.Name, Value: a.Value})
		}
	}
}

func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
