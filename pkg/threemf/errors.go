package threemf

import (
	"errors"
	"fmt"
)

// Decode errors.
var (
	ErrMissingAttribute = errors.New("missing attribute")
	ErrMissingElement   = errors.New("missing element")
	ErrNotAModel        = errors.New("root element is not a 3MF model")
)

// ValueError reports a string that could not be converted to a typed value.
type ValueError struct {
	Kind string // integer, number, color, transform, ...
	Raw  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("malformed %s %q", e.Kind, e.Raw)
}

// AttributeError identifies the element and attribute a decode failure
// happened on. Err is ErrMissingAttribute or a *ValueError.
type AttributeError struct {
	Element   Name
	Attribute Name
	Raw       string
	Err       error
}

func (e *AttributeError) Error() string {
	if errors.Is(e.Err, ErrMissingAttribute) {
		return fmt.Sprintf("%s: missing attribute %s", e.Element.Local, attrLabel(e.Attribute))
	}
	return fmt.Sprintf("%s: attribute %s: %v", e.Element.Local, attrLabel(e.Attribute), e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

// ElementError reports a required child element that is absent.
type ElementError struct {
	Parent  Name
	Element string
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s: missing element %s", e.Parent.Local, e.Element)
}

func (e *ElementError) Unwrap() error {
	return ErrMissingElement
}

func attrLabel(n Name) string {
	if n.Space == "" || n.Space == NamespaceCore {
		return n.Local
	}
	if prefix := StandardPrefix(n.Space); prefix != "" {
		return prefix + ":" + n.Local
	}
	return "{" + n.Space + "}" + n.Local
}
