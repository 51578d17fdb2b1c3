package loader

import (
	"fmt"
	"strings"

	"github.com/Faultbox/threemf/pkg/opc"
	"github.com/Faultbox/threemf/pkg/threemf"
)

// ModelNotFoundError reports a referenced model part that is absent from
// the package.
type ModelNotFoundError struct {
	Path string
}

func (e *ModelNotFoundError) Error() string {
	return "model not found at path " + e.Path
}

func (e *ModelNotFoundError) Unwrap() error {
	return opc.ErrPartNotFound
}

// ObjectNotFoundError reports a reference to an object id that the
// addressed model part does not define. Path is empty for the root part.
type ObjectNotFoundError struct {
	Path string
	ID   threemf.ResourceID
}

func (e *ObjectNotFoundError) Error() string {
	part := e.Path
	if part == "" {
		part = "root"
	}
	return fmt.Sprintf("object %d not found in %s model", e.ID, part)
}

// CyclicReferenceError reports a component chain that reaches an object
// already on the chain. Chain ends with the repeated object.
type CyclicReferenceError struct {
	Chain []ObjectRef
}

func (e *CyclicReferenceError) Error() string {
	links := make([]string, len(e.Chain))
	for i, ref := range e.Chain {
		links[i] = ref.String()
	}
	return "cyclic component reference: " + strings.Join(links, " -> ")
}
