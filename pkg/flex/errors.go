package flex

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no node carries the requested ID.
	ErrNotFound = errors.New("node not found")
	// ErrInvalidChildType indicates a parent or slot does not accept a node type.
	ErrInvalidChildType = errors.New("invalid child type")
	// ErrMalformedDocument indicates a tree violates the document structure.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrRootNode indicates an edit that would remove the document root.
	ErrRootNode = errors.New("document root cannot be removed")
	// ErrInvalidProperty indicates a property value the node type cannot hold.
	ErrInvalidProperty = errors.New("invalid property")
)

const maxFragment = 160

// MalformedError describes why a tree was rejected and, where feasible, the
// JSON fragment at fault.
type MalformedError struct {
	Reason   string
	Fragment string
}

func (e *MalformedError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedDocument, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedDocument, e.Reason, e.Fragment)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedDocument
}

// Malformed builds a *MalformedError, trimming the fragment to a loggable size.
func Malformed(reason string, fragment []byte) error {
	frag := string(fragment)
	if len(frag) > maxFragment {
		frag = frag[:maxFragment] + "..."
	}
	return &MalformedError{Reason: reason, Fragment: frag}
}
