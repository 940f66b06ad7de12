// Package editor applies structural edits to editor trees. Every operation
// returns a new root; only the ancestors of the touched node are rebuilt and
// every other subtree is shared with the input. On error the input root is
// returned as it was.
package editor

import (
	"encoding/json"
	"fmt"

	"flex-designer-be/pkg/flex"
	"flex-designer-be/pkg/idgen"
)

type Editor struct {
	newID idgen.Func
}

// New returns an Editor assigning IDs from newID, or from idgen.NewID when nil.
func New(newID idgen.Func) *Editor {
	if newID == nil {
		newID = idgen.NewID
	}
	return &Editor{newID: newID}
}

// Locate finds the node carrying id, searching depth-first in traversal order.
func Locate(root flex.Node, id string) (flex.Node, bool) {
	var hit flex.Node
	flex.Walk(root, func(n flex.Node) bool {
		if n.NodeID() == id {
			hit = n
			return false
		}
		return true
	})
	return hit, hit != nil
}

// Add gives tmpl fresh IDs throughout and installs it under the node
// parentID, in slot or in the parent's only slot when slot is empty. Ordered
// slots append; single slots replace their occupant.
//
// An empty parentID replaces the document: tmpl must then be a bubble or a
// carousel, and it becomes the returned root.
//
// The added node is returned alongside the new root.
func (e *Editor) Add(root flex.Container, parentID string, tmpl flex.Node, slot flex.Slot) (flex.Container, flex.Node, error) {
	if tmpl == nil {
		return root, nil, fmt.Errorf("%w: no node to add", flex.ErrInvalidChildType)
	}
	if err := flex.Validate(tmpl); err != nil {
		return root, nil, err
	}

	if parentID == "" {
		if !tmpl.NodeType().IsContainer() {
			return root, nil, fmt.Errorf("%w: only a bubble or carousel can start a document, got %s", flex.ErrInvalidChildType, tmpl.NodeType())
		}
		c := flex.Reidentify(tmpl, e.newID).(flex.Container)
		return c, c, nil
	}

	parent, ok := Locate(root, parentID)
	if !ok {
		return root, nil, fmt.Errorf("%w: parent %q", flex.ErrNotFound, parentID)
	}
	if slot == "" {
		def, ok := flex.DefaultSlot(parent.NodeType())
		if !ok {
			if len(flex.Slots(parent.NodeType())) == 0 {
				return root, nil, fmt.Errorf("%w: %s holds no children", flex.ErrInvalidChildType, parent.NodeType())
			}
			return root, nil, fmt.Errorf("%w: %s needs a section (one of %v)", flex.ErrInvalidChildType, parent.NodeType(), flex.Slots(parent.NodeType()))
		}
		slot = def
	}
	if !flex.Accepts(parent.NodeType(), slot, tmpl.NodeType()) {
		return root, nil, fmt.Errorf("%w: %s.%s accepts %v, got %s",
			flex.ErrInvalidChildType, parent.NodeType(), slot, flex.AcceptedTypes(parent.NodeType(), slot), tmpl.NodeType())
	}

	node := flex.Reidentify(tmpl, e.newID)
	out, err := e.replace(root, parentID, func(p flex.Node) (flex.Node, error) {
		return flex.Attach(p, slot, node)
	})
	if err != nil {
		return root, nil, err
	}
	return out, node, nil
}

// UpdateProps merges props over the fields of the node id. Keys naming the
// node's ID, its type or one of its structural slots are ignored; a nil value
// clears the field. A value the node type cannot hold fails with
// flex.ErrInvalidProperty.
func (e *Editor) UpdateProps(root flex.Container, id string, props map[string]any) (flex.Container, error) {
	return e.replace(root, id, func(n flex.Node) (flex.Node, error) {
		return mergeProps(n, props)
	})
}

// Delete removes the node id from its parent. The root itself cannot be
// deleted; replace the document instead.
func (e *Editor) Delete(root flex.Container, id string) (flex.Container, error) {
	if root.NodeID() == id {
		return root, fmt.Errorf("%w: %q", flex.ErrRootNode, id)
	}
	return e.replace(root, id, func(flex.Node) (flex.Node, error) {
		return nil, nil
	})
}

// replace swaps the node id for fn's result and rebuilds its ancestors.
func (e *Editor) replace(root flex.Container, id string, fn func(flex.Node) (flex.Node, error)) (flex.Container, error) {
	out, found, err := rebuild(root, id, fn)
	if err != nil {
		return root, err
	}
	if !found {
		return root, fmt.Errorf("%w: %q", flex.ErrNotFound, id)
	}
	c, ok := out.(flex.Container)
	if !ok {
		return root, fmt.Errorf("%w: document root must stay a bubble or carousel", flex.ErrInvalidChildType)
	}
	return c, nil
}

// rebuild walks from n toward the node id. Ancestors are copied only when a
// child actually changed; siblings are returned as they were.
func rebuild(n flex.Node, id string, fn func(flex.Node) (flex.Node, error)) (flex.Node, bool, error) {
	if n.NodeID() == id {
		out, err := fn(n)
		return out, true, err
	}
	var (
		found bool
		ferr  error
	)
	out, err := flex.MapChildren(n, func(c flex.Child) flex.Node {
		if found {
			return c.Node
		}
		r, hit, err := rebuild(c.Node, id, fn)
		if !hit {
			return c.Node
		}
		found = true
		if err != nil {
			ferr = err
			return c.Node
		}
		return r
	})
	if ferr != nil {
		return n, true, ferr
	}
	if err != nil {
		return n, found, err
	}
	return out, found, nil
}

func mergeProps(n flex.Node, props map[string]any) (flex.Node, error) {
	data, err := json.Marshal(flex.WithoutSlots(n))
	if err != nil {
		return n, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return n, err
	}

	protected := map[string]bool{"id": true, "type": true}
	for _, s := range flex.Slots(n.NodeType()) {
		protected[string(s)] = true
	}
	for k, v := range props {
		if protected[k] {
			continue
		}
		if v == nil {
			delete(fields, k)
			continue
		}
		if err := checkStrict(n.NodeType(), k, v); err != nil {
			return n, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return n, fmt.Errorf("%w: %s: %v", flex.ErrInvalidProperty, k, err)
		}
		fields[k] = raw
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return n, err
	}
	out, err := flex.DecodeNode(merged)
	if err != nil {
		return n, fmt.Errorf("%w: %v", flex.ErrInvalidProperty, err)
	}
	return flex.WithSlotsFrom(out, n)
}

// strictFields names fields the decoder repairs on hydrate but an edit must
// supply with the right JSON type.
var strictFields = map[flex.Type]map[string]bool{
	flex.TypeText: {"text": true},
}

func checkStrict(t flex.Type, key string, v any) error {
	if !strictFields[t][key] {
		return nil
	}
	switch x := v.(type) {
	case string:
		return nil
	case json.RawMessage:
		var s string
		if json.Unmarshal(x, &s) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be a string, got %T", flex.ErrInvalidProperty, key, v)
}
