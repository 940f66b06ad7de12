package flex

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Child is one structural occupant of a node.
type Child struct {
	Slot  Slot
	Index int
	Node  Node
}

// Children returns the occupants of n in traversal order: box and carousel
// contents in sequence, bubble sections header, hero, body, footer, then a
// video's alternative content.
func Children(n Node) []Child {
	var out []Child
	switch v := n.(type) {
	case *Box:
		for i, c := range v.Contents {
			out = append(out, Child{Slot: SlotContents, Index: i, Node: c})
		}
	case *Bubble:
		if v.Header != nil {
			out = append(out, Child{Slot: SlotHeader, Node: v.Header})
		}
		if v.Hero != nil {
			out = append(out, Child{Slot: SlotHero, Node: v.Hero})
		}
		if v.Body != nil {
			out = append(out, Child{Slot: SlotBody, Node: v.Body})
		}
		if v.Footer != nil {
			out = append(out, Child{Slot: SlotFooter, Node: v.Footer})
		}
	case *Carousel:
		for i, b := range v.Contents {
			out = append(out, Child{Slot: SlotContents, Index: i, Node: b})
		}
	case *Video:
		if v.AltContent != nil {
			out = append(out, Child{Slot: SlotAltContent, Node: v.AltContent})
		}
	}
	return out
}

// Walk visits n and its descendants depth-first in traversal order. It stops
// as soon as fn returns false and reports whether the walk completed.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range Children(n) {
		if !Walk(c.Node, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}

// MapChildren rebuilds n from fn applied to each occupant. A nil result
// removes the occupant. When every result is the node it was given, n itself
// is returned; otherwise a shallow copy carrying the new occupants.
func MapChildren(n Node, fn func(Child) Node) (Node, error) {
	switch v := n.(type) {
	case *Box:
		out := make([]Component, 0, len(v.Contents))
		changed := false
		for i, c := range v.Contents {
			r := fn(Child{Slot: SlotContents, Index: i, Node: c})
			if isNil(r) {
				changed = true
				continue
			}
			comp, ok := r.(Component)
			if !ok {
				return n, childTypeError(TypeBox, SlotContents, r.NodeType())
			}
			if r != Node(c) {
				changed = true
			}
			out = append(out, comp)
		}
		if !changed {
			return n, nil
		}
		cp := *v
		cp.Contents = out
		return &cp, nil

	case *Carousel:
		out := make([]*Bubble, 0, len(v.Contents))
		changed := false
		for i, b := range v.Contents {
			r := fn(Child{Slot: SlotContents, Index: i, Node: b})
			if isNil(r) {
				changed = true
				continue
			}
			nb, ok := r.(*Bubble)
			if !ok {
				return n, childTypeError(TypeCarousel, SlotContents, r.NodeType())
			}
			if nb != b {
				changed = true
			}
			out = append(out, nb)
		}
		if !changed {
			return n, nil
		}
		cp := *v
		cp.Contents = out
		return &cp, nil

	case *Bubble:
		header, c1, err := mapBoxSlot(TypeBubble, SlotHeader, v.Header, fn)
		if err != nil {
			return n, err
		}
		hero, c2, err := mapHeroSlot(v.Hero, fn)
		if err != nil {
			return n, err
		}
		body, c3, err := mapBoxSlot(TypeBubble, SlotBody, v.Body, fn)
		if err != nil {
			return n, err
		}
		footer, c4, err := mapBoxSlot(TypeBubble, SlotFooter, v.Footer, fn)
		if err != nil {
			return n, err
		}
		if !c1 && !c2 && !c3 && !c4 {
			return n, nil
		}
		cp := *v
		cp.Header, cp.Hero, cp.Body, cp.Footer = header, hero, body, footer
		return &cp, nil

	case *Video:
		alt, changed, err := mapBoxSlot(TypeVideo, SlotAltContent, v.AltContent, fn)
		if err != nil || !changed {
			return n, err
		}
		cp := *v
		cp.AltContent = alt
		return &cp, nil
	}
	return n, nil
}

func mapBoxSlot(parent Type, slot Slot, cur *Box, fn func(Child) Node) (*Box, bool, error) {
	if cur == nil {
		return nil, false, nil
	}
	r := fn(Child{Slot: slot, Node: cur})
	if isNil(r) {
		return nil, true, nil
	}
	b, ok := r.(*Box)
	if !ok {
		return cur, false, childTypeError(parent, slot, r.NodeType())
	}
	return b, b != cur, nil
}

func mapHeroSlot(cur HeroContent, fn func(Child) Node) (HeroContent, bool, error) {
	if cur == nil {
		return nil, false, nil
	}
	r := fn(Child{Slot: SlotHero, Node: cur})
	if isNil(r) {
		return nil, true, nil
	}
	h, ok := r.(HeroContent)
	if !ok {
		return cur, false, childTypeError(TypeBubble, SlotHero, r.NodeType())
	}
	return h, Node(h) != Node(cur), nil
}

// Attach returns a copy of parent with child appended to an ordered slot or
// installed in a single-occupant slot, replacing any previous occupant.
func Attach(parent Node, slot Slot, child Node) (Node, error) {
	if isNil(child) {
		return parent, fmt.Errorf("%w: nothing to attach", ErrInvalidChildType)
	}
	if !HasSlot(parent.NodeType(), slot) {
		return parent, fmt.Errorf("%w: %s has no %s slot", ErrInvalidChildType, parent.NodeType(), slot)
	}
	if !Accepts(parent.NodeType(), slot, child.NodeType()) {
		return parent, childTypeError(parent.NodeType(), slot, child.NodeType())
	}

	switch v := parent.(type) {
	case *Box:
		cp := *v
		cp.Contents = append(append(make([]Component, 0, len(v.Contents)+1), v.Contents...), child.(Component))
		return &cp, nil
	case *Carousel:
		cp := *v
		cp.Contents = append(append(make([]*Bubble, 0, len(v.Contents)+1), v.Contents...), child.(*Bubble))
		return &cp, nil
	case *Bubble:
		cp := *v
		switch slot {
		case SlotHeader:
			cp.Header = child.(*Box)
		case SlotHero:
			cp.Hero = child.(HeroContent)
		case SlotBody:
			cp.Body = child.(*Box)
		case SlotFooter:
			cp.Footer = child.(*Box)
		}
		return &cp, nil
	case *Video:
		cp := *v
		cp.AltContent = child.(*Box)
		return &cp, nil
	}
	return parent, childTypeError(parent.NodeType(), slot, child.NodeType())
}

// ShallowCopy returns a new node value with the same fields as n. Occupants,
// actions and the extras map are shared with n.
func ShallowCopy(n Node) Node {
	switch v := n.(type) {
	case *Box:
		cp := *v
		return &cp
	case *Text:
		cp := *v
		return &cp
	case *Image:
		cp := *v
		return &cp
	case *Icon:
		cp := *v
		return &cp
	case *Button:
		cp := *v
		return &cp
	case *Separator:
		cp := *v
		return &cp
	case *Video:
		cp := *v
		return &cp
	case *Bubble:
		cp := *v
		return &cp
	case *Carousel:
		cp := *v
		return &cp
	}
	return n
}

// WithoutSlots returns a shallow copy of n with every structural slot empty.
func WithoutSlots(n Node) Node {
	cp := ShallowCopy(n)
	switch v := cp.(type) {
	case *Box:
		v.Contents = []Component{}
	case *Carousel:
		v.Contents = []*Bubble{}
	case *Bubble:
		v.Header, v.Hero, v.Body, v.Footer = nil, nil, nil, nil
	case *Video:
		v.AltContent = nil
	}
	return cp
}

// WithSlotsFrom returns a shallow copy of dst whose structural slots are the
// ones held by src. Both nodes must share a type.
func WithSlotsFrom(dst, src Node) (Node, error) {
	if dst.NodeType() != src.NodeType() {
		return dst, fmt.Errorf("%w: cannot move slots from %s to %s", ErrInvalidChildType, src.NodeType(), dst.NodeType())
	}
	cp := ShallowCopy(dst)
	switch v := cp.(type) {
	case *Box:
		v.Contents = src.(*Box).Contents
	case *Carousel:
		v.Contents = src.(*Carousel).Contents
	case *Bubble:
		s := src.(*Bubble)
		v.Header, v.Hero, v.Body, v.Footer = s.Header, s.Hero, s.Body, s.Footer
	case *Video:
		v.AltContent = src.(*Video).AltContent
	}
	return cp, nil
}

// Reidentify returns a copy of the tree rooted at n in which every node has
// a fresh ID from newID. The input tree is not modified.
func Reidentify(n Node, newID func() string) Node {
	cp := ShallowCopy(n)
	cp.base().ID = newID()
	// Reidentify preserves every node's type, so MapChildren cannot reject.
	out, _ := MapChildren(cp, func(c Child) Node {
		return Reidentify(c.Node, newID)
	})
	return out
}

// SetID returns a shallow copy of n carrying id.
func SetID(n Node, id string) Node {
	cp := ShallowCopy(n)
	cp.base().ID = id
	return cp
}

// Extras returns a copy of the unknown fields retained on n.
func Extras(n Node) map[string]json.RawMessage {
	extra := n.base().Extra
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// WithoutExtra returns a shallow copy of n lacking the named unknown fields.
// n is returned unchanged when it carries none of them.
func WithoutExtra(n Node, keys ...string) Node {
	extra := n.base().Extra
	hit := false
	for _, k := range keys {
		if _, ok := extra[k]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return n
	}
	cp := ShallowCopy(n)
	trimmed := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		trimmed[k] = v
	}
	for _, k := range keys {
		delete(trimmed, k)
	}
	if len(trimmed) == 0 {
		trimmed = nil
	}
	cp.base().Extra = trimmed
	return cp
}

func childTypeError(parent Type, slot Slot, child Type) error {
	return fmt.Errorf("%w: %s.%s does not accept %s", ErrInvalidChildType, parent, slot, child)
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Validate reports a *MalformedError when any occupant of the tree rooted at
// n is missing. Typed construction already rules out misplaced node types.
func Validate(n Node) error {
	if isNil(n) {
		return Malformed("document is empty", nil)
	}
	for _, c := range Children(n) {
		if isNil(c.Node) {
			return Malformed(fmt.Sprintf("%s %s[%d] is empty", n.NodeType(), c.Slot, c.Index), nil)
		}
		if err := Validate(c.Node); err != nil {
			return err
		}
	}
	return nil
}

// ValidateIDs is Validate plus the editor-tree rule that every node carries
// a non-empty ID no other node in the tree shares.
func ValidateIDs(n Node) error {
	if err := Validate(n); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	var bad error
	Walk(n, func(node Node) bool {
		id := node.NodeID()
		if id == "" {
			bad = Malformed(fmt.Sprintf("%s has no id", node.NodeType()), nil)
			return false
		}
		if _, dup := seen[id]; dup {
			bad = Malformed(fmt.Sprintf("duplicate id %q", id), nil)
			return false
		}
		seen[id] = struct{}{}
		return true
	})
	return bad
}
