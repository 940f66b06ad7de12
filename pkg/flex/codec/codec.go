// Package codec converts between editor trees, whose nodes carry IDs, and
// wire trees, the ID-free form the messaging API and the generator speak.
//
// Hydrate is the trust boundary for trees of external origin: anything that
// becomes a live document passes through it.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"flex-designer-be/pkg/flex"
	"flex-designer-be/pkg/idgen"
)

const (
	// DefaultButtonLabel fills a button action the generator left unlabeled.
	DefaultButtonLabel = "Button"
	// DefaultAltText is used when a flex message is wrapped without a summary.
	DefaultAltText = "Flex Message"
	// MaxAltTextLength is the messaging API's limit for altText, in characters.
	MaxAltTextLength = 400
)

// heroQuirkFields are attributes generators put on hero occupants that the
// wire schema rejects there.
var heroQuirkFields = []string{"alt"}

// Codec hydrates trees with IDs from its generator.
type Codec struct {
	newID idgen.Func
}

// New returns a Codec drawing IDs from newID, or from idgen.NewID when nil.
func New(newID idgen.Func) *Codec {
	if newID == nil {
		newID = idgen.NewID
	}
	return &Codec{newID: newID}
}

var std = New(nil)

// Strip returns a copy of the tree rooted at n with every ID removed and
// known generator quirks dropped from the hero occupant. n is not modified.
func Strip(n flex.Node) flex.Node {
	out := flex.SetID(n, "")
	// Strip preserves node types, so MapChildren cannot reject.
	out, _ = flex.MapChildren(out, func(c flex.Child) flex.Node {
		child := Strip(c.Node)
		if c.Slot == flex.SlotHero {
			child = flex.WithoutExtra(child, heroQuirkFields...)
		}
		return child
	})
	return out
}

// Hydrate uses the package default ID generator.
func Hydrate(n flex.Node) (flex.Container, error) { return std.Hydrate(n) }

// HydrateJSON uses the package default ID generator.
func HydrateJSON(data []byte) (flex.Container, error) { return std.HydrateJSON(data) }

// HydrateNode uses the package default ID generator.
func HydrateNode(n flex.Node) (flex.Node, error) { return std.HydrateNode(n) }

// Hydrate returns a copy of the tree rooted at n with a fresh ID on every
// node, repairing the gaps generators are known to leave. A root that is not
// a bubble or carousel, or a missing occupant anywhere, is a
// *flex.MalformedError and no tree is returned.
func (c *Codec) Hydrate(n flex.Node) (flex.Container, error) {
	if err := flex.Validate(n); err != nil {
		return nil, err
	}
	if _, ok := n.(flex.Container); !ok {
		frag, _ := json.Marshal(n)
		return nil, flex.Malformed(fmt.Sprintf("document root must be a bubble or carousel, got %s", n.NodeType()), frag)
	}
	return c.hydrate(n).(flex.Container), nil
}

// HydrateJSON decodes a wire document and hydrates it.
func (c *Codec) HydrateJSON(data []byte) (flex.Container, error) {
	n, err := flex.DecodeNode(data)
	if err != nil {
		return nil, err
	}
	return c.Hydrate(n)
}

// HydrateNode is Hydrate for a subtree of any type.
func (c *Codec) HydrateNode(n flex.Node) (flex.Node, error) {
	if err := flex.Validate(n); err != nil {
		return nil, err
	}
	return c.hydrate(n), nil
}

func (c *Codec) hydrate(n flex.Node) flex.Node {
	out := repairNode(flex.SetID(n, c.newID()))
	out, _ = flex.MapChildren(out, func(ch flex.Child) flex.Node {
		return c.hydrate(ch.Node)
	})
	return out
}

// Repair returns the tree rooted at n with the gaps generators are known to
// leave filled in. IDs are kept; only repaired nodes and their ancestors are
// copied.
func Repair(n flex.Node) flex.Node {
	out := repairNode(n)
	out, _ = flex.MapChildren(out, func(c flex.Child) flex.Node {
		return Repair(c.Node)
	})
	return out
}

// repairNode labels an unlabeled button action.
func repairNode(n flex.Node) flex.Node {
	b, ok := n.(*flex.Button)
	if !ok || b.Action == nil || b.Action.Label != "" {
		return n
	}
	cp := *b
	a := *b.Action
	a.Label = DefaultButtonLabel
	cp.Action = &a
	return &cp
}

// EncodeWire serializes the wire form of root.
func EncodeWire(root flex.Node) ([]byte, error) {
	return json.Marshal(Strip(root))
}

// DecodeEditor decodes a stored editor tree. IDs are kept as they are and
// must be present and unique.
func DecodeEditor(data []byte) (flex.Container, error) {
	root, err := flex.DecodeContainer(data)
	if err != nil {
		return nil, err
	}
	if err := flex.ValidateIDs(root); err != nil {
		return nil, err
	}
	return root, nil
}

// Clone returns an independent deep copy of an editor tree, IDs included.
func Clone(root flex.Container) (flex.Container, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	return flex.DecodeContainer(data)
}

// FlexMessage is the envelope the messaging API accepts.
type FlexMessage struct {
	Type     string    `json:"type"`
	AltText  string    `json:"altText"`
	Contents flex.Node `json:"contents"`
}

// Wrap strips root and wraps it in a flex message envelope.
func Wrap(root flex.Container, altText string) FlexMessage {
	altText = strings.TrimSpace(altText)
	if altText == "" {
		altText = DefaultAltText
	}
	if utf8.RuneCountInString(altText) > MaxAltTextLength {
		altText = string([]rune(altText)[:MaxAltTextLength])
	}
	return FlexMessage{Type: "flex", AltText: altText, Contents: Strip(root)}
}
