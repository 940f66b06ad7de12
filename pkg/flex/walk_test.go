package flex

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBubble() *Bubble {
	return &Bubble{
		Base:   Base{ID: "bubble"},
		Header: &Box{Base: Base{ID: "header"}, Contents: []Component{}},
		Hero:   &Image{Base: Base{ID: "hero"}, URL: "https://example.com/h.png"},
		Body: &Box{Base: Base{ID: "body"}, Contents: []Component{
			&Text{Base: Base{ID: "t1"}, Text: "one"},
			&Text{Base: Base{ID: "t2"}, Text: "two"},
		}},
		Footer: &Box{Base: Base{ID: "footer"}, Contents: []Component{}},
	}
}

func TestWalkOrder(t *testing.T) {
	var ids []string
	Walk(sampleBubble(), func(n Node) bool {
		ids = append(ids, n.NodeID())
		return true
	})
	assert.Equal(t, []string{"bubble", "header", "hero", "body", "t1", "t2", "footer"}, ids)
}

func TestWalkStopsEarly(t *testing.T) {
	visited := 0
	done := Walk(sampleBubble(), func(n Node) bool {
		visited++
		return n.NodeID() != "hero"
	})
	assert.False(t, done)
	assert.Equal(t, 3, visited)
}

func TestWalkVisitsVideoAltContent(t *testing.T) {
	v := &Video{Base: Base{ID: "v"}, AltContent: &Box{Base: Base{ID: "alt"}}}
	assert.Equal(t, 2, Count(v))
}

func TestMapChildrenKeepsUnchangedNode(t *testing.T) {
	b := sampleBubble()
	out, err := MapChildren(b, func(c Child) Node { return c.Node })
	require.NoError(t, err)
	assert.Same(t, b, out)

	body := b.Body
	out, err = MapChildren(body, func(c Child) Node { return c.Node })
	require.NoError(t, err)
	assert.Same(t, body, out)
}

func TestMapChildrenRemovesAndReplaces(t *testing.T) {
	b := sampleBubble()

	out, err := MapChildren(b, func(c Child) Node {
		if c.Slot == SlotHero {
			return nil
		}
		return c.Node
	})
	require.NoError(t, err)
	nb := out.(*Bubble)
	assert.Nil(t, nb.Hero)
	assert.NotNil(t, b.Hero, "input untouched")
	assert.Same(t, b.Body, nb.Body)

	out, err = MapChildren(b.Body, func(c Child) Node {
		if c.Index == 0 {
			return nil
		}
		return c.Node
	})
	require.NoError(t, err)
	assert.Len(t, out.(*Box).Contents, 1)
	assert.Len(t, b.Body.Contents, 2)
}

func TestMapChildrenRejectsWrongType(t *testing.T) {
	b := sampleBubble()
	out, err := MapChildren(b, func(c Child) Node {
		if c.Slot == SlotBody {
			return &Image{URL: "u"}
		}
		return c.Node
	})
	assert.ErrorIs(t, err, ErrInvalidChildType)
	assert.Same(t, b, out)
}

func TestAttach(t *testing.T) {
	b := sampleBubble()

	out, err := Attach(b, SlotHero, &Box{Base: Base{ID: "hero-box"}})
	require.NoError(t, err)
	assert.Equal(t, "hero-box", out.(*Bubble).Hero.NodeID())
	assert.Equal(t, "hero", b.Hero.NodeID())

	out, err = Attach(b.Body, SlotContents, &Separator{Base: Base{ID: "sep"}})
	require.NoError(t, err)
	contents := out.(*Box).Contents
	require.Len(t, contents, 3)
	assert.Equal(t, "sep", contents[2].NodeID())
	assert.Len(t, b.Body.Contents, 2)

	_, err = Attach(b, SlotBody, &Text{Text: "x"})
	assert.ErrorIs(t, err, ErrInvalidChildType)

	_, err = Attach(b.Body, SlotHero, &Box{})
	assert.ErrorIs(t, err, ErrInvalidChildType)

	_, err = Attach(&Carousel{}, SlotContents, nil)
	assert.ErrorIs(t, err, ErrInvalidChildType)
}

func TestWithoutSlotsAndBack(t *testing.T) {
	b := sampleBubble()
	bare := WithoutSlots(b).(*Bubble)
	assert.Nil(t, bare.Body)
	assert.Equal(t, "bubble", bare.ID)

	back, err := WithSlotsFrom(bare, b)
	require.NoError(t, err)
	assert.Equal(t, b, back)

	_, err = WithSlotsFrom(&Box{}, b)
	assert.ErrorIs(t, err, ErrInvalidChildType)
}

func TestReidentify(t *testing.T) {
	b := sampleBubble()
	n := 0
	out := Reidentify(b, func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	})
	assert.Equal(t, Count(b), n)
	assert.Equal(t, "new-1", out.NodeID())
	require.NoError(t, ValidateIDs(out))
	assert.Equal(t, "bubble", b.ID)
	assert.Equal(t, "t1", b.Body.Contents[0].NodeID())
}

func TestWithoutExtra(t *testing.T) {
	img := &Image{URL: "u", Base: Base{Extra: map[string]json.RawMessage{
		"alt":   json.RawMessage(`"x"`),
		"other": json.RawMessage(`1`),
	}}}

	out := WithoutExtra(img, "alt")
	assert.NotSame(t, img, out)
	assert.NotContains(t, Extras(out), "alt")
	assert.Contains(t, Extras(out), "other")
	assert.Contains(t, img.Extra, "alt")

	assert.Same(t, img, WithoutExtra(img, "missing"))
	assert.Nil(t, Extras(WithoutExtra(img, "alt", "other")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sampleBubble()))

	withHole := &Box{Contents: []Component{&Text{}, nil}}
	assert.ErrorIs(t, Validate(withHole), ErrMalformedDocument)

	var typedNil *Image
	b := &Bubble{Hero: typedNil}
	assert.ErrorIs(t, Validate(b), ErrMalformedDocument)

	c := &Carousel{Contents: []*Bubble{nil}}
	assert.ErrorIs(t, Validate(c), ErrMalformedDocument)
}

func TestValidateIDs(t *testing.T) {
	assert.NoError(t, ValidateIDs(sampleBubble()))

	dup := sampleBubble()
	dup.Footer = &Box{Base: Base{ID: "header"}}
	assert.ErrorIs(t, ValidateIDs(dup), ErrMalformedDocument)

	missing := sampleBubble()
	missing.Body.Contents[1] = &Text{Text: "no id"}
	assert.ErrorIs(t, ValidateIDs(missing), ErrMalformedDocument)
}
