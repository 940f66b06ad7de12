// Package flex models a Flex Message document: a tree of typed layout and
// content nodes rooted at a bubble or a carousel.
//
// The same Go values serve as the editor tree (every node carries an ID) and
// the wire tree (IDs empty, omitted on encode). Nodes are treated as
// immutable once they are part of a tree: edits produce new node values and
// share every untouched subtree with the previous tree.
package flex

import "encoding/json"

// Type is the discriminator carried in every node's "type" field.
type Type string

const (
	TypeBox       Type = "box"
	TypeText      Type = "text"
	TypeImage     Type = "image"
	TypeIcon      Type = "icon"
	TypeButton    Type = "button"
	TypeSeparator Type = "separator"
	TypeVideo     Type = "video"
	TypeBubble    Type = "bubble"
	TypeCarousel  Type = "carousel"
)

// Types lists the closed set of node types.
var Types = []Type{
	TypeBox, TypeText, TypeImage, TypeIcon, TypeButton,
	TypeSeparator, TypeVideo, TypeBubble, TypeCarousel,
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// IsContainer reports whether t may be a document root.
func (t Type) IsContainer() bool {
	return t == TypeBubble || t == TypeCarousel
}

// IsComponent reports whether t may sit inside a box.
func (t Type) IsComponent() bool {
	return t.Valid() && !t.IsContainer()
}

// Node is implemented by every node variant. The unexported method seals the
// set to this package.
type Node interface {
	NodeID() string
	NodeType() Type
	base() *Base
}

// Component is a node that can be a box child: box or any leaf.
type Component interface {
	Node
	isComponent()
}

// Container is a node that can be a document root: bubble or carousel.
type Container interface {
	Node
	isContainer()
}

// HeroContent is a node that can occupy a bubble's hero slot: box or image.
type HeroContent interface {
	Node
	isHero()
}

// Base holds the fields shared by every variant.
type Base struct {
	// ID is the editor identity. Empty in wire trees.
	ID string `json:"id,omitempty"`

	// Extra keeps fields the model does not know so that a decode/encode
	// round-trip does not lose them.
	Extra map[string]json.RawMessage `json:"-"`
}

func (b Base) NodeID() string { return b.ID }

func (b *Base) base() *Base { return b }

// Offsets are the absolute-positioning fields shared by most components.
type Offsets struct {
	Position     string `json:"position,omitempty"`
	OffsetTop    string `json:"offsetTop,omitempty"`
	OffsetBottom string `json:"offsetBottom,omitempty"`
	OffsetStart  string `json:"offsetStart,omitempty"`
	OffsetEnd    string `json:"offsetEnd,omitempty"`
}

type Box struct {
	Base
	Layout          string      `json:"layout,omitempty"`
	Contents        []Component `json:"contents"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	BorderColor     string      `json:"borderColor,omitempty"`
	BorderWidth     string      `json:"borderWidth,omitempty"`
	CornerRadius    string      `json:"cornerRadius,omitempty"`
	Spacing         string      `json:"spacing,omitempty"`
	Margin          string      `json:"margin,omitempty"`
	PaddingAll      string      `json:"paddingAll,omitempty"`
	PaddingTop      string      `json:"paddingTop,omitempty"`
	PaddingBottom   string      `json:"paddingBottom,omitempty"`
	PaddingStart    string      `json:"paddingStart,omitempty"`
	PaddingEnd      string      `json:"paddingEnd,omitempty"`
	Width           string      `json:"width,omitempty"`
	Height          string      `json:"height,omitempty"`
	Flex            *int        `json:"flex,omitempty"`
	Offsets
	Action         *Action     `json:"action,omitempty"`
	JustifyContent string      `json:"justifyContent,omitempty"`
	AlignItems     string      `json:"alignItems,omitempty"`
	Background     *Background `json:"background,omitempty"`
}

// Background is a box's linear gradient fill.
type Background struct {
	Type           string `json:"type"`
	Angle          string `json:"angle,omitempty"`
	StartColor     string `json:"startColor,omitempty"`
	EndColor       string `json:"endColor,omitempty"`
	CenterColor    string `json:"centerColor,omitempty"`
	CenterPosition string `json:"centerPosition,omitempty"`
}

type Text struct {
	Base
	Text        string  `json:"text"`
	Flex        *int    `json:"flex,omitempty"`
	Margin      string  `json:"margin,omitempty"`
	Size        string  `json:"size,omitempty"`
	Align       string  `json:"align,omitempty"`
	Gravity     string  `json:"gravity,omitempty"`
	Wrap        *bool   `json:"wrap,omitempty"`
	MaxLines    *int    `json:"maxLines,omitempty"`
	Weight      string  `json:"weight,omitempty"`
	Color       string  `json:"color,omitempty"`
	Action      *Action `json:"action,omitempty"`
	Style       string  `json:"style,omitempty"`
	Decoration  string  `json:"decoration,omitempty"`
	LineSpacing string  `json:"lineSpacing,omitempty"`
	Offsets
	// Contents holds rich-text spans. Spans are not nodes and carry no ID.
	Contents []Span `json:"contents,omitempty"`
}

type Span struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	Color      string `json:"color,omitempty"`
	Size       string `json:"size,omitempty"`
	Weight     string `json:"weight,omitempty"`
	Style      string `json:"style,omitempty"`
	Decoration string `json:"decoration,omitempty"`
}

type Image struct {
	Base
	URL             string  `json:"url"`
	Flex            *int    `json:"flex,omitempty"`
	Margin          string  `json:"margin,omitempty"`
	Align           string  `json:"align,omitempty"`
	Gravity         string  `json:"gravity,omitempty"`
	Size            string  `json:"size,omitempty"`
	AspectRatio     string  `json:"aspectRatio,omitempty"`
	AspectMode      string  `json:"aspectMode,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Action          *Action `json:"action,omitempty"`
	Offsets
	Animated *bool `json:"animated,omitempty"`
}

type Icon struct {
	Base
	URL         string `json:"url"`
	Margin      string `json:"margin,omitempty"`
	Size        string `json:"size,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Offsets
}

type Button struct {
	Base
	Action     *Action `json:"action,omitempty"`
	Flex       *int    `json:"flex,omitempty"`
	Margin     string  `json:"margin,omitempty"`
	Height     string  `json:"height,omitempty"`
	Style      string  `json:"style,omitempty"`
	Color      string  `json:"color,omitempty"`
	Gravity    string  `json:"gravity,omitempty"`
	AdjustMode string  `json:"adjustMode,omitempty"`
	Offsets
}

type Separator struct {
	Base
	Margin string `json:"margin,omitempty"`
	Color  string `json:"color,omitempty"`
}

type Video struct {
	Base
	URL         string  `json:"url"`
	PreviewURL  string  `json:"previewUrl"`
	AltContent  *Box    `json:"altContent,omitempty"`
	AspectRatio string  `json:"aspectRatio,omitempty"`
	Action      *Action `json:"action,omitempty"`
	Margin      string  `json:"margin,omitempty"`
	Offsets
}

type Bubble struct {
	Base
	Size      string        `json:"size,omitempty"`
	Direction string        `json:"direction,omitempty"`
	Header    *Box          `json:"header,omitempty"`
	Hero      HeroContent   `json:"hero,omitempty"`
	Body      *Box          `json:"body,omitempty"`
	Footer    *Box          `json:"footer,omitempty"`
	Styles    *BubbleStyles `json:"styles,omitempty"`
	Action    *Action       `json:"action,omitempty"`
}

type BlockStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Separator       *bool  `json:"separator,omitempty"`
	SeparatorColor  string `json:"separatorColor,omitempty"`
}

type BubbleStyles struct {
	Header *BlockStyle `json:"header,omitempty"`
	Hero   *BlockStyle `json:"hero,omitempty"`
	Body   *BlockStyle `json:"body,omitempty"`
	Footer *BlockStyle `json:"footer,omitempty"`
}

type Carousel struct {
	Base
	Contents []*Bubble `json:"contents"`
}

func (*Box) NodeType() Type       { return TypeBox }
func (*Text) NodeType() Type      { return TypeText }
func (*Image) NodeType() Type     { return TypeImage }
func (*Icon) NodeType() Type      { return TypeIcon }
func (*Button) NodeType() Type    { return TypeButton }
func (*Separator) NodeType() Type { return TypeSeparator }
func (*Video) NodeType() Type     { return TypeVideo }
func (*Bubble) NodeType() Type    { return TypeBubble }
func (*Carousel) NodeType() Type  { return TypeCarousel }

func (*Box) isComponent()       {}
func (*Text) isComponent()      {}
func (*Image) isComponent()     {}
func (*Icon) isComponent()      {}
func (*Button) isComponent()    {}
func (*Separator) isComponent() {}
func (*Video) isComponent()     {}

func (*Bubble) isContainer()   {}
func (*Carousel) isContainer() {}

func (*Box) isHero()   {}
func (*Image) isHero() {}

// IntPtr and BoolPtr build optional scalar fields.
func IntPtr(v int) *int { return &v }

func BoolPtr(v bool) *bool { return &v }
