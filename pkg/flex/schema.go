package flex

// Slot names a structural position on a container-capable node. The values
// are the JSON field names that hold the occupants.
type Slot string

const (
	SlotContents   Slot = "contents"
	SlotHeader     Slot = "header"
	SlotHero       Slot = "hero"
	SlotBody       Slot = "body"
	SlotFooter     Slot = "footer"
	SlotAltContent Slot = "altContent"
)

// Ordered reports whether the slot holds a list rather than one occupant.
func (s Slot) Ordered() bool {
	return s == SlotContents
}

// BubbleSections are a bubble's slots in traversal order.
var BubbleSections = []Slot{SlotHeader, SlotHero, SlotBody, SlotFooter}

var componentTypes = []Type{
	TypeBox, TypeText, TypeImage, TypeIcon, TypeButton, TypeSeparator, TypeVideo,
}

// slotTable is the static acceptance table. Slots are listed in traversal
// order for each parent type.
var slotTable = map[Type][]slotRule{
	TypeBox: {
		{slot: SlotContents, accepts: componentTypes},
	},
	TypeBubble: {
		{slot: SlotHeader, accepts: []Type{TypeBox}},
		{slot: SlotHero, accepts: []Type{TypeBox, TypeImage}},
		{slot: SlotBody, accepts: []Type{TypeBox}},
		{slot: SlotFooter, accepts: []Type{TypeBox}},
	},
	TypeCarousel: {
		{slot: SlotContents, accepts: []Type{TypeBubble}},
	},
	TypeVideo: {
		{slot: SlotAltContent, accepts: []Type{TypeBox}},
	},
}

type slotRule struct {
	slot    Slot
	accepts []Type
}

// Slots returns the structural slots of a parent type in traversal order.
// Leaf types have none.
func Slots(parent Type) []Slot {
	rules := slotTable[parent]
	out := make([]Slot, len(rules))
	for i, r := range rules {
		out[i] = r.slot
	}
	return out
}

// HasSlot reports whether parent has the named slot.
func HasSlot(parent Type, slot Slot) bool {
	for _, r := range slotTable[parent] {
		if r.slot == slot {
			return true
		}
	}
	return false
}

// Accepts reports whether child may occupy slot on a parent of the given type.
func Accepts(parent Type, slot Slot, child Type) bool {
	for _, r := range slotTable[parent] {
		if r.slot != slot {
			continue
		}
		for _, t := range r.accepts {
			if t == child {
				return true
			}
		}
	}
	return false
}

// AcceptedTypes returns what slot on parent accepts, or nil.
func AcceptedTypes(parent Type, slot Slot) []Type {
	for _, r := range slotTable[parent] {
		if r.slot == slot {
			return append([]Type(nil), r.accepts...)
		}
	}
	return nil
}

// DefaultSlot returns the slot an insertion targets when the caller names
// none. Only types with exactly one slot have a default; a bubble always
// needs an explicit section.
func DefaultSlot(parent Type) (Slot, bool) {
	rules := slotTable[parent]
	if len(rules) != 1 {
		return "", false
	}
	return rules[0].slot, true
}
