package flex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// DecodeNode decodes any node variant, dispatching on its "type" field.
// Unknown or missing types, and occupants a slot does not accept, fail with
// a *MalformedError.
func DecodeNode(data []byte) (Node, error) {
	t, err := peekType(data)
	if err != nil {
		return nil, err
	}
	var n Node
	switch t {
	case TypeBox:
		n = &Box{}
	case TypeText:
		n = &Text{}
	case TypeImage:
		n = &Image{}
	case TypeIcon:
		n = &Icon{}
	case TypeButton:
		n = &Button{}
	case TypeSeparator:
		n = &Separator{}
	case TypeVideo:
		n = &Video{}
	case TypeBubble:
		n = &Bubble{}
	case TypeCarousel:
		n = &Carousel{}
	default:
		return nil, Malformed(fmt.Sprintf("unknown node type %q", t), data)
	}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, asMalformed(err, data)
	}
	return n, nil
}

// DecodeContainer decodes a document root. Anything but a bubble or a
// carousel at the top level is malformed.
func DecodeContainer(data []byte) (Container, error) {
	n, err := DecodeNode(data)
	if err != nil {
		return nil, err
	}
	c, ok := n.(Container)
	if !ok {
		return nil, Malformed(fmt.Sprintf("document root must be a bubble or carousel, got %s", n.NodeType()), data)
	}
	return c, nil
}

func decodeComponent(data []byte) (Component, error) {
	n, err := DecodeNode(data)
	if err != nil {
		return nil, err
	}
	c, ok := n.(Component)
	if !ok {
		return nil, Malformed(fmt.Sprintf("%s cannot be placed inside a box", n.NodeType()), data)
	}
	return c, nil
}

func decodeHero(data []byte) (HeroContent, error) {
	n, err := DecodeNode(data)
	if err != nil {
		return nil, err
	}
	h, ok := n.(HeroContent)
	if !ok {
		return nil, Malformed(fmt.Sprintf("hero must be a box or image, got %s", n.NodeType()), data)
	}
	return h, nil
}

func peekType(data []byte) (Type, error) {
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", Malformed("node is not a JSON object", data)
	}
	if head.Type == nil {
		return "", Malformed("node has no type", data)
	}
	return Type(*head.Type), nil
}

func asMalformed(err error, data []byte) error {
	if _, ok := err.(*MalformedError); ok {
		return err
	}
	return Malformed(err.Error(), data)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeVariant fills dst (an alias of a variant, optionally wrapped to
// shadow slot fields) from data after checking the discriminator, and
// collects fields dst does not declare into base.Extra.
func decodeVariant(data []byte, want Type, dst any, base *Base) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Malformed("node is not a JSON object", data)
	}
	var got string
	if t, ok := raw["type"]; !ok || json.Unmarshal(t, &got) != nil {
		return Malformed("node has no type", data)
	}
	if Type(got) != want {
		if !Type(got).Valid() {
			return Malformed(fmt.Sprintf("unknown node type %q", got), data)
		}
		return Malformed(fmt.Sprintf("expected %s, got %s", want, got), data)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return asMalformed(err, data)
	}
	known := jsonKeys(reflect.TypeOf(dst))
	var extra map[string]json.RawMessage
	for k, v := range raw {
		if k == "type" {
			continue
		}
		// encoding/json folds case when matching fields, so a near miss
		// such as "Contents" has already been decoded into a typed field.
		name, ok := known[strings.ToLower(k)]
		if ok && name == k {
			continue
		}
		if ok || strings.EqualFold(k, "type") {
			return Malformed(fmt.Sprintf("field %q must be spelled %q", k, canonical(name, k)), data)
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	base.Extra = extra
	return nil
}

// encodeVariant marshals v with a leading "type" field and the retained
// unknown fields appended in key order.
func encodeVariant(t Type, v any, extra map[string]json.RawMessage) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	typ, _ := json.Marshal(string(t))
	buf.Write(typ)
	inner := bytes.TrimSpace(body[1 : len(body)-1])
	if len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, _ := json.Marshal(k)
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var keyCache sync.Map // reflect.Type -> map[string]string

// jsonKeys returns the JSON field names t decodes, following embedded
// structs the way encoding/json does. Keys are lower-cased names mapped to
// the exact spelling.
func jsonKeys(t reflect.Type) map[string]string {
	if cached, ok := keyCache.Load(t); ok {
		return cached.(map[string]string)
	}
	keys := make(map[string]string)
	collectKeys(t, keys)
	keyCache.Store(t, keys)
	return keys
}

func canonical(name, key string) string {
	if name == "" {
		return strings.ToLower(key)
	}
	return name
}

func collectKeys(t reflect.Type, keys map[string]string) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			collectKeys(f.Type, keys)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[strings.ToLower(name)] = name
	}
}

func (b *Box) UnmarshalJSON(data []byte) error {
	type plain Box
	aux := struct {
		*plain
		Contents []json.RawMessage `json:"contents"`
	}{plain: (*plain)(b)}
	if err := decodeVariant(data, TypeBox, &aux, &b.Base); err != nil {
		return err
	}
	b.Contents = make([]Component, 0, len(aux.Contents))
	for _, raw := range aux.Contents {
		c, err := decodeComponent(raw)
		if err != nil {
			return err
		}
		b.Contents = append(b.Contents, c)
	}
	return nil
}

func (b *Box) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	type plain Box
	p := plain(*b)
	if p.Contents == nil {
		p.Contents = []Component{}
	}
	return encodeVariant(TypeBox, &p, b.Extra)
}

// UnmarshalJSON tolerates a missing or non-string "text": generators omit
// it or emit numbers, and both decode as an empty string.
func (t *Text) UnmarshalJSON(data []byte) error {
	type plain Text
	aux := struct {
		*plain
		Text json.RawMessage `json:"text"`
	}{plain: (*plain)(t)}
	if err := decodeVariant(data, TypeText, &aux, &t.Base); err != nil {
		return err
	}
	t.Text = ""
	if !isNull(aux.Text) {
		var s string
		if json.Unmarshal(aux.Text, &s) == nil {
			t.Text = s
		}
	}
	return nil
}

func (t *Text) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	type plain Text
	return encodeVariant(TypeText, (*plain)(t), t.Extra)
}

func (i *Image) UnmarshalJSON(data []byte) error {
	type plain Image
	return decodeVariant(data, TypeImage, (*plain)(i), &i.Base)
}

func (i *Image) MarshalJSON() ([]byte, error) {
	if i == nil {
		return []byte("null"), nil
	}
	type plain Image
	return encodeVariant(TypeImage, (*plain)(i), i.Extra)
}

func (i *Icon) UnmarshalJSON(data []byte) error {
	type plain Icon
	return decodeVariant(data, TypeIcon, (*plain)(i), &i.Base)
}

func (i *Icon) MarshalJSON() ([]byte, error) {
	if i == nil {
		return []byte("null"), nil
	}
	type plain Icon
	return encodeVariant(TypeIcon, (*plain)(i), i.Extra)
}

func (b *Button) UnmarshalJSON(data []byte) error {
	type plain Button
	return decodeVariant(data, TypeButton, (*plain)(b), &b.Base)
}

func (b *Button) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	type plain Button
	return encodeVariant(TypeButton, (*plain)(b), b.Extra)
}

func (s *Separator) UnmarshalJSON(data []byte) error {
	type plain Separator
	return decodeVariant(data, TypeSeparator, (*plain)(s), &s.Base)
}

func (s *Separator) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	type plain Separator
	return encodeVariant(TypeSeparator, (*plain)(s), s.Extra)
}

func (v *Video) UnmarshalJSON(data []byte) error {
	type plain Video
	return decodeVariant(data, TypeVideo, (*plain)(v), &v.Base)
}

func (v *Video) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	type plain Video
	return encodeVariant(TypeVideo, (*plain)(v), v.Extra)
}

func (b *Bubble) UnmarshalJSON(data []byte) error {
	type plain Bubble
	aux := struct {
		*plain
		Hero json.RawMessage `json:"hero"`
	}{plain: (*plain)(b)}
	if err := decodeVariant(data, TypeBubble, &aux, &b.Base); err != nil {
		return err
	}
	b.Hero = nil
	if !isNull(aux.Hero) {
		h, err := decodeHero(aux.Hero)
		if err != nil {
			return err
		}
		b.Hero = h
	}
	return nil
}

func (b *Bubble) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	type plain Bubble
	return encodeVariant(TypeBubble, (*plain)(b), b.Extra)
}

func (c *Carousel) UnmarshalJSON(data []byte) error {
	type plain Carousel
	aux := struct {
		*plain
		Contents []json.RawMessage `json:"contents"`
	}{plain: (*plain)(c)}
	if err := decodeVariant(data, TypeCarousel, &aux, &c.Base); err != nil {
		return err
	}
	c.Contents = make([]*Bubble, 0, len(aux.Contents))
	for _, raw := range aux.Contents {
		n, err := DecodeNode(raw)
		if err != nil {
			return err
		}
		b, ok := n.(*Bubble)
		if !ok {
			return Malformed(fmt.Sprintf("carousel may only contain bubbles, got %s", n.NodeType()), raw)
		}
		c.Contents = append(c.Contents, b)
	}
	return nil
}

func (c *Carousel) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	type plain Carousel
	p := plain(*c)
	if p.Contents == nil {
		p.Contents = []*Bubble{}
	}
	return encodeVariant(TypeCarousel, &p, c.Extra)
}
