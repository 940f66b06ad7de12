package flex

import "sort"

const (
	starGold = "https://developers-resource.landpress.line.me/fx/img/review_gold_star_28.png"
	starGray = "https://developers-resource.landpress.line.me/fx/img/review_gray_star_28.png"
)

// DefaultTemplate returns the default-fields node a component library offers
// for t. The result carries no IDs; Add assigns them. It returns nil for a
// type outside the closed set.
func DefaultTemplate(t Type) Node {
	switch t {
	case TypeBubble:
		return &Bubble{Size: "mega", Body: defaultBubbleBody()}
	case TypeCarousel:
		return &Carousel{Contents: []*Bubble{
			{Body: defaultBubbleBody()},
			{Body: defaultBubbleBody()},
		}}
	case TypeBox:
		return &Box{
			Layout:          "vertical",
			Contents:        []Component{},
			Spacing:         "md",
			PaddingAll:      "sm",
			BackgroundColor: "#FFFFFF",
			CornerRadius:    "md",
		}
	case TypeText:
		return &Text{Text: "New Text", Wrap: BoolPtr(true), Size: "md", Color: "#333333"}
	case TypeImage:
		return &Image{
			URL:         "https://picsum.photos/800/600?random=1",
			Size:        "full",
			AspectRatio: "16:9",
			AspectMode:  "cover",
		}
	case TypeVideo:
		const src = "https://sample-videos.com/video123/mp4/720/big_buck_bunny_720p_1mb.mp4"
		return &Video{
			URL:         src,
			PreviewURL:  "https://picsum.photos/seed/video_preview/800/600?random=2",
			AspectRatio: "16:9",
			Action:      &Action{Type: ActionURI, Label: "Play Video", URI: src},
		}
	case TypeButton:
		return &Button{
			Action: &Action{Type: ActionURI, Label: "Learn More", URI: "https://example.com"},
			Style:  "primary",
			Color:  "#06C755",
			Height: "md",
		}
	case TypeSeparator:
		return &Separator{Margin: "md", Color: "#EEEEEE"}
	case TypeIcon:
		return &Icon{URL: starGold, Size: "md", AspectRatio: "1:1"}
	}
	return nil
}

func defaultBubbleBody() *Box {
	return &Box{
		Layout: "vertical",
		Contents: []Component{
			&Text{Text: "Hello, World!", Wrap: BoolPtr(true), Weight: "bold", Size: "xl"},
			&Text{Text: "This is a sample text for the body section.", Wrap: BoolPtr(true), Size: "md", Margin: "md"},
		},
		PaddingAll: "md",
	}
}

// EmptyBubble is the placeholder document shown before anything is designed.
// Like every template it carries no IDs.
func EmptyBubble() *Bubble {
	return emptyBubble("Drag components here or use AI Assistant!")
}

// EmptyCarousel is the placeholder carousel: two empty bubbles.
func EmptyCarousel() *Carousel {
	return &Carousel{Contents: []*Bubble{
		EmptyBubble(),
		emptyBubble("Second bubble. Customize me!"),
	}}
}

func emptyBubble(hint string) *Bubble {
	return &Bubble{
		Size: "mega",
		Body: &Box{
			Layout: "vertical",
			Contents: []Component{
				&Text{
					Text:    hint,
					Align:   "center",
					Gravity: "center",
					Wrap:    BoolPtr(true),
					Margin:  "xxl",
					Color:   "#aaaaaa",
				},
			},
			PaddingAll:      "md",
			JustifyContent:  "center",
			AlignItems:      "center",
			Height:          "200px",
			BackgroundColor: "#F7F7F7",
		},
	}
}

// Template is a named starter design.
type Template struct {
	Name        string
	Description string
	Build       func() *Bubble
}

var templates = map[string]Template{
	"E-commerce Product Card": {
		Name:        "E-commerce Product Card",
		Description: "Display product details with image, name, price, and actions.",
		Build:       productCard,
	},
}

// LookupTemplate returns the starter design registered under name.
func LookupTemplate(name string) (Template, bool) {
	t, ok := templates[name]
	return t, ok
}

// Templates lists the starter designs by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func productCard() *Bubble {
	star := func(url string) Component { return &Icon{URL: url, Size: "sm"} }
	return &Bubble{
		Hero: &Image{
			URL:         "https://picsum.photos/seed/product/600/400",
			Size:        "full",
			AspectRatio: "20:13",
			AspectMode:  "cover",
		},
		Body: &Box{
			Layout:  "vertical",
			Spacing: "md",
			Contents: []Component{
				&Text{Text: "Product Name", Weight: "bold", Size: "xl"},
				&Box{
					Layout:  "baseline",
					Margin:  "md",
					Spacing: "sm",
					Contents: []Component{
						star(starGold), star(starGold), star(starGold), star(starGold), star(starGray),
						&Text{Text: "4.0", Size: "sm", Color: "#999999", Margin: "md", Flex: IntPtr(0)},
					},
				},
				&Box{
					Layout:  "vertical",
					Margin:  "lg",
					Spacing: "sm",
					Contents: []Component{
						&Box{
							Layout:  "baseline",
							Spacing: "sm",
							Contents: []Component{
								&Text{Text: "$19.99", Weight: "bold", Size: "xl", Flex: IntPtr(0)},
								&Text{Text: "$29.99", Decoration: "line-through", Size: "sm", Color: "#aaaaaa", Flex: IntPtr(0)},
							},
						},
						&Text{Text: "Limited time offer!", Color: "#ff0000", Size: "xs"},
					},
				},
			},
		},
		Footer: &Box{
			Layout:  "vertical",
			Spacing: "sm",
			Flex:    IntPtr(0),
			Contents: []Component{
				&Button{Style: "primary", Height: "sm", Action: &Action{Type: ActionPostback, Label: "Add to Cart", Data: "action=add_cart&item_id=123"}},
				&Button{Style: "link", Height: "sm", Action: &Action{Type: ActionURI, Label: "View Details", URI: "https://example.com/product/123"}},
			},
		},
	}
}
