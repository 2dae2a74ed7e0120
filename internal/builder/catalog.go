package builder

import (
	"fmt"
	"sync/atomic"
	"time"
)

// elementDefaults is the template catalog: the default content and styles an
// element of each type starts with. Resolution falls back to these per
// property, so the stored document only ever carries overrides.
type elementDefaults struct {
	content func() Content
	styles  Styles
	layout  *ContainerStyles
}

var catalog = map[ElementType]elementDefaults{
	TypeHeading: {
		content: func() Content { return HeadingContent{Text: "Your Heading Here", Level: "h1"} },
		styles: Styles{
			"fontSize":   "48px",
			"fontWeight": "bold",
			"color":      "#1f2937",
			"textAlign":  "center",
			"padding":    "10px",
			"width":      "auto",
		},
	},
	TypeText: {
		content: func() Content { return TextContent{Text: "Add your text here. Click to edit."} },
		styles: Styles{
			"fontSize":   "16px",
			"color":      "#4b5563",
			"lineHeight": "1.6",
			"textAlign":  "left",
			"padding":    "10px",
		},
	},
	TypeButton: {
		content: func() Content { return ButtonContent{Text: "Click Me", Href: "#"} },
		styles: Styles{
			"backgroundColor": "#3b82f6",
			"color":           "#ffffff",
			"fontSize":        "16px",
			"fontWeight":      "600",
			"padding":         "12px 32px",
			"borderRadius":    "9999px",
			"textAlign":       "center",
			"width":           "auto",
		},
	},
	TypeImage: {
		content: func() Content {
			return ImageContent{Src: "https://placehold.co/600x300", Alt: "Placeholder image"}
		},
		styles: Styles{
			"width":        "100%",
			"height":       "auto",
			"objectFit":    "cover",
			"borderRadius": "0",
		},
	},
	TypeForm: {
		content: func() Content {
			return FormContent{
				Fields: []FormField{
					{Name: "email", Type: "email", Placeholder: "Enter your email", Required: true},
				},
				SubmitText: "Subscribe",
			}
		},
		styles: Styles{
			"backgroundColor": "#f9fafb",
			"padding":         "24px",
			"borderRadius":    "8px",
			"width":           "100%",
		},
	},
	TypeDivider: {
		content: func() Content { return DividerContent{} },
		styles: Styles{
			"borderTop": "1px solid #e5e7eb",
			"margin":    "20px 0",
			"width":     "100%",
		},
	},
	TypeContainer: {
		content: func() Content { return ContainerContent{Children: []ElementID{}} },
		styles: Styles{
			"border":       "2px dashed #d1d5db",
			"borderRadius": "8px",
			"padding":      "16px",
			"minHeight":    "100px",
			"width":        "100%",
		},
		layout: &ContainerStyles{
			Display:        "flex",
			FlexDirection:  "row",
			AlignItems:     "stretch",
			JustifyContent: "flex-start",
			Gap:            "16px",
		},
	},
}

// DefaultStyles returns a copy of the catalog styles for a type (nil for
// unknown types). Used by the resolver's middle fallback tier.
func DefaultStyles(t ElementType) Styles {
	d, ok := catalog[t]
	if !ok {
		return nil
	}
	return d.styles.Clone()
}

// DefaultContent returns a fresh default content value for a type.
func DefaultContent(t ElementType) (Content, bool) {
	d, ok := catalog[t]
	if !ok {
		return nil, false
	}
	return d.content(), true
}

var idSeq atomic.Uint64

// NewElementID generates a document-unique id from creation time plus type.
// The sequence suffix keeps ids distinct within a single millisecond.
func NewElementID(t ElementType) ElementID {
	return ElementID(fmt.Sprintf("%s-%d-%d", t, time.Now().UnixMilli(), idSeq.Add(1)))
}

// Instantiate creates a new element of the given type with a fresh id and the
// catalog defaults. Returns false for unknown types. No side effects beyond id
// generation.
func Instantiate(t ElementType) (Element, bool) {
	d, ok := catalog[t]
	if !ok {
		return Element{}, false
	}
	el := Element{
		ID:      NewElementID(t),
		Type:    t,
		Content: d.content(),
		Styles:  d.styles.Clone(),
	}
	if d.layout != nil {
		layout := *d.layout
		el.ContainerStyles = &layout
	}
	return el, true
}
