package builder

import (
	"encoding/json"
	"fmt"
)

// ElementType is the closed set of element kinds the builder knows about.
type ElementType string

const (
	TypeHeading   ElementType = "heading"
	TypeText      ElementType = "text"
	TypeButton    ElementType = "button"
	TypeImage     ElementType = "image"
	TypeForm      ElementType = "form"
	TypeDivider   ElementType = "divider"
	TypeContainer ElementType = "container"
)

// KnownType reports whether t is one of the supported element types.
func KnownType(t ElementType) bool {
	switch t {
	case TypeHeading, TypeText, TypeButton, TypeImage, TypeForm, TypeDivider, TypeContainer:
		return true
	}
	return false
}

// Content is the type-dependent payload of an element. Exactly one variant
// exists per ElementType; the variant is selected by the element's type tag
// during JSON decoding.
type Content interface {
	contentType() ElementType
}

// HeadingContent is the payload for heading elements. Level is the HTML
// heading tag name ("h1".."h6").
type HeadingContent struct {
	Text  string `json:"text"`
	Level string `json:"level,omitempty"`
}

func (HeadingContent) contentType() ElementType { return TypeHeading }

// TextContent is the payload for paragraph text elements.
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) contentType() ElementType { return TypeText }

// ButtonContent is the payload for button elements.
type ButtonContent struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

func (ButtonContent) contentType() ElementType { return TypeButton }

// ImageContent is the payload for image elements. When IsBackground is set the
// image renders as a flex box with a background image and an optional overlay
// text layer instead of a plain img tag.
type ImageContent struct {
	Src              string `json:"src"`
	Alt              string `json:"alt"`
	IsBackground     bool   `json:"isBackground"`
	OverlayText      string `json:"overlayText,omitempty"`
	OverlayTextAlign string `json:"overlayTextAlign,omitempty"` // left | center | right
	OverlayTextColor string `json:"overlayTextColor,omitempty"`
	OverlayFontSize  string `json:"overlayFontSize,omitempty"`
}

func (ImageContent) contentType() ElementType { return TypeImage }

// FormField is a single input definition inside a form element.
type FormField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// FormContent is the payload for form elements.
type FormContent struct {
	Fields     []FormField `json:"fields"`
	SubmitText string      `json:"submitText"`
}

func (FormContent) contentType() ElementType { return TypeForm }

// DividerContent is the (empty) payload for divider elements.
type DividerContent struct{}

func (DividerContent) contentType() ElementType { return TypeDivider }

// ContainerContent holds ordered id references to the container's children.
// A container never owns nested elements; children live in the document's flat
// element list and are pulled in by id at render time.
type ContainerContent struct {
	Children []ElementID `json:"children"`
}

func (ContainerContent) contentType() ElementType { return TypeContainer }

// decodeContent unmarshals a raw content payload into the variant matching t.
// A missing/null payload yields the zero variant for the type.
func decodeContent(t ElementType, raw json.RawMessage) (Content, error) {
	blank := len(raw) == 0 || string(raw) == "null"
	switch t {
	case TypeHeading:
		var c HeadingContent
		if !blank {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	case TypeText:
		var c TextContent
		if !blank {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	case TypeButton:
		var c ButtonContent
		if !blank {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	case TypeImage:
		var c ImageContent
		if !blank {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	case TypeForm:
		var c FormContent
		if !blank {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	case TypeDivider:
		return DividerContent{}, nil
	case TypeContainer:
		var c ContainerContent
		if !blank {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
	return nil, fmt.Errorf("builder: unknown element type %q", t)
}
