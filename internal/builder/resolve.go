package builder

// Mode selects between the interactive editing render and the static
// saved/preview render. Mode only ever toggles chrome; both modes compute
// identical geometry from the same element, so nothing shifts on save.
type Mode string

const (
	ModeEdit  Mode = "edit"
	ModeSaved Mode = "saved"
)

// Hard-coded last-tier fallbacks, applied per property when neither the
// element nor its type defaults carry a value.
var hardFallbacks = Styles{
	"padding":         "10px",
	"margin":          "0",
	"width":           "auto",
	"height":          "auto",
	"backgroundColor": "transparent",
	"borderRadius":    "0",
	"fontSize":        "16px",
	"color":           "#000000",
	"fontWeight":      "normal",
	"textAlign":       "left",
	"lineHeight":      "normal",
}

// geometryProps is the set of properties resolved onto every element's outer
// box regardless of type.
var geometryProps = []string{
	"width", "height", "padding", "margin",
	"backgroundColor", "borderRadius", "border", "borderTop",
	"fontSize", "fontWeight", "color", "lineHeight", "minHeight",
	"objectFit", "boxShadow",
}

// Chrome is the edit-mode-only decoration: selection affordances and floating
// controls. Never carries layout-affecting values.
type Chrome struct {
	Selected        bool
	ShowControls    bool
	ContentEditable bool
	TypeLabel       string
	ResizeHandles   bool
}

// Resolved is the concrete render output for one element.
type Resolved struct {
	// Box holds the outer box styles after the three-tier fallback.
	Box Styles
	// Layout holds the flex layout for a container's inner wrapper; nil for
	// non-containers and for empty containers (which render the placeholder).
	Layout Styles
	// Overlay holds the overlay-text layer styles for background images.
	Overlay Styles
	// Placeholder is set when a container has no renderable children.
	Placeholder bool
	// Chrome is populated in edit mode only.
	Chrome Chrome
}

// PlaceholderTitle and PlaceholderHint are the fixed empty-container texts,
// identical in edit and saved mode.
const (
	PlaceholderTitle = "Container - Empty"
	PlaceholderHint  = "Drag elements here"
)

// resolveProp applies the three-tier fallback for a single property:
// element override, then type default, then hard-coded fallback. Each
// property resolves independently; overriding one never perturbs another.
func resolveProp(el Element, defaults Styles, key string) string {
	if v, ok := el.Styles[key]; ok && v != "" {
		return v
	}
	if v, ok := defaults[key]; ok && v != "" {
		return v
	}
	return hardFallbacks[key]
}

// Resolve computes the concrete render styles for one element. Geometry is
// identical across modes; edit mode additionally fills in Chrome.
func Resolve(el Element, doc *Document, mode Mode) Resolved {
	return resolveWithSelection(el, doc, mode, "")
}

// ResolveSelected is Resolve with the editor's current selection applied to
// the chrome layer.
func ResolveSelected(el Element, doc *Document, mode Mode, selected ElementID) Resolved {
	return resolveWithSelection(el, doc, mode, selected)
}

func resolveWithSelection(el Element, doc *Document, mode Mode, selected ElementID) Resolved {
	defaults := DefaultStyles(el.Type)
	box := Styles{}
	for _, key := range geometryProps {
		if v := resolveProp(el, defaults, key); v != "" {
			box[key] = v
		}
	}

	// Alignment is implemented via margins on the wrapper: the wrapper is
	// margin-centered and inner text may additionally carry its own textAlign.
	switch resolveProp(el, defaults, "textAlign") {
	case "center":
		box["marginLeft"] = "auto"
		box["marginRight"] = "auto"
	case "right":
		box["marginLeft"] = "auto"
		box["marginRight"] = "0"
	default:
		box["marginLeft"] = "0"
		box["marginRight"] = "0"
	}

	res := Resolved{Box: box}

	if img, ok := el.Content.(ImageContent); ok && img.IsBackground {
		res.Box["display"] = "flex"
		res.Box["backgroundImage"] = "url(" + img.Src + ")"
		res.Box["backgroundSize"] = "cover"
		res.Box["backgroundPosition"] = "center"
		res.Box["position"] = "relative"
		res.Overlay = overlayStyles(img)
	}

	if el.Type == TypeContainer {
		if len(el.Children()) == 0 {
			res.Placeholder = true
		} else {
			res.Layout = containerLayout(el)
		}
	}

	if mode == ModeEdit {
		sel := selected != "" && selected == el.ID
		res.Chrome = Chrome{
			Selected:        sel,
			ShowControls:    sel,
			ContentEditable: sel && isTextual(el.Type),
			TypeLabel:       string(el.Type),
			ResizeHandles:   sel,
		}
	}

	return res
}

func isTextual(t ElementType) bool {
	return t == TypeHeading || t == TypeText || t == TypeButton
}

// containerLayout maps ContainerStyles onto the inner wrapper so the outer
// box keeps its own border/background/padding without fighting flex layout.
func containerLayout(el Element) Styles {
	cs := el.ContainerStyles
	if cs == nil {
		d := catalog[TypeContainer].layout
		cs = d
	}
	layout := Styles{}
	set := func(key, v, fallback string) {
		if v == "" {
			v = fallback
		}
		if v != "" {
			layout[key] = v
		}
	}
	set("display", cs.Display, "flex")
	set("flexDirection", cs.FlexDirection, "row")
	set("alignItems", cs.AlignItems, "stretch")
	set("justifyContent", cs.JustifyContent, "flex-start")
	set("gap", cs.Gap, "16px")
	set("padding", cs.Padding, "")
	set("margin", cs.Margin, "")
	set("flexWrap", cs.FlexWrap, "")
	return layout
}

// overlayStyles positions the overlay-text layer of a background image per
// overlayTextAlign.
func overlayStyles(img ImageContent) Styles {
	s := Styles{
		"position": "absolute",
		"top":      "50%",
	}
	switch img.OverlayTextAlign {
	case "left":
		s["left"] = "5%"
		s["transform"] = "translateY(-50%)"
		s["textAlign"] = "left"
	case "right":
		s["right"] = "5%"
		s["transform"] = "translateY(-50%)"
		s["textAlign"] = "right"
	default:
		s["left"] = "50%"
		s["transform"] = "translate(-50%, -50%)"
		s["textAlign"] = "center"
	}
	if img.OverlayTextColor != "" {
		s["color"] = img.OverlayTextColor
	} else {
		s["color"] = "#ffffff"
	}
	if img.OverlayFontSize != "" {
		s["fontSize"] = img.OverlayFontSize
	} else {
		s["fontSize"] = "32px"
	}
	return s
}
