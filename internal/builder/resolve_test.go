package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallbackIndependence(t *testing.T) {
	el := Element{
		ID:      "t1",
		Type:    TypeText,
		Content: TextContent{Text: "x"},
		Styles:  Styles{"color": "red"},
	}
	res := Resolve(el, nil, ModeSaved)

	assert.Equal(t, "red", res.Box["color"])

	defaults := DefaultStyles(TypeText)
	assert.Equal(t, defaults["fontSize"], res.Box["fontSize"])
	assert.Equal(t, defaults["lineHeight"], res.Box["lineHeight"])
	assert.Equal(t, defaults["padding"], res.Box["padding"])

	// Unset at both tiers: hard-coded fallback kicks in.
	assert.Equal(t, "auto", res.Box["width"])
	assert.Equal(t, "0", res.Box["borderRadius"])
}

func TestResolvePerPropertyNotObjectSpread(t *testing.T) {
	plain := Element{ID: "a", Type: TypeHeading, Content: HeadingContent{Text: "x"}}
	overridden := plain
	overridden.Styles = Styles{"color": "red"}

	a := Resolve(plain, nil, ModeSaved)
	b := Resolve(overridden, nil, ModeSaved)

	for key, v := range a.Box {
		if key == "color" {
			continue
		}
		assert.Equal(t, v, b.Box[key], "overriding color must not perturb %s", key)
	}
}

func TestResolveGeometryParityAcrossModes(t *testing.T) {
	doc, _ := newDocWith(TypeHeading, TypeText, TypeButton, TypeImage, TypeForm, TypeDivider, TypeContainer)
	doc, _ = AddElementToContainer(doc, TypeText, doc.Elements[6].ID)

	for _, el := range doc.Elements {
		edit := Resolve(el, &doc, ModeEdit)
		saved := Resolve(el, &doc, ModeSaved)

		assert.Equal(t, saved.Box, edit.Box, "box geometry for %s", el.Type)
		assert.Equal(t, saved.Layout, edit.Layout, "layout for %s", el.Type)
		assert.Equal(t, saved.Overlay, edit.Overlay, "overlay for %s", el.Type)
		assert.Equal(t, saved.Placeholder, edit.Placeholder, "placeholder for %s", el.Type)

		// Only chrome differs, and saved mode carries none.
		assert.Equal(t, Chrome{}, saved.Chrome)
	}
}

func TestResolveAlignmentViaMargins(t *testing.T) {
	base := Element{ID: "x", Type: TypeText, Content: TextContent{Text: "x"}}

	center := base
	center.Styles = Styles{"textAlign": "center"}
	res := Resolve(center, nil, ModeSaved)
	assert.Equal(t, "auto", res.Box["marginLeft"])
	assert.Equal(t, "auto", res.Box["marginRight"])

	right := base
	right.Styles = Styles{"textAlign": "right"}
	res = Resolve(right, nil, ModeSaved)
	assert.Equal(t, "auto", res.Box["marginLeft"])
	assert.Equal(t, "0", res.Box["marginRight"])

	left := base
	left.Styles = Styles{"textAlign": "left"}
	res = Resolve(left, nil, ModeSaved)
	assert.Equal(t, "0", res.Box["marginLeft"])
	assert.Equal(t, "0", res.Box["marginRight"])
}

func TestResolveBackgroundImage(t *testing.T) {
	el := Element{
		ID:   "img",
		Type: TypeImage,
		Content: ImageContent{
			Src:              "https://example.com/bg.jpg",
			IsBackground:     true,
			OverlayText:      "Sale",
			OverlayTextAlign: "right",
			OverlayTextColor: "#fafafa",
		},
	}
	res := Resolve(el, nil, ModeSaved)

	assert.Equal(t, "flex", res.Box["display"])
	assert.Equal(t, "url(https://example.com/bg.jpg)", res.Box["backgroundImage"])
	require.NotNil(t, res.Overlay)
	assert.Equal(t, "absolute", res.Overlay["position"])
	assert.Equal(t, "5%", res.Overlay["right"])
	assert.Equal(t, "#fafafa", res.Overlay["color"])
}

func TestResolveForegroundImage(t *testing.T) {
	el := Element{
		ID:      "img",
		Type:    TypeImage,
		Content: ImageContent{Src: "https://example.com/a.jpg"},
	}
	res := Resolve(el, nil, ModeSaved)

	assert.Nil(t, res.Overlay)
	assert.NotContains(t, res.Box, "backgroundImage")
	assert.Equal(t, "cover", res.Box["objectFit"])
}

func TestResolveContainerLayoutSplit(t *testing.T) {
	el, _ := Instantiate(TypeContainer)
	cc := el.Content.(ContainerContent)
	cc.Children = []ElementID{"child"}
	el.Content = cc
	el.ContainerStyles = &ContainerStyles{
		Display:        "flex",
		FlexDirection:  "column",
		Gap:            "8px",
		JustifyContent: "center",
	}
	doc := Document{Elements: []Element{el, {ID: "child", Type: TypeText, Content: TextContent{Text: "x"}}}}

	res := Resolve(el, &doc, ModeSaved)

	// Flex layout lives on the inner wrapper, not the outer box.
	assert.Equal(t, "column", res.Layout["flexDirection"])
	assert.Equal(t, "8px", res.Layout["gap"])
	assert.Equal(t, "center", res.Layout["justifyContent"])
	assert.NotContains(t, res.Box, "flexDirection")
	assert.NotContains(t, res.Box, "gap")

	// The outer box keeps its own box model.
	assert.Equal(t, "2px dashed #d1d5db", res.Box["border"])
	assert.Equal(t, "16px", res.Box["padding"])
}

func TestResolveEmptyContainerPlaceholder(t *testing.T) {
	el, _ := Instantiate(TypeContainer)
	doc := Document{Elements: []Element{el}}

	for _, mode := range []Mode{ModeEdit, ModeSaved} {
		res := Resolve(el, &doc, mode)
		assert.True(t, res.Placeholder, "mode %s", mode)
		assert.Nil(t, res.Layout, "mode %s", mode)
	}
}

func TestResolveChromeOnlyInEditMode(t *testing.T) {
	doc, ids := newDocWith(TypeHeading)

	saved := ResolveSelected(doc.Elements[0], &doc, ModeSaved, ids[0])
	assert.Equal(t, Chrome{}, saved.Chrome)

	edit := ResolveSelected(doc.Elements[0], &doc, ModeEdit, ids[0])
	assert.True(t, edit.Chrome.Selected)
	assert.True(t, edit.Chrome.ShowControls)
	assert.True(t, edit.Chrome.ContentEditable)
	assert.True(t, edit.Chrome.ResizeHandles)
	assert.Equal(t, "heading", edit.Chrome.TypeLabel)

	unselected := ResolveSelected(doc.Elements[0], &doc, ModeEdit, "")
	assert.False(t, unselected.Chrome.Selected)
	assert.False(t, unselected.Chrome.ContentEditable)
	assert.Equal(t, "heading", unselected.Chrome.TypeLabel)
}
