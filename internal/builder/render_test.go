package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseRendered(t *testing.T, out string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)
	return root
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func byDataElement(kind string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "data-element") == kind
	}
}

func TestRenderHTMLBasicPage(t *testing.T) {
	doc := Document{
		Title: "Spring Launch",
		GlobalStyles: GlobalStyles{
			FontFamily:      "Arial, sans-serif",
			BackgroundColor: "#f9fafb",
		},
	}
	doc, _ = AddElement(doc, TypeHeading)
	doc, _ = AddElement(doc, TypeButton)

	out := RenderHTML(doc)
	root := parseRendered(t, out)

	titles := findAll(root, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "title" })
	require.Len(t, titles, 1)
	assert.Equal(t, "Spring Launch", titles[0].FirstChild.Data)

	bodies := findAll(root, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "body" })
	require.Len(t, bodies, 1)
	assert.Contains(t, attr(bodies[0], "style"), "font-family:Arial, sans-serif")
	assert.Contains(t, attr(bodies[0], "style"), "background-color:#f9fafb")

	require.Len(t, findAll(root, byDataElement("heading")), 1)
	require.Len(t, findAll(root, byDataElement("button")), 1)
}

func TestRenderContainerChildrenNotDuplicated(t *testing.T) {
	doc := Document{}
	doc, containerID := AddElement(doc, TypeContainer)
	doc, childID := AddElementToContainer(doc, TypeText, containerID)
	doc = UpdateElement(doc, childID, Patch{Content: map[string]interface{}{"text": "only once"}})

	out := RenderHTML(doc)
	root := parseRendered(t, out)

	texts := findAll(root, byDataElement("text"))
	require.Len(t, texts, 1, "container child renders inside the container only")

	containers := findAll(root, byDataElement("container"))
	require.Len(t, containers, 1)
	nested := findAll(containers[0], byDataElement("text"))
	assert.Len(t, nested, 1)
}

func TestRenderEmptyContainerPlaceholder(t *testing.T) {
	doc := Document{}
	doc, _ = AddElement(doc, TypeContainer)

	out := RenderHTML(doc)
	assert.Contains(t, out, PlaceholderTitle)
	assert.Contains(t, out, PlaceholderHint)

	root := parseRendered(t, out)
	containers := findAll(root, byDataElement("container"))
	require.Len(t, containers, 1)
	assert.Empty(t, findAll(containers[0], func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "data-element") != "" && n != containers[0]
	}), "zero child element nodes")
}

func TestRenderSkipsDanglingChildren(t *testing.T) {
	doc := Document{}
	doc, containerID := AddElement(doc, TypeContainer)
	doc, a := AddElementToContainer(doc, TypeText, containerID)
	doc, b := AddElementToContainer(doc, TypeButton, containerID)
	doc = DeleteElement(doc, a)

	require.Equal(t, []ElementID{a, b}, doc.Find(containerID).Children())

	out := RenderHTML(doc)
	root := parseRendered(t, out)

	assert.Empty(t, findAll(root, byDataElement("text")))
	assert.Len(t, findAll(root, byDataElement("button")), 1)
}

func TestRenderEscapesUserContent(t *testing.T) {
	doc := Document{}
	doc, id := AddElement(doc, TypeHeading)
	doc = UpdateElement(doc, id, Patch{Content: map[string]interface{}{"text": `<script>alert("x")</script>`}})

	out := RenderHTML(doc)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderBackgroundImageOverlay(t *testing.T) {
	doc := Document{}
	doc, id := AddElement(doc, TypeImage)
	doc = UpdateElement(doc, id, Patch{Content: map[string]interface{}{
		"isBackground": true,
		"src":          "https://example.com/hero.jpg",
		"overlayText":  "Big Sale",
	}})

	out := RenderHTML(doc)
	root := parseRendered(t, out)

	imgs := findAll(root, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "img" })
	assert.Empty(t, imgs, "background mode renders no img tag")

	divs := findAll(root, byDataElement("image"))
	require.Len(t, divs, 1)
	assert.Contains(t, attr(divs[0], "style"), "background-image:url(https://example.com/hero.jpg)")

	spans := findAll(divs[0], func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "span" })
	require.Len(t, spans, 1)
	assert.Equal(t, "Big Sale", spans[0].FirstChild.Data)
}

func TestRenderFormFields(t *testing.T) {
	doc := Document{}
	doc, _ = AddElement(doc, TypeForm)

	out := RenderHTML(doc)
	root := parseRendered(t, out)

	forms := findAll(root, byDataElement("form"))
	require.Len(t, forms, 1)
	inputs := findAll(forms[0], func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "input" })
	require.Len(t, inputs, 1)
	assert.Equal(t, "email", attr(inputs[0], "type"))
	assert.Equal(t, "Enter your email", attr(inputs[0], "placeholder"))

	buttons := findAll(forms[0], func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "button" })
	require.Len(t, buttons, 1)
	assert.Equal(t, "Subscribe", buttons[0].FirstChild.Data)
}

func TestRenderSurvivesReferenceCycle(t *testing.T) {
	doc := Document{Elements: []Element{
		{ID: "a", Type: TypeContainer, Content: ContainerContent{Children: []ElementID{"b"}}},
		{ID: "b", Type: TypeContainer, Content: ContainerContent{Children: []ElementID{"a"}}},
	}}

	out := RenderHTML(doc)
	assert.NotEmpty(t, out)
}

func TestRenderFragmentHasNoPageShell(t *testing.T) {
	doc := Document{}
	doc, _ = AddElement(doc, TypeText)

	out := RenderFragment(doc)
	assert.NotContains(t, out, "<html")
	assert.NotContains(t, out, "<body")
	assert.Contains(t, out, "data-element=\"text\"")
}
