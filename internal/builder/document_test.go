package builder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleElementsJSON = `[
	{"id":"heading-1","type":"heading","content":{"text":"Welcome","level":"h2"},"styles":{"color":"#111111"}},
	{"id":"text-1","type":"text","content":{"text":"Hello there"}}
]`

func elementIDs(els []Element) []ElementID {
	out := make([]ElementID, len(els))
	for i, e := range els {
		out[i] = e.ID
	}
	return out
}

func TestParseContentShapes(t *testing.T) {
	wrapped := `{"elements":` + sampleElementsJSON + `}`
	asString, err := json.Marshal(wrapped)
	require.NoError(t, err)
	arrayAsString, err := json.Marshal(sampleElementsJSON)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"object with elements", wrapped},
		{"bare array", sampleElementsJSON},
		{"string-encoded object", string(asString)},
		{"string-encoded array", string(arrayAsString)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			els, err := ParseContent([]byte(tt.raw))
			require.NoError(t, err)
			require.Len(t, els, 2)
			assert.Equal(t, []ElementID{"heading-1", "text-1"}, elementIDs(els))

			h, ok := els[0].Content.(HeadingContent)
			require.True(t, ok)
			assert.Equal(t, "Welcome", h.Text)
			assert.Equal(t, "h2", h.Level)
			assert.Equal(t, "#111111", els[0].Styles["color"])
		})
	}
}

func TestParseContentSingleElement(t *testing.T) {
	els, err := ParseContent([]byte(`{"id":"button-1","type":"button","content":{"text":"Go","href":"https://example.com"}}`))
	require.NoError(t, err)
	require.Len(t, els, 1)
	b, ok := els[0].Content.(ButtonContent)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", b.Href)
}

func TestParseContentGarbage(t *testing.T) {
	for _, raw := range []string{
		`not json at all`,
		`12345`,
		`{"foo":"bar"}`,
		`true`,
	} {
		els, err := ParseContent([]byte(raw))
		assert.NotNil(t, els, "input %q", raw)
		assert.Empty(t, els, "input %q", raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestParseContentEmpty(t *testing.T) {
	els, err := ParseContent(nil)
	require.NoError(t, err)
	assert.Empty(t, els)

	els, err = ParseContent([]byte(`""`))
	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestParseContentSkipsBrokenEntries(t *testing.T) {
	raw := `[{"id":"a","type":"text","content":{"text":"ok"}},{"id":"b","type":"hologram"}]`
	els, err := ParseContent([]byte(raw))
	assert.Error(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, ElementID("a"), els[0].ID)
}

func TestEncodeContentRoundTrip(t *testing.T) {
	els, err := ParseContent([]byte(sampleElementsJSON))
	require.NoError(t, err)

	encoded, err := EncodeContent(els)
	require.NoError(t, err)

	again, err := ParseContent(encoded)
	require.NoError(t, err)
	assert.Equal(t, els, again)
}

func TestEncodeContentNil(t *testing.T) {
	encoded, err := EncodeContent(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"elements":[]}`, string(encoded))
}

func TestTopLevelFiltersContainerChildren(t *testing.T) {
	doc := Document{Elements: []Element{
		{ID: "h", Type: TypeHeading, Content: HeadingContent{Text: "x"}},
		{ID: "c", Type: TypeContainer, Content: ContainerContent{Children: []ElementID{"t"}}},
		{ID: "t", Type: TypeText, Content: TextContent{Text: "inside"}},
	}}
	top := doc.TopLevel()
	assert.Equal(t, []ElementID{"h", "c"}, elementIDs(top))
}

func TestResolveChildrenSkipsDangling(t *testing.T) {
	doc := Document{Elements: []Element{
		{ID: "c", Type: TypeContainer, Content: ContainerContent{Children: []ElementID{"gone", "t"}}},
		{ID: "t", Type: TypeText, Content: TextContent{Text: "inside"}},
	}}
	children := doc.ResolveChildren(*doc.Find("c"))
	require.Len(t, children, 1)
	assert.Equal(t, ElementID("t"), children[0].ID)
}

func TestElementJSONRoundTripAllTypes(t *testing.T) {
	doc := Document{}
	for _, tt := range []ElementType{
		TypeHeading, TypeText, TypeButton, TypeImage, TypeForm, TypeDivider, TypeContainer,
	} {
		doc, _ = AddElement(doc, tt)
	}
	raw, err := json.Marshal(doc.Elements)
	require.NoError(t, err)

	var decoded []Element
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, doc.Elements, decoded)
}

func TestDocumentCloneIsolation(t *testing.T) {
	doc := Document{Elements: []Element{
		{ID: "c", Type: TypeContainer, Content: ContainerContent{Children: []ElementID{"a"}}, Styles: Styles{"padding": "4px"}},
		{ID: "a", Type: TypeText, Content: TextContent{Text: "x"}},
	}}
	cp := doc.Clone()
	cp.Elements[0].Styles["padding"] = "99px"
	cc := cp.Elements[0].Content.(ContainerContent)
	cc.Children[0] = "b"

	assert.Equal(t, "4px", doc.Elements[0].Styles["padding"])
	assert.Equal(t, ElementID("a"), doc.Elements[0].Children()[0])
}
