package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocWith(types ...ElementType) (Document, []ElementID) {
	doc := Document{}
	ids := make([]ElementID, 0, len(types))
	for _, t := range types {
		var id ElementID
		doc, id = AddElement(doc, t)
		ids = append(ids, id)
	}
	return doc, ids
}

func TestAddElementAppends(t *testing.T) {
	doc, ids := newDocWith(TypeHeading, TypeText)
	require.Len(t, doc.Elements, 2)
	assert.Equal(t, ids[0], doc.Elements[0].ID)
	assert.Equal(t, ids[1], doc.Elements[1].ID)
}

func TestAddElementUnknownTypeNoop(t *testing.T) {
	doc, _ := newDocWith(TypeHeading)
	next, id := AddElement(doc, ElementType("carousel"))
	assert.Empty(t, id)
	assert.Equal(t, doc, next)
}

func TestAddElementToContainer(t *testing.T) {
	doc, ids := newDocWith(TypeContainer)
	containerID := ids[0]

	doc, childID := AddElementToContainer(doc, TypeButton, containerID)
	require.NotEmpty(t, childID)

	// Present exactly once in the container's children.
	children := doc.Find(containerID).Children()
	require.Equal(t, []ElementID{childID}, children)

	// Present exactly once in the flat element list.
	count := 0
	for _, e := range doc.Elements {
		if e.ID == childID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Absent from the top-level render filter.
	for _, e := range doc.TopLevel() {
		assert.NotEqual(t, childID, e.ID)
	}
}

func TestAddElementToContainerNonContainerNoop(t *testing.T) {
	doc, ids := newDocWith(TypeText)
	next, childID := AddElementToContainer(doc, TypeButton, ids[0])
	assert.Empty(t, childID)
	assert.Equal(t, doc, next)

	next, childID = AddElementToContainer(doc, TypeButton, "missing")
	assert.Empty(t, childID)
	assert.Equal(t, doc, next)
}

func TestUpdateElementShallowMergesContent(t *testing.T) {
	doc, ids := newDocWith(TypeHeading)
	doc = UpdateElement(doc, ids[0], Patch{Content: map[string]interface{}{"text": "New headline"}})

	h, ok := doc.Find(ids[0]).Content.(HeadingContent)
	require.True(t, ok)
	assert.Equal(t, "New headline", h.Text)
	assert.Equal(t, "h1", h.Level, "untouched content field survives the patch")
}

func TestUpdateElementShallowMergesStyles(t *testing.T) {
	doc, ids := newDocWith(TypeButton)
	doc = UpdateElement(doc, ids[0], Patch{Styles: Styles{"color": "#000000"}})

	el := doc.Find(ids[0])
	assert.Equal(t, "#000000", el.Styles["color"])
	assert.Equal(t, "#3b82f6", el.Styles["backgroundColor"], "untouched style survives the patch")
}

func TestUpdateElementUnknownIDNoop(t *testing.T) {
	doc, _ := newDocWith(TypeText)
	next := UpdateElement(doc, "missing", Patch{Styles: Styles{"color": "red"}})
	assert.Equal(t, doc, next)
}

func TestUpdateElementObserver(t *testing.T) {
	doc, ids := newDocWith(TypeText)
	ed := NewEditor(doc)

	var gotID ElementID
	ed.OnFieldUpdate(func(id ElementID, _ Patch) { gotID = id })
	ed.UpdateElement(ids[0], Patch{Content: map[string]interface{}{"text": "observed"}})
	assert.Equal(t, ids[0], gotID)

	// An unknown id is a no-op and must not reach the observer.
	gotID = ""
	ed.UpdateElement("missing", Patch{Styles: Styles{"color": "red"}})
	assert.Empty(t, gotID)
}

func TestEditorDocumentValueLookups(t *testing.T) {
	doc, ids := newDocWith(TypeHeading, TypeText)
	ed := NewEditor(doc)

	// Lookups work directly on the returned document value.
	assert.Equal(t, TypeHeading, ed.Document().Find(ids[0]).Type)
	assert.Equal(t, ids, elementIDs(ed.Document().TopLevel()))
}

func TestDeleteElementDoesNotCascade(t *testing.T) {
	doc, ids := newDocWith(TypeContainer)
	containerID := ids[0]
	doc, a := AddElementToContainer(doc, TypeText, containerID)
	doc, bID := AddElementToContainer(doc, TypeButton, containerID)

	doc = DeleteElement(doc, a)

	// A is gone from the flat list.
	assert.Nil(t, doc.Find(a))
	// The container still holds the stale reference.
	assert.Equal(t, []ElementID{a, bID}, doc.Find(containerID).Children())
	// Render-time child resolution skips it silently.
	children := doc.ResolveChildren(*doc.Find(containerID))
	require.Len(t, children, 1)
	assert.Equal(t, bID, children[0].ID)
}

func TestDeleteElementUnknownIDNoop(t *testing.T) {
	doc, _ := newDocWith(TypeText)
	next := DeleteElement(doc, "missing")
	assert.Equal(t, doc, next)
}

func TestReorderElementsInverse(t *testing.T) {
	doc, ids := newDocWith(TypeHeading, TypeText, TypeButton)
	original := elementIDs(doc.Elements)

	moved := ReorderElements(doc, ids[0], ids[2])
	assert.NotEqual(t, original, elementIDs(moved.Elements))

	restored := ReorderElements(moved, ids[0], ids[1])
	assert.Equal(t, original, elementIDs(restored.Elements))
}

func TestReorderElementsRejectsNestedIDs(t *testing.T) {
	doc, ids := newDocWith(TypeContainer, TypeText)
	doc, nested := AddElementToContainer(doc, TypeButton, ids[0])

	next := ReorderElements(doc, nested, ids[1])
	assert.Equal(t, elementIDs(doc.Elements), elementIDs(next.Elements))
}

func TestReparentIntoContainer(t *testing.T) {
	doc, ids := newDocWith(TypeContainer, TypeText)
	doc = ReparentIntoContainer(doc, ids[1], ids[0])

	assert.Equal(t, []ElementID{ids[1]}, doc.Find(ids[0]).Children())
	// The reparented element no longer renders at top level.
	assert.Equal(t, []ElementID{ids[0]}, elementIDs(doc.TopLevel()))

	// Reparenting again is idempotent.
	again := ReparentIntoContainer(doc, ids[1], ids[0])
	assert.Equal(t, []ElementID{ids[1]}, again.Find(ids[0]).Children())
}

func TestReparentInvalidTargetsNoop(t *testing.T) {
	doc, ids := newDocWith(TypeContainer, TypeText)
	assert.Equal(t, doc, ReparentIntoContainer(doc, "missing", ids[0]))
	assert.Equal(t, doc, ReparentIntoContainer(doc, ids[1], "missing"))
	assert.Equal(t, doc, ReparentIntoContainer(doc, ids[1], ids[1]))
}

func TestEditorSelection(t *testing.T) {
	doc, ids := newDocWith(TypeText)
	ed := NewEditor(doc)

	ed.Select(ids[0])
	assert.Equal(t, ids[0], ed.Selected())

	ed.Select("missing")
	assert.Empty(t, ed.Selected())

	ed.Select(ids[0])
	ed.DeleteElement(ids[0])
	assert.Empty(t, ed.Selected(), "deleting the selected element clears selection")
}

func TestMutationsProduceNewValues(t *testing.T) {
	doc, ids := newDocWith(TypeHeading, TypeText)
	before := elementIDs(doc.Elements)

	_ = UpdateElement(doc, ids[0], Patch{Styles: Styles{"color": "#ff0000"}})
	_ = DeleteElement(doc, ids[1])
	_ = ReorderElements(doc, ids[0], ids[1])

	assert.Equal(t, before, elementIDs(doc.Elements), "input document is never mutated")
	assert.NotEqual(t, "#ff0000", doc.Find(ids[0]).Styles["color"])
}
