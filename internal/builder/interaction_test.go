package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteDropOnCanvas(t *testing.T) {
	ed := NewEditor(Document{})

	ed.StartPaletteDrag(TypeHeading)
	require.NotNil(t, ed.Drag())
	assert.Equal(t, DragDragging, ed.Drag().Phase)

	id := ed.DropOnCanvas()
	require.NotEmpty(t, id)
	assert.Nil(t, ed.Drag(), "gesture returns to idle after drop")
	assert.Equal(t, TypeHeading, ed.Document().Find(id).Type)
}

func TestPaletteDropIntoContainer(t *testing.T) {
	ed := NewEditor(Document{})
	containerID := ed.AddElement(TypeContainer)

	ed.StartPaletteDrag(TypeButton)
	ed.DragOver(containerID)
	assert.Equal(t, DragOver, ed.Drag().Phase)
	assert.Equal(t, containerID, ed.Drag().OverID)

	id := ed.DropOn(containerID)
	require.NotEmpty(t, id)
	assert.Equal(t, []ElementID{id}, ed.Document().Find(containerID).Children())
}

func TestElementDropReordersSiblings(t *testing.T) {
	ed := NewEditor(Document{})
	a := ed.AddElement(TypeHeading)
	b := ed.AddElement(TypeText)
	c := ed.AddElement(TypeButton)

	ed.StartElementDrag(a)
	ed.DragOver(c)
	ed.DropOn(c)

	assert.Equal(t, []ElementID{b, a, c}, elementIDs(ed.Document().Elements))
}

func TestElementDropIntoContainerReparents(t *testing.T) {
	ed := NewEditor(Document{})
	containerID := ed.AddElement(TypeContainer)
	textID := ed.AddElement(TypeText)

	ed.StartElementDrag(textID)
	ed.DropOn(containerID)

	assert.Equal(t, []ElementID{textID}, ed.Document().Find(containerID).Children())
	assert.Equal(t, []ElementID{containerID}, elementIDs(ed.Document().TopLevel()))
}

func TestDragLeaveAndCancel(t *testing.T) {
	ed := NewEditor(Document{})
	a := ed.AddElement(TypeText)
	b := ed.AddElement(TypeButton)

	ed.StartElementDrag(a)
	ed.DragOver(b)
	ed.DragLeave()
	assert.Equal(t, DragDragging, ed.Drag().Phase)
	assert.Empty(t, ed.Drag().OverID)

	ed.CancelDrag()
	assert.Nil(t, ed.Drag())

	// Dropping with no active gesture is a no-op.
	assert.Empty(t, ed.DropOn(b))
	assert.Equal(t, []ElementID{a, b}, elementIDs(ed.Document().Elements))
}

func TestElementDropOnCanvasDiscards(t *testing.T) {
	ed := NewEditor(Document{})
	a := ed.AddElement(TypeText)

	ed.StartElementDrag(a)
	assert.Empty(t, ed.DropOnCanvas())
	assert.Nil(t, ed.Drag())
	assert.Equal(t, []ElementID{a}, elementIDs(ed.Document().Elements))
}

func TestStartDragUnknownElementNoop(t *testing.T) {
	ed := NewEditor(Document{})
	ed.StartElementDrag("missing")
	assert.Nil(t, ed.Drag())

	ed.StartPaletteDrag(ElementType("carousel"))
	assert.Nil(t, ed.Drag())
}

func TestPointerResizeEast(t *testing.T) {
	ed := NewEditor(Document{})
	id := ed.AddElement(TypeImage)
	ed.UpdateElement(id, Patch{Styles: Styles{"width": "200px", "height": "100px"}})

	ed.StartResize(id, ResizeEast, 500, 300)
	require.NotNil(t, ed.Resizing())

	ed.ResizeMove(540, 300)
	assert.Equal(t, "240px", ed.Document().Find(id).Styles["width"])
	assert.Equal(t, "100px", ed.Document().Find(id).Styles["height"], "east handle never touches height")

	ed.EndResize()
	assert.Nil(t, ed.Resizing())
}

func TestPointerResizeClampsAtMinimum(t *testing.T) {
	ed := NewEditor(Document{})
	id := ed.AddElement(TypeImage)
	ed.UpdateElement(id, Patch{Styles: Styles{"width": "200px", "height": "100px"}})

	ed.StartResize(id, ResizeBoth, 0, 0)
	ed.ResizeMove(-1000, -1000)

	assert.Equal(t, "50px", ed.Document().Find(id).Styles["width"])
	assert.Equal(t, "50px", ed.Document().Find(id).Styles["height"])
}

func TestStartResizeCancelsPriorGesture(t *testing.T) {
	ed := NewEditor(Document{})
	a := ed.AddElement(TypeImage)
	b := ed.AddElement(TypeImage)

	ed.StartResize(a, ResizeEast, 0, 0)
	first := ed.Resizing()
	ed.StartResize(b, ResizeSouth, 0, 0)

	require.NotNil(t, ed.Resizing())
	assert.NotEqual(t, first, ed.Resizing())
	assert.Equal(t, b, ed.Resizing().ElementID)

	// Resize and drag are mutually exclusive: starting a drag clears resize.
	ed.StartElementDrag(a)
	assert.Nil(t, ed.Resizing())
	require.NotNil(t, ed.Drag())

	// And starting a resize clears an active drag.
	ed.StartResize(a, ResizeEast, 0, 0)
	assert.Nil(t, ed.Drag())
}

func TestKeyboardResizeClampsAtMinimum(t *testing.T) {
	ed := NewEditor(Document{})
	id := ed.AddElement(TypeImage)
	ed.UpdateElement(id, Patch{Styles: Styles{"width": "60px"}})
	ed.Select(id)

	for i := 0; i < 20; i++ {
		ed.KeyboardResize(AxisWidth, -1, false)
	}

	assert.Equal(t, "50px", ed.Document().Find(id).Styles["width"])
}

func TestKeyboardResizeSteps(t *testing.T) {
	ed := NewEditor(Document{})
	id := ed.AddElement(TypeImage)
	ed.UpdateElement(id, Patch{Styles: Styles{"width": "100px", "height": "80px"}})
	ed.Select(id)

	ed.KeyboardResize(AxisWidth, 1, false)
	assert.Equal(t, "101px", ed.Document().Find(id).Styles["width"])

	ed.KeyboardResize(AxisWidth, 1, true)
	assert.Equal(t, "111px", ed.Document().Find(id).Styles["width"])

	ed.KeyboardResize(AxisHeight, -1, true)
	assert.Equal(t, "70px", ed.Document().Find(id).Styles["height"])
}

func TestKeyboardResizeRequiresSelection(t *testing.T) {
	ed := NewEditor(Document{})
	id := ed.AddElement(TypeImage)
	ed.UpdateElement(id, Patch{Styles: Styles{"width": "100px"}})

	ed.KeyboardResize(AxisWidth, -1, false)
	assert.Equal(t, "100px", ed.Document().Find(id).Styles["width"])
}

func TestResizeNonPixelStartingSizeUsesFallback(t *testing.T) {
	ed := NewEditor(Document{})
	id := ed.AddElement(TypeImage) // default width "100%"
	ed.Select(id)

	ed.KeyboardResize(AxisWidth, 1, false)
	assert.Equal(t, "301px", ed.Document().Find(id).Styles["width"])
}
