package builder

import (
	"strconv"
	"strings"
)

// DragKind distinguishes the two drop contracts: dragging a palette type onto
// the canvas versus dragging an existing element onto another element.
type DragKind int

const (
	DragPalette DragKind = iota
	DragElement
)

// DragPhase is the lifecycle of one drag gesture.
type DragPhase int

const (
	DragIdle DragPhase = iota
	DragDragging
	DragOver
)

// DragGesture tracks one in-flight drag. The editor holds at most one; a new
// gesture implicitly cancels the prior.
type DragGesture struct {
	Kind        DragKind
	Phase       DragPhase
	SourceID    ElementID   // element drags
	PaletteType ElementType // palette drags
	OverID      ElementID
}

// StartElementDrag begins dragging an existing element. No-op for unknown ids.
func (ed *Editor) StartElementDrag(id ElementID) {
	if ed.doc.Find(id) == nil {
		return
	}
	ed.resize = nil
	ed.drag = &DragGesture{Kind: DragElement, Phase: DragDragging, SourceID: id}
}

// StartPaletteDrag begins dragging a new element type from the palette.
func (ed *Editor) StartPaletteDrag(t ElementType) {
	if !KnownType(t) {
		return
	}
	ed.resize = nil
	ed.drag = &DragGesture{Kind: DragPalette, Phase: DragDragging, PaletteType: t}
}

// DragOver records the current drop target while a drag is active.
func (ed *Editor) DragOver(target ElementID) {
	if ed.drag == nil {
		return
	}
	ed.drag.Phase = DragOver
	ed.drag.OverID = target
}

// DragLeave clears the hover target without ending the gesture.
func (ed *Editor) DragLeave() {
	if ed.drag == nil {
		return
	}
	ed.drag.Phase = DragDragging
	ed.drag.OverID = ""
}

// Drag returns the active drag gesture, or nil when idle.
func (ed *Editor) Drag() *DragGesture { return ed.drag }

// CancelDrag abandons the gesture without touching the document.
func (ed *Editor) CancelDrag() { ed.drag = nil }

// DropOnCanvas completes a palette drag at canvas level: the new element is
// appended at document top level. Element drags dropped on empty canvas are
// discarded (no reorder target). Returns the created element id, if any.
func (ed *Editor) DropOnCanvas() ElementID {
	g := ed.drag
	ed.drag = nil
	if g == nil {
		return ""
	}
	if g.Kind == DragPalette {
		return ed.AddElement(g.PaletteType)
	}
	return ""
}

// DropOn completes the gesture on a target element. Palette drops append into
// the target when it is a container, otherwise at top level. Element drops
// reparent into container targets and reorder top-level siblings otherwise.
func (ed *Editor) DropOn(target ElementID) ElementID {
	g := ed.drag
	ed.drag = nil
	if g == nil {
		return ""
	}
	t := ed.doc.Find(target)
	if t == nil {
		return ""
	}

	if g.Kind == DragPalette {
		if t.Type == TypeContainer {
			return ed.AddElementToContainer(g.PaletteType, target)
		}
		return ed.AddElement(g.PaletteType)
	}

	if g.SourceID == target {
		return ""
	}
	if t.Type == TypeContainer {
		ed.ReparentIntoContainer(g.SourceID, target)
		return g.SourceID
	}
	ed.ReorderElements(g.SourceID, target)
	return g.SourceID
}

// ResizeDirection is the handle the pointer resize started from.
type ResizeDirection string

const (
	ResizeEast  ResizeDirection = "e"
	ResizeSouth ResizeDirection = "s"
	ResizeBoth  ResizeDirection = "se"
)

// MinElementSize is the lower clamp for both dimensions, in pixels.
const MinElementSize = 50

// Keyboard resize steps.
const (
	ResizeStep      = 1
	ResizeStepLarge = 10
)

// ResizeGesture tracks one pointer-driven resize. At most one exists; the
// start coordinates anchor the delta math so intermediate moves stay
// independent of event coalescing.
type ResizeGesture struct {
	ElementID   ElementID
	Direction   ResizeDirection
	StartX      int
	StartY      int
	StartWidth  int
	StartHeight int
}

// Resizing returns the active resize gesture, or nil.
func (ed *Editor) Resizing() *ResizeGesture { return ed.resize }

// StartResize begins a pointer resize for an element. Starting a new resize
// implicitly cancels tracking of any prior one.
func (ed *Editor) StartResize(id ElementID, dir ResizeDirection, pointerX, pointerY int) {
	el := ed.doc.Find(id)
	if el == nil {
		return
	}
	ed.drag = nil
	w := parsePx(resolveProp(*el, DefaultStyles(el.Type), "width"), 300)
	h := parsePx(resolveProp(*el, DefaultStyles(el.Type), "height"), 150)
	ed.resize = &ResizeGesture{
		ElementID:   id,
		Direction:   dir,
		StartX:      pointerX,
		StartY:      pointerY,
		StartWidth:  w,
		StartHeight: h,
	}
}

// ResizeMove applies the pointer delta to the tracked element, clamped to the
// minimum size. Sizes are written as pixel style overrides.
func (ed *Editor) ResizeMove(pointerX, pointerY int) {
	g := ed.resize
	if g == nil {
		return
	}
	styles := Styles{}
	if g.Direction == ResizeEast || g.Direction == ResizeBoth {
		w := clampSize(g.StartWidth + (pointerX - g.StartX))
		styles["width"] = px(w)
	}
	if g.Direction == ResizeSouth || g.Direction == ResizeBoth {
		h := clampSize(g.StartHeight + (pointerY - g.StartY))
		styles["height"] = px(h)
	}
	if len(styles) > 0 {
		ed.UpdateElement(g.ElementID, Patch{Styles: styles})
	}
}

// EndResize completes the pointer gesture.
func (ed *Editor) EndResize() { ed.resize = nil }

// ResizeAxis selects the dimension a keyboard resize adjusts.
type ResizeAxis int

const (
	AxisWidth ResizeAxis = iota
	AxisHeight
)

// KeyboardResize nudges the selected element's size by delta steps of 1px
// (or 10px when the modifier is held), clamped at the 50px minimum. Only acts
// on the current selection.
func (ed *Editor) KeyboardResize(axis ResizeAxis, delta int, large bool) {
	id := ed.selected
	if id == "" {
		return
	}
	el := ed.doc.Find(id)
	if el == nil {
		return
	}
	step := ResizeStep
	if large {
		step = ResizeStepLarge
	}
	key := "width"
	fallback := 300
	if axis == AxisHeight {
		key = "height"
		fallback = 150
	}
	cur := parsePx(resolveProp(*el, DefaultStyles(el.Type), key), fallback)
	next := clampSize(cur + delta*step)
	ed.UpdateElement(id, Patch{Styles: Styles{key: px(next)}})
}

func clampSize(v int) int {
	if v < MinElementSize {
		return MinElementSize
	}
	return v
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}

// parsePx extracts the integer pixel count from a style value like "60px".
// Non-pixel values ("auto", "100%") fall back to the provided default so a
// gesture always has a concrete starting size.
func parsePx(v string, fallback int) int {
	s := strings.TrimSuffix(strings.TrimSpace(v), "px")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
