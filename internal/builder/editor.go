package builder

import "encoding/json"

// Patch is a partial element update. Content keys are shallow-merged into the
// existing content payload; Styles keys are shallow-merged into the existing
// style map. Nil fields leave the corresponding part untouched.
type Patch struct {
	Content         map[string]interface{} `json:"content,omitempty"`
	Styles          Styles                 `json:"styles,omitempty"`
	ContainerStyles *ContainerStyles       `json:"containerStyles,omitempty"`
}

// The pure document transformations below return a new document value rather
// than mutating in place. Invalid input (unknown id, wrong element type) is a
// no-op returning the input document unchanged; the UI is the sole caller and
// a silent no-op costs a stale screen, not corruption.

// AddElement instantiates a catalog element and appends it at top level.
func AddElement(doc Document, t ElementType) (Document, ElementID) {
	el, ok := Instantiate(t)
	if !ok {
		return doc, ""
	}
	out := doc.Clone()
	out.Elements = append(out.Elements, el)
	return out, el.ID
}

// AddElementToContainer instantiates an element, appends it to the flat list,
// and registers its id in the target container's children. No-op if the
// target does not resolve to a container.
func AddElementToContainer(doc Document, t ElementType, containerID ElementID) (Document, ElementID) {
	target := doc.Find(containerID)
	if target == nil || target.Type != TypeContainer {
		return doc, ""
	}
	el, ok := Instantiate(t)
	if !ok {
		return doc, ""
	}
	out := doc.Clone()
	out.Elements = append(out.Elements, el)
	c := out.Find(containerID)
	cc, _ := c.Content.(ContainerContent)
	cc.Children = append(cc.Children, el.ID)
	c.Content = cc
	return out, el.ID
}

// UpdateElement shallow-merges a patch into the element with the given id.
func UpdateElement(doc Document, id ElementID, patch Patch) Document {
	if doc.Find(id) == nil {
		return doc
	}
	out := doc.Clone()
	el := out.Find(id)

	if patch.Content != nil {
		merged, err := mergeContent(el.Type, el.Content, patch.Content)
		if err == nil {
			el.Content = merged
		}
	}
	if patch.Styles != nil {
		if el.Styles == nil {
			el.Styles = Styles{}
		}
		for k, v := range patch.Styles {
			el.Styles[k] = v
		}
	}
	if patch.ContainerStyles != nil && el.Type == TypeContainer {
		cs := *patch.ContainerStyles
		el.ContainerStyles = &cs
	}
	return out
}

// mergeContent applies a partial content patch over the existing typed payload
// by round-tripping through a key map, so untouched fields survive.
func mergeContent(t ElementType, current Content, patch map[string]interface{}) (Content, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	base := map[string]interface{}{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, err
	}
	for k, v := range patch {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	return decodeContent(t, merged)
}

// DeleteElement removes the element from the flat list. It deliberately does
// not cascade: a container still referencing the deleted id keeps the dangling
// reference, which render-time child resolution skips.
func DeleteElement(doc Document, id ElementID) Document {
	idx := doc.indexOf(id)
	if idx < 0 {
		return doc
	}
	out := doc.Clone()
	out.Elements = append(out.Elements[:idx], out.Elements[idx+1:]...)
	return out
}

// ReorderElements moves the dragged element to the target's position. Both
// must be top-level siblings (not referenced by any container).
func ReorderElements(doc Document, draggedID, targetID ElementID) Document {
	if draggedID == targetID {
		return doc
	}
	from := doc.indexOf(draggedID)
	to := doc.indexOf(targetID)
	if from < 0 || to < 0 {
		return doc
	}
	refs := doc.childIDs()
	if refs[draggedID] || refs[targetID] {
		return doc
	}
	out := doc.Clone()
	el := out.Elements[from]
	out.Elements = append(out.Elements[:from], out.Elements[from+1:]...)
	to = out.indexOf(targetID)
	out.Elements = append(out.Elements[:to], append([]Element{el}, out.Elements[to:]...)...)
	return out
}

// ReparentIntoContainer adds childID to the container's children if absent.
// It does not remove the child from a previous container; see the open
// question on multi-parent references in DESIGN.md.
func ReparentIntoContainer(doc Document, childID, containerID ElementID) Document {
	if childID == containerID {
		return doc
	}
	child := doc.Find(childID)
	target := doc.Find(containerID)
	if child == nil || target == nil || target.Type != TypeContainer {
		return doc
	}
	for _, id := range target.Children() {
		if id == childID {
			return doc
		}
	}
	out := doc.Clone()
	c := out.Find(containerID)
	cc, _ := c.Content.(ContainerContent)
	cc.Children = append(cc.Children, childID)
	c.Content = cc
	return out
}

// Editor owns one builder session: the working document, the current
// selection, and the ephemeral interaction state. All operations run
// synchronously on the UI goroutine; there is no interleaving of mutations.
type Editor struct {
	doc      Document
	selected ElementID

	// onFieldUpdate, when set, observes every UpdateElement application.
	onFieldUpdate func(ElementID, Patch)

	drag   *DragGesture
	resize *ResizeGesture
}

// NewEditor starts a session over doc (pass a zero Document for a new page).
func NewEditor(doc Document) *Editor {
	return &Editor{doc: doc}
}

// Document returns the current working document value.
func (ed *Editor) Document() Document { return ed.doc }

// SetDocument replaces the working document (load/hydrate path).
func (ed *Editor) SetDocument(doc Document) { ed.doc = doc }

// Selected returns the currently selected element id ("" when none).
func (ed *Editor) Selected() ElementID { return ed.selected }

// Select marks an element as selected; unknown ids clear the selection.
func (ed *Editor) Select(id ElementID) {
	if id != "" && ed.doc.Find(id) == nil {
		id = ""
	}
	ed.selected = id
}

// OnFieldUpdate registers the field-update observer.
func (ed *Editor) OnFieldUpdate(fn func(ElementID, Patch)) { ed.onFieldUpdate = fn }

// AddElement appends a new element of the given type. Does not auto-select.
func (ed *Editor) AddElement(t ElementType) ElementID {
	doc, id := AddElement(ed.doc, t)
	ed.doc = doc
	return id
}

// AddElementToContainer appends a new element into the target container.
func (ed *Editor) AddElementToContainer(t ElementType, containerID ElementID) ElementID {
	doc, id := AddElementToContainer(ed.doc, t, containerID)
	ed.doc = doc
	return id
}

// UpdateElement applies a partial patch and notifies the observer. Unknown
// ids are a no-op and do not fire the observer.
func (ed *Editor) UpdateElement(id ElementID, patch Patch) {
	if ed.doc.Find(id) == nil {
		return
	}
	ed.doc = UpdateElement(ed.doc, id, patch)
	if ed.onFieldUpdate != nil {
		ed.onFieldUpdate(id, patch)
	}
}

// DeleteElement removes an element and clears the selection if it pointed at
// the removed element.
func (ed *Editor) DeleteElement(id ElementID) {
	ed.doc = DeleteElement(ed.doc, id)
	if ed.selected == id {
		ed.selected = ""
	}
}

// ReorderElements reorders top-level siblings.
func (ed *Editor) ReorderElements(draggedID, targetID ElementID) {
	ed.doc = ReorderElements(ed.doc, draggedID, targetID)
}

// ReparentIntoContainer moves an existing element into a container.
func (ed *Editor) ReparentIntoContainer(childID, containerID ElementID) {
	ed.doc = ReparentIntoContainer(ed.doc, childID, containerID)
}
