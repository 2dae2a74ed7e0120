package builder

import (
	"encoding/json"
	"fmt"
)

// ElementID identifies an element within a single document.
type ElementID string

// Styles maps CSS-ish property names to values. A stored document only holds
// overrides; missing properties fall back to type defaults at render time.
type Styles map[string]string

// Clone returns a shallow copy of the style map.
func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	out := make(Styles, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ContainerStyles are layout-only properties applied to a container's inner
// wrapper, kept separate from the element's own box-model styles.
type ContainerStyles struct {
	Display        string `json:"display,omitempty"`
	FlexDirection  string `json:"flexDirection,omitempty"`
	AlignItems     string `json:"alignItems,omitempty"`
	JustifyContent string `json:"justifyContent,omitempty"`
	Gap            string `json:"gap,omitempty"`
	Padding        string `json:"padding,omitempty"`
	Margin         string `json:"margin,omitempty"`
	FlexWrap       string `json:"flexWrap,omitempty"`
}

// Element is the atomic unit of a document. ID and Type are immutable after
// creation; everything else mutates through the edit engine only.
type Element struct {
	ID              ElementID        `json:"id"`
	Type            ElementType      `json:"type"`
	Content         Content          `json:"content"`
	Styles          Styles           `json:"styles,omitempty"`
	ContainerStyles *ContainerStyles `json:"containerStyles,omitempty"`
}

// elementWire is the JSON shape of an element with the content left raw so it
// can be decoded against the type tag.
type elementWire struct {
	ID              ElementID        `json:"id"`
	Type            ElementType      `json:"type"`
	Content         json.RawMessage  `json:"content"`
	Styles          Styles           `json:"styles,omitempty"`
	ContainerStyles *ContainerStyles `json:"containerStyles,omitempty"`
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var w elementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	content, err := decodeContent(w.Type, w.Content)
	if err != nil {
		return err
	}
	e.ID = w.ID
	e.Type = w.Type
	e.Content = content
	e.Styles = w.Styles
	e.ContainerStyles = w.ContainerStyles
	return nil
}

func (e Element) MarshalJSON() ([]byte, error) {
	content := e.Content
	if content == nil {
		c, err := decodeContent(e.Type, nil)
		if err != nil {
			return nil, err
		}
		content = c
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(elementWire{
		ID:              e.ID,
		Type:            e.Type,
		Content:         raw,
		Styles:          e.Styles,
		ContainerStyles: e.ContainerStyles,
	})
}

// Clone returns a copy of the element safe to mutate without aliasing the
// original's style map or container child slice.
func (e Element) Clone() Element {
	out := e
	out.Styles = e.Styles.Clone()
	if e.ContainerStyles != nil {
		cs := *e.ContainerStyles
		out.ContainerStyles = &cs
	}
	if c, ok := e.Content.(ContainerContent); ok {
		children := make([]ElementID, len(c.Children))
		copy(children, c.Children)
		out.Content = ContainerContent{Children: children}
	}
	if c, ok := e.Content.(FormContent); ok {
		fields := make([]FormField, len(c.Fields))
		copy(fields, c.Fields)
		out.Content = FormContent{Fields: fields, SubmitText: c.SubmitText}
	}
	return out
}

// Children returns the container's child id list, or nil for non-containers.
func (e Element) Children() []ElementID {
	c, ok := e.Content.(ContainerContent)
	if !ok {
		return nil
	}
	return c.Children
}

// GlobalStyles are document-wide defaults consulted only by the full-page
// renderer, never by individual elements.
type GlobalStyles struct {
	FontFamily      string `json:"fontFamily,omitempty"`
	PrimaryColor    string `json:"primaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Document is the aggregate the builder edits and persists as one unit.
// Elements is a flat arena: every element, top-level or nested, lives here;
// containers reference their children by id only.
type Document struct {
	Name         string       `json:"name,omitempty"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Elements     []Element    `json:"elements"`
	GlobalStyles GlobalStyles `json:"globalStyles,omitempty"`
}

// Clone returns a deep-enough copy of the document for the edit engine's
// produce-a-new-value mutation style.
func (d Document) Clone() Document {
	out := d
	out.Elements = make([]Element, len(d.Elements))
	for i, e := range d.Elements {
		out.Elements[i] = e.Clone()
	}
	return out
}

// Find returns the element with the given id, or nil. Value receiver so the
// lookup works on plain Document values; the returned pointer still aliases
// the document's backing array.
func (d Document) Find(id ElementID) *Element {
	for i := range d.Elements {
		if d.Elements[i].ID == id {
			return &d.Elements[i]
		}
	}
	return nil
}

// indexOf returns the position of id in Elements, or -1.
func (d Document) indexOf(id ElementID) int {
	for i := range d.Elements {
		if d.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// childIDs returns the set of every id referenced as some container's child.
func (d Document) childIDs() map[ElementID]bool {
	refs := make(map[ElementID]bool)
	for i := range d.Elements {
		for _, id := range d.Elements[i].Children() {
			refs[id] = true
		}
	}
	return refs
}

// TopLevel returns the elements rendered at document top level, in array
// order, excluding any element referenced as a container child (containers
// pull those out of the flat list themselves).
func (d Document) TopLevel() []Element {
	refs := d.childIDs()
	var out []Element
	for _, e := range d.Elements {
		if !refs[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// ResolveChildren returns the container's existing children in order, silently
// skipping dangling references to deleted elements.
func (d Document) ResolveChildren(container Element) []Element {
	var out []Element
	for _, id := range container.Children() {
		if el := d.Find(id); el != nil {
			out = append(out, *el)
		}
	}
	return out
}

// ParseContent hydrates a persisted content field into an element list. The
// stored value may be a JSON string (double-encoded), an object with an
// "elements" key, a bare element array, or a single element object. Any other
// shape yields an empty list together with a diagnostic error; this function
// never panics and callers are expected to log and continue.
func ParseContent(raw []byte) ([]Element, error) {
	if len(raw) == 0 {
		return []Element{}, nil
	}

	// Double-encoded: a JSON string holding the real payload.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return []Element{}, nil
		}
		return ParseContent([]byte(s))
	}

	// Object with an elements key (the canonical stored shape).
	var wrapper struct {
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Elements) > 0 && string(wrapper.Elements) != "null" {
		return parseElementArray(wrapper.Elements)
	}

	// Bare array of elements.
	var probe []json.RawMessage
	if err := json.Unmarshal(raw, &probe); err == nil {
		return parseElementArray(raw)
	}

	// Single element object.
	var single Element
	if err := json.Unmarshal(raw, &single); err == nil && single.Type != "" && KnownType(single.Type) {
		return []Element{single}, nil
	}

	return []Element{}, fmt.Errorf("builder: unrecognized content shape: %s", truncate(raw, 120))
}

// parseElementArray decodes an element array, dropping entries that fail to
// decode instead of failing the whole document.
func parseElementArray(raw json.RawMessage) ([]Element, error) {
	var rawElements []json.RawMessage
	if err := json.Unmarshal(raw, &rawElements); err != nil {
		return []Element{}, fmt.Errorf("builder: elements is not an array: %w", err)
	}
	out := make([]Element, 0, len(rawElements))
	var firstErr error
	for _, re := range rawElements {
		var e Element
		if err := json.Unmarshal(re, &e); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, e)
	}
	return out, firstErr
}

// EncodeContent serializes elements into the canonical stored shape.
func EncodeContent(elements []Element) ([]byte, error) {
	if elements == nil {
		elements = []Element{}
	}
	return json.Marshal(struct {
		Elements []Element `json:"elements"`
	}{Elements: elements})
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
