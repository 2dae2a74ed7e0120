package builder

import (
	"html/template"
	"sort"
	"strings"
)

// cssName converts a camelCase style key to its CSS property name.
func cssName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inlineStyle serializes a resolved style map into a deterministic inline
// style attribute value (keys sorted so output is stable for tests and
// byte-identical across renders).
func inlineStyle(s Styles) string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(cssName(k))
		b.WriteByte(':')
		b.WriteString(s[k])
	}
	return b.String()
}

func esc(s string) string { return template.HTMLEscapeString(s) }

// attrEsc escapes a value for use inside a double-quoted attribute.
func attrEsc(s string) string { return template.HTMLEscapeString(s) }

// RenderHTML produces the static saved-mode HTML page for a document,
// honoring the document's global styles. Geometry matches the edit-mode
// resolution exactly; there is simply no chrome to strip.
func RenderHTML(doc Document) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\" />\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\" />\n")
	b.WriteString("<title>" + esc(doc.Title) + "</title>\n")
	if doc.Description != "" {
		b.WriteString("<meta name=\"description\" content=\"" + attrEsc(doc.Description) + "\" />\n")
	}
	b.WriteString("</head>\n")

	body := Styles{"margin": "0"}
	if doc.GlobalStyles.FontFamily != "" {
		body["fontFamily"] = doc.GlobalStyles.FontFamily
	}
	if doc.GlobalStyles.BackgroundColor != "" {
		body["backgroundColor"] = doc.GlobalStyles.BackgroundColor
	}
	b.WriteString("<body style=\"" + inlineStyle(body) + "\">\n")

	seen := map[ElementID]bool{}
	for _, el := range doc.TopLevel() {
		renderElement(&b, el, &doc, seen)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// RenderFragment renders the document's elements without the page shell,
// for embedding rendered blocks inside campaign emails.
func RenderFragment(doc Document) string {
	var b strings.Builder
	seen := map[ElementID]bool{}
	for _, el := range doc.TopLevel() {
		renderElement(&b, el, &doc, seen)
	}
	return b.String()
}

// renderElement walks one element. seen guards against reference cycles a
// malformed document could carry (the model does not forbid them).
func renderElement(b *strings.Builder, el Element, doc *Document, seen map[ElementID]bool) {
	if seen[el.ID] {
		return
	}
	seen[el.ID] = true
	defer delete(seen, el.ID)
	res := Resolve(el, doc, ModeSaved)
	boxStyle := inlineStyle(res.Box)

	switch c := el.Content.(type) {
	case HeadingContent:
		tag := c.Level
		switch tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
		default:
			tag = "h1"
		}
		b.WriteString("<" + tag + " data-element=\"heading\" style=\"" + boxStyle + "\">" + esc(c.Text) + "</" + tag + ">\n")

	case TextContent:
		b.WriteString("<p data-element=\"text\" style=\"" + boxStyle + "\">" + esc(c.Text) + "</p>\n")

	case ButtonContent:
		b.WriteString("<div data-element=\"button\" style=\"" + boxStyle + "\">")
		b.WriteString("<a href=\"" + attrEsc(c.Href) + "\" style=\"color:inherit;text-decoration:none\">" + esc(c.Text) + "</a>")
		b.WriteString("</div>\n")

	case ImageContent:
		if c.IsBackground {
			b.WriteString("<div data-element=\"image\" style=\"" + boxStyle + "\">")
			if c.OverlayText != "" {
				b.WriteString("<span style=\"" + inlineStyle(res.Overlay) + "\">" + esc(c.OverlayText) + "</span>")
			}
			b.WriteString("</div>\n")
		} else {
			b.WriteString("<img data-element=\"image\" src=\"" + attrEsc(c.Src) + "\" alt=\"" + attrEsc(c.Alt) + "\" style=\"" + boxStyle + "\" />\n")
		}

	case FormContent:
		b.WriteString("<form data-element=\"form\" style=\"" + boxStyle + "\">\n")
		for _, f := range c.Fields {
			b.WriteString("<input name=\"" + attrEsc(f.Name) + "\" type=\"" + attrEsc(f.Type) + "\" placeholder=\"" + attrEsc(f.Placeholder) + "\"")
			if f.Required {
				b.WriteString(" required")
			}
			b.WriteString(" />\n")
		}
		b.WriteString("<button type=\"submit\">" + esc(c.SubmitText) + "</button>\n")
		b.WriteString("</form>\n")

	case DividerContent:
		b.WriteString("<hr data-element=\"divider\" style=\"" + boxStyle + "\" />\n")

	case ContainerContent:
		b.WriteString("<div data-element=\"container\" style=\"" + boxStyle + "\">")
		if res.Placeholder {
			b.WriteString("<div data-placeholder=\"1\">" + esc(PlaceholderTitle) + "<br/>" + esc(PlaceholderHint) + "</div>")
		} else {
			b.WriteString("<div data-container-layout=\"1\" style=\"" + inlineStyle(res.Layout) + "\">\n")
			for _, child := range doc.ResolveChildren(el) {
				renderElement(b, child, doc, seen)
			}
			b.WriteString("</div>")
		}
		b.WriteString("</div>\n")
	}
}
