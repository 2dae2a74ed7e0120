package campaign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	html := string(renderMarkdown("# Big News\n\nWe just **launched**."))
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Big News")
	assert.Contains(t, html, "<strong>launched</strong>")
}

func TestRenderMarkdownGFMTable(t *testing.T) {
	html := string(renderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |"))
	assert.Contains(t, html, "<table>")
}

func TestRenderMarkdownAutolink(t *testing.T) {
	html := string(renderMarkdown("visit https://example.com today"))
	assert.Contains(t, html, `<a href="https://example.com"`)
}

func TestClickURL(t *testing.T) {
	u := clickURL("https://mail.example.com", "camp-1", "sub-2", "https://mail.example.com/p/sale")
	assert.True(t, strings.HasPrefix(u, "https://mail.example.com/t/c/camp-1/sub-2?to="))
	assert.Contains(t, u, "%2Fp%2Fsale")

	assert.Empty(t, clickURL("https://mail.example.com", "camp-1", "sub-2", ""))
}
