package landingpage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "summer-sale-2026", Slugify("Summer Sale 2026"))
	assert.Equal(t, "black-friday", Slugify("  Black   Friday!  "))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Equal(t, "deja-vu", Slugify("deja--vu"))
}

func TestApplyDTOCanonicalizesContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"wrapper object", `{"elements":[{"id":"heading-1-1","type":"heading","content":{"text":"Hi","level":"h1"},"styles":{}}]}`},
		{"bare array", `[{"id":"heading-1-1","type":"heading","content":{"text":"Hi","level":"h1"},"styles":{}}]`},
		{"double encoded", `"[{\"id\":\"heading-1-1\",\"type\":\"heading\",\"content\":{\"text\":\"Hi\",\"level\":\"h1\"},\"styles\":{}}]"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := models.LandingPageModel{}
			msg := applyDTO(&page, pageDTO{Name: "Test", Content: json.RawMessage(tc.content)})
			require.Empty(t, msg)
			assert.True(t, strings.HasPrefix(page.Content, `{"elements":[`), "stored content must use the wrapper shape, got %s", page.Content)
			assert.Contains(t, page.Content, `"heading-1-1"`)
		})
	}
}

func TestApplyDTOGarbageContentDegradesToEmpty(t *testing.T) {
	page := models.LandingPageModel{}
	msg := applyDTO(&page, pageDTO{Name: "Test", Content: json.RawMessage(`{"foo":"bar"}`)})
	require.Empty(t, msg)
	assert.Equal(t, `{"elements":[]}`, page.Content)
}

func TestApplyDTOSlugChangeDetectableAgainstOriginal(t *testing.T) {
	page := models.LandingPageModel{Name: "Promo", Slug: "old-slug"}

	// applyDTO overwrites page.Slug in place, so a slug change can only be
	// detected against the value captured before the call.
	orig := page.Slug
	require.Empty(t, applyDTO(&page, pageDTO{Slug: "taken-slug"}))
	assert.Equal(t, "taken-slug", page.Slug)
	assert.NotEqual(t, orig, page.Slug, "changed slug must differ from the pre-apply value")

	// Re-submitting the current slug is not a change.
	orig = page.Slug
	require.Empty(t, applyDTO(&page, pageDTO{Slug: "Taken Slug"}))
	assert.Equal(t, orig, page.Slug)
}

func TestApplyDTORejectsBadMetadata(t *testing.T) {
	page := models.LandingPageModel{}
	assert.NotEmpty(t, applyDTO(&page, pageDTO{ContentType: "markdown"}))
	assert.NotEmpty(t, applyDTO(&page, pageDTO{Status: "archived"}))
	assert.Empty(t, applyDTO(&page, pageDTO{Status: "published"}))
	assert.Equal(t, models.LandingPagePublished, page.Status)
}

func TestHydrateDocument(t *testing.T) {
	page := models.LandingPageModel{
		Name:    "Promo",
		Title:   "Promo Page",
		Content: `{"elements":[{"id":"text-2-1","type":"text","content":{"text":"hello"},"styles":{}}]}`,
	}
	doc := HydrateDocument(page)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, "Promo Page", doc.Title)

	broken := models.LandingPageModel{Name: "Broken", Content: `not json at all`}
	doc = HydrateDocument(broken)
	assert.Empty(t, doc.Elements)
}

func TestRenderPageProducesFullDocument(t *testing.T) {
	page := models.LandingPageModel{
		Name:    "Promo",
		Title:   "Promo Page",
		Content: `{"elements":[{"id":"heading-3-1","type":"heading","content":{"text":"Welcome","level":"h2"},"styles":{}}]}`,
	}
	html := RenderPage(page)
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "Welcome")
	assert.Contains(t, html, "<h2")
}
