package landingpage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/builder"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/middleware"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/pagination"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
)

type Handler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{db: db, rdb: rdb}
}

// purge drops the cached public render so a status or content change is
// visible immediately instead of after the cache TTL.
func (h *Handler) purge(c *gin.Context, slugs ...string) {
	_ = middleware.PurgePage(c.Request.Context(), h.rdb, slugs...)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/landing-pages", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.GET("/:id/preview", h.preview)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/publish", h.publish)
	g.POST("/:id/unpublish", h.unpublish)
	g.POST("/:id/duplicate", h.duplicate)
}

// RegisterPublicRoutes mounts the public page renderer outside /api.
func (h *Handler) RegisterPublicRoutes(r gin.IRoutes) {
	r.GET("/p/:slug", h.renderPublic)
}

type pageDTO struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Slug        string          `json:"slug"`
	ContentType string          `json:"contentType"`
	Content     json.RawMessage `json:"content"`
	Tags        []string        `json:"tags"`
	IsActive    *bool           `json:"isActive"`
	Status      string          `json:"status"`
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	tx := h.db.Model(&models.LandingPageModel{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		tx = tx.Where("status = ?", status)
	}
	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		tx = tx.Where("tags LIKE ?", "%"+tag+"%")
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR title LIKE ?", like, like)
	}
	tx = tx.Order("created_at DESC")

	var pages []models.LandingPageModel
	meta, err := pagination.Paginate(tx, q, &pages)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, pages, meta)
}

func (h *Handler) getByID(c *gin.Context) {
	page, ok := h.find(c)
	if !ok {
		return
	}
	response.OK(c, page)
}

func (h *Handler) create(c *gin.Context) {
	var dto pageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page := models.LandingPageModel{
		ContentType: "html",
		IsActive:    true,
		Status:      models.LandingPageDraft,
	}
	if msg := applyDTO(&page, dto); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	if page.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}
	if page.Title == "" {
		page.Title = page.Name
	}
	if page.Slug == "" {
		page.Slug = Slugify(page.Name)
	}
	if page.Slug == "" {
		response.BadRequest(c, "slug could not be derived from name")
		return
	}

	var count int64
	if err := h.db.Model(&models.LandingPageModel{}).Where("slug = ?", page.Slug).Count(&count).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	if count > 0 {
		response.Conflict(c, "slug already exists")
		return
	}

	if err := h.db.Create(&page).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, page)
}

func (h *Handler) update(c *gin.Context) {
	page, ok := h.find(c)
	if !ok {
		return
	}

	var dto pageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	origSlug := page.Slug
	if msg := applyDTO(&page, dto); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	if page.Name == "" {
		response.BadRequest(c, "name can not be empty")
		return
	}
	if page.Slug != origSlug {
		var count int64
		if err := h.db.Model(&models.LandingPageModel{}).
			Where("slug = ? AND id <> ?", page.Slug, page.ID).Count(&count).Error; err != nil {
			response.InternalError(c, err)
			return
		}
		if count > 0 {
			response.Conflict(c, "slug already exists")
			return
		}
	}

	if err := h.db.Save(&page).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	// A slug change leaves the old render cached under the old path.
	h.purge(c, origSlug, page.Slug)
	response.OK(c, page)
}

func (h *Handler) delete(c *gin.Context) {
	page, ok := h.find(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&page).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	h.purge(c, page.Slug)
	response.NoContent(c)
}

func (h *Handler) publish(c *gin.Context) {
	h.setStatus(c, models.LandingPagePublished)
}

func (h *Handler) unpublish(c *gin.Context) {
	h.setStatus(c, models.LandingPageDraft)
}

func (h *Handler) setStatus(c *gin.Context, status models.LandingPageStatus) {
	page, ok := h.find(c)
	if !ok {
		return
	}
	page.Status = status
	if err := h.db.Model(&page).Update("status", status).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	// Without the purge an unpublished page keeps serving its cached render
	// until the TTL runs out.
	h.purge(c, page.Slug)
	response.OK(c, page)
}

func (h *Handler) duplicate(c *gin.Context) {
	page, ok := h.find(c)
	if !ok {
		return
	}

	copyPage := page
	copyPage.Base = models.Base{}
	copyPage.Name = page.Name + " (copy)"
	copyPage.Status = models.LandingPageDraft
	copyPage.ViewCount = 0

	slug := Slugify(copyPage.Name)
	for i := 0; ; i++ {
		candidate := slug
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", slug, i)
		}
		var count int64
		if err := h.db.Model(&models.LandingPageModel{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			response.InternalError(c, err)
			return
		}
		if count == 0 {
			copyPage.Slug = candidate
			break
		}
	}

	if err := h.db.Create(&copyPage).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, copyPage)
}

// preview renders the stored document to full HTML for the editor, draft
// or published alike.
func (h *Handler) preview(c *gin.Context) {
	page, ok := h.find(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(RenderPage(page)))
}

func (h *Handler) renderPublic(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	var page models.LandingPageModel
	err := h.db.Where("slug = ? AND status = ? AND is_active = ?", slug, models.LandingPagePublished, true).
		First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	h.db.Model(&page).UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(RenderPage(page)))
}

func (h *Handler) find(c *gin.Context) (models.LandingPageModel, bool) {
	var page models.LandingPageModel
	key := c.Param("id")
	err := h.db.First(&page, "id = ? OR slug = ?", key, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return page, false
	}
	if err != nil {
		response.InternalError(c, err)
		return page, false
	}
	return page, true
}

// applyDTO copies validated fields onto the model. Returns a non-empty
// message when the payload is invalid; the model is not persisted then.
func applyDTO(page *models.LandingPageModel, dto pageDTO) string {
	if name := strings.TrimSpace(dto.Name); name != "" {
		page.Name = name
	}
	if title := strings.TrimSpace(dto.Title); title != "" {
		page.Title = title
	}
	if dto.Description != "" {
		page.Description = strings.TrimSpace(dto.Description)
	}
	if slug := Slugify(dto.Slug); slug != "" {
		page.Slug = slug
	}
	if ct := strings.TrimSpace(dto.ContentType); ct != "" {
		if ct != "html" {
			return "contentType must be \"html\""
		}
		page.ContentType = ct
	}
	if dto.Status != "" {
		switch models.LandingPageStatus(dto.Status) {
		case models.LandingPageDraft, models.LandingPagePublished:
			page.Status = models.LandingPageStatus(dto.Status)
		default:
			return "status must be \"draft\" or \"published\""
		}
	}
	if dto.Tags != nil {
		page.Tags = models.NewTags(dto.Tags)
	}
	if dto.IsActive != nil {
		page.IsActive = *dto.IsActive
	}
	if len(dto.Content) > 0 {
		// Hydrate tolerantly, then store the canonical encoding so every
		// saved row round-trips through the same shape.
		elements, _ := builder.ParseContent(dto.Content)
		encoded, err := builder.EncodeContent(elements)
		if err != nil {
			return "content could not be encoded"
		}
		page.Content = string(encoded)
	}
	return ""
}

// HydrateDocument builds an editable document from a stored row. Broken or
// legacy content degrades to an empty element list instead of failing.
func HydrateDocument(page models.LandingPageModel) builder.Document {
	elements, _ := builder.ParseContent([]byte(page.Content))
	return builder.Document{
		Name:        page.Name,
		Title:       page.Title,
		Description: page.Description,
		Elements:    elements,
	}
}

// RenderPage produces the full standalone HTML for a stored page.
func RenderPage(page models.LandingPageModel) string {
	return builder.RenderHTML(HydrateDocument(page))
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and collapses a name into a URL-safe slug.
func Slugify(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
