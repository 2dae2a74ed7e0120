package campaign

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	mailpkg "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/mail"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/pagination"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/taskqueue"
)

type Handler struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	mailer *mailpkg.Sender
	tasks  *taskqueue.Service
}

func NewHandler(db *gorm.DB, cfg *config.AppConfig, mailer *mailpkg.Sender, tasks *taskqueue.Service) *Handler {
	return &Handler{db: db, cfg: cfg, mailer: mailer, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/campaigns", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.GET("/:id/stats", h.stats)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/send", h.send)
	g.POST("/:id/schedule", h.schedule)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/test", h.testSend)
}

type campaignDTO struct {
	Name          string     `json:"name"`
	Subject       string     `json:"subject"`
	FromName      string     `json:"from_name"`
	Body          string     `json:"body"`
	LandingPageID *string    `json:"landing_page_id"`
	Tags          []string   `json:"tags"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	tx := h.db.Model(&models.CampaignModel{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		tx = tx.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR subject LIKE ?", like, like)
	}
	tx = tx.Order("created_at DESC")

	var campaigns []models.CampaignModel
	meta, err := pagination.Paginate(tx, q, &campaigns)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, campaigns, meta)
}

func (h *Handler) getByID(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}
	if camp.LandingPageID != nil {
		h.db.Preload("LandingPage").First(&camp, "id = ?", camp.ID)
	}
	response.OK(c, camp)
}

func (h *Handler) create(c *gin.Context) {
	var dto campaignDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Subject = strings.TrimSpace(dto.Subject)
	if dto.Name == "" || dto.Subject == "" {
		response.BadRequest(c, "name and subject are required")
		return
	}
	if msg := h.checkLandingPage(dto.LandingPageID); msg != "" {
		response.BadRequest(c, msg)
		return
	}

	camp := models.CampaignModel{
		Name:          dto.Name,
		Subject:       dto.Subject,
		FromName:      strings.TrimSpace(dto.FromName),
		Body:          dto.Body,
		LandingPageID: dto.LandingPageID,
		Tags:          models.NewTags(dto.Tags),
		Status:        models.CampaignDraft,
		ScheduledAt:   dto.ScheduledAt,
	}
	if err := h.db.Create(&camp).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, camp)
}

func (h *Handler) update(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}
	if !camp.Editable() {
		response.Conflict(c, "campaign is already sending or sent")
		return
	}

	var dto campaignDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if name := strings.TrimSpace(dto.Name); name != "" {
		camp.Name = name
	}
	if subject := strings.TrimSpace(dto.Subject); subject != "" {
		camp.Subject = subject
	}
	if dto.FromName != "" {
		camp.FromName = strings.TrimSpace(dto.FromName)
	}
	if dto.Body != "" {
		camp.Body = dto.Body
	}
	if dto.LandingPageID != nil {
		if msg := h.checkLandingPage(dto.LandingPageID); msg != "" {
			response.BadRequest(c, msg)
			return
		}
		camp.LandingPageID = dto.LandingPageID
	}
	if dto.Tags != nil {
		camp.Tags = models.NewTags(dto.Tags)
	}
	if dto.ScheduledAt != nil {
		camp.ScheduledAt = dto.ScheduledAt
	}

	if err := h.db.Save(&camp).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, camp)
}

func (h *Handler) delete(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}
	if camp.Status == models.CampaignSending {
		response.Conflict(c, "campaign is currently sending")
		return
	}
	if err := h.db.Delete(&camp).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// send queues the campaign for immediate delivery.
func (h *Handler) send(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}
	if !camp.Editable() {
		response.Conflict(c, "campaign is already sending or sent")
		return
	}
	if strings.TrimSpace(camp.Body) == "" {
		response.BadRequest(c, "campaign body is empty")
		return
	}

	task, err := h.tasks.Enqueue(c.Request.Context(), taskqueue.TypeCampaignSend,
		sendPayload{CampaignID: camp.ID}, camp.ID, "campaigns")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if err := h.db.Model(&camp).Update("status", models.CampaignQueued).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	camp.Status = models.CampaignQueued
	response.OK(c, gin.H{"task_id": task.ID, "campaign": camp})
}

// schedule marks the campaign for delivery at scheduled_at; the cron job
// enqueues it when the time comes.
func (h *Handler) schedule(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}
	if !camp.Editable() {
		response.Conflict(c, "campaign is already sending or sent")
		return
	}

	var dto struct {
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.ScheduledAt.Before(time.Now()) {
		response.BadRequest(c, "scheduled_at must be in the future")
		return
	}

	camp.ScheduledAt = &dto.ScheduledAt
	camp.Status = models.CampaignQueued
	if err := h.db.Save(&camp).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, camp)
}

func (h *Handler) cancel(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}
	if camp.Status != models.CampaignQueued {
		response.Conflict(c, "only queued campaigns can be cancelled")
		return
	}
	camp.Status = models.CampaignDraft
	camp.ScheduledAt = nil
	if err := h.db.Save(&camp).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, camp)
}

// testSend delivers the campaign to a single address right away, bypassing
// the queue and the subscriber list.
func (h *Handler) testSend(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}

	var dto struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	data := mailpkg.CampaignData{
		Body:       renderMarkdown(camp.Body),
		SenderName: h.cfg.Site.Name,
		LandingURL: h.landingURL(&camp),
		TestBanner: true,
	}
	if err := h.mailer.SendCampaign(dto.Email, camp.FromName, camp.Subject, data); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"sent": true})
}

func (h *Handler) stats(c *gin.Context) {
	camp, ok := h.find(c)
	if !ok {
		return
	}

	var opens, clicks int64
	h.db.Model(&models.CampaignEventModel{}).
		Where("campaign_id = ? AND kind = ?", camp.ID, models.CampaignEventOpen).Count(&opens)
	h.db.Model(&models.CampaignEventModel{}).
		Where("campaign_id = ? AND kind = ?", camp.ID, models.CampaignEventClick).Count(&clicks)

	response.OK(c, gin.H{
		"status":     camp.Status,
		"recipients": camp.Recipients,
		"sent":       camp.SentCount,
		"failed":     camp.FailedCount,
		"opens":      opens,
		"clicks":     clicks,
		"sent_at":    camp.SentAt,
	})
}

func (h *Handler) find(c *gin.Context) (models.CampaignModel, bool) {
	var camp models.CampaignModel
	err := h.db.First(&camp, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return camp, false
	}
	if err != nil {
		response.InternalError(c, err)
		return camp, false
	}
	return camp, true
}

func (h *Handler) checkLandingPage(id *string) string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return ""
	}
	var count int64
	if err := h.db.Model(&models.LandingPageModel{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err.Error()
	}
	if count == 0 {
		return "landing page not found"
	}
	return ""
}

func (h *Handler) landingURL(camp *models.CampaignModel) string {
	if camp.LandingPageID == nil {
		return ""
	}
	var page models.LandingPageModel
	if err := h.db.Select("slug").First(&page, "id = ?", *camp.LandingPageID).Error; err != nil {
		return ""
	}
	return h.cfg.Site.BaseURL + "/p/" + page.Slug
}

type sendPayload struct {
	CampaignID string `json:"campaign_id"`
}
