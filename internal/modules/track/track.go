package track

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	redisc "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/redis"
)

// transparent 1x1 GIF served for open tracking.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

const dedupTTL = 30 * 24 * time.Hour

type Handler struct {
	db  *gorm.DB
	cfg *config.AppConfig
	rc  *redisc.Client
}

func NewHandler(db *gorm.DB, cfg *config.AppConfig, rc *redisc.Client) *Handler {
	return &Handler{db: db, cfg: cfg, rc: rc}
}

// RegisterPublicRoutes mounts the tracking endpoints outside /api. They are
// hit from email clients and must never require auth.
func (h *Handler) RegisterPublicRoutes(r gin.IRoutes) {
	r.GET("/t/o/:campaign/:file", h.open)
	r.GET("/t/c/:campaign/:subscriber", h.click)
}

// open serves the tracking pixel and records the first open per
// campaign/subscriber pair.
func (h *Handler) open(c *gin.Context) {
	campaignID := c.Param("campaign")
	subscriberID := strings.TrimSuffix(c.Param("file"), ".gif")

	h.record(c, campaignID, subscriberID, models.CampaignEventOpen, "")

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "image/gif", pixelGIF)
}

// click records the click and redirects to the target. Only same-site
// targets are honored; anything else falls back to the site base URL.
func (h *Handler) click(c *gin.Context) {
	campaignID := c.Param("campaign")
	subscriberID := c.Param("subscriber")
	target := SafeTarget(h.cfg.Site.BaseURL, c.Query("to"))

	h.record(c, campaignID, subscriberID, models.CampaignEventClick, target)

	c.Redirect(http.StatusFound, target)
}

// record stores one event per (campaign, subscriber, kind), deduplicated in
// Redis, and bumps the campaign counter on first sight. Invalid ids are
// ignored: trackers must never error toward the mail client.
func (h *Handler) record(c *gin.Context, campaignID, subscriberID string, kind models.CampaignEventKind, url string) {
	if campaignID == "" || subscriberID == "" {
		return
	}

	ctx := c.Request.Context()
	key := "mm:track:" + string(kind) + ":" + campaignID + ":" + subscriberID
	first, err := h.rc.SetNX(ctx, key, "1", dedupTTL)
	if err != nil || !first {
		return
	}

	var count int64
	h.db.Model(&models.CampaignModel{}).Where("id = ?", campaignID).Count(&count)
	if count == 0 {
		return
	}

	event := models.CampaignEventModel{
		CampaignID:   campaignID,
		SubscriberID: subscriberID,
		Kind:         kind,
		URL:          url,
		IP:           c.ClientIP(),
		Agent:        c.Request.UserAgent(),
	}
	if err := h.db.Create(&event).Error; err != nil {
		return
	}

	column := "open_count"
	if kind == models.CampaignEventClick {
		column = "click_count"
	}
	h.db.Model(&models.CampaignModel{}).Where("id = ?", campaignID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
}

// SafeTarget restricts click redirects to same-site URLs.
func SafeTarget(baseURL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return baseURL
	}
	target, err := url.Parse(raw)
	if err != nil {
		return baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	if target.Host != base.Host || (target.Scheme != "http" && target.Scheme != "https") {
		return baseURL
	}
	return target.String()
}
