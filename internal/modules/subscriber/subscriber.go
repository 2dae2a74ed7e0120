package subscriber

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/config"
	mailpkg "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/mail"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/pagination"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
)

type Handler struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	mailer *mailpkg.Sender
}

func NewHandler(db *gorm.DB, cfg *config.AppConfig, mailer *mailpkg.Sender) *Handler {
	return &Handler{db: db, cfg: cfg, mailer: mailer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/subscribers", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	// Public endpoints: signup from landing page forms, unsubscribe from
	// email footers.
	p := rg.Group("/public")
	p.POST("/subscribe", h.subscribe)
	p.GET("/unsubscribe/:token", h.unsubscribe)
	p.POST("/resubscribe/:token", h.resubscribe)
}

type subscriberDTO struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Tags   []string `json:"tags"`
	Status string   `json:"status"`
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	tx := h.db.Model(&models.SubscriberModel{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		tx = tx.Where("status = ?", status)
	}
	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		tx = tx.Where("tags LIKE ?", "%"+tag+"%")
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("email LIKE ? OR name LIKE ?", like, like)
	}
	tx = tx.Order("created_at DESC")

	var subs []models.SubscriberModel
	meta, err := pagination.Paginate(tx, q, &subs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, subs, meta)
}

func (h *Handler) getByID(c *gin.Context) {
	sub, ok := h.find(c)
	if !ok {
		return
	}
	response.OK(c, sub)
}

func (h *Handler) create(c *gin.Context) {
	var dto subscriberDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	email, err := NormalizeEmail(dto.Email)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sub := models.SubscriberModel{
		Email:  email,
		Name:   strings.TrimSpace(dto.Name),
		Tags:   models.NewTags(dto.Tags),
		Status: models.SubscriberActive,
		Source: "manual",
		Token:  NewToken(),
	}
	if dto.Status != "" {
		status, err := parseStatus(dto.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		sub.Status = status
	}

	var count int64
	if err := h.db.Model(&models.SubscriberModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	if count > 0 {
		response.Conflict(c, "subscriber already exists")
		return
	}

	if err := h.db.Create(&sub).Error; err != nil {
		// the count check above races with concurrent creates
		if isDuplicateEmailError(err) {
			response.Conflict(c, "subscriber already exists")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, sub)
}

func isDuplicateEmailError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}

func (h *Handler) update(c *gin.Context) {
	sub, ok := h.find(c)
	if !ok {
		return
	}

	var dto subscriberDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if dto.Email != "" {
		email, err := NormalizeEmail(dto.Email)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		sub.Email = email
	}
	if dto.Name != "" {
		sub.Name = strings.TrimSpace(dto.Name)
	}
	if dto.Tags != nil {
		sub.Tags = models.NewTags(dto.Tags)
	}
	if dto.Status != "" {
		status, err := parseStatus(dto.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		if status == models.SubscriberUnsubscribed && sub.Status != models.SubscriberUnsubscribed {
			now := time.Now()
			sub.UnsubscribedAt = &now
		}
		sub.Status = status
	}

	if err := h.db.Save(&sub).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, sub)
}

func (h *Handler) delete(c *gin.Context) {
	sub, ok := h.find(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&sub).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// subscribe handles public signups coming from landing page forms.
func (h *Handler) subscribe(c *gin.Context) {
	var dto subscriberDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	email, err := NormalizeEmail(dto.Email)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var existing models.SubscriberModel
	findErr := h.db.Where("email = ?", email).First(&existing).Error
	if findErr == nil {
		// Re-subscribing a previously unsubscribed address reactivates it.
		if existing.Status == models.SubscriberUnsubscribed {
			existing.Status = models.SubscriberActive
			existing.UnsubscribedAt = nil
			if err := h.db.Save(&existing).Error; err != nil {
				response.InternalError(c, err)
				return
			}
		}
		response.OK(c, gin.H{"subscribed": true})
		return
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		response.InternalError(c, findErr)
		return
	}

	sub := models.SubscriberModel{
		Email:  email,
		Name:   strings.TrimSpace(dto.Name),
		Tags:   models.NewTags(dto.Tags),
		Status: models.SubscriberActive,
		Source: "form",
		Token:  NewToken(),
	}
	if err := h.db.Create(&sub).Error; err != nil {
		if isDuplicateEmailError(err) {
			response.OK(c, gin.H{"subscribed": true})
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"subscribed": true})
}

func (h *Handler) unsubscribe(c *gin.Context) {
	sub, ok := h.findByToken(c)
	if !ok {
		return
	}

	if sub.Status != models.SubscriberUnsubscribed {
		now := time.Now()
		sub.Status = models.SubscriberUnsubscribed
		sub.UnsubscribedAt = &now
		if err := h.db.Save(&sub).Error; err != nil {
			response.InternalError(c, err)
			return
		}

		if h.mailer != nil {
			go h.mailer.SendUnsubscribed(sub.Email, mailpkg.UnsubscribedData{
				Email:          sub.Email,
				SenderName:     h.cfg.Site.Name,
				ResubscribeURL: h.cfg.Site.BaseURL + "/api/v1/public/resubscribe/" + sub.Token,
			})
		}
	}
	response.OK(c, gin.H{"unsubscribed": true})
}

func (h *Handler) resubscribe(c *gin.Context) {
	sub, ok := h.findByToken(c)
	if !ok {
		return
	}
	sub.Status = models.SubscriberActive
	sub.UnsubscribedAt = nil
	if err := h.db.Save(&sub).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"subscribed": true})
}

func (h *Handler) find(c *gin.Context) (models.SubscriberModel, bool) {
	var sub models.SubscriberModel
	err := h.db.First(&sub, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return sub, false
	}
	if err != nil {
		response.InternalError(c, err)
		return sub, false
	}
	return sub, true
}

func (h *Handler) findByToken(c *gin.Context) (models.SubscriberModel, bool) {
	var sub models.SubscriberModel
	err := h.db.First(&sub, "token = ?", strings.TrimSpace(c.Param("token"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return sub, false
	}
	if err != nil {
		response.InternalError(c, err)
		return sub, false
	}
	return sub, true
}

func parseStatus(raw string) (models.SubscriberStatus, error) {
	switch models.SubscriberStatus(raw) {
	case models.SubscriberActive, models.SubscriberUnsubscribed, models.SubscriberBounced:
		return models.SubscriberStatus(raw), nil
	default:
		return "", errors.New("status must be subscribed, unsubscribed or bounced")
	}
}

// NormalizeEmail lowercases and validates an email address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", errors.New("email is invalid")
	}
	return addr.Address, nil
}

// NewToken returns an opaque token for unsubscribe links.
func NewToken() string {
	b := make([]byte, 20)
	rand.Read(b)
	return hex.EncodeToString(b)
}
