package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/middleware"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	jwtpkg "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/jwt"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/subscriber"
)

const tokenTTL = 30 * 24 * time.Hour

var (
	errAlreadyRegistered = errors.New("admin already registered")
	errWrongPassword     = errors.New("wrong password")
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UpdateProfileDTO struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	Mail   *string `json:"mail"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// IsRegistered reports whether the admin account exists yet.
func (s *Service) IsRegistered() bool {
	var count int64
	s.db.Model(&models.UserModel{}).Count(&count)
	return count > 0
}

// Register creates the single admin account. Fails once one exists.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	if s.IsRegistered() {
		return nil, errAlreadyRegistered
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = dto.Username
	}
	u := models.UserModel{
		Username: dto.Username,
		Password: string(hash),
		Name:     name,
		Mail:     strings.TrimSpace(dto.Mail),
	}
	return &u, s.db.Create(&u).Error
}

func (s *Service) Login(username, password, ip string) (string, *models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("user not found")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errWrongPassword
	}

	now := time.Now()
	s.db.Model(&u).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, err := jwtpkg.Sign(u.ID, tokenTTL)
	return token, &u, err
}

func (s *Service) ChangePassword(id, oldPwd, newPwd string) error {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&u).Update("password", string(hash)).Error
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.GET("/registered", h.registered)

	a := g.Group("", authMW)
	a.GET("/me", h.me)
	a.PATCH("/me", h.updateProfile)
	a.PATCH("/password", h.changePassword)
	a.POST("/logout", h.logout)
	a.GET("/tokens", h.listTokens)
	a.POST("/tokens", h.createToken)
	a.DELETE("/tokens/:tokenId", h.deleteToken)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(dto.Username, dto.Password, c.ClientIP())
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.OK(c, gin.H{"token": token, "user": u})
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Mail != "" {
		mail, err := subscriber.NormalizeEmail(dto.Mail)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		dto.Mail = mail
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		if errors.Is(err, errAlreadyRegistered) {
			response.ForbiddenMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, u)
}

func (h *Handler) registered(c *gin.Context) {
	response.OK(c, gin.H{"registered": h.svc.IsRegistered()})
}

func (h *Handler) me(c *gin.Context) {
	var u models.UserModel
	err := h.svc.db.First(&u, "id = ?", middleware.CurrentUserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, u)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*dto.Avatar)
	}
	if dto.Mail != nil {
		mail, err := subscriber.NormalizeEmail(*dto.Mail)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		updates["mail"] = mail
	}
	if len(updates) == 0 {
		h.me(c)
		return
	}

	userID := middleware.CurrentUserID(c)
	if err := h.svc.db.Model(&models.UserModel{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	h.me(c)
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword); err != nil {
		if errors.Is(err, errWrongPassword) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) logout(c *gin.Context) {
	// JWT is stateless; the client just drops the token.
	response.NoContent(c)
}

func (h *Handler) listTokens(c *gin.Context) {
	var tokens []models.APIToken
	if err := h.svc.db.Where("user_id = ?", middleware.CurrentUserID(c)).
		Order("created_at DESC").Find(&tokens).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, tokens)
}

func (h *Handler) createToken(c *gin.Context) {
	var dto struct {
		Name      string     `json:"name" binding:"required"`
		ExpiredAt *time.Time `json:"expired_at"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token := models.APIToken{
		UserID:    middleware.CurrentUserID(c),
		Token:     "mk-" + subscriber.NewToken(),
		Name:      strings.TrimSpace(dto.Name),
		ExpiredAt: dto.ExpiredAt,
	}
	if err := h.svc.db.Create(&token).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, token)
}

func (h *Handler) deleteToken(c *gin.Context) {
	res := h.svc.db.Where("id = ? AND user_id = ?", c.Param("tokenId"), middleware.CurrentUserID(c)).
		Delete(&models.APIToken{})
	if res.Error != nil {
		response.InternalError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}
