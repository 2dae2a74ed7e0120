package survey

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/pagination"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/response"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/surveys")

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.getByID)
	a.POST("", h.create)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.GET("/:id/responses", h.listResponses)

	// Respondents submit without auth; landing pages embed this endpoint.
	g.POST("/:id/responses", h.submit)
}

type surveyDTO struct {
	Name        string               `json:"name"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Fields      []models.SurveyField `json:"fields"`
	SubmitText  string               `json:"submitText"`
	IsActive    *bool                `json:"isActive"`
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	tx := h.db.Model(&models.SurveyModel{}).Order("created_at DESC")
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR title LIKE ?", like, like)
	}

	var surveys []models.SurveyModel
	meta, err := pagination.Paginate(tx, q, &surveys)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, surveys, meta)
}

func (h *Handler) getByID(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}
	response.OK(c, s)
}

func (h *Handler) create(c *gin.Context) {
	var dto surveyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}
	if err := ValidateFields(dto.Fields); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s := models.SurveyModel{
		Name:        dto.Name,
		Title:       strings.TrimSpace(dto.Title),
		Description: dto.Description,
		Fields:      dto.Fields,
		SubmitText:  strings.TrimSpace(dto.SubmitText),
		IsActive:    true,
	}
	if s.Title == "" {
		s.Title = s.Name
	}
	if s.SubmitText == "" {
		s.SubmitText = "Submit"
	}
	if dto.IsActive != nil {
		s.IsActive = *dto.IsActive
	}

	if err := h.db.Create(&s).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, s)
}

func (h *Handler) update(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}

	var dto surveyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if name := strings.TrimSpace(dto.Name); name != "" {
		s.Name = name
	}
	if title := strings.TrimSpace(dto.Title); title != "" {
		s.Title = title
	}
	if dto.Description != "" {
		s.Description = dto.Description
	}
	if dto.Fields != nil {
		if err := ValidateFields(dto.Fields); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		s.Fields = dto.Fields
	}
	if st := strings.TrimSpace(dto.SubmitText); st != "" {
		s.SubmitText = st
	}
	if dto.IsActive != nil {
		s.IsActive = *dto.IsActive
	}

	if err := h.db.Save(&s).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, s)
}

func (h *Handler) delete(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&s).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listResponses(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}
	q := pagination.FromContext(c)

	tx := h.db.Model(&models.SurveyResponseModel{}).
		Where("survey_id = ?", s.ID).
		Order("created_at DESC")

	var responses []models.SurveyResponseModel
	meta, err := pagination.Paginate(tx, q, &responses)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, responses, meta)
}

func (h *Handler) submit(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}
	if !s.IsActive {
		response.ForbiddenMsg(c, "survey is closed")
		return
	}

	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := ValidateResponse(s.Fields, values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp := models.SurveyResponseModel{
		SurveyID: s.ID,
		Values:   values,
		IP:       c.ClientIP(),
		Agent:    c.Request.UserAgent(),
	}
	if err := h.db.Create(&resp).Error; err != nil {
		response.InternalError(c, err)
		return
	}
	h.db.Model(&s).UpdateColumn("response_count", gorm.Expr("response_count + 1"))

	response.Created(c, gin.H{"submitted": true})
}

func (h *Handler) find(c *gin.Context) (models.SurveyModel, bool) {
	var s models.SurveyModel
	err := h.db.First(&s, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return s, false
	}
	if err != nil {
		response.InternalError(c, err)
		return s, false
	}
	return s, true
}

// ValidateFields checks a survey definition: unique names, known types,
// options present where the type needs them.
func ValidateFields(fields []models.SurveyField) error {
	seen := map[string]bool{}
	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("field %q: duplicate name", name)
		}
		seen[name] = true

		switch f.Type {
		case models.SurveyFieldText, models.SurveyFieldTextarea, models.SurveyFieldEmail,
			models.SurveyFieldNumber, models.SurveyFieldCheckbox:
		case models.SurveyFieldSelect, models.SurveyFieldRadio:
			if len(f.Options) == 0 {
				return fmt.Errorf("field %q: %s fields need options", name, f.Type)
			}
		default:
			return fmt.Errorf("field %q: unknown type %q", name, f.Type)
		}
	}
	return nil
}

// ValidateResponse checks submitted values against the field definitions.
// Unknown keys are rejected so responses stay queryable by field name.
func ValidateResponse(fields []models.SurveyField, values map[string]interface{}) error {
	byName := make(map[string]models.SurveyField, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	for key := range values {
		if _, ok := byName[key]; !ok {
			return fmt.Errorf("unknown field %q", key)
		}
	}

	for _, f := range fields {
		raw, present := values[f.Name]
		if !present || isEmptyValue(raw) {
			if f.Required {
				return fmt.Errorf("field %q is required", f.Name)
			}
			continue
		}
		if err := validateValue(f, raw); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(f models.SurveyField, raw interface{}) error {
	switch f.Type {
	case models.SurveyFieldText, models.SurveyFieldTextarea:
		if _, ok := raw.(string); !ok {
			return fmt.Errorf("field %q must be a string", f.Name)
		}
	case models.SurveyFieldEmail:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("field %q must be a string", f.Name)
		}
		if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("field %q must be a valid email", f.Name)
		}
	case models.SurveyFieldNumber:
		switch v := raw.(type) {
		case float64:
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return fmt.Errorf("field %q must be a number", f.Name)
			}
		default:
			return fmt.Errorf("field %q must be a number", f.Name)
		}
	case models.SurveyFieldCheckbox:
		if _, ok := raw.(bool); !ok {
			return fmt.Errorf("field %q must be a boolean", f.Name)
		}
	case models.SurveyFieldSelect, models.SurveyFieldRadio:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("field %q must be a string", f.Name)
		}
		for _, opt := range f.Options {
			if opt == s {
				return nil
			}
		}
		return fmt.Errorf("field %q: %q is not one of the options", f.Name, s)
	}
	return nil
}

func isEmptyValue(raw interface{}) bool {
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}
