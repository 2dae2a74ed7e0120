package models

// SurveyFieldType enumerates the input kinds the survey builder offers.
type SurveyFieldType string

const (
	SurveyFieldText     SurveyFieldType = "text"
	SurveyFieldTextarea SurveyFieldType = "textarea"
	SurveyFieldEmail    SurveyFieldType = "email"
	SurveyFieldNumber   SurveyFieldType = "number"
	SurveyFieldSelect   SurveyFieldType = "select"
	SurveyFieldCheckbox SurveyFieldType = "checkbox"
	SurveyFieldRadio    SurveyFieldType = "radio"
)

// SurveyField is one question definition. Options applies to select/radio
// fields only.
type SurveyField struct {
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Type        SurveyFieldType `json:"type"`
	Placeholder string          `json:"placeholder,omitempty"`
	Required    bool            `json:"required"`
	Options     []string        `json:"options,omitempty"`
}

// SurveyModel stores a survey definition with its typed field list.
type SurveyModel struct {
	Base
	Name          string        `json:"name"        gorm:"not null;index"`
	Title         string        `json:"title"       gorm:"not null"`
	Description   string        `json:"description"`
	Fields        []SurveyField `json:"fields"      gorm:"serializer:json;type:longtext"`
	SubmitText    string        `json:"submitText"  gorm:"default:'Submit'"`
	IsActive      bool          `json:"isActive"    gorm:"default:true;index"`
	ResponseCount int64         `json:"response_count" gorm:"default:0"`
}

func (SurveyModel) TableName() string { return "surveys" }

// SurveyResponseModel is one submitted response, values keyed by field name.
type SurveyResponseModel struct {
	Base
	SurveyID string                 `json:"survey_id" gorm:"index;not null"`
	Values   map[string]interface{} `json:"values"    gorm:"serializer:json;type:longtext"`
	IP       string                 `json:"ip"`
	Agent    string                 `json:"agent"     gorm:"type:text"`
}

func (SurveyResponseModel) TableName() string { return "survey_responses" }
