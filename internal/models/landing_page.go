package models

// LandingPageStatus is the publication state of a landing page.
type LandingPageStatus string

const (
	LandingPageDraft     LandingPageStatus = "draft"
	LandingPagePublished LandingPageStatus = "published"
)

// LandingPageModel stores a builder document plus its editable metadata.
// Content holds the serialized element tree; it is hydrated through the
// builder's tolerant parser on read, so legacy rows whose content is a bare
// array, a double-encoded string, or a single element object still load.
type LandingPageModel struct {
	Base
	Name        string            `json:"name"         gorm:"not null;index"`
	Title       string            `json:"title"        gorm:"not null"`
	Description string            `json:"description"`
	Slug        string            `json:"slug"         gorm:"uniqueIndex;not null"`
	ContentType string            `json:"contentType"  gorm:"default:'html'"`
	Content     string            `json:"content"      gorm:"type:longtext"`
	Tags        StringArray       `json:"tags"         gorm:"type:json"`
	IsActive    bool              `json:"isActive"     gorm:"default:true;index"`
	Status      LandingPageStatus `json:"status"       gorm:"index;default:'draft'"`
	ViewCount   int64             `json:"view_count"   gorm:"default:0"`
}

func (LandingPageModel) TableName() string { return "landing_pages" }
