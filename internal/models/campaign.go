package models

import "time"

// CampaignStatus is the sending lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft   CampaignStatus = "draft"
	CampaignQueued  CampaignStatus = "queued"
	CampaignSending CampaignStatus = "sending"
	CampaignSent    CampaignStatus = "sent"
	CampaignFailed  CampaignStatus = "failed"
)

// CampaignModel is one bulk email send: subject, body (markdown), optional
// landing page embed, and delivery counters filled in by the tracking layer.
type CampaignModel struct {
	Base
	Name          string            `json:"name"            gorm:"not null;index"`
	Subject       string            `json:"subject"         gorm:"not null"`
	FromName      string            `json:"from_name"`
	Body          string            `json:"body"            gorm:"type:longtext"` // markdown
	LandingPageID *string           `json:"landing_page_id" gorm:"index"`
	LandingPage   *LandingPageModel `json:"landing_page,omitempty" gorm:"foreignKey:LandingPageID"`
	Status        CampaignStatus    `json:"status"          gorm:"index;default:'draft'"`
	Tags          StringArray       `json:"tags"            gorm:"type:json"`
	ScheduledAt   *time.Time        `json:"scheduled_at"    gorm:"index"`
	SentAt        *time.Time        `json:"sent_at"`
	Recipients    int64             `json:"recipients"      gorm:"default:0"`
	SentCount     int64             `json:"sent"            gorm:"column:sent_count;default:0"`
	FailedCount   int64             `json:"failed"          gorm:"column:failed_count;default:0"`
	OpenCount     int64             `json:"opens"           gorm:"column:open_count;default:0"`
	ClickCount    int64             `json:"clicks"          gorm:"column:click_count;default:0"`
}

func (CampaignModel) TableName() string { return "campaigns" }

// Editable reports whether the campaign can still be modified or queued.
func (c *CampaignModel) Editable() bool {
	return c.Status == CampaignDraft || c.Status == CampaignQueued || c.Status == CampaignFailed
}

// CampaignEventKind is the tracked interaction type.
type CampaignEventKind string

const (
	CampaignEventOpen  CampaignEventKind = "open"
	CampaignEventClick CampaignEventKind = "click"
)

// CampaignEventModel records one tracked open or click, deduplicated per
// (campaign, subscriber, kind) at the tracking layer.
type CampaignEventModel struct {
	Base
	CampaignID   string            `json:"campaign_id"   gorm:"index;not null"`
	SubscriberID string            `json:"subscriber_id" gorm:"index;not null"`
	Kind         CampaignEventKind `json:"kind"          gorm:"index;not null"`
	URL          string            `json:"url"           gorm:"type:text"`
	IP           string            `json:"ip"`
	Agent        string            `json:"agent"         gorm:"type:text"`
}

func (CampaignEventModel) TableName() string { return "campaign_events" }
