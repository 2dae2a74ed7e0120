package models

import "time"

// SubscriberStatus is a recipient's opt-in state.
type SubscriberStatus string

const (
	SubscriberActive       SubscriberStatus = "subscribed"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
	SubscriberBounced      SubscriberStatus = "bounced"
)

// SubscriberModel is one mailing-list recipient. Token is the opaque value
// embedded in unsubscribe links.
type SubscriberModel struct {
	Base
	Email          string           `json:"email"   gorm:"uniqueIndex;not null"`
	Name           string           `json:"name"`
	Tags           StringArray      `json:"tags"    gorm:"type:json"`
	Status         SubscriberStatus `json:"status"  gorm:"index;default:'subscribed'"`
	Source         string           `json:"source"` // manual | form | api
	Token          string           `json:"-"       gorm:"uniqueIndex;not null"`
	UnsubscribedAt *time.Time       `json:"unsubscribed_at"`
}

func (SubscriberModel) TableName() string { return "subscribers" }
