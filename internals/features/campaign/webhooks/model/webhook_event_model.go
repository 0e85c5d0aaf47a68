package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  webhook_events = immutable audit log of inbound Razorpay deliveries.
  - One row per verified delivery; razorpay_event_id is unique when the
    gateway supplies it, which is what the dedup insert keys on.
  - Raw payload kept as JSONB for debugging / replay.
*/

const (
	EventStatusProcessed = "processed"
	EventStatusIgnored   = "ignored"
	EventStatusFailed    = "failed"
)

type WebhookEvent struct {
	WebhookEventID uuid.UUID `gorm:"column:webhook_event_id;type:uuid;primaryKey" json:"webhook_event_id"`

	EventType       string  `gorm:"column:event_type;type:varchar(80);not null;index" json:"event_type"`
	RazorpayEventID *string `gorm:"column:razorpay_event_id;type:varchar(64);uniqueIndex" json:"razorpay_event_id,omitempty"`

	Payload datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`

	ContributionID *int64 `gorm:"column:contribution_id;index" json:"contribution_id,omitempty"`

	Status       string  `gorm:"column:status;type:varchar(20);not null;default:'processed'" json:"status"`
	ErrorMessage *string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

func (e *WebhookEvent) BeforeCreate(tx *gorm.DB) error {
	if e.WebhookEventID == uuid.Nil {
		e.WebhookEventID = uuid.New()
	}
	return nil
}
