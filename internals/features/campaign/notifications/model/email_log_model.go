package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusSkipped = "skipped"
)

// EmailLog is the immutable audit record of one notification attempt. Every
// Send call writes one row regardless of outcome.
type EmailLog struct {
	EmailLogID uuid.UUID `gorm:"column:email_log_id;type:uuid;primaryKey" json:"email_log_id"`

	Recipient string `gorm:"column:recipient;type:varchar(255);not null" json:"recipient"`
	EmailType string `gorm:"column:email_type;type:varchar(50);not null;index" json:"email_type"`
	Subject   string `gorm:"column:subject;type:text" json:"subject"`

	ContributionID *int64 `gorm:"column:contribution_id;index" json:"contribution_id,omitempty"`

	Status       string  `gorm:"column:status;type:varchar(20);not null" json:"status"`
	ProviderID   *string `gorm:"column:provider_id;type:varchar(120)" json:"provider_id,omitempty"`
	ErrorMessage *string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (EmailLog) TableName() string { return "email_logs" }

func (l *EmailLog) BeforeCreate(tx *gorm.DB) error {
	if l.EmailLogID == uuid.Nil {
		l.EmailLogID = uuid.New()
	}
	return nil
}
