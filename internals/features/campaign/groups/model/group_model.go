package model

import (
	"time"
)

const (
	GroupStatusOpen     = "Open"
	GroupStatusComplete = "Complete"
)

// DefaultTotalSlots: a pooled campaign is always 4 friends.
const DefaultTotalSlots = 4

// Group is a pooled sponsorship campaign of exactly 4 slots. status is
// always the pure function of the slot counts; every write that changes
// filled_slots recomputes it in the same statement.
type Group struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	GroupID int    `gorm:"column:group_id;not null;uniqueIndex" json:"group_id"`
	Slug    string `gorm:"column:slug;type:varchar(160);not null;uniqueIndex" json:"slug"`

	InitiatorName  string  `gorm:"column:initiator_name;type:varchar(120);not null" json:"initiator_name"`
	InitiatorEmail string  `gorm:"column:initiator_email;type:varchar(255);not null" json:"initiator_email"`
	InitiatorPhone *string `gorm:"column:initiator_phone;type:varchar(30)" json:"initiator_phone,omitempty"`

	TotalSlots  int    `gorm:"column:total_slots;not null;default:4" json:"total_slots"`
	FilledSlots int    `gorm:"column:filled_slots;not null;default:1" json:"filled_slots"`
	Status      string `gorm:"column:status;type:varchar(20);not null;default:'Open'" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Group) TableName() string { return "groups" }

func (g *Group) IsComplete() bool { return g.FilledSlots >= g.TotalSlots }
