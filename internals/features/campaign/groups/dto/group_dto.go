package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ilika_backend/internals/features/campaign/groups/model"
)

type CreateGroupRequest struct {
	InitiatorName  string  `json:"initiator_name" validate:"required,min=2,max=120"`
	InitiatorEmail string  `json:"initiator_email" validate:"required,email"`
	InitiatorPhone *string `json:"initiator_phone" validate:"omitempty,min=7,max=30"`
	ReferredBy     *string `json:"referred_by" validate:"omitempty,max=40"`
}

type JoinGroupRequest struct {
	DonorName string  `json:"donor_name" validate:"required,min=2,max=120"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,min=7,max=30"`
}

type UnjoinGroupRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type GroupMember struct {
	DonorName     string          `json:"donor_name"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
	JoinedAt      time.Time       `json:"joined_at"`
}

type GroupResponse struct {
	ID          int64         `json:"id"`
	GroupID     int           `json:"group_id"`
	Slug        string        `json:"slug"`
	Initiator   string        `json:"initiator_name"`
	TotalSlots  int           `json:"total_slots"`
	FilledSlots int           `json:"filled_slots"`
	Status      string        `json:"status"`
	Members     []GroupMember `json:"members,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func ToGroupResponse(g *model.Group, members []GroupMember) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		GroupID:     g.GroupID,
		Slug:        g.Slug,
		Initiator:   g.InitiatorName,
		TotalSlots:  g.TotalSlots,
		FilledSlots: g.FilledSlots,
		Status:      g.Status,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
}
