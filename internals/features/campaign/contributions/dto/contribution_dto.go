package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"ilika_backend/internals/features/campaign/contributions/model"
)

type CreateContributionRequest struct {
	DonorName string  `json:"donor_name" validate:"required,min=2,max=120"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,min=7,max=30"`
	Company   *string `json:"company" validate:"omitempty,max=120"`
	PANNumber *string `json:"pan_number" validate:"omitempty,max=20"`

	DonorType         string           `json:"donor_type" validate:"omitempty,oneof=individual corporate"`
	PaymentPreference string           `json:"payment_preference" validate:"omitempty,oneof=monthly annual one-time"`
	Amount            *decimal.Decimal `json:"amount"`

	ReferredBy *string `json:"referred_by" validate:"omitempty,max=40"`
}

// CheckoutCallbackRequest is the client-side checkout widget's result,
// reported after the widget closes.
type CheckoutCallbackRequest struct {
	Status            string `json:"status" validate:"required,oneof=Success Failed Cancelled"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"omitempty,max=64"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"omitempty,max=64"`
	FailureReason     string `json:"failure_reason" validate:"omitempty,max=500"`
}

type ContributionResponse struct {
	ID                int64           `json:"id"`
	DonorName         string          `json:"donor_name"`
	Email             string          `json:"email"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentPreference string          `json:"payment_preference"`
	PaymentStatus     string          `json:"payment_status"`
	ReferralCode      *string         `json:"referral_code,omitempty"`
	RazorpayOrderID   *string         `json:"razorpay_order_id,omitempty"`
	GroupID           *int            `json:"group_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func ToContributionResponse(c *model.Contribution) ContributionResponse {
	return ContributionResponse{
		ID:                c.ID,
		DonorName:         c.DonorName,
		Email:             c.Email,
		Type:              c.Type,
		Amount:            c.Amount,
		PaymentPreference: c.PaymentPreference,
		PaymentStatus:     c.PaymentStatus,
		ReferralCode:      c.ReferralCode,
		RazorpayOrderID:   c.RazorpayOrderID,
		GroupID:           c.GroupID,
		CreatedAt:         c.CreatedAt,
	}
}
