package dto

import (
	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ManualContributionRequest records an offline donation (bank transfer,
// cheque, cash at an event) entered by staff.
type ManualContributionRequest struct {
	DonorName string  `json:"donor_name" validate:"required,min=2,max=120"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,min=7,max=30"`
	Company   *string `json:"company" validate:"omitempty,max=120"`
	PANNumber *string `json:"pan_number" validate:"omitempty,max=20"`

	DonorType         string          `json:"donor_type" validate:"omitempty,oneof=individual corporate"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	PaymentPreference string          `json:"payment_preference" validate:"omitempty,oneof=monthly annual one-time"`
	PaymentMethod     string          `json:"payment_method" validate:"required,oneof=bank_transfer cheque cash upi other"`
	Notes             *string         `json:"notes" validate:"omitempty,max=1000"`
}

type RevenueStats struct {
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	MonthlyRecurring    decimal.Decimal `json:"monthly_recurring"`
	SuccessfulPayments  int64           `json:"successful_payments"`
	FailedPayments      int64           `json:"failed_payments"`
	RefundedPayments    int64           `json:"refunded_payments"`
	DisputedPayments    int64           `json:"disputed_payments"`
	ActiveSubscriptions int64           `json:"active_subscriptions"`
	HaltedSubscriptions int64           `json:"halted_subscriptions"`
}

type ReferralLeaderboardEntry struct {
	ReferralCode string          `json:"referral_code"`
	ReferrerName string          `json:"referrer_name"`
	Referred     int64           `json:"referred"`
	AmountRaised decimal.Decimal `json:"amount_raised"`
}
