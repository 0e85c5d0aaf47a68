package model

import (
	"time"

	"github.com/shopspring/decimal"
)

/* ===================== Constants ===================== */

// payment_status lifecycle
const (
	PaymentStatusPending    = "Pending"
	PaymentStatusAuthorized = "Authorized"
	PaymentStatusSuccess    = "Success"
	PaymentStatusFailed     = "Failed"
	PaymentStatusRefunded   = "Refunded"
	PaymentStatusDisputed   = "Disputed"
	PaymentStatusCancelled  = "Cancelled"
)

// subscription_status lifecycle (Razorpay subscription states)
const (
	SubscriptionAuthenticated = "authenticated"
	SubscriptionPending       = "pending"
	SubscriptionActive        = "active"
	SubscriptionPaused        = "paused"
	SubscriptionHalted        = "halted"
	SubscriptionCancelled     = "cancelled"
	SubscriptionCompleted     = "completed"
)

const (
	ContributionTypeIndividual = "individual"
	ContributionTypeGroup      = "group"
)

const (
	DonorTypeIndividual = "individual"
	DonorTypeCorporate  = "corporate"
)

const (
	PreferenceMonthly = "monthly"
	PreferenceAnnual  = "annual"
	PreferenceOneTime = "one-time"
)

// Sponsorship pricing (INR). Group slots split the individual monthly amount
// four ways over the campaign period.
var (
	AmountMonthly   = decimal.NewFromInt(8000)
	AmountAnnual    = decimal.NewFromInt(96000)
	AmountGroupSlot = decimal.NewFromInt(2000)
)

/* ===================== Model ===================== */

// Contribution is one donor's pledge, individual or group-slot. Created
// Pending at checkout time; mutated by the checkout callback, the webhook
// category handlers, the retry sweep, and the admin cancel action.
type Contribution struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	DonorName string  `gorm:"column:donor_name;type:varchar(120);not null" json:"donor_name"`
	Email     string  `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	Phone     *string `gorm:"column:phone;type:varchar(30)" json:"phone,omitempty"`
	Company   *string `gorm:"column:company;type:varchar(120)" json:"company,omitempty"`
	PANNumber *string `gorm:"column:pan_number;type:varchar(20)" json:"pan_number,omitempty"`

	Type      string `gorm:"column:type;type:varchar(20);not null;default:'individual'" json:"type"`
	DonorType string `gorm:"column:donor_type;type:varchar(20);not null;default:'individual'" json:"donor_type"`

	Amount            decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	PaymentPreference string          `gorm:"column:payment_preference;type:varchar(20);default:'monthly'" json:"payment_preference"`

	PaymentStatus      string  `gorm:"column:payment_status;type:varchar(20);not null;default:'Pending';index" json:"payment_status"`
	SubscriptionStatus *string `gorm:"column:subscription_status;type:varchar(20);index" json:"subscription_status,omitempty"`

	// Gateway identifiers, populated progressively as Razorpay reports them.
	RazorpayPaymentID      *string `gorm:"column:razorpay_payment_id;type:varchar(64);index" json:"razorpay_payment_id,omitempty"`
	RazorpayOrderID        *string `gorm:"column:razorpay_order_id;type:varchar(64)" json:"razorpay_order_id,omitempty"`
	RazorpaySubscriptionID *string `gorm:"column:razorpay_subscription_id;type:varchar(64);index" json:"razorpay_subscription_id,omitempty"`
	RazorpayRefundID       *string `gorm:"column:razorpay_refund_id;type:varchar(64)" json:"razorpay_refund_id,omitempty"`

	FailureReason *string `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`

	// Retry bookkeeping. retry_count is owned exclusively by the retry sweep.
	RetryCount         int        `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	LastRetryAt        *time.Time `gorm:"column:last_retry_at" json:"last_retry_at,omitempty"`
	LastReminderSentAt *time.Time `gorm:"column:last_reminder_sent_at" json:"last_reminder_sent_at,omitempty"`

	// Dispute bookkeeping
	DisputeStatus *string `gorm:"column:dispute_status;type:varchar(30)" json:"dispute_status,omitempty"`
	DisputeID     *string `gorm:"column:dispute_id;type:varchar(64)" json:"dispute_id,omitempty"`
	DisputeReason *string `gorm:"column:dispute_reason;type:text" json:"dispute_reason,omitempty"`

	// Refund bookkeeping
	RefundStatus *string          `gorm:"column:refund_status;type:varchar(30)" json:"refund_status,omitempty"`
	RefundAmount *decimal.Decimal `gorm:"column:refund_amount;type:numeric(12,2)" json:"refund_amount,omitempty"`
	RefundedAt   *time.Time       `gorm:"column:refunded_at" json:"refunded_at,omitempty"`

	// Accounting
	TotalPaymentsMade int        `gorm:"column:total_payments_made;not null;default:0" json:"total_payments_made"`
	NextPaymentDate   *time.Time `gorm:"column:next_payment_date" json:"next_payment_date,omitempty"`

	// Referral
	ReferralCode *string `gorm:"column:referral_code;type:varchar(40);index" json:"referral_code,omitempty"`
	ReferredBy   *string `gorm:"column:referred_by;type:varchar(40)" json:"referred_by,omitempty"`

	GroupID *int `gorm:"column:group_id;index" json:"group_id,omitempty"`

	// Manual/offline payment bookkeeping (admin-entered)
	PaymentMethod *string `gorm:"column:payment_method;type:varchar(30)" json:"payment_method,omitempty"`
	Notes         *string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Contribution) TableName() string { return "contributions" }

/* ===================== Helpers ===================== */

func (c *Contribution) IsGroup() bool { return c.Type == ContributionTypeGroup }

// SubscriptionStatusOrDefault treats a missing status as "active" once the
// payment has succeeded, matching how the dashboard reads the column.
func (c *Contribution) SubscriptionStatusOrDefault() string {
	if c.SubscriptionStatus != nil && *c.SubscriptionStatus != "" {
		return *c.SubscriptionStatus
	}
	if c.PaymentStatus == PaymentStatusSuccess {
		return SubscriptionActive
	}
	return ""
}
