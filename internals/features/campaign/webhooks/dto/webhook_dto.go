package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

/* =========================================================
   Razorpay webhook envelope
========================================================= */

// Event is the outer webhook body. Only the entities a given event type
// carries are populated; everything else stays nil.
type Event struct {
	Event     string   `json:"event"`
	AccountID string   `json:"account_id"`
	CreatedAt int64    `json:"created_at"`
	Contains  []string `json:"contains"`
	Payload   Payload  `json:"payload"`
}

type Payload struct {
	Payment      *wrapped[PaymentEntity]      `json:"payment,omitempty"`
	Subscription *wrapped[SubscriptionEntity] `json:"subscription,omitempty"`
	Refund       *wrapped[RefundEntity]       `json:"refund,omitempty"`
	Dispute      *wrapped[DisputeEntity]      `json:"dispute,omitempty"`
	Invoice      *wrapped[InvoiceEntity]      `json:"invoice,omitempty"`
	Order        *wrapped[OrderEntity]        `json:"order,omitempty"`
}

// Razorpay nests every entity one level under an "entity" key.
type wrapped[T any] struct {
	Entity T `json:"entity"`
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := sonic.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("webhook body has no event field")
	}
	return &ev, nil
}

func (e *Event) Payment() *PaymentEntity {
	if e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

func (e *Event) Subscription() *SubscriptionEntity {
	if e.Payload.Subscription == nil {
		return nil
	}
	return &e.Payload.Subscription.Entity
}

func (e *Event) Refund() *RefundEntity {
	if e.Payload.Refund == nil {
		return nil
	}
	return &e.Payload.Refund.Entity
}

func (e *Event) Dispute() *DisputeEntity {
	if e.Payload.Dispute == nil {
		return nil
	}
	return &e.Payload.Dispute.Entity
}

func (e *Event) Invoice() *InvoiceEntity {
	if e.Payload.Invoice == nil {
		return nil
	}
	return &e.Payload.Invoice.Entity
}

func (e *Event) Order() *OrderEntity {
	if e.Payload.Order == nil {
		return nil
	}
	return &e.Payload.Order.Entity
}

/* =========================================================
   Notes
   Razorpay serializes empty notes as [] and populated notes as an
   object with arbitrary scalar values, so a plain map won't unmarshal.
========================================================= */

type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		*n = Notes{}
		return nil
	}
	raw := map[string]interface{}{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Notes, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
			// drop
		default:
			b, err := sonic.Marshal(val)
			if err == nil {
				out[k] = string(b)
			}
		}
	}
	*n = out
	return nil
}

// ContributionID extracts the checkout correlation ref planted in order
// notes, if present and numeric.
func (n Notes) ContributionID() (int64, bool) {
	v, ok := n["contribution_id"]
	if !ok || v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

/* =========================================================
   Entities (paise amounts; Rupees() converts)
========================================================= */

type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	SubscriptionID   string `json:"subscription_id"`
	InvoiceID        string `json:"invoice_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	Captured         bool   `json:"captured"`
	Notes            Notes  `json:"notes"`
	CreatedAt        int64  `json:"created_at"`
}

func (p *PaymentEntity) Rupees() decimal.Decimal { return paise(p.Amount) }

type SubscriptionEntity struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	Status     string `json:"status"`
	PaidCount  int    `json:"paid_count"`
	TotalCount int    `json:"total_count"`
	CurrentEnd int64  `json:"current_end"`
	ChargeAt   int64  `json:"charge_at"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at"`
}

type RefundEntity struct {
	ID             string `json:"id"`
	PaymentID      string `json:"payment_id"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
	SpeedProcessed string `json:"speed_processed"`
	Notes          Notes  `json:"notes"`
	CreatedAt      int64  `json:"created_at"`
}

func (r *RefundEntity) Rupees() decimal.Decimal { return paise(r.Amount) }

type DisputeEntity struct {
	ID                string `json:"id"`
	PaymentID         string `json:"payment_id"`
	Amount            int64  `json:"amount"`
	Status            string `json:"status"`
	Phase             string `json:"phase"`
	ReasonCode        string `json:"reason_code"`
	ReasonDescription string `json:"reason_description"`
	RespondBy         int64  `json:"respond_by"`
	CreatedAt         int64  `json:"created_at"`
}

func (d *DisputeEntity) Rupees() decimal.Decimal { return paise(d.Amount) }

type InvoiceEntity struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	PaymentID      string `json:"payment_id"`
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Notes          Notes  `json:"notes"`
	CreatedAt      int64  `json:"created_at"`
}

type OrderEntity struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Receipt   string `json:"receipt"`
	Notes     Notes  `json:"notes"`
	CreatedAt int64  `json:"created_at"`
}

func paise(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
}
