package service

import (
	"log"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"ilika_backend/internals/features/campaign/webhooks/dto"
	"ilika_backend/internals/features/campaign/webhooks/model"
)

// Duplicate is the outcome status for a redelivery that was already
// fully processed; the caller acknowledges it without side effects.
const StatusDuplicate = "duplicate"

type ProcessOutcome struct {
	Event  string
	Status string // processed | ignored | duplicate
}

// Process runs one verified webhook delivery end to end: claim the
// audit row (which is also the dedup gate), classify the event type,
// dispatch to the category handler, then stamp the final outcome on the
// audit row. A handler error marks the row failed and propagates so the
// HTTP layer answers 500 and the gateway redelivers.
func (p *Processor) Process(body []byte, eventID string) (ProcessOutcome, error) {
	ev, err := dto.ParseEvent(body)
	if err != nil {
		p.auditUnparseable(body, eventID, err)
		return ProcessOutcome{}, err
	}

	row, duplicate, err := p.claimEvent(ev, body, eventID)
	if err != nil {
		return ProcessOutcome{}, err
	}
	if duplicate {
		log.Printf("[WEBHOOK] duplicate delivery of %s (%s), skipping", ev.Event, eventID)
		return ProcessOutcome{Event: ev.Event, Status: StatusDuplicate}, nil
	}

	res, handlerErr := p.dispatch(ev)
	if handlerErr != nil {
		log.Printf("[WEBHOOK] %s failed: %v", ev.Event, handlerErr)
		p.finishEvent(row, model.EventStatusFailed, nil, handlerErr.Error())
		return ProcessOutcome{}, handlerErr
	}

	p.finishEvent(row, res.Status, res.ContributionID, res.Note)
	return ProcessOutcome{Event: ev.Event, Status: res.Status}, nil
}

// dispatch classifies by prefix, first match wins. Order matters:
// payment.dispute.* and payment.downtime.* shadow the payment.* group.
func (p *Processor) dispatch(ev *dto.Event) (Result, error) {
	t := ev.Event
	switch {
	case strings.HasPrefix(t, "payment.dispute"):
		return p.HandleDispute(ev)
	case strings.HasPrefix(t, "payment.downtime"):
		return p.HandleDowntime(ev)
	case strings.HasPrefix(t, "payment."):
		return p.HandlePayment(ev)
	case strings.HasPrefix(t, "subscription."):
		return p.HandleSubscription(ev)
	case strings.HasPrefix(t, "refund."):
		return p.HandleRefund(ev)
	case strings.HasPrefix(t, "order."), strings.HasPrefix(t, "invoice."):
		return p.HandleOrderInvoice(ev)
	case strings.HasPrefix(t, "settlement."):
		return p.HandleSettlement(ev)
	default:
		log.Printf("[WEBHOOK] unhandled event type %s", t)
		return ignored("unhandled event type"), nil
	}
}

// claimEvent inserts the audit row for this delivery. When the gateway
// supplied an event id the insert doubles as the dedup gate: a conflict
// against a processed or ignored row means this delivery was already
// handled. A conflict against a failed row means the previous attempt
// blew up mid-flight and the gateway is redelivering, so the row is
// reused and the handler runs again.
func (p *Processor) claimEvent(ev *dto.Event, body []byte, eventID string) (*model.WebhookEvent, bool, error) {
	row := &model.WebhookEvent{
		EventType: ev.Event,
		Payload:   datatypes.JSON(body),
		Status:    model.EventStatusProcessed,
	}

	if eventID == "" {
		if err := p.DB.Create(row).Error; err != nil {
			return nil, false, err
		}
		return row, false, nil
	}

	row.RazorpayEventID = &eventID
	res := p.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "razorpay_event_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return row, false, nil
	}

	var existing model.WebhookEvent
	if err := p.DB.Where("razorpay_event_id = ?", eventID).First(&existing).Error; err != nil {
		return nil, false, err
	}
	if existing.Status != model.EventStatusFailed {
		return &existing, true, nil
	}
	return &existing, false, nil
}

func (p *Processor) finishEvent(row *model.WebhookEvent, status string, contributionID *int64, note string) {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": nil,
	}
	if contributionID != nil {
		updates["contribution_id"] = *contributionID
	}
	if note != "" {
		updates["error_message"] = note
	}
	if err := p.DB.Model(&model.WebhookEvent{}).
		Where("webhook_event_id = ?", row.WebhookEventID).
		Updates(updates).Error; err != nil {
		log.Printf("[WEBHOOK] audit update for %s failed: %v", row.EventType, err)
	}
}

func (p *Processor) auditUnparseable(body []byte, eventID string, parseErr error) {
	msg := parseErr.Error()
	row := model.WebhookEvent{
		EventType:    "unknown",
		Payload:      datatypes.JSON(body),
		Status:       model.EventStatusFailed,
		ErrorMessage: &msg,
	}
	if eventID != "" {
		row.RazorpayEventID = &eventID
	}
	if err := p.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		log.Printf("[WEBHOOK] audit insert for unparseable body failed: %v", err)
	}
}
