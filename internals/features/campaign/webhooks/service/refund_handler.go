package service

import (
	"log"
	"time"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

// HandleRefund covers refund.* events. Refunds are always tied to a
// captured payment, so the payment id lookup is the only one performed.
func (p *Processor) HandleRefund(ev *dto.Event) (Result, error) {
	ref := ev.Refund()
	if ref == nil {
		return ignored("refund event without refund entity"), nil
	}
	sfx := suffix(ev.Event, "refund.")

	c, err := MatchRefund(p.DB, ref)
	if err != nil {
		return Result{}, err
	}
	if c == nil {
		return ignored(noteNoMatch), nil
	}

	updates := map[string]interface{}{}
	if ref.ID != "" {
		updates["razorpay_refund_id"] = ref.ID
	}
	if ref.Amount > 0 {
		updates["refund_amount"] = ref.Rupees()
	}

	switch sfx {
	case "created":
		updates["refund_status"] = "created"
	case "processed":
		updates["refund_status"] = "processed"
		updates["payment_status"] = contribModel.PaymentStatusRefunded
		updates["refunded_at"] = time.Now()
	case "failed":
		// payment_status untouched: the donor has not been re-charged but
		// the money never came back either. Staff must step in.
		updates["refund_status"] = "failed"
	default:
		log.Printf("[WEBHOOK] refund.%s for contribution %d logged only", sfx, c.ID)
	}

	if len(updates) > 0 {
		if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
			return Result{}, err
		}
	}

	switch sfx {
	case "processed":
		amount := ref.Rupees()
		p.Sender.Send(c.Email, notifService.KindRefundProcessed, notifService.Data{
			ContributionID: &c.ID,
			DonorName:      c.DonorName,
			Amount:         c.Amount,
			RefundAmount:   &amount,
		})
	case "failed":
		p.Sender.SendAdmin(notifService.KindAdminRefundFailed, notifService.Data{
			ContributionID:    &c.ID,
			DonorName:         c.DonorName,
			Email:             c.Email,
			Amount:            ref.Rupees(),
			RefundID:          ref.ID,
			RazorpayPaymentID: ref.PaymentID,
		})
	}
	return processed(&c.ID), nil
}
