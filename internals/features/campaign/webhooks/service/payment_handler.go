package service

import (
	"log"
	"time"

	"gorm.io/gorm"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

// HandlePayment covers payment.authorized / payment.captured /
// payment.failed. Other payment.* suffixes are logged only.
func (p *Processor) HandlePayment(ev *dto.Event) (Result, error) {
	pay := ev.Payment()
	if pay == nil {
		return ignored("payment event without payment entity"), nil
	}

	switch suffix(ev.Event, "payment.") {
	case "authorized":
		return p.paymentAuthorized(pay)
	case "captured":
		return p.paymentCaptured(pay)
	case "failed":
		return p.paymentFailed(pay)
	default:
		log.Printf("[WEBHOOK] payment event %s logged only", ev.Event)
		return processed(nil), nil
	}
}

func (p *Processor) paymentAuthorized(pay *dto.PaymentEntity) (Result, error) {
	c, err := MatchPayment(p.DB, pay, contribModel.PaymentStatusPending)
	if err != nil {
		return Result{}, err
	}
	if c == nil {
		return ignored(noteNoMatch), nil
	}
	// Out-of-order tolerance: authorized arriving after captured must not
	// regress a Success row.
	if c.PaymentStatus != contribModel.PaymentStatusPending {
		return processed(&c.ID), nil
	}

	updates := map[string]interface{}{
		"payment_status":      contribModel.PaymentStatusAuthorized,
		"razorpay_payment_id": pay.ID,
	}
	if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return Result{}, err
	}

	p.Sender.Send(c.Email, notifService.KindPaymentAuthorized, notifService.Data{
		ContributionID: &c.ID,
		DonorName:      c.DonorName,
		Amount:         c.Amount,
	})
	return processed(&c.ID), nil
}

func (p *Processor) paymentCaptured(pay *dto.PaymentEntity) (Result, error) {
	// Authorized rows first (the authorize event already recorded the
	// payment id), then direct captures against Pending.
	c, err := MatchPayment(p.DB, pay, contribModel.PaymentStatusAuthorized)
	if err != nil {
		return Result{}, err
	}
	if c == nil {
		if c, err = MatchPayment(p.DB, pay, contribModel.PaymentStatusPending); err != nil {
			return Result{}, err
		}
	}
	if c == nil {
		return ignored(noteNoMatch), nil
	}

	nextPayment := time.Now().AddDate(0, 0, 30)
	updates := map[string]interface{}{
		"payment_status":      contribModel.PaymentStatusSuccess,
		"razorpay_payment_id": pay.ID,
		"subscription_status": contribModel.SubscriptionActive,
		"total_payments_made": gorm.Expr("total_payments_made + 1"),
		"next_payment_date":   nextPayment,
	}
	if pay.OrderID != "" {
		updates["razorpay_order_id"] = pay.OrderID
	}
	if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return Result{}, err
	}

	p.Sender.Send(c.Email, notifService.KindPaymentSuccess, notifService.Data{
		ContributionID:    &c.ID,
		DonorName:         c.DonorName,
		Type:              c.Type,
		Amount:            c.Amount,
		RazorpayPaymentID: pay.ID,
	})
	return processed(&c.ID), nil
}

func (p *Processor) paymentFailed(pay *dto.PaymentEntity) (Result, error) {
	c, err := MatchPayment(p.DB, pay, contribModel.PaymentStatusPending)
	if err != nil {
		return Result{}, err
	}
	if c == nil {
		if c, err = MatchPayment(p.DB, pay, contribModel.PaymentStatusAuthorized); err != nil {
			return Result{}, err
		}
	}
	if c == nil {
		return ignored(noteNoMatch), nil
	}

	reason := pay.ErrorDescription
	if reason == "" {
		reason = pay.ErrorCode
	}
	if reason == "" {
		reason = "Payment failed"
	}

	// retry_count is owned by the retry sweep and never written here.
	updates := map[string]interface{}{
		"payment_status": contribModel.PaymentStatusFailed,
		"failure_reason": reason,
	}
	if pay.ID != "" {
		updates["razorpay_payment_id"] = pay.ID
	}
	if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return Result{}, err
	}

	p.Sender.Send(c.Email, notifService.KindPaymentFailed, notifService.Data{
		ContributionID: &c.ID,
		DonorName:      c.DonorName,
		Amount:         c.Amount,
		FailureReason:  reason,
	})
	return processed(&c.ID), nil
}
