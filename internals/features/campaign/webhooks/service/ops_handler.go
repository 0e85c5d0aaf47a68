package service

import (
	"log"
	"strings"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

// HandleOrderInvoice covers order.* and invoice.* events. order.paid is a
// confirmatory signal alongside payment.captured; invoice.expired means a
// subscription charge never completed.
func (p *Processor) HandleOrderInvoice(ev *dto.Event) (Result, error) {
	switch {
	case ev.Event == "order.paid":
		return p.orderPaid(ev)
	case ev.Event == "invoice.expired":
		inv := ev.Invoice()
		data := notifService.Data{EventType: ev.Event}
		if inv != nil {
			data.InvoiceID = inv.ID
		}
		p.Sender.SendAdmin(notifService.KindAdminInvoiceExpired, data)
		return processed(nil), nil
	default:
		log.Printf("[WEBHOOK] %s logged only", ev.Event)
		return processed(nil), nil
	}
}

func (p *Processor) orderPaid(ev *dto.Event) (Result, error) {
	pay := ev.Payment()
	if pay == nil {
		return ignored("order.paid without payment entity"), nil
	}
	c, err := MatchPayment(p.DB, pay)
	if err != nil {
		return Result{}, err
	}
	if c == nil {
		return ignored(noteNoMatch), nil
	}

	updates := map[string]interface{}{
		"payment_status": contribModel.PaymentStatusSuccess,
	}
	if ord := ev.Order(); ord != nil && ord.ID != "" {
		updates["razorpay_order_id"] = ord.ID
	} else if pay.OrderID != "" {
		updates["razorpay_order_id"] = pay.OrderID
	}
	if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return Result{}, err
	}
	return processed(&c.ID), nil
}

// HandleSettlement covers settlement.* events. No record matching; the
// alert is a financial-ops signal only.
func (p *Processor) HandleSettlement(ev *dto.Event) (Result, error) {
	p.Sender.SendAdmin(notifService.KindAdminSettlement, notifService.Data{
		EventType: ev.Event,
	})
	return processed(nil), nil
}

// HandleDowntime covers payment.downtime.* events.
func (p *Processor) HandleDowntime(ev *dto.Event) (Result, error) {
	p.Sender.SendAdmin(notifService.KindAdminDowntime, notifService.Data{
		EventType: ev.Event,
	})
	return processed(nil), nil
}

// suffix strips a dotted prefix from an event type. "payment.captured"
// with prefix "payment." yields "captured".
func suffix(event, prefix string) string {
	return strings.TrimPrefix(event, prefix)
}
