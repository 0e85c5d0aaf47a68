package service

import (
	"log"
	"time"

	"gorm.io/gorm"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

// subscription.* event suffix -> subscription_status column value.
// Empty value means the event carries no status change ("updated").
var subscriptionStatusMap = map[string]string{
	"activated":     contribModel.SubscriptionActive,
	"charged":       contribModel.SubscriptionActive,
	"resumed":       contribModel.SubscriptionActive,
	"cancelled":     contribModel.SubscriptionCancelled,
	"halted":        contribModel.SubscriptionHalted,
	"paused":        contribModel.SubscriptionPaused,
	"completed":     contribModel.SubscriptionCompleted,
	"authenticated": contribModel.SubscriptionAuthenticated,
	"pending":       contribModel.SubscriptionPending,
	"updated":       "",
}

// Donor-facing template per suffix. Missing entries are silent.
var subscriptionEmailMap = map[string]notifService.Kind{
	"activated": notifService.KindSubscriptionActivated,
	"charged":   notifService.KindSubscriptionCharged,
	"halted":    notifService.KindSubscriptionHalted,
	"paused":    notifService.KindSubscriptionPaused,
	"resumed":   notifService.KindSubscriptionResumed,
	"cancelled": notifService.KindSubscriptionCancelled,
}

// HandleSubscription covers subscription.* events.
func (p *Processor) HandleSubscription(ev *dto.Event) (Result, error) {
	sub := ev.Subscription()
	if sub == nil {
		return ignored("subscription event without subscription entity"), nil
	}
	sfx := suffix(ev.Event, "subscription.")

	c, err := MatchSubscription(p.DB, sub)
	if err != nil {
		return Result{}, err
	}
	if c == nil {
		// Recurring charges carry the payment entity with the donor email.
		if pay := ev.Payment(); pay != nil && pay.Email != "" {
			if c, err = MatchByEmail(p.DB, pay.Email); err != nil {
				return Result{}, err
			}
		}
	}
	if c == nil {
		return ignored(noteNoMatch), nil
	}

	updates := map[string]interface{}{}
	if status, known := subscriptionStatusMap[sfx]; known && status != "" {
		updates["subscription_status"] = status
	}
	if sub.ID != "" {
		updates["razorpay_subscription_id"] = sub.ID
	}

	switch sfx {
	case "charged":
		updates["total_payments_made"] = gorm.Expr("total_payments_made + 1")
		if sub.CurrentEnd > 0 {
			updates["next_payment_date"] = time.Unix(sub.CurrentEnd, 0)
		} else {
			updates["next_payment_date"] = time.Now().AddDate(0, 0, 30)
		}
		if pay := ev.Payment(); pay != nil && pay.ID != "" {
			updates["razorpay_payment_id"] = pay.ID
		}
	case "cancelled":
		updates["cancelled_at"] = time.Now()
	}

	if len(updates) > 0 {
		if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
			return Result{}, err
		}
	}

	if kind, ok := subscriptionEmailMap[sfx]; ok {
		payments := c.TotalPaymentsMade
		if sfx == "charged" {
			payments++
		}
		p.Sender.Send(c.Email, kind, notifService.Data{
			ContributionID:    &c.ID,
			DonorName:         c.DonorName,
			Amount:            c.Amount,
			TotalPaymentsMade: payments,
		})
	} else {
		log.Printf("[WEBHOOK] subscription.%s for contribution %d is silent", sfx, c.ID)
	}

	// Halted and cancelled subscriptions are revenue at risk; staff follow
	// up whether or not the donor email went out.
	if sfx == "halted" || sfx == "cancelled" {
		p.Sender.SendAdmin(notifService.KindAdminSubscriptionAlert, notifService.Data{
			ContributionID:    &c.ID,
			DonorName:         c.DonorName,
			Email:             c.Email,
			Amount:            c.Amount,
			SubscriptionState: sfx,
			SubscriptionID:    sub.ID,
		})
	}
	return processed(&c.ID), nil
}
