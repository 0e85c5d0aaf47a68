package service

import (
	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

// payment.dispute.* suffix -> dispute_status column value.
var disputeStatusMap = map[string]string{
	"created":         "open",
	"won":             "won",
	"lost":            "lost",
	"closed":          "closed",
	"under_review":    "under_review",
	"action_required": "action_required",
}

// HandleDispute covers payment.dispute.* events. The admin alert goes
// out even when no contribution matches: an unattributable chargeback is
// the highest-urgency failure mode and must never be silently dropped.
func (p *Processor) HandleDispute(ev *dto.Event) (Result, error) {
	dis := ev.Dispute()
	if dis == nil {
		return ignored("dispute event without dispute entity"), nil
	}
	sfx := suffix(ev.Event, "payment.dispute.")

	status, known := disputeStatusMap[sfx]
	if !known {
		status = sfx
	}

	c, err := MatchDispute(p.DB, dis)
	if err != nil {
		return Result{}, err
	}

	reason := dis.ReasonDescription
	if reason == "" {
		reason = dis.ReasonCode
	}

	if c != nil {
		updates := map[string]interface{}{
			"dispute_status": status,
		}
		if dis.ID != "" {
			updates["dispute_id"] = dis.ID
		}
		if reason != "" {
			updates["dispute_reason"] = reason
		}
		// Only a lost dispute is revenue actually gone.
		if sfx == "lost" {
			updates["payment_status"] = contribModel.PaymentStatusDisputed
		}
		if err := p.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
			return Result{}, err
		}
	}

	alert := notifService.Data{
		Amount:            dis.Rupees(),
		DisputeStatus:     status,
		DisputeID:         dis.ID,
		DisputeReason:     reason,
		RazorpayPaymentID: dis.PaymentID,
	}
	if c != nil {
		alert.ContributionID = &c.ID
		alert.DonorName = c.DonorName
		alert.Email = c.Email
	} else {
		alert.DonorName = "Unknown donor"
	}
	p.Sender.SendAdmin(notifService.KindAdminDispute, alert)

	if c == nil {
		return ignored(noteNoMatch), nil
	}
	return processed(&c.ID), nil
}
