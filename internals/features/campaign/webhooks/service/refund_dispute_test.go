package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	webhookModel "ilika_backend/internals/features/campaign/webhooks/model"
)

func refundBody(t *testing.T, event string, fields map[string]interface{}) []byte {
	t.Helper()
	return eventBody(t, event, map[string]interface{}{
		"refund": map[string]interface{}{"entity": fields},
	})
}

func disputeBody(t *testing.T, event string, fields map[string]interface{}) []byte {
	t.Helper()
	return eventBody(t, event, map[string]interface{}{
		"dispute": map[string]interface{}{"entity": fields},
	})
}

func TestRefundProcessed(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	payID := "pay_ref_1"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		PaymentStatus: contribModel.PaymentStatusSuccess, RazorpayPaymentID: &payID,
	})

	body := refundBody(t, "refund.processed", map[string]interface{}{
		"id":         "rfnd_1",
		"payment_id": payID,
		"amount":     800000,
		"status":     "processed",
	})
	outcome, err := p.Process(body, "evt_ref_1")
	require.NoError(t, err)
	assert.Equal(t, webhookModel.EventStatusProcessed, outcome.Status)

	got := reload(t, db, c.ID)
	assert.Equal(t, contribModel.PaymentStatusRefunded, got.PaymentStatus)
	require.NotNil(t, got.RefundedAt)
	assert.WithinDuration(t, time.Now(), *got.RefundedAt, time.Minute)
	require.NotNil(t, got.RazorpayRefundID)
	assert.Equal(t, "rfnd_1", *got.RazorpayRefundID)
	require.NotNil(t, got.RefundAmount)
	assert.True(t, got.RefundAmount.Equal(decimal.NewFromInt(8000)))

	// At most one donor-facing email.
	assert.Len(t, sender.byKind(notifService.KindRefundProcessed), 1)
	assert.Len(t, sender.mails, 1)
}

func TestRefundFailedAlertsAdminOnly(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	payID := "pay_ref_2"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		PaymentStatus: contribModel.PaymentStatusSuccess, RazorpayPaymentID: &payID,
	})

	body := refundBody(t, "refund.failed", map[string]interface{}{
		"id":         "rfnd_2",
		"payment_id": payID,
		"amount":     800000,
		"status":     "failed",
	})
	_, err := p.Process(body, "evt_ref_2")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	// The charge outcome stands; only the refund bookkeeping records the failure.
	assert.Equal(t, contribModel.PaymentStatusSuccess, got.PaymentStatus)
	require.NotNil(t, got.RefundStatus)
	assert.Equal(t, "failed", *got.RefundStatus)

	alerts := sender.byKind(notifService.KindAdminRefundFailed)
	require.Len(t, alerts, 1)
	assert.Equal(t, "admin", alerts[0].To)
	assert.Empty(t, sender.byKind(notifService.KindRefundProcessed))
}

func TestRefundUnknownPaymentIgnored(t *testing.T) {
	p, sender, db := newTestProcessor(t)

	body := refundBody(t, "refund.processed", map[string]interface{}{
		"id":         "rfnd_3",
		"payment_id": "pay_nobody",
		"amount":     100000,
	})
	outcome, err := p.Process(body, "evt_ref_3")
	require.NoError(t, err)
	assert.Equal(t, webhookModel.EventStatusIgnored, outcome.Status)
	assert.Empty(t, sender.mails)

	var events []webhookModel.WebhookEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].ContributionID)
}

func TestDisputeLost(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	payID := "pay_disp_1"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		PaymentStatus: contribModel.PaymentStatusSuccess, RazorpayPaymentID: &payID,
	})

	body := disputeBody(t, "payment.dispute.lost", map[string]interface{}{
		"id":                 "disp_lost_1",
		"payment_id":         payID,
		"amount":             800000,
		"status":             "lost",
		"reason_description": "Donor claims unauthorized charge",
	})
	_, err := p.Process(body, "evt_displost_1")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	assert.Equal(t, contribModel.PaymentStatusDisputed, got.PaymentStatus)
	require.NotNil(t, got.DisputeStatus)
	assert.Equal(t, "lost", *got.DisputeStatus)
	require.NotNil(t, got.DisputeReason)
	assert.Equal(t, "Donor claims unauthorized charge", *got.DisputeReason)
	assert.Len(t, sender.byKind(notifService.KindAdminDispute), 1)
}

func TestDisputeWonKeepsPaymentStatus(t *testing.T) {
	p, _, db := newTestProcessor(t)
	payID := "pay_disp_2"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		PaymentStatus: contribModel.PaymentStatusSuccess, RazorpayPaymentID: &payID,
	})

	body := disputeBody(t, "payment.dispute.won", map[string]interface{}{
		"id":         "disp_won_1",
		"payment_id": payID,
		"amount":     800000,
		"status":     "won",
	})
	_, err := p.Process(body, "evt_dispwon_1")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	assert.Equal(t, contribModel.PaymentStatusSuccess, got.PaymentStatus)
	require.NotNil(t, got.DisputeStatus)
	assert.Equal(t, "won", *got.DisputeStatus)
}

func TestDisputeCreatedUnknownPaymentStillAlertsAdmin(t *testing.T) {
	p, sender, db := newTestProcessor(t)

	body := disputeBody(t, "payment.dispute.created", map[string]interface{}{
		"id":         "disp_unk_1",
		"payment_id": "pay_phantom",
		"amount":     800000,
		"status":     "open",
	})
	outcome, err := p.Process(body, "evt_dispunk_1")
	require.NoError(t, err)
	assert.Equal(t, webhookModel.EventStatusIgnored, outcome.Status)

	alerts := sender.byKind(notifService.KindAdminDispute)
	require.Len(t, alerts, 1)
	assert.Equal(t, "open", alerts[0].Data.DisputeStatus)

	var events []webhookModel.WebhookEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].ContributionID)
	assert.Equal(t, webhookModel.EventStatusIgnored, events[0].Status)
}

func TestOrderPaidConfirmsSuccess(t *testing.T) {
	p, _, db := newTestProcessor(t)
	payID := "pay_ord_1"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		PaymentStatus: contribModel.PaymentStatusAuthorized, RazorpayPaymentID: &payID,
	})

	body := eventBody(t, "order.paid", map[string]interface{}{
		"order": map[string]interface{}{"entity": map[string]interface{}{
			"id":     "order_1",
			"amount": 800000,
			"status": "paid",
		}},
		"payment": map[string]interface{}{"entity": map[string]interface{}{
			"id":       payID,
			"order_id": "order_1",
			"amount":   800000,
			"email":    "asha@x.com",
		}},
	})
	_, err := p.Process(body, "evt_ord_1")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	assert.Equal(t, contribModel.PaymentStatusSuccess, got.PaymentStatus)
	require.NotNil(t, got.RazorpayOrderID)
	assert.Equal(t, "order_1", *got.RazorpayOrderID)
}
