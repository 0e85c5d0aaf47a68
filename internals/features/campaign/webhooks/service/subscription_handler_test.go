package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	webhookModel "ilika_backend/internals/features/campaign/webhooks/model"
)

func subscriptionBody(t *testing.T, event, subID string, extra map[string]interface{}) []byte {
	t.Helper()
	entity := map[string]interface{}{
		"id":     subID,
		"status": suffix(event, "subscription."),
	}
	for k, v := range extra {
		entity[k] = v
	}
	return eventBody(t, event, map[string]interface{}{
		"subscription": map[string]interface{}{"entity": entity},
	})
}

func TestSubscriptionStatusMapping(t *testing.T) {
	cases := []struct {
		event      string
		wantStatus string
	}{
		{"subscription.activated", contribModel.SubscriptionActive},
		{"subscription.resumed", contribModel.SubscriptionActive},
		{"subscription.paused", contribModel.SubscriptionPaused},
		{"subscription.halted", contribModel.SubscriptionHalted},
		{"subscription.cancelled", contribModel.SubscriptionCancelled},
		{"subscription.completed", contribModel.SubscriptionCompleted},
		{"subscription.authenticated", contribModel.SubscriptionAuthenticated},
		{"subscription.pending", contribModel.SubscriptionPending},
	}

	for i, tc := range cases {
		t.Run(tc.event, func(t *testing.T) {
			p, _, db := newTestProcessor(t)
			subID := fmt.Sprintf("sub_map_%d", i)
			c := seedContribution(t, db, &contribModel.Contribution{
				DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
				RazorpaySubscriptionID: &subID,
			})

			outcome, err := p.Process(
				subscriptionBody(t, tc.event, subID, nil),
				fmt.Sprintf("evt_map_%d", i))
			require.NoError(t, err)
			assert.Equal(t, webhookModel.EventStatusProcessed, outcome.Status)

			got := reload(t, db, c.ID)
			require.NotNil(t, got.SubscriptionStatus)
			assert.Equal(t, tc.wantStatus, *got.SubscriptionStatus)
		})
	}
}

func TestSubscriptionUpdatedChangesNothing(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	subID := "sub_upd_1"
	paused := contribModel.SubscriptionPaused
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		RazorpaySubscriptionID: &subID, SubscriptionStatus: &paused,
	})

	_, err := p.Process(subscriptionBody(t, "subscription.updated", subID, nil), "evt_upd_1")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	require.NotNil(t, got.SubscriptionStatus)
	assert.Equal(t, contribModel.SubscriptionPaused, *got.SubscriptionStatus)
	assert.Empty(t, sender.mails)
}

func TestSubscriptionCharged(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	subID := "sub_chg_1"
	currentEnd := time.Now().AddDate(0, 1, 0)
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		RazorpaySubscriptionID: &subID, TotalPaymentsMade: 2,
	})

	body := eventBody(t, "subscription.charged", map[string]interface{}{
		"subscription": map[string]interface{}{"entity": map[string]interface{}{
			"id":          subID,
			"status":      "active",
			"paid_count":  3,
			"current_end": currentEnd.Unix(),
		}},
		"payment": map[string]interface{}{"entity": map[string]interface{}{
			"id":     "pay_chg_1",
			"amount": 800000,
			"email":  "asha@x.com",
			"status": "captured",
		}},
	})
	_, err := p.Process(body, "evt_chg_1")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	assert.Equal(t, 3, got.TotalPaymentsMade)
	require.NotNil(t, got.SubscriptionStatus)
	assert.Equal(t, contribModel.SubscriptionActive, *got.SubscriptionStatus)
	require.NotNil(t, got.RazorpayPaymentID)
	assert.Equal(t, "pay_chg_1", *got.RazorpayPaymentID)
	require.NotNil(t, got.NextPaymentDate)
	assert.WithinDuration(t, currentEnd, *got.NextPaymentDate, time.Second)

	mails := sender.byKind(notifService.KindSubscriptionCharged)
	require.Len(t, mails, 1)
	assert.Equal(t, 3, mails[0].Data.TotalPaymentsMade)
}

func TestSubscriptionHaltedAlertsAdmin(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	subID := "sub_halt_1"
	seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		RazorpaySubscriptionID: &subID,
	})

	_, err := p.Process(subscriptionBody(t, "subscription.halted", subID, nil), "evt_halt_1")
	require.NoError(t, err)

	assert.Len(t, sender.byKind(notifService.KindSubscriptionHalted), 1)
	alerts := sender.byKind(notifService.KindAdminSubscriptionAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, "admin", alerts[0].To)
	assert.Equal(t, "halted", alerts[0].Data.SubscriptionState)
}

func TestSubscriptionCancelledStampsCancelledAt(t *testing.T) {
	p, sender, db := newTestProcessor(t)
	subID := "sub_cxl_1"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		RazorpaySubscriptionID: &subID,
	})

	_, err := p.Process(subscriptionBody(t, "subscription.cancelled", subID, nil), "evt_cxl_1")
	require.NoError(t, err)

	got := reload(t, db, c.ID)
	require.NotNil(t, got.CancelledAt)
	assert.WithinDuration(t, time.Now(), *got.CancelledAt, time.Minute)
	assert.Len(t, sender.byKind(notifService.KindSubscriptionCancelled), 1)
	assert.Len(t, sender.byKind(notifService.KindAdminSubscriptionAlert), 1)
}

func TestSubscriptionFallsBackToDonorEmail(t *testing.T) {
	p, _, db := newTestProcessor(t)
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
	})

	body := eventBody(t, "subscription.activated", map[string]interface{}{
		"subscription": map[string]interface{}{"entity": map[string]interface{}{
			"id":     "sub_new_1",
			"status": "active",
		}},
		"payment": map[string]interface{}{"entity": map[string]interface{}{
			"email": "asha@x.com",
		}},
	})
	outcome, err := p.Process(body, "evt_fb_1")
	require.NoError(t, err)
	assert.Equal(t, webhookModel.EventStatusProcessed, outcome.Status)

	got := reload(t, db, c.ID)
	require.NotNil(t, got.RazorpaySubscriptionID)
	assert.Equal(t, "sub_new_1", *got.RazorpaySubscriptionID)
	require.NotNil(t, got.SubscriptionStatus)
	assert.Equal(t, contribModel.SubscriptionActive, *got.SubscriptionStatus)
}
