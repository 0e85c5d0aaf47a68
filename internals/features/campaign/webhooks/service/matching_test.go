package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

func TestMatchPaymentPrecedence(t *testing.T) {
	db := newTestDB(t)

	payID := "pay_match_1"
	byPayID := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "ById", Email: "shared@x.com", Amount: contribModel.AmountMonthly,
		RazorpayPaymentID: &payID,
	})
	byNotes := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "ByNotes", Email: "shared@x.com", Amount: contribModel.AmountMonthly,
	})
	byHeuristic := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "ByEmail", Email: "shared@x.com", Amount: contribModel.AmountMonthly,
	})

	t.Run("notes reference wins over payment id", func(t *testing.T) {
		got, err := MatchPayment(db, &dto.PaymentEntity{
			ID:     payID,
			Email:  "shared@x.com",
			Amount: 800000,
			Notes:  dto.Notes{"contribution_id": strconv.FormatInt(byNotes.ID, 10)},
		}, contribModel.PaymentStatusPending)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, byNotes.ID, got.ID)
	})

	t.Run("payment id wins over heuristic", func(t *testing.T) {
		got, err := MatchPayment(db, &dto.PaymentEntity{
			ID:     payID,
			Email:  "shared@x.com",
			Amount: 800000,
		}, contribModel.PaymentStatusPending)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, byPayID.ID, got.ID)
	})

	t.Run("heuristic picks the newest matching row", func(t *testing.T) {
		// Make the intended row clearly the most recent.
		require.NoError(t, db.Model(&contribModel.Contribution{}).
			Where("id = ?", byHeuristic.ID).
			Update("created_at", time.Now().Add(time.Hour)).Error)

		got, err := MatchPayment(db, &dto.PaymentEntity{
			ID:     "pay_unseen",
			Email:  "shared@x.com",
			Amount: 800000,
		}, contribModel.PaymentStatusPending)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, byHeuristic.ID, got.ID)
	})

	t.Run("heuristic respects the status filter", func(t *testing.T) {
		got, err := MatchPayment(db, &dto.PaymentEntity{
			ID:     "pay_unseen",
			Email:  "shared@x.com",
			Amount: 800000,
		}, contribModel.PaymentStatusAuthorized)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("no signals means no match", func(t *testing.T) {
		got, err := MatchPayment(db, &dto.PaymentEntity{
			ID:     "pay_unseen",
			Email:  "nobody@x.com",
			Amount: 800000,
		}, contribModel.PaymentStatusPending)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMatchPaymentBySubscriptionID(t *testing.T) {
	db := newTestDB(t)
	subID := "sub_match_1"
	c := seedContribution(t, db, &contribModel.Contribution{
		DonorName: "Asha", Email: "asha@x.com", Amount: contribModel.AmountMonthly,
		RazorpaySubscriptionID: &subID,
	})

	got, err := MatchPayment(db, &dto.PaymentEntity{
		ID:             "pay_unseen",
		SubscriptionID: subID,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
}

func TestNotesTolerantUnmarshal(t *testing.T) {
	t.Run("empty array form", func(t *testing.T) {
		ev, err := dto.ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","notes":[]}}}}`))
		require.NoError(t, err)
		_, ok := ev.Payment().Notes.ContributionID()
		assert.False(t, ok)
	})

	t.Run("object form with numeric value", func(t *testing.T) {
		ev, err := dto.ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","notes":{"contribution_id":42}}}}}`))
		require.NoError(t, err)
		id, ok := ev.Payment().Notes.ContributionID()
		require.True(t, ok)
		assert.EqualValues(t, 42, id)
	})

	t.Run("object form with string value", func(t *testing.T) {
		ev, err := dto.ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","notes":{"contribution_id":"42"}}}}}`))
		require.NoError(t, err)
		id, ok := ev.Payment().Notes.ContributionID()
		require.True(t, ok)
		assert.EqualValues(t, 42, id)
	})

	t.Run("non-numeric reference rejected", func(t *testing.T) {
		ev, err := dto.ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","notes":{"contribution_id":"abc"}}}}}`))
		require.NoError(t, err)
		_, ok := ev.Payment().Notes.ContributionID()
		assert.False(t, ok)
	})
}
