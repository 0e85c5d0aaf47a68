package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	emailModel "ilika_backend/internals/features/campaign/notifications/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&contribModel.Contribution{}, &emailModel.EmailLog{}))
	return db
}

type sentMail struct {
	To   string
	Kind notifService.Kind
	Data notifService.Data
}

type fakeSender struct {
	mails  []sentMail
	result string
}

func (f *fakeSender) Send(to string, kind notifService.Kind, data notifService.Data) string {
	f.mails = append(f.mails, sentMail{To: to, Kind: kind, Data: data})
	return f.result
}

func (f *fakeSender) SendAdmin(kind notifService.Kind, data notifService.Data) string {
	return f.Send("admin", kind, data)
}

func (f *fakeSender) byKind(kind notifService.Kind) []sentMail {
	var out []sentMail
	for _, m := range f.mails {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func newTestSweeper(t *testing.T) (*Sweeper, *fakeSender, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	sender := &fakeSender{result: "sent"}
	return NewSweeper(db, sender), sender, db
}

func seedFailed(t *testing.T, db *gorm.DB, email string, retryCount int, lastReminder *time.Time) *contribModel.Contribution {
	t.Helper()
	c := &contribModel.Contribution{
		DonorName:          "Donor",
		Email:              email,
		Type:               contribModel.ContributionTypeIndividual,
		DonorType:          contribModel.DonorTypeIndividual,
		Amount:             contribModel.AmountMonthly,
		PaymentPreference:  contribModel.PreferenceMonthly,
		PaymentStatus:      contribModel.PaymentStatusFailed,
		RetryCount:         retryCount,
		LastReminderSentAt: lastReminder,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func reload(t *testing.T, db *gorm.DB, id int64) *contribModel.Contribution {
	t.Helper()
	var c contribModel.Contribution
	require.NoError(t, db.First(&c, "id = ?", id).Error)
	return &c
}

func TestSweepIdempotentWithinWindow(t *testing.T) {
	s, sender, db := newTestSweeper(t)
	c := seedFailed(t, db, "donor@x.com", 0, nil)

	first, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, first.RemindersSent)
	assert.Equal(t, 0, first.FinalNotices)

	got := reload(t, db, c.ID)
	assert.Equal(t, 1, got.RetryCount)
	require.NotNil(t, got.LastReminderSentAt)
	require.NotNil(t, got.LastRetryAt)
	require.Len(t, sender.byKind(notifService.KindRetryReminder), 1)
	assert.Equal(t, 1, sender.byKind(notifService.KindRetryReminder)[0].Data.RetryCount)

	// Second run inside the 6h window: no new donor reminder.
	second, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, second.RemindersSent)
	assert.Equal(t, 0, second.FinalNotices)
	assert.Len(t, sender.byKind(notifService.KindRetryReminder), 1)
	assert.Equal(t, 1, reload(t, db, c.ID).RetryCount)
}

func TestSweepTerminatesAtMaxRetries(t *testing.T) {
	s, sender, db := newTestSweeper(t)
	old := time.Now().Add(-7 * time.Hour)
	c := seedFailed(t, db, "donor@x.com", 2, &old)

	result, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersSent)
	assert.Equal(t, 1, result.FinalNotices)
	require.Len(t, sender.byKind(notifService.KindFinalReminder), 1)
	assert.Equal(t, 3, reload(t, db, c.ID).RetryCount)

	// Exhausted rows never come back, no matter how stale the stamp.
	stale := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, db.Model(&contribModel.Contribution{}).
		Where("id = ?", c.ID).Update("last_reminder_sent_at", stale).Error)

	result, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersSent)
	assert.Equal(t, 0, result.FinalNotices)
	assert.Len(t, sender.byKind(notifService.KindFinalReminder), 1)
	assert.Equal(t, 3, reload(t, db, c.ID).RetryCount)
}

func TestSweepStampsEvenWhenSendFails(t *testing.T) {
	s, sender, db := newTestSweeper(t)
	sender.result = "failed"
	c := seedFailed(t, db, "bounce@x.com", 0, nil)

	result, err := s.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, result.Errors)

	got := reload(t, db, c.ID)
	assert.Equal(t, 1, got.RetryCount)
	require.NotNil(t, got.LastReminderSentAt)
}

func TestSweepAdminSummaryCounts(t *testing.T) {
	s, sender, db := newTestSweeper(t)
	recent := time.Now()
	seedFailed(t, db, "a@x.com", 0, nil)
	seedFailed(t, db, "b@x.com", 3, &recent) // exhausted, excluded from reminders
	seedFailed(t, db, "c@x.com", 3, &recent) // exhausted

	result, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemindersSent)
	assert.True(t, result.AdminAlerted)

	summaries := sender.byKind(notifService.KindAdminFailedSummary)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].Data.Count)
	assert.Equal(t, 2, summaries[0].Data.MaxRetries)
}

func TestSweepNoFailedPaymentsNoAdminMail(t *testing.T) {
	s, sender, _ := newTestSweeper(t)

	result, err := s.Run()
	require.NoError(t, err)
	assert.False(t, result.AdminAlerted)
	assert.Empty(t, sender.mails)
}

func TestSweepRemindsHaltedSubscriptions(t *testing.T) {
	s, sender, db := newTestSweeper(t)
	halted := contribModel.SubscriptionHalted
	c := &contribModel.Contribution{
		DonorName:          "Donor",
		Email:              "halted@x.com",
		Type:               contribModel.ContributionTypeIndividual,
		DonorType:          contribModel.DonorTypeIndividual,
		Amount:             contribModel.AmountMonthly,
		PaymentPreference:  contribModel.PreferenceMonthly,
		PaymentStatus:      contribModel.PaymentStatusSuccess,
		SubscriptionStatus: &halted,
	}
	require.NoError(t, db.Create(c).Error)

	result, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersSent)
	require.Len(t, sender.byKind(notifService.KindSubscriptionHalted), 1)
	require.NotNil(t, reload(t, db, c.ID).LastReminderSentAt)

	// Inside the 48h window: silent.
	_, err = s.Run()
	require.NoError(t, err)
	assert.Len(t, sender.byKind(notifService.KindSubscriptionHalted), 1)
}
