package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"ilika_backend/internals/features/campaign/notifications/model"
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

	require.NoError(t, db.AutoMigrate(&model.EmailLog{}))
	return db
}

func TestMailerSkipsWithoutSMTPConfig(t *testing.T) {
	db := newTestDB(t)
	m := &Mailer{DB: db, AdminEmail: "ops@x.com"}

	id := int64(7)
	status := m.Send("donor@x.com", KindPaymentSuccess, Data{
		ContributionID: &id,
		DonorName:      "Asha",
		Amount:         decimal.NewFromInt(8000),
	})
	assert.Equal(t, model.EmailStatusSkipped, status)

	// Every call writes one audit row regardless of outcome.
	var logs []model.EmailLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "donor@x.com", logs[0].Recipient)
	assert.Equal(t, string(KindPaymentSuccess), logs[0].EmailType)
	assert.Equal(t, model.EmailStatusSkipped, logs[0].Status)
	require.NotNil(t, logs[0].ContributionID)
	assert.EqualValues(t, 7, *logs[0].ContributionID)
	assert.NotEmpty(t, logs[0].Subject)
}

func TestMailerUnknownTemplate(t *testing.T) {
	db := newTestDB(t)
	m := &Mailer{DB: db, Host: "smtp.x.com", Username: "u", Password: "p"}

	status := m.Send("donor@x.com", Kind("bogus"), Data{})
	assert.Equal(t, model.EmailStatusSkipped, status)

	var logs []model.EmailLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Equal(t, "unknown template", *logs[0].ErrorMessage)
}

func TestMailerEmptyRecipient(t *testing.T) {
	db := newTestDB(t)
	m := &Mailer{DB: db, Host: "smtp.x.com", Username: "u", Password: "p"}

	status := m.Send("", KindPaymentFailed, Data{DonorName: "Asha"})
	assert.Equal(t, model.EmailStatusSkipped, status)
}

func TestSendAdminUsesConfiguredRecipient(t *testing.T) {
	db := newTestDB(t)
	m := &Mailer{DB: db, AdminEmail: "ops@x.com"}

	m.SendAdmin(KindAdminDispute, Data{DonorName: "Asha", Amount: decimal.NewFromInt(8000)})

	var logs []model.EmailLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "ops@x.com", logs[0].Recipient)
}
