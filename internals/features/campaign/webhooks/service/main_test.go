package service

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	groupModel "ilika_backend/internals/features/campaign/groups/model"
	emailModel "ilika_backend/internals/features/campaign/notifications/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
	webhookModel "ilika_backend/internals/features/campaign/webhooks/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and shared.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&contribModel.Contribution{},
		&groupModel.Group{},
		&webhookModel.WebhookEvent{},
		&emailModel.EmailLog{},
	))
	return db
}

type sentMail struct {
	To   string
	Kind notifService.Kind
	Data notifService.Data
}

// fakeSender records sends instead of talking to SMTP.
type fakeSender struct {
	mails  []sentMail
	result string
}

func newFakeSender() *fakeSender {
	return &fakeSender{result: "sent"}
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

func newTestProcessor(t *testing.T) (*Processor, *fakeSender, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	sender := newFakeSender()
	return NewProcessor(db, sender), sender, db
}

func eventBody(t *testing.T, event string, payload map[string]interface{}) []byte {
	t.Helper()
	body, err := sonic.Marshal(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})
	require.NoError(t, err)
	return body
}

func paymentPayload(fields map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"payment": map[string]interface{}{"entity": fields},
	}
}

func seedContribution(t *testing.T, db *gorm.DB, c *contribModel.Contribution) *contribModel.Contribution {
	t.Helper()
	if c.Type == "" {
		c.Type = contribModel.ContributionTypeIndividual
	}
	if c.DonorType == "" {
		c.DonorType = contribModel.DonorTypeIndividual
	}
	if c.PaymentPreference == "" {
		c.PaymentPreference = contribModel.PreferenceMonthly
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = contribModel.PaymentStatusPending
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
