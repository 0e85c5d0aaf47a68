package service

import (
	"log"
	"strconv"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"ilika_backend/internals/configs"
	"ilika_backend/internals/features/campaign/notifications/model"
)

// Sender delivers one notification and reports the outcome as an
// EmailLog status ("sent", "failed" or "skipped"). Webhook handlers and
// the retry sweep depend on this interface, not on SMTP directly.
type Sender interface {
	Send(to string, kind Kind, data Data) string
	SendAdmin(kind Kind, data Data) string
}

// Mailer is the SMTP-backed Sender. Every Send writes exactly one
// email_logs row, whatever the outcome; logging failures never bubble up.
type Mailer struct {
	DB *gorm.DB

	Host     string
	Port     int
	Username string
	Password string
	From     string

	AdminEmail string
}

func NewMailerFromEnv(db *gorm.DB) *Mailer {
	port, _ := strconv.Atoi(configs.GetEnv("SMTP_PORT", "587"))
	return &Mailer{
		DB:         db,
		Host:       configs.GetEnv("SMTP_HOST", ""),
		Port:       port,
		Username:   configs.GetEnv("SMTP_USER", ""),
		Password:   configs.GetEnv("SMTP_PASS", ""),
		From:       configs.FromEmail,
		AdminEmail: configs.AdminEmail,
	}
}

// Configured reports whether SMTP credentials are present. When they are
// not, sends degrade to "skipped" so payment processing keeps working in
// environments without a mail account.
func (m *Mailer) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

func (m *Mailer) Send(to string, kind Kind, data Data) string {
	subject, html, ok := Render(kind, data)
	if !ok {
		log.Printf("[MAILER] unknown template %q, skipping", kind)
		m.logAttempt(to, kind, "", data.ContributionID, model.EmailStatusSkipped, nil, strptr("unknown template"))
		return model.EmailStatusSkipped
	}
	if to == "" {
		m.logAttempt(to, kind, subject, data.ContributionID, model.EmailStatusSkipped, nil, strptr("empty recipient"))
		return model.EmailStatusSkipped
	}
	if !m.Configured() {
		log.Printf("[MAILER] SMTP not configured, skipping %s to %s", kind, to)
		m.logAttempt(to, kind, subject, data.ContributionID, model.EmailStatusSkipped, nil, strptr("smtp not configured"))
		return model.EmailStatusSkipped
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Printf("[MAILER] send %s to %s failed: %v", kind, to, err)
		errMsg := err.Error()
		m.logAttempt(to, kind, subject, data.ContributionID, model.EmailStatusFailed, nil, &errMsg)
		return model.EmailStatusFailed
	}

	log.Printf("[MAILER] sent %s to %s", kind, to)
	m.logAttempt(to, kind, subject, data.ContributionID, model.EmailStatusSent, nil, nil)
	return model.EmailStatusSent
}

func (m *Mailer) SendAdmin(kind Kind, data Data) string {
	return m.Send(m.AdminEmail, kind, data)
}

func (m *Mailer) logAttempt(to string, kind Kind, subject string, contributionID *int64, status string, providerID, errMsg *string) {
	if m.DB == nil {
		return
	}
	row := model.EmailLog{
		Recipient:      to,
		EmailType:      string(kind),
		Subject:        subject,
		ContributionID: contributionID,
		Status:         status,
		ProviderID:     providerID,
		ErrorMessage:   errMsg,
	}
	if err := m.DB.Create(&row).Error; err != nil {
		log.Printf("[MAILER] email_logs insert failed: %v", err)
	}
}

func strptr(s string) *string { return &s }
