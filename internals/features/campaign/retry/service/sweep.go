package service

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	notifService "ilika_backend/internals/features/campaign/notifications/service"
)

const (
	// Reminders per failed contribution before the final notice.
	MaxRetries = 3
	// Minimum gap between reminders to the same donor.
	ReminderWindow = 6 * time.Hour
	// Halted subscriptions get a slower cadence.
	HaltedReminderWindow = 48 * time.Hour
)

// Sweeper re-drives failed payments with reminder emails, independent of
// webhook traffic. It is the sole writer of retry_count.
type Sweeper struct {
	DB     *gorm.DB
	Sender notifService.Sender
}

func NewSweeper(db *gorm.DB, sender notifService.Sender) *Sweeper {
	return &Sweeper{DB: db, Sender: sender}
}

type SweepResult struct {
	RemindersSent int       `json:"reminders_sent"`
	FinalNotices  int       `json:"final_notices"`
	AdminAlerted  bool      `json:"admin_alerted"`
	Errors        []string  `json:"errors"`
	Timestamp     time.Time `json:"timestamp"`
}

// Run executes one sweep. Each contribution is processed independently;
// one bad email address never blocks the rest. Only a selection-query
// failure aborts the run.
func (s *Sweeper) Run() (*SweepResult, error) {
	now := time.Now()
	result := &SweepResult{Errors: []string{}, Timestamp: now}

	var due []contribModel.Contribution
	err := s.DB.
		Where("payment_status = ? AND retry_count < ?", contribModel.PaymentStatusFailed, MaxRetries).
		Where("last_reminder_sent_at IS NULL OR last_reminder_sent_at < ?", now.Add(-ReminderWindow)).
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("select failed contributions: %w", err)
	}

	for i := range due {
		s.remind(&due[i], result)
	}

	s.remindHalted(now, result)

	if err := s.adminSummary(result); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	log.Printf("[SWEEP] done: %d reminders, %d final notices, %d errors",
		result.RemindersSent, result.FinalNotices, len(result.Errors))
	return result, nil
}

func (s *Sweeper) remind(c *contribModel.Contribution, result *SweepResult) {
	newCount := c.RetryCount + 1

	kind := notifService.KindRetryReminder
	if newCount >= MaxRetries {
		kind = notifService.KindFinalReminder
	}
	status := s.Sender.Send(c.Email, kind, notifService.Data{
		ContributionID: &c.ID,
		DonorName:      c.DonorName,
		Amount:         c.Amount,
		RetryCount:     newCount,
	})
	if status == "failed" {
		result.Errors = append(result.Errors, fmt.Sprintf("contribution %d: %s send failed", c.ID, kind))
	}

	// Stamped regardless of the send outcome: never re-remind inside the
	// same window even when the provider is down.
	now := time.Now()
	err := s.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"retry_count":           newCount,
		"last_retry_at":         now,
		"last_reminder_sent_at": now,
	}).Error
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("contribution %d: update failed: %v", c.ID, err))
		return
	}

	if newCount >= MaxRetries {
		result.FinalNotices++
	} else {
		result.RemindersSent++
	}
}

// remindHalted nudges donors whose subscription the gateway halted. Best
// effort: the original halt event already alerted staff, so failures
// here are logged and swallowed.
func (s *Sweeper) remindHalted(now time.Time, result *SweepResult) {
	var halted []contribModel.Contribution
	err := s.DB.
		Where("subscription_status = ?", contribModel.SubscriptionHalted).
		Where("last_reminder_sent_at IS NULL OR last_reminder_sent_at < ?", now.Add(-HaltedReminderWindow)).
		Find(&halted).Error
	if err != nil {
		log.Printf("[SWEEP] halted selection failed: %v", err)
		return
	}

	for i := range halted {
		c := &halted[i]
		s.Sender.Send(c.Email, notifService.KindSubscriptionHalted, notifService.Data{
			ContributionID: &c.ID,
			DonorName:      c.DonorName,
			Amount:         c.Amount,
		})
		stamp := s.DB.Model(&contribModel.Contribution{}).Where("id = ?", c.ID).
			Update("last_reminder_sent_at", time.Now()).Error
		if stamp != nil {
			log.Printf("[SWEEP] halted stamp for %d failed: %v", c.ID, stamp)
		}
	}
}

// adminSummary sends one aggregated mail when any failed payments exist:
// the total needing attention plus how many exhausted their retries.
func (s *Sweeper) adminSummary(result *SweepResult) error {
	var totalFailed, exhausted int64
	if err := s.DB.Model(&contribModel.Contribution{}).
		Where("payment_status = ?", contribModel.PaymentStatusFailed).
		Count(&totalFailed).Error; err != nil {
		return fmt.Errorf("count failed contributions: %w", err)
	}
	if totalFailed == 0 {
		return nil
	}
	if err := s.DB.Model(&contribModel.Contribution{}).
		Where("payment_status = ? AND retry_count >= ?", contribModel.PaymentStatusFailed, MaxRetries).
		Count(&exhausted).Error; err != nil {
		return fmt.Errorf("count exhausted contributions: %w", err)
	}

	s.Sender.SendAdmin(notifService.KindAdminFailedSummary, notifService.Data{
		Count:      int(totalFailed),
		MaxRetries: int(exhausted),
	})
	result.AdminAlerted = true
	return nil
}
