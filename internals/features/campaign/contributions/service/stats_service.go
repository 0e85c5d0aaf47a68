package service

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ilika_backend/internals/features/campaign/contributions/model"
	groupModel "ilika_backend/internals/features/campaign/groups/model"
)

type CampaignStats struct {
	TotalRaised             decimal.Decimal `json:"total_raised"`
	TotalContributions      int64           `json:"total_contributions"`
	SuccessfulContributions int64           `json:"successful_contributions"`
	ActiveSubscriptions     int64           `json:"active_subscriptions"`
	GroupsFormed            int64           `json:"groups_formed"`
}

type TickerEntry struct {
	DonorName string          `json:"donor_name"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

func (s *StatsService) CampaignStats() (*CampaignStats, error) {
	stats := &CampaignStats{}

	var raised decimal.NullDecimal
	err := s.DB.Model(&model.Contribution{}).
		Where("payment_status = ?", model.PaymentStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raised).Error
	if err != nil {
		return nil, err
	}
	if raised.Valid {
		stats.TotalRaised = raised.Decimal
	}

	if err := s.DB.Model(&model.Contribution{}).Count(&stats.TotalContributions).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Contribution{}).
		Where("payment_status = ?", model.PaymentStatusSuccess).
		Count(&stats.SuccessfulContributions).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Contribution{}).
		Where("subscription_status = ?", model.SubscriptionActive).
		Count(&stats.ActiveSubscriptions).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&groupModel.Group{}).Count(&stats.GroupsFormed).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// Ticker returns the most recent successful contributions for the
// landing page marquee.
func (s *StatsService) Ticker(limit int) ([]TickerEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var rows []model.Contribution
	err := s.DB.
		Where("payment_status = ?", model.PaymentStatusSuccess).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]TickerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, TickerEntry{
			DonorName: rows[i].DonorName,
			Amount:    rows[i].Amount,
			Type:      rows[i].Type,
			CreatedAt: rows[i].CreatedAt,
		})
	}
	return entries, nil
}
