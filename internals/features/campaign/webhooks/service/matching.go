package service

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	"ilika_backend/internals/features/campaign/webhooks/dto"
)

/*
  Matching precedence, strongest signal first:
    1. notes.contribution_id planted at checkout (exact primary key)
    2. razorpay_payment_id
    3. razorpay_subscription_id
    4. email + amount + payment_status heuristic, newest row wins
  No match is a benign outcome, not an error: events for records this
  system never created (dashboard test payments, older campaigns) are
  acknowledged and ignored.
*/

// MatchPayment resolves the contribution a payment entity refers to.
// heuristicStatuses scopes step 4 to the lifecycle states the calling
// handler is allowed to transition from.
func MatchPayment(db *gorm.DB, p *dto.PaymentEntity, heuristicStatuses ...string) (*contribModel.Contribution, error) {
	if p == nil {
		return nil, nil
	}

	if id, ok := p.Notes.ContributionID(); ok {
		if c, err := findByID(db, id); c != nil || err != nil {
			return c, err
		}
	}

	if p.ID != "" {
		if c, err := findOne(db, "razorpay_payment_id = ?", p.ID); c != nil || err != nil {
			return c, err
		}
	}

	if p.SubscriptionID != "" {
		if c, err := findOne(db, "razorpay_subscription_id = ?", p.SubscriptionID); c != nil || err != nil {
			return c, err
		}
	}

	if p.Email != "" && len(heuristicStatuses) > 0 {
		return findByEmailAmount(db, p.Email, p.Rupees(), heuristicStatuses)
	}
	return nil, nil
}

// MatchSubscription resolves by subscription id, falling back to the
// notes correlation ref when the subscription was created with one.
func MatchSubscription(db *gorm.DB, s *dto.SubscriptionEntity) (*contribModel.Contribution, error) {
	if s == nil {
		return nil, nil
	}
	if s.ID != "" {
		if c, err := findOne(db, "razorpay_subscription_id = ?", s.ID); c != nil || err != nil {
			return c, err
		}
	}
	if id, ok := s.Notes.ContributionID(); ok {
		return findByID(db, id)
	}
	return nil, nil
}

// MatchByEmail returns the donor's most recent contribution with no
// amount or status filter. Recurring charge amounts can drift from the
// original pledge, so subscription events fall back to this.
func MatchByEmail(db *gorm.DB, email string) (*contribModel.Contribution, error) {
	if email == "" {
		return nil, nil
	}
	var c contribModel.Contribution
	err := db.Where("email = ?", email).Order("created_at DESC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MatchRefund resolves through the refunded payment's id.
func MatchRefund(db *gorm.DB, r *dto.RefundEntity) (*contribModel.Contribution, error) {
	if r == nil || r.PaymentID == "" {
		return nil, nil
	}
	return findOne(db, "razorpay_payment_id = ?", r.PaymentID)
}

// MatchDispute resolves through the disputed payment's id.
func MatchDispute(db *gorm.DB, d *dto.DisputeEntity) (*contribModel.Contribution, error) {
	if d == nil || d.PaymentID == "" {
		return nil, nil
	}
	return findOne(db, "razorpay_payment_id = ?", d.PaymentID)
}

func findByID(db *gorm.DB, id int64) (*contribModel.Contribution, error) {
	return findOne(db, "id = ?", id)
}

func findOne(db *gorm.DB, query string, args ...interface{}) (*contribModel.Contribution, error) {
	var c contribModel.Contribution
	err := db.Where(query, args...).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func findByEmailAmount(db *gorm.DB, email string, amount decimal.Decimal, statuses []string) (*contribModel.Contribution, error) {
	var c contribModel.Contribution
	err := db.
		Where("email = ? AND amount = ? AND payment_status IN ?", email, amount, statuses).
		Order("created_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
