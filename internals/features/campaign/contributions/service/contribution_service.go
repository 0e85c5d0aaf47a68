package service

import (
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ilika_backend/internals/features/campaign/contributions/dto"
	"ilika_backend/internals/features/campaign/contributions/model"
	helper "ilika_backend/internals/helpers"
)

var (
	ErrNotFound      = errors.New("contribution not found")
	ErrInvalidAmount = errors.New("a positive amount is required for one-time contributions")
)

type ContributionService struct {
	DB      *gorm.DB
	Gateway *Gateway
}

func NewContributionService(db *gorm.DB, gw *Gateway) *ContributionService {
	return &ContributionService{DB: db, Gateway: gw}
}

// CreateIndividual records a Pending pledge and, when the gateway is
// configured, creates the checkout order carrying the contribution id
// in its notes.
func (s *ContributionService) CreateIndividual(req *dto.CreateContributionRequest) (*model.Contribution, error) {
	preference := req.PaymentPreference
	if preference == "" {
		preference = model.PreferenceMonthly
	}

	var amount decimal.Decimal
	switch preference {
	case model.PreferenceMonthly:
		amount = model.AmountMonthly
	case model.PreferenceAnnual:
		amount = model.AmountAnnual
	default:
		if req.Amount == nil || req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidAmount
		}
		amount = *req.Amount
	}

	donorType := req.DonorType
	if donorType == "" {
		donorType = model.DonorTypeIndividual
	}

	referral := helper.GenerateReferralCode(req.DonorName)
	c := model.Contribution{
		DonorName:         req.DonorName,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		PANNumber:         req.PANNumber,
		Type:              model.ContributionTypeIndividual,
		DonorType:         donorType,
		Amount:            amount,
		PaymentPreference: preference,
		PaymentStatus:     model.PaymentStatusPending,
		ReferralCode:      &referral,
		ReferredBy:        req.ReferredBy,
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return nil, err
	}

	if s.Gateway != nil && s.Gateway.Configured() {
		updates := map[string]interface{}{}

		orderID, err := s.Gateway.CreateOrder(c.ID, amount)
		if err != nil {
			return nil, err
		}
		if orderID != "" {
			updates["razorpay_order_id"] = orderID
			c.RazorpayOrderID = &orderID
		}

		if preference == model.PreferenceMonthly {
			subID, err := s.Gateway.CreateSubscription(c.ID)
			if err != nil {
				log.Printf("[CONTRIBUTION] subscription create for %d failed: %v", c.ID, err)
			} else if subID != "" {
				updates["razorpay_subscription_id"] = subID
				c.RazorpaySubscriptionID = &subID
			}
		}

		if len(updates) > 0 {
			if err := s.DB.Model(&model.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
	}
	return &c, nil
}

// ApplyCheckoutResult records the checkout widget's client-side outcome.
// The conditional update only moves Pending/Authorized rows so a webhook
// transition that already landed is never clobbered or double-counted.
func (s *ContributionService) ApplyCheckoutResult(id int64, req *dto.CheckoutCallbackRequest) (*model.Contribution, error) {
	c, err := s.byID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	switch req.Status {
	case model.PaymentStatusSuccess:
		updates["payment_status"] = model.PaymentStatusSuccess
		updates["subscription_status"] = model.SubscriptionActive
		updates["total_payments_made"] = gorm.Expr("total_payments_made + 1")
		updates["next_payment_date"] = time.Now().AddDate(0, 0, 30)
		if req.RazorpayPaymentID != "" {
			updates["razorpay_payment_id"] = req.RazorpayPaymentID
		}
		if req.RazorpayOrderID != "" {
			updates["razorpay_order_id"] = req.RazorpayOrderID
		}
	case model.PaymentStatusFailed:
		reason := req.FailureReason
		if reason == "" {
			reason = "Payment failed at checkout"
		}
		updates["payment_status"] = model.PaymentStatusFailed
		updates["failure_reason"] = reason
	case model.PaymentStatusCancelled:
		updates["payment_status"] = model.PaymentStatusCancelled
		updates["cancelled_at"] = time.Now()
	default:
		return nil, errors.New("unknown checkout status")
	}

	err = s.DB.Model(&model.Contribution{}).
		Where("id = ? AND payment_status IN ?", c.ID,
			[]string{model.PaymentStatusPending, model.PaymentStatusAuthorized}).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return s.byID(id)
}

// Cancel stops an ongoing pledge: the gateway subscription (best effort),
// the local subscription status, and a still-Pending payment.
func (s *ContributionService) Cancel(id int64) (*model.Contribution, error) {
	c, err := s.byID(id)
	if err != nil {
		return nil, err
	}

	if c.RazorpaySubscriptionID != nil && s.Gateway != nil {
		if err := s.Gateway.CancelSubscription(*c.RazorpaySubscriptionID); err != nil {
			log.Printf("[CONTRIBUTION] gateway cancel for %d failed: %v", c.ID, err)
		}
	}

	updates := map[string]interface{}{
		"subscription_status": model.SubscriptionCancelled,
		"cancelled_at":        time.Now(),
	}
	if c.PaymentStatus == model.PaymentStatusPending {
		updates["payment_status"] = model.PaymentStatusCancelled
	}
	if err := s.DB.Model(&model.Contribution{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.byID(id)
}

func (s *ContributionService) byID(id int64) (*model.Contribution, error) {
	var c model.Contribution
	err := s.DB.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
