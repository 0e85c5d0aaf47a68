package controller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ilika_backend/internals/features/campaign/admin/dto"
	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	contribService "ilika_backend/internals/features/campaign/contributions/service"
	emailModel "ilika_backend/internals/features/campaign/notifications/model"
	webhookModel "ilika_backend/internals/features/campaign/webhooks/model"
	helper "ilika_backend/internals/helpers"

	"github.com/shopspring/decimal"
)

type AdminController struct {
	DB            *gorm.DB
	Contributions *contribService.ContributionService
}

func NewAdminController(db *gorm.DB, contributions *contribService.ContributionService) *AdminController {
	return &AdminController{DB: db, Contributions: contributions}
}

/* ===================== Contribution lists ===================== */

// ListContributions handles GET /api/a/contributions with optional
// status, type, preference and email filters.
func (ctl *AdminController) ListContributions(c *fiber.Ctx) error {
	q := ctl.DB.Model(&contribModel.Contribution{})

	if v := c.Query("status"); v != "" {
		q = q.Where("payment_status = ?", v)
	}
	if v := c.Query("type"); v != "" {
		q = q.Where("type = ?", v)
	}
	if v := c.Query("preference"); v != "" {
		q = q.Where("payment_preference = ?", v)
	}
	if v := c.Query("email"); v != "" {
		q = q.Where("email = ?", strings.TrimSpace(v))
	}

	limit, offset := pagination(c)
	var rows []contribModel.Contribution
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list contributions")
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list contributions")
	}
	return helper.Success(c, "Contributions", fiber.Map{
		"total": total,
		"items": rows,
	})
}

// ListFailed handles GET /api/a/contributions/failed, most-retried first.
func (ctl *AdminController) ListFailed(c *fiber.Ctx) error {
	var rows []contribModel.Contribution
	err := ctl.DB.Where("payment_status = ?", contribModel.PaymentStatusFailed).
		Order("retry_count DESC, created_at DESC").Find(&rows).Error
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list failed payments")
	}
	return helper.Success(c, "Failed payments", rows)
}

// ListDisputed handles GET /api/a/contributions/disputed.
func (ctl *AdminController) ListDisputed(c *fiber.Ctx) error {
	var rows []contribModel.Contribution
	err := ctl.DB.Where("payment_status = ? OR dispute_status IS NOT NULL",
		contribModel.PaymentStatusDisputed).
		Order("updated_at DESC").Find(&rows).Error
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list disputes")
	}
	return helper.Success(c, "Disputed payments", rows)
}

// ListSubscriptions handles GET /api/a/subscriptions?status=halted.
func (ctl *AdminController) ListSubscriptions(c *fiber.Ctx) error {
	q := ctl.DB.Model(&contribModel.Contribution{}).Where("razorpay_subscription_id IS NOT NULL")
	if v := c.Query("status"); v != "" {
		q = q.Where("subscription_status = ?", v)
	}
	var rows []contribModel.Contribution
	if err := q.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list subscriptions")
	}
	return helper.Success(c, "Subscriptions", rows)
}

// CancelSubscription handles POST /api/a/contributions/:id/cancel.
func (ctl *AdminController) CancelSubscription(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid contribution id")
	}
	contribution, err := ctl.Contributions.Cancel(id)
	if err != nil {
		if errors.Is(err, contribService.ErrNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Contribution not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to cancel subscription")
	}
	return helper.Success(c, "Subscription cancelled", contribution)
}

// CreateManualContribution handles POST /api/a/contributions/manual.
// Offline payments are recorded as already successful.
func (ctl *AdminController) CreateManualContribution(c *fiber.Ctx) error {
	var req dto.ManualContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return helper.Error(c, fiber.StatusBadRequest, "Amount must be positive")
	}

	preference := req.PaymentPreference
	if preference == "" {
		preference = contribModel.PreferenceOneTime
	}
	donorType := req.DonorType
	if donorType == "" {
		donorType = contribModel.DonorTypeIndividual
	}
	referral := helper.GenerateReferralCode(req.DonorName)
	now := time.Now()

	row := contribModel.Contribution{
		DonorName:         req.DonorName,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		PANNumber:         req.PANNumber,
		Type:              contribModel.ContributionTypeIndividual,
		DonorType:         donorType,
		Amount:            req.Amount,
		PaymentPreference: preference,
		PaymentStatus:     contribModel.PaymentStatusSuccess,
		TotalPaymentsMade: 1,
		ReferralCode:      &referral,
		PaymentMethod:     &req.PaymentMethod,
		Notes:             req.Notes,
		NextPaymentDate:   nil,
	}
	if preference == contribModel.PreferenceMonthly {
		next := now.AddDate(0, 0, 30)
		row.NextPaymentDate = &next
	}
	if err := ctl.DB.Create(&row).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to record contribution")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Manual contribution recorded", row)
}

/* ===================== Stats ===================== */

// RevenueStats handles GET /api/a/stats/revenue.
func (ctl *AdminController) RevenueStats(c *fiber.Ctx) error {
	stats := dto.RevenueStats{}

	var total, recurring decimal.NullDecimal
	if err := ctl.DB.Model(&contribModel.Contribution{}).
		Where("payment_status = ?", contribModel.PaymentStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to compute revenue")
	}
	if total.Valid {
		stats.TotalRevenue = total.Decimal
	}

	if err := ctl.DB.Model(&contribModel.Contribution{}).
		Where("subscription_status = ? AND payment_preference = ?",
			contribModel.SubscriptionActive, contribModel.PreferenceMonthly).
		Select("COALESCE(SUM(amount), 0)").Scan(&recurring).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to compute revenue")
	}
	if recurring.Valid {
		stats.MonthlyRecurring = recurring.Decimal
	}

	counts := []struct {
		dest  *int64
		where string
		arg   string
	}{
		{&stats.SuccessfulPayments, "payment_status = ?", contribModel.PaymentStatusSuccess},
		{&stats.FailedPayments, "payment_status = ?", contribModel.PaymentStatusFailed},
		{&stats.RefundedPayments, "payment_status = ?", contribModel.PaymentStatusRefunded},
		{&stats.DisputedPayments, "payment_status = ?", contribModel.PaymentStatusDisputed},
		{&stats.ActiveSubscriptions, "subscription_status = ?", contribModel.SubscriptionActive},
		{&stats.HaltedSubscriptions, "subscription_status = ?", contribModel.SubscriptionHalted},
	}
	for _, cnt := range counts {
		if err := ctl.DB.Model(&contribModel.Contribution{}).
			Where(cnt.where, cnt.arg).Count(cnt.dest).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to compute revenue")
		}
	}
	return helper.Success(c, "Revenue stats", stats)
}

// ReferralLeaderboard handles GET /api/a/stats/referrals: how much each
// referral code brought in through successful referred contributions.
func (ctl *AdminController) ReferralLeaderboard(c *fiber.Ctx) error {
	type row struct {
		ReferredBy   string          `gorm:"column:referred_by"`
		Referred     int64           `gorm:"column:referred"`
		AmountRaised decimal.Decimal `gorm:"column:amount_raised"`
	}
	var rows []row
	err := ctl.DB.Model(&contribModel.Contribution{}).
		Select("referred_by, COUNT(*) AS referred, COALESCE(SUM(amount), 0) AS amount_raised").
		Where("referred_by IS NOT NULL AND payment_status = ?", contribModel.PaymentStatusSuccess).
		Group("referred_by").
		Order("amount_raised DESC").
		Limit(25).
		Scan(&rows).Error
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load leaderboard")
	}

	board := make([]dto.ReferralLeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		entry := dto.ReferralLeaderboardEntry{
			ReferralCode: r.ReferredBy,
			Referred:     r.Referred,
			AmountRaised: r.AmountRaised,
		}
		var owner contribModel.Contribution
		if err := ctl.DB.Where("referral_code = ?", r.ReferredBy).First(&owner).Error; err == nil {
			entry.ReferrerName = owner.DonorName
		}
		board = append(board, entry)
	}
	return helper.Success(c, "Referral leaderboard", board)
}

/* ===================== Audit logs ===================== */

// ListWebhookEvents handles GET /api/a/webhook-events.
func (ctl *AdminController) ListWebhookEvents(c *fiber.Ctx) error {
	q := ctl.DB.Model(&webhookModel.WebhookEvent{})
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("event_type"); v != "" {
		q = q.Where("event_type = ?", v)
	}

	limit, offset := pagination(c)
	var rows []webhookModel.WebhookEvent
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list webhook events")
	}
	return helper.Success(c, "Webhook events", rows)
}

// ListEmailLogs handles GET /api/a/email-logs.
func (ctl *AdminController) ListEmailLogs(c *fiber.Ctx) error {
	q := ctl.DB.Model(&emailModel.EmailLog{})
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("template"); v != "" {
		q = q.Where("email_type = ?", v)
	}

	limit, offset := pagination(c)
	var rows []emailModel.EmailLog
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list email logs")
	}
	return helper.Success(c, "Email logs", rows)
}

/* ===================== CSV export ===================== */

// ExportContributionsCSV handles GET /api/a/contributions/export.
func (ctl *AdminController) ExportContributionsCSV(c *fiber.Ctx) error {
	var rows []contribModel.Contribution
	if err := ctl.DB.Order("created_at ASC").Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to export contributions")
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{
		"id", "donor_name", "email", "type", "donor_type", "amount",
		"payment_preference", "payment_status", "subscription_status",
		"razorpay_payment_id", "referral_code", "referred_by", "group_id",
		"total_payments_made", "created_at",
	})
	for i := range rows {
		r := &rows[i]
		_ = w.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.DonorName,
			r.Email,
			r.Type,
			r.DonorType,
			r.Amount.StringFixed(2),
			r.PaymentPreference,
			r.PaymentStatus,
			strDeref(r.SubscriptionStatus),
			strDeref(r.RazorpayPaymentID),
			strDeref(r.ReferralCode),
			strDeref(r.ReferredBy),
			intDeref(r.GroupID),
			strconv.Itoa(r.TotalPaymentsMade),
			r.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to export contributions")
	}

	filename := fmt.Sprintf("contributions-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendString(sb.String())
}

/* ===================== Helpers ===================== */

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intDeref(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
