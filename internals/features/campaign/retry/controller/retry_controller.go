package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ilika_backend/internals/configs"
	"ilika_backend/internals/features/campaign/retry/service"
	helper "ilika_backend/internals/helpers"
)

// RetryController exposes the sweep to the external scheduler.
type RetryController struct {
	Sweeper *service.Sweeper
}

func NewRetryController(s *service.Sweeper) *RetryController {
	return &RetryController{Sweeper: s}
}

// TriggerSweep handles GET /api/cron/payment-retry.
//
// Authorized either by the shared cron secret as a bearer token or by
// the platform scheduler's user agent. Returns the sweep summary.
func (ctl *RetryController) TriggerSweep(c *fiber.Ctx) error {
	if !cronAuthorized(c) {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	if ctl.Sweeper == nil || ctl.Sweeper.DB == nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Datastore not configured")
	}

	result, err := ctl.Sweeper.Run()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Retry sweep failed")
	}

	return c.JSON(fiber.Map{
		"status":         "ok",
		"reminders_sent": result.RemindersSent,
		"final_notices":  result.FinalNotices,
		"admin_alerted":  result.AdminAlerted,
		"errors":         result.Errors,
		"timestamp":      result.Timestamp,
	})
}

func cronAuthorized(c *fiber.Ctx) bool {
	if secret := configs.CronSecret; secret != "" {
		if c.Get("Authorization") == "Bearer "+secret {
			return true
		}
	}
	return strings.Contains(strings.ToLower(c.Get("User-Agent")), "vercel-cron")
}
