package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"ilika_backend/internals/configs"
	"ilika_backend/internals/features/campaign/webhooks/service"
	helper "ilika_backend/internals/helpers"
)

// WebhookController is the HTTP boundary for Razorpay deliveries.
// Verification runs against the exact raw bytes before any JSON parsing.
type WebhookController struct {
	Processor *service.Processor
}

func NewWebhookController(p *service.Processor) *WebhookController {
	return &WebhookController{Processor: p}
}

// HandleWebhook handles POST /api/razorpay-webhook.
//
// 200 on every handled outcome including ignored and duplicate, 400 on
// a missing signature, 401 on a mismatch, 500 on processing errors so
// the gateway's own retry redelivers.
func (ctl *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	if ctl.Processor == nil || ctl.Processor.DB == nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Datastore not configured")
	}

	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Missing signature")
	}

	body := c.Body()
	if !service.VerifySignature(body, signature, configs.WebhookSecret) {
		log.Printf("[WEBHOOK] signature verification failed")
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid signature")
	}

	eventID := c.Get("X-Razorpay-Event-Id")
	outcome, err := ctl.Processor.Process(body, eventID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Webhook processing failed")
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"event":  outcome.Event,
	})
}
