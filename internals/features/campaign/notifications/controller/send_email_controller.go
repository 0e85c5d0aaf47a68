package controller

import (
	"github.com/gofiber/fiber/v2"

	"ilika_backend/internals/features/campaign/notifications/service"
	helper "ilika_backend/internals/helpers"
)

// SendEmailController backs the internal dispatch endpoint used by the
// frontend's serverless hooks. It never fails the caller for delivery
// problems; the outcome travels in the response body.
type SendEmailController struct {
	Sender service.Sender
}

func NewSendEmailController(sender service.Sender) *SendEmailController {
	return &SendEmailController{Sender: sender}
}

type sendEmailRequest struct {
	To       string       `json:"to"`
	Template string       `json:"template"`
	Data     service.Data `json:"data"`
}

// SendEmail handles POST /api/internal/send-email.
func (ctl *SendEmailController) SendEmail(c *fiber.Ctx) error {
	var req sendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if req.To == "" || req.Template == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Missing to or template")
	}

	kind, ok := service.ParseKind(req.Template)
	if !ok {
		return helper.Success(c, "Unknown template", fiber.Map{
			"status":   "skipped",
			"template": req.Template,
		})
	}

	status := ctl.Sender.Send(req.To, kind, req.Data)
	return helper.Success(c, "Email dispatched", fiber.Map{
		"status":   status,
		"template": string(kind),
	})
}
