package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"ilika_backend/internals/features/campaign/contributions/dto"
	"ilika_backend/internals/features/campaign/contributions/service"
	helper "ilika_backend/internals/helpers"
)

var validate = validator.New()

type ContributionController struct {
	Service *service.ContributionService
	Stats   *service.StatsService
}

func NewContributionController(svc *service.ContributionService, stats *service.StatsService) *ContributionController {
	return &ContributionController{Service: svc, Stats: stats}
}

// CreateContribution handles POST /api/public/contributions.
func (ctl *ContributionController) CreateContribution(c *fiber.Ctx) error {
	var req dto.CreateContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	contribution, err := ctl.Service.CreateIndividual(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return helper.Error(c, fiber.StatusBadRequest, err.Error())
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create contribution")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Contribution created",
		dto.ToContributionResponse(contribution))
}

// CheckoutCallback handles POST /api/public/contributions/:id/callback.
func (ctl *ContributionController) CheckoutCallback(c *fiber.Ctx) error {
	id, err := contributionID(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid contribution id")
	}

	var req dto.CheckoutCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	contribution, err := ctl.Service.ApplyCheckoutResult(id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Contribution not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to record checkout result")
	}
	return helper.Success(c, "Checkout result recorded", dto.ToContributionResponse(contribution))
}

// CancelContribution handles POST /api/public/contributions/:id/cancel.
func (ctl *ContributionController) CancelContribution(c *fiber.Ctx) error {
	id, err := contributionID(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid contribution id")
	}

	contribution, err := ctl.Service.Cancel(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Contribution not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to cancel contribution")
	}
	return helper.Success(c, "Contribution cancelled", dto.ToContributionResponse(contribution))
}

// CampaignStats handles GET /api/public/stats.
func (ctl *ContributionController) CampaignStats(c *fiber.Ctx) error {
	stats, err := ctl.Stats.CampaignStats()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load stats")
	}
	return helper.Success(c, "Campaign stats", stats)
}

// Ticker handles GET /api/public/ticker.
func (ctl *ContributionController) Ticker(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	entries, err := ctl.Stats.Ticker(limit)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load ticker")
	}
	return helper.Success(c, "Recent contributions", entries)
}

func contributionID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
