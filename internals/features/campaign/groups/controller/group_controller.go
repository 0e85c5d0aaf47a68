package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	contribDto "ilika_backend/internals/features/campaign/contributions/dto"
	"ilika_backend/internals/features/campaign/groups/dto"
	"ilika_backend/internals/features/campaign/groups/service"
	helper "ilika_backend/internals/helpers"
)

var validate = validator.New()

type GroupController struct {
	Service *service.GroupService
}

func NewGroupController(svc *service.GroupService) *GroupController {
	return &GroupController{Service: svc}
}

// CreateGroup handles POST /api/public/groups.
func (ctl *GroupController) CreateGroup(c *fiber.Ctx) error {
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	group, contribution, err := ctl.Service.CreateGroup(&req)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create group")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Group created", fiber.Map{
		"group":        dto.ToGroupResponse(group, nil),
		"contribution": contribDto.ToContributionResponse(contribution),
	})
}

// GetGroup handles GET /api/public/groups/:slug.
func (ctl *GroupController) GetGroup(c *fiber.Ctx) error {
	group, members, err := ctl.Service.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Group not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load group")
	}
	return helper.Success(c, "Group", dto.ToGroupResponse(group, members))
}

// JoinGroup handles POST /api/public/groups/:id/join.
func (ctl *GroupController) JoinGroup(c *fiber.Ctx) error {
	groupID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid group id")
	}

	var req dto.JoinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	group, contribution, err := ctl.Service.Join(groupID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			return helper.Error(c, fiber.StatusNotFound, "Group not found")
		case errors.Is(err, service.ErrGroupFull):
			return helper.Error(c, fiber.StatusConflict, "Group is already full")
		default:
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to join group")
		}
	}
	return helper.Success(c, "Joined group", fiber.Map{
		"group":        dto.ToGroupResponse(group, nil),
		"contribution": contribDto.ToContributionResponse(contribution),
	})
}

// UnjoinGroup handles POST /api/public/groups/:id/unjoin.
func (ctl *GroupController) UnjoinGroup(c *fiber.Ctx) error {
	groupID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid group id")
	}

	var req dto.UnjoinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	group, err := ctl.Service.Unjoin(groupID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Group not found")
		}
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.Success(c, "Left group", dto.ToGroupResponse(group, nil))
}
