package controller

import (
	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type settingsController struct {
	service service.ISettingsService
	tokens  *serverutils.TokenIssuer
}

func NewSettingsController(service service.ISettingsService, tokens *serverutils.TokenIssuer) ISettingsController {
	return &settingsController{service: service, tokens: tokens}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings/v1")
	h.Use(c.tokens.JwtMiddleware)
	h.Get("", c.Get)
	h.Put("", c.Update)
}

func (c *settingsController) Get(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

func (c *settingsController) Update(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings updated", res))
}
