package controller

import (
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type workspaceController struct {
	service service.IWorkspaceService
	tokens  *serverutils.TokenIssuer
}

func NewWorkspaceController(service service.IWorkspaceService, tokens *serverutils.TokenIssuer) IWorkspaceController {
	return &workspaceController{service: service, tokens: tokens}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workspace/v1")
	h.Post("", c.Create)
	h.Get("/status", c.tokens.JwtMiddleware, c.Status)
}

func (c *workspaceController) Create(ctx *fiber.Ctx) error {
	res, err := c.service.Create(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Workspace created", res))
}

func (c *workspaceController) Status(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Status(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workspace status", res))
}
