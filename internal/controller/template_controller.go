package controller

import (
	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITemplateController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type templateController struct {
	service service.ITemplateService
	tokens  *serverutils.TokenIssuer
}

func NewTemplateController(service service.ITemplateService, tokens *serverutils.TokenIssuer) ITemplateController {
	return &templateController{service: service, tokens: tokens}
}

func (c *templateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/template/v1")
	h.Use(c.tokens.JwtMiddleware)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Delete("/:id", c.Delete)
}

func (c *templateController) List(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get templates", res))
}

// Create saves the current session inputs as a template.
func (c *templateController) Create(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateTemplateRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.CreateFromSession(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Template created", res))
}

func (c *templateController) Delete(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), workspaceID, ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Template deleted", nil))
}
