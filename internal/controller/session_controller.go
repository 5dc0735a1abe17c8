package controller

import (
	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	StartNew(ctx *fiber.Ctx) error
	StartFromTemplate(ctx *fiber.Ctx) error
	UpdateProject(ctx *fiber.Ctx) error
	UpdateStepInput(ctx *fiber.Ctx) error
	Dictate(ctx *fiber.Ctx) error
	RequestHelp(ctx *fiber.Ctx) error
	RestoreResponse(ctx *fiber.Ctx) error
	ShowSummary(ctx *fiber.Ctx) error
	HideSummary(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
	tokens  *serverutils.TokenIssuer
}

func NewSessionController(service service.ISessionService, tokens *serverutils.TokenIssuer) ISessionController {
	return &sessionController{service: service, tokens: tokens}
}

// Step indexes in paths are zero-based, like stepIndex in stream events.
func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(c.tokens.JwtMiddleware)
	h.Get("", c.Get)
	h.Post("/new", c.StartNew)
	h.Post("/template/:id", c.StartFromTemplate)
	h.Put("/project", c.UpdateProject)
	h.Put("/steps/:index/input", c.UpdateStepInput)
	h.Post("/steps/:index/dictate", c.Dictate)
	h.Post("/steps/:index/help", c.RequestHelp)
	h.Post("/steps/:index/restore", c.RestoreResponse)
	h.Post("/summary", c.ShowSummary)
	h.Delete("/summary", c.HideSummary)
	h.Post("/save", c.Save)
}

func (c *sessionController) Get(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *sessionController) StartNew(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.StartNew(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("New session started", res))
}

func (c *sessionController) StartFromTemplate(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.StartFromTemplate(ctx.UserContext(), workspaceID, ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session started from template", res))
}

func (c *sessionController) UpdateProject(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.UpdateProject(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Project updated", res))
}

func (c *sessionController) UpdateStepInput(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	index, err := stepIndexParam(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateStepInputRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Index = index
	res, err := c.service.UpdateStepInput(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Step input updated", res))
}

func (c *sessionController) Dictate(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	index, err := stepIndexParam(ctx)
	if err != nil {
		return err
	}
	var req dto.DictateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.Index = index
	res, err := c.service.Dictate(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dictation added", res))
}

// RequestHelp answers 202 at once; the response arrives on the stream socket.
func (c *sessionController) RequestHelp(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	index, err := stepIndexParam(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.RequestHelp(ctx.UserContext(), workspaceID, index)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Generation started", res))
}

func (c *sessionController) RestoreResponse(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	index, err := stepIndexParam(ctx)
	if err != nil {
		return err
	}
	var req dto.RestoreResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.Index = index
	res, err := c.service.RestoreResponse(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Response restored", res))
}

func (c *sessionController) ShowSummary(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ShowSummary(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Summary ready", res))
}

func (c *sessionController) HideSummary(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.HideSummary(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Summary closed", res))
}

func (c *sessionController) Save(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Save(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Project saved", res))
}

func stepIndexParam(ctx *fiber.Ctx) (int, error) {
	index, err := ctx.ParamsInt("index")
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid step index")
	}
	return index, nil
}
