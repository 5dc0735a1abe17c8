package controller

import (
	"errors"
	"fmt"
	"io"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxImportSize = 10 << 20

type IArchiveController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	SaveAsTemplate(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Import(ctx *fiber.Ctx) error
	Backup(ctx *fiber.Ctx) error
}

type archiveController struct {
	service service.IArchiveService
	tokens  *serverutils.TokenIssuer
}

func NewArchiveController(service service.IArchiveService, tokens *serverutils.TokenIssuer) IArchiveController {
	return &archiveController{service: service, tokens: tokens}
}

func (c *archiveController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/archive/v1")
	h.Use(c.tokens.JwtMiddleware)
	h.Get("", c.List)
	h.Get("/export", c.Export)
	h.Post("/import", c.Import)
	h.Post("/backup", c.Backup)
	h.Get("/:id", c.Show)
	h.Delete("/:id", c.Delete)
	h.Put("/:id/status", c.UpdateStatus)
	h.Post("/:id/template", c.SaveAsTemplate)
}

func (c *archiveController) List(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get archive", res))
}

func (c *archiveController) Show(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), workspaceID, ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get project", res))
}

func (c *archiveController) Delete(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), workspaceID, ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Project deleted", nil))
}

func (c *archiveController) UpdateStatus(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.UpdateStatus(ctx.UserContext(), workspaceID, ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Status updated", res))
}

func (c *archiveController) SaveAsTemplate(ctx *fiber.Ctx) error {
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
	res, err := c.service.SaveAsTemplate(ctx.UserContext(), workspaceID, ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Template created", res))
}

// Export downloads the archive and templates as a JSON file.
func (c *archiveController) Export(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	blob, err := c.service.Export(ctx.UserContext(), workspaceID)
	if err != nil {
		return err
	}
	ctx.Attachment(fmt.Sprintf("ship-export-%s.json", time.Now().UTC().Format("20060102")))
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(blob)
}

// Import accepts an export either as the multipart field "file" or as the
// raw request body.
func (c *archiveController) Import(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}

	blob := ctx.Body()
	if fh, ferr := ctx.FormFile("file"); ferr == nil {
		if fh.Size > maxImportSize {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Import file is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot read import file")
		}
		defer f.Close()
		if blob, err = io.ReadAll(f); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot read import file")
		}
	}
	if len(blob) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Empty import")
	}

	res, err := c.service.Import(ctx.UserContext(), workspaceID, blob)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Import merged", res))
}

func (c *archiveController) Backup(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Backup(ctx.UserContext(), workspaceID)
	if errors.Is(err, service.ErrBackupDisabled) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Backup stored", res))
}
