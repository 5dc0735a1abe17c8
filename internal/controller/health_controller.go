package controller

import (
	"time"

	"ship-framework-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	started time.Time
}

func NewHealthController() IHealthController {
	return &healthController{started: time.Now()}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health/v1", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
		"uptime": time.Since(c.started).Round(time.Second).String(),
	}))
}
