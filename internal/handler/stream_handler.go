package handler

import (
	"strings"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/pkg/serverutils"
	internalWS "ship-framework-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler upgrades authenticated requests to the websocket that
// carries generation and activity events of one workspace.
type StreamHandler struct {
	tokens *serverutils.TokenIssuer
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStreamHandler(tokens *serverutils.TokenIssuer, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{tokens: tokens, hub: hub, logger: log}
}

// ServeWs authenticates with the token query parameter, which browsers can
// set on a websocket, or with the Authorization header.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Falta el token del espacio de trabajo.", nil))
	}

	workspaceID, err := h.tokens.Parse(tokenStr)
	if err != nil {
		h.logger.Warn("StreamHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Token no válido.", nil))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StreamHandler", "Stream session started", map[string]interface{}{"workspace_id": workspaceID})
		internalWS.Serve(h.hub, conn, workspaceID)
		h.logger.Info("StreamHandler", "Stream session ended", map[string]interface{}{"workspace_id": workspaceID})
	})(c)
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	h.registerRoutes(r.Group("/stream/v1"))
}

func (h *StreamHandler) registerRoutes(g fiber.Router) {
	g.Get("/ws", h.ServeWs)
}
