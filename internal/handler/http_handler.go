package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lumen-live/relay-service/internal/registry"
	"github.com/lumen-live/relay-service/pkg/response"
)

// Handler bundles the HTTP surface: the WebSocket endpoint plus the
// read-only roster and health routes.
type Handler struct {
	ws       *WSHandler
	registry registry.Registry
}

func NewHandler(ws *WSHandler, reg registry.Registry) *Handler {
	return &Handler{
		ws:       ws,
		registry: reg,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/chat/ws", h.ws.HandleWebSocket)
	r.GET("/chat/users", h.listUsers)
	r.GET("/health", h.health)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	response.Success(c, gin.H{"users": h.registry.Usernames()})
}

func (h *Handler) health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
