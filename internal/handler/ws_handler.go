package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lumen-live/relay-service/internal/config"
	"github.com/lumen-live/relay-service/internal/domain"
	"github.com/lumen-live/relay-service/internal/hub"
	"github.com/lumen-live/relay-service/internal/service"
	"github.com/lumen-live/relay-service/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades HTTP requests and runs the per-connection frame
// loop, dispatching decoded messages to the coordinator.
type WSHandler struct {
	service service.RelayService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(svc service.RelayService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		service: svc,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, h.wsCfg)

	ctx := context.Background()
	h.service.HandleOpen(ctx, client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleFrame)
		// The read pump returns exactly once per connection, whether
		// the peer left, the transport failed, or the handshake was
		// rejected.
		h.service.HandleDisconnect(ctx, client)
	}()
}

// handleFrame decodes one inbound frame and dispatches it. Malformed
// or unknown input is dropped; one bad frame never ends the connection.
func (h *WSHandler) handleFrame(client *hub.Client, raw []byte) {
	l := log.L()

	var msg domain.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.Debug().Str(log.FieldConnectionID, client.ID).Err(err).Msg("malformed frame dropped")
		return
	}

	ctx := context.Background()

	switch {
	case msg.IsConnection():
		if err := h.service.HandleConnect(ctx, client, &msg); err != nil {
			l.Debug().Str(log.FieldConnectionID, client.ID).Err(err).Msg("connect rejected")
		}

	case msg.IsChat():
		if err := h.service.HandleChat(ctx, client, &msg); err != nil {
			l.Debug().Str(log.FieldConnectionID, client.ID).Err(err).Msg("chat dropped")
		}

	default:
		l.Debug().
			Str(log.FieldConnectionID, client.ID).
			Str("type", msg.Type).
			Msg("unknown message type dropped")
	}
}
