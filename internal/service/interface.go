package service

import (
	"context"

	"github.com/lumen-live/relay-service/internal/domain"
	"github.com/lumen-live/relay-service/internal/hub"
)

// RelayService is the session coordinator: it owns the protocol state
// machine for each connection and the broadcast fan-out. One concrete
// implementation, parameterized by the registry it mutates.
type RelayService interface {
	// HandleOpen registers a freshly accepted connection and returns
	// its connection ID. No broadcast; presence is announced only once
	// a username is bound.
	HandleOpen(ctx context.Context, c *hub.Client) string

	// HandleConnect processes a CONNECTION handshake frame.
	HandleConnect(ctx context.Context, c *hub.Client, msg *domain.ClientMessage) error

	// HandleChat processes a CHAT frame from an active session.
	HandleChat(ctx context.Context, c *hub.Client, msg *domain.ClientMessage) error

	// HandleDisconnect unregisters the connection and, if it was
	// authenticated, announces the departure.
	HandleDisconnect(ctx context.Context, c *hub.Client) error

	// Broadcast encodes the message once and delivers the identical
	// payload to every registered session.
	Broadcast(msg *domain.ServerMessage) error
}
