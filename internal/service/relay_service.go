package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumen-live/relay-service/internal/audit"
	"github.com/lumen-live/relay-service/internal/domain"
	"github.com/lumen-live/relay-service/internal/hub"
	"github.com/lumen-live/relay-service/internal/registry"
	"github.com/lumen-live/relay-service/pkg/log"
)

type relayService struct {
	registry registry.Registry
}

func NewRelayService(reg registry.Registry) RelayService {
	return &relayService{registry: reg}
}

func (s *relayService) HandleOpen(ctx context.Context, c *hub.Client) string {
	id := s.registry.Register(c)
	c.ID = id
	c.Session = domain.NewSession(id)

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldConnectionID, id).Msg("connection registered")
	return id
}

func (s *relayService) HandleConnect(ctx context.Context, c *hub.Client, msg *domain.ClientMessage) error {
	username := msg.Sender

	if username == "" {
		s.reject(ctx, c, "", "Username must not be empty")
		return registry.ErrEmptyUsername
	}

	// A rename from an already-active session is not supported; the
	// frame is dropped like any other invalid input.
	if c.Session.IsActive() && c.Session.Username() != username {
		l := log.Ctx(ctx)
		l.Debug().
			Str(log.FieldConnectionID, c.ID).
			Str(log.FieldUsername, username).
			Msg("rename attempt dropped")
		return nil
	}

	if err := s.registry.BindUsername(c.ID, username); err != nil {
		if errors.Is(err, registry.ErrUsernameTaken) {
			s.reject(ctx, c, username, fmt.Sprintf("User %s already exists", username))
		}
		return err
	}

	c.Session.Activate(username)
	audit.Log(ctx, audit.ActionJoin, username, "user joined the room")

	return s.Broadcast(domain.NewJoinMessage(username, s.registry.Usernames()))
}

func (s *relayService) HandleChat(ctx context.Context, c *hub.Client, msg *domain.ClientMessage) error {
	l := log.Ctx(ctx)

	if !c.Session.IsActive() {
		l.Debug().Str(log.FieldConnectionID, c.ID).Msg("chat before handshake dropped")
		return nil
	}

	// A client may not speak as anyone but the name bound to its own
	// connection, whatever the frame claims.
	if msg.Sender != c.Session.Username() {
		l.Debug().
			Str(log.FieldConnectionID, c.ID).
			Str(log.FieldUsername, c.Session.Username()).
			Str("claimed_sender", msg.Sender).
			Msg("sender mismatch dropped")
		return nil
	}

	if msg.Content == "" {
		return nil
	}

	audit.LogWithDetail(ctx, audit.ActionChat, msg.Sender, msg.Receiver, "chat message")
	return s.Broadcast(domain.NewChatMessage(msg.ChatBody()))
}

func (s *relayService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	username, bound := s.registry.Username(c.ID)
	s.registry.Unregister(c.ID)

	if c.Session != nil {
		c.Session.Close()
	}

	if !bound {
		// Never authenticated; nothing to announce.
		audit.LogWithDetail(ctx, audit.ActionDisconnect, "", c.ID, "connection closed before handshake")
		return nil
	}

	audit.Log(ctx, audit.ActionLeave, username, "user left the room")
	return s.Broadcast(domain.NewLeaveMessage(username, s.registry.Usernames()))
}

func (s *relayService) Broadcast(msg *domain.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}

	l := log.L()
	for _, c := range s.registry.Clients() {
		if !c.Deliver(data) {
			l.Debug().Str(log.FieldConnectionID, c.ID).Msg("broadcast skipped for unreachable client")
		}
	}
	return nil
}

// reject removes the connection's registry entry and force-closes the
// transport with the reason as the close description. The read pump's
// teardown will run HandleDisconnect afterwards, which finds nothing
// to unregister and stays silent.
func (s *relayService) reject(ctx context.Context, c *hub.Client, username, reason string) {
	s.registry.Unregister(c.ID)
	c.Session.Close()
	c.CloseWithReason(reason)

	audit.LogWithDetail(ctx, audit.ActionReject, username, reason, "connection rejected")
}
