package domain

import (
	"fmt"
	"strings"
)

// Message types shared by both directions of the wire protocol.
// Inbound type values are matched case-insensitively; outbound
// messages always carry the upper-case form.
const (
	TypeConnection = "CONNECTION"
	TypeChat       = "CHAT"
)

// BroadcastReceiver is the rendered receiver name for room-wide chat.
const BroadcastReceiver = "Everybody"

// ClientMessage is a single decoded inbound frame.
type ClientMessage struct {
	Type     string `json:"type"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
	Content  string `json:"content,omitempty"`
	// IsPrivate is decoded and carried but not yet consulted by the
	// broadcast path. Reserved for direct messaging.
	IsPrivate *bool `json:"isPrivate,omitempty"`
}

// MessageType returns the normalized (upper-case) type value.
func (m *ClientMessage) MessageType() string {
	return strings.ToUpper(m.Type)
}

// IsConnection reports whether this is a connect handshake frame.
func (m *ClientMessage) IsConnection() bool {
	return m.MessageType() == TypeConnection
}

// IsChat reports whether this is a chat frame.
func (m *ClientMessage) IsChat() bool {
	return m.MessageType() == TypeChat
}

// ChatBody renders the human-readable chat line. An empty receiver
// addresses the whole room.
func (m *ClientMessage) ChatBody() string {
	receiver := m.Receiver
	if receiver == "" {
		receiver = BroadcastReceiver
	}
	return fmt.Sprintf("%s to %s: %s", m.Sender, receiver, m.Content)
}

// ServerMessage is an outbound frame broadcast to every session.
// Users is populated only for CONNECTION-type presence events.
type ServerMessage struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	Users   []string `json:"users,omitempty"`
}

// NewJoinMessage builds the presence event announcing a new user,
// carrying the current roster.
func NewJoinMessage(username string, users []string) *ServerMessage {
	return &ServerMessage{
		Type:    TypeConnection,
		Content: fmt.Sprintf("User %s joined the room.", username),
		Users:   users,
	}
}

// NewLeaveMessage builds the presence event announcing a departure,
// carrying the remaining roster.
func NewLeaveMessage(username string, users []string) *ServerMessage {
	return &ServerMessage{
		Type:    TypeConnection,
		Content: fmt.Sprintf("User %s left the room.", username),
		Users:   users,
	}
}

// NewChatMessage wraps a rendered chat line. No roster is attached.
func NewChatMessage(body string) *ServerMessage {
	return &ServerMessage{
		Type:    TypeChat,
		Content: body,
	}
}
