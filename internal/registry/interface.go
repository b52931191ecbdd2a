package registry

import (
	"errors"

	"github.com/lumen-live/relay-service/internal/hub"
)

var (
	// ErrUsernameTaken is returned when a username is already bound to
	// a different live connection.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmptyUsername is returned for a bind attempt with no name.
	ErrEmptyUsername = errors.New("username must not be empty")
	// ErrNotRegistered is returned when the connection ID is unknown.
	ErrNotRegistered = errors.New("connection not registered")
)

// Registry is the authoritative store mapping live connections to
// connection IDs and, once the handshake completes, to usernames.
// All methods are safe for concurrent use; mutations are atomic with
// respect to each other.
type Registry interface {
	// Register stores the client under a freshly generated connection
	// ID and returns it.
	Register(c *hub.Client) string

	// BindUsername associates username with the given connection.
	// Exactly one of two concurrent claimants for the same name wins;
	// re-binding the same name to the same connection is a no-op
	// success.
	BindUsername(connectionID, username string) error

	// UsernameExists reports whether the name is bound to any live
	// connection.
	UsernameExists(username string) bool

	// LookupByUsername returns the client a username is bound to.
	LookupByUsername(username string) (*hub.Client, bool)

	// Username returns the name bound to a connection; ok is false for
	// unknown or not-yet-authenticated connections.
	Username(connectionID string) (string, bool)

	// Usernames returns the current roster. Order is not guaranteed;
	// it is display data only.
	Usernames() []string

	// Clients returns a snapshot of every registered client, for
	// broadcast fan-out.
	Clients() []*hub.Client

	// Unregister removes the session and any username binding.
	// Idempotent.
	Unregister(connectionID string)
}
