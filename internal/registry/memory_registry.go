package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lumen-live/relay-service/internal/hub"
)

// memoryRegistry is the process-local Registry. Forward and reverse
// maps are kept consistent under a single mutex so lookups in either
// direction stay O(1) and no caller ever observes a half-applied bind.
type memoryRegistry struct {
	mu        sync.RWMutex
	clients   map[string]*hub.Client // connection ID -> client
	userConns map[string]string      // username -> connection ID
	connUsers map[string]string      // connection ID -> username
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		clients:   make(map[string]*hub.Client),
		userConns: make(map[string]string),
		connUsers: make(map[string]string),
	}
}

func (r *memoryRegistry) Register(c *hub.Client) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.clients[id] = c
	r.mu.Unlock()

	return id
}

func (r *memoryRegistry) BindUsername(connectionID, username string) error {
	if username == "" {
		return ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[connectionID]; !ok {
		return ErrNotRegistered
	}

	if owner, ok := r.userConns[username]; ok && owner != connectionID {
		return ErrUsernameTaken
	}

	// Drop any previous binding for this connection before taking the
	// new name, keeping both maps in step.
	if prev, ok := r.connUsers[connectionID]; ok && prev != username {
		delete(r.userConns, prev)
	}

	r.userConns[username] = connectionID
	r.connUsers[connectionID] = username
	return nil
}

func (r *memoryRegistry) UsernameExists(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.userConns[username]
	return ok
}

func (r *memoryRegistry) LookupByUsername(username string) (*hub.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.userConns[username]
	if !ok {
		return nil, false
	}
	c, ok := r.clients[id]
	return c, ok
}

func (r *memoryRegistry) Username(connectionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.connUsers[connectionID]
	return name, ok
}

func (r *memoryRegistry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.userConns))
	for name := range r.userConns {
		names = append(names, name)
	}
	return names
}

func (r *memoryRegistry) Clients() []*hub.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*hub.Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

func (r *memoryRegistry) Unregister(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.connUsers[connectionID]; ok {
		delete(r.userConns, name)
		delete(r.connUsers, connectionID)
	}
	delete(r.clients, connectionID)
}
