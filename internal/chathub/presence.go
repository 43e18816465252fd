package chathub

import "sync"

// Presence tracks which users currently have at least one live realtime
// connection. It is process-local state, rebuilt from zero on restart, and
// the only place a connection id is mapped to a user. Mutations are applied
// under one mutex so a connection id never appears in two users' sets.
//
// The registry is injected into the Manager, so a shared backing store can
// replace it for a multi-process deployment without touching callers.
type Presence struct {
	mu    sync.Mutex
	users map[string]map[string]struct{} // user id -> set of connection ids
}

// NewPresence creates an empty registry.
func NewPresence() *Presence {
	return &Presence{users: make(map[string]map[string]struct{})}
}

// Register adds connID to userID's connection set, creating the entry on
// the user's first connection. If the connection was previously bound to a
// different user it is moved. Registering the same pair twice is a no-op.
func (p *Presence) Register(connID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if owner, ok := p.ownerLocked(connID); ok {
		if owner == userID {
			return
		}
		p.removeLocked(owner, connID)
	}

	set, ok := p.users[userID]
	if !ok {
		set = make(map[string]struct{})
		p.users[userID] = set
	}
	set[connID] = struct{}{}
}

// Unregister removes connID from its owner's set. It reports the owning
// user and whether that was the user's last connection, so the caller can
// decide to broadcast a went-offline event.
func (p *Presence) Unregister(connID string) (userID string, last bool, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	owner, found := p.ownerLocked(connID)
	if !found {
		return "", false, false
	}
	p.removeLocked(owner, connID)
	_, stillActive := p.users[owner]
	return owner, !stillActive, true
}

// ActiveUserIDs returns a snapshot of every user with at least one live
// connection.
func (p *Presence) ActiveUserIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.users))
	for id := range p.users {
		ids = append(ids, id)
	}
	return ids
}

// IsActive reports whether the user has at least one live connection.
func (p *Presence) IsActive(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[userID]
	return ok
}

func (p *Presence) ownerLocked(connID string) (string, bool) {
	for userID, set := range p.users {
		if _, ok := set[connID]; ok {
			return userID, true
		}
	}
	return "", false
}

func (p *Presence) removeLocked(userID, connID string) {
	set := p.users[userID]
	delete(set, connID)
	if len(set) == 0 {
		delete(p.users, userID)
	}
}
