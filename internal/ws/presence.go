package ws

import "sync"

// Presence maps authenticated users to their live connection. A user
// has at most one canonical connection: identifying a second
// connection for the same user steals the binding, and the stale
// connection's teardown leaves the newer binding untouched.
type Presence struct {
	mu     sync.RWMutex
	byUser map[string]string // userID -> connID
	byConn map[string]string // connID -> userID
}

func NewPresence() *Presence {
	return &Presence{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

// Identify binds userID to connID, displacing any previous binding for
// the user. A displaced connection keeps its reverse entry until its
// own teardown, so Unbind can still name the user it carried.
func (p *Presence) Identify(connID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.byConn[connID]; ok && old != userID && p.byUser[old] == connID {
		delete(p.byUser, old)
	}
	p.byUser[userID] = connID
	p.byConn[connID] = userID
}

// Resolve returns the connection currently bound to userID.
func (p *Presence) Resolve(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.byUser[userID]
	return connID, ok
}

// UserOf returns the user bound to connID, if any.
func (p *Presence) UserOf(connID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	userID, ok := p.byConn[connID]
	return userID, ok
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byUser[userID]
	return ok
}

// Unbind removes connID's binding. The user side is only evicted when
// it still points at connID, so a reconnect that already rebound the
// user survives the old connection's late disconnect.
func (p *Presence) Unbind(connID string) (userID string, wentOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.byConn[connID]
	if !ok {
		return "", false
	}
	delete(p.byConn, connID)
	if p.byUser[userID] == connID {
		delete(p.byUser, userID)
		return userID, true
	}
	return userID, false
}

// Online returns the subset of ids that currently have a bound
// connection.
func (p *Presence) Online(ids []string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := p.byUser[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
