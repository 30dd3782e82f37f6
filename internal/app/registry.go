package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tuanvu2703/Nemo-social-network/internal/core"
	"github.com/tuanvu2703/Nemo-social-network/internal/domain"
)

type connEntry struct {
	User      domain.UserID
	Conn      core.SignalConnection
	CreatedAt time.Time
	Cancel    context.CancelFunc
}

// Registry maps authenticated identities to their live transport
// connections. A user with several open tabs owns several entries; removing
// the last one removes the user key entirely, so absence from byUser means
// "offline".
type Registry struct {
	mu     sync.RWMutex
	conns  map[core.ConnID]*connEntry
	byUser map[domain.UserID]map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[core.ConnID]*connEntry),
		byUser: make(map[domain.UserID]map[core.ConnID]*connEntry),
	}
}

// Register binds a connection to its owner. Re-registering the same ConnID
// is a no-op.
func (r *Registry) Register(uid domain.UserID, cid core.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[cid]; ok {
		return
	}
	e := &connEntry{User: uid, Conn: conn, CreatedAt: time.Now(), Cancel: cancel}
	r.conns[cid] = e
	set, ok := r.byUser[uid]
	if !ok {
		set = make(map[core.ConnID]*connEntry)
		r.byUser[uid] = set
	}
	set[cid] = e
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("user", string(uid)).Int("conns", len(set)).Msg("connection registered")
}

// Unregister removes a connection by reverse lookup. last is true when this
// was the owner's final live connection.
func (r *Registry) Unregister(cid core.ConnID) (uid domain.UserID, last bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return "", false, false
	}
	delete(r.conns, cid)
	uid = e.User
	if set, ok := r.byUser[uid]; ok {
		delete(set, cid)
		if len(set) == 0 {
			delete(r.byUser, uid)
			last = true
		}
	}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("user", string(uid)).Bool("last", last).Msg("connection unregistered")
	return uid, last, true
}

func (r *Registry) OwnerOf(cid core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.User, true
	}
	return "", false
}

// ConnectionsFor returns the current live connections of a user, possibly
// none.
func (r *Registry) ConnectionsFor(uid domain.UserID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byUser[uid]
	out := make([]core.SignalConnection, 0, len(set))
	for _, e := range set {
		out = append(out, e.Conn)
	}
	return out
}

func (r *Registry) IsOnline(uid domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[uid]) > 0
}

// Fanout delivers a frame to every live connection of uid. A full send
// buffer is not an invariant violation: the connection is reported back so
// the policy can decide what to do with the slow consumer.
func (r *Registry) Fanout(uid domain.UserID, f core.Frame) (sent int, dropped []core.ConnID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for cid, e := range r.byUser[uid] {
		if err := e.Conn.TrySend(f); err != nil {
			dropped = append(dropped, cid)
			continue
		}
		sent++
	}
	return sent, dropped
}

// Cancel aborts a connection's pumps via its bound context and closes the
// underlying transport. Closing unblocks a pending read, so the connection
// funnels into the regular disconnect cleanup.
func (r *Registry) Cancel(cid core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[cid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	e.Conn.Close()
	return true
}

func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Shutdown closes every live connection and clears both maps.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for cid, e := range r.conns {
		if e.Cancel != nil {
			e.Cancel()
		}
		e.Conn.Close()
		delete(r.conns, cid)
	}
	for uid := range r.byUser {
		delete(r.byUser, uid)
	}
	log.Info().Str("module", "app.registry").Msg("registry shut down")
}
