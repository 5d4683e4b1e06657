// Package reconcile decides, for every committed mutation pushed over the
// feed, whether a connected session's cached view is stale. It only ever
// answers with a refresh hint — the client refetches through the normal
// query path, so event arrival order cannot matter: the refetch reads the
// store's latest committed state.
package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lab-inventory-system/pkg/eventbus"
	"lab-inventory-system/pkg/types"
	ws "lab-inventory-system/pkg/websocket"
)

// Session is the per-connection reconciliation state: the active filter per
// watched table. Ephemeral — rebuilt on every filter change, gone on
// disconnect. Only this session's event handlers touch it.
type Session struct {
	client  *ws.Client
	mu      sync.Mutex
	filters map[string]types.Filter
}

// SetFilter replaces the active predicate for one table and marks the table
// as watched.
func (s *Session) SetFilter(table string, f types.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[table] = f
}

// CurrentFilter returns the active predicate and whether the table is
// watched at all.
func (s *Session) CurrentFilter(table string) (types.Filter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filters[table]
	return f, ok
}

type Engine struct {
	hub      *ws.Hub
	logger   *zap.Logger
	mu       sync.RWMutex
	sessions map[*Session]bool
}

func NewEngine(hub *ws.Hub, logger *zap.Logger) *Engine {
	return &Engine{
		hub:      hub,
		logger:   logger,
		sessions: make(map[*Session]bool),
	}
}

// Register subscribes the engine to every table feed it reconciles.
func (e *Engine) Register(bus *eventbus.Bus) {
	for _, table := range []string{TableEquipments, TableTransfers, TableIssues} {
		bus.Subscribe(table, e.onMutation)
	}
}

// Attach creates the session for a freshly connected client and sends one
// unconditional refresh: a reconnect replaces any missed interim events with
// a full refetch instead of gap-filling.
func (e *Engine) Attach(client *ws.Client) *Session {
	session := &Session{
		client:  client,
		filters: make(map[string]types.Filter),
	}

	e.mu.Lock()
	e.sessions[session] = true
	e.mu.Unlock()

	client.OnClose = func() { e.detach(session) }

	if err := e.hub.SendToClient(client, ws.RefreshPayload{Table: "*"}, ws.TypeRefresh); err != nil {
		e.logger.Warn("initial refresh hint failed", zap.Error(err))
	}
	return session
}

// SetFilterForUser replaces the active predicate for one table on every open
// session of the user. Returns how many sessions were updated; zero means
// the user has no live connection and nothing to reconcile.
func (e *Engine) SetFilterForUser(userID uint64, table string, f types.Filter) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	updated := 0
	for session := range e.sessions {
		if session.client.UserID != userID {
			continue
		}
		session.SetFilter(table, f)
		updated++
	}
	return updated
}

func (e *Engine) detach(session *Session) {
	e.mu.Lock()
	delete(e.sessions, session)
	e.mu.Unlock()
}

// onMutation applies the reconciliation rules to every watching session:
// a delete always refreshes (the filter cannot be evaluated against an
// absent record), an insert/update refreshes iff the incoming row satisfies
// the session's active filter, and anything else is discarded silently.
func (e *Engine) onMutation(ctx context.Context, m eventbus.Mutation) error {
	e.mu.RLock()
	sessions := make([]*Session, 0, len(e.sessions))
	for s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.RUnlock()

	for _, session := range sessions {
		filter, watching := session.CurrentFilter(m.Table)
		if !watching {
			continue
		}
		if m.Type != eventbus.EventDelete && !Matches(filter, m.Row) {
			continue
		}
		if err := e.hub.SendToClient(session.client, ws.RefreshPayload{Table: m.Table}, ws.TypeRefresh); err != nil {
			e.logger.Warn("refresh hint failed",
				zap.String("table", m.Table),
				zap.Uint64("userID", session.client.UserID),
				zap.Error(err),
			)
		}
	}
	return nil
}
