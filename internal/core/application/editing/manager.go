package editing

import (
	"context"
	"errors"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// SessionManager owns the open edit sessions of the process.
type SessionManager struct {
	deps   SessionDeps
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[kernel.UUID]*Session
}

func NewSessionManager(deps SessionDeps) *SessionManager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.AfterFunc == nil {
		deps.AfterFunc = systemAfterFunc
	}
	return &SessionManager{
		deps:     deps,
		logger:   deps.Logger.With(zap.String("component", "session_manager")),
		sessions: make(map[kernel.UUID]*Session),
	}
}

// Open loads the order and starts a session on it.
func (m *SessionManager) Open(ctx context.Context, params OpenParams) (*Session, error) {
	s, err := openSession(ctx, m.deps, params)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Info("session opened",
		zap.String("session_id", s.ID().String()),
		zap.String("order_id", s.OrderID().String()),
		zap.String("actor", s.Actor()))
	return s, nil
}

func (m *SessionManager) Get(id kernel.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("edit session", id)
	}
	return s, nil
}

// Close closes session id. The session stays registered when it refuses to close.
func (m *SessionManager) Close(id kernel.UUID, force bool) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if err = s.Close(force); err != nil {
		return err
	}
	m.forget(id)
	return nil
}

func (m *SessionManager) SaveAndClose(ctx context.Context, id kernel.UUID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if err = s.SaveAndClose(ctx); err != nil {
		return err
	}
	m.forget(id)
	return nil
}

// SweepIdle force-closes sessions inactive for longer than idle and returns their ids.
func (m *SessionManager) SweepIdle(now time.Time, idle time.Duration) []kernel.UUID {
	// Session locks are never taken while m.mu is held.
	var stale []*Session
	for _, s := range m.snapshot() {
		if now.Sub(s.LastActivity()) > idle {
			stale = append(stale, s)
		}
	}

	swept := make([]kernel.UUID, 0, len(stale))
	for _, s := range stale {
		if err := s.Close(true); err != nil {
			m.logger.Warn("close idle session", zap.String("session_id", s.ID().String()), zap.Error(err))
			continue
		}
		m.forget(s.ID())
		swept = append(swept, s.ID())
	}
	return swept
}

// CloseAll force-closes every session, used on shutdown.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	clear(m.sessions)
	m.mu.Unlock()

	var errList []error
	for _, s := range all {
		errList = append(errList, s.Close(true))
	}
	return errors.Join(errList...)
}

func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	return all
}

func (m *SessionManager) forget(id kernel.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
