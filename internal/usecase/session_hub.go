package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"BotDash/internal/domain/models"
	"BotDash/internal/domain/repository"
	"BotDash/pkg/logger"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one mounted dashboard, typically one browser tab.
type Session struct {
	ID         string
	Controller *DashboardController
	CreatedAt  time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionHub keeps the live dashboard sessions and reaps idle ones.
type SessionHub struct {
	factory *ControllerFactory
	filters *FilterStateManager
	metrics repository.Metrics
	log     *logger.Logger
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionHub(factory *ControllerFactory, filters *FilterStateManager, ttl time.Duration, m repository.Metrics, log *logger.Logger) *SessionHub {
	if m == nil {
		m = repository.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHub{
		factory:  factory,
		filters:  filters,
		metrics:  m,
		log:      log,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Filters exposes the filter manager sessions are parsed with.
func (h *SessionHub) Filters() *FilterStateManager { return h.filters }

// Open mounts a new dashboard for q. A session whose first render fails is discarded.
func (h *SessionHub) Open(ctx context.Context, q url.Values) (*Session, *Snapshot, error) {
	f, err := h.parse(q)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	now := h.now()
	s := &Session{ID: id, Controller: h.factory.New(id), CreatedAt: now, lastSeen: now}

	h.mu.Lock()
	h.sessions[id] = s
	n := len(h.sessions)
	h.mu.Unlock()
	h.metrics.SetActiveSessions(n)

	snap, err := s.Controller.Mount(ctx, f)
	if err != nil {
		_ = h.Close(id)
		return nil, nil, err
	}
	h.log.Info("dashboard session opened", logger.String("session", id), logger.String("symbol", f.Symbol))
	return s, snap, nil
}

// Get returns the session and marks it as seen.
func (h *SessionHub) Get(id string) (*Session, error) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(h.now())
	return s, nil
}

// Apply re-renders session id with a new query.
func (h *SessionHub) Apply(ctx context.Context, id string, q url.Values) (*Snapshot, error) {
	s, err := h.Get(id)
	if err != nil {
		return nil, err
	}
	f, err := h.parse(q)
	if err != nil {
		return nil, err
	}
	return s.Controller.Refresh(ctx, f)
}

// Close unmounts and forgets session id.
func (h *SessionHub) Close(id string) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	n := len(h.sessions)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.Controller.Unmount()
	h.metrics.SetActiveSessions(n)
	h.log.Info("dashboard session closed", logger.String("session", id))
	return nil
}

// Reap closes sessions idle for longer than the TTL and reports how many it closed.
func (h *SessionHub) Reap() int {
	if h.ttl <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.ttl)

	h.mu.RLock()
	var idle []string
	for id, s := range h.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	h.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if h.Close(id) == nil {
			closed++
		}
	}
	if closed > 0 {
		h.log.Info("reaped idle dashboard sessions", logger.Int("count", closed))
	}
	return closed
}

// Run reaps on every tick until ctx is cancelled, then closes every session.
func (h *SessionHub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.CloseAll()
			return
		case <-ticker.C:
			h.Reap()
		}
	}
}

func (h *SessionHub) CloseAll() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	for _, id := range ids {
		_ = h.Close(id)
	}
}

func (h *SessionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Snapshot renders q once without keeping a session.
func (h *SessionHub) Snapshot(ctx context.Context, q url.Values) (*Snapshot, error) {
	f, err := h.parse(q)
	if err != nil {
		return nil, err
	}
	c := h.factory.New("oneshot-" + uuid.NewString())
	defer c.Unmount()
	return c.Mount(ctx, f)
}

// Normalize parses, validates and re-serializes q.
func (h *SessionHub) Normalize(q url.Values) (url.Values, error) {
	f, err := h.parse(q)
	if err != nil {
		return nil, err
	}
	return h.filters.Serialize(f), nil
}

// ExportURL builds one download link for q.
func (h *SessionHub) ExportURL(q url.Values, kind ExportKind) (string, error) {
	f, err := h.parse(q)
	if err != nil {
		return "", err
	}
	if h.factory.URLs == nil {
		return "", errors.New("export links unavailable")
	}
	return ExportURL(h.factory.URLs, kind, f)
}

func (h *SessionHub) parse(q url.Values) (models.FilterState, error) {
	f := h.filters.Parse(q)
	if err := h.filters.Validate(f); err != nil {
		return models.FilterState{}, err
	}
	return f, nil
}
