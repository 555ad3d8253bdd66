package storage

import (
	"log/slog"
	"sync"
	"time"

	"newsapp/internal/session"
)

var _ SessionStore = (*MemorySessions)(nil)

// entry сессия и время последнего обращения к ней.
type entry struct {
	session  *session.Session
	lastSeen time.Time
}

// MemorySessions хранит сессии в памяти и удаляет те, к которым не обращались дольше ttl.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewMemorySessions создает хранилище сессий в памяти.
// Сессии, простаивающие дольше ttl, удаляются при вызове Sweep.
func NewMemorySessions(ttl time.Duration, log *slog.Logger) *MemorySessions {
	log.Info("Initializing in-memory session storage", slog.Duration("ttl", ttl))
	return &MemorySessions{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
		log:      log.With(slog.String("component", "storage")),
	}
}

// Get возвращает сессию и продлевает ее время жизни.
func (m *MemorySessions) Get(id string) (*session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.session, true
}

// Put сохраняет сессию под идентификатором id и отмечает время обращения.
func (m *MemorySessions) Put(id string, s *session.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &entry{session: s, lastSeen: m.now()}
}

// Sweep удаляет сессии, простаивающие дольше ttl, и возвращает их количество.
func (m *MemorySessions) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Debug("Expired idle sessions", slog.Int("count", removed), slog.Int("remaining", len(m.sessions)))
	}
	return removed
}

// Len возвращает количество хранимых сессий.
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
