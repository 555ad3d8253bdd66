package storage

import (
	"time"

	"newsapp/internal/session"
)

// SessionStore определяет общий интерфейс для хранения пользовательских сессий.
// Состояние живет только в памяти процесса и теряется при перезапуске.
type SessionStore interface {
	Get(id string) (*session.Session, bool)
	Put(id string, s *session.Session)
	Sweep(now time.Time) int
	Len() int
}
