package repository

import (
	"context"
	"errors"

	"topodiagram/internal/domain"
)

// ErrSessionNotFound is returned when no session has the requested ID
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists survey sessions
type SessionStore interface {
	// SaveSession inserts or replaces a session. CreatedAt is kept from the
	// first save; UpdatedAt is set on every save.
	SaveSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.SessionSummary, error)
	DeleteSession(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
