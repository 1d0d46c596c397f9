// Package store persists USSD sessions between stateless exchanges.
package store

import (
	"context"

	"github.com/edubotswana/edubot/internal/domain"
)

// SessionStore defines the interface for persisting session state. Sessions
// expire on a sliding TTL: every Save refreshes the full timeout.
type SessionStore interface {
	// Get retrieves the session for an ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Save persists the session and refreshes its TTL.
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error
}
