package store

import (
	"context"
	"strings"
	"time"

	"memberportal/web-service/internal/models"
)

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         models.Role
}

// UserStore is the user collection. Username and email are unique after
// lower-casing.
type UserStore interface {
	// FindByIdentifier looks up by email when identifier contains "@",
	// otherwise by username. Matching is case-insensitive.
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	// FindConflict returns a user whose username or email collides with the
	// given ones, or ErrUserNotFound.
	FindConflict(ctx context.Context, username, email string) (models.User, error)
	Insert(ctx context.Context, user NewUser) (models.User, error)
	ListAll(ctx context.Context) ([]models.UserSummary, error)
	SetRole(ctx context.Context, username string, role models.Role) error
}

// SessionStore persists opaque session payloads. Load returns
// ErrSessionNotFound for missing and expired entries alike.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

func Normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// ConflictError maps a colliding user to the sentinel for the field that
// collided. Username wins when both collide.
func ConflictError(existing models.User, username string) error {
	if Normalize(existing.Username) == Normalize(username) {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}
