package auth

import (
	"context"
	"errors"
	"time"

	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/session"
	"memberportal/web-service/internal/store"
)

// CheckAuthenticated passes only for an authenticated, unexpired session.
func CheckAuthenticated(sess models.Session, now time.Time) error {
	if !session.IsAuthenticated(sess, now) {
		return ErrUnauthenticated
	}
	return nil
}

// CheckAdmin requires authentication first, then the admin role. The role is
// read from the user store rather than the session, so promotions and
// demotions apply without a new login. Neither check writes the session.
func (s *Service) CheckAdmin(ctx context.Context, sess models.Session, now time.Time) error {
	if err := CheckAuthenticated(sess, now); err != nil {
		return err
	}
	role, err := s.CurrentRole(ctx, sess.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
