// Package session manages per-client session records.
//
// A request without a valid cookie, or whose record is missing or past its
// expiry, gets a fresh anonymous session. Records are persisted only when a
// handler saves them.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"memberportal/web-service/internal/logging"
	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/store"

	"github.com/google/uuid"
)

const DefaultTTL = time.Hour

type Options struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type Manager struct {
	store  store.SessionStore
	codec  *Codec
	signer *CookieSigner
	opts   Options
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewManager(st store.SessionStore, codec *Codec, signer *CookieSigner, opts Options, logger logging.Logger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return &Manager{
		store:  st,
		codec:  codec,
		signer: signer,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetClock overrides the time source for the manager and its signer.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
	m.signer.now = now
}

func (m *Manager) TTL() time.Duration {
	return m.opts.TTL
}

// New returns an unsaved anonymous session.
func (m *Manager) New() models.Session {
	return models.Session{
		SessionID: m.newID(),
		ExpiresAt: m.now().Add(m.opts.TTL),
	}
}

// Load resolves the request's session. Only backend failures are returned
// as errors; everything else collapses to a fresh anonymous session.
func (m *Manager) Load(ctx context.Context, r *http.Request) (models.Session, error) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return m.New(), nil
	}
	sessionID, err := m.signer.Verify(cookie.Value)
	if err != nil {
		return m.New(), nil
	}

	data, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return m.New(), nil
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	sess, err := m.codec.Decode(sessionID, data)
	if err != nil {
		m.logger.Warn(ctx, "discarding unreadable session", "error", err)
		return m.New(), nil
	}
	if !m.now().Before(sess.ExpiresAt) {
		return m.New(), nil
	}
	return sess, nil
}

// Authenticate returns sess moved to the authenticated state for user with
// a fresh expiry.
func (m *Manager) Authenticate(sess models.Session, user models.User) models.Session {
	sess.Authenticated = true
	sess.Username = user.Username
	sess.Role = user.Role
	sess.ExpiresAt = m.now().Add(m.opts.TTL)
	return sess
}

// Save persists sess and refreshes the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sess models.Session) error {
	if sess.SessionID == "" {
		return errors.New("save session: missing id")
	}
	if sess.Authenticated && sess.Username == "" {
		return errors.New("save session: authenticated without username")
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = m.now().Add(m.opts.TTL)
	}

	data, err := m.codec.Encode(sess)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, sess.SessionID, data, sess.ExpiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	value, err := m.signer.Sign(sess.SessionID, sess.ExpiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy removes the stored record and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess models.Session) error {
	if sess.SessionID != "" {
		if err := m.store.Delete(ctx, sess.SessionID); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PurgeLoop deletes expired records every interval until ctx is done.
func (m *Manager) PurgeLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purged, err := m.store.PurgeExpired(ctx)
			if err != nil {
				m.logger.Error(ctx, "purge expired sessions", "error", err)
				continue
			}
			if purged > 0 {
				m.logger.Info(ctx, "purged expired sessions", "count", purged)
			}
		case <-ctx.Done():
			return
		}
	}
}

// IsAuthenticated reports whether sess is authenticated and unexpired at now.
func IsAuthenticated(sess models.Session, now time.Time) bool {
	return sess.Authenticated && sess.Username != "" && now.Before(sess.ExpiresAt)
}

// TakeJustSignedUp returns the one-shot signup flag and sess with it cleared.
func TakeJustSignedUp(sess models.Session) (models.Session, bool) {
	flag := sess.JustSignedUp
	sess.JustSignedUp = false
	return sess, flag
}
