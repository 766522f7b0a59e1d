package httpapi

import (
	"context"
	"errors"
	"net/http"

	"memberportal/web-service/internal/auth"
	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/session"
)

const unauthorizedLocation = "/login?unauthorized=1"

type sessionContextKey struct{}

func sessionFromContext(ctx context.Context) models.Session {
	sess, _ := ctx.Value(sessionContextKey{}).(models.Session)
	return sess
}

// LoadSession resolves the request's session and stores it in the context.
// Nothing is persisted here.
func (h *Handler) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Load(r.Context(), r)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated sends anonymous visitors to the login page.
func (h *Handler) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.CheckAuthenticated(sessionFromContext(r.Context()), h.now()); err != nil {
			http.Redirect(w, r, unauthorizedLocation, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin checks authentication first, then the stored role.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h.auth.CheckAdmin(r.Context(), sessionFromContext(r.Context()), h.now())
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, auth.ErrUnauthenticated):
			http.Redirect(w, r, unauthorizedLocation, http.StatusFound)
		case errors.Is(err, auth.ErrForbidden):
			h.write(w, r, page(http.StatusForbidden, "denied", nil))
		default:
			h.serverError(w, r, err)
		}
	})
}

// RedirectIfAuthenticated keeps signed-in users off the login form.
func (h *Handler) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.IsAuthenticated(sessionFromContext(r.Context()), h.now()) {
			http.Redirect(w, r, "/members", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
