// Package httpapi serves the member portal pages.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memberportal/web-service/internal/assets"
	"memberportal/web-service/internal/auth"
	"memberportal/web-service/internal/logging"
	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/session"
	"memberportal/web-service/internal/store"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	auth     *auth.Service
	sessions *session.Manager
	assets   *assets.Picker
	logger   logging.Logger
	metrics  *Metrics
	views    *views
	now      func() time.Time
}

// NewHandler wires the page handlers. metrics may be nil, in which case
// /metrics is not served.
func NewHandler(authService *auth.Service, sessions *session.Manager, picker *assets.Picker, logger logging.Logger, metrics *Metrics) (*Handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		auth:     authService,
		sessions: sessions,
		assets:   picker,
		logger:   logger,
		metrics:  metrics,
		views:    v,
		now:      time.Now,
	}, nil
}

// SetClock overrides the time source for the gates and the session manager.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
	h.sessions.SetClock(now)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.handleHealth)
	r.Handle("/public/*", publicHandler())
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(h.LoadSession)

		r.Get("/", h.wrap(h.home))
		r.Get("/signUp", h.wrap(h.signupForm))
		r.Post("/submitUser", h.wrap(h.submitUser))
		r.Get("/logout", h.wrap(h.logout))
		r.Post("/logout", h.wrap(h.logout))
		r.Get("/asset/{id}", h.wrap(h.asset))

		r.Group(func(r chi.Router) {
			r.Use(h.RedirectIfAuthenticated)
			r.Get("/login", h.wrap(h.loginForm))
			r.Post("/loggingIn", h.wrap(h.loggingIn))
		})
		r.With(h.RequireAuthenticated).Get("/members", h.wrap(h.members))
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Get("/admin", h.wrap(h.admin))
			r.Post("/toggleAdminStatus", h.wrap(h.toggleAdminStatus))
		})
	})
	r.NotFound(h.wrap(h.notFound))
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type homeData struct {
	Hits          int
	Authenticated bool
	Username      string
}

// home shows the hits before this one, so a first visit reads 0.
func (h *Handler) home(r *http.Request, sess models.Session) (result, error) {
	hits := sess.PageHits
	sess.PageHits++
	return page(http.StatusOK, "home", homeData{
		Hits:          hits,
		Authenticated: session.IsAuthenticated(sess, h.now()),
		Username:      sess.Username,
	}).saving(sess), nil
}

type formData struct {
	Message      string
	Unauthorized bool
}

func (h *Handler) signupForm(r *http.Request, sess models.Session) (result, error) {
	return page(http.StatusOK, "signup", formData{Message: formMessage(r.URL.Query(), false)}), nil
}

func (h *Handler) submitUser(r *http.Request, sess models.Session) (result, error) {
	if err := r.ParseForm(); err != nil {
		return plain(http.StatusBadRequest, "invalid form"), nil
	}
	user, err := h.auth.Signup(r.Context(), auth.SignupInput{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
	})
	if err != nil {
		if q, ok := signupFailure(err); ok {
			h.metrics.authAttempt("signup", q.Get("error"))
			return redirectTo("/signUp?" + q.Encode()), nil
		}
		h.metrics.authAttempt("signup", "error")
		return result{}, err
	}
	h.metrics.authAttempt("signup", "success")

	sess = h.sessions.Authenticate(sess, user)
	sess.JustSignedUp = true
	return redirectTo("/members").saving(sess), nil
}

func (h *Handler) loginForm(r *http.Request, sess models.Session) (result, error) {
	q := r.URL.Query()
	return page(http.StatusOK, "login", formData{
		Message:      formMessage(q, true),
		Unauthorized: q.Get("unauthorized") != "",
	}), nil
}

func (h *Handler) loggingIn(r *http.Request, sess models.Session) (result, error) {
	if err := r.ParseForm(); err != nil {
		return plain(http.StatusBadRequest, "invalid form"), nil
	}
	user, err := h.auth.Login(r.Context(), strings.TrimSpace(r.PostForm.Get("username")), r.PostForm.Get("password"))
	if err != nil {
		if q, ok := loginFailure(err); ok {
			h.metrics.authAttempt("login", q.Get("error"))
			return redirectTo("/login?" + q.Encode()), nil
		}
		h.metrics.authAttempt("login", "error")
		return result{}, err
	}
	h.metrics.authAttempt("login", "success")
	h.logger.Info(r.Context(), "user logged in", "username", user.Username)

	return redirectTo("/members").saving(h.sessions.Authenticate(sess, user)), nil
}

type membersData struct {
	Username     string
	JustSignedUp bool
	Asset        string
}

func (h *Handler) members(r *http.Request, sess models.Session) (result, error) {
	sess, justSignedUp := session.TakeJustSignedUp(sess)

	asset, err := h.assets.Random(r.Context())
	if err != nil {
		h.logger.Warn(r.Context(), "pick member asset", "error", err)
	}
	sess.Asset = asset

	return page(http.StatusOK, "members", membersData{
		Username:     sess.Username,
		JustSignedUp: justSignedUp,
		Asset:        asset,
	}).saving(sess), nil
}

type adminData struct {
	Username string
	Users    []models.UserSummary
}

func (h *Handler) admin(r *http.Request, sess models.Session) (result, error) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		return result{}, err
	}
	return page(http.StatusOK, "admin", adminData{Username: sess.Username, Users: users}), nil
}

func (h *Handler) toggleAdminStatus(r *http.Request, sess models.Session) (result, error) {
	if err := r.ParseForm(); err != nil {
		return plain(http.StatusBadRequest, "invalid form"), nil
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	if username == "" {
		return page(http.StatusBadRequest, "badrequest", "username is required"), nil
	}
	role, err := h.auth.ToggleRole(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return page(http.StatusBadRequest, "badrequest", "unknown user "+username), nil
		}
		return result{}, err
	}
	h.logger.Info(r.Context(), "admin toggled role", "by", sess.Username, "username", username, "role", string(role))
	return redirectTo("/admin"), nil
}

func (h *Handler) logout(r *http.Request, sess models.Session) (result, error) {
	return redirectTo("/").destroying(sess), nil
}

type assetData struct {
	ID  int
	URL string
}

func (h *Handler) asset(r *http.Request, sess models.Session) (result, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return page(http.StatusNotFound, "notfound", nil), nil
	}
	url, err := h.assets.At(r.Context(), id)
	if err != nil {
		if errors.Is(err, assets.ErrNoAsset) {
			return page(http.StatusNotFound, "notfound", nil), nil
		}
		return result{}, err
	}
	return page(http.StatusOK, "asset", assetData{ID: id, URL: url}), nil
}

func (h *Handler) notFound(r *http.Request, sess models.Session) (result, error) {
	return page(http.StatusNotFound, "notfound", nil), nil
}
