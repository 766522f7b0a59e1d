package httpapi

import (
	"bytes"
	"context"
	"net/http"

	"memberportal/web-service/internal/models"
)

type sessionUpdate int

const (
	keepSession sessionUpdate = iota
	saveSession
	destroySession
)

// result is what a page handler decided. The adapter applies the session
// update before anything is written, so the update lands even when
// rendering fails.
type result struct {
	status   int
	redirect string
	view     string
	data     any
	text     string
	update   sessionUpdate
	session  models.Session
}

type pageFunc func(r *http.Request, sess models.Session) (result, error)

func redirectTo(location string) result {
	return result{status: http.StatusFound, redirect: location}
}

func page(status int, view string, data any) result {
	return result{status: status, view: view, data: data}
}

func plain(status int, text string) result {
	return result{status: status, text: text}
}

func (res result) saving(sess models.Session) result {
	res.update = saveSession
	res.session = sess
	return res
}

func (res result) destroying(sess models.Session) result {
	res.update = destroySession
	res.session = sess
	return res
}

func (h *Handler) wrap(fn pageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res, err := fn(r, sessionFromContext(ctx))
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		if err := h.applySession(ctx, w, res); err != nil {
			h.serverError(w, r, err)
			return
		}
		h.write(w, r, res)
	}
}

func (h *Handler) applySession(ctx context.Context, w http.ResponseWriter, res result) error {
	switch res.update {
	case saveSession:
		return h.sessions.Save(ctx, w, res.session)
	case destroySession:
		return h.sessions.Destroy(ctx, w, res.session)
	}
	return nil
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, res result) {
	switch {
	case res.redirect != "":
		http.Redirect(w, r, res.redirect, res.status)
	case res.view != "":
		var buf bytes.Buffer
		if err := h.views.render(&buf, res.view, res.data); err != nil {
			h.serverError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(res.status)
		_, _ = buf.WriteTo(w)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(res.status)
		_, _ = w.Write([]byte(res.text))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
