package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-tasks/internal/auth"
	"github.com/mind-engage/mindengage-tasks/internal/exam"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
	"github.com/mind-engage/mindengage-tasks/internal/web"
)

// Pages bundles what every HTML handler needs.
type Pages struct {
	Views *web.Renderer
	Log   *zap.Logger
}

func viewer(r *http.Request) *web.Viewer {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil
	}
	return &web.Viewer{Username: u.Username, IsAdmin: u.IsAdmin()}
}

func (p Pages) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	p.Views.Render(w, status, name, web.Page{Title: title, Viewer: viewer(r), Data: data})
}

func (p Pages) renderError(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, msg string) {
	p.Views.Render(w, status, name, web.Page{Title: title, Viewer: viewer(r), Data: data, Error: msg})
}

// fail maps err to a 404 or 500 page.
func (p Pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	if exam.IsNotFound(err) {
		p.Views.NotFound(w, viewer(r))
		return
	}
	p.Views.ServerError(w, viewer(r), err)
}

// currentUser is only called behind auth.RequireUser.
func currentUser(r *http.Request) auth.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

func idParam(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return v, err == nil && v > 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeAPIError maps validation errors to 422 and missing rows to 404.
func writeAPIError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: verr.Msg, Field: verr.Field})
	case exam.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, apiError{Error: "not found"})
	default:
		log.Error("admin api", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "internal error"})
	}
}
