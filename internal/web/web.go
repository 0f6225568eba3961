// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var files embed.FS

// Layout files parsed together with every page.
var partials = []string{"templates/base.html", "templates/pager.html"}

// Viewer is the signed-in user as shown in the page chrome.
type Viewer struct {
	Username string
	IsAdmin  bool
}

// Page is the data handed to every template.
type Page struct {
	Title  string
	Viewer *Viewer
	Error  string
	Data   any
}

type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

var funcs = template.FuncMap{
	"ago":  humanize.Time,
	"date": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"add":  func(a, b int) int { return a + b },
}

// New parses the layout partials together with each page template.
func New(log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, n := range names {
		if slices.Contains(partials, n) {
			continue
		}
		t, err := template.New(path.Base(n)).Funcs(funcs).ParseFS(files, append(partials, n)...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		pages[path.Base(n)] = t
	}
	return &Renderer{pages: pages, log: log.Named("web")}, nil
}

// Render executes the named page ("task_list.html") into w with status.
func (rr *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	t, ok := rr.pages[name]
	if !ok {
		rr.log.Error("unknown template", zap.String("name", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		rr.log.Error("render", zap.String("name", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rr *Renderer) NotFound(w http.ResponseWriter, v *Viewer) {
	rr.Render(w, http.StatusNotFound, "error.html", Page{Title: "Not found", Viewer: v, Error: "The page you asked for does not exist."})
}

// ServerError logs err and shows a generic error page.
func (rr *Renderer) ServerError(w http.ResponseWriter, v *Viewer, err error) {
	rr.log.Error("handler failed", zap.Error(err))
	rr.Render(w, http.StatusInternalServerError, "error.html", Page{Title: "Error", Viewer: v, Error: "Something went wrong. Please try again."})
}
