package server

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/folio/internal/content"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/session"
)

//go:embed web
var webFS embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

// serveIndex serves the embedded page and makes sure the browser carries a
// visitor cookie before it opens a session.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	session.EnsureVisitor(w, r)
	data, err := fs.ReadFile(webFS, "web/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) registerContentRoutes(r chi.Router) {
	r.Get("/content/i18n/{lang}.json", s.serveResource(content.TranslationsPath))
	r.Get("/content/projects/{lang}.json", s.serveResource(content.ProjectsPath))
	r.Handle("/content/*", http.StripPrefix("/content/", http.FileServer(http.FS(s.content))))
}

// serveResource serves a per-language JSON resource. Regional tags such as
// en-US resolve to their supported base language.
func (s *Server) serveResource(pathFor func(locale.Locale) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, ok := locale.Match(chi.URLParam(r, "lang"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unsupported language"})
			return
		}
		data, err := s.source.Raw(pathFor(lang))
		if err != nil {
			log.Printf("server: reading %s: %v", pathFor(lang), err)
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "resource not found"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Language", string(lang))
		w.Write(data)
	}
}

func (s *Server) registerPreferenceRoutes(r chi.Router) {
	r.Route("/api/preferences", func(r chi.Router) {
		r.Get("/", s.handleGetPreferences)
		r.Delete("/", s.handleClearPreferences)
	})
}

// handleGetPreferences returns the calling visitor's stored preferences. A
// browser without a visitor cookie sees the defaults.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	visitor, ok := session.VisitorID(r)
	if !ok {
		writeJSON(w, http.StatusOK, preferences.Defaults())
		return
	}
	cs := preferences.NewConfigStore(session.VisitorStore(s.prefs, visitor), nil)
	writeJSON(w, http.StatusOK, cs.Load(r.Context()))
}

func (s *Server) handleClearPreferences(w http.ResponseWriter, r *http.Request) {
	if visitor, ok := session.VisitorID(r); ok {
		cs := preferences.NewConfigStore(session.VisitorStore(s.prefs, visitor), nil)
		cs.Clear(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
