package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/folio/internal/app"
	"github.com/ziadkadry99/folio/internal/contact"
	"github.com/ziadkadry99/folio/internal/content"
	"github.com/ziadkadry99/folio/internal/db"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/session"
	"github.com/ziadkadry99/folio/internal/ui"
)

// Config holds server configuration.
type Config struct {
	Port       int
	AllowAll   bool // allow all CORS and WebSocket origins (dev mode)
	Watch      ui.WatchOptions
	MessageTTL time.Duration
}

// Server serves the portfolio page and runs one session per open tab.
type Server struct {
	cfg        Config
	db         *db.DB
	content    fs.FS
	source     *content.FSSource
	prefs      *preferences.SQLStore
	messages   *contact.Store
	channel    contact.Channel
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over database and the content in contentFS. A nil
// channel stores contact messages in the database.
func New(cfg Config, database *db.DB, contentFS fs.FS, channel contact.Channel) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		content:  contentFS,
		source:   content.NewFSSource(contentFS),
		prefs:    preferences.NewSQLStore(database),
		messages: contact.NewStore(database),
		channel:  channel,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Sessions outlive any request timeout.
	r.Handle("/ws", s.Sessions())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", s.serveIndex)
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

		s.registerContentRoutes(r)
		s.registerPreferenceRoutes(r)
		contact.RegisterRoutes(r, s.messages)
	})

	return r
}

// Sessions returns the WebSocket handler that runs one App per connection.
func (s *Server) Sessions() http.Handler {
	opts := app.Options{Watch: s.cfg.Watch, MessageTTL: s.cfg.MessageTTL}
	return session.NewHandler(s.sessionDeps, opts, "/content/", s.cfg.AllowAll)
}

func (s *Server) sessionDeps(sess *session.Session, visitor string) app.Deps {
	channel := s.channel
	if channel == nil {
		channel = contact.NewLocalChannel(s.messages, sess.RemoteAddr)
	}
	return app.Deps{
		Store:        session.VisitorStore(s.prefs, visitor),
		Translations: s.source,
		Projects:     s.source,
		Contact:      channel,
	}
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Messages returns the contact message store.
func (s *Server) Messages() *contact.Store { return s.messages }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("folio server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server. Open sessions are hijacked
// connections and end when their clients go away.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
