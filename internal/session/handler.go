package session

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/folio/internal/app"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/theme"
	"github.com/ziadkadry99/folio/internal/ui"
)

// VisitorCookie identifies a browser across sessions so its preferences can
// be found again.
const VisitorCookie = "folio_visitor"

const helloWait = 5 * time.Second

// DepsFunc supplies the non-surface dependencies for a new session. visitor
// is the browser's visitor id.
type DepsFunc func(s *Session, visitor string) app.Deps

// Handler upgrades requests to WebSocket sessions and runs one App per
// connection.
type Handler struct {
	newDeps  DepsFunc
	opts     app.Options
	renderer *Renderer
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHandler creates a Handler. allowAllOrigins disables the same-origin
// check for development setups that serve the page elsewhere.
func NewHandler(newDeps DepsFunc, opts app.Options, assetBase string, allowAllOrigins bool) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	h := &Handler{
		newDeps:  newDeps,
		opts:     opts,
		renderer: NewRenderer(assetBase),
		logger:   opts.Logger,
	}
	if allowAllOrigins {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("session: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess := newSession(r.Context(), conn, h.renderer, h.logger)
	sess.RemoteAddr = r.RemoteAddr
	sess.setSystemTheme(theme.FromClientHint(r.Header.Get("Sec-CH-Prefers-Color-Scheme")))

	visitor, ok := VisitorID(r)
	if !ok {
		visitor = sess.ID
	}

	// The browser announces its color scheme first. Anything else is
	// replayed after startup. A failed read leaves the connection unusable.
	var early []inbound
	conn.SetReadDeadline(time.Now().Add(helloWait))
	msg, err := readInbound(conn)
	if err != nil {
		h.logger.Printf("session %s: reading hello: %v", sess.ID, err)
		sess.close()
		return
	}
	if msg.Type == msgHello {
		if mode := theme.FromClientHint(msg.SystemTheme); mode.Concrete() {
			sess.setSystemTheme(mode)
		}
	} else {
		early = append(early, msg)
	}
	conn.SetReadDeadline(time.Time{})

	deps := h.newDeps(sess, visitor)
	deps.Surface = sess
	deps.Watcher = sess
	a := app.New(deps, h.opts)

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		if err := a.Start(sess.ctx); err != nil {
			h.logger.Printf("session %s: start: %v", sess.ID, err)
		}
		for _, msg := range early {
			h.handle(sess, msg)
		}
	}()

	for {
		msg, err := readInbound(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("session %s: websocket read: %v", sess.ID, err)
			}
			break
		}
		h.handle(sess, msg)
	}

	sess.close()
	a.Close()
}

func (h *Handler) handle(sess *Session, msg inbound) {
	switch msg.Type {
	case msgClick:
		sess.dispatch(ui.Event{Selector: msg.Selector, Data: msg.Data})
	case msgVisible:
		sess.reveal(msg.ID)
	case msgHello:
		if mode := theme.FromClientHint(msg.SystemTheme); mode.Concrete() {
			sess.setSystemTheme(mode)
		}
	default:
		h.logger.Printf("session %s: unknown message type %q", sess.ID, msg.Type)
	}
}

func readInbound(conn *websocket.Conn) (inbound, error) {
	var msg inbound
	_, data, err := conn.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return inbound{Type: "invalid"}, nil
	}
	return msg, nil
}

// VisitorID returns the visitor id carried by the request's cookie.
func VisitorID(r *http.Request) (string, bool) {
	c, err := r.Cookie(VisitorCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// EnsureVisitor returns the request's visitor id, issuing a new cookie when
// there is none.
func EnsureVisitor(w http.ResponseWriter, r *http.Request) string {
	if id, ok := VisitorID(r); ok {
		return id
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// VisitorStore scopes store to a visitor.
func VisitorStore(store preferences.Store, visitor string) preferences.Store {
	return preferences.Scope(store, "visitor:"+visitor)
}
