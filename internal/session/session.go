// Package session drives one browser tab over a WebSocket: DOM triggers come
// in as messages and render operations go back out.
package session

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
)

const writeWait = 10 * time.Second

// Session is the surface and visibility watcher for one connection.
type Session struct {
	ID         string
	RemoteAddr string

	conn     *websocket.Conn
	renderer *Renderer
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	writeMu sync.Mutex

	mu        sync.Mutex
	system    preferences.ThemeMode
	handlers  map[string]map[int]ui.Handler
	callbacks map[int]func(string)
	observed  map[string]bool
	nextID    int
}

func newSession(parent context.Context, conn *websocket.Conn, renderer *Renderer, logger *log.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:        uuid.New().String(),
		conn:      conn,
		renderer:  renderer,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		system:    preferences.ThemeAuto,
		handlers:  make(map[string]map[int]ui.Handler),
		callbacks: make(map[int]func(string)),
		observed:  make(map[string]bool),
	}
}

func (s *Session) send(op outbound) {
	if s.ctx.Err() != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(op); err != nil {
		s.logger.Printf("session %s: websocket write: %v", s.ID, err)
		s.cancel()
	}
}

func (s *Session) setSystemTheme(mode preferences.ThemeMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = mode
}

// SystemTheme implements theme.SystemPreference.
func (s *Session) SystemTheme() preferences.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.system
}

func (s *Session) ApplyTheme(mode preferences.ThemeMode) {
	s.send(outbound{Type: opTheme, Mode: mode})
}

func (s *Session) SetLanguageLabel(label string) {
	s.send(outbound{Type: opLanguageLabel, Label: label})
}

func (s *Session) PublishTexts(lang locale.Locale, texts map[string]string) {
	s.send(outbound{Type: opTexts, Lang: lang, Texts: texts})
}

func (s *Session) RenderList(cards []ui.Card) {
	html, err := s.renderer.Cards(cards)
	if err != nil {
		s.logger.Printf("session %s: %v", s.ID, err)
		return
	}
	s.send(outbound{Type: opRenderList, HTML: html})
}

func (s *Session) RenderEmpty(text string) {
	s.send(outbound{Type: opRenderList, HTML: s.renderer.Empty(text), Empty: true})
}

func (s *Session) ShowMessage(m ui.Message) {
	s.send(outbound{Type: opMessage, Region: m.Region, Kind: m.Kind, Text: m.Text})
}

func (s *Session) ClearMessage(region ui.Region) {
	s.send(outbound{Type: opClearMessage, Region: region})
}

func (s *Session) SetImageSource(id, src string) {
	s.send(outbound{Type: opSetImage, ID: id, Src: s.renderer.ImageURL(src)})
}

func (s *Session) ShowFilters(active preferences.Filters) {
	s.send(outbound{Type: opFilters, Active: active})
}

func (s *Session) ResetForm(selector string) {
	s.send(outbound{Type: opResetForm, Selector: selector})
}

func (s *Session) MarkReady() {
	s.send(outbound{Type: opReady, Session: s.ID})
}

func (s *Session) ShowFatal(text string) {
	s.send(outbound{Type: opFatal, Text: text})
}

// Bind implements ui.Binder.
func (s *Session) Bind(selector string, h ui.Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[selector] == nil {
		s.handlers[selector] = make(map[int]ui.Handler)
	}
	id := s.nextID
	s.nextID++
	s.handlers[selector][id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers[selector], id)
	}
}

// Observe implements ui.Watcher.
func (s *Session) Observe(id string, opts ui.WatchOptions) {
	s.mu.Lock()
	s.observed[id] = true
	s.mu.Unlock()
	s.send(outbound{Type: opObserve, ID: id, Margin: opts.RootMargin, Threshold: opts.Threshold})
}

func (s *Session) Unobserve(id string) {
	s.mu.Lock()
	_, ok := s.observed[id]
	delete(s.observed, id)
	s.mu.Unlock()
	if ok {
		s.send(outbound{Type: opUnobserve, ID: id})
	}
}

func (s *Session) OnVisible(fn func(id string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.callbacks[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.callbacks, id)
	}
}

// dispatch runs every handler bound to ev.Selector on its own goroutine so a
// slow fetch never blocks the read loop.
func (s *Session) dispatch(ev ui.Event) {
	s.mu.Lock()
	handlers := make([]ui.Handler, 0, len(s.handlers[ev.Selector]))
	for _, h := range s.handlers[ev.Selector] {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		s.wg.Add(1)
		go func(h ui.Handler) {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Printf("session %s: handler for %s panicked: %v\n%s", s.ID, ev.Selector, r, debug.Stack())
				}
			}()
			h(s.ctx, ev)
		}(h)
	}
}

// reveal handles a visibility report. Reports for items that are no longer
// observed are ignored.
func (s *Session) reveal(id string) {
	s.mu.Lock()
	if !s.observed[id] {
		s.mu.Unlock()
		return
	}
	fns := make([]func(string), 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// close cancels in-flight work and waits for running handlers.
func (s *Session) close() {
	s.cancel()
	s.wg.Wait()
}
