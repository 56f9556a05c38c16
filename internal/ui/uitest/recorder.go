// Package uitest provides an in-memory surface for exercising the
// coordination components without a browser.
package uitest

import (
	"context"
	"maps"
	"sync"

	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
)

// Op is one recorded surface call.
type Op struct {
	Name  string
	Value any
}

// Recorder implements every rendering port and records what it was asked to
// do. It also acts as a Binder whose handlers run synchronously on Click.
type Recorder struct {
	mu sync.Mutex

	ops      []Op
	cards    []ui.Card
	empty    string
	texts    map[string]string
	lang     locale.Locale
	theme    preferences.ThemeMode
	label    string
	messages map[ui.Region]ui.Message
	images   map[string]string
	filters  preferences.Filters
	resets   []string
	ready    int
	fatal    string

	bindings map[string]map[int]ui.Handler
	nextBind int

	// System is returned by SystemTheme.
	System preferences.ThemeMode
}

// New returns an empty Recorder whose system theme is light.
func New() *Recorder {
	return &Recorder{
		messages: make(map[ui.Region]ui.Message),
		images:   make(map[string]string),
		bindings: make(map[string]map[int]ui.Handler),
		System:   preferences.ThemeLight,
	}
}

func (r *Recorder) record(name string, v any) {
	r.ops = append(r.ops, Op{Name: name, Value: v})
}

func (r *Recorder) RenderList(cards []ui.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = append([]ui.Card(nil), cards...)
	r.empty = ""
	r.record("render_list", len(cards))
}

func (r *Recorder) RenderEmpty(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = nil
	r.empty = text
	r.record("render_empty", text)
}

func (r *Recorder) ShowMessage(m ui.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.Region] = m
	r.record("message", m)
}

func (r *Recorder) ClearMessage(region ui.Region) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, region)
	r.record("clear_message", region)
}

func (r *Recorder) SetImageSource(id, src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[id] = src
	r.record("set_image", id)
}

func (r *Recorder) ShowFilters(active preferences.Filters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = active.Clone()
	r.record("filters", r.filters)
}

func (r *Recorder) PublishTexts(lang locale.Locale, texts map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lang = lang
	r.texts = maps.Clone(texts)
	r.record("texts", lang)
}

func (r *Recorder) ApplyTheme(mode preferences.ThemeMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = mode
	r.record("theme", mode)
}

func (r *Recorder) SystemTheme() preferences.ThemeMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.System
}

func (r *Recorder) SetLanguageLabel(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = label
	r.record("language_label", label)
}

func (r *Recorder) ResetForm(selector string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, selector)
	r.record("reset_form", selector)
}

func (r *Recorder) MarkReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready++
	r.fatal = ""
	r.record("ready", nil)
}

func (r *Recorder) ShowFatal(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fatal = text
	r.record("fatal", text)
}

// Bind implements ui.Binder.
func (r *Recorder) Bind(selector string, h ui.Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bindings[selector] == nil {
		r.bindings[selector] = make(map[int]ui.Handler)
	}
	id := r.nextBind
	r.nextBind++
	r.bindings[selector][id] = h
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.bindings[selector], id)
	}
}

// Click runs every handler bound to selector and reports whether any ran.
func (r *Recorder) Click(ctx context.Context, selector string, data map[string]string) bool {
	r.mu.Lock()
	handlers := make([]ui.Handler, 0, len(r.bindings[selector]))
	for _, h := range r.bindings[selector] {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	ev := ui.Event{Selector: selector, Data: data}
	for _, h := range handlers {
		h(ctx, ev)
	}
	return len(handlers) > 0
}

// Bound returns how many handlers are attached to selector.
func (r *Recorder) Bound(selector string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings[selector])
}

// Cards returns the last rendered card list.
func (r *Recorder) Cards() []ui.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ui.Card(nil), r.cards...)
}

// Titles returns the titles of the last rendered cards in order.
func (r *Recorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.cards))
	for i, c := range r.cards {
		out[i] = c.Title
	}
	return out
}

// Empty returns the "no projects" text, or "" if the last render had cards.
func (r *Recorder) Empty() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.empty
}

// Texts returns the last published translation map and its locale.
func (r *Recorder) Texts() (locale.Locale, map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lang, maps.Clone(r.texts)
}

func (r *Recorder) Theme() preferences.ThemeMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

func (r *Recorder) Label() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.label
}

// Message returns the message currently shown in region.
func (r *Recorder) Message(region ui.Region) (ui.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[region]
	return m, ok
}

// Image returns the source assigned to card id, if any.
func (r *Recorder) Image(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.images[id]
	return src, ok
}

func (r *Recorder) Filters() preferences.Filters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filters.Clone()
}

func (r *Recorder) Resets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.resets...)
}

// Ready returns how many times the surface was marked ready.
func (r *Recorder) Ready() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func (r *Recorder) Fatal() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatal
}

// Ops returns a copy of every recorded call in order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Count returns how many calls named name were recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Name == name {
			n++
		}
	}
	return n
}
