// Package ui holds the vocabulary shared by the coordination components and
// whatever surface renders them: a WebSocket session, the terminal, or a test
// recorder. Components depend on the small interfaces they declare themselves;
// this package only provides the types those interfaces exchange.
package ui

import (
	"context"
)

// Region names a message area on the page.
type Region string

const (
	RegionProjects Region = "projects"
	RegionContact  Region = "contact"
)

// MessageKind controls how a message is styled.
type MessageKind string

const (
	KindInfo    MessageKind = "info"
	KindSuccess MessageKind = "success"
	KindError   MessageKind = "error"
	KindEmpty   MessageKind = "empty"
)

// Message is a localized notice shown in a region.
type Message struct {
	Region Region      `json:"region"`
	Kind   MessageKind `json:"kind"`
	Text   string      `json:"text"`
}

// Link is an outbound link on a project card.
type Link struct {
	Kind  string `json:"kind"` // demo, code, site, contribution
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Card is one rendered project. Image is empty when the card shows a
// placeholder instead of deferring a real image.
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	Category    string   `json:"category"`
	Mode        string   `json:"mode"`
	Image       string   `json:"image,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

// HasImage reports whether the card defers a real image.
func (c Card) HasImage() bool { return c.Image != "" }

// Event is a DOM trigger forwarded by the surface. Data carries the
// element's data-* attributes (filterKey, filterValue) or form fields.
type Event struct {
	Selector string            `json:"selector"`
	Data     map[string]string `json:"data,omitempty"`
}

// Handler reacts to an Event.
type Handler func(ctx context.Context, ev Event)

// Binder attaches click (or submit) handlers by selector. The returned
// function removes the binding and is safe to call more than once.
type Binder interface {
	Bind(selector string, h Handler) (unbind func())
}
