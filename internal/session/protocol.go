package session

import (
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
)

// Client message types.
const (
	msgHello   = "hello"
	msgClick   = "click"
	msgVisible = "visible"
)

// Server operation types.
const (
	opTheme         = "theme"
	opLanguageLabel = "language_label"
	opTexts         = "texts"
	opRenderList    = "render_list"
	opMessage       = "message"
	opClearMessage  = "clear_message"
	opObserve       = "observe"
	opUnobserve     = "unobserve"
	opSetImage      = "set_image"
	opFilters       = "filters"
	opResetForm     = "reset_form"
	opReady         = "ready"
	opFatal         = "fatal"
)

// inbound is a message from the browser.
type inbound struct {
	Type        string            `json:"type"`
	SystemTheme string            `json:"systemTheme,omitempty"`
	Selector    string            `json:"selector,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	ID          string            `json:"id,omitempty"`
}

// outbound is a render operation sent to the browser.
type outbound struct {
	Type      string                `json:"type"`
	Session   string                `json:"session,omitempty"`
	Mode      preferences.ThemeMode `json:"mode,omitempty"`
	Label     string                `json:"label,omitempty"`
	Lang      locale.Locale         `json:"lang,omitempty"`
	Texts     map[string]string     `json:"texts,omitempty"`
	HTML      string                `json:"html,omitempty"`
	Empty     bool                  `json:"empty,omitempty"`
	Region    ui.Region             `json:"region,omitempty"`
	Kind      ui.MessageKind        `json:"kind,omitempty"`
	Text      string                `json:"text,omitempty"`
	ID        string                `json:"id,omitempty"`
	Src       string                `json:"src,omitempty"`
	Margin    string                `json:"margin,omitempty"`
	Threshold float64               `json:"threshold,omitempty"`
	Active    preferences.Filters   `json:"active,omitempty"`
	Selector  string                `json:"selector,omitempty"`
}
