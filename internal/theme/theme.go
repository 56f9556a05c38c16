// Package theme resolves and toggles the light/dark presentation.
package theme

import (
	"context"
	"strings"
	"sync"

	"github.com/ziadkadry99/folio/internal/preferences"
)

// Applier switches the page presentation.
type Applier interface {
	ApplyTheme(mode preferences.ThemeMode)
}

// SystemPreference reports the operating system's color scheme.
type SystemPreference interface {
	SystemTheme() preferences.ThemeMode
}

// PreferenceSaver persists an explicit theme choice.
type PreferenceSaver interface {
	Save(ctx context.Context, p preferences.Partial)
}

// Resolve picks the theme to show: a concrete stored value wins, otherwise
// the system preference, otherwise light.
func Resolve(stored, system preferences.ThemeMode) preferences.ThemeMode {
	if stored.Concrete() {
		return stored
	}
	if system.Concrete() {
		return system
	}
	return preferences.ThemeLight
}

// Controller holds the resolved theme. It never holds ThemeAuto once Init
// has run.
type Controller struct {
	applier Applier
	system  SystemPreference
	prefs   PreferenceSaver

	mu   sync.Mutex
	mode preferences.ThemeMode
}

func New(applier Applier, system SystemPreference, prefs PreferenceSaver) *Controller {
	return &Controller{applier: applier, system: system, prefs: prefs}
}

// Init resolves the theme from stored and applies it. A resolution taken
// from the system preference is not persisted.
func (c *Controller) Init(stored preferences.ThemeMode) preferences.ThemeMode {
	var system preferences.ThemeMode
	if !stored.Concrete() && c.system != nil {
		system = c.system.SystemTheme()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Resolve(stored, system)
	c.applier.ApplyTheme(c.mode)
	return c.mode
}

// Toggle flips between light and dark, applies the result and persists it,
// even when it matches the system preference.
func (c *Controller) Toggle(ctx context.Context) preferences.ThemeMode {
	c.mu.Lock()
	if c.mode == preferences.ThemeDark {
		c.mode = preferences.ThemeLight
	} else {
		c.mode = preferences.ThemeDark
	}
	mode := c.mode
	c.applier.ApplyTheme(mode)
	c.mu.Unlock()

	c.prefs.Save(ctx, preferences.WithTheme(mode))
	return mode
}

// Mode returns the current theme.
func (c *Controller) Mode() preferences.ThemeMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// FromClientHint parses a Sec-CH-Prefers-Color-Scheme header value. It
// returns ThemeAuto when the header is missing or unrecognised.
func FromClientHint(header string) preferences.ThemeMode {
	v := strings.ToLower(strings.Trim(strings.TrimSpace(header), `"`))
	switch preferences.ThemeMode(v) {
	case preferences.ThemeDark:
		return preferences.ThemeDark
	case preferences.ThemeLight:
		return preferences.ThemeLight
	default:
		return preferences.ThemeAuto
	}
}
