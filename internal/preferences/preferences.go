package preferences

import (
	"encoding/json"
	"maps"
	"sort"

	"github.com/ziadkadry99/folio/internal/locale"
)

// Persistent keys shared with the browser-era storage layout.
const (
	KeyLanguage      = "preferredLanguage"
	KeyTheme         = "theme"
	KeyFilters       = "projectFilters"
	KeyAccessibility = "accessibilitySettings" // owned by the accessibility panel, never written here
)

// ThemeMode is the presentation theme. ThemeAuto is only ever a read-time
// value meaning "nothing stored, follow the system".
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
	ThemeAuto  ThemeMode = "auto"
)

// Concrete reports whether m is a value that may be persisted.
func (m ThemeMode) Concrete() bool {
	return m == ThemeLight || m == ThemeDark
}

// Filters maps a filter key (category, mode, tech, ...) to the single value
// constraining it. An absent key is unconstrained.
type Filters map[string]string

// Clone returns an independent copy; a nil receiver yields an empty map.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	maps.Copy(out, f)
	return out
}

// Keys returns the active keys in sorted order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON accepts null values (and empty strings) as "cleared".
func (f *Filters) UnmarshalJSON(data []byte) error {
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Filters, len(raw))
	for k, v := range raw {
		if v == nil || *v == "" {
			continue
		}
		out[k] = *v
	}
	*f = out
	return nil
}

// Preferences is the full preference set for the single active user.
type Preferences struct {
	Language locale.Locale `json:"language"`
	Theme    ThemeMode     `json:"theme"`
	Filters  Filters       `json:"filters"`
}

// Defaults returns the preference set used before anything is saved.
func Defaults() Preferences {
	return Preferences{
		Language: locale.Default,
		Theme:    ThemeAuto,
		Filters:  Filters{},
	}
}

// Partial names the fields a Save should touch. Nil pointers and a nil
// Filters map leave the stored value alone.
type Partial struct {
	Language *locale.Locale
	Theme    *ThemeMode
	Filters  Filters
}

// WithLanguage is a Partial touching only the language.
func WithLanguage(l locale.Locale) Partial {
	return Partial{Language: &l}
}

// WithTheme is a Partial touching only the theme.
func WithTheme(m ThemeMode) Partial {
	return Partial{Theme: &m}
}

// WithFilters is a Partial touching only the filter set. A nil set is
// written as an empty one.
func WithFilters(f Filters) Partial {
	return Partial{Filters: f.Clone()}
}

// Apply merges p into prefs and returns the result.
func (p Partial) Apply(prefs Preferences) Preferences {
	if p.Language != nil {
		prefs.Language = *p.Language
	}
	if p.Theme != nil {
		prefs.Theme = *p.Theme
	}
	if p.Filters != nil {
		prefs.Filters = p.Filters.Clone()
	}
	return prefs
}
