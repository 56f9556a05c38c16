package preferences

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ziadkadry99/folio/internal/locale"
)

// ConfigStore reads and writes the preference set through a Store. Writes
// never fail from the caller's point of view: storage errors are logged and
// the caller's in-memory state stays authoritative.
type ConfigStore struct {
	store  Store
	logger *log.Logger
}

// NewConfigStore wraps store. A nil logger uses the standard logger.
func NewConfigStore(store Store, logger *log.Logger) *ConfigStore {
	if logger == nil {
		logger = log.Default()
	}
	return &ConfigStore{store: store, logger: logger}
}

// Load returns the stored preferences, substituting the default for every
// field that is missing, unreadable or not a supported value.
func (c *ConfigStore) Load(ctx context.Context) Preferences {
	prefs := Defaults()

	if raw, ok := c.get(ctx, KeyLanguage); ok {
		if l, valid := locale.Parse(raw); valid {
			prefs.Language = l
		} else {
			c.logger.Printf("preferences: ignoring unsupported language %q", raw)
		}
	}

	if raw, ok := c.get(ctx, KeyTheme); ok {
		if mode := ThemeMode(raw); mode.Concrete() {
			prefs.Theme = mode
		} else {
			c.logger.Printf("preferences: ignoring non-concrete theme %q", raw)
		}
	}

	if raw, ok := c.get(ctx, KeyFilters); ok {
		var filters Filters
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			c.logger.Printf("preferences: ignoring unparseable filters: %v", err)
		} else if filters != nil {
			prefs.Filters = filters
		}
	}

	return prefs
}

// Save writes the fields present in p and leaves the rest untouched.
func (c *ConfigStore) Save(ctx context.Context, p Partial) {
	if p.Language != nil {
		c.set(ctx, KeyLanguage, string(*p.Language))
	}
	if p.Theme != nil {
		if p.Theme.Concrete() {
			c.set(ctx, KeyTheme, string(*p.Theme))
		} else {
			c.logger.Printf("preferences: refusing to persist theme %q", *p.Theme)
		}
	}
	if p.Filters != nil {
		data, err := json.Marshal(p.Filters.Clone())
		if err != nil {
			c.logger.Printf("preferences: encoding filters: %v", err)
			return
		}
		c.set(ctx, KeyFilters, string(data))
	}
}

// Clear removes every key ConfigStore owns.
func (c *ConfigStore) Clear(ctx context.Context) {
	for _, key := range []string{KeyLanguage, KeyTheme, KeyFilters} {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Printf("preferences: clear %s: %v", key, err)
		}
	}
}

func (c *ConfigStore) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Printf("preferences: read %s: %v", key, err)
		return "", false
	}
	return v, ok
}

func (c *ConfigStore) set(ctx context.Context, key, value string) {
	if err := c.store.Set(ctx, key, value); err != nil {
		c.logger.Printf("preferences: write %s: %v", key, err)
	}
}
