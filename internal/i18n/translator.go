// Package i18n loads per-language text mappings and republishes them to the
// page.
package i18n

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/ziadkadry99/folio/internal/generation"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
)

// State is the translator's load state.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Degraded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	default:
		return "idle"
	}
}

// Source fetches the translation map for a language.
type Source interface {
	Translations(ctx context.Context, lang locale.Locale) (map[string]string, error)
}

// Publisher pushes a translation map to every text-bound node. An empty map
// means "show the original text".
type Publisher interface {
	PublishTexts(lang locale.Locale, texts map[string]string)
}

// PreferenceSaver persists a language choice.
type PreferenceSaver interface {
	Save(ctx context.Context, p preferences.Partial)
}

// Translator owns the current language and its translation map.
type Translator struct {
	source    Source
	publisher Publisher
	prefs     PreferenceSaver
	gen       generation.Counter

	mu      sync.RWMutex
	current locale.Locale
	loaded  locale.Locale
	texts   map[string]string
	state   State
}

// New creates an idle Translator whose current language is lang.
func New(source Source, publisher Publisher, prefs PreferenceSaver, lang locale.Locale) *Translator {
	return &Translator{
		source:    source,
		publisher: publisher,
		prefs:     prefs,
		current:   lang,
		texts:     map[string]string{},
	}
}

// LoadTranslations fetches lang and, if no later load was started in the
// meantime, replaces the active map and publishes it. A failed fetch
// publishes an empty map and leaves the translator degraded. A load that was
// overtaken returns generation.ErrStale and changes nothing.
func (t *Translator) LoadTranslations(ctx context.Context, lang locale.Locale) error {
	return t.FinishLoad(ctx, lang, t.StartLoad())
}

// StartLoad issues the tag for a load without touching the current language.
// Loads started later overtake it.
func (t *Translator) StartLoad() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	gen := t.gen.Next()
	t.state = Loading
	return gen
}

// FinishLoad runs the load tagged gen. See LoadTranslations.
func (t *Translator) FinishLoad(ctx context.Context, lang locale.Locale, gen uint64) error {
	if !t.gen.IsCurrent(gen) {
		return generation.ErrStale
	}

	texts, fetchErr := t.source.Translations(ctx, lang)

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.gen.IsCurrent(gen) {
		return generation.ErrStale
	}

	if fetchErr != nil {
		texts = map[string]string{}
		t.state = Degraded
	} else {
		texts = maps.Clone(texts)
		if texts == nil {
			texts = map[string]string{}
		}
		t.state = Ready
	}
	t.texts = texts
	t.loaded = lang
	t.publisher.PublishTexts(lang, maps.Clone(texts))

	if fetchErr != nil {
		return fmt.Errorf("loading %s translations: %w", lang, fetchErr)
	}
	return nil
}

// SwitchLanguage makes lang current, persists it and loads its translations.
func (t *Translator) SwitchLanguage(ctx context.Context, lang locale.Locale) error {
	gen, err := t.StartSwitch(lang)
	if err != nil {
		return err
	}
	return t.FinishSwitch(ctx, lang, gen)
}

// StartSwitch makes lang current and issues the tag for its load. It does
// not block, so callers can take tags in request order.
func (t *Translator) StartSwitch(lang locale.Locale) (uint64, error) {
	if !lang.Valid() {
		return 0, fmt.Errorf("switching language: unsupported locale %q", lang)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = lang
	gen := t.gen.Next()
	t.state = Loading
	return gen, nil
}

// FinishSwitch persists the current language and loads lang under gen. An
// overtaken switch returns generation.ErrStale without saving anything.
func (t *Translator) FinishSwitch(ctx context.Context, lang locale.Locale, gen uint64) error {
	if !t.gen.IsCurrent(gen) {
		return generation.ErrStale
	}
	t.persistCurrent(ctx)
	return t.FinishLoad(ctx, lang, gen)
}

// persistCurrent saves the current language, repeating while other switches
// or loads start during the write, so the stored value ends on the latest
// request even when an older write lands last.
func (t *Translator) persistCurrent(ctx context.Context) {
	for {
		t.mu.RLock()
		gen, lang := t.gen.Latest(), t.current
		t.mu.RUnlock()

		t.prefs.Save(ctx, preferences.WithLanguage(lang))
		if t.gen.IsCurrent(gen) || ctx.Err() != nil {
			return
		}
	}
}

// Translate returns the text for key, or key itself when it is unmapped.
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.texts[key]; ok {
		return v
	}
	return key
}

// Current returns the most recently requested language.
func (t *Translator) Current() locale.Locale {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Loaded returns the language whose map is active ("" before any load).
func (t *Translator) Loaded() locale.Locale {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

func (t *Translator) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Texts returns a copy of the active map.
func (t *Translator) Texts() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.texts)
}
