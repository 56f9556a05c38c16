package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/ziadkadry99/folio/internal/generation"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
)

// ErrDestroyed is returned by operations on a Loader after Destroy.
var ErrDestroyed = errors.New("catalog loader destroyed")

// Selectors the loader binds to.
const (
	SelectorFilterButton = ".filter-btn"
	SelectorClearFilters = "#clear-filters"
)

// Source fetches the project dataset for a language.
type Source interface {
	Projects(ctx context.Context, lang locale.Locale) ([]Project, error)
}

// View renders the catalog.
type View interface {
	RenderList(cards []ui.Card)
	RenderEmpty(text string)
	ShowMessage(m ui.Message)
	ClearMessage(region ui.Region)
	SetImageSource(id, src string)
	ShowFilters(active preferences.Filters)
}

// PreferenceSaver persists the filter set.
type PreferenceSaver interface {
	Save(ctx context.Context, p preferences.Partial)
}

// Options configure a Loader.
type Options struct {
	Watch  ui.WatchOptions
	Logger *log.Logger
}

// Loader owns the active dataset, the filter set and the rendered view.
type Loader struct {
	source  Source
	view    View
	binder  ui.Binder
	watcher ui.Watcher
	prefs   PreferenceSaver
	opts    Options
	gen     generation.Counter

	mu        sync.Mutex
	lang      locale.Locale
	projects  []Project
	filters   preferences.Filters
	labels    Labels
	seq       int
	pending   map[string]string // card id -> image source
	unbinds   []func()
	unwatch   func()
	destroyed bool
}

// NewLoader creates a Loader for lang with the restored filter set. Nothing
// is fetched until LoadProjects.
func NewLoader(source Source, view View, binder ui.Binder, watcher ui.Watcher, prefs PreferenceSaver, lang locale.Locale, filters preferences.Filters, opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Watch == (ui.WatchOptions{}) {
		opts.Watch = ui.DefaultWatchOptions
	}
	l := &Loader{
		source:  source,
		view:    view,
		binder:  binder,
		watcher: watcher,
		prefs:   prefs,
		opts:    opts,
		lang:    lang,
		filters: filters.Clone(),
		labels:  LabelsFor(lang),
		pending: make(map[string]string),
	}
	l.unwatch = watcher.OnVisible(l.reveal)
	return l
}

// LoadProjects fetches the dataset for lang. On success the dataset is
// replaced and re-rendered against the current filters. On failure an error
// message is shown and the previous dataset is kept. A load overtaken by a
// later one returns generation.ErrStale and changes nothing.
func (l *Loader) LoadProjects(ctx context.Context, lang locale.Locale) error {
	gen, err := l.StartLoad(lang)
	if err != nil {
		return err
	}
	return l.FinishLoad(ctx, lang, gen)
}

// StartLoad issues the tag for a load of lang and shows the loading message.
// It does not fetch, so callers can take tags in request order.
func (l *Loader) StartLoad(lang locale.Locale) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return 0, ErrDestroyed
	}
	gen := l.gen.Next()
	l.view.ShowMessage(ui.Message{Region: ui.RegionProjects, Kind: ui.KindInfo, Text: LabelsFor(lang).Loading})
	return gen, nil
}

// FinishLoad fetches lang and applies it if gen is still the latest tag.
func (l *Loader) FinishLoad(ctx context.Context, lang locale.Locale, gen uint64) error {
	if !l.gen.IsCurrent(gen) {
		return generation.ErrStale
	}
	labels := LabelsFor(lang)

	projects, err := l.source.Projects(ctx, lang)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return ErrDestroyed
	}
	if !l.gen.IsCurrent(gen) {
		return generation.ErrStale
	}
	if err != nil {
		l.opts.Logger.Printf("catalog: loading %s projects: %v", lang, err)
		l.view.ShowMessage(ui.Message{Region: ui.RegionProjects, Kind: ui.KindError, Text: labels.Failed})
		return fmt.Errorf("loading %s projects: %w", lang, err)
	}

	l.projects = slices.Clone(projects)
	l.lang = lang
	l.labels = labels
	l.view.ClearMessage(ui.RegionProjects)
	l.renderLocked()
	return nil
}

// ChangeLanguage reloads the dataset for lang. The filter set is kept.
func (l *Loader) ChangeLanguage(ctx context.Context, lang locale.Locale) error {
	return l.LoadProjects(ctx, lang)
}

// ToggleFilter selects value for key with toggle semantics, persists the
// whole filter set and re-renders.
func (l *Loader) ToggleFilter(ctx context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return ErrDestroyed
	}
	l.filters = Toggle(l.filters, key, value)
	l.prefs.Save(ctx, preferences.WithFilters(l.filters))
	l.renderLocked()
	return nil
}

// ClearFilters removes every active filter, persists and re-renders.
func (l *Loader) ClearFilters(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return ErrDestroyed
	}
	l.filters = preferences.Filters{}
	l.prefs.Save(ctx, preferences.WithFilters(l.filters))
	l.renderLocked()
	return nil
}

// Bind attaches the filter controls.
func (l *Loader) Bind() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return
	}
	l.unbinds = append(l.unbinds,
		l.binder.Bind(SelectorFilterButton, func(ctx context.Context, ev ui.Event) {
			if err := l.ToggleFilter(ctx, ev.Data["filterKey"], ev.Data["filterValue"]); err != nil {
				l.opts.Logger.Printf("catalog: toggle filter: %v", err)
			}
		}),
		l.binder.Bind(SelectorClearFilters, func(ctx context.Context, _ ui.Event) {
			if err := l.ClearFilters(ctx); err != nil {
				l.opts.Logger.Printf("catalog: clear filters: %v", err)
			}
		}),
	)
}

// Destroy detaches the visibility subscription and every binding. Later
// calls are no-ops.
func (l *Loader) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return
	}
	l.destroyed = true
	for _, unbind := range l.unbinds {
		unbind()
	}
	l.unbinds = nil
	l.unwatch()
	l.forgetPendingLocked()
}

// Filters returns a copy of the active filter set.
func (l *Loader) Filters() preferences.Filters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters.Clone()
}

// Projects returns the active dataset.
func (l *Loader) Projects() []Project {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.projects)
}

// Locale returns the language of the active dataset.
func (l *Loader) Locale() locale.Locale {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lang
}

// renderLocked redraws the card list. Images still waiting from the previous
// render are dropped: their cards no longer exist.
func (l *Loader) renderLocked() {
	l.forgetPendingLocked()
	l.seq++

	l.view.ShowFilters(l.filters.Clone())
	v := Render(l.projects, l.filters, l.labels)
	if v.Empty {
		l.view.RenderEmpty(l.labels.Empty)
		return
	}

	for i := range v.Cards {
		v.Cards[i].ID = fmt.Sprintf("p%d-%d", l.seq, i)
		if v.Cards[i].HasImage() {
			l.pending[v.Cards[i].ID] = v.Cards[i].Image
		}
	}
	l.view.RenderList(v.Cards)
	for _, c := range v.Cards {
		if c.HasImage() {
			l.watcher.Observe(c.ID, l.opts.Watch)
		}
	}
}

func (l *Loader) forgetPendingLocked() {
	for id := range l.pending {
		l.watcher.Unobserve(id)
	}
	clear(l.pending)
}

// reveal swaps in the real image the first time a card becomes visible and
// stops watching it.
func (l *Loader) reveal(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.pending[id]
	if !ok {
		return
	}
	delete(l.pending, id)
	l.watcher.Unobserve(id)
	l.view.SetImageSource(id, src)
}
