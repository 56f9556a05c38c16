// Package app is the composition root that wires preferences, translation,
// theme, catalog and contact form for one visitor session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/folio/internal/catalog"
	"github.com/ziadkadry99/folio/internal/contact"
	"github.com/ziadkadry99/folio/internal/generation"
	"github.com/ziadkadry99/folio/internal/i18n"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/theme"
	"github.com/ziadkadry99/folio/internal/ui"
)

// Selectors the coordinator binds to.
const (
	SelectorLanguageToggle = "#language-toggle"
	SelectorThemeToggle    = "#theme-toggle"
	SelectorRetry          = "#retry"
)

var fatalTexts = map[locale.Locale]string{
	locale.ES: "Algo salió mal al cargar la página.",
	locale.EN: "Something went wrong while loading the page.",
}

// Surface is everything the session renders to.
type Surface interface {
	catalog.View
	contact.Surface
	i18n.Publisher
	theme.Applier
	theme.SystemPreference
	ui.Binder

	SetLanguageLabel(label string)
	MarkReady()
	ShowFatal(text string)
}

// Options tune the components the App builds.
type Options struct {
	Watch      ui.WatchOptions
	MessageTTL time.Duration
	Logger     *log.Logger
}

// Deps are the capabilities injected into an App.
type Deps struct {
	Surface      Surface
	Watcher      ui.Watcher
	Store        preferences.Store
	Translations i18n.Source
	Projects     catalog.Source
	Contact      contact.Channel
}

// App coordinates the components of one session.
type App struct {
	deps   Deps
	opts   Options
	logger *log.Logger

	mu         sync.Mutex
	lang       locale.Locale
	translator *i18n.Translator
	themes     *theme.Controller
	loader     *catalog.Loader
	form       *contact.Form
	unbinds    []func()
	ready      bool
}

// New creates an App. Nothing runs until Start.
func New(deps Deps, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &App{deps: deps, opts: opts, logger: opts.Logger, lang: locale.Default}
}

// Start runs the startup sequence. Any error or panic replaces the page with
// a fatal error state offering a retry, and is returned.
func (a *App) Start(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("startup panic: %v", r)
		}
		if err != nil {
			a.fail(err)
		}
	}()
	return a.start(ctx)
}

func (a *App) start(ctx context.Context) error {
	if err := a.validate(); err != nil {
		return err
	}
	s := a.deps.Surface

	// 1. Preferences.
	config := preferences.NewConfigStore(a.deps.Store, a.logger)
	prefs := config.Load(ctx)

	// 2. Theme and language label before anything is painted.
	s.ApplyTheme(theme.Resolve(prefs.Theme, s.SystemTheme()))
	s.SetLanguageLabel(prefs.Language.ToggleLabel())

	// 3. Components. Each is recorded as soon as it exists so a failure
	// further on can tear it down.
	translator := i18n.New(a.deps.Translations, s, config, prefs.Language)
	a.mu.Lock()
	a.lang = prefs.Language
	a.translator = translator
	a.mu.Unlock()

	themes := theme.New(s, s, config)
	themes.Init(prefs.Theme)
	a.mu.Lock()
	a.themes = themes
	a.mu.Unlock()

	loader := catalog.NewLoader(a.deps.Projects, s, s, a.deps.Watcher, config, prefs.Language, prefs.Filters,
		catalog.Options{Watch: a.opts.Watch, Logger: a.logger})
	a.mu.Lock()
	a.loader = loader
	a.mu.Unlock()
	loader.Bind()

	form := contact.NewForm(a.deps.Contact, s, s, translator, a.opts.MessageTTL, a.logger)
	a.mu.Lock()
	a.form = form
	a.mu.Unlock()
	form.Bind()

	// 4. Controls and initial content.
	a.bind(SelectorLanguageToggle, func(ctx context.Context, _ ui.Event) {
		if err := a.ToggleLanguage(ctx); err != nil {
			a.logger.Printf("app: language toggle: %v", err)
		}
	})
	a.bind(SelectorThemeToggle, func(ctx context.Context, _ ui.Event) {
		a.ToggleTheme(ctx)
	})

	// Tags are taken under the lock so a toggle clicked during the initial
	// load overtakes it.
	a.mu.Lock()
	textGen := translator.StartLoad()
	listGen, err := loader.StartLoad(prefs.Language)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	var textErr, listErr error
	var g errgroup.Group
	g.Go(func() error {
		textErr = translator.FinishLoad(ctx, prefs.Language, textGen)
		return nil
	})
	g.Go(func() error {
		listErr = loader.FinishLoad(ctx, prefs.Language, listGen)
		return nil
	})
	g.Wait()
	if err := joinFresh(textErr, listErr); err != nil {
		a.logger.Printf("app: initial load degraded: %v", err)
	}

	// 5. Ready.
	a.mu.Lock()
	a.ready = true
	a.mu.Unlock()
	s.MarkReady()
	return nil
}

func (a *App) validate() error {
	switch {
	case a.deps.Surface == nil:
		return errors.New("app: no surface")
	case a.deps.Watcher == nil:
		return errors.New("app: no visibility watcher")
	case a.deps.Store == nil:
		return errors.New("app: no preference store")
	case a.deps.Translations == nil:
		return errors.New("app: no translation source")
	case a.deps.Projects == nil:
		return errors.New("app: no project source")
	case a.deps.Contact == nil:
		return errors.New("app: no contact channel")
	}
	return nil
}

func (a *App) bind(selector string, h ui.Handler) {
	unbind := a.deps.Surface.Bind(selector, h)
	a.mu.Lock()
	a.unbinds = append(a.unbinds, unbind)
	a.mu.Unlock()
}

// fail tears down whatever startup built and shows the fatal state.
func (a *App) fail(err error) {
	a.logger.Printf("app: startup failed: %v", err)
	a.teardown()
	if a.deps.Surface == nil {
		return
	}

	a.mu.Lock()
	text, ok := fatalTexts[a.lang]
	a.mu.Unlock()
	if !ok {
		text = fatalTexts[locale.Default]
	}
	a.deps.Surface.ShowFatal(text)
	a.bind(SelectorRetry, func(ctx context.Context, _ ui.Event) {
		if err := a.Retry(ctx); err != nil {
			a.logger.Printf("app: retry: %v", err)
		}
	})
}

// Retry tears down and reruns the startup sequence.
func (a *App) Retry(ctx context.Context) error {
	a.teardown()
	return a.Start(ctx)
}

// SwitchLanguage fans a language change out to the translator and the
// catalog. Both tags are issued before the lock is released, so the last
// requested language wins however the fetches finish. A switch overtaken by
// a later one returns nil.
func (a *App) SwitchLanguage(ctx context.Context, lang locale.Locale) error {
	if !lang.Valid() {
		return fmt.Errorf("switching language: unsupported locale %q", lang)
	}
	a.mu.Lock()
	if a.translator == nil {
		a.mu.Unlock()
		return errors.New("switching language: app not started")
	}
	sw, err := a.startSwitchLocked(lang)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return sw.finish(ctx)
}

// ToggleLanguage switches to the language the toggle currently offers.
func (a *App) ToggleLanguage(ctx context.Context) error {
	a.mu.Lock()
	if a.translator == nil {
		a.mu.Unlock()
		return errors.New("toggling language: app not started")
	}
	sw, err := a.startSwitchLocked(a.lang.Other())
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return sw.finish(ctx)
}

// languageSwitch is a language change whose tags have been issued.
type languageSwitch struct {
	lang       locale.Locale
	translator *i18n.Translator
	loader     *catalog.Loader
	textGen    uint64
	listGen    uint64
}

func (a *App) startSwitchLocked(lang locale.Locale) (*languageSwitch, error) {
	textGen, err := a.translator.StartSwitch(lang)
	if err != nil {
		return nil, err
	}
	listGen, err := a.loader.StartLoad(lang)
	if err != nil {
		return nil, err
	}
	a.lang = lang
	a.deps.Surface.SetLanguageLabel(lang.ToggleLabel())
	return &languageSwitch{
		lang:       lang,
		translator: a.translator,
		loader:     a.loader,
		textGen:    textGen,
		listGen:    listGen,
	}, nil
}

// finish runs both halves to completion. Overtaken halves are dropped; every
// other failure is reported.
func (sw *languageSwitch) finish(ctx context.Context) error {
	var textErr, listErr error
	var g errgroup.Group
	g.Go(func() error {
		textErr = sw.translator.FinishSwitch(ctx, sw.lang, sw.textGen)
		return nil
	})
	g.Go(func() error {
		listErr = sw.loader.FinishLoad(ctx, sw.lang, sw.listGen)
		return nil
	})
	g.Wait()
	return joinFresh(textErr, listErr)
}

// joinFresh joins errs, leaving out generation.ErrStale.
func joinFresh(errs ...error) error {
	var fresh []error
	for _, err := range errs {
		if err != nil && !errors.Is(err, generation.ErrStale) {
			fresh = append(fresh, err)
		}
	}
	return errors.Join(fresh...)
}

// ToggleTheme flips the theme.
func (a *App) ToggleTheme(ctx context.Context) preferences.ThemeMode {
	a.mu.Lock()
	themes := a.themes
	a.mu.Unlock()
	if themes == nil {
		return preferences.ThemeAuto
	}
	return themes.Toggle(ctx)
}

// Language returns the most recently requested language.
func (a *App) Language() locale.Locale {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lang
}

// Ready reports whether startup completed.
func (a *App) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Translator returns the session's translator, or nil before Start.
func (a *App) Translator() *i18n.Translator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.translator
}

// Loader returns the session's catalog loader, or nil before Start.
func (a *App) Loader() *catalog.Loader {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loader
}

// Theme returns the session's theme controller, or nil before Start.
func (a *App) Theme() *theme.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.themes
}

// Close destroys the components and removes every binding.
func (a *App) Close() {
	a.teardown()
}

func (a *App) teardown() {
	a.mu.Lock()
	loader, form, unbinds := a.loader, a.form, a.unbinds
	a.loader, a.form, a.unbinds = nil, nil, nil
	a.translator, a.themes = nil, nil
	a.ready = false
	a.mu.Unlock()

	for _, unbind := range unbinds {
		unbind()
	}
	if loader != nil {
		loader.Destroy()
	}
	if form != nil {
		form.Close()
	}
}
