package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ziadkadry99/folio/internal/catalog"
	"github.com/ziadkadry99/folio/internal/contact"
	"github.com/ziadkadry99/folio/internal/content"
	"github.com/ziadkadry99/folio/internal/generation"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
	"github.com/ziadkadry99/folio/internal/ui/uitest"
)

type okChannel struct{}

func (okChannel) Submit(context.Context, contact.Fields) contact.Outcome { return contact.OK }

// flakyStore panics on reads while broken is set.
type flakyStore struct {
	*preferences.MemoryStore
	broken atomic.Bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.broken.Load() {
		panic("storage unavailable")
	}
	return s.MemoryStore.Get(ctx, key)
}

type failingTranslations struct{}

func (failingTranslations) Translations(context.Context, locale.Locale) (map[string]string, error) {
	return nil, errors.New("404")
}

type failingProjects struct{}

func (failingProjects) Projects(context.Context, locale.Locale) ([]catalog.Project, error) {
	return nil, errors.New("503")
}

// stallingStore blocks the first write of stallValue under stallKey until
// release is closed.
type stallingStore struct {
	*preferences.MemoryStore
	stallKey   string
	stallValue string
	once       sync.Once
	stalled    chan struct{}
	release    chan struct{}
}

func (s *stallingStore) Set(ctx context.Context, key, value string) error {
	if key == s.stallKey && value == s.stallValue {
		s.once.Do(func() {
			close(s.stalled)
			<-s.release
		})
	}
	return s.MemoryStore.Set(ctx, key, value)
}

type fixture struct {
	app     *App
	rec     *uitest.Recorder
	watcher *ui.ManualWatcher
	store   *preferences.MemoryStore
	logs    *bytes.Buffer
}

func setupApp(t *testing.T, configure func(*Deps)) *fixture {
	t.Helper()
	src := content.NewFSSource(content.Default())
	f := &fixture{
		rec:     uitest.New(),
		watcher: ui.NewManualWatcher(),
		store:   preferences.NewMemoryStore(),
		logs:    &bytes.Buffer{},
	}
	deps := Deps{
		Surface:      f.rec,
		Watcher:      f.watcher,
		Store:        f.store,
		Translations: src,
		Projects:     src,
		Contact:      okChannel{},
	}
	if configure != nil {
		configure(&deps)
	}
	f.app = New(deps, Options{Logger: log.New(f.logs, "", 0)})
	t.Cleanup(f.app.Close)
	return f
}

func indexOf(ops []uitest.Op, name string) int {
	for i, op := range ops {
		if op.Name == name {
			return i
		}
	}
	return -1
}

func TestStartupOrder(t *testing.T) {
	f := setupApp(t, nil)
	if err := f.app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ops := f.rec.Ops()
	if ops[0].Name != "theme" || ops[1].Name != "language_label" {
		t.Fatalf("first ops = %v, want theme then language_label", ops[:2])
	}
	if last := ops[len(ops)-1]; last.Name != "ready" {
		t.Errorf("last op = %s, want ready", last.Name)
	}
	for _, name := range []string{"texts", "render_list"} {
		if i := indexOf(ops, name); i < 2 || i > indexOf(ops, "ready") {
			t.Errorf("%s at %d, want between the label and ready", name, i)
		}
	}
	if f.rec.Label() != "EN" {
		t.Errorf("label = %q, want EN", f.rec.Label())
	}
	if f.rec.Theme() != preferences.ThemeLight {
		t.Errorf("theme = %q, want the system light", f.rec.Theme())
	}
	if f.store.Len() != 0 {
		t.Error("startup must not write preferences")
	}
	for _, sel := range []string{SelectorLanguageToggle, SelectorThemeToggle, catalog.SelectorFilterButton, catalog.SelectorClearFilters, contact.SelectorForm} {
		if f.rec.Bound(sel) != 1 {
			t.Errorf("%s bound %d times, want 1", sel, f.rec.Bound(sel))
		}
	}
}

func TestStartupRestoresPreferences(t *testing.T) {
	f := setupApp(t, nil)
	ctx := context.Background()
	cs := preferences.NewConfigStore(f.store, nil)
	cs.Save(ctx, preferences.WithLanguage(locale.EN))
	cs.Save(ctx, preferences.WithTheme(preferences.ThemeDark))
	cs.Save(ctx, preferences.WithFilters(preferences.Filters{"category": "Mobile"}))

	if err := f.app.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if f.rec.Label() != "ES" || f.rec.Theme() != preferences.ThemeDark {
		t.Errorf("label=%q theme=%q", f.rec.Label(), f.rec.Theme())
	}
	if got := f.rec.Titles(); !reflect.DeepEqual(got, []string{"Bike routes"}) {
		t.Errorf("rendered %v", got)
	}
	if lang, texts := f.rec.Texts(); lang != locale.EN || texts["nav.home"] != "Home" {
		t.Errorf("published %s %v", lang, texts)
	}
}

func TestLanguageToggleFansOut(t *testing.T) {
	f := setupApp(t, nil)
	ctx := context.Background()
	if err := f.app.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.app.Loader().ToggleFilter(ctx, "tech", "Go")

	f.rec.Click(ctx, SelectorLanguageToggle, nil)

	if f.app.Language() != locale.EN || f.rec.Label() != "ES" {
		t.Errorf("language=%s label=%s", f.app.Language(), f.rec.Label())
	}
	if got := f.rec.Titles(); !reflect.DeepEqual(got, []string{"Online store", "Clinic scheduler"}) {
		t.Errorf("rendered %v, want the English Go projects", got)
	}
	if f.app.Translator().Translate("nav.home") != "Home" {
		t.Error("translator did not switch")
	}
	if v, _, _ := f.store.Get(ctx, preferences.KeyLanguage); v != "en" {
		t.Errorf("stored language = %q", v)
	}

	f.rec.Click(ctx, SelectorLanguageToggle, nil)
	if f.app.Language() != locale.ES || f.rec.Label() != "EN" {
		t.Errorf("second toggle: language=%s label=%s", f.app.Language(), f.rec.Label())
	}
}

func TestThemeTogglePersists(t *testing.T) {
	f := setupApp(t, nil)
	ctx := context.Background()
	f.app.Start(ctx)

	f.rec.Click(ctx, SelectorThemeToggle, nil)
	if f.rec.Theme() != preferences.ThemeDark {
		t.Errorf("theme = %q, want dark", f.rec.Theme())
	}
	if v, _, _ := f.store.Get(ctx, preferences.KeyTheme); v != "dark" {
		t.Errorf("stored theme = %q", v)
	}
}

func TestFetchFailureIsNotFatal(t *testing.T) {
	f := setupApp(t, func(d *Deps) { d.Translations = failingTranslations{} })
	if err := f.app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if f.rec.Fatal() != "" || f.rec.Ready() != 1 {
		t.Errorf("fatal=%q ready=%d", f.rec.Fatal(), f.rec.Ready())
	}
	if f.app.Translator().Translate("nav.home") != "nav.home" {
		t.Error("degraded translator should fall back to keys")
	}
	if !strings.Contains(f.logs.String(), "initial load degraded") {
		t.Errorf("logs = %q", f.logs.String())
	}
}

func TestStartupPanicShowsFatalWithRetry(t *testing.T) {
	store := &flakyStore{MemoryStore: preferences.NewMemoryStore()}
	store.broken.Store(true)
	f := setupApp(t, func(d *Deps) { d.Store = store })
	ctx := context.Background()

	if err := f.app.Start(ctx); err == nil {
		t.Fatal("expected a startup error")
	}
	if f.rec.Fatal() != fatalTexts[locale.ES] {
		t.Errorf("fatal = %q", f.rec.Fatal())
	}
	if f.rec.Ready() != 0 || f.app.Ready() {
		t.Error("app must not be ready after a failed startup")
	}

	store.broken.Store(false)
	f.rec.Click(ctx, SelectorRetry, nil)

	if !f.app.Ready() || f.rec.Fatal() != "" {
		t.Errorf("retry did not recover: ready=%v fatal=%q", f.app.Ready(), f.rec.Fatal())
	}
	if f.rec.Bound(SelectorRetry) != 0 {
		t.Error("retry binding should be removed after a successful retry")
	}
	if f.rec.Bound(SelectorLanguageToggle) != 1 {
		t.Errorf("language toggle bound %d times", f.rec.Bound(SelectorLanguageToggle))
	}
}

func TestMissingDependencyIsFatal(t *testing.T) {
	f := setupApp(t, func(d *Deps) { d.Projects = nil })
	if err := f.app.Start(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if f.rec.Fatal() == "" {
		t.Error("expected the fatal state")
	}
}

func TestCloseDetachesEverything(t *testing.T) {
	f := setupApp(t, nil)
	ctx := context.Background()
	f.app.Start(ctx)
	f.app.Close()

	for _, sel := range []string{SelectorLanguageToggle, SelectorThemeToggle, catalog.SelectorFilterButton, contact.SelectorForm} {
		if f.rec.Bound(sel) != 0 {
			t.Errorf("%s still bound after Close", sel)
		}
	}
	if f.watcher.Pending() != 0 {
		t.Error("images still observed after Close")
	}
	if err := f.app.ToggleLanguage(ctx); err == nil {
		t.Error("ToggleLanguage after Close should fail")
	}
}

func TestLastRequestedLanguageWins(t *testing.T) {
	store := &stallingStore{
		MemoryStore: preferences.NewMemoryStore(),
		stallKey:    preferences.KeyLanguage,
		stallValue:  "en",
		stalled:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	f := setupApp(t, func(d *Deps) { d.Store = store })
	ctx := context.Background()
	if err := f.app.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	slow := make(chan error, 1)
	go func() { slow <- f.app.SwitchLanguage(ctx, locale.EN) }()
	<-store.stalled

	if err := f.app.SwitchLanguage(ctx, locale.ES); err != nil {
		t.Fatalf("SwitchLanguage(es): %v", err)
	}
	close(store.release)
	if err := <-slow; err != nil {
		t.Errorf("overtaken switch returned %v, want nil", err)
	}

	if f.app.Language() != locale.ES || f.rec.Label() != "EN" {
		t.Errorf("language=%s label=%s", f.app.Language(), f.rec.Label())
	}
	if got := f.app.Translator().Loaded(); got != locale.ES {
		t.Errorf("translator loaded %s, want es", got)
	}
	if lang, texts := f.rec.Texts(); lang != locale.ES || texts["nav.home"] != "Inicio" {
		t.Errorf("published %s %v, want es", lang, texts)
	}
	if got := f.app.Loader().Locale(); got != locale.ES {
		t.Errorf("catalog locale = %s, want es", got)
	}
	if v, _, _ := store.Get(ctx, preferences.KeyLanguage); v != "es" {
		t.Errorf("stored language = %q, want es", v)
	}
}

func TestSwitchReportsEveryFailure(t *testing.T) {
	f := setupApp(t, func(d *Deps) {
		d.Translations = failingTranslations{}
		d.Projects = failingProjects{}
	})
	ctx := context.Background()
	if err := f.app.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	err := f.app.SwitchLanguage(ctx, locale.EN)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"en translations", "en projects"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestJoinFreshDropsStale(t *testing.T) {
	failed := errors.New("503")
	if err := joinFresh(generation.ErrStale, failed); !errors.Is(err, failed) || errors.Is(err, generation.ErrStale) {
		t.Errorf("joinFresh(stale, failed) = %v, want only the failure", err)
	}
	if err := joinFresh(generation.ErrStale, nil); err != nil {
		t.Errorf("joinFresh(stale, nil) = %v, want nil", err)
	}
	other := errors.New("404")
	if err := joinFresh(other, failed); !errors.Is(err, other) || !errors.Is(err, failed) {
		t.Errorf("joinFresh(other, failed) = %v, want both", err)
	}
}
