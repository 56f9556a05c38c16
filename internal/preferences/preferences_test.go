package preferences

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/ziadkadry99/folio/internal/db"
	"github.com/ziadkadry99/folio/internal/locale"
)

func setupSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLStore(database)
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "", 0)
}

// failingStore rejects every operation.
type failingStore struct{}

var errQuota = errors.New("quota exceeded")

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errQuota }
func (failingStore) Set(context.Context, string, string) error       { return errQuota }
func (failingStore) Delete(context.Context, string) error            { return errQuota }

func TestLoadDefaults(t *testing.T) {
	for name, store := range map[string]Store{
		"memory": NewMemoryStore(),
		"sql":    setupSQLStore(t),
	} {
		t.Run(name, func(t *testing.T) {
			cs := NewConfigStore(store, nil)
			got := cs.Load(context.Background())
			if got.Language != locale.ES {
				t.Errorf("language = %q, want es", got.Language)
			}
			if got.Theme != ThemeAuto {
				t.Errorf("theme = %q, want auto", got.Theme)
			}
			if got.Filters == nil || len(got.Filters) != 0 {
				t.Errorf("filters = %v, want empty map", got.Filters)
			}
		})
	}
}

func TestSavePartialLeavesOtherFields(t *testing.T) {
	for name, store := range map[string]Store{
		"memory": NewMemoryStore(),
		"sql":    setupSQLStore(t),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cs := NewConfigStore(store, nil)

			cs.Save(ctx, WithTheme(ThemeDark))
			cs.Save(ctx, WithFilters(Filters{"category": "Web"}))
			cs.Save(ctx, WithLanguage(locale.EN))

			got := cs.Load(ctx)
			if got.Language != locale.EN {
				t.Errorf("language = %q, want en", got.Language)
			}
			if got.Theme != ThemeDark {
				t.Errorf("theme = %q, want dark", got.Theme)
			}
			if got.Filters["category"] != "Web" || len(got.Filters) != 1 {
				t.Errorf("filters = %v, want {category: Web}", got.Filters)
			}
		})
	}
}

func TestLoadTreatsNullFilterAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, KeyFilters, `{"category":null,"mode":"Independent","tech":""}`)

	got := NewConfigStore(store, nil).Load(ctx)
	if _, ok := got.Filters["category"]; ok {
		t.Error("null category should be absent")
	}
	if _, ok := got.Filters["tech"]; ok {
		t.Error("empty tech should be absent")
	}
	if got.Filters["mode"] != "Independent" {
		t.Errorf("mode = %q, want Independent", got.Filters["mode"])
	}
}

func TestLoadDefaultsUnparseableFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, KeyLanguage, "fr")
	store.Set(ctx, KeyTheme, "auto")
	store.Set(ctx, KeyFilters, `not json`)

	var buf bytes.Buffer
	got := NewConfigStore(store, quietLogger(&buf)).Load(ctx)
	if got.Language != locale.ES || got.Theme != ThemeAuto || len(got.Filters) != 0 {
		t.Errorf("Load() = %+v, want defaults", got)
	}
	if !strings.Contains(buf.String(), "unparseable filters") {
		t.Errorf("expected filter parse failure to be logged, got %q", buf.String())
	}
}

func TestSaveSwallowsStorageFailure(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	cs := NewConfigStore(failingStore{}, quietLogger(&buf))

	lang, mode := locale.EN, ThemeLight
	cs.Save(ctx, Partial{Language: &lang, Theme: &mode, Filters: Filters{"tech": "Go"}})
	if got := strings.Count(buf.String(), "quota exceeded"); got != 3 {
		t.Errorf("logged %d failures, want 3:\n%s", got, buf.String())
	}

	buf.Reset()
	got := cs.Load(ctx)
	if got.Language != locale.ES {
		t.Errorf("language = %q, want default after read failure", got.Language)
	}
}

func TestSaveNeverPersistsAuto(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	var buf bytes.Buffer
	NewConfigStore(store, quietLogger(&buf)).Save(ctx, WithTheme(ThemeAuto))

	if _, ok, _ := store.Get(ctx, KeyTheme); ok {
		t.Error("auto theme must not be written")
	}
}

func TestClearKeepsAccessibilitySettings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cs := NewConfigStore(store, nil)
	store.Set(ctx, KeyAccessibility, `{"fontSize":"large"}`)

	cs.Save(ctx, WithLanguage(locale.EN))
	cs.Save(ctx, WithTheme(ThemeDark))
	cs.Save(ctx, WithFilters(Filters{"mode": "Collaboration"}))
	cs.Clear(ctx)

	if store.Len() != 1 {
		t.Errorf("store has %d keys after Clear, want 1", store.Len())
	}
	if _, ok, _ := store.Get(ctx, KeyAccessibility); !ok {
		t.Error("accessibility settings were removed")
	}
	if got := cs.Load(ctx); got.Language != locale.ES || got.Theme != ThemeAuto {
		t.Errorf("Load() after Clear = %+v, want defaults", got)
	}
}

func TestSQLStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := setupSQLStore(t)

	if err := store.Set(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get(ctx, KeyTheme)
	if err != nil || !ok || v != "dark" {
		t.Errorf("Get() = %q, %v, %v; want dark, true, nil", v, ok, err)
	}

	if err := store.Delete(ctx, KeyTheme); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, KeyTheme); ok {
		t.Error("key still present after Delete")
	}
}

func TestPartialApply(t *testing.T) {
	base := Defaults()
	got := WithFilters(nil).Apply(WithLanguage(locale.EN).Apply(base))
	if got.Language != locale.EN || got.Theme != ThemeAuto {
		t.Errorf("Apply() = %+v", got)
	}
	if got.Filters == nil {
		t.Error("WithFilters(nil) should write an empty set, not leave it absent")
	}
}
