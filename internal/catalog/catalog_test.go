package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/ziadkadry99/folio/internal/generation"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
	"github.com/ziadkadry99/folio/internal/ui/uitest"
)

var sampleES = []Project{
	{Title: "Tienda", Category: "Web", Mode: "Independent", Tech: []string{"Go", "HTML"}, Media: "img/tienda.png", Demo: "https://demo.example", Code: "#"},
	{Title: "Rutas", Category: "Mobile", Mode: "Collaboration", Tech: []string{"Kotlin"}, Media: "#"},
	{Title: "Notas", Category: "3", Mode: "1", Tech: []string{"Go"}, Media: "img/notas.mp4"},
}

var sampleEN = []Project{
	{Title: "Shop", Category: "Web", Mode: "Independent", Tech: []string{"Go", "HTML"}, Media: "img/shop.webp"},
	{Title: "Routes", Category: "Mobile", Mode: "Collaboration", Tech: []string{"Kotlin"}},
}

type fakeSource struct {
	mu    sync.Mutex
	data  map[locale.Locale][]Project
	fail  map[locale.Locale]error
	gates map[locale.Locale]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		data:  map[locale.Locale][]Project{locale.ES: sampleES, locale.EN: sampleEN},
		fail:  map[locale.Locale]error{},
		gates: map[locale.Locale]chan struct{}{},
	}
}

func (s *fakeSource) gate(lang locale.Locale) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[lang] = ch
	return ch
}

func (s *fakeSource) Projects(ctx context.Context, lang locale.Locale) ([]Project, error) {
	s.mu.Lock()
	gate := s.gates[lang]
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[lang]; err != nil {
		return nil, err
	}
	return s.data[lang], nil
}

type fixture struct {
	loader  *Loader
	source  *fakeSource
	rec     *uitest.Recorder
	watcher *ui.ManualWatcher
	store   *preferences.MemoryStore
}

func setupLoader(t *testing.T, filters preferences.Filters) *fixture {
	t.Helper()
	f := &fixture{
		source:  newFakeSource(),
		rec:     uitest.New(),
		watcher: ui.NewManualWatcher(),
		store:   preferences.NewMemoryStore(),
	}
	f.loader = NewLoader(f.source, f.rec, f.rec, f.watcher,
		preferences.NewConfigStore(f.store, nil), locale.ES, filters, Options{})
	t.Cleanup(f.loader.Destroy)
	return f
}

func titles(projects []Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.Title
	}
	return out
}

func TestFilterIdentity(t *testing.T) {
	got := Filter(sampleES, preferences.Filters{})
	if !reflect.DeepEqual(titles(got), titles(sampleES)) {
		t.Errorf("Filter with no filters = %v", titles(got))
	}
	got = Filter(sampleES, nil)
	if len(got) != len(sampleES) {
		t.Errorf("Filter with nil filters returned %d projects", len(got))
	}
}

func TestFilterExample(t *testing.T) {
	dataset := []Project{{Title: "A", Category: "Web"}, {Title: "B", Category: "Mobile"}}
	got := Filter(dataset, preferences.Filters{"category": "Mobile"})
	if !reflect.DeepEqual(titles(got), []string{"B"}) {
		t.Errorf("Filter(category=Mobile) = %v, want [B]", titles(got))
	}
	got = Filter(dataset, preferences.Filters{"category": "Web"})
	if !reflect.DeepEqual(titles(got), []string{"A"}) {
		t.Errorf("Filter(category=Web) = %v, want [A]", titles(got))
	}
}

func TestFilterConjunctionAndSequences(t *testing.T) {
	tests := []struct {
		name    string
		filters preferences.Filters
		want    []string
	}{
		{"tech contains", preferences.Filters{"tech": "Go"}, []string{"Tienda", "Notas"}},
		{"conjunction", preferences.Filters{"tech": "Go", "category": "Web"}, []string{"Tienda"}},
		{"numeric category id", preferences.Filters{"category": "Particular"}, []string{"Notas"}},
		{"raw numeric id", preferences.Filters{"mode": "1"}, []string{"Notas"}},
		{"no match", preferences.Filters{"tech": "Rust"}, []string{}},
		{"unknown key", preferences.Filters{"colour": "red"}, []string{}},
		{"empty value is unconstrained", preferences.Filters{"mode": ""}, []string{"Tienda", "Rutas", "Notas"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(Filter(sampleES, tt.filters))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%v) = %v, want %v", tt.filters, got, tt.want)
			}
		})
	}
}

func TestToggleTwiceClears(t *testing.T) {
	f := Toggle(nil, "category", "Web")
	if f["category"] != "Web" {
		t.Fatalf("Toggle set %v", f)
	}
	f = Toggle(f, "category", "Mobile")
	if f["category"] != "Mobile" {
		t.Fatalf("different value should replace, got %v", f)
	}
	f = Toggle(f, "category", "Mobile")
	if _, ok := f["category"]; ok {
		t.Errorf("same value should clear, got %v", f)
	}
}

// The recorder stands in for the page wherever a View is wanted.
var _ View = (*uitest.Recorder)(nil)

func TestRenderEmptyIsDistinct(t *testing.T) {
	var v Rendered = Render(sampleES, preferences.Filters{"tech": "Rust"}, LabelsFor(locale.ES))
	if !v.Empty || len(v.Cards) != 0 {
		t.Errorf("Render = %+v, want Empty", v)
	}
}

func TestRenderLabelsAndLinks(t *testing.T) {
	v := Render(sampleES, nil, LabelsFor(locale.EN))
	if len(v.Cards) != 3 {
		t.Fatalf("got %d cards", len(v.Cards))
	}
	first := v.Cards[0]
	if first.Image != "img/tienda.png" {
		t.Errorf("image = %q", first.Image)
	}
	if len(first.Links) != 1 || first.Links[0].Kind != "demo" {
		t.Errorf("links = %+v, want only demo", first.Links)
	}
	if v.Cards[1].HasImage() {
		t.Error("a '#' media link must render a placeholder")
	}
	if v.Cards[2].HasImage() {
		t.Error("non-image media must render a placeholder")
	}
	if v.Cards[2].Category != "Personal" || v.Cards[2].Mode != "Independent" {
		t.Errorf("numeric ids rendered as %q/%q", v.Cards[2].Category, v.Cards[2].Mode)
	}

	unknown := Render([]Project{{Title: "X", Category: "Games", Mode: "7"}}, nil, LabelsFor(locale.ES))
	if c := unknown.Cards[0]; c.Category != "Games" || c.Mode != "7" {
		t.Errorf("unmapped ids rendered as %q/%q, want raw", c.Category, c.Mode)
	}
}

func TestDecodeProjectsAcceptsNumericIDs(t *testing.T) {
	data := []byte(`[{"title":"A","category":1,"mode":"Collaboration","tech":["Go"]},{"title":"B","category":null}]`)
	projects, err := DecodeProjects(data)
	if err != nil {
		t.Fatalf("DecodeProjects: %v", err)
	}
	if projects[0].Category != "1" || projects[0].CategoryName() != CategoryWeb {
		t.Errorf("category = %q (%q)", projects[0].Category, projects[0].CategoryName())
	}
	if projects[1].Category != "" {
		t.Errorf("null category decoded as %q", projects[1].Category)
	}
	if _, err := DecodeProjects([]byte(`{"title":"A"}`)); err == nil {
		t.Error("expected an error for a non-array resource")
	}
	var id ID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Error("expected an error for a boolean id")
	}
}

func TestLoadProjectsRendersWithRestoredFilters(t *testing.T) {
	f := setupLoader(t, preferences.Filters{"category": "Mobile"})
	if err := f.loader.LoadProjects(context.Background(), locale.ES); err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	if got := f.rec.Titles(); !reflect.DeepEqual(got, []string{"Rutas"}) {
		t.Errorf("rendered %v, want [Rutas]", got)
	}
	if _, shown := f.rec.Message(ui.RegionProjects); shown {
		t.Error("loading message should be cleared after success")
	}
}

func TestLoadFailureKeepsDataset(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()
	if err := f.loader.LoadProjects(ctx, locale.ES); err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}

	f.source.fail[locale.EN] = errors.New("503")
	if err := f.loader.ChangeLanguage(ctx, locale.EN); err == nil {
		t.Fatal("expected an error")
	}
	if f.loader.Locale() != locale.ES || len(f.loader.Projects()) != len(sampleES) {
		t.Error("failed load must leave the previous dataset in place")
	}
	msg, ok := f.rec.Message(ui.RegionProjects)
	if !ok || msg.Kind != ui.KindError || msg.Text != LabelsFor(locale.EN).Failed {
		t.Errorf("message = %+v, want the English error", msg)
	}
}

func TestToggleFilterPersistsAndRenders(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()
	f.loader.Bind()
	if err := f.loader.LoadProjects(ctx, locale.ES); err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}

	f.rec.Click(ctx, SelectorFilterButton, map[string]string{"filterKey": "tech", "filterValue": "Go"})
	if got := f.rec.Titles(); !reflect.DeepEqual(got, []string{"Tienda", "Notas"}) {
		t.Errorf("rendered %v", got)
	}
	stored, _, _ := f.store.Get(ctx, preferences.KeyFilters)
	if stored != `{"tech":"Go"}` {
		t.Errorf("stored filters = %s", stored)
	}

	f.rec.Click(ctx, SelectorFilterButton, map[string]string{"filterKey": "tech", "filterValue": "Rust"})
	if f.rec.Empty() != LabelsFor(locale.ES).Empty {
		t.Errorf("empty result should render the no-projects state, got %q", f.rec.Empty())
	}

	f.rec.Click(ctx, SelectorClearFilters, nil)
	if len(f.rec.Titles()) != len(sampleES) {
		t.Errorf("clear should show everything, got %v", f.rec.Titles())
	}
	if stored, _, _ := f.store.Get(ctx, preferences.KeyFilters); stored != `{}` {
		t.Errorf("stored filters after clear = %s", stored)
	}
}

func TestChangeLanguageKeepsFilters(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()
	f.loader.LoadProjects(ctx, locale.ES)
	f.loader.ToggleFilter(ctx, "category", "Web")

	if err := f.loader.ChangeLanguage(ctx, locale.EN); err != nil {
		t.Fatalf("ChangeLanguage: %v", err)
	}
	if got := f.rec.Titles(); !reflect.DeepEqual(got, []string{"Shop"}) {
		t.Errorf("rendered %v, want [Shop]", got)
	}
	if f.loader.Filters()["category"] != "Web" {
		t.Error("filters must survive a language change")
	}
}

func TestBackToBackSwitchesLastWins(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()

	gate := f.source.gate(locale.ES)
	slow := make(chan error, 1)
	go func() { slow <- f.loader.ChangeLanguage(ctx, locale.ES) }()
	for f.loader.gen.Latest() == 0 {
		runtime.Gosched()
	}

	if err := f.loader.ChangeLanguage(ctx, locale.EN); err != nil {
		t.Fatalf("ChangeLanguage(en): %v", err)
	}
	close(gate)
	if err := <-slow; !errors.Is(err, generation.ErrStale) {
		t.Errorf("slow switch error = %v, want ErrStale", err)
	}

	f.loader.ToggleFilter(ctx, "tech", "Go")
	if got := titles(f.loader.Projects()); !reflect.DeepEqual(got, titles(sampleEN)) {
		t.Errorf("dataset = %v, want the English one", got)
	}
	if got := f.rec.Titles(); !reflect.DeepEqual(got, []string{"Shop"}) {
		t.Errorf("rendered %v, want [Shop]", got)
	}
}

func TestLazyImagesAreOneShot(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()
	f.loader.LoadProjects(ctx, locale.ES)

	cards := f.rec.Cards()
	if f.watcher.Pending() != 1 {
		t.Fatalf("observing %d cards, want only the one with an image", f.watcher.Pending())
	}
	id := cards[0].ID
	if _, set := f.rec.Image(id); set {
		t.Fatal("image source assigned before the card was visible")
	}

	f.watcher.Reveal(id)
	if src, _ := f.rec.Image(id); src != "img/tienda.png" {
		t.Errorf("image source = %q", src)
	}
	if f.watcher.Observed(id) {
		t.Error("card still observed after it was revealed")
	}
	f.watcher.Reveal(id)
	if n := f.rec.Count("set_image"); n != 1 {
		t.Errorf("set_image called %d times, want 1", n)
	}
}

func TestRerenderDropsPendingImages(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()
	f.loader.LoadProjects(ctx, locale.ES)
	old := f.rec.Cards()[0].ID

	f.loader.ToggleFilter(ctx, "category", "Web")
	if f.watcher.Observed(old) {
		t.Error("card from the previous render is still observed")
	}
	if newID := f.rec.Cards()[0].ID; newID == old || !f.watcher.Observed(newID) {
		t.Errorf("new card id %q should be fresh and observed", newID)
	}
}

func TestDestroyDetaches(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()
	f.loader.Bind()
	f.loader.LoadProjects(ctx, locale.ES)
	id := f.rec.Cards()[0].ID

	f.loader.Destroy()
	f.loader.Destroy()

	if f.rec.Bound(SelectorFilterButton) != 0 || f.rec.Bound(SelectorClearFilters) != 0 {
		t.Error("bindings survive Destroy")
	}
	if f.watcher.Pending() != 0 {
		t.Error("images still observed after Destroy")
	}
	f.watcher.Observe(id, ui.DefaultWatchOptions)
	f.watcher.Reveal(id)
	if _, set := f.rec.Image(id); set {
		t.Error("visibility callback still subscribed after Destroy")
	}
	if err := f.loader.LoadProjects(ctx, locale.EN); !errors.Is(err, ErrDestroyed) {
		t.Errorf("LoadProjects after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestTagsFollowRequestOrder(t *testing.T) {
	f := setupLoader(t, nil)
	ctx := context.Background()

	first, err := f.loader.StartLoad(locale.EN)
	if err != nil {
		t.Fatalf("StartLoad(en): %v", err)
	}
	second, err := f.loader.StartLoad(locale.ES)
	if err != nil {
		t.Fatalf("StartLoad(es): %v", err)
	}

	// The later request finishes first; the earlier one must not undo it.
	if err := f.loader.FinishLoad(ctx, locale.ES, second); err != nil {
		t.Fatalf("FinishLoad(es): %v", err)
	}
	if err := f.loader.FinishLoad(ctx, locale.EN, first); !errors.Is(err, generation.ErrStale) {
		t.Errorf("FinishLoad(en) = %v, want ErrStale", err)
	}
	if f.loader.Locale() != locale.ES {
		t.Errorf("locale = %s, want es", f.loader.Locale())
	}
	if got := titles(f.loader.Projects()); !reflect.DeepEqual(got, titles(sampleES)) {
		t.Errorf("dataset = %v, want the Spanish one", got)
	}

	f.loader.Destroy()
	if _, err := f.loader.StartLoad(locale.EN); !errors.Is(err, ErrDestroyed) {
		t.Errorf("StartLoad after Destroy = %v, want ErrDestroyed", err)
	}
}
