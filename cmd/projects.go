package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/folio/internal/catalog"
	"github.com/ziadkadry99/folio/internal/content"
	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
)

var (
	projectsLang    string
	projectsToggles []string
	projectsClear   bool
	projectsRemote  string
	projectsVisitor string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the project catalog with the saved filters applied",
	Long: `Loads the project catalog the way the page does and prints the cards that
pass the active filters. --toggle flips a filter (key=value) and --clear
removes all of them; both are saved like clicks on the page.`,
	Example: `  folio projects --lang en
  folio projects --toggle category=Web --toggle mode=Independent
  folio projects --remote https://example.com/content/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		store := preferences.NewConfigStore(preferenceStore(database, projectsVisitor), nil)
		prefs := store.Load(ctx)

		lang := prefs.Language
		if projectsLang != "" {
			l, ok := locale.Match(projectsLang)
			if !ok {
				return fmt.Errorf("unsupported language %q", projectsLang)
			}
			lang = l
		}

		var source catalog.Source
		if projectsRemote != "" {
			remote, err := content.NewHTTPSource(projectsRemote, &http.Client{Timeout: cfg.Contact.Timeout})
			if err != nil {
				return err
			}
			source = remote
		} else {
			fsys, err := openContent(cfg, "")
			if err != nil {
				return err
			}
			source = content.NewFSSource(fsys)
		}

		view := newTerminalView()
		watcher := ui.NewManualWatcher()
		loader := catalog.NewLoader(source, view, nil, watcher, store, lang, prefs.Filters, catalog.Options{
			Watch: ui.WatchOptions{RootMargin: cfg.LazyLoad.RootMargin, Threshold: cfg.LazyLoad.Threshold},
		})
		defer loader.Destroy()

		if err := loader.LoadProjects(ctx, lang); err != nil {
			return err
		}
		if projectsClear {
			if err := loader.ClearFilters(ctx); err != nil {
				return err
			}
		}
		for _, t := range projectsToggles {
			key, value, err := parseToggle(t)
			if err != nil {
				return err
			}
			if err := loader.ToggleFilter(ctx, key, value); err != nil {
				return err
			}
		}

		// Everything printed counts as seen.
		watcher.RevealAll()

		view.Print(os.Stdout, loader.Locale(), loader.Filters())
		return nil
	},
}

func init() {
	projectsCmd.Flags().StringVar(&projectsLang, "lang", "", "language to list (es, en; defaults to the saved one)")
	projectsCmd.Flags().StringArrayVar(&projectsToggles, "toggle", nil, "toggle a filter, as key=value (repeatable)")
	projectsCmd.Flags().BoolVar(&projectsClear, "clear", false, "clear all filters before applying --toggle")
	projectsCmd.Flags().StringVar(&projectsRemote, "remote", "", "base URL to fetch content from instead of the local content")
	projectsCmd.Flags().StringVar(&projectsVisitor, "visitor", "", "use a site visitor's saved preferences")
	rootCmd.AddCommand(projectsCmd)
}

// terminalView keeps the latest catalog render for printing.
type terminalView struct {
	mu      sync.Mutex
	cards   []ui.Card
	empty   string
	message *ui.Message
	images  map[string]string
}

func newTerminalView() *terminalView {
	return &terminalView{images: make(map[string]string)}
}

func (v *terminalView) RenderList(cards []ui.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards, v.empty = cards, ""
	v.images = make(map[string]string)
}

func (v *terminalView) RenderEmpty(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards, v.empty = nil, text
}

func (v *terminalView) ShowMessage(m ui.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = &m
}

func (v *terminalView) ClearMessage(ui.Region) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = nil
}

func (v *terminalView) SetImageSource(id, src string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.images[id] = src
}

func (v *terminalView) ShowFilters(preferences.Filters) {}

// Print writes the current render to w.
func (v *terminalView) Print(w io.Writer, lang locale.Locale, filters preferences.Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.message != nil {
		fmt.Fprintf(w, "%s\n\n", v.message.Text)
	}
	if len(filters) > 0 {
		parts := make([]string, 0, len(filters))
		for _, k := range filters.Keys() {
			parts = append(parts, k+"="+filters[k])
		}
		fmt.Fprintf(w, "Filters: %s\n\n", strings.Join(parts, ", "))
	}
	if v.empty != "" {
		fmt.Fprintln(w, v.empty)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range v.cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Title, c.Category, c.Mode, strings.Join(c.Tech, ", "))
		if src, ok := v.images[c.ID]; ok {
			fmt.Fprintf(tw, "\t%s\t\t\n", src)
		}
		for _, l := range c.Links {
			fmt.Fprintf(tw, "\t%s: %s\t\t\n", l.Label, l.URL)
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d project(s), %s\n", len(v.cards), lang)
}
