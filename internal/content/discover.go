package content

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/folio/internal/locale"
)

// Resource is one discovered per-language resource file.
type Resource struct {
	Kind   string        `json:"kind"`
	Locale locale.Locale `json:"locale"`
	Path   string        `json:"path"`
}

// Inventory lists the resources found in a content tree.
type Inventory struct {
	Resources []Resource `json:"resources"`
	// Unknown holds JSON files outside the i18n/ and projects/ layout or
	// named after an unsupported language.
	Unknown []string `json:"unknown,omitempty"`
}

// Has reports whether a resource of kind exists for lang.
func (inv Inventory) Has(kind string, lang locale.Locale) bool {
	for _, r := range inv.Resources {
		if r.Kind == kind && r.Locale == lang {
			return true
		}
	}
	return false
}

// Discover walks fsys for JSON resources.
func Discover(fsys fs.FS) (Inventory, error) {
	matches, err := doublestar.Glob(fsys, "**/*.json")
	if err != nil {
		return Inventory{}, fmt.Errorf("discovering content: %w", err)
	}
	sort.Strings(matches)

	var inv Inventory
	for _, m := range matches {
		if r, ok := classify(m); ok {
			inv.Resources = append(inv.Resources, r)
		} else {
			inv.Unknown = append(inv.Unknown, m)
		}
	}
	return inv, nil
}

func classify(p string) (Resource, bool) {
	dir, file := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	if dir != KindTranslations && dir != KindProjects {
		return Resource{}, false
	}
	lang, ok := locale.Parse(strings.TrimSuffix(file, ".json"))
	if !ok {
		return Resource{}, false
	}
	return Resource{Kind: dir, Locale: lang, Path: p}, true
}
