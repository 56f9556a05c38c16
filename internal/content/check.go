package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/ziadkadry99/folio/internal/catalog"
	"github.com/ziadkadry99/folio/internal/locale"
)

// Severity of a content issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a problem found in the content tree.
type Issue struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// Report is the result of Check.
type Report struct {
	Inventory Inventory `json:"inventory"`
	Issues    []Issue   `json:"issues"`
}

// Errors returns the number of error-severity issues.
func (r Report) Errors() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Progress receives per-resource progress from Check.
type Progress interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

var knownCategories = map[catalog.ID]bool{
	catalog.CategoryWeb: true, catalog.CategoryMobile: true, catalog.CategoryParticular: true,
}

var knownModes = map[catalog.ID]bool{
	catalog.ModeIndependent: true, catalog.ModeCollaboration: true,
}

// Check validates a content tree: every supported language must have both
// resources, every resource must parse, translation keys must match the
// default language's, category and mode ids must be known, and local images
// must exist.
func Check(ctx context.Context, fsys fs.FS, progress Progress) (Report, error) {
	inv, err := Discover(fsys)
	if err != nil {
		return Report{}, err
	}
	report := Report{Inventory: inv}
	add := func(sev Severity, p, format string, args ...any) {
		report.Issues = append(report.Issues, Issue{Severity: sev, Path: p, Message: fmt.Sprintf(format, args...)})
	}

	for _, lang := range locale.Supported() {
		if !inv.Has(KindTranslations, lang) {
			add(SeverityError, TranslationsPath(lang), "missing translations for %s", lang)
		}
		if !inv.Has(KindProjects, lang) {
			add(SeverityError, ProjectsPath(lang), "missing projects for %s", lang)
		}
	}
	for _, p := range inv.Unknown {
		add(SeverityWarning, p, "not a recognised resource")
	}

	var reference map[string]string
	if data, err := fs.ReadFile(fsys, TranslationsPath(locale.Default)); err == nil {
		reference, _ = DecodeTranslations(data)
	}

	progress.Start(len(inv.Resources))
	defer progress.Finish()

	for i, r := range inv.Resources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		progress.Update(i+1, r.Path)

		data, err := fs.ReadFile(fsys, r.Path)
		if err != nil {
			add(SeverityError, r.Path, "reading: %v", err)
			continue
		}

		switch r.Kind {
		case KindTranslations:
			texts, err := DecodeTranslations(data)
			if err != nil {
				add(SeverityError, r.Path, "%v", err)
				continue
			}
			if r.Locale == locale.Default || reference == nil {
				continue
			}
			if missing := missingKeys(reference, texts); len(missing) > 0 {
				add(SeverityWarning, r.Path, "missing keys: %s", strings.Join(missing, ", "))
			}
			if extra := missingKeys(texts, reference); len(extra) > 0 {
				add(SeverityWarning, r.Path, "keys not in %s: %s", locale.Default, strings.Join(extra, ", "))
			}

		case KindProjects:
			projects, err := catalog.DecodeProjects(data)
			if err != nil {
				add(SeverityError, r.Path, "%v", err)
				continue
			}
			for j, p := range projects {
				where := fmt.Sprintf("project %d (%q)", j, p.Title)
				if strings.TrimSpace(p.Title) == "" {
					add(SeverityError, r.Path, "project %d has no title", j)
				}
				if !knownCategories[p.CategoryName()] {
					add(SeverityWarning, r.Path, "%s: unknown category %q", where, p.Category)
				}
				if !knownModes[p.ModeName()] {
					add(SeverityWarning, r.Path, "%s: unknown mode %q", where, p.Mode)
				}
				if img, ok := p.Image(); ok && isLocal(img) {
					if _, err := fs.Stat(fsys, path.Clean(strings.TrimPrefix(img, "/"))); err != nil {
						add(SeverityWarning, r.Path, "%s: image %s not found", where, img)
					}
				}
			}
		}
	}
	return report, nil
}

func missingKeys(want, have map[string]string) []string {
	var out []string
	for k := range want {
		if _, ok := have[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func isLocal(ref string) bool {
	return !strings.Contains(ref, "://") && !strings.HasPrefix(ref, "//") && !strings.HasPrefix(ref, "data:")
}
