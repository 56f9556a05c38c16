package catalog

import (
	"maps"

	"github.com/ziadkadry99/folio/internal/locale"
)

// Labels holds the display text the catalog needs for one language.
type Labels struct {
	Locale     locale.Locale
	Categories map[ID]string
	Modes      map[ID]string
	Links      map[string]string

	Loading string
	Failed  string
	Empty   string
}

var labelTables = map[locale.Locale]Labels{
	locale.ES: {
		Categories: map[ID]string{
			CategoryWeb:        "Web",
			CategoryMobile:     "Móvil",
			CategoryParticular: "Particular",
		},
		Modes: map[ID]string{
			ModeIndependent:   "Independiente",
			ModeCollaboration: "Colaboración",
		},
		Links: map[string]string{
			"demo":         "Demo",
			"code":         "Código",
			"site":         "Sitio web",
			"contribution": "Mi contribución",
		},
		Loading: "Cargando proyectos...",
		Failed:  "No se pudieron cargar los proyectos. Inténtalo de nuevo más tarde.",
		Empty:   "No hay proyectos que coincidan con los filtros seleccionados.",
	},
	locale.EN: {
		Categories: map[ID]string{
			CategoryWeb:        "Web",
			CategoryMobile:     "Mobile",
			CategoryParticular: "Personal",
		},
		Modes: map[ID]string{
			ModeIndependent:   "Independent",
			ModeCollaboration: "Collaboration",
		},
		Links: map[string]string{
			"demo":         "Demo",
			"code":         "Code",
			"site":         "Website",
			"contribution": "My contribution",
		},
		Loading: "Loading projects...",
		Failed:  "Could not load projects. Please try again later.",
		Empty:   "No projects match the selected filters.",
	},
}

// LabelsFor builds the label tables for lang. Unsupported locales get the
// default locale's tables.
func LabelsFor(lang locale.Locale) Labels {
	base, ok := labelTables[lang]
	if !ok {
		lang = locale.Default
		base = labelTables[lang]
	}
	return Labels{
		Locale:     lang,
		Categories: maps.Clone(base.Categories),
		Modes:      maps.Clone(base.Modes),
		Links:      maps.Clone(base.Links),
		Loading:    base.Loading,
		Failed:     base.Failed,
		Empty:      base.Empty,
	}
}

// Category returns the display text for a category name, or the raw id.
func (l Labels) Category(id ID) string {
	if s, ok := l.Categories[id]; ok {
		return s
	}
	return string(id)
}

// Mode returns the display text for a mode name, or the raw id.
func (l Labels) Mode(id ID) string {
	if s, ok := l.Modes[id]; ok {
		return s
	}
	return string(id)
}

// Link returns the display text for a link kind.
func (l Labels) Link(kind string) string {
	if s, ok := l.Links[kind]; ok {
		return s
	}
	return kind
}
