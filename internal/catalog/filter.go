package catalog

import (
	"slices"
	"strconv"

	"github.com/ziadkadry99/folio/internal/preferences"
	"github.com/ziadkadry99/folio/internal/ui"
)

// Filter returns the projects matching every active filter, in dataset
// order. A project matches a (key, value) pair when its field equals value
// or, for list fields, contains it. Keys that name no field match nothing.
func Filter(projects []Project, filters preferences.Filters) []Project {
	if len(filters) == 0 {
		return slices.Clone(projects)
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if matches(p, filters) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Project, filters preferences.Filters) bool {
	for key, want := range filters {
		if want == "" {
			continue
		}
		values, ok := p.values(key)
		if !ok || !slices.Contains(values, want) {
			return false
		}
	}
	return true
}

// Toggle returns a copy of filters after selecting value for key: selecting
// the active value clears the key, anything else replaces it.
func Toggle(filters preferences.Filters, key, value string) preferences.Filters {
	out := filters.Clone()
	if key == "" {
		return out
	}
	if value == "" || out[key] == value {
		delete(out, key)
		return out
	}
	out[key] = value
	return out
}

// Rendered is the rendered state of the catalog. Empty is set instead of
// returning an empty card list.
type Rendered struct {
	Cards []ui.Card
	Empty bool
}

// Render filters projects and turns the result into display cards. Card ids
// are the position in the result; callers that render repeatedly should
// make them unique.
func Render(projects []Project, filters preferences.Filters, labels Labels) Rendered {
	matched := Filter(projects, filters)
	if len(matched) == 0 {
		return Rendered{Empty: true}
	}

	cards := make([]ui.Card, len(matched))
	for i, p := range matched {
		card := ui.Card{
			ID:          strconv.Itoa(i),
			Title:       p.Title,
			Description: p.Description,
			Tech:        slices.Clone(p.Tech),
			Category:    labels.Category(p.CategoryName()),
			Mode:        labels.Mode(p.ModeName()),
		}
		if src, ok := p.Image(); ok {
			card.Image = src
		}
		for _, link := range []struct{ kind, url string }{
			{"demo", p.Demo},
			{"code", p.Code},
			{"site", p.Site},
			{"contribution", p.Contribution},
		} {
			if present(link.url) {
				card.Links = append(card.Links, ui.Link{Kind: link.kind, Label: labels.Link(link.kind), URL: link.url})
			}
		}
		cards[i] = card
	}
	return Rendered{Cards: cards}
}
