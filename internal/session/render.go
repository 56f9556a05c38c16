package session

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/folio/internal/ui"
)

// blankImage is shown until a lazy image becomes visible.
const blankImage = "data:image/gif;base64,R0lGODlhAQABAAAAACH5BAEKAAEALAAAAAABAAEAAAICTAEAOw=="

const cardsTemplate = `{{range .}}<article class="project-card" id="{{.ID}}">
  <div class="project-media">{{if .Lazy}}<img class="lazy" data-card="{{.ID}}" alt="{{.Title}}" src="{{.Blank}}">{{else}}<div class="project-placeholder" aria-hidden="true"></div>{{end}}</div>
  <h3 class="project-title">{{.Title}}</h3>
  <div class="project-description">{{.Description}}</div>
  <ul class="project-tags"><li class="tag tag-category">{{.Category}}</li><li class="tag tag-mode">{{.Mode}}</li>{{range .Tech}}<li class="tag">{{.}}</li>{{end}}</ul>
  {{- if .Links}}
  <nav class="project-links">{{range .Links}}<a class="link-{{.Kind}}" href="{{.URL}}" target="_blank" rel="noopener">{{.Label}}</a>{{end}}</nav>
  {{- end}}
</article>
{{end}}`

const emptyTemplate = `<p class="no-projects">{{.}}</p>`

type cardView struct {
	ui.Card
	Description template.HTML
	Lazy        bool
	Blank       template.URL
}

// Renderer turns cards into HTML fragments for the browser.
type Renderer struct {
	md        goldmark.Markdown
	cards     *template.Template
	empty     *template.Template
	assetBase string
}

// NewRenderer creates a Renderer. Relative image references are resolved
// against assetBase (e.g. "/content/").
func NewRenderer(assetBase string) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
	)
	return &Renderer{
		md:        md,
		cards:     template.Must(template.New("cards").Parse(cardsTemplate)),
		empty:     template.Must(template.New("empty").Parse(emptyTemplate)),
		assetBase: strings.TrimRight(assetBase, "/") + "/",
	}
}

// Cards renders the card list. Project descriptions are Markdown.
func (r *Renderer) Cards(cards []ui.Card) (string, error) {
	views := make([]cardView, len(cards))
	for i, c := range cards {
		var desc bytes.Buffer
		if err := r.md.Convert([]byte(c.Description), &desc); err != nil {
			return "", fmt.Errorf("rendering description of %q: %w", c.Title, err)
		}
		views[i] = cardView{
			Card:        c,
			Description: template.HTML(desc.String()),
			Lazy:        c.HasImage(),
			Blank:       template.URL(blankImage),
		}
	}
	var buf bytes.Buffer
	if err := r.cards.Execute(&buf, views); err != nil {
		return "", fmt.Errorf("rendering cards: %w", err)
	}
	return buf.String(), nil
}

// Empty renders the "no projects" state.
func (r *Renderer) Empty(text string) string {
	var buf bytes.Buffer
	if err := r.empty.Execute(&buf, text); err != nil {
		return ""
	}
	return buf.String()
}

// ImageURL resolves a project image reference for the browser.
func (r *Renderer) ImageURL(src string) string {
	if strings.Contains(src, "://") || strings.HasPrefix(src, "/") || strings.HasPrefix(src, "data:") {
		return src
	}
	return r.assetBase + strings.TrimPrefix(src, "./")
}
