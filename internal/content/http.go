package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ziadkadry99/folio/internal/catalog"
	"github.com/ziadkadry99/folio/internal/locale"
)

// maxResourceSize bounds a single remote resource.
const maxResourceSize = 4 << 20

// HTTPSource fetches resources from a running folio server (or any static
// host using the same layout) under base.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource creates a source for base, e.g. "https://example.com/content".
func NewHTTPSource(base string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing content URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing content URL: unsupported scheme %q", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{base: u, client: client}, nil
}

func (s *HTTPSource) Translations(ctx context.Context, lang locale.Locale) (map[string]string, error) {
	data, err := s.fetch(ctx, TranslationsPath, lang)
	if err != nil {
		return nil, err
	}
	return DecodeTranslations(data)
}

func (s *HTTPSource) Projects(ctx context.Context, lang locale.Locale) ([]catalog.Project, error) {
	data, err := s.fetch(ctx, ProjectsPath, lang)
	if err != nil {
		return nil, err
	}
	return catalog.DecodeProjects(data)
}

func (s *HTTPSource) fetch(ctx context.Context, pathFor func(locale.Locale) string, lang locale.Locale) ([]byte, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, lang)
	}
	target := s.base.JoinPath(pathFor(lang)).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", target, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return data, nil
}
