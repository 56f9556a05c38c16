// Package content serves the per-language translation and project resources
// from a directory, the embedded defaults, or a remote site.
package content

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ziadkadry99/folio/internal/catalog"
	"github.com/ziadkadry99/folio/internal/locale"
)

//go:embed data
var embedded embed.FS

// ErrUnsupportedLocale is returned for a language outside locale.Supported.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Resource kinds.
const (
	KindTranslations = "i18n"
	KindProjects     = "projects"
)

// TranslationsPath is the resource path of lang's translation map.
func TranslationsPath(lang locale.Locale) string {
	return KindTranslations + "/" + string(lang) + ".json"
}

// ProjectsPath is the resource path of lang's project list.
func ProjectsPath(lang locale.Locale) string {
	return KindProjects + "/" + string(lang) + ".json"
}

// Default returns the content bundled with the binary.
func Default() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Open returns the content rooted at dir, or the bundled content when dir is
// empty.
func Open(dir string) (fs.FS, error) {
	if dir == "" {
		return Default(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening content directory: %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// FSSource reads resources from a file system.
type FSSource struct {
	fsys fs.FS
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// FS returns the underlying file system.
func (s *FSSource) FS() fs.FS { return s.fsys }

func (s *FSSource) Translations(_ context.Context, lang locale.Locale) (map[string]string, error) {
	data, err := s.read(TranslationsPath, lang)
	if err != nil {
		return nil, err
	}
	return DecodeTranslations(data)
}

func (s *FSSource) Projects(_ context.Context, lang locale.Locale) ([]catalog.Project, error) {
	data, err := s.read(ProjectsPath, lang)
	if err != nil {
		return nil, err
	}
	return catalog.DecodeProjects(data)
}

// Raw returns the bytes of the resource at p.
func (s *FSSource) Raw(p string) ([]byte, error) {
	return fs.ReadFile(s.fsys, p)
}

func (s *FSSource) read(pathFor func(locale.Locale) string, lang locale.Locale) ([]byte, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, lang)
	}
	p := pathFor(lang)
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// DecodeTranslations parses a translation resource: a flat JSON object of
// strings.
func DecodeTranslations(data []byte) (map[string]string, error) {
	var texts map[string]string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("decoding translations: %w", err)
	}
	if texts == nil {
		return nil, errors.New("decoding translations: expected a JSON object")
	}
	return texts, nil
}
