// Package catalog maintains the project dataset for the active language, the
// active filter set and the rendered card list.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// ID is a category or mode identifier. Datasets use either names ("Web") or
// numeric ids (1); both decode to their string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

var (
	categoryIDs = map[ID]ID{"1": "Web", "2": "Mobile", "3": "Particular"}
	modeIDs     = map[ID]ID{"1": "Independent", "2": "Collaboration"}
)

// Category names.
const (
	CategoryWeb        ID = "Web"
	CategoryMobile     ID = "Mobile"
	CategoryParticular ID = "Particular"
)

// Mode names.
const (
	ModeIndependent   ID = "Independent"
	ModeCollaboration ID = "Collaboration"
)

// absentLink marks a link field that has no target.
const absentLink = "#"

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true,
}

// Project is one portfolio entry. Projects are never modified after
// decoding.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tech         []string `json:"tech"`
	Category     ID       `json:"category"`
	Mode         ID       `json:"mode"`
	Media        string   `json:"media"`
	Demo         string   `json:"demo"`
	Code         string   `json:"code"`
	Site         string   `json:"site"`
	Contribution string   `json:"contribution"`
}

// CategoryName returns the category with numeric ids resolved to names.
// Unknown ids are returned unchanged.
func (p Project) CategoryName() ID {
	if name, ok := categoryIDs[p.Category]; ok {
		return name
	}
	return p.Category
}

// ModeName is CategoryName for the mode field.
func (p Project) ModeName() ID {
	if name, ok := modeIDs[p.Mode]; ok {
		return name
	}
	return p.Mode
}

// Image returns the media path when it points at an image file.
func (p Project) Image() (string, bool) {
	if !present(p.Media) {
		return "", false
	}
	clean := p.Media
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if !imageExts[strings.ToLower(path.Ext(clean))] {
		return "", false
	}
	return p.Media, true
}

// values returns the project's values for a filter key and whether the key
// names a filterable field.
func (p Project) values(key string) ([]string, bool) {
	switch key {
	case "category":
		return []string{string(p.CategoryName()), string(p.Category)}, true
	case "mode":
		return []string{string(p.ModeName()), string(p.Mode)}, true
	case "tech":
		return p.Tech, true
	case "title":
		return []string{p.Title}, true
	default:
		return nil, false
	}
}

func present(link string) bool {
	link = strings.TrimSpace(link)
	return link != "" && link != absentLink
}

// DecodeProjects parses a project resource: a JSON array of projects.
func DecodeProjects(data []byte) ([]Project, error) {
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decoding projects: %w", err)
	}
	if projects == nil {
		return nil, fmt.Errorf("decoding projects: expected a JSON array")
	}
	return projects, nil
}
