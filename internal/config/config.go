package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// envKeys maps FOLIO_* variable suffixes to nested keys. Keys not listed
// are lowercased as-is.
var envKeys = map[string]string{
	"contact_endpoint":      "contact.endpoint",
	"contact_timeout":       "contact.timeout",
	"contact_message_ttl":   "contact.message_ttl",
	"lazy_load_root_margin": "lazy_load.root_margin",
	"lazy_load_threshold":   "lazy_load.threshold",
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FOLIO_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// FOLIO_PORT -> port, FOLIO_CONTACT_ENDPOINT -> contact.endpoint, etc.
	if err := k.Load(env.Provider("FOLIO_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "FOLIO_"))
		if nested, ok := envKeys[key]; ok {
			return nested
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var rootMarginPattern = regexp.MustCompile(`^-?\d+(\.\d+)?(px|%)?$`)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.ContentDir != "" {
		info, err := os.Stat(c.ContentDir)
		if err != nil {
			return fmt.Errorf("content_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("content_dir %s is not a directory", c.ContentDir)
		}
	}

	if c.Contact.Endpoint != "" {
		u, err := url.Parse(c.Contact.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid contact.endpoint %q: must be an http(s) URL", c.Contact.Endpoint)
		}
	}

	if c.Contact.Timeout < 0 {
		return fmt.Errorf("contact.timeout must be non-negative")
	}

	if c.Contact.MessageTTL <= 0 {
		return fmt.Errorf("contact.message_ttl must be positive")
	}

	for _, part := range strings.Fields(c.LazyLoad.RootMargin) {
		if !rootMarginPattern.MatchString(part) {
			return fmt.Errorf("invalid lazy_load.root_margin %q", c.LazyLoad.RootMargin)
		}
	}

	if c.LazyLoad.Threshold < 0 || c.LazyLoad.Threshold > 1 {
		return fmt.Errorf("lazy_load.threshold must be between 0 and 1")
	}

	return nil
}
