package config

import "time"

// Config is the top-level folio configuration, corresponding to .folio.yml.
type Config struct {
	Port            int            `yaml:"port" koanf:"port"`
	DataDir         string         `yaml:"data_dir" koanf:"data_dir"`
	ContentDir      string         `yaml:"content_dir" koanf:"content_dir"`
	AllowAllOrigins bool           `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Contact         ContactConfig  `yaml:"contact" koanf:"contact"`
	LazyLoad        LazyLoadConfig `yaml:"lazy_load" koanf:"lazy_load"`
}

// ContactConfig holds contact form settings. An empty Endpoint stores
// messages in the local database.
type ContactConfig struct {
	Endpoint   string        `yaml:"endpoint" koanf:"endpoint"`
	Timeout    time.Duration `yaml:"timeout" koanf:"timeout"`
	MessageTTL time.Duration `yaml:"message_ttl" koanf:"message_ttl"`
}

// LazyLoadConfig tunes when project images start loading.
type LazyLoadConfig struct {
	RootMargin string  `yaml:"root_margin" koanf:"root_margin"`
	Threshold  float64 `yaml:"threshold" koanf:"threshold"`
}

// DefaultPath is where init writes the configuration.
const DefaultPath = ".folio.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:    8080,
		DataDir: ".folio",
		Contact: ContactConfig{
			Timeout:    10 * time.Second,
			MessageTTL: 5 * time.Second,
		},
		LazyLoad: LazyLoadConfig{
			RootMargin: "50px",
			Threshold:  0.1,
		},
	}
}
