package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
)

// detectContentDir returns a content directory in the working directory
// that already holds folio resources, if any.
func detectContentDir() string {
	for _, dir := range []string{"content", "site/content", "data"} {
		if _, err := os.Stat(dir + "/i18n"); err == nil {
			return dir
		}
	}
	return ""
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to folio! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	contentDir := detectContentDir()
	if contentDir != "" {
		fmt.Printf("Detected content directory: %s\n\n", contentDir)
	}

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:    "Port to listen on",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 2. Content source.
	sourcePrompt := promptui.Select{
		Label: "Where does the site content come from?",
		Items: []string{
			"bundled  - the sample content shipped with folio",
			"directory - i18n/ and projects/ JSON files on disk",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content source: %w", err)
	}
	if sourceIdx == 1 {
		dirPrompt := promptui.Prompt{
			Label:   "Content directory",
			Default: contentDir,
			Validate: func(s string) error {
				if info, err := os.Stat(s); err != nil || !info.IsDir() {
					return fmt.Errorf("%s is not a directory", s)
				}
				return nil
			},
		}
		cfg.ContentDir, err = dirPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("content dir: %w", err)
		}
	}

	// 3. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Directory for the preferences and messages database",
		Default: cfg.DataDir,
	}
	cfg.DataDir, err = dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 4. Contact delivery.
	endpointPrompt := promptui.Prompt{
		Label:   "Contact form endpoint (leave blank to store messages locally)",
		Default: "",
	}
	cfg.Contact.Endpoint, err = endpointPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("contact endpoint: %w", err)
	}

	// 5. Message duration.
	ttlPrompt := promptui.Prompt{
		Label:   "How long contact form messages stay visible",
		Default: cfg.Contact.MessageTTL.String(),
		Validate: func(s string) error {
			d, err := time.ParseDuration(s)
			if err != nil || d <= 0 {
				return fmt.Errorf("enter a positive duration such as 5s")
			}
			return nil
		},
	}
	ttlStr, err := ttlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("message duration: %w", err)
	}
	cfg.Contact.MessageTTL, _ = time.ParseDuration(ttlStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}
