package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/folio/internal/locale"
	"github.com/ziadkadry99/folio/internal/preferences"
)

var prefsVisitor string

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Inspect or change saved preferences",
	Long:  `Reads and writes the saved language, theme and filters. Without --visitor the command line's own preferences are used.`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved preferences as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeDB, err := openConfigStore()
		if err != nil {
			return err
		}
		defer closeDB()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(store.Load(cmd.Context()))
	},
}

var prefsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved language, theme and filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeDB, err := openConfigStore()
		if err != nil {
			return err
		}
		defer closeDB()

		store.Clear(cmd.Context())
		fmt.Fprintln(os.Stderr, "Preferences cleared.")
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <language|theme|filters> <value>",
	Short: "Save one preference",
	Example: `  folio prefs set language en
  folio prefs set theme dark
  folio prefs set filters '{"category":"Web"}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		partial, err := parsePreference(args[0], args[1])
		if err != nil {
			return err
		}

		store, closeDB, err := openConfigStore()
		if err != nil {
			return err
		}
		defer closeDB()

		store.Save(cmd.Context(), partial)
		return nil
	},
}

// parsePreference turns a key and its command line value into a Partial.
func parsePreference(key, value string) (preferences.Partial, error) {
	switch key {
	case "language":
		l, ok := locale.Match(value)
		if !ok {
			return preferences.Partial{}, fmt.Errorf("unsupported language %q", value)
		}
		return preferences.WithLanguage(l), nil
	case "theme":
		mode := preferences.ThemeMode(value)
		if !mode.Concrete() {
			return preferences.Partial{}, fmt.Errorf("invalid theme %q: must be light or dark", value)
		}
		return preferences.WithTheme(mode), nil
	case "filters":
		var f preferences.Filters
		if err := json.Unmarshal([]byte(value), &f); err != nil {
			return preferences.Partial{}, fmt.Errorf("invalid filters: %w", err)
		}
		return preferences.WithFilters(f), nil
	default:
		return preferences.Partial{}, fmt.Errorf("unknown preference %q: must be language, theme or filters", key)
	}
}

func openConfigStore() (*preferences.ConfigStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := preferences.NewConfigStore(preferenceStore(database, prefsVisitor), nil)
	return store, func() { database.Close() }, nil
}

func init() {
	prefsCmd.PersistentFlags().StringVar(&prefsVisitor, "visitor", "", "act on a site visitor's preferences")
	prefsCmd.AddCommand(prefsShowCmd, prefsClearCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
