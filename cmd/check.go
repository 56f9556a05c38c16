package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/folio/internal/content"
	"github.com/ziadkadry99/folio/internal/progress"
)

var checkCmd = &cobra.Command{
	Use:   "check [content-dir]",
	Short: "Validate the site content",
	Long: `Checks that every language has translations and projects, that the
translation keys match across languages, that projects use known categories
and modes, and that referenced local images exist. Defaults to the configured
content directory, or the bundled content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		fsys, err := openContent(cfg, dir)
		if err != nil {
			return err
		}

		report, err := content.Check(cmd.Context(), fsys, progress.NewReporter("Checking content"))
		if err != nil {
			return fmt.Errorf("checking content: %w", err)
		}

		for _, res := range report.Inventory.Resources {
			if verbose {
				fmt.Fprintf(os.Stderr, "  found %s (%s, %s)\n", res.Path, res.Kind, res.Locale)
			}
		}
		for _, is := range report.Issues {
			fmt.Printf("%-7s %s: %s\n", is.Severity, is.Path, is.Message)
		}

		if n := report.Errors(); n > 0 {
			return fmt.Errorf("content has %d error(s)", n)
		}
		fmt.Printf("Content OK (%d resources, %d warning(s))\n", len(report.Inventory.Resources), len(report.Issues))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
