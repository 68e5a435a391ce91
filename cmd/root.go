package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "dotenv",
	Short:         "Parse .env files into process configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `dotenv - .env parser with strict diagnostics, variable expansion, and
layered-configuration semantics.

Values expand ` + "`${VAR}`" + ` and ` + "`$VAR`" + ` references against earlier entries in the
same file, then against the host environment; single-quoted values stay
verbatim. Malformed lines are skipped unless --strict is set, in which case
they fail with positional ENVxxx diagnostics.

EXAMPLES:

  dotenv parse -f .env --format json
  dotenv get DATABASE_URL
  dotenv check --strict '**/*.env'
  dotenv run -f .env.base -f .env.local -- node server.js
  dotenv run --watch -- npm start`,
}

func init() {
	// Cobra adds --version when Version is set; use a clear template
	rootCmd.SetVersionTemplate("dotenv version {{.Version}}\n")
}

// SetVersion sets the version string shown by --version (e.g. from ldflags).
func SetVersion(v string) { rootCmd.Version = v }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
