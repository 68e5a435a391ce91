package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
	"github.com/IEvangelist/dotenv-aspire/internal/source"
	"github.com/IEvangelist/dotenv-aspire/internal/tui"
)

var checkCmd = &cobra.Command{
	Use:   "check GLOB...",
	Short: "Validate .env files and report positional diagnostics",
	Long: `Validate every env file matched by the given paths or doublestar globs
(e.g. '**/*.env'). Diagnostics print as path:line: CODE message. Exits
non-zero when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

var checkOpts parserFlags

func init() {
	checkOpts.register(checkCmd, true)
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := checkOpts.options()
	if err != nil {
		return err
	}

	paths, err := source.Glob(args...)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no env files matched %v", args)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		m, err := source.Load(path, opts)
		if err != nil {
			failed++
			var perr *dotenv.ParseError
			if errors.As(err, &perr) {
				fmt.Fprintln(out, tui.Diagnostic(path, perr.Line, perr.Code, perr.Message))
			} else {
				fmt.Fprintf(out, "%s %v\n", tui.Error(path+":"), err)
			}
			continue
		}
		fmt.Fprintf(out, "%s %s\n", tui.Success("ok"), tui.Muted(fmt.Sprintf("%s (%d keys)", path, m.Len())))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(paths))
	}
	fmt.Fprintln(cmd.ErrOrStderr(), tui.Muted(fmt.Sprintf("%d files ok", len(paths))))
	return nil
}
