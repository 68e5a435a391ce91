package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
	"github.com/IEvangelist/dotenv-aspire/internal/runenv"
	"github.com/IEvangelist/dotenv-aspire/internal/source"
	"github.com/IEvangelist/dotenv-aspire/internal/tui"
	"github.com/IEvangelist/dotenv-aspire/internal/watch"
)

var runCmd = &cobra.Command{
	Use:   "run -- [command]",
	Short: "Run a command with variables from .env files",
	Long: `Parse the given .env files (later files override earlier ones), inject
the result into the environment, and run the command. With --watch the
command restarts whenever one of the files changes. Keys with no value
(KEY=) are not exported.`,
	RunE: runRun,
}

var runFiles []string
var runWorkdir string
var runWatch bool
var runOpts parserFlags

func init() {
	runCmd.Flags().StringSliceVarP(&runFiles, "file", "f", []string{".env"}, "Path(s) to .env file (can be repeated; later files win)")
	runCmd.Flags().StringVar(&runWorkdir, "workdir", "", "Working directory for the command")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Restart the command when an env file changes")
	runOpts.register(runCmd, false)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command specified. Use: dotenv run -- your-command")
	}

	opts, err := runOpts.options()
	if err != nil {
		return err
	}

	entries, err := loadEntries(runFiles, opts)
	if err != nil {
		return err
	}

	command := args[0]
	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	if !runWatch {
		return runOnce(entries, command, cmdArgs)
	}
	return runWithWatch(entries, opts, command, cmdArgs)
}

// loadEntries parses each file and overlays them in order, so a later
// file's entry wins even when it has no value.
func loadEntries(paths []string, opts dotenv.Options) ([]runenv.EnvEntry, error) {
	merged := dotenv.NewMap()
	for _, path := range paths {
		m, err := source.Load(path, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		merged.Merge(m)
	}

	entries := make([]runenv.EnvEntry, 0, merged.Len())
	for _, e := range merged.Entries() {
		entries = append(entries, runenv.EnvEntry{Key: e.Key, Value: e.Value, HasValue: e.HasValue})
	}
	return entries, nil
}

func runOnce(entries []runenv.EnvEntry, command string, args []string) error {
	exitCode, err := runenv.RunWithEnv(entries, runWorkdir, command, args)
	if err != nil {
		if exitCode >= 0 {
			os.Exit(exitCode)
		}
		return err
	}
	return nil
}

func runWithWatch(entries []runenv.EnvEntry, opts dotenv.Options, command string, args []string) error {
	w, err := watch.New()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.Close()

	for _, f := range runFiles {
		if err := w.Add(f); err != nil {
			fmt.Fprintf(os.Stderr, "%s could not watch %s: %v\n", tui.Warning("warning:"), f, err)
		}
	}
	changes := w.Start()

	runner := &runenv.Runner{
		Command: command,
		Args:    args,
		Entries: entries,
		Workdir: runWorkdir,
	}
	if err := runner.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			_ = runner.Stop()
			fmt.Fprintln(os.Stderr, tui.Muted(fmt.Sprintf("stopped (%v)", sig)))
			return nil
		case changed := <-changes:
			fmt.Fprintln(os.Stderr, tui.Muted(changed+" changed, restarting"))
			if err := runner.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "%s stop: %v\n", tui.Warning("warning:"), err)
			}
			fresh, err := loadEntries(runFiles, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s reload: %v (keeping previous environment)\n", tui.Warning("warning:"), err)
			} else {
				runner.Entries = fresh
			}
			if err := runner.Start(); err != nil {
				return fmt.Errorf("restart command: %w", err)
			}
		}
	}
}
