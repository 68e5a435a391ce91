package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
	"github.com/IEvangelist/dotenv-aspire/internal/source"
	"github.com/IEvangelist/dotenv-aspire/internal/store"
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Resolve a key across one or more .env files",
	Long: `Resolve a key across the given .env files, later files winning per key.
Lookup is case-insensitive and hierarchical: CONNECTIONSTRINGS__DB in the
file is addressable as connectionstrings:db. A key committed without a
value (KEY=) is an error; a quoted empty value prints as "". Use --raw for
the exact bytes, e.g. $(dotenv get KEY --raw).`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var getFiles []string
var getRaw bool
var getOpts parserFlags

func init() {
	getCmd.Flags().StringSliceVarP(&getFiles, "file", "f", []string{".env"}, "Path(s) to .env file (can be repeated; later files win)")
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "Print the exact value bytes without quoting or a trailing newline")
	getOpts.register(getCmd, false)
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	opts, err := getOpts.options()
	if err != nil {
		return err
	}

	layers := store.New()
	for _, path := range getFiles {
		m, err := source.Load(path, opts)
		if err != nil {
			return err
		}
		layers.Register(path, m)
	}

	value, hasValue, ok := layers.Lookup(args[0])
	if !ok {
		return fmt.Errorf("key %q not found", args[0])
	}
	if !hasValue {
		return fmt.Errorf("key %q has no value", args[0])
	}
	if getRaw {
		fmt.Print(value)
		return nil
	}
	fmt.Println(dotenv.QuoteValue(value))
	return nil
}
