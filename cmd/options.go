package cmd

import (
	"github.com/spf13/cobra"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
)

// parserFlags are the knobs shared by every command that parses env files.
type parserFlags struct {
	strict      bool
	noExpand    bool
	altComments bool
	duplicates  string
}

func (f *parserFlags) register(cmd *cobra.Command, strictDefault bool) {
	cmd.Flags().BoolVar(&f.strict, "strict", strictDefault, "Fail on malformed lines and keys with positional diagnostics")
	cmd.Flags().BoolVar(&f.noExpand, "no-expand", false, "Disable ${VAR} and $VAR expansion")
	cmd.Flags().BoolVar(&f.altComments, "alt-comments", false, "Also treat ; and // as comment markers")
	cmd.Flags().StringVar(&f.duplicates, "duplicates", "last", "Duplicate key policy: last, first, or error")
}

func (f *parserFlags) options() (dotenv.Options, error) {
	policy, err := dotenv.ParseDuplicatePolicy(f.duplicates)
	if err != nil {
		return dotenv.Options{}, err
	}
	opts := dotenv.DefaultOptions()
	opts.Strict = f.strict
	opts.ExpandVariables = !f.noExpand
	opts.AlternativeComments = f.altComments
	opts.Duplicates = policy
	return opts, nil
}
