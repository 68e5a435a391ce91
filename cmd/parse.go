package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
	"github.com/IEvangelist/dotenv-aspire/internal/source"
	"github.com/IEvangelist/dotenv-aspire/internal/tui"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a .env file and print the mapping",
	Long: `Parse a .env file and print the resulting key/value mapping.
Keys with no value (KEY=) render as null in json/yaml output and as KEY= in
dotenv output. Use --output to write to a file instead of stdout.`,
	RunE: runParse,
}

var parseFile string
var parseFormat string
var parseOutput string
var parseForce bool
var parseOpts parserFlags

func init() {
	parseCmd.Flags().StringVarP(&parseFile, "file", "f", ".env", "Path to .env file")
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "Output format: json, yaml, shell, or dotenv")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "Write output to a file instead of stdout")
	parseCmd.Flags().BoolVar(&parseForce, "force", false, "Overwrite the output file without asking")
	parseOpts.register(parseCmd, false)
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	opts, err := parseOpts.options()
	if err != nil {
		return err
	}

	m, err := source.Load(parseFile, opts)
	if err != nil {
		return err
	}

	rendered, err := renderMap(m, parseFormat)
	if err != nil {
		return err
	}

	if parseOutput == "" {
		fmt.Print(rendered)
		return nil
	}
	return writeOutput(parseOutput, rendered)
}

func renderMap(m *dotenv.Map, format string) (string, error) {
	switch format {
	case "json":
		values := make(map[string]*string, m.Len())
		for _, e := range m.Entries() {
			if e.HasValue {
				v := e.Value
				values[e.Key] = &v
			} else {
				values[e.Key] = nil
			}
		}
		var b strings.Builder
		enc := json.NewEncoder(&b)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(values); err != nil {
			return "", err
		}
		return b.String(), nil
	case "yaml":
		values := make(map[string]*string, m.Len())
		for _, e := range m.Entries() {
			if e.HasValue {
				v := e.Value
				values[e.Key] = &v
			} else {
				values[e.Key] = nil
			}
		}
		out, err := yaml.Marshal(values)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case "shell":
		var b strings.Builder
		for _, e := range m.Entries() {
			if !e.HasValue {
				continue
			}
			b.WriteString(shellEscape(e.Key) + "=" + shellQuote(e.Value) + "\n")
		}
		return b.String(), nil
	case "dotenv":
		return string(m.Marshal()), nil
	}
	return "", fmt.Errorf("unknown format %q: expected json, yaml, shell, or dotenv", format)
}

func writeOutput(path, content string) error {
	if _, err := os.Stat(path); err == nil && !parseForce {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("%s exists; use --force to overwrite", path)
		}
		ok, err := tui.Confirm(fmt.Sprintf("Overwrite %s?", path))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("aborted")
		}
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintln(os.Stderr, tui.Success("wrote "+path))
	return nil
}

func shellEscape(s string) string {
	if strings.ContainsAny(s, " \t\n\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

func shellQuote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
