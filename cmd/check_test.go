package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runCheckCapture(t *testing.T, args []string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	c.SetErr(&buf)
	err := runCheck(c, args)
	return buf.String(), err
}

func TestRunCheck(t *testing.T) {
	t.Run("reports positional diagnostics", func(t *testing.T) {
		checkOpts = parserFlags{strict: true, duplicates: "last"}
		path := writeEnvFile(t, "bad.env", "OK=1\n123KEY=v\n")

		out, err := runCheckCapture(t, []string{path})
		if err == nil {
			t.Fatal("expected validation failure")
		}
		if !strings.Contains(out, "ENV003") || !strings.Contains(out, ":2:") {
			t.Errorf("diagnostic missing code or line:\n%s", out)
		}
	})

	t.Run("valid files pass", func(t *testing.T) {
		checkOpts = parserFlags{strict: true, duplicates: "last"}
		path := writeEnvFile(t, "good.env", "A=1\nB=2\n")

		out, err := runCheckCapture(t, []string{path})
		if err != nil {
			t.Fatalf("runCheck() error = %v\n%s", err, out)
		}
		if !strings.Contains(out, "2 keys") {
			t.Errorf("expected key count in output:\n%s", out)
		}
		if !strings.Contains(out, "1 files ok") {
			t.Errorf("expected summary on the command's writer:\n%s", out)
		}
	})

	t.Run("globs match multiple files", func(t *testing.T) {
		checkOpts = parserFlags{strict: true, duplicates: "last"}
		dir := t.TempDir()
		for _, name := range []string{"a.env", "b.env"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("K=1\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		cwd, _ := os.Getwd()
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		defer os.Chdir(cwd)

		out, err := runCheckCapture(t, []string{"*.env"})
		if err != nil {
			t.Fatalf("runCheck() error = %v\n%s", err, out)
		}
		if strings.Count(out, "ok") < 2 {
			t.Errorf("expected two ok lines:\n%s", out)
		}
	})

	t.Run("missing literal path fails", func(t *testing.T) {
		checkOpts = parserFlags{strict: true, duplicates: "last"}
		_, err := runCheckCapture(t, []string{"/nonexistent/app.env"})
		if err == nil {
			t.Error("expected failure for missing file")
		}
	})

	t.Run("structural errors surface without strict", func(t *testing.T) {
		checkOpts = parserFlags{strict: false, duplicates: "last"}
		path := writeEnvFile(t, "quote.env", "A=\"unclosed\n")

		out, err := runCheckCapture(t, []string{path})
		if err == nil {
			t.Fatal("expected validation failure")
		}
		if !strings.Contains(out, "ENV004") {
			t.Errorf("expected ENV004 diagnostic:\n%s", out)
		}
	})
}
