package dotenv

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, text string, opts Options) *Map {
	t.Helper()
	m, err := ParseString(text, opts)
	if err != nil {
		t.Fatalf("ParseString(%q) error = %v", text, err)
	}
	return m
}

func wantParseError(t *testing.T, text string, opts Options, code string, line int) {
	t.Helper()
	_, err := ParseString(text, opts)
	if err == nil {
		t.Fatalf("ParseString(%q) expected error, got nil", text)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("ParseString(%q) error = %v, want ParseError", text, err)
	}
	if perr.Code != code {
		t.Errorf("code = %s, want %s (message %q)", perr.Code, code, perr.Message)
	}
	if perr.Line != line {
		t.Errorf("line = %d, want %d", perr.Line, line)
	}
}

func TestParseBasic(t *testing.T) {
	t.Run("simple pairs", func(t *testing.T) {
		m := mustParse(t, "A=1\nB=two\n", DefaultOptions())
		if m.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", m.Len())
		}
		if got := m.Get("A"); got != "1" {
			t.Errorf("A = %q, want %q", got, "1")
		}
		if got := m.Get("B"); got != "two" {
			t.Errorf("B = %q, want %q", got, "two")
		}
	})

	t.Run("blank and comment lines are skipped", func(t *testing.T) {
		m := mustParse(t, "\n# header\n  \nA=1\n# trailer\n", DefaultOptions())
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
	})

	t.Run("alternative comments", func(t *testing.T) {
		opts := DefaultOptions()
		opts.AlternativeComments = true
		m := mustParse(t, "; one\n// two\n# three\nA=1\n", opts)
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
	})

	t.Run("alternative comment lines are values otherwise", func(t *testing.T) {
		m := mustParse(t, "//x=1\n", DefaultOptions())
		if got := m.Get("//x"); got != "" {
			t.Errorf("//x = %q, want skipped", got)
		}
		if m.Len() != 0 {
			t.Errorf("Len() = %d, want 0 (invalid key skipped)", m.Len())
		}
	})

	t.Run("whitespace around key is trimmed", func(t *testing.T) {
		m := mustParse(t, "  SPACED_KEY  =value\n", DefaultOptions())
		if got := m.Get("SPACED_KEY"); got != "value" {
			t.Errorf("SPACED_KEY = %q, want %q", got, "value")
		}
	})

	t.Run("missing assignment skipped when not strict", func(t *testing.T) {
		m := mustParse(t, "no equals here\nA=1\n", DefaultOptions())
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
	})

	t.Run("case-insensitive lookup", func(t *testing.T) {
		m := mustParse(t, "ConnectionString=db\n", DefaultOptions())
		if got := m.Get("CONNECTIONSTRING"); got != "db" {
			t.Errorf("CONNECTIONSTRING = %q, want %q", got, "db")
		}
		if got := m.Get("connectionstring"); got != "db" {
			t.Errorf("connectionstring = %q, want %q", got, "db")
		}
	})
}

func TestAbsentVersusEmpty(t *testing.T) {
	t.Run("unquoted empty is absent", func(t *testing.T) {
		m := mustParse(t, "EMPTY=\n", DefaultOptions())
		_, hasValue, ok := m.Lookup("EMPTY")
		if !ok {
			t.Fatal("EMPTY should exist")
		}
		if hasValue {
			t.Error("EMPTY should have no value")
		}
	})

	t.Run("whitespace-only unquoted is absent", func(t *testing.T) {
		m := mustParse(t, "EMPTY=   \n", DefaultOptions())
		_, hasValue, ok := m.Lookup("EMPTY")
		if !ok || hasValue {
			t.Errorf("Lookup(EMPTY) = hasValue %v ok %v, want false true", hasValue, ok)
		}
	})

	t.Run("double-quoted empty is present", func(t *testing.T) {
		m := mustParse(t, `E=""`, DefaultOptions())
		v, hasValue, ok := m.Lookup("E")
		if !ok || !hasValue || v != "" {
			t.Errorf("Lookup(E) = (%q, %v, %v), want (\"\", true, true)", v, hasValue, ok)
		}
	})

	t.Run("single-quoted empty is present", func(t *testing.T) {
		m := mustParse(t, "E=''", DefaultOptions())
		v, hasValue, ok := m.Lookup("E")
		if !ok || !hasValue || v != "" {
			t.Errorf("Lookup(E) = (%q, %v, %v), want (\"\", true, true)", v, hasValue, ok)
		}
	})
}

func TestDuplicateKeys(t *testing.T) {
	const input = "A=1\nA=2\n"

	t.Run("use last", func(t *testing.T) {
		m := mustParse(t, input, DefaultOptions())
		if got := m.Get("A"); got != "2" {
			t.Errorf("A = %q, want %q", got, "2")
		}
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
	})

	t.Run("use first", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Duplicates = UseFirst
		m := mustParse(t, input, opts)
		if got := m.Get("A"); got != "1" {
			t.Errorf("A = %q, want %q", got, "1")
		}
	})

	t.Run("throw", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Duplicates = Throw
		wantParseError(t, input, opts, CodeDuplicateKey, 2)
	})

	t.Run("throw is case-insensitive", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Duplicates = Throw
		wantParseError(t, "Path=a\nPATH=b\n", opts, CodeDuplicateKey, 2)
	})

	t.Run("use last keeps processing after duplicate", func(t *testing.T) {
		m := mustParse(t, "A=1\nA=2\nB=3\n", DefaultOptions())
		if m.Len() != 2 {
			t.Errorf("Len() = %d, want 2", m.Len())
		}
		if got := m.Get("B"); got != "3" {
			t.Errorf("B = %q, want %q", got, "3")
		}
	})
}

func TestStrictMode(t *testing.T) {
	strict := DefaultOptions()
	strict.Strict = true

	t.Run("missing assignment", func(t *testing.T) {
		wantParseError(t, "no equals here\n", strict, CodeMissingAssignment, 1)
	})

	t.Run("assignment at start of line", func(t *testing.T) {
		wantParseError(t, "=value\n", strict, CodeMissingAssignment, 1)
	})

	t.Run("invalid key", func(t *testing.T) {
		wantParseError(t, "123KEY=v\n", strict, CodeInvalidKey, 1)
	})

	t.Run("invalid key reports the right line", func(t *testing.T) {
		wantParseError(t, "OK=1\nKEY WITH SPACE=v\n", strict, CodeInvalidKey, 2)
	})

	t.Run("key spanning lines", func(t *testing.T) {
		wantParseError(t, "KE\\\nY=v\n", strict, CodeMultilineKey, 1)
	})

	t.Run("non-strict skips all of the above", func(t *testing.T) {
		m := mustParse(t, "no equals\n=value\n123KEY=v\nKE\\\nY=v\nOK=1\n", DefaultOptions())
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
		if got := m.Get("OK"); got != "1" {
			t.Errorf("OK = %q, want %q", got, "1")
		}
	})

	t.Run("valid keys pass strict validation", func(t *testing.T) {
		m := mustParse(t, "_UNDER=1\nMiXeD_9=2\n", strict)
		if m.Len() != 2 {
			t.Errorf("Len() = %d, want 2", m.Len())
		}
	})
}

func TestLineContinuation(t *testing.T) {
	t.Run("joins with a newline", func(t *testing.T) {
		m := mustParse(t, "KEY=a\\\nb\n", DefaultOptions())
		if got := m.Get("KEY"); got != "a\nb" {
			t.Errorf("KEY = %q, want %q", got, "a\nb")
		}
	})

	t.Run("chains of arbitrary length", func(t *testing.T) {
		m := mustParse(t, "KEY=a\\\nb\\\nc\\\nd\n", DefaultOptions())
		if got := m.Get("KEY"); got != "a\nb\nc\nd" {
			t.Errorf("KEY = %q, want %q", got, "a\nb\nc\nd")
		}
	})

	t.Run("escaped backslash does not continue", func(t *testing.T) {
		m := mustParse(t, "KEY=a\\\\\nB=1\n", DefaultOptions())
		if got := m.Get("KEY"); got != "a\\\\" {
			t.Errorf("KEY = %q, want %q", got, "a\\\\")
		}
		if got := m.Get("B"); got != "1" {
			t.Errorf("B = %q, want %q", got, "1")
		}
	})

	t.Run("dangling continuation at end of file", func(t *testing.T) {
		wantParseError(t, "SECRET=password\\", DefaultOptions(), CodeBadContinuation, 1)
	})

	t.Run("dangling continuation reports last line seen", func(t *testing.T) {
		wantParseError(t, "A=1\nB=x\\\ny\\", DefaultOptions(), CodeBadContinuation, 3)
	})

	t.Run("comment on continuation line", func(t *testing.T) {
		wantParseError(t, "KEY=a\\\n# nope\n", DefaultOptions(), CodeBadContinuation, 2)
	})

	t.Run("inline comment on continuation line", func(t *testing.T) {
		wantParseError(t, "KEY=a\\\nb # nope\n", DefaultOptions(), CodeBadContinuation, 2)
	})

	t.Run("alternative marker on continuation line", func(t *testing.T) {
		opts := DefaultOptions()
		opts.AlternativeComments = true
		wantParseError(t, "KEY=a\\\n; nope\n", opts, CodeBadContinuation, 2)
	})

	t.Run("line number is the first physical line", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Duplicates = Throw
		wantParseError(t, "A=1\nA=x\\\ny\n", opts, CodeDuplicateKey, 2)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	inputs := []string{
		"A=1\nB=two words\n",
		"EMPTY=\nQUOTED=\"\"\n",
		"HASH=\"a # b\"\n",
		"MULTI=a\\\nb\n",
		"DOLLAR=\\$HOME\n",
		"TABS=\"a\\tb\"\n",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			opts := DefaultOptions()
			first, err := ParseString(input, opts)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			second, err := Parse(strings.NewReader(string(first.Marshal())), opts)
			if err != nil {
				t.Fatalf("reparse: %v\nserialized:\n%s", err, first.Marshal())
			}
			if second.Len() != first.Len() {
				t.Fatalf("Len() = %d, want %d", second.Len(), first.Len())
			}
			for _, e := range first.Entries() {
				v, hasValue, ok := second.Lookup(e.Key)
				if !ok {
					t.Errorf("key %q lost in round trip", e.Key)
					continue
				}
				if hasValue != e.HasValue || v != e.Value {
					t.Errorf("%s = (%q, %v), want (%q, %v)", e.Key, v, hasValue, e.Value, e.HasValue)
				}
			}
		})
	}
}

func TestMapOperations(t *testing.T) {
	t.Run("keys preserve insertion order and casing", func(t *testing.T) {
		m := mustParse(t, "Zed=1\nalpha=2\nMid=3\n", DefaultOptions())
		want := []string{"Zed", "alpha", "Mid"}
		got := m.Keys()
		if len(got) != len(want) {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("set overwrites case-insensitively", func(t *testing.T) {
		m := NewMap()
		m.Set("Key", "a")
		m.Set("KEY", "b")
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
		if got := m.Get("key"); got != "b" {
			t.Errorf("key = %q, want %q", got, "b")
		}
	})
}

func TestReaderFailure(t *testing.T) {
	_, err := Parse(failingReader{}, DefaultOptions())
	if err == nil {
		t.Fatal("expected error from failing reader")
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		t.Errorf("read failure surfaced as ParseError %v, want plain error", perr)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
