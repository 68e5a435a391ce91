// Package dotenv parses .env-syntax text into an ordered, case-insensitive
// key/value mapping. The parser is synchronous and stateless across calls;
// the only shared resource it touches is the host process environment,
// read-only, during variable expansion.
package dotenv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Entry is a single committed key/value pair. HasValue is false for
// unquoted-empty values (KEY=), which are distinct from quoted-empty ones.
type Entry struct {
	Key      string
	Value    string
	HasValue bool
}

// Map is the parse result: at most one entry per case-insensitive key,
// kept in file order so expansion only ever sees earlier entries.
type Map struct {
	entries []Entry
	index   map[string]int
}

func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (m *Map) Len() int { return len(m.entries) }

// Keys returns key names in insertion order with their original casing.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the committed entries in insertion order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Get returns the value for a key, or "" when the key is missing or its
// value is absent. Lookup distinguishes those cases.
func (m *Map) Get(key string) string {
	v, _, _ := m.Lookup(key)
	return v
}

// Lookup reports the value, whether the key carries a value at all, and
// whether the key exists. Comparison is case-insensitive.
func (m *Map) Lookup(key string) (value string, hasValue bool, ok bool) {
	idx, ok := m.index[strings.ToLower(key)]
	if !ok {
		return "", false, false
	}
	e := m.entries[idx]
	return e.Value, e.HasValue, true
}

// Set commits a present value, overwriting any existing entry for the key.
func (m *Map) Set(key, value string) {
	m.put(key, value, true)
}

func (m *Map) put(key, value string, hasValue bool) {
	lower := strings.ToLower(key)
	if idx, ok := m.index[lower]; ok {
		m.entries[idx].Value = value
		m.entries[idx].HasValue = hasValue
		return
	}
	m.index[lower] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value, HasValue: hasValue})
}

// Merge overlays other's entries onto m. Unlike the in-file duplicate
// policy this is always last-source-wins: merging across files is the
// layered host's semantics, not the parser's.
func (m *Map) Merge(other *Map) {
	for _, e := range other.Entries() {
		m.put(e.Key, e.Value, e.HasValue)
	}
}

// Parse reads .env text from r and returns the resulting mapping, or the
// first ParseError encountered. Read failures from the underlying stream
// surface as plain wrapped errors, never as ParseError.
func Parse(r io.Reader, opts Options) (*Map, error) {
	m := NewMap()
	lookup := func(name string) (string, bool) {
		if v, _, ok := m.Lookup(name); ok {
			return v, true
		}
		return os.LookupEnv(name)
	}

	asm := newAssembler(r, opts)
	for {
		ll, ok, err := asm.next()
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read input: %w", err)
			}
			return nil, err
		}
		if !ok {
			break
		}

		trimmed := strings.TrimSpace(ll.text)
		if classify(trimmed, opts.AlternativeComments) != classCandidate {
			continue
		}

		key, raw, ok, perr := splitEntry(ll, opts)
		if perr != nil {
			return nil, perr
		}
		if !ok {
			continue
		}

		value, hasValue, perr := decodeValue(raw, ll.num, lookup, opts)
		if perr != nil {
			return nil, perr
		}

		if _, exists := m.index[strings.ToLower(key)]; exists {
			switch opts.Duplicates {
			case UseFirst:
				continue
			case Throw:
				return nil, parseErrorf(CodeDuplicateKey, ll.num, "Duplicate key '%s'", key)
			}
		}
		m.put(key, value, hasValue)
	}
	return m, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(text string, opts Options) (*Map, error) {
	return Parse(strings.NewReader(text), opts)
}

// splitEntry locates the first '=' and validates the key. In non-strict
// mode every malformed line is skipped silently (ok=false); in strict mode
// the corresponding diagnostic is returned instead.
func splitEntry(ll logicalLine, opts Options) (key, raw string, ok bool, err *ParseError) {
	idx := strings.IndexByte(ll.text, '=')
	if idx <= 0 {
		if opts.Strict {
			return "", "", false, parseErrorf(CodeMissingAssignment, ll.num,
				"Invalid line format — missing assignment operator")
		}
		return "", "", false, nil
	}

	key = strings.TrimSpace(ll.text[:idx])
	raw = ll.text[idx+1:]

	if strings.ContainsAny(key, "\n\r") {
		if opts.Strict {
			return "", "", false, parseErrorf(CodeMultilineKey, ll.num,
				"Keys cannot span multiple lines")
		}
		return "", "", false, nil
	}
	if !keyPattern.MatchString(key) {
		if opts.Strict {
			return "", "", false, parseErrorf(CodeInvalidKey, ll.num, "Invalid key format")
		}
		return "", "", false, nil
	}
	return key, raw, true, nil
}

// Marshal serializes the map back to .env text. Values that would not
// survive a re-parse verbatim are double-quoted with the escape table the
// parser understands, so Parse(Marshal(m)) reproduces m.
func (m *Map) Marshal() []byte {
	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(e.Key)
		b.WriteByte('=')
		if e.HasValue {
			b.WriteString(QuoteValue(e.Value))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

var valueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"$", `\$`,
)

// QuoteValue renders a value in .env syntax, double-quoting it with the
// escape table the parser understands whenever it would not re-parse
// verbatim.
func QuoteValue(v string) string {
	if needsQuoting(v) {
		return `"` + valueEscaper.Replace(v) + `"`
	}
	return v
}

func needsQuoting(v string) bool {
	if v == "" {
		return true
	}
	if v != strings.TrimSpace(v) {
		return true
	}
	if strings.ContainsAny(v, "#;\"'$\\\n\r\t") {
		return true
	}
	return strings.Contains(v, " //")
}
