package dotenv

import "strings"

// resolver looks up a variable name for expansion. Parse composes one
// that consults already-committed map entries before the host process
// environment.
type resolver func(name string) (string, bool)

// unescapeDouble applies the double-quoted escape table in a single
// left-to-right pass: \", \n, \r, \t, \\. Any other backslash sequence
// survives untouched. A \$ sequence drops the backslash and marks the
// dollar as protected from expansion; tracking it here keeps a backslash
// produced by \\ from protecting a dollar that follows it.
func unescapeDouble(s string) (string, map[int]bool) {
	var b strings.Builder
	protected := make(map[int]bool)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '"':
			b.WriteByte('"')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		case '$':
			protected[b.Len()] = true
			b.WriteByte('$')
			i++
		default:
			b.WriteByte('\\')
		}
	}
	return b.String(), protected
}

// stripDollarEscapes handles \$ protection in unquoted values, where no
// other escape processing applies: the protecting backslash is consumed
// and the dollar stays literal.
func stripDollarEscapes(s string) (string, map[int]bool) {
	if !strings.Contains(s, `\$`) {
		return s, nil
	}
	var b strings.Builder
	protected := make(map[int]bool)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '$' {
			protected[b.Len()] = true
			b.WriteByte('$')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), protected
}

// expand substitutes ${NAME} and $NAME references. Unresolved references
// and text that fails to match the variable pattern are left verbatim.
func expand(s string, protected map[int]bool, lookup resolver) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' || protected[i] {
			b.WriteByte(c)
			continue
		}
		name, end, ok := matchVariable(s, i)
		if !ok {
			b.WriteByte(c)
			continue
		}
		if v, found := lookup(name); found {
			b.WriteString(v)
		} else {
			b.WriteString(s[i:end])
		}
		i = end - 1
	}
	return b.String()
}

// matchVariable matches ${NAME} or $NAME at the dollar at index i, where
// NAME is [A-Za-z_][A-Za-z0-9_]*. end is the index just past the match.
func matchVariable(s string, i int) (name string, end int, ok bool) {
	j := i + 1
	if j < len(s) && s[j] == '{' {
		start := j + 1
		k := scanName(s, start)
		if k > start && k < len(s) && s[k] == '}' {
			return s[start:k], k + 1, true
		}
		return "", 0, false
	}
	k := scanName(s, j)
	if k > j {
		return s[j:k], k, true
	}
	return "", 0, false
}

func scanName(s string, start int) int {
	k := start
	for k < len(s) && isNameByte(s[k], k == start) {
		k++
	}
	return k
}

func isNameByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}
