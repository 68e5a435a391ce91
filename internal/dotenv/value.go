package dotenv

import "strings"

// decodeValue turns the raw text after '=' into a final value. present is
// false when an unquoted value reduces to nothing: KEY= yields an absent
// value while KEY="" and KEY='' yield a present empty string.
func decodeValue(raw string, line int, lookup resolver, opts Options) (value string, present bool, err *ParseError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false, nil
	}

	switch trimmed[0] {
	case '"':
		interior, perr := unwrapQuoted(trimmed, '"', line)
		if perr != nil {
			return "", false, perr
		}
		unescaped, protected := unescapeDouble(interior)
		if opts.ExpandVariables {
			unescaped = expand(unescaped, protected, lookup)
		}
		return unescaped, true, nil
	case '\'':
		interior, perr := unwrapQuoted(trimmed, '\'', line)
		if perr != nil {
			return "", false, perr
		}
		// Single-quoted content is verbatim: no escapes, no expansion.
		return interior, true, nil
	}

	// The marker search runs on the raw text: the preceding-space rule
	// counts spaces the key/value split left in place.
	value = stripInlineComment(raw, opts.AlternativeComments)
	value = strings.TrimSpace(value)
	cleaned, protected := stripDollarEscapes(value)
	if opts.ExpandVariables {
		cleaned = expand(cleaned, protected, lookup)
	}
	if cleaned == "" {
		return "", false, nil
	}
	return cleaned, true, nil
}

// unwrapQuoted strips the surrounding quote characters after checking
// balance: the value must end with the quote it opened with and contain an
// even count of unescaped quotes.
func unwrapQuoted(s string, quote byte, line int) (string, *ParseError) {
	name := "double"
	if quote == '\'' {
		name = "single"
	}
	if len(s) < 2 || s[len(s)-1] != quote || countUnescaped(s, quote)%2 != 0 {
		return "", parseErrorf(CodeUnclosedQuote, line, "Unclosed %s quote", name)
	}
	return s[1 : len(s)-1], nil
}

func countUnescaped(s string, quote byte) int {
	count := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			count++
		}
	}
	return count
}

// stripInlineComment removes the earliest space-preceded comment marker
// from an unquoted value. A marker with no preceding space is part of the
// value.
func stripInlineComment(s string, alternative bool) string {
	cut := -1
	for _, marker := range commentMarkers(alternative) {
		if idx := strings.Index(s, " "+marker); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut < 0 {
		return s
	}
	return s[:cut]
}
