package dotenv

import (
	"bufio"
	"io"
	"strings"
)

// logicalLine is one or more physical lines joined by backslash
// continuation. num is the first physical line it began on.
type logicalLine struct {
	num  int
	text string
}

type assembler struct {
	scanner *bufio.Scanner
	opts    Options
	line    int
}

func newAssembler(r io.Reader, opts Options) *assembler {
	sc := bufio.NewScanner(r)
	const maxCapacity = 512 * 1024
	buf := make([]byte, maxCapacity)
	sc.Buffer(buf, maxCapacity)
	return &assembler{scanner: sc, opts: opts}
}

// next returns the next logical line, or ok=false at end of stream.
// Continuation chains of arbitrary length are supported; physical lines
// are joined with a literal newline after the trailing backslash is
// stripped.
func (a *assembler) next() (logicalLine, bool, error) {
	if !a.scanner.Scan() {
		return logicalLine{}, false, a.scanner.Err()
	}
	a.line++
	start := a.line
	text := a.scanner.Text()

	head, cont := splitContinuation(text)
	if !cont {
		return logicalLine{num: start, text: text}, true, nil
	}

	var b strings.Builder
	b.WriteString(head)
	for {
		if !a.scanner.Scan() {
			if err := a.scanner.Err(); err != nil {
				return logicalLine{}, false, err
			}
			return logicalLine{}, false, parseErrorf(CodeBadContinuation, a.line,
				"Invalid line continuation at end of file")
		}
		a.line++
		next := a.scanner.Text()
		if hasCommentMarker(next, a.opts.AlternativeComments) {
			return logicalLine{}, false, parseErrorf(CodeBadContinuation, a.line,
				"Comments are not allowed on line continuation")
		}
		b.WriteByte('\n')
		part, more := splitContinuation(next)
		if !more {
			b.WriteString(next)
			return logicalLine{num: start, text: b.String()}, true, nil
		}
		b.WriteString(part)
	}
}

// splitContinuation reports whether the line opens a continuation: its
// form trimmed of trailing whitespace ends with a single backslash not
// preceded by another backslash. The returned text has the backslash
// stripped.
func splitContinuation(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	n := len(trimmed)
	if n == 0 || trimmed[n-1] != '\\' {
		return line, false
	}
	if n >= 2 && trimmed[n-2] == '\\' {
		return line, false
	}
	return trimmed[:n-1], true
}

func commentMarkers(alternative bool) []string {
	if alternative {
		return []string{"#", ";", "//"}
	}
	return []string{"#"}
}

// hasCommentMarker reports whether a continuation line carries a comment,
// either as a full-line comment or as a space-preceded inline marker.
func hasCommentMarker(line string, alternative bool) bool {
	trimmed := strings.TrimSpace(line)
	for _, marker := range commentMarkers(alternative) {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
		if strings.Contains(line, " "+marker) {
			return true
		}
	}
	return false
}

type lineClass int

const (
	classBlank lineClass = iota
	classComment
	classCandidate
)

// classify inspects the trimmed text of a logical line. Blank and comment
// lines are discarded by the caller with no further processing.
func classify(trimmed string, alternative bool) lineClass {
	if trimmed == "" {
		return classBlank
	}
	for _, marker := range commentMarkers(alternative) {
		if strings.HasPrefix(trimmed, marker) {
			return classComment
		}
	}
	return classCandidate
}
