package dotenv

import "fmt"

// Stable diagnostic codes consumed by tooling and tests.
const (
	CodeMissingAssignment = "ENV001"
	CodeDuplicateKey      = "ENV002"
	CodeInvalidKey        = "ENV003"
	CodeUnclosedQuote     = "ENV004"
	CodeBadContinuation   = "ENV005"
	CodeMultilineKey      = "ENV006"
)

// ParseError reports a single positional diagnostic. Parsing stops at the
// first error; partial results are never returned alongside one.
type ParseError struct {
	Code    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
}

func parseErrorf(code string, line int, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}
