package dotenv

import "fmt"

// DuplicatePolicy decides which value survives when a key appears more
// than once in the same file. Comparison is case-insensitive.
type DuplicatePolicy int

const (
	UseLast DuplicatePolicy = iota
	UseFirst
	Throw
)

func (p DuplicatePolicy) String() string {
	switch p {
	case UseFirst:
		return "first"
	case Throw:
		return "error"
	default:
		return "last"
	}
}

// ParseDuplicatePolicy maps a CLI flag value to a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "last":
		return UseLast, nil
	case "first":
		return UseFirst, nil
	case "error":
		return Throw, nil
	}
	return UseLast, fmt.Errorf("invalid duplicate policy %q: expected last, first, or error", s)
}

// Options configures a single parse. The zero value disables expansion;
// use DefaultOptions for the documented defaults.
type Options struct {
	ExpandVariables     bool
	AlternativeComments bool
	Duplicates          DuplicatePolicy
	Strict              bool
}

func DefaultOptions() Options {
	return Options{
		ExpandVariables: true,
		Duplicates:      UseLast,
	}
}
