package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPostNotFound is returned by lookups with no matching post. It is not a store failure.
	ErrPostNotFound = errors.New("post not found")

	// ErrAlreadyIngested is returned when Ingest is called on a store that already holds posts.
	ErrAlreadyIngested = errors.New("post store already ingested")

	// ErrDuplicatePost is returned when two posts share a slug on the same calendar day.
	ErrDuplicatePost = errors.New("duplicate post for date and slug")

	// ErrInvalidQuery is returned by Search when the full-text query cannot be parsed.
	ErrInvalidQuery = errors.New("invalid search query")
)

// ParseErrorKind classifies why a post source file could not be parsed.
type ParseErrorKind int

const (
	MalformedDocument ParseErrorKind = iota + 1
	MetadataSyntaxError
	MissingField
	InvalidDateFormat
)

func (k ParseErrorKind) String() string {
	switch k {
	case MalformedDocument:
		return "malformed document"
	case MetadataSyntaxError:
		return "metadata syntax error"
	case MissingField:
		return "missing field"
	case InvalidDateFormat:
		return "invalid date format"
	default:
		return "unknown parse error"
	}
}

// ParseError reports a post source file that could not be parsed.
type ParseError struct {
	Source string
	Kind   ParseErrorKind
	// Fields lists the offending front matter keys for MissingField and InvalidDateFormat.
	Fields []string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not parse blog post %s: %s", e.Source, e.Kind)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseErrorKind reports whether err is a ParseError of the given kind.
func IsParseErrorKind(err error, kind ParseErrorKind) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
