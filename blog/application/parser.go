package application

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/dfryer1193/website/blog/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OnDiskDateFormat is the layout of the date key in post front matter, e.g. "3:00pm 06/15/18".
const OnDiskDateFormat = "3:04pm 01/02/06"

// Blank lines that end the metadata block, in either line ending.
var metadataSeparators = []string{"\n\n", "\r\n\r\n"}

// frontMatter is the schema of the metadata block at the top of every post.
type frontMatter struct {
	Title      string   `yaml:"title" validate:"required"`
	Date       string   `yaml:"date" validate:"required"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

var frontMatterValidator = newFrontMatterValidator()

func newFrontMatterValidator() *validator.Validate {
	v := validator.New()
	// Report front matter keys rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ParsePost splits a post source file into front matter and Markdown content.
// The metadata block ends at the first blank line; everything after it is content, verbatim.
// source identifies the file in returned errors.
func ParsePost(source string, raw []byte) (*domain.ParsedPost, error) {
	metadata, content, found := splitMetadata(string(raw))
	if !found {
		return nil, &domain.ParseError{
			Source: source,
			Kind:   domain.MalformedDocument,
			Err:    errors.New("no blank line separating metadata from content"),
		}
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(strings.ReplaceAll(metadata, "\r\n", "\n")), &fm); err != nil {
		return nil, &domain.ParseError{Source: source, Kind: domain.MetadataSyntaxError, Err: err}
	}
	fm.Title = strings.TrimSpace(fm.Title)
	fm.Date = strings.TrimSpace(fm.Date)

	if err := frontMatterValidator.Struct(fm); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, &domain.ParseError{Source: source, Kind: domain.MetadataSyntaxError, Err: err}
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return nil, &domain.ParseError{Source: source, Kind: domain.MissingField, Fields: fields}
	}

	date, err := parseOnDiskDate(fm.Date)
	if err != nil {
		return nil, &domain.ParseError{
			Source: source,
			Kind:   domain.InvalidDateFormat,
			Fields: []string{"date"},
			Err:    err,
		}
	}

	return &domain.ParsedPost{
		Source:     source,
		Title:      fm.Title,
		Date:       date,
		Categories: nonNil(fm.Categories),
		Tags:       nonNil(fm.Tags),
		Content:    domain.Markdown(content),
	}, nil
}

// splitMetadata cuts text at its first blank line. Content is returned untouched, line endings
// included.
func splitMetadata(text string) (metadata, content string, found bool) {
	at, width := -1, 0
	for _, sep := range metadataSeparators {
		if i := strings.Index(text, sep); i >= 0 && (at < 0 || i < at) {
			at, width = i, len(sep)
		}
	}
	if at < 0 {
		return text, "", false
	}
	return text[:at], text[at+width:], true
}

// parseOnDiskDate accepts the am/pm marker in either case. The result has no zone, it is
// stored as UTC wall clock time.
func parseOnDiskDate(value string) (time.Time, error) {
	return time.Parse(OnDiskDateFormat, strings.ToLower(value))
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
