package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"already-slugged", "already-slugged"},
		{"Two  Spaces", "two--spaces"},
		{"Rust & Go: A Tale", "rust-&-go:-a-tale"},
		{"ÜBER Café", "über-café"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := Slug(tt.title)
			if got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.expected)
			}
			want := strings.ReplaceAll(strings.ToLower(tt.title), " ", "-")
			if got != want {
				t.Errorf("Slug(%q) = %q, want lower+replace %q", tt.title, got, want)
			}
			if again := Slug(tt.title); again != got {
				t.Errorf("Slug(%q) not stable: %q then %q", tt.title, got, again)
			}
		})
	}
}

func TestPostURL(t *testing.T) {
	date := time.Date(2018, time.June, 5, 15, 0, 0, 0, time.UTC)
	got := PostURL(date, "hello-world")
	if got != "/blog/2018/6/5/hello-world" {
		t.Errorf("PostURL() = %q, want %q", got, "/blog/2018/6/5/hello-world")
	}
}

func TestParsedPostURL(t *testing.T) {
	p := &ParsedPost{
		Title: "Hello World",
		Date:  time.Date(2018, time.June, 15, 15, 0, 0, 0, time.UTC),
	}
	if p.Slug() != "hello-world" {
		t.Errorf("Slug() = %q, want %q", p.Slug(), "hello-world")
	}
	if p.URL() != "/blog/2018/6/15/hello-world" {
		t.Errorf("URL() = %q, want %q", p.URL(), "/blog/2018/6/15/hello-world")
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ParseError{
		Source: "blog/first.md",
		Kind:   MissingField,
		Fields: []string{"title", "date"},
		Err:    cause,
	})

	msg := err.Error()
	for _, want := range []string{"blog/first.md", "missing field", "title, date", "boom"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("expected ParseError to unwrap to its cause")
	}
	if !IsParseErrorKind(err, MissingField) {
		t.Error("IsParseErrorKind(MissingField) = false, want true")
	}
	if IsParseErrorKind(err, MalformedDocument) {
		t.Error("IsParseErrorKind(MalformedDocument) = true, want false")
	}
	if IsParseErrorKind(cause, MissingField) {
		t.Error("IsParseErrorKind on a plain error = true, want false")
	}
}
