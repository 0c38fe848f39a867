package docxfill

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format - how to format placeholder value
const (
	FormatLower      = ":lower"
	FormatUpper      = ":upper"
	FormatTitle      = ":title"
	FormatCapitalize = ":capitalize"
)

// Formatter - value formatting from placeholder suffix
// {{Key :upper}}
type Formatter struct {
	raw string

	Format string
}

// NewFormatter - take raw ":upper" and make formatter from it.
// Returns nil when raw is not formatter at all.
func NewFormatter(raw string) *Formatter {
	raw = strings.ToLower(strings.TrimSpace(raw))

	// Always must start with ":"
	if !strings.HasPrefix(raw, ":") {
		return nil
	}

	f := &Formatter{
		raw: raw,
	}

	// last known format wins ":lower:upper" --> ":upper"
	for _, part := range strings.Split(raw[1:], ":") {
		switch part {
		case "lower", "upper", "title", "capitalize":
			f.Format = ":" + part
		}
	}

	return f
}

// Apply formatting to the given value
func (f *Formatter) Apply(s string) string {
	if f == nil {
		return s
	}

	switch f.Format {
	case FormatLower:
		return strings.ToLower(s)
	case FormatUpper:
		return strings.ToUpper(s)
	case FormatTitle:
		return cases.Title(language.Und).String(s)
	case FormatCapitalize:
		s = strings.TrimSpace(s)
		if s == "" {
			return s
		}
		lower := cases.Lower(language.Und).String(s)
		r := []rune(lower)
		return cases.Upper(language.Und).String(string(r[0])) + string(r[1:])
	default:
		return s
	}
}

// String - return rebuilt formatter string
func (f *Formatter) String() string {
	if f == nil {
		return ""
	}
	return f.Format
}
