package docxfill

import "strings"

// Placeholder delimiters
const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
)

// RepeatRowMarker - table row holding this marker is repeated
// for every item of RepeatKey collection
const RepeatRowMarker = "{{!REPEATROW}}"

// Placeholder .. {{Key}}
func Placeholder(key string) string {
	return placeholderOpen + key + placeholderClose
}

// Substitute replaces every {{key}} in text with fields[key].
// Text is scanned once from left to right and every placeholder is
// resolved on its own, so inserted values are never scanned again.
// Unknown placeholders are left as is.
//
// Placeholder may carry formatter: {{key :upper}}
func Substitute(text string, fields map[string]string) string {
	if len(fields) == 0 || !strings.Contains(text, placeholderOpen) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	rest := text
	for {
		start := strings.Index(rest, placeholderOpen)
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+len(placeholderOpen):], placeholderClose)
		if end == -1 {
			break
		}
		inner := rest[start+len(placeholderOpen) : start+len(placeholderOpen)+end]

		value, ok := resolvePlaceholder(inner, fields)
		if !ok {
			// not ours, move by one char so "{{{{Key}}" still finds "{{Key}}"
			sb.WriteString(rest[:start+1])
			rest = rest[start+1:]
			continue
		}

		sb.WriteString(rest[:start])
		sb.WriteString(value)
		rest = rest[start+len(placeholderOpen)+end+len(placeholderClose):]
	}
	sb.WriteString(rest)

	return sb.String()
}

// Value for placeholder inner part "Key" or "Key :format"
func resolvePlaceholder(inner string, fields map[string]string) (string, bool) {
	if v, ok := fields[inner]; ok {
		return v, true
	}

	// {{Key :upper}}
	i := strings.LastIndex(inner, " :")
	if i == -1 {
		return "", false
	}
	v, ok := fields[inner[:i]]
	if !ok {
		return "", false
	}
	f := NewFormatter(inner[i+1:])
	if f == nil || f.Format == "" {
		return "", false
	}
	return f.Apply(v), true
}

// HaveParams - does text contain anything looking like placeholder
func HaveParams(text string) bool {
	start := strings.Index(text, placeholderOpen)
	return start != -1 && strings.Contains(text[start:], placeholderClose)
}

// Replace placeholders of text unit, unit is written only when text changes
func substituteUnit(unit TextUnit, fields map[string]string) bool {
	text := unit.Text()
	if !HaveParams(text) {
		return false
	}
	newText := Substitute(text, fields)
	if newText == text {
		return false
	}
	unit.SetText(newText)
	return true
}
