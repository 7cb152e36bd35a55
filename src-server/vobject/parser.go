package vobject

import (
	"strings"
)

type lineKind int

const (
	lineProperty lineKind = iota
	lineBegin
	lineEnd
)

// One logical line after tokenizing: either a BEGIN/END control line with
// its tag, or a property.
type parsedLine struct {
	kind     lineKind
	tag      string
	property Property
}

// Split one logical line. Control lines are recognized first:
//
//	BEGIN:<TAG>
//	END:<TAG>
//
// the keyword in any case, the tag kept verbatim. Anything else is a property
//
//	<NAME>[;<KEY>=<VALUE>]*:<escaped value>
//
// split on the first colon that is neither escaped nor inside a quoted
// parameter value.
func parseLine(line string) (parsedLine, error) {
	if tag, ok := cutControl(line, "BEGIN:"); ok {
		if tag == "" {
			return parsedLine{}, NewCustomError(ErrMalformedLine, "BEGIN without a tag", map[string]any{
				"content": line,
			})
		}
		return parsedLine{kind: lineBegin, tag: tag}, nil
	}
	if tag, ok := cutControl(line, "END:"); ok {
		if tag == "" {
			return parsedLine{}, NewCustomError(ErrMalformedLine, "END without a tag", map[string]any{
				"content": line,
			})
		}
		return parsedLine{kind: lineEnd, tag: tag}, nil
	}

	property, err := parseProperty(line)
	if err != nil {
		return parsedLine{}, err
	}
	return parsedLine{kind: lineProperty, property: property}, nil
}

func cutControl(line, keyword string) (string, bool) {
	if len(line) < len(keyword) || !strings.EqualFold(line[:len(keyword)], keyword) {
		return "", false
	}
	return line[len(keyword):], true
}

// Parse a property line, e.g. `FN;TYPE=work:John\, Doe`
func ParseProperty(line string) (Property, error) {
	return parseProperty(line)
}

func parseProperty(line string) (Property, error) {
	colon := indexUnescaped(line, ':')
	if colon < 0 {
		return Property{}, NewCustomError(ErrMalformedLine, "no colon found", map[string]any{
			"content": line,
		})
	}

	tokens := splitUnescaped(line[:colon], ';')
	name := tokens[0]
	if name == "" {
		return Property{}, NewCustomError(ErrMalformedLine, "property name is empty", map[string]any{
			"content": line,
		})
	}

	property := Property{
		Name:     name,
		RawValue: Unescape(line[colon+1:]),
	}
	for _, token := range tokens[1:] {
		key, value, _ := strings.Cut(token, "=")
		if key == "" {
			return Property{}, NewCustomError(ErrMalformedLine, "parameter key is empty", map[string]any{
				"content": line,
			})
		}
		property.Params.Set(key, decodeCaret(unquote(value)))
	}

	return property, nil
}

// Find the first sep that isn't preceded by an odd number of backslashes and
// isn't inside double quotes.
func indexUnescaped(s string, sep byte) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if quoted {
				continue
			}
			backslashes := 0
			for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				return i
			}
		}
	}
	return -1
}

func splitUnescaped(s string, sep byte) []string {
	var tokens []string
	for {
		i := indexUnescaped(s, sep)
		if i < 0 {
			return append(tokens, s)
		}
		tokens = append(tokens, s[:i])
		s = s[i+1:]
	}
}

// Strip the quotes of a single quoted parameter value. Lists of quoted
// values such as `"a","b"` are kept verbatim.
func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' &&
		!strings.Contains(value[1:len(value)-1], `"`) {
		return value[1 : len(value)-1]
	}
	return value
}

// Format a parameter value so that parsing it back yields the same value.
// Carets and line breaks use the RFC 6868 encoding (`^^`, `^n`), values
// holding a separator or a backslash are quoted. Values whose own double
// quotes would break the line are quoted with every `"` written as `^'`.
func formatParamValue(value string) string {
	plain := encodeCaret(value, false)
	if strings.ContainsAny(plain, ":;,\\") && !strings.Contains(plain, `"`) {
		return `"` + plain + `"`
	}
	if !strings.Contains(plain, `"`) || paramValueRoundTrips(plain, value) {
		return plain
	}
	return `"` + encodeCaret(value, true) + `"`
}

func paramValueRoundTrips(formatted, want string) bool {
	property, err := parseProperty("X;P=" + formatted + ":")
	return err == nil && len(property.Params) == 1 &&
		property.Params[0].Key == "P" && property.Params[0].Value == want
}

func encodeCaret(value string, quotes bool) string {
	if !strings.ContainsAny(value, "^\r\n") && !(quotes && strings.Contains(value, `"`)) {
		return value
	}
	var sb strings.Builder
	sb.Grow(len(value) + 4)
	for i := 0; i < len(value); i++ {
		switch c := value[i]; {
		case c == '^':
			sb.WriteString("^^")
		case c == '\r':
			sb.WriteString("^n")
			if i+1 < len(value) && value[i+1] == '\n' {
				i++
			}
		case c == '\n':
			sb.WriteString("^n")
		case c == '"' && quotes:
			sb.WriteString("^'")
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Resolve the RFC 6868 sequences of a parameter value: `^^`, `^n` and `^'`.
// A caret followed by anything else is kept.
func decodeCaret(value string) string {
	if !strings.Contains(value, "^") {
		return value
	}
	var sb strings.Builder
	sb.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] != '^' || i+1 == len(value) {
			sb.WriteByte(value[i])
			continue
		}
		switch value[i+1] {
		case '^':
			sb.WriteByte('^')
		case 'n', 'N':
			sb.WriteByte('\n')
		case '\'':
			sb.WriteByte('"')
		default:
			sb.WriteByte('^')
			continue
		}
		i++
	}
	return sb.String()
}
