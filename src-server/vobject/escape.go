package vobject

import "strings"

// Resolve the escape sequences of a property value, left to right:
//
//	\\ -> \
//	\; -> ;
//	\, -> ,
//	\n, \N -> newline
//
// A backslash followed by any other character is kept as-is together with
// that character, e.g. `\:` stays `\:`. A trailing lone backslash is kept too.
// Unknown sequences are never an error.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; next {
		case '\\', ';', ',':
			sb.WriteByte(next)
		case 'n', 'N':
			sb.WriteByte('\n')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(next)
		}
		i++
	}
	return sb.String()
}

// Escape the reserved characters of a raw value. The backslash is handled
// first so the output never contains an accidental escape of another
// character. Unescape(Escape(s)) == s for any s.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\;,\n") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case ';':
			sb.WriteString(`\;`)
		case ',':
			sb.WriteString(`\,`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
