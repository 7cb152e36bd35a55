package utils

import (
	"unicode/utf8"
)

const (
	// Line width used by RFC 5545 and RFC 6350, in octets, excluding CRLF
	DefaultFoldWidth = 75
	// Smallest width that still fits a 4-byte rune on a continuation line
	MinFoldWidth = 5
)

// Transform a normal writer into a writer that terminates each logical line
// with CRLF, folding it so no physical line exceeds `width` octets.
// Continuation lines start with a single space. A fold never splits an
// escape sequence nor a multi-byte UTF-8 character. Example:
//
//	var sb strings.Builder
//	writer := FoldWrapper(sb.WriteString, 8)
//	writer("NOTE:Hello, world!")
//	fmt.Println(sb.String())
//
// Output:
//
//	"NOTE:Hel\r\n lo, wor\r\n ld!\r\n"
func FoldWrapper(writer func(string) (int, error), width int) func(string) (int, error) {
	if width < MinFoldWidth {
		width = MinFoldWidth
	}
	return func(str string) (int, error) {
		// write right away if the string is short enough
		if len(str) <= width {
			if i, err := writer(str + "\r\n"); err != nil {
				return i, err
			}
			return len(str), nil
		}

		written := 0
		begin := 0
		capacity := width
		for begin < len(str) {
			end := foldPoint(str, begin, capacity)
			prefix := ""
			if begin > 0 {
				prefix = " "
			}
			if i, err := writer(prefix + str[begin:end] + "\r\n"); err != nil {
				return written + i, err
			}
			written += end - begin
			begin = end
			capacity = width - 1
		}

		return written, nil
	}
}

// Find where the segment starting at begin must end so it holds at most
// capacity octets and doesn't cut a rune or an escape sequence.
func foldPoint(str string, begin, capacity int) int {
	end := begin + capacity
	if end >= len(str) {
		return len(str)
	}

	for end > begin && !utf8.RuneStart(str[end]) {
		end--
	}
	if end > begin && endsInsideEscape(str, end) {
		end--
	}
	if end == begin {
		// a single rune wider than the capacity, only possible below MinFoldWidth
		_, size := utf8.DecodeRuneInString(str[begin:])
		return begin + size
	}
	return end
}

// Whether str[:end] stops right after the backslash of an escape sequence
func endsInsideEscape(str string, end int) bool {
	backslashes := 0
	for i := end - 1; i >= 0 && str[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 1
}
