package vobject

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxPhysicalLine = 4 * 1024 * 1024

// A logical (unfolded) line and the physical line number it starts at.
type logicalLine struct {
	content string
	number  int
}

// Turn physical lines into logical lines, one at a time. A physical line
// starting with a space or a tab continues the previous logical line: that
// single whitespace character is dropped and the rest is appended without a
// line break. Blank lines at the end of the input are dropped; a blank line
// followed by more content comes out as an empty logical line.
//
// The sequence is lazy and can't be restarted.
type unfolder struct {
	scanner *bufio.Scanner

	queue    []logicalLine
	current  *strings.Builder
	start    int
	blanks   []int
	physical int
	done     bool
}

func newUnfolder(r io.Reader) *unfolder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxPhysicalLine)
	return &unfolder{
		scanner: scanner,
	}
}

// Get the next logical line. ok is false once the input is exhausted.
func (u *unfolder) next() (line logicalLine, ok bool, err error) {
	for len(u.queue) == 0 && !u.done {
		if err := u.step(); err != nil {
			return logicalLine{}, false, err
		}
	}
	if len(u.queue) == 0 {
		return logicalLine{}, false, nil
	}
	line = u.queue[0]
	u.queue = u.queue[1:]
	return line, true, nil
}

// Read one physical line, queueing whatever logical lines it completes
func (u *unfolder) step() error {
	if !u.scanner.Scan() {
		if err := u.scanner.Err(); err != nil {
			return fmt.Errorf("can't read line %d: %w", u.physical+1, err)
		}
		u.flush()
		u.done = true
		return nil
	}
	u.physical++
	raw := u.scanner.Text()
	if u.physical == 1 {
		raw = strings.TrimPrefix(raw, "\ufeff")
	}

	if raw == "" {
		u.blanks = append(u.blanks, u.physical)
		return nil
	}

	if len(u.blanks) > 0 {
		u.flush()
		for _, number := range u.blanks {
			u.queue = append(u.queue, logicalLine{number: number})
		}
		u.blanks = u.blanks[:0]
		if isContinuation(raw) {
			u.begin(raw[1:])
			return nil
		}
	}

	if isContinuation(raw) && u.current != nil {
		u.current.WriteString(raw[1:])
		return nil
	}

	u.flush()
	u.begin(raw)
	return nil
}

func (u *unfolder) begin(content string) {
	u.current = new(strings.Builder)
	u.current.WriteString(content)
	u.start = u.physical
}

func (u *unfolder) flush() {
	if u.current != nil {
		u.queue = append(u.queue, logicalLine{content: u.current.String(), number: u.start})
		u.current = nil
	}
}

func isContinuation(raw string) bool {
	return len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t')
}

// Unfold the text into its logical lines. Both CRLF and LF line endings are
// accepted.
func Unfold(text string) ([]string, error) {
	u := newUnfolder(strings.NewReader(text))
	lines := make([]string, 0)
	for {
		line, ok, err := u.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return lines, nil
		}
		lines = append(lines, line.content)
	}
}
