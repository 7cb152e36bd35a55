package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// English date parser, e.g. "tomorrow at 5pm" or "next friday 10:30"
func NewWhenParser() *when.Parser {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return parser
}

// Resolve a natural language date relative to `base`
func ParseNaturalTime(parser *when.Parser, text string, base time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("ParseNaturalTime: text is blank")
	}
	result, err := parser.Parse(text, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseNaturalTime: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("ParseNaturalTime: no date found in %q", text)
	}
	return result.Time, nil
}
