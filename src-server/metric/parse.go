package metric

import (
	"errors"
	"vobject/src-server/vobject"
)

// Label of a parse outcome for ParseTotal
func ParseResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, vobject.ErrMalformedLine):
		return "malformed_line"
	case errors.Is(err, vobject.ErrTagMismatch):
		return "tag_mismatch"
	case errors.Is(err, vobject.ErrUnterminated):
		return "unterminated"
	case errors.Is(err, vobject.ErrNoRoot):
		return "no_root"
	case errors.Is(err, vobject.ErrTrailingContent):
		return "trailing_content"
	case errors.Is(err, vobject.ErrOrphanProperty):
		return "orphan_property"
	case errors.Is(err, vobject.ErrParser):
		return "parser"
	default:
		return "other"
	}
}
