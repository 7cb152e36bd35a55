package vobject

import (
	"io"
	"strings"
)

// Assembles components from logical lines with an explicit stack of
// in-progress components, so nesting depth only costs heap memory.
type treeBuilder struct {
	lines *unfolder
	stack []*Component
}

func newTreeBuilder(r io.Reader) *treeBuilder {
	return &treeBuilder{
		lines: newUnfolder(r),
	}
}

// Read lines until one root component is complete. Returns nil and no error
// when the input is exhausted before any line.
func (b *treeBuilder) nextRoot() (*Component, error) {
	for {
		line, ok, err := b.lines.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			if len(b.stack) > 0 {
				top := b.stack[len(b.stack)-1]
				return nil, NewCustomError(ErrUnterminated, "missing END:"+top.Name, map[string]any{
					"component": top.Name,
					"depth":     len(b.stack),
				})
			}
			return nil, nil
		}

		parsed, err := parseLine(line.content)
		if err != nil {
			if customErr, ok := err.(*CustomError); ok {
				customErr.args["line"] = line.number
			}
			return nil, err
		}

		switch parsed.kind {
		case lineBegin:
			b.stack = append(b.stack, NewComponent(parsed.tag))

		case lineEnd:
			if len(b.stack) == 0 {
				return nil, NewCustomError(ErrTagMismatch, "END without BEGIN", map[string]any{
					"line":     line.number,
					"expected": "",
					"found":    parsed.tag,
				})
			}
			top := b.stack[len(b.stack)-1]
			if !strings.EqualFold(top.Name, parsed.tag) {
				return nil, NewCustomError(ErrTagMismatch, "unexpected END:"+parsed.tag, map[string]any{
					"line":     line.number,
					"expected": top.Name,
					"found":    parsed.tag,
				})
			}
			b.stack = b.stack[:len(b.stack)-1]
			if len(b.stack) == 0 {
				return top, nil
			}
			b.stack[len(b.stack)-1].AddComponent(top)

		case lineProperty:
			if len(b.stack) == 0 {
				return nil, NewCustomError(ErrOrphanProperty, "", map[string]any{
					"line":    line.number,
					"content": line.content,
				})
			}
			top := b.stack[len(b.stack)-1]
			top.properties = append(top.properties, parsed.property)
		}
	}
}

// Parse text holding exactly one root component, e.g. a single vCard or an
// iCalendar object. Empty input and anything after the root's END line are
// errors; no partial tree is ever returned.
func ParseComponent(text string) (*Component, error) {
	return ParseComponentReader(strings.NewReader(text))
}

// Same as ParseComponent, unfolding lines lazily while reading r
func ParseComponentReader(r io.Reader) (*Component, error) {
	b := newTreeBuilder(r)
	root, err := b.nextRoot()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, NewCustomError(ErrNoRoot, "input is empty", nil)
	}

	line, ok, err := b.lines.next()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, NewCustomError(ErrTrailingContent, "", map[string]any{
			"line":    line.number,
			"content": line.content,
			"root":    root.Name,
		})
	}
	return root, nil
}

// Parse text holding any number (at least one) of consecutive root
// components, e.g. a .vcf file with several cards.
func ParseComponents(text string) ([]*Component, error) {
	return ParseComponentsReader(strings.NewReader(text))
}

// Same as ParseComponents, unfolding lines lazily while reading r
func ParseComponentsReader(r io.Reader) ([]*Component, error) {
	b := newTreeBuilder(r)
	roots := make([]*Component, 0)
	for {
		root, err := b.nextRoot()
		if err != nil {
			return nil, err
		}
		if root == nil {
			break
		}
		roots = append(roots, root)
	}
	if len(roots) == 0 {
		return nil, NewCustomError(ErrNoRoot, "input is empty", nil)
	}
	return roots, nil
}
