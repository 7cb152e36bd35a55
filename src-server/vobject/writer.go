package vobject

import (
	"io"
	"strings"
	"vobject/src-server/vobject/utils"
)

// Serializes component trees as folded, CRLF-terminated text.
type Writer struct {
	write func(string) (int, error)
}

// Create a writer folding lines at `width` octets. Widths below
// utils.MinFoldWidth are raised to it.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{
		write: utils.FoldWrapper(func(s string) (int, error) {
			return io.WriteString(w, s)
		}, width),
	}
}

type writeFrame struct {
	component *Component
	next      int
}

// Write the component depth-first: BEGIN line, properties in insertion
// order, children, END line. The traversal keeps its own stack.
func (w *Writer) Write(c *Component) error {
	if err := w.open(c); err != nil {
		return err
	}
	stack := []writeFrame{{component: c}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.component.components) {
			child := top.component.components[top.next]
			top.next++
			if err := w.open(child); err != nil {
				return err
			}
			stack = append(stack, writeFrame{component: child})
			continue
		}
		if _, err := w.write("END:" + top.component.Name); err != nil {
			return err
		}
		stack = stack[:len(stack)-1]
	}
	return nil
}

func (w *Writer) open(c *Component) error {
	if _, err := w.write("BEGIN:" + c.Name); err != nil {
		return err
	}
	for _, property := range c.properties {
		if _, err := w.write(FormatProperty(property)); err != nil {
			return err
		}
	}
	return nil
}

// Format a property as one unfolded content line without the line ending:
//
//	<NAME>[;<KEY>=<VALUE>]*:<escaped value>
func FormatProperty(p Property) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	for _, param := range p.Params {
		sb.WriteByte(';')
		sb.WriteString(param.Key)
		if param.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(formatParamValue(param.Value))
		}
	}
	sb.WriteByte(':')
	sb.WriteString(Escape(p.RawValue))
	return sb.String()
}

// Serialize the component with the conventional 75-octet folding
func WriteComponent(c *Component) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = NewWriter(&sb, utils.DefaultFoldWidth).Write(c)
	return sb.String()
}

// Serialize the component into w with the conventional 75-octet folding
func WriteComponentTo(w io.Writer, c *Component) error {
	return NewWriter(w, utils.DefaultFoldWidth).Write(c)
}
