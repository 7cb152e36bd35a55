package model

import (
	"strconv"
	"strings"
	"vobject/src-server/vobject"

	"github.com/uptrace/bun"
)

const (
	insertBatchSize = 500
	// components nested deeper share the path of their ancestor at this depth
	maxPathDepth = 32
)

// One property of a stored document, for lookups by name and value
type DocumentProperty struct {
	bun.BaseModel `bun:"table:document_properties"`

	ID         int64  `bun:"id,pk,autoincrement"`
	DocumentID string `bun:"document_id,notnull"` // required
	Path       string `bun:"path,notnull"`        // e.g. VCALENDAR/VEVENT[1]
	Name       string `bun:"name,notnull"`        // upper-cased
	Value      string `bun:"value,notnull"`       // unescaped

	Document *Document `bun:"rel:belongs-to,join:document_id=id"`
}

type indexFrame struct {
	component *vobject.Component
	path      string
	depth     int
}

// Flatten every property of the tree, depth-first, properties of a component
// before those of its children
func indexComponent(documentID string, root *vobject.Component) []*DocumentProperty {
	result := make([]*DocumentProperty, 0)
	stack := []indexFrame{{component: root, path: strings.ToUpper(root.Name)}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, property := range frame.component.Properties() {
			result = append(result, &DocumentProperty{
				DocumentID: documentID,
				Path:       frame.path,
				Name:       strings.ToUpper(property.Name),
				Value:      property.RawValue,
			})
		}

		// children pushed in reverse so the first child is indexed first
		seen := make(map[string]int)
		children := frame.component.Components()
		frames := make([]indexFrame, len(children))
		for i, child := range children {
			name := strings.ToUpper(child.Name)
			path := frame.path
			switch {
			case frame.depth < maxPathDepth:
				path += "/" + name + "[" + strconv.Itoa(seen[name]) + "]"
			case frame.depth == maxPathDepth:
				path += "/..."
			}
			frames[i] = indexFrame{component: child, path: path, depth: frame.depth + 1}
			seen[name]++
		}
		for i := len(frames) - 1; i >= 0; i-- {
			stack = append(stack, frames[i])
		}
	}
	return result
}
