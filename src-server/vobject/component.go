// Package vobject parses and serializes the folded, nested
// `BEGIN:<TAG>...END:<TAG>` property-list grammar shared by iCalendar
// (RFC 5545) and vCard (RFC 6350).
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
// - RFC6350: https://datatracker.ietf.org/doc/html/rfc6350
//
// # Notes:
//   - Parsing is all-or-nothing: a malformed line, a BEGIN/END mismatch or a
//     missing END fails the whole input, no partial tree is returned.
//   - Property and parameter names are matched case-insensitively and stored
//     verbatim.
//   - A component may repeat a property name; the insertion order is kept.
//     Single-value lookups are first-wins.
//   - Long lines are folded at 75 octets when writing.
//
// # Example usage:
//
// Parse a vCard
//
//	card, _ := vobject.ParseComponent("BEGIN:VCARD\r\nFN:Jane Doe\r\nEND:VCARD\r\n")
//	fn, _ := card.GetOnly("FN")
//	fmt.Println(fn.RawValue) // Jane Doe
//
// Serialize it back
//
//	text := vobject.WriteComponent(card)
package vobject

import "strings"

// A named node holding properties and child components, e.g. `VCARD` or
// `VEVENT`. A component owns its children and properties; there are no
// back-references.
//
// A parsed tree is safe for concurrent reads. The mutating methods (Push,
// Set, Pop, AddComponent) require exclusive access to the component.
type Component struct {
	Name string

	properties []Property
	components []*Component
}

// Create an empty component
func NewComponent(name string) *Component {
	return &Component{
		Name: name,
	}
}

// #region Query

// Get the first property with that name (case-insensitive). The grammar
// allows duplicates; the first one in insertion order wins.
func (c *Component) GetOnly(name string) (Property, bool) {
	for _, property := range c.properties {
		if strings.EqualFold(property.Name, name) {
			return property.clone(), true
		}
	}
	return Property{}, false
}

// Get all properties with that name (case-insensitive) in insertion order.
// Returns an empty slice if absent.
func (c *Component) GetAll(name string) []Property {
	result := make([]Property, 0)
	for _, property := range c.properties {
		if strings.EqualFold(property.Name, name) {
			result = append(result, property.clone())
		}
	}
	return result
}

// Get every property of the component in insertion order
func (c *Component) Properties() []Property {
	result := make([]Property, 0, len(c.properties))
	for _, property := range c.properties {
		result = append(result, property.clone())
	}
	return result
}

// Get the child components in order
func (c *Component) Components() []*Component {
	result := make([]*Component, len(c.components))
	copy(result, c.components)
	return result
}

// Get the child components with that name (case-insensitive)
func (c *Component) ComponentsNamed(name string) []*Component {
	result := make([]*Component, 0)
	for _, child := range c.components {
		if strings.EqualFold(child.Name, name) {
			result = append(result, child)
		}
	}
	return result
}

// #endregion

// #region Mutation

// Append a property, keeping any existing property of the same name.
// Returns itself for chaining.
func (c *Component) Push(property Property) *Component {
	c.properties = append(c.properties, property.clone())
	return c
}

// Replace every property of that name with a single one. The new property
// takes the position of the first replaced one, or is appended.
// Returns itself for chaining.
func (c *Component) Set(property Property) *Component {
	result := make([]Property, 0, len(c.properties)+1)
	placed := false
	for _, existing := range c.properties {
		if !strings.EqualFold(existing.Name, property.Name) {
			result = append(result, existing)
			continue
		}
		if !placed {
			result = append(result, property.clone())
			placed = true
		}
	}
	if !placed {
		result = append(result, property.clone())
	}
	c.properties = result
	return c
}

// Remove and return the last property with that name
func (c *Component) Pop(name string) (Property, bool) {
	for i := len(c.properties) - 1; i >= 0; i-- {
		if strings.EqualFold(c.properties[i].Name, name) {
			property := c.properties[i]
			c.properties = append(c.properties[:i], c.properties[i+1:]...)
			return property, true
		}
	}
	return Property{}, false
}

// Append a child component.
// Returns itself for chaining.
func (c *Component) AddComponent(child *Component) *Component {
	c.components = append(c.components, child)
	return c
}

// #endregion
