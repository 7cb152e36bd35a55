package vobject

import "strings"

// A single `KEY=VALUE` modifier of a property, e.g. `TYPE=work`.
type Parameter struct {
	Key   string
	Value string
}

// Ordered parameters of one property. Keys are unique within the set and
// compared case-insensitively.
type Parameters []Parameter

// Get the value of a parameter, ignoring the case of the key
func (p Parameters) Get(key string) (string, bool) {
	for _, param := range p {
		if strings.EqualFold(param.Key, key) {
			return param.Value, true
		}
	}
	return "", false
}

// Check whether a parameter is present
func (p Parameters) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set the value of a parameter. An existing key (any case) keeps its
// position and spelling, otherwise the parameter is appended.
func (p *Parameters) Set(key, value string) {
	for i, param := range *p {
		if strings.EqualFold(param.Key, key) {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Parameter{Key: key, Value: value})
}

// Get the parameter keys in order
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, param := range p {
		keys = append(keys, param.Key)
	}
	return keys
}

// A name/value pair of a component.
//
// RawValue is the value after unescaping and before any semantic
// interpretation: it never holds the two-character escape sequences.
type Property struct {
	Name     string
	Params   Parameters
	RawValue string
}

// Create a property without parameters
func NewProperty(name, rawValue string) Property {
	return Property{
		Name:     name,
		RawValue: rawValue,
	}
}

// Return a copy of the property with the parameter set.
// Returns the copy for chaining.
func (p Property) WithParam(key, value string) Property {
	params := make(Parameters, len(p.Params), len(p.Params)+1)
	copy(params, p.Params)
	params.Set(key, value)
	p.Params = params
	return p
}

// Get a parameter of the property, ignoring the case of the key
func (p Property) Param(key string) (string, bool) {
	return p.Params.Get(key)
}

func (p Property) clone() Property {
	if p.Params != nil {
		params := make(Parameters, len(p.Params))
		copy(params, p.Params)
		p.Params = params
	}
	return p
}
