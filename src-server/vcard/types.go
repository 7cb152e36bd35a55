package vcard

import (
	"strings"
	"vobject/src-server/vobject"
)

// The raw value and parameters of one vCard property. Every semantic type
// below embeds it, so they all share Raw, Params and Param.
type Value struct {
	raw    string
	params vobject.Parameters
}

// Get the unescaped value, not interpreted any further
func (v Value) Raw() string {
	return v.raw
}

// Get a copy of the parameters
func (v Value) Params() vobject.Parameters {
	if v.params == nil {
		return nil
	}
	params := make(vobject.Parameters, len(v.params))
	copy(params, v.params)
	return params
}

// Get a parameter, ignoring the case of the key
func (v Value) Param(key string) (string, bool) {
	return v.params.Get(key)
}

// Get the TYPE parameter values, e.g. `TYPE=work,voice` gives [work voice]
func (v Value) Types() []string {
	raw, ok := v.params.Get("TYPE")
	if !ok || raw == "" {
		return nil
	}
	types := strings.Split(strings.Trim(raw, `"`), ",")
	for i := range types {
		types[i] = strings.TrimSpace(types[i])
	}
	return types
}

type (
	Adr          struct{ Value }
	Anniversary  struct{ Value }
	BDay         struct{ Value }
	Category     struct{ Value }
	ClientPidMap struct{ Value }
	Email        struct{ Value }
	FullName     struct{ Value }
	Gender       struct{ Value }
	Geo          struct{ Value }
	IMPP         struct{ Value }
	Key          struct{ Value }
	Kind         struct{ Value }
	Lang         struct{ Value }
	Logo         struct{ Value }
	Member       struct{ Value }
	Name         struct{ Value }
	NickName     struct{ Value }
	Note         struct{ Value }
	Organization struct{ Value }
	Photo        struct{ Value }
	Proid        struct{ Value }
	Related      struct{ Value }
	Rev          struct{ Value }
	Role         struct{ Value }
	Sound        struct{ Value }
	Source       struct{ Value }
	Tel          struct{ Value }
	Title        struct{ Value }
	Tz           struct{ Value }
	Uid          struct{ Value }
	Url          struct{ Value }
	XML          struct{ Value }
)

// Any type constructible from a property
type valueType interface {
	~struct{ Value }
}

// Build a semantic value out of a generic property
func FromProperty[T valueType](p vobject.Property) T {
	return T(struct{ Value }{Value{raw: p.RawValue, params: p.Params}})
}

func getAll[T valueType](c *vobject.Component, name string) []T {
	properties := c.GetAll(name)
	result := make([]T, 0, len(properties))
	for _, property := range properties {
		result = append(result, FromProperty[T](property))
	}
	return result
}

func getOnly[T valueType](c *vobject.Component, name string) (T, bool) {
	property, ok := c.GetOnly(name)
	if !ok {
		var zero T
		return zero, false
	}
	return FromProperty[T](property), true
}

// #region Structured values

// A structured N value: `surname;given;additional;prefixes;suffixes`.
// The parts are read from the semicolon-separated raw value.
func (n Name) Plain() string {
	return n.raw
}

func (n Name) part(i int) (string, bool) {
	parts := strings.Split(n.raw, ";")
	if i >= len(parts) {
		return "", false
	}
	return parts[i], true
}

func (n Name) Surname() (string, bool) {
	return n.part(0)
}

// Alias for Name.Surname
func (n Name) FamilyName() (string, bool) {
	return n.Surname()
}

func (n Name) GivenName() (string, bool) {
	return n.part(1)
}

func (n Name) AdditionalNames() (string, bool) {
	return n.part(2)
}

func (n Name) HonorificPrefixes() (string, bool) {
	return n.part(3)
}

func (n Name) HonorificSuffixes() (string, bool) {
	return n.part(4)
}

// A structured ADR value:
// `pobox;extended;street;locality;region;code;country`
func (a Adr) part(i int) string {
	parts := strings.Split(a.raw, ";")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

func (a Adr) POBox() string {
	return a.part(0)
}

func (a Adr) Extended() string {
	return a.part(1)
}

func (a Adr) Street() string {
	return a.part(2)
}

func (a Adr) Locality() string {
	return a.part(3)
}

func (a Adr) Region() string {
	return a.part(4)
}

func (a Adr) PostalCode() string {
	return a.part(5)
}

func (a Adr) Country() string {
	return a.part(6)
}

// Organization name followed by its units, `name;unit;unit...`
func (o Organization) Units() []string {
	return strings.Split(o.raw, ";")
}

// #endregion
