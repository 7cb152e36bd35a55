package vcard

import (
	"strings"
	"vobject/src-server/vobject"

	"github.com/google/uuid"
)

const DefaultVersion = "4.0"

// Fluent construction of a vCard. Example usage:
//
//	card := vcard.NewBuilder().
//	    WithFullName("Jane Doe").
//	    WithName("Doe", "Jane", "", "", "").
//	    WithEmail("jane@example.com", vobject.Parameter{Key: "TYPE", Value: "work"}).
//	    Build()
type Builder struct {
	component *vobject.Component
}

// Start a card with VERSION 4.0
func NewBuilder() *Builder {
	return &Builder{
		component: vobject.NewComponent(RootTag).
			Push(vobject.NewProperty("VERSION", DefaultVersion)),
	}
}

func property(name, raw string, params []vobject.Parameter) vobject.Property {
	p := vobject.NewProperty(name, raw)
	for _, param := range params {
		p = p.WithParam(param.Key, param.Value)
	}
	return p
}

// Append a property, keeping the existing ones of that name
func (b *Builder) push(name string, params []vobject.Parameter, parts ...string) *Builder {
	b.component.Push(property(name, strings.Join(parts, ";"), params))
	return b
}

// Replace the properties of that name
func (b *Builder) set(name string, params []vobject.Parameter, parts ...string) *Builder {
	b.component.Set(property(name, strings.Join(parts, ";"), params))
	return b
}

// Set the VERSION, 4.0 by default
func (b *Builder) WithVersion(version string) *Builder {
	return b.set("VERSION", nil, version)
}

// Add a FN
func (b *Builder) WithFullName(fullName string, params ...vobject.Parameter) *Builder {
	return b.push("FN", params, fullName)
}

// Set the N
func (b *Builder) WithName(surname, given, additional, prefixes, suffixes string, params ...vobject.Parameter) *Builder {
	return b.set("N", params, surname, given, additional, prefixes, suffixes)
}

// Add an ADR
func (b *Builder) WithAdr(pobox, extended, street, locality, region, code, country string, params ...vobject.Parameter) *Builder {
	return b.push("ADR", params, pobox, extended, street, locality, region, code, country)
}

// Set the BDAY
func (b *Builder) WithBDay(bday string, params ...vobject.Parameter) *Builder {
	return b.set("BDAY", params, bday)
}

// Add an EMAIL
func (b *Builder) WithEmail(email string, params ...vobject.Parameter) *Builder {
	return b.push("EMAIL", params, email)
}

// Add a TEL
func (b *Builder) WithTel(tel string, params ...vobject.Parameter) *Builder {
	return b.push("TEL", params, tel)
}

// Add a NICKNAME
func (b *Builder) WithNickName(nickname string, params ...vobject.Parameter) *Builder {
	return b.push("NICKNAME", params, nickname)
}

// Add an ORG with its units
func (b *Builder) WithOrg(name string, units ...string) *Builder {
	return b.push("ORG", nil, append([]string{name}, units...)...)
}

// Add a TITLE
func (b *Builder) WithTitle(title string, params ...vobject.Parameter) *Builder {
	return b.push("TITLE", params, title)
}

// Add a NOTE
func (b *Builder) WithNote(note string, params ...vobject.Parameter) *Builder {
	return b.push("NOTE", params, note)
}

// Add a URL
func (b *Builder) WithUrl(url string, params ...vobject.Parameter) *Builder {
	return b.push("URL", params, url)
}

// Set the UID
func (b *Builder) WithUid(uid string) *Builder {
	return b.set("UID", nil, uid)
}

// Add any other property
func (b *Builder) WithProperty(property vobject.Property) *Builder {
	b.component.Push(property)
	return b
}

// Finish the card. A random `urn:uuid:` UID is set if none was given.
func (b *Builder) Build() *Vcard {
	if _, ok := b.component.GetOnly("UID"); !ok {
		b.component.Push(vobject.NewProperty("UID", "urn:uuid:"+uuid.NewString()))
	}
	return &Vcard{component: b.component}
}
