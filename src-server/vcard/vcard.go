// Package `vcard` is a typed view over a parsed `VCARD` component
// (RFC 6350). It holds no parsing logic of its own: the tree comes from
// the `vobject` package and every getter reads it through GetOnly/GetAll,
// converting each property with FromProperty.
//
// Getters follow the cardinality of the RFC: properties that may appear at
// most once return `(T, bool)`, the others return `[]T`. Cardinality isn't
// validated, a card with two BDAY lines gives the first one.
//
// Example usage:
//
//	card, err := vcard.Build(text)
//	if errors.Is(err, vobject.ErrWrongRootTag) {
//	    // not a vCard at all
//	}
//	for _, email := range card.Emails() {
//	    fmt.Println(email.Raw(), email.Types())
//	}
package vcard

import (
	"fmt"
	"strings"
	"vobject/src-server/vobject"
)

const RootTag = "VCARD"

type Vcard struct {
	component *vobject.Component
}

// Parse a string to a Vcard. Returns an error wrapping
// vobject.ErrWrongRootTag if the text is valid but not a vCard, e.g. an
// iCalendar object.
func Build(text string) (*Vcard, error) {
	component, err := vobject.ParseComponent(text)
	if err != nil {
		return nil, err
	}
	return FromComponent(component)
}

// Parse every card of a multi-card file such as a .vcf export
func BuildAll(text string) ([]*Vcard, error) {
	components, err := vobject.ParseComponents(text)
	if err != nil {
		return nil, err
	}
	cards := make([]*Vcard, 0, len(components))
	for i, component := range components {
		card, err := FromComponent(component)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Wrap an already parsed component, checking its name
func FromComponent(component *vobject.Component) (*Vcard, error) {
	if !strings.EqualFold(component.Name, RootTag) {
		return nil, vobject.NewCustomError(vobject.ErrWrongRootTag, "not a vCard", map[string]any{
			"expected": RootTag,
			"found":    component.Name,
		})
	}
	return &Vcard{component: component}, nil
}

// Get the underlying component
func (v *Vcard) Component() *vobject.Component {
	return v.component
}

// Serialize the card
func (v *Vcard) String() string {
	return vobject.WriteComponent(v.component)
}

func missing(name string) error {
	return vobject.NewCustomError(vobject.ErrRequiredPropertyMissing, "", map[string]any{
		"component": RootTag,
		"property":  name,
	})
}

// The VERSION of the card. It must be present.
func (v *Vcard) Version() (string, error) {
	property, ok := v.component.GetOnly("VERSION")
	if !ok {
		return "", missing("VERSION")
	}
	return property.RawValue, nil
}

// The N of the card. It is required by vCard 3.0; a missing N is reported
// as an error so callers can tell "absent" from "empty".
func (v *Vcard) Name() (Name, error) {
	name, ok := getOnly[Name](v.component, "N")
	if !ok {
		return Name{}, missing("N")
	}
	return name, nil
}

// The FN values of the card.
//
// The property must be present (RFC 6350 section 6.2.1), with a cardinality
// of 1..*. An empty slice means the card is incomplete; it isn't reported as
// an error here.
func (v *Vcard) FullNames() []FullName {
	return getAll[FullName](v.component, "FN")
}

func (v *Vcard) Adrs() []Adr {
	return getAll[Adr](v.component, "ADR")
}

func (v *Vcard) Anniversary() (Anniversary, bool) {
	return getOnly[Anniversary](v.component, "ANNIVERSARY")
}

func (v *Vcard) BDay() (BDay, bool) {
	return getOnly[BDay](v.component, "BDAY")
}

func (v *Vcard) Categories() []Category {
	return getAll[Category](v.component, "CATEGORIES")
}

func (v *Vcard) ClientPidMaps() []ClientPidMap {
	return getAll[ClientPidMap](v.component, "CLIENTPIDMAP")
}

func (v *Vcard) Emails() []Email {
	return getAll[Email](v.component, "EMAIL")
}

func (v *Vcard) Gender() (Gender, bool) {
	return getOnly[Gender](v.component, "GENDER")
}

func (v *Vcard) Geos() []Geo {
	return getAll[Geo](v.component, "GEO")
}

func (v *Vcard) IMPPs() []IMPP {
	return getAll[IMPP](v.component, "IMPP")
}

func (v *Vcard) Keys() []Key {
	return getAll[Key](v.component, "KEY")
}

func (v *Vcard) Kind() (Kind, bool) {
	return getOnly[Kind](v.component, "KIND")
}

func (v *Vcard) Langs() []Lang {
	return getAll[Lang](v.component, "LANG")
}

func (v *Vcard) Logos() []Logo {
	return getAll[Logo](v.component, "LOGO")
}

func (v *Vcard) Members() []Member {
	return getAll[Member](v.component, "MEMBER")
}

func (v *Vcard) NickNames() []NickName {
	return getAll[NickName](v.component, "NICKNAME")
}

func (v *Vcard) Notes() []Note {
	return getAll[Note](v.component, "NOTE")
}

func (v *Vcard) Orgs() []Organization {
	return getAll[Organization](v.component, "ORG")
}

func (v *Vcard) Photos() []Photo {
	return getAll[Photo](v.component, "PHOTO")
}

func (v *Vcard) Proid() (Proid, bool) {
	return getOnly[Proid](v.component, "PRODID")
}

func (v *Vcard) Related() []Related {
	return getAll[Related](v.component, "RELATED")
}

func (v *Vcard) Rev() (Rev, bool) {
	return getOnly[Rev](v.component, "REV")
}

func (v *Vcard) Roles() []Role {
	return getAll[Role](v.component, "ROLE")
}

func (v *Vcard) Sounds() []Sound {
	return getAll[Sound](v.component, "SOUND")
}

func (v *Vcard) Sources() []Source {
	return getAll[Source](v.component, "SOURCE")
}

func (v *Vcard) Tels() []Tel {
	return getAll[Tel](v.component, "TEL")
}

func (v *Vcard) Titles() []Title {
	return getAll[Title](v.component, "TITLE")
}

func (v *Vcard) Tzs() []Tz {
	return getAll[Tz](v.component, "TZ")
}

func (v *Vcard) Uid() (Uid, bool) {
	return getOnly[Uid](v.component, "UID")
}

func (v *Vcard) Urls() []Url {
	return getAll[Url](v.component, "URL")
}

func (v *Vcard) XMLs() []XML {
	return getAll[XML](v.component, "XML")
}
