// Package `icalendar` is a typed view over a parsed `VCALENDAR` component
// (RFC 5545), built on the generic tree of the `vobject` package.
//
// # Notes:
//   - Properties without a typed getter stay reachable through Component().
//   - Date-time values are converted on demand; a conversion failure is an
//     error wrapping vobject.ErrDateTime, never a zero time.
//   - VTIMEZONE components are kept in the tree but not interpreted: TZID
//     parameters are resolved through the system zone database.
//   - Every value is written as TEXT, so the `;` and `,` of structured values
//     are escaped: an RRULE comes out as `RRULE:FREQ=WEEKLY\;COUNT=4`. Build
//     reads it back unchanged, but other clients may not.
//
// # Example usage:
//
// Parse
//
//	cal, _ := icalendar.Build(text)
//	for _, event := range cal.Events() {
//	    start, _ := event.Start()
//	    fmt.Println(event.Summary(), start)
//	}
//
// Create
//
//	cal := icalendar.NewCalendar("-//Example//EN")
//	event, _ := icalendar.NewEventBuilder().
//	    SetSummary("Standup").
//	    SetStart(time.Now()).
//	    Build()
//	cal.AddEvent(event)
//	fmt.Print(cal.String())
package icalendar

import (
	"fmt"
	"strings"
	"vobject/src-server/vobject"
)

const (
	RootTag        = "VCALENDAR"
	DefaultVersion = "2.0"
)

type Icalendar struct {
	component *vobject.Component
}

// Parse a string to an Icalendar. Returns an error wrapping
// vobject.ErrWrongRootTag if the text is valid but not an iCalendar object,
// e.g. a vCard.
func Build(text string) (*Icalendar, error) {
	component, err := vobject.ParseComponent(text)
	if err != nil {
		return nil, err
	}
	return FromComponent(component)
}

// Wrap an already parsed component, checking its name
func FromComponent(component *vobject.Component) (*Icalendar, error) {
	if !strings.EqualFold(component.Name, RootTag) {
		return nil, vobject.NewCustomError(vobject.ErrWrongRootTag, "not an iCalendar object", map[string]any{
			"expected": RootTag,
			"found":    component.Name,
		})
	}
	return &Icalendar{component: component}, nil
}

// Initialize an empty calendar with VERSION and PRODID
func NewCalendar(prodID string) *Icalendar {
	return &Icalendar{
		component: vobject.NewComponent(RootTag).
			Push(vobject.NewProperty("VERSION", DefaultVersion)).
			Push(vobject.NewProperty("PRODID", prodID)),
	}
}

func missing(component, name string) error {
	return vobject.NewCustomError(vobject.ErrRequiredPropertyMissing, "", map[string]any{
		"component": component,
		"property":  name,
	})
}

func requireValue(c *vobject.Component, name string) (string, error) {
	property, ok := c.GetOnly(name)
	if !ok {
		return "", missing(c.Name, name)
	}
	return property.RawValue, nil
}

func optionalValue(c *vobject.Component, name string) string {
	property, ok := c.GetOnly(name)
	if !ok {
		return ""
	}
	return property.RawValue
}

// #region Getters

// Get the underlying component
func (c *Icalendar) Component() *vobject.Component {
	return c.component
}

// Get the VERSION, which must be present
func (c *Icalendar) Version() (string, error) {
	return requireValue(c.component, "VERSION")
}

// Get the PRODID, which must be present
func (c *Icalendar) ProdID() (string, error) {
	return requireValue(c.component, "PRODID")
}

// Get the calendar name from the X-WR-CALNAME extension
func (c *Icalendar) GetName() string {
	return optionalValue(c.component, "X-WR-CALNAME")
}

// Get the calendar description from the X-WR-CALDESC extension
func (c *Icalendar) GetDescription() string {
	return optionalValue(c.component, "X-WR-CALDESC")
}

// Get every VEVENT in order
func (c *Icalendar) Events() []*Event {
	children := c.component.ComponentsNamed("VEVENT")
	events := make([]*Event, 0, len(children))
	for _, child := range children {
		events = append(events, &Event{component: child})
	}
	return events
}

// Get every VTODO in order
func (c *Icalendar) Todos() []*Todo {
	children := c.component.ComponentsNamed("VTODO")
	todos := make([]*Todo, 0, len(children))
	for _, child := range children {
		todos = append(todos, &Todo{component: child})
	}
	return todos
}

// #endregion

// #region Setters

// Set the calendar name
func (c *Icalendar) SetName(name string) *Icalendar {
	c.component.Set(vobject.NewProperty("X-WR-CALNAME", name))
	return c
}

// Set the calendar description
func (c *Icalendar) SetDescription(description string) *Icalendar {
	c.component.Set(vobject.NewProperty("X-WR-CALDESC", description))
	return c
}

// #endregion

// Add an event to the calendar. Events sharing a UID are allowed only as
// recurrence overrides, which carry a RECURRENCE-ID.
func (c *Icalendar) AddEvent(event *Event) error {
	uid, err := event.UID()
	if err != nil {
		return fmt.Errorf("(*Icalendar).AddEvent: %w", err)
	}
	_, isOverride := event.component.GetOnly("RECURRENCE-ID")
	for _, existing := range c.Events() {
		existingUID, _ := existing.UID()
		_, existingOverride := existing.component.GetOnly("RECURRENCE-ID")
		if existingUID == uid && !isOverride && !existingOverride {
			return fmt.Errorf("(*Icalendar).AddEvent: duplicate event uid %q", uid)
		}
	}
	c.component.AddComponent(event.component)
	return nil
}

// Marshal the calendar into an iCalendar string
func (c *Icalendar) String() string {
	return vobject.WriteComponent(c.component)
}
