package icalendar

import (
	"fmt"
	"strings"
	"time"
	"vobject/src-server/vobject"

	"github.com/xyedo/rrule"
)

// A VEVENT of a calendar
type Event struct {
	component *vobject.Component
}

// Wrap an existing VEVENT component
func EventFromComponent(component *vobject.Component) (*Event, error) {
	if !strings.EqualFold(component.Name, "VEVENT") {
		return nil, vobject.NewCustomError(vobject.ErrWrongRootTag, "not an event", map[string]any{
			"expected": "VEVENT",
			"found":    component.Name,
		})
	}
	return &Event{component: component}, nil
}

// #region Getters

// Get the underlying component
func (e *Event) Component() *vobject.Component {
	return e.component
}

// Get the event UID, which must be present
func (e *Event) UID() (string, error) {
	return requireValue(e.component, "UID")
}

// Get the event summary
func (e *Event) Summary() string {
	return optionalValue(e.component, "SUMMARY")
}

// Get the event description
func (e *Event) Description() string {
	return optionalValue(e.component, "DESCRIPTION")
}

// Get the event location
func (e *Event) Location() string {
	return optionalValue(e.component, "LOCATION")
}

// Get the event URL
func (e *Event) URL() string {
	return optionalValue(e.component, "URL")
}

// Get the event sequence, 0 when absent
func (e *Event) Sequence() (int, error) {
	property, ok := e.component.GetOnly("SEQUENCE")
	if !ok {
		return 0, nil
	}
	var sequence int
	if _, err := fmt.Sscanf(property.RawValue, "%d", &sequence); err != nil || sequence < 0 {
		return 0, fmt.Errorf("(*Event).Sequence: invalid SEQUENCE %q", property.RawValue)
	}
	return sequence, nil
}

// Get the start date in UTC. DTSTART must be present.
func (e *Event) Start() (time.Time, error) {
	property, ok := e.component.GetOnly("DTSTART")
	if !ok {
		return time.Time{}, missing(e.component.Name, "DTSTART")
	}
	return PropertyToTime(property)
}

// Get the end date in UTC, from DTEND or DTSTART plus DURATION. ok is false
// when the event has neither.
func (e *Event) End() (end time.Time, ok bool, err error) {
	if property, found := e.component.GetOnly("DTEND"); found {
		end, err = PropertyToTime(property)
		return end, err == nil, err
	}
	property, found := e.component.GetOnly("DURATION")
	if !found {
		return time.Time{}, false, nil
	}
	duration, err := parseDuration(property.RawValue)
	if err != nil {
		return time.Time{}, false, vobject.NewCustomError(vobject.ErrDateTime, "invalid DURATION", map[string]any{
			"value": property.RawValue,
			"err":   err,
		})
	}
	start, err := e.Start()
	if err != nil {
		return time.Time{}, false, err
	}
	return start.Add(duration), true, nil
}

// Get the RECURRENCE-ID of an override, ok is false for a master event
func (e *Event) RecurrenceID() (recurrenceID time.Time, ok bool, err error) {
	property, found := e.component.GetOnly("RECURRENCE-ID")
	if !found {
		return time.Time{}, false, nil
	}
	recurrenceID, err = PropertyToTime(property)
	return recurrenceID, err == nil, err
}

// Get the recurrence set built from DTSTART, RRULE, RDATE and EXDATE.
// Returns nil without error when the event doesn't recur.
func (e *Event) RecurrenceSet() (*rrule.Set, error) {
	rrules := e.component.GetAll("RRULE")
	if len(rrules) == 0 {
		return nil, nil
	}
	if _, isOverride := e.component.GetOnly("RECURRENCE-ID"); isOverride {
		return nil, fmt.Errorf("(*Event).RecurrenceSet: RRULE and RECURRENCE-ID are mutually exclusive")
	}
	start, err := e.Start()
	if err != nil {
		return nil, fmt.Errorf("(*Event).RecurrenceSet: RRULE requires a start date: %w", err)
	}

	// a zoned start recurs on local wall-clock time, DST included
	var sb strings.Builder
	startProperty, _ := e.component.GetOnly("DTSTART")
	tzid, _ := startProperty.Param("TZID")
	if localStart := strings.TrimSpace(startProperty.RawValue); tzid != "" && localTimePattern.MatchString(localStart) {
		sb.WriteString("DTSTART;TZID=" + tzid + ":" + localStart)
	} else {
		sb.WriteString("DTSTART:" + TimeToDateTime(start))
	}
	for _, property := range rrules {
		sb.WriteString("\nRRULE:" + property.RawValue)
	}
	for _, name := range []string{"RDATE", "EXDATE"} {
		for _, property := range e.component.GetAll(name) {
			times, err := PropertyToTimes(property)
			if err != nil {
				return nil, err
			}
			for _, t := range times {
				sb.WriteString("\n" + name + ":" + TimeToDateTime(t))
			}
		}
	}

	set, err := rrule.StrToRRuleSet(sb.String())
	if err != nil {
		return nil, fmt.Errorf("(*Event).RecurrenceSet: invalid recurrence: %w", err)
	}
	return set, nil
}

// Get the start of every occurrence within [after, before], in UTC. A
// non-recurring event has its start as the only occurrence.
func (e *Event) Occurrences(after, before time.Time) ([]time.Time, error) {
	set, err := e.RecurrenceSet()
	if err != nil {
		return nil, err
	}
	if set != nil {
		occurrences := set.Between(after, before, true)
		for i := range occurrences {
			occurrences[i] = occurrences[i].UTC()
		}
		return occurrences, nil
	}
	start, err := e.Start()
	if err != nil {
		return nil, err
	}
	if start.Before(after) || start.After(before) {
		return []time.Time{}, nil
	}
	return []time.Time{start}, nil
}

// Get the VALARM components of the event
func (e *Event) Alarms() []*Alarm {
	children := e.component.ComponentsNamed("VALARM")
	alarms := make([]*Alarm, 0, len(children))
	for _, child := range children {
		alarms = append(alarms, &Alarm{component: child})
	}
	return alarms
}

// Get the ATTENDEE properties
func (e *Event) Attendees() []vobject.Property {
	return e.component.GetAll("ATTENDEE")
}

// #endregion

// A VALARM of an event
type Alarm struct {
	component *vobject.Component
}

// Get the alarm action, e.g. DISPLAY or AUDIO
func (a *Alarm) Action() string {
	return optionalValue(a.component, "ACTION")
}

// Get the raw alarm trigger, e.g. -PT15M
func (a *Alarm) Trigger() string {
	return optionalValue(a.component, "TRIGGER")
}

// A VTODO of a calendar
type Todo struct {
	component *vobject.Component
}

// Get the underlying component
func (t *Todo) Component() *vobject.Component {
	return t.component
}

// Get the todo UID, which must be present
func (t *Todo) UID() (string, error) {
	return requireValue(t.component, "UID")
}

// Get the todo summary
func (t *Todo) Summary() string {
	return optionalValue(t.component, "SUMMARY")
}

// Get the todo status, e.g. NEEDS-ACTION or COMPLETED
func (t *Todo) Status() string {
	return optionalValue(t.component, "STATUS")
}

// Get the due date in UTC, ok is false when DUE is absent
func (t *Todo) Due() (due time.Time, ok bool, err error) {
	property, found := t.component.GetOnly("DUE")
	if !found {
		return time.Time{}, false, nil
	}
	due, err = PropertyToTime(property)
	return due, err == nil, err
}
