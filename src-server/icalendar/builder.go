package icalendar

import (
	"fmt"
	"net/url"
	"time"
	"vobject/src-server/vobject"

	"github.com/google/uuid"
	"github.com/xyedo/rrule"
)

// Holds everything needed to create a VEVENT. Example usage:
//
//	event, err := icalendar.NewEventBuilder().
//	    SetSummary("Standup").
//	    SetStart(start).
//	    SetDuration(15 * time.Minute).
//	    SetRRule("FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR").
//	    AddAlarm("DISPLAY", -5*time.Minute).
//	    Build()
type EventBuilder struct {
	uid         string
	summary     string
	description string
	location    string
	url         string
	start       time.Time
	end         time.Time
	duration    time.Duration
	allDay      bool
	rrule       string
	organizer   string
	attendees   []vobject.Property
	alarms      []*vobject.Component
	stamp       time.Time
}

// Create a new event builder with a random UID
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		uid:   uuid.NewString(),
		stamp: time.Now(),
	}
}

// Set the event UID
func (b *EventBuilder) SetUID(uid string) *EventBuilder {
	b.uid = uid
	return b
}

// Set the event summary
func (b *EventBuilder) SetSummary(summary string) *EventBuilder {
	b.summary = summary
	return b
}

// Set the event description
func (b *EventBuilder) SetDescription(description string) *EventBuilder {
	b.description = description
	return b
}

// Set the event location
func (b *EventBuilder) SetLocation(location string) *EventBuilder {
	b.location = location
	return b
}

// Set the event URL
func (b *EventBuilder) SetURL(url string) *EventBuilder {
	b.url = url
	return b
}

// Set the event start
func (b *EventBuilder) SetStart(start time.Time) *EventBuilder {
	b.start = start
	return b
}

// Set the event end. Mutually exclusive with SetDuration.
func (b *EventBuilder) SetEnd(end time.Time) *EventBuilder {
	b.end = end
	return b
}

// Set the event duration. Mutually exclusive with SetEnd.
func (b *EventBuilder) SetDuration(duration time.Duration) *EventBuilder {
	b.duration = duration
	return b
}

// Make the event span whole days: start and end are written as dates
func (b *EventBuilder) SetAllDay(allDay bool) *EventBuilder {
	b.allDay = allDay
	return b
}

// Set the recurrence rule, e.g. `FREQ=WEEKLY;COUNT=4`
func (b *EventBuilder) SetRRule(rule string) *EventBuilder {
	b.rrule = rule
	return b
}

// Set the organizer as a mailto address
func (b *EventBuilder) SetOrganizer(email string) *EventBuilder {
	b.organizer = email
	return b
}

// Add an attendee with an optional common name
func (b *EventBuilder) AddAttendee(email, commonName string) *EventBuilder {
	attendee := vobject.NewProperty("ATTENDEE", "mailto:"+email)
	if commonName != "" {
		attendee = attendee.WithParam("CN", commonName)
	}
	b.attendees = append(b.attendees, attendee)
	return b
}

// Add an alarm triggered relative to the start, e.g. -15 minutes
func (b *EventBuilder) AddAlarm(action string, trigger time.Duration) *EventBuilder {
	alarm := vobject.NewComponent("VALARM").
		Push(vobject.NewProperty("ACTION", action)).
		Push(vobject.NewProperty("TRIGGER", formatDuration(trigger)))
	if action == "DISPLAY" {
		alarm.Push(vobject.NewProperty("DESCRIPTION", "Reminder"))
	}
	b.alarms = append(b.alarms, alarm)
	return b
}

func (b *EventBuilder) validate() error {
	switch {
	case b.uid == "":
		return fmt.Errorf("UID is required")
	case b.summary == "":
		return fmt.Errorf("summary is missing")
	case b.start.IsZero():
		return fmt.Errorf("start date is missing")
	case !b.end.IsZero() && b.duration != 0:
		return fmt.Errorf("end date and duration are mutually exclusive")
	case !b.end.IsZero() && b.start.After(b.end):
		return fmt.Errorf("start date must be before end date")
	case b.duration < 0:
		return fmt.Errorf("duration must be non-negative")
	}
	if b.url != "" {
		if _, err := url.ParseRequestURI(b.url); err != nil {
			return fmt.Errorf("url is invalid: %w", err)
		}
	}
	if b.rrule != "" {
		if _, err := rrule.StrToRRule(b.rrule); err != nil {
			return fmt.Errorf("invalid rrule: %w", err)
		}
	}
	return nil
}

func (b *EventBuilder) timeProperty(name string, t time.Time) vobject.Property {
	if b.allDay {
		return vobject.NewProperty(name, TimeToDate(t)).WithParam("VALUE", "DATE")
	}
	return vobject.NewProperty(name, TimeToDateTime(t))
}

// Validate the builder and create the event
func (b *EventBuilder) Build() (*Event, error) {
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("(*EventBuilder).Build: %w", err)
	}

	component := vobject.NewComponent("VEVENT").
		Push(vobject.NewProperty("UID", b.uid)).
		Push(vobject.NewProperty("DTSTAMP", TimeToDateTime(b.stamp))).
		Push(b.timeProperty("DTSTART", b.start))
	switch {
	case !b.end.IsZero():
		component.Push(b.timeProperty("DTEND", b.end))
	case b.duration != 0:
		component.Push(vobject.NewProperty("DURATION", formatDuration(b.duration)))
	}
	component.Push(vobject.NewProperty("SUMMARY", b.summary))
	if b.description != "" {
		component.Push(vobject.NewProperty("DESCRIPTION", b.description))
	}
	if b.location != "" {
		component.Push(vobject.NewProperty("LOCATION", b.location))
	}
	if b.url != "" {
		component.Push(vobject.NewProperty("URL", b.url))
	}
	if b.rrule != "" {
		component.Push(vobject.NewProperty("RRULE", b.rrule))
	}
	if b.organizer != "" {
		component.Push(vobject.NewProperty("ORGANIZER", "mailto:"+b.organizer))
	}
	for _, attendee := range b.attendees {
		component.Push(attendee)
	}
	for _, alarm := range b.alarms {
		component.AddComponent(alarm)
	}

	return &Event{component: component}, nil
}
