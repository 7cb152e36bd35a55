package icalendar_test

import (
	"strings"
	"testing"
	"time"
	"vobject/src-server/icalendar"
	"vobject/src-server/vobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCalendar = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//Example Corp//Calendar//EN",
	"X-WR-CALNAME:Team",
	"BEGIN:VEVENT",
	"UID:weekly@example.com",
	"DTSTART;TZID=Europe/Paris:20240101T100000",
	"DTEND;TZID=Europe/Paris:20240101T110000",
	"SUMMARY:Weekly sync\\, room 4",
	"RRULE:FREQ=WEEKLY;COUNT=4",
	"EXDATE;TZID=Europe/Paris:20240108T100000",
	"BEGIN:VALARM",
	"ACTION:DISPLAY",
	"TRIGGER:-PT15M",
	"END:VALARM",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:single@example.com",
	"DTSTART:20240105T120000Z",
	"DURATION:PT1H30M",
	"SUMMARY:Lunch",
	"END:VEVENT",
	"BEGIN:VTODO",
	"UID:todo@example.com",
	"SUMMARY:Write report",
	"DUE;VALUE=DATE:20240110",
	"STATUS:NEEDS-ACTION",
	"END:VTODO",
	"END:VCALENDAR",
}, "\r\n")

func TestBuild(t *testing.T) {
	cal, err := icalendar.Build(testCalendar)
	require.NoError(t, err)

	version, err := cal.Version()
	require.NoError(t, err)
	assert.Equal(t, "2.0", version)
	prodID, err := cal.ProdID()
	require.NoError(t, err)
	assert.Equal(t, "-//Example Corp//Calendar//EN", prodID)
	assert.Equal(t, "Team", cal.GetName())

	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Weekly sync, room 4", events[0].Summary())

	start, err := events[0].Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), start)

	end, ok, err := events[1].End()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 13, 30, 0, 0, time.UTC), end)

	alarms := events[0].Alarms()
	require.Len(t, alarms, 1)
	assert.Equal(t, "DISPLAY", alarms[0].Action())
	assert.Equal(t, "-PT15M", alarms[0].Trigger())

	todos := cal.Todos()
	require.Len(t, todos, 1)
	due, ok, err := todos[0].Due()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), due)
	assert.Equal(t, "NEEDS-ACTION", todos[0].Status())
}

func TestOccurrences(t *testing.T) {
	cal, err := icalendar.Build(testCalendar)
	require.NoError(t, err)
	events := cal.Events()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	occurrences, err := events[0].Occurrences(from, to)
	require.NoError(t, err)
	// four weekly instances minus the excluded 8th of January
	require.Len(t, occurrences, 3)
	assert.True(t, occurrences[0].Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, occurrences[1].Equal(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))

	single, err := events[1].Occurrences(from, to)
	require.NoError(t, err)
	assert.Len(t, single, 1)

	none, err := events[1].Occurrences(to, to.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOccurrencesAcrossDST(t *testing.T) {
	cal, err := icalendar.Build(strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example Corp//Calendar//EN",
		"BEGIN:VEVENT",
		"UID:dst@example.com",
		"DTSTART;TZID=Europe/Paris:20240324T100000",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n"))
	require.NoError(t, err)

	occurrences, err := cal.Events()[0].Occurrences(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	// 10:00 in Paris on both sides of the switch to summer time
	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 24, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 7, 8, 0, 0, 0, time.UTC),
	}, occurrences)
}

func TestWrongRootTag(t *testing.T) {
	_, err := icalendar.Build("BEGIN:VCARD\r\nFN:Jane Doe\r\nEND:VCARD\r\n")
	assert.ErrorIs(t, err, vobject.ErrWrongRootTag)
}

func TestRequiredProperties(t *testing.T) {
	cal, err := icalendar.Build("BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nSUMMARY:x\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n")
	require.NoError(t, err)

	_, err = cal.Version()
	assert.ErrorIs(t, err, vobject.ErrRequiredPropertyMissing)
	_, err = cal.ProdID()
	assert.ErrorIs(t, err, vobject.ErrRequiredPropertyMissing)

	event := cal.Events()[0]
	_, err = event.UID()
	assert.ErrorIs(t, err, vobject.ErrRequiredPropertyMissing)
	_, err = event.Start()
	assert.ErrorIs(t, err, vobject.ErrRequiredPropertyMissing)
	_, ok, err := event.End()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDateTimeConversion(t *testing.T) {
	for _, tc := range []struct {
		line string
		want time.Time
	}{
		{"DTSTART:20220101T000000Z", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"DTSTART;VALUE=DATE:20220101", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"DTSTART:20220101T080000", time.Date(2022, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"DTSTART;TZID=America/New_York:20220701T080000", time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)},
	} {
		property, err := vobject.ParseProperty(tc.line)
		require.NoError(t, err)
		got, err := icalendar.PropertyToTime(property)
		require.NoError(t, err, tc.line)
		assert.True(t, tc.want.Equal(got), tc.line)
	}

	for _, line := range []string{
		"DTSTART:tomorrow",
		"DTSTART:20221301T000000Z",
		"DTSTART;TZID=Not/AZone:20220101T000000",
	} {
		property, err := vobject.ParseProperty(line)
		require.NoError(t, err)
		_, err = icalendar.PropertyToTime(property)
		assert.ErrorIs(t, err, vobject.ErrDateTime, line)
	}
}

func TestNewCalendar(t *testing.T) {
	cal := icalendar.NewCalendar("-//Test//EN").SetName("Mine")

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	event, err := icalendar.NewEventBuilder().
		SetUID("one@test").
		SetSummary("Standup").
		SetStart(start).
		SetDuration(15 * time.Minute).
		SetRRule("FREQ=DAILY;COUNT=3").
		AddAttendee("jane@example.com", "Doe, Jane").
		AddAlarm("DISPLAY", -5*time.Minute).
		Build()
	require.NoError(t, err)
	require.NoError(t, cal.AddEvent(event))

	duplicate, err := icalendar.NewEventBuilder().SetUID("one@test").SetSummary("again").SetStart(start).Build()
	require.NoError(t, err)
	assert.Error(t, cal.AddEvent(duplicate))

	// structured values are written as escaped text and read back unchanged
	assert.Contains(t, cal.String(), "RRULE:FREQ=DAILY\\;COUNT=3\r\n")

	parsed, err := icalendar.Build(cal.String())
	require.NoError(t, err)
	assert.Equal(t, "Mine", parsed.GetName())

	events := parsed.Events()
	require.Len(t, events, 1)
	occurrences, err := events[0].Occurrences(start, start.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Len(t, occurrences, 3)

	end, ok, err := events[0].End()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, start.Add(15*time.Minute), end)

	attendees := events[0].Attendees()
	require.Len(t, attendees, 1)
	cn, _ := attendees[0].Param("CN")
	assert.Equal(t, "Doe, Jane", cn)

	alarms := events[0].Alarms()
	require.Len(t, alarms, 1)
	assert.Equal(t, "-PT5M", alarms[0].Trigger())
}

func TestEventBuilderValidation(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for name, builder := range map[string]*icalendar.EventBuilder{
		"no summary":   icalendar.NewEventBuilder().SetStart(start),
		"no start":     icalendar.NewEventBuilder().SetSummary("x"),
		"end and dur":  icalendar.NewEventBuilder().SetSummary("x").SetStart(start).SetEnd(start.Add(time.Hour)).SetDuration(time.Hour),
		"end < start":  icalendar.NewEventBuilder().SetSummary("x").SetStart(start).SetEnd(start.Add(-time.Hour)),
		"bad rrule":    icalendar.NewEventBuilder().SetSummary("x").SetStart(start).SetRRule("FREQ=SOMETIMES"),
		"bad url":      icalendar.NewEventBuilder().SetSummary("x").SetStart(start).SetURL("not a url"),
		"negative dur": icalendar.NewEventBuilder().SetSummary("x").SetStart(start).SetDuration(-time.Minute),
		"blank uid":    icalendar.NewEventBuilder().SetUID("").SetSummary("x").SetStart(start),
	} {
		_, err := builder.Build()
		assert.Error(t, err, name)
	}
}

func TestAllDayEvent(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	event, err := icalendar.NewEventBuilder().
		SetSummary("Holiday").
		SetStart(day).
		SetEnd(day.AddDate(0, 0, 1)).
		SetAllDay(true).
		Build()
	require.NoError(t, err)

	dtstart, ok := event.Component().GetOnly("DTSTART")
	require.True(t, ok)
	assert.Equal(t, "20240501", dtstart.RawValue)
	value, _ := dtstart.Param("VALUE")
	assert.Equal(t, "DATE", value)

	start, err := event.Start()
	require.NoError(t, err)
	assert.Equal(t, day, start)
}
