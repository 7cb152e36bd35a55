package icalendar

import (
	"regexp"
	"strings"
	"time"
	"vobject/src-server/vobject"
)

const (
	dateLayout      = "20060102"
	localTimeLayout = "20060102T150405"
	utcTimeLayout   = "20060102T150405Z"
)

var (
	datePattern      = regexp.MustCompile(`^\d{4}\d{2}\d{2}$`)
	localTimePattern = regexp.MustCompile(`^\d{4}\d{2}\d{2}T\d{2}\d{2}\d{2}$`)
	utcTimePattern   = regexp.MustCompile(`^\d{4}\d{2}\d{2}T\d{2}\d{2}\d{2}Z$`)
)

func dateTimeError(msg string, property vobject.Property, err error) error {
	args := map[string]any{
		"property": property.Name,
		"value":    property.RawValue,
	}
	if err != nil {
		args["err"] = err
	}
	return vobject.NewCustomError(vobject.ErrDateTime, msg, args)
}

// Convert a date or date-time property into a UTC time. For example:
//   - DTSTART;TZID=Europe/Paris:20220101T000000
//   - DTEND:20220101T000000Z
//   - DTSTART;VALUE=DATE:20220101
//
// A date-time without the "Z" suffix is read in the zone named by TZID, or
// in UTC for a floating time without TZID. A date is midnight UTC.
func PropertyToTime(property vobject.Property) (time.Time, error) {
	return valueToTime(property, strings.TrimSpace(property.RawValue))
}

// Same as PropertyToTime for list properties such as EXDATE, whose values
// are comma-separated.
func PropertyToTimes(property vobject.Property) ([]time.Time, error) {
	result := make([]time.Time, 0)
	for _, value := range strings.Split(property.RawValue, ",") {
		t, err := valueToTime(property, strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

func valueToTime(property vobject.Property, value string) (time.Time, error) {
	switch {
	case datePattern.MatchString(value):
		result, err := time.Parse(dateLayout, value)
		if err != nil {
			return time.Time{}, dateTimeError("invalid date", property, err)
		}
		return result.UTC(), nil
	case localTimePattern.MatchString(value):
		location := time.UTC
		if tzid, ok := property.Param("TZID"); ok && tzid != "" {
			var err error
			if location, err = time.LoadLocation(tzid); err != nil {
				return time.Time{}, dateTimeError("invalid TZID", property, err)
			}
		}
		result, err := time.ParseInLocation(localTimeLayout, value, location)
		if err != nil {
			return time.Time{}, dateTimeError("invalid local date-time", property, err)
		}
		return result.UTC(), nil
	case utcTimePattern.MatchString(value):
		result, err := time.Parse(utcTimeLayout, value)
		if err != nil {
			return time.Time{}, dateTimeError("invalid UTC date-time", property, err)
		}
		return result, nil
	default:
		return time.Time{}, dateTimeError("invalid date-time format", property, nil)
	}
}

// Convert a time to an iCalendar UTC date-time: YYYYMMDDTHHMMSSZ
func TimeToDateTime(t time.Time) string {
	return t.UTC().Format(utcTimeLayout)
}

// Convert a time to an iCalendar date: YYYYMMDD
func TimeToDate(t time.Time) string {
	return t.Format(dateLayout)
}
