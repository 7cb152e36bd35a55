package icalendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Parse a DURATION value such as `PT1H30M`, `P1D` or `-PT15M`
func parseDuration(value string) (time.Duration, error) {
	match := durationPattern.FindStringSubmatch(value)
	if match == nil || value == "P" || strings.HasSuffix(value, "T") {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	found := false
	for i, unit := range units {
		part := match[i+2]
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", value, err)
		}
		total += time.Duration(n) * unit
		found = true
	}
	if !found {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	if match[1] == "-" {
		total = -total
	}
	return total, nil
}

// Format a duration as a DURATION value, e.g. 90 minutes as `PT1H30M`
func formatDuration(d time.Duration) string {
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		sb.WriteString(strconv.FormatInt(int64(days), 10) + "D")
	}
	if d == 0 && days > 0 {
		return sb.String()
	}

	sb.WriteByte('T')
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	if hours > 0 {
		sb.WriteString(strconv.FormatInt(int64(hours), 10) + "H")
	}
	if minutes > 0 {
		sb.WriteString(strconv.FormatInt(int64(minutes), 10) + "M")
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		sb.WriteString(strconv.FormatInt(int64(seconds), 10) + "S")
	}
	return sb.String()
}
