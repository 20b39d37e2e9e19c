package utils

import "time"

const DateLayout = "2006-01-02"

// Location is the configured server timezone, UTC if unset or unknown.
func Location() *time.Location {
	if EnvConfig == nil || EnvConfig.Server.Timezone == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(EnvConfig.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

// DayOf returns the calendar day of t in the server timezone as a UTC
// midnight, the form dates are stored in.
func DayOf(t time.Time) time.Time {
	local := t.In(Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date into the stored form.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// CalendarDay normalizes a stored date to UTC midnight without shifting it
// across timezones.
func CalendarDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysSince counts calendar days from a stored day to the day of now.
func DaysSince(day, now time.Time) int {
	return int(DayOf(now).Sub(CalendarDay(day)).Hours() / 24)
}
