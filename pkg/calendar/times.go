package calendar

import (
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// ParseDateTime accepts "YYYY-MM-DD HH:MM" or "YYYY-MM-DD". An empty or
// unparsable string yields ok=false; callers decide what the default is.
func ParseDateTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateTimeLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatEventTime renders a provider event boundary as the human shape used
// in result envelopes: "YYYY-MM-DD HH:MM" for timed events, the bare date
// for all-day events.
func FormatEventTime(edt *gcal.EventDateTime) string {
	if edt == nil {
		return ""
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t.Format(dateTimeLayout)
		}
		return edt.DateTime
	}
	return edt.Date
}
