package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// CreateEvent adds a new event. all_day events use date-only boundaries;
// timed events carry the calendar's timezone (falling back to a fixed zone
// when the provider does not expose one).
func (t *Tools) CreateEvent(ctx context.Context, args map[string]any) (map[string]any, error) {
	startDT, startOK := ParseDateTime(stringArg(args, "start_time", ""))
	endDT, endOK := ParseDateTime(stringArg(args, "end_time", ""))
	if !startOK || !endOK {
		return errorEnvelope(
			"Invalid date/time format. Please use formats like 'YYYY-MM-DD HH:MM' or 'YYYY-MM-DD'.",
			nil,
		), nil
	}

	calendarID := stringArg(args, "calendar_id", PrimaryCalendarID)
	event := &gcal.Event{
		Summary:     stringArg(args, "summary", ""),
		Description: stringArg(args, "description", ""),
		Location:    stringArg(args, "location", ""),
	}

	if boolArg(args, "all_day", false) {
		event.Start = &gcal.EventDateTime{Date: startDT.Format(dateLayout), TimeZone: "UTC"}
		event.End = &gcal.EventDateTime{Date: endDT.Format(dateLayout), TimeZone: "UTC"}
	} else {
		timezone, err := t.svc.Timezone(ctx)
		if err != nil || timezone == "" {
			timezone = defaultTimezone
		}
		event.Start = &gcal.EventDateTime{DateTime: startDT.Format(time.RFC3339), TimeZone: timezone}
		event.End = &gcal.EventDateTime{DateTime: endDT.Format(time.RFC3339), TimeZone: timezone}
	}

	if attendees := strings.TrimSpace(stringArg(args, "attendees", "")); attendees != "" {
		for _, email := range strings.Split(attendees, ",") {
			email = strings.TrimSpace(email)
			if email == "" {
				continue
			}
			event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
		}
	}

	created, err := t.svc.InsertEvent(ctx, calendarID, event)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("Error creating event: %v", err), nil), nil
	}

	return successEnvelope("Event created successfully", map[string]any{
		"event_id":   created.Id,
		"event_link": created.HtmlLink,
	}), nil
}
