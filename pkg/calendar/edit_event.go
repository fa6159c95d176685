package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// EditEvent retitles and/or reschedules an existing event on the primary
// calendar. Empty summary/start_time/end_time arguments leave the
// corresponding field unchanged. The event's stored timezone is kept.
func (t *Tools) EditEvent(ctx context.Context, args map[string]any) (map[string]any, error) {
	eventID := stringArg(args, "event_id", "")

	event, err := t.svc.GetEvent(ctx, PrimaryCalendarID, eventID)
	if err != nil {
		return errorEnvelope(
			fmt.Sprintf("Event with ID %s not found in primary calendar.", eventID),
			nil,
		), nil
	}

	if summary := stringArg(args, "summary", ""); summary != "" {
		event.Summary = summary
	}

	timezone := defaultTimezone
	if event.Start != nil && event.Start.TimeZone != "" {
		timezone = event.Start.TimeZone
	}

	if startTime := stringArg(args, "start_time", ""); startTime != "" {
		startDT, ok := ParseDateTime(startTime)
		if !ok {
			return errorEnvelope("Invalid start time format. Please use YYYY-MM-DD HH:MM format.", nil), nil
		}
		event.Start = &gcal.EventDateTime{DateTime: startDT.Format(time.RFC3339), TimeZone: timezone}
	}

	if endTime := stringArg(args, "end_time", ""); endTime != "" {
		endDT, ok := ParseDateTime(endTime)
		if !ok {
			return errorEnvelope("Invalid end time format. Please use YYYY-MM-DD HH:MM format.", nil), nil
		}
		event.End = &gcal.EventDateTime{DateTime: endDT.Format(time.RFC3339), TimeZone: timezone}
	}

	updated, err := t.svc.UpdateEvent(ctx, PrimaryCalendarID, eventID, event)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("Error updating event: %v", err), nil), nil
	}

	return successEnvelope("Event updated successfully", map[string]any{
		"event_id":   updated.Id,
		"event_link": updated.HtmlLink,
	}), nil
}
