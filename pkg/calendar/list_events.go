package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// list_events always queries with a fixed page size regardless of the
// max_results argument the agent supplies.
const listEventsPageSize = 100

// ListEvents lists events in [start_date, start_date+days) from one calendar.
// An empty start_date means today. A calendar_id that does not look like a
// real id is resolved against the user's calendar list by name.
func (t *Tools) ListEvents(ctx context.Context, args map[string]any) (map[string]any, error) {
	emptyEvents := map[string]any{"events": []map[string]any{}}

	calendarID := t.resolveCalendarID(ctx, stringArg(args, "calendar_id", PrimaryCalendarID))

	startDate := strings.TrimSpace(stringArg(args, "start_date", ""))
	var start time.Time
	if startDate == "" {
		start = t.now().UTC()
	} else {
		parsed, ok := ParseDateTime(startDate)
		if !ok {
			return errorEnvelope(
				fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD format.", startDate),
				emptyEvents,
			), nil
		}
		start = parsed
	}

	days := intArg(args, "days", 1)
	if days < 1 {
		days = 1
	}
	end := start.Add(time.Duration(days) * 24 * time.Hour)

	items, err := t.svc.ListEvents(ctx, calendarID, start, end, listEventsPageSize)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("Error fetching events: %v", err), emptyEvents), nil
	}

	if len(items) == 0 {
		return successEnvelope("No upcoming events found.", emptyEvents), nil
	}

	events := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		summary := item.Summary
		if summary == "" {
			summary = "Untitled Event"
		}
		attendees := make([]string, 0, len(item.Attendees))
		for _, attendee := range item.Attendees {
			if attendee != nil && attendee.Email != "" {
				attendees = append(attendees, attendee.Email)
			}
		}
		events = append(events, map[string]any{
			"id":          item.Id,
			"summary":     summary,
			"start":       FormatEventTime(item.Start),
			"end":         FormatEventTime(item.End),
			"location":    item.Location,
			"description": item.Description,
			"attendees":   attendees,
			"link":        item.HtmlLink,
		})
	}

	return successEnvelope(
		fmt.Sprintf("Found %d event(s).", len(events)),
		map[string]any{"events": events},
	), nil
}

// resolveCalendarID maps a spoken calendar name to its id. Ids pass through
// untouched; so does anything we fail to resolve.
func (t *Tools) resolveCalendarID(ctx context.Context, calendarID string) string {
	if calendarID == PrimaryCalendarID ||
		strings.Contains(calendarID, ",") ||
		strings.Contains(calendarID, "@") ||
		strings.HasSuffix(calendarID, ".com") {
		return calendarID
	}

	entries, err := t.svc.ListCalendars(ctx)
	if err != nil || len(entries) == 0 {
		return calendarID
	}
	if len(entries) == 1 && entries[0] != nil {
		return entries[0].Id
	}
	needle := strings.ToLower(calendarID)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Summary), needle) {
			return entry.Id
		}
	}
	return calendarID
}
