package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// FindFreeTime scans a date range for gaps between events that fit the
// requested duration, within working hours, one day at a time.
func (t *Tools) FindFreeTime(ctx context.Context, args map[string]any) (map[string]any, error) {
	emptySlots := map[string]any{"free_slots": []map[string]any{}}

	startDT, startOK := ParseDateTime(stringArg(args, "start_date", ""))
	endDT, endOK := ParseDateTime(stringArg(args, "end_date", ""))
	if !startOK || !endOK {
		return errorEnvelope("Invalid date format. Please use YYYY-MM-DD format.", emptySlots), nil
	}

	durationMinutes := intArg(args, "duration_minutes", 30)
	workStart := intArg(args, "working_hours_start", 9)
	workEnd := intArg(args, "working_hours_end", 17)
	calendarID := stringArg(args, "calendar_id", PrimaryCalendarID)

	rangeStart := time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(endDT.Year(), endDT.Month(), endDT.Day(), 23, 59, 59, 0, time.UTC)

	items, err := t.svc.ListEvents(ctx, calendarID, rangeStart, rangeEnd, listEventsPageSize)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("Error finding free time slots: %v", err), emptySlots), nil
	}

	freeSlots := []map[string]any{}
	for day := rangeStart; !day.After(rangeEnd); day = day.AddDate(0, 0, 1) {
		dayEvents := timedEventsOn(items, day)
		sort.Slice(dayEvents, func(i, j int) bool { return dayEvents[i].start.Before(dayEvents[j].start) })

		dayStart := time.Date(day.Year(), day.Month(), day.Day(), workStart, 0, 0, 0, time.UTC)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), workEnd, 0, 0, 0, time.UTC)

		cursor := dayStart
		for _, ev := range dayEvents {
			if cursor.Before(ev.start) {
				gap := ev.start.Sub(cursor)
				if int(gap.Minutes()) >= durationMinutes {
					freeSlots = append(freeSlots, freeSlot(cursor, ev.start, gap))
				}
			}
			if ev.end.After(cursor) {
				cursor = ev.end
			}
		}
		if cursor.Before(dayEnd) {
			gap := dayEnd.Sub(cursor)
			if int(gap.Minutes()) >= durationMinutes {
				freeSlots = append(freeSlots, freeSlot(cursor, dayEnd, gap))
			}
		}
	}

	return successEnvelope(
		fmt.Sprintf("Found %d available time slots", len(freeSlots)),
		map[string]any{"free_slots": freeSlots},
	), nil
}

type timedEvent struct {
	start time.Time
	end   time.Time
}

// timedEventsOn picks the events with a concrete start time that fall on the
// given day; all-day events (date-only boundaries) are ignored.
func timedEventsOn(items []*gcal.Event, day time.Time) []timedEvent {
	var out []timedEvent
	for _, item := range items {
		if item == nil || item.Start == nil || item.Start.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		y1, m1, d1 := start.UTC().Date()
		y2, m2, d2 := day.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		end := start
		if item.End != nil && item.End.DateTime != "" {
			if parsed, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				end = parsed
			}
		}
		out = append(out, timedEvent{start: start.UTC(), end: end.UTC()})
	}
	return out
}

func freeSlot(start, end time.Time, gap time.Duration) map[string]any {
	return map[string]any{
		"start":            start.Format(dateTimeLayout),
		"end":              end.Format(dateTimeLayout),
		"duration_minutes": int(gap.Minutes()),
	}
}
