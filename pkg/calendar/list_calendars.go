package calendar

import (
	"context"
	"fmt"
)

// ListCalendars returns every calendar the user has access to.
func (t *Tools) ListCalendars(ctx context.Context, _ map[string]any) (map[string]any, error) {
	entries, err := t.svc.ListCalendars(ctx)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("Error fetching calendars: %v", err), map[string]any{
			"calendars": []map[string]any{},
		}), nil
	}

	if len(entries) == 0 {
		return successEnvelope(
			"No calendars found. Make sure you've granted access to your calendars.",
			map[string]any{"calendars": []map[string]any{}},
		), nil
	}

	calendars := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		summary := entry.Summary
		if summary == "" {
			summary = "Unnamed Calendar"
		}
		accessRole := entry.AccessRole
		if accessRole == "" {
			accessRole = "Unknown"
		}
		color := entry.BackgroundColor
		if color == "" {
			color = "#FFFFFF"
		}
		calendars = append(calendars, map[string]any{
			"id":          entry.Id,
			"summary":     summary,
			"description": entry.Description,
			"primary":     entry.Primary,
			"access_role": accessRole,
			"color":       color,
		})
	}

	return successEnvelope(
		fmt.Sprintf("Found %d calendar(s).", len(calendars)),
		map[string]any{"calendars": calendars},
	), nil
}
