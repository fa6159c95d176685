package calendar

import (
	"context"
	"fmt"
)

// DeleteEvent removes an event. The confirm flag must be explicitly true;
// without it the provider is never contacted.
func (t *Tools) DeleteEvent(ctx context.Context, args map[string]any) (map[string]any, error) {
	if !boolArg(args, "confirm", false) {
		return errorEnvelope("Please confirm deletion by setting confirm=True", nil), nil
	}

	eventID := stringArg(args, "event_id", "")
	calendarID := stringArg(args, "calendar_id", PrimaryCalendarID)

	if err := t.svc.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return errorEnvelope(fmt.Sprintf("Error deleting event: %v", err), nil), nil
	}

	return successEnvelope(
		fmt.Sprintf("Event %s has been deleted successfully", eventID),
		map[string]any{"event_id": eventID},
	), nil
}
