package calendar

import "context"

// CurrentTime reports the current date and time to the agent, which has no
// clock of its own and needs a reference point for relative dates.
func (t *Tools) CurrentTime(_ context.Context, _ map[string]any) (map[string]any, error) {
	now := t.now()
	return successEnvelope("Current time retrieved", map[string]any{
		"current_time":   now.Format("2006-01-02 15:04:05"),
		"formatted_date": now.Format("01-02-2006"),
	}), nil
}
