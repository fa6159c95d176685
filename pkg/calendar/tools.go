package calendar

import (
	"time"

	"github.com/voxcal/voxcal/pkg/tools"
)

// Tool names as exposed to the agent.
const (
	ToolListCalendars  = "list_calendars"
	ToolListEvents     = "list_events"
	ToolCreateEvent    = "create_event"
	ToolEditEvent      = "edit_event"
	ToolDeleteEvent    = "delete_event"
	ToolFindFreeTime   = "find_free_time"
	ToolGetCurrentTime = "get_current_time"
)

// Tools binds the calendar adapters to a provider service. All adapters are
// stateless beyond the service handle and the clock.
type Tools struct {
	svc Service
	now func() time.Time
}

func NewTools(svc Service) *Tools {
	return &Tools{svc: svc, now: time.Now}
}

// Adapters returns the full tool set keyed by the names the agent calls.
func (t *Tools) Adapters() map[string]tools.Adapter {
	return map[string]tools.Adapter{
		ToolListCalendars:  t.ListCalendars,
		ToolListEvents:     t.ListEvents,
		ToolCreateEvent:    t.CreateEvent,
		ToolEditEvent:      t.EditEvent,
		ToolDeleteEvent:    t.DeleteEvent,
		ToolFindFreeTime:   t.FindFreeTime,
		ToolGetCurrentTime: t.CurrentTime,
	}
}
