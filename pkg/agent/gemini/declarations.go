package gemini

import (
	"google.golang.org/genai"

	"github.com/voxcal/voxcal/pkg/calendar"
)

// calendarDeclarations describes the calendar tool surface to the model.
// Names and argument keys must match the adapters registered in
// pkg/calendar; the dispatcher looks tools up by the name echoed back in
// the model's function calls.
func calendarDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        calendar.ToolGetCurrentTime,
			Description: "Get the current date and time.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
		{
			Name:        calendar.ToolListCalendars,
			Description: "List all calendars the user has access to.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
		{
			Name:        calendar.ToolListEvents,
			Description: "List upcoming events from a calendar.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {
						Type:        genai.TypeString,
						Description: "Start date in YYYY-MM-DD format, or empty string for today.",
					},
					"days": {
						Type:        genai.TypeInteger,
						Description: "Number of days to look ahead. 1 for today, 7 for a week.",
					},
					"max_results": {
						Type:        genai.TypeInteger,
						Description: "Maximum number of events to return. Always pass 100.",
					},
					"calendar_id": {
						Type:        genai.TypeString,
						Description: "Calendar ID, or 'primary' for the default calendar.",
					},
				},
				Required: []string{"start_date", "days", "max_results", "calendar_id"},
			},
		},
		{
			Name:        calendar.ToolCreateEvent,
			Description: "Create a new calendar event.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"summary": {
						Type:        genai.TypeString,
						Description: "Event title.",
					},
					"start_time": {
						Type:        genai.TypeString,
						Description: "Start time in 'YYYY-MM-DD HH:MM' format, or YYYY-MM-DD for all-day events.",
					},
					"end_time": {
						Type:        genai.TypeString,
						Description: "End time in 'YYYY-MM-DD HH:MM' format, or YYYY-MM-DD for all-day events.",
					},
					"description": {
						Type:        genai.TypeString,
						Description: "Event description. Empty string if none.",
					},
					"location": {
						Type:        genai.TypeString,
						Description: "Event location. Empty string if none.",
					},
					"attendees": {
						Type:        genai.TypeString,
						Description: "Comma-separated attendee email addresses. Empty string if none.",
					},
					"all_day": {
						Type:        genai.TypeBoolean,
						Description: "Whether this is an all-day event.",
					},
					"calendar_id": {
						Type:        genai.TypeString,
						Description: "Calendar ID, or 'primary' for the default calendar.",
					},
				},
				Required: []string{"summary", "start_time", "end_time"},
			},
		},
		{
			Name:        calendar.ToolEditEvent,
			Description: "Edit an existing event in the primary calendar. Pass empty strings for fields to leave unchanged.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"event_id": {
						Type:        genai.TypeString,
						Description: "ID of the event to edit, from list_events.",
					},
					"summary": {
						Type:        genai.TypeString,
						Description: "New title, or empty string to keep unchanged.",
					},
					"start_time": {
						Type:        genai.TypeString,
						Description: "New start time in 'YYYY-MM-DD HH:MM' format, or empty string to keep unchanged.",
					},
					"end_time": {
						Type:        genai.TypeString,
						Description: "New end time in 'YYYY-MM-DD HH:MM' format, or empty string to keep unchanged.",
					},
				},
				Required: []string{"event_id", "summary", "start_time", "end_time"},
			},
		},
		{
			Name:        calendar.ToolDeleteEvent,
			Description: "Delete a calendar event. Requires confirm=true.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"event_id": {
						Type:        genai.TypeString,
						Description: "ID of the event to delete, from list_events.",
					},
					"confirm": {
						Type:        genai.TypeBoolean,
						Description: "Must be true to actually delete the event.",
					},
					"calendar_id": {
						Type:        genai.TypeString,
						Description: "Calendar ID, or 'primary' for the default calendar.",
					},
				},
				Required: []string{"event_id", "confirm"},
			},
		},
		{
			Name:        calendar.ToolFindFreeTime,
			Description: "Find free time slots in a calendar within working hours.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {
						Type:        genai.TypeString,
						Description: "Start of the search range in YYYY-MM-DD format.",
					},
					"end_date": {
						Type:        genai.TypeString,
						Description: "End of the search range in YYYY-MM-DD format.",
					},
					"duration_minutes": {
						Type:        genai.TypeInteger,
						Description: "Desired slot length in minutes.",
					},
					"working_hours_start": {
						Type:        genai.TypeInteger,
						Description: "Start of working hours, 24h clock. Defaults to 9.",
					},
					"working_hours_end": {
						Type:        genai.TypeInteger,
						Description: "End of working hours, 24h clock. Defaults to 17.",
					},
					"calendar_id": {
						Type:        genai.TypeString,
						Description: "Calendar ID, or 'primary' for the default calendar.",
					},
				},
				Required: []string{"start_date", "end_date", "duration_minutes"},
			},
		},
	}
}
