// Package calendar implements the tool adapters for calendar operations.
// Every adapter returns a {status, message, ...} envelope; provider and
// validation failures are reported in-band through that envelope, never as
// errors the dispatcher would have to interpret.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendarID denotes the user's default calendar.
const PrimaryCalendarID = "primary"

// defaultTimezone is used when the provider does not expose one.
const defaultTimezone = "America/New_York"

// Service is the narrow calendar-provider surface the adapters need. The
// production implementation wraps the Google Calendar API; tests substitute
// an in-memory fake.
type Service interface {
	ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]*gcal.Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*gcal.Event, error)
	InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *gcal.Event) (*gcal.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	Timezone(ctx context.Context) (string, error)
}

type googleService struct {
	svc *gcal.Service
}

// NewGoogleService builds a Service over the Google Calendar API using an
// OAuth client-secret file and a previously stored token. Acquiring the
// token is a separate setup concern; a missing or expired token surfaces as
// provider errors on first call.
func NewGoogleService(ctx context.Context, credentialsPath, tokenPath string) (Service, error) {
	credJSON, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(credJSON, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	tokenJSON, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &googleService{svc: svc}, nil
}

func (g *googleService) ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error) {
	list, err := g.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (g *googleService) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]*gcal.Event, error) {
	events, err := g.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

func (g *googleService) GetEvent(ctx context.Context, calendarID, eventID string) (*gcal.Event, error) {
	return g.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
}

func (g *googleService) InsertEvent(ctx context.Context, calendarID string, event *gcal.Event) (*gcal.Event, error) {
	return g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
}

func (g *googleService) UpdateEvent(ctx context.Context, calendarID, eventID string, event *gcal.Event) (*gcal.Event, error) {
	return g.svc.Events.Update(calendarID, eventID, event).Context(ctx).Do()
}

func (g *googleService) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

func (g *googleService) Timezone(ctx context.Context) (string, error) {
	settings, err := g.svc.Settings.List().Context(ctx).Do()
	if err != nil {
		return "", err
	}
	for _, setting := range settings.Items {
		if setting != nil && setting.Id == "timezone" && setting.Value != "" {
			return setting.Value, nil
		}
	}
	return "", fmt.Errorf("timezone setting not found")
}
