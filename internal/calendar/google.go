package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// taskIDProperty correlates remote events back to planner tasks.
const taskIDProperty = "delegator_task_id"

// GoogleClient implements API against the Google Calendar v3 API within
// a fixed calendar id.
type GoogleClient struct {
	srv        *gcal.Service
	calendarID string
}

// NewGoogleClient builds an authenticated client from an OAuth client
// secrets file and a previously obtained token file. Interactive token
// acquisition is an operational concern handled outside the daemon; a
// missing token is a fatal precondition failure.
func NewGoogleClient(ctx context.Context, credentialsFile, tokenFile, calendarID string) (*GoogleClient, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendar id is required")
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets %s: %w", credentialsFile, err)
	}
	config, err := google.ConfigFromJSON(b, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}

	return &GoogleClient{srv: srv, calendarID: calendarID}, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", file, err)
	}
	return tok, nil
}

func (c *GoogleClient) Insert(ctx context.Context, ev Event) (string, string, error) {
	created, err := c.srv.Events.Insert(c.calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, created.HtmlLink, nil
}

func (c *GoogleClient) Patch(ctx context.Context, id string, ev Event) error {
	_, err := c.srv.Events.Patch(c.calendarID, id, toGoogleEvent(ev)).Context(ctx).Do()
	if isNotFound(err) {
		return fmt.Errorf("patch event %s: %w", id, ErrEventNotFound)
	}
	if err != nil {
		return fmt.Errorf("patch event %s: %w", id, err)
	}
	return nil
}

func (c *GoogleClient) Delete(ctx context.Context, id string) error {
	err := c.srv.Events.Delete(c.calendarID, id).Context(ctx).Do()
	if isNotFound(err) {
		return fmt.Errorf("delete event %s: %w", id, ErrEventNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// isNotFound matches 404 and 410; Google returns 410 Gone for events
// that were deleted out-of-band.
func isNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404 || gerr.Code == 410
	}
	return false
}

func toGoogleEvent(ev Event) *gcal.Event {
	out := &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: strconv.FormatUint(uint64(ev.TaskID), 10)},
		},
	}
	if ev.Start != nil {
		end := ev.Start.Add(time.Hour)
		out.Start = &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)}
		out.End = &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)}
	} else {
		out.Start = &gcal.EventDateTime{Date: ev.Date}
		out.End = &gcal.EventDateTime{Date: ev.Date}
	}
	return out
}
