package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sevenofnine/meeting-note-sync/internal/domain"
)

// Wire color ids for the tags the reconciler emits.
var colorIDs = map[string]string{
	domain.ColorExternal: "4",
	domain.ColorOneToOne: "2",
}

// APIClient talks to a calendar events API with sync-token incremental
// listing. It implements both EventSource and EventStore.
type APIClient struct {
	base       string
	calendarID string
	token      string
	client     HTTPDoer
}

func NewAPIClient(baseURL, calendarID, token string, client HTTPDoer) *APIClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &APIClient{base: baseURL, calendarID: calendarID, token: token, client: client}
}

func (c *APIClient) Name() string { return "api" }

// Query lists one page of changed events. A 410 response means the
// sync token was invalidated server-side and maps to
// ErrSyncTokenExpired; every other failure propagates as fatal.
func (c *APIClient) Query(ctx context.Context, opts QueryOptions) (Page, error) {
	params := url.Values{}
	params.Set("eventTypes", "default")
	if opts.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(opts.MaxResults))
	}
	if opts.SyncToken != "" {
		params.Set("syncToken", opts.SyncToken)
	} else {
		params.Set("singleEvents", "false")
		params.Set("showDeleted", "false")
		if !opts.TimeMin.IsZero() {
			params.Set("timeMin", opts.TimeMin.Format(time.RFC3339))
		}
		if !opts.TimeMax.IsZero() {
			params.Set("timeMax", opts.TimeMax.Format(time.RFC3339))
		}
	}
	if opts.PageToken != "" {
		params.Set("pageToken", opts.PageToken)
	}

	var wire wirePage
	if err := c.do(ctx, http.MethodGet, c.eventsPath()+"?"+params.Encode(), nil, &wire); err != nil {
		return Page{}, err
	}

	page := Page{NextPageToken: wire.NextPageToken, NextSyncToken: wire.NextSyncToken}
	for _, ev := range wire.Items {
		m, err := toMeeting(ev)
		if err != nil {
			return Page{}, fmt.Errorf("decode event %s: %w", ev.ID, err)
		}
		page.Events = append(page.Events, m)
	}
	return page, nil
}

func (c *APIClient) CreateEvent(ctx context.Context, title string, start, end time.Time, description string) (Event, error) {
	body := wireEvent{
		Summary:     title,
		Description: description,
		Start:       &wireTime{DateTime: start.Format(time.RFC3339)},
		End:         &wireTime{DateTime: end.Format(time.RFC3339)},
	}
	var out wireEvent
	if err := c.do(ctx, http.MethodPost, c.eventsPath(), body, &out); err != nil {
		return Event{}, err
	}
	return toEvent(out), nil
}

func (c *APIClient) EventByID(ctx context.Context, id string) (Event, error) {
	var out wireEvent
	if err := c.do(ctx, http.MethodGet, c.eventPath(id), nil, &out); err != nil {
		return Event{}, err
	}
	return toEvent(out), nil
}

func (c *APIClient) FindEvents(ctx context.Context, start, end time.Time, titleFilter string) ([]Event, error) {
	params := url.Values{}
	params.Set("timeMin", start.Format(time.RFC3339))
	params.Set("timeMax", end.Format(time.RFC3339))
	params.Set("singleEvents", "false")
	if titleFilter != "" {
		params.Set("q", titleFilter)
	}
	var wire wirePage
	if err := c.do(ctx, http.MethodGet, c.eventsPath()+"?"+params.Encode(), nil, &wire); err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(wire.Items))
	for _, ev := range wire.Items {
		events = append(events, toEvent(ev))
	}
	return events, nil
}

func (c *APIClient) SetColor(ctx context.Context, id, color string) error {
	if mapped, ok := colorIDs[color]; ok {
		color = mapped
	}
	return c.do(ctx, http.MethodPatch, c.eventPath(id), map[string]string{"colorId": color}, nil)
}

func (c *APIClient) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.eventPath(id), nil, nil)
}

func (c *APIClient) SetExtendedField(ctx context.Context, eventID, key, value string) error {
	body := map[string]any{
		"extendedProperties": map[string]any{
			"private": map[string]string{key: value},
		},
	}
	return c.do(ctx, http.MethodPatch, c.eventPath(eventID), body, nil)
}

func (c *APIClient) eventsPath() string {
	return fmt.Sprintf("%s/calendars/%s/events", c.base, url.PathEscape(c.calendarID))
}

func (c *APIClient) eventPath(id string) string {
	return c.eventsPath() + "/" + url.PathEscape(id)
}

func (c *APIClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		return ErrSyncTokenExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("calendar request: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type wireTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

type wireAttendee struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Self        bool   `json:"self,omitempty"`
}

type wireExtended struct {
	Private map[string]string `json:"private,omitempty"`
}

type wireEvent struct {
	ID                 string         `json:"id,omitempty"`
	Summary            string         `json:"summary,omitempty"`
	Description        string         `json:"description,omitempty"`
	Status             string         `json:"status,omitempty"`
	ColorID            string         `json:"colorId,omitempty"`
	Start              *wireTime      `json:"start,omitempty"`
	End                *wireTime      `json:"end,omitempty"`
	Attendees          []wireAttendee `json:"attendees,omitempty"`
	Organizer          *wireAttendee  `json:"organizer,omitempty"`
	Creator            *wireAttendee  `json:"creator,omitempty"`
	ExtendedProperties *wireExtended  `json:"extendedProperties,omitempty"`
}

type wirePage struct {
	Items         []wireEvent `json:"items"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
	NextSyncToken string      `json:"nextSyncToken,omitempty"`
}

const wireDateFormat = "2006-01-02"

func (t *wireTime) parse() (time.Time, bool, error) {
	if t == nil {
		return time.Time{}, false, nil
	}
	if t.Date != "" {
		parsed, err := time.Parse(wireDateFormat, t.Date)
		return parsed, true, err
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		return parsed, false, err
	}
	return time.Time{}, false, nil
}

func toMeeting(ev wireEvent) (domain.MeetingEvent, error) {
	start, allDay, err := ev.Start.parse()
	if err != nil {
		return domain.MeetingEvent{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := ev.End.parse()
	if err != nil {
		return domain.MeetingEvent{}, fmt.Errorf("end: %w", err)
	}

	timing := domain.TimedBetween(start, end)
	if allDay {
		timing = domain.AllDayOn(start)
	}

	status := domain.EventStatus(ev.Status)
	if status == "" {
		status = domain.StatusConfirmed
	}

	m := domain.MeetingEvent{
		ID:     ev.ID,
		Title:  ev.Summary,
		Status: status,
		Timing: timing,
	}
	for _, a := range ev.Attendees {
		m.Attendees = append(m.Attendees, toAttendee(&a))
	}
	m.Organizer = toAttendee(ev.Organizer)
	m.Creator = toAttendee(ev.Creator)
	if ev.ExtendedProperties != nil && len(ev.ExtendedProperties.Private) > 0 {
		m.ExtendedFields = ev.ExtendedProperties.Private
	}
	return m, nil
}

func toAttendee(a *wireAttendee) domain.Attendee {
	if a == nil {
		return domain.Attendee{}
	}
	return domain.Attendee{Address: a.Email, DisplayName: a.DisplayName, Self: a.Self}
}

func toEvent(ev wireEvent) Event {
	start, _, _ := ev.Start.parse()
	end, _, _ := ev.End.parse()
	return Event{
		ID:          ev.ID,
		Title:       ev.Summary,
		Description: ev.Description,
		Color:       ev.ColorID,
		Start:       start,
		End:         end,
	}
}
