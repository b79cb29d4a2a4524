package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/sevenofnine/meeting-note-sync/internal/domain"
)

// ICSSource reads meetings from a published ICS feed. The feed has no
// sync tokens and no paging: every query is a windowed full listing
// returned as a single page, so incremental cycles never commit a
// token and each run re-reads the window.
type ICSSource struct {
	url    string
	client HTTPDoer
	loc    *time.Location
}

func NewICSSource(url string, client HTTPDoer, loc *time.Location) *ICSSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ICSSource{url: url, client: client, loc: loc}
}

func (s *ICSSource) Name() string { return "ics" }

func (s *ICSSource) Query(ctx context.Context, opts QueryOptions) (Page, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return Page{}, err
	}
	defer body.Close()

	events, err := s.parse(body)
	if err != nil {
		return Page{}, err
	}

	var page Page
	for _, ev := range events {
		if !opts.TimeMin.IsZero() && ev.Timing.StartTime().Before(opts.TimeMin) && !ev.Timing.AllDay {
			continue
		}
		if !opts.TimeMax.IsZero() && ev.Timing.StartTime().After(opts.TimeMax) {
			continue
		}
		page.Events = append(page.Events, ev)
	}
	return page, nil
}

func (s *ICSSource) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ics: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("fetch ics: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *ICSSource) parse(r io.Reader) ([]domain.MeetingEvent, error) {
	dec := ical.NewDecoder(r)
	var events []domain.MeetingEvent
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode ics: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			if ev, ok := s.parseEvent(comp); ok {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

func (s *ICSSource) parseEvent(comp *ical.Component) (domain.MeetingEvent, bool) {
	var m domain.MeetingEvent
	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		m.ID = prop.Value
	}
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		m.Title = prop.Value
	}

	m.Status = domain.StatusConfirmed
	if prop := comp.Props.Get(ical.PropStatus); prop != nil {
		switch strings.ToUpper(prop.Value) {
		case "CANCELLED":
			m.Status = domain.StatusCancelled
		case "TENTATIVE":
			m.Status = domain.StatusTentative
		}
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if m.ID == "" || startProp == nil {
		return domain.MeetingEvent{}, false
	}
	start, err := startProp.DateTime(s.loc)
	if err != nil {
		return domain.MeetingEvent{}, false
	}
	if len(startProp.Value) == len("20060102") {
		m.Timing = domain.AllDayOn(start)
	} else {
		end := start
		if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
			if parsed, err := endProp.DateTime(s.loc); err == nil {
				end = parsed
			}
		}
		m.Timing = domain.TimedBetween(start, end)
	}

	for _, prop := range comp.Props.Values(ical.PropAttendee) {
		m.Attendees = append(m.Attendees, icsAttendee(prop))
	}
	if prop := comp.Props.Get(ical.PropOrganizer); prop != nil {
		m.Organizer = icsAttendee(*prop)
	}
	return m, true
}

func icsAttendee(prop ical.Prop) domain.Attendee {
	return domain.Attendee{
		Address:     strings.TrimPrefix(strings.TrimSpace(prop.Value), "mailto:"),
		DisplayName: prop.Params.Get("CN"),
	}
}
