package ics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiobill/internal/billing"
	appLog "studiobill/internal/log"
	"studiobill/internal/model"
)

// Calendar serves events from a set of ICS feeds.
type Calendar struct {
	fetcher  *Fetcher
	sources  []Source
	location *time.Location
}

func NewCalendar(fetcher *Fetcher, sources []Source, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{fetcher: fetcher, sources: sources, location: loc}
}

// Events fetches and expands every feed for [start, end). Feeds that fail
// are logged and skipped; an error is returned only when all of them fail,
// so a network outage never reads as an empty calendar.
func (c *Calendar) Events(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Events(ctx, start, end)
}

// Snapshot fetches and parses every feed once. The returned source expands
// that same data for any range, so all years of one pass see one version
// of each feed.
func (c *Calendar) Snapshot(ctx context.Context) (billing.EventSource, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Calendar) load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{sources: len(c.sources), location: c.location}
	if len(c.sources) == 0 {
		return snap, nil
	}

	results, errs := c.fetcher.FetchAll(ctx, c.sources)
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d calendar sources failed: %w", len(c.sources), errors.Join(errs...))
	}

	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics parse failed", err, "id", res.Source.ID, "url", redactURL(res.Source.URL))
			errs = append(errs, err)
			continue
		}
		snap.events = append(snap.events, events...)
	}
	if len(errs) == len(c.sources) {
		return nil, fmt.Errorf("no calendar source could be read: %w", errors.Join(errs...))
	}

	appLog.Debug("calendar snapshot loaded", "sources", len(c.sources), "vevents", len(snap.events))
	return snap, nil
}

// Snapshot holds parsed feeds and expands them on demand.
// It never touches the network.
type Snapshot struct {
	events   []ParsedEvent
	sources  int
	location *time.Location
}

func (s *Snapshot) Events(_ context.Context, start, end time.Time) ([]model.Event, error) {
	if len(s.events) == 0 {
		return nil, nil
	}

	expanded, err := Expand(s.events, ExpandConfig{
		Location:   s.location,
		RangeStart: start,
		RangeEnd:   end,
	})
	if err != nil {
		return nil, err
	}

	appLog.Info("calendar events loaded",
		"range_start", start.Format(time.RFC3339),
		"range_end", end.Format(time.RFC3339),
		"sources", s.sources,
		"events", len(expanded.Events),
	)
	return expanded.Events, nil
}
