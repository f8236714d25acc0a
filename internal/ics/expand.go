package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "studiobill/internal/log"
	"studiobill/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// instanceIDLayout suffixes the UID of each recurring instance.
const instanceIDLayout = "20060102T150405Z"

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// Location all occurrences are converted to. Nil means time.Local.
	Location *time.Location

	// Occurrences overlapping [RangeStart, RangeEnd) are kept.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps expansion of one series.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds expanded events and the UIDs that hit the cap.
type ExpandResult struct {
	Events          []model.Event
	TruncatedEvents []string
}

// Expand turns parsed VEVENTs into concrete events within the range. It
// handles RRULE series, EXDATE exclusions and RECURRENCE-ID overrides.
// Results are ordered by start, then ID.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Series and their overridden instances, by source and UID.
	type key struct{ source, uid string }
	bases := make(map[key][]ParsedEvent)
	overrides := make(map[key][]ParsedEvent)
	var order []key

	for _, ev := range events {
		k := key{ev.Source.ID, ev.UID}
		if ev.IsOverride() {
			overrides[k] = append(overrides[k], ev)
			continue
		}
		if _, seen := bases[k]; !seen {
			order = append(order, k)
		}
		bases[k] = append(bases[k], ev)
	}

	out := make([]model.Event, 0)
	for _, k := range order {
		for _, ev := range bases[k] {
			var occ []model.Event
			if ev.RawRRule == "" {
				occ = expandSingle(ev, cfg)
			} else {
				var hitCap bool
				occ, hitCap = expandSeries(ev, overrides[k], cfg)
				if hitCap {
					result.TruncatedEvents = append(result.TruncatedEvents, k.uid)
					appLog.Warn("expand: occurrences truncated", "uid", k.uid, "cap", cfg.MaxOccurrencesPerEvent)
				}
			}
			out = append(out, occ...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})

	result.Events = out
	return result, nil
}

func expandSingle(ev ParsedEvent, cfg ExpandConfig) []model.Event {
	if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []model.Event{toEvent(ev, ev.UID, ev.Start, ev.End, cfg.Location)}
}

func expandSeries(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	if dur < 0 {
		dur = 0
	}

	// Instances starting up to one duration before the range can still
	// overlap it.
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		base, start, end := ev, s, s.Add(dur)
		if o, ok := findOverride(overrides, s); ok {
			base, start, end = o, o.Start, o.End
		}
		if !overlaps(start, end, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		id := ev.UID + "_" + s.UTC().Format(instanceIDLayout)
		out = append(out, toEvent(base, id, start, end, cfg.Location))
	}
	return out, hitCap
}

// findOverride returns the override whose RECURRENCE-ID is the given
// instance start.
func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return ParsedEvent{}, false
}

func toEvent(ev ParsedEvent, id string, start, end time.Time, loc *time.Location) model.Event {
	return model.Event{
		SourceID:    ev.Source.ID,
		ID:          id,
		Title:       ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       start.In(loc),
		End:         end.In(loc),
	}
}

// overlaps reports whether [aStart, aEnd) meets [bStart, bEnd). A zero-length
// event counts when its instant falls inside the range.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
