package trim

import (
	"fmt"
	"time"

	"icstrim/internal/ics"
	"icstrim/internal/model"
)

// Resolver computes the end instant of event components.
type Resolver struct {
	// Floating is the zone used for values with neither "Z" nor TZID.
	// Nil means time.Local. This is an approximation for comparison only.
	Floating *time.Location

	// MaxOccurrences caps recurrence walking; zero means DefaultMaxOccurrences.
	MaxOccurrences int
}

func (r *Resolver) floating() *time.Location {
	if r == nil || r.Floating == nil {
		return time.Local
	}
	return r.Floating
}

// ResolveEnd returns the instant an event is considered to end:
//
//   - DTEND when present;
//   - otherwise DTSTART + DURATION;
//   - otherwise, for a date-only DTSTART, the following day;
//   - otherwise, for a recurring event, DTSTART itself.
//
// A recurring event (RRULE or RDATE) ends when its last occurrence ends and
// is unbounded when its rule has no COUNT or UNTIL. Any other shape yields an
// *UnresolvableEndError.
func (r *Resolver) ResolveEnd(ev *ics.Component) (model.Instant, error) {
	id := EventID(ev, 0)
	loc := r.floating()
	fail := func(reason string, err error) (model.Instant, error) {
		return model.Instant{}, &UnresolvableEndError{EventID: id, Reason: reason, Err: err}
	}

	var (
		start    model.Instant
		hasStart bool
	)
	if p := ev.Prop(propDtStart); p != nil {
		v, err := parseValue(p, p.Value, loc)
		if err != nil {
			return fail("invalid DTSTART", err)
		}
		start, hasStart = v, true
	}

	rec, recurring, err := r.recurrence(ev)
	if err != nil {
		return fail("invalid recurrence dates", err)
	}

	var end model.Instant
	switch {
	case ev.Prop(propDtEnd) != nil:
		p := ev.Prop(propDtEnd)
		v, err := parseValue(p, p.Value, loc)
		if err != nil {
			return fail("invalid DTEND", err)
		}
		end = v
	case ev.Prop(propDuration) != nil && hasStart:
		d, err := parseDuration(ev.Prop(propDuration))
		if err != nil {
			return fail("invalid DURATION", err)
		}
		end = addDuration(start, d)
	case hasStart && start.DateOnly:
		end = start
		end.Time = start.Time.AddDate(0, 0, 1)
	case hasStart && recurring:
		// Occurrences of a date-time start with no end take no time.
		end = start
	default:
		return fail("no DTEND, no DTSTART with DURATION, no all-day DTSTART and no recurrence", nil)
	}

	if !recurring {
		return end, nil
	}
	if !hasStart {
		return fail("recurrence without DTSTART", nil)
	}

	last, err := LastOccurrenceEnd(rec, start, end, r.MaxOccurrences)
	if err != nil {
		return fail("invalid RRULE", err)
	}
	return last.OrElse(model.Instant{Unbounded: true}), nil
}

func (r *Resolver) recurrence(ev *ics.Component) (Recurrence, bool, error) {
	var rec Recurrence
	recurring := false
	loc := r.floating()

	if p := ev.Prop(propRRule); p != nil {
		rec.Rule = p.Value
		recurring = true
	}
	for _, p := range ev.PropsNamed(propRDate) {
		vs, err := parseValues(p, loc)
		if err != nil {
			return rec, false, err
		}
		rec.RDates = append(rec.RDates, vs...)
		recurring = true
	}
	for _, p := range ev.PropsNamed(propExDate) {
		vs, err := parseValues(p, loc)
		if err != nil {
			return rec, false, err
		}
		rec.ExDates = append(rec.ExDates, vs...)
	}
	return rec, recurring, nil
}

// EventID identifies an event for reports: its UID, qualified by
// RECURRENCE-ID for overridden instances, or its position when it has none.
func EventID(ev *ics.Component, index int) string {
	uid := ev.Prop(propUID)
	if uid == nil || uid.Value == "" {
		if index > 0 {
			return fmt.Sprintf("#%d", index)
		}
		return "(no UID)"
	}
	id := uid.Text()
	if rid := ev.Prop(propRecurID); rid != nil {
		id += "@" + rid.Value
	}
	return id
}

// DisplayName returns the unescaped SUMMARY of an event.
func DisplayName(ev *ics.Component) string {
	if p := ev.Prop(propSummary); p != nil {
		return p.Text()
	}
	return ""
}
