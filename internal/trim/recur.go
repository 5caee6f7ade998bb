package trim

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	appLog "icstrim/internal/log"
	"icstrim/internal/model"
)

// DefaultMaxOccurrences caps how many occurrences are walked to find the
// last one of a bounded rule.
const DefaultMaxOccurrences = 100000

// Recurrence is the recurrence data of one event.
type Recurrence struct {
	Rule    string // RRULE value, without the "RRULE:" prefix
	RDates  []model.Instant
	ExDates []model.Instant
}

// LastOccurrenceEnd returns the end of the last occurrence of an event that
// starts at start and ends at end, or None when the rule has neither COUNT
// nor UNTIL. DTSTART is always the first occurrence; RDATE values add
// occurrences and EXDATE values remove them. Occurrences are produced lazily
// and at most maxIter of them are walked. When the cap is hit, UNTIL is taken
// as the last start; without UNTIL the rule counts as unbounded.
func LastOccurrenceEnd(rec Recurrence, start, end model.Instant, maxIter int) (mo.Option[model.Instant], error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxOccurrences
	}

	var last time.Time
	found := false
	consider := func(t time.Time) {
		if isExcluded(t, rec.ExDates) {
			return
		}
		if !found || t.After(last) {
			last = t
			found = true
		}
	}
	consider(start.Time)

	if rec.Rule != "" {
		opt, err := rrule.StrToROptionInLocation(rec.Rule, start.Time.Location())
		if err != nil {
			return mo.None[model.Instant](), errors.Wrapf(err, "parse RRULE %q", rec.Rule)
		}
		if opt.Count == 0 && opt.Until.IsZero() {
			return mo.None[model.Instant](), nil
		}
		opt.Dtstart = start.Time
		r, err := rrule.NewRRule(*opt)
		if err != nil {
			return mo.None[model.Instant](), errors.Wrapf(err, "build RRULE %q", rec.Rule)
		}

		next := r.Iterator()
		capped := true
		for i := 0; i < maxIter; i++ {
			t, ok := next()
			if !ok {
				capped = false
				break
			}
			consider(t)
		}
		if capped {
			if opt.Until.IsZero() {
				appLog.Debug("recurrence cap reached without UNTIL, treating as open-ended", "rrule", rec.Rule, "cap", maxIter)
				return mo.None[model.Instant](), nil
			}
			appLog.Debug("recurrence cap reached, using UNTIL", "rrule", rec.Rule, "cap", maxIter)
			consider(opt.Until.In(start.Time.Location()))
		}
	}

	for _, rd := range rec.RDates {
		consider(rd.Time)
	}

	if !found {
		// Every occurrence is excluded; the event keeps its own span.
		return mo.Some(end), nil
	}
	return mo.Some(occurrenceEnd(last, start, end)), nil
}

// occurrenceEnd shifts the event's span to an occurrence starting at occ.
func occurrenceEnd(occ time.Time, start, end model.Instant) model.Instant {
	out := end
	if start.DateOnly && end.DateOnly {
		days := int(end.Time.Sub(start.Time).Round(24*time.Hour) / (24 * time.Hour))
		y, m, d := occ.Date()
		out.Time = time.Date(y, m, d+days, 0, 0, 0, 0, end.Time.Location())
		return out
	}
	out.Time = occ.Add(end.Time.Sub(start.Time))
	if !end.DateOnly {
		if end.Zone != model.ZoneUTC {
			out.Time = out.Time.In(end.Time.Location())
		}
	} else {
		out.DateOnly = false
	}
	return out
}

// isExcluded matches an occurrence against EXDATE values. Date-only values
// exclude the whole day.
func isExcluded(t time.Time, exdates []model.Instant) bool {
	for _, ex := range exdates {
		if ex.DateOnly {
			ty, tm, td := t.In(ex.Time.Location()).Date()
			ey, em, ed := ex.Time.Date()
			if ty == ey && tm == em && td == ed {
				return true
			}
			continue
		}
		if t.Equal(ex.Time) {
			return true
		}
	}
	return false
}
