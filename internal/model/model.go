package model

import "time"

// Zone records how a date-time value was qualified in the source.
type Zone int

const (
	// ZoneFloating values carry no zone and are read in the ambient zone.
	ZoneFloating Zone = iota
	// ZoneUTC values end in "Z".
	ZoneUTC
	// ZoneTZID values carry a TZID parameter.
	ZoneTZID
)

func (z Zone) String() string {
	switch z {
	case ZoneUTC:
		return "utc"
	case ZoneTZID:
		return "tzid"
	default:
		return "floating"
	}
}

// Instant is the resolved end of an event. It is derived from the event's
// properties on demand and never stored in the tree.
type Instant struct {
	Time time.Time

	// DateOnly marks whole-day precision; Time is then midnight of that date.
	DateOnly bool

	Zone Zone
	TZID string

	// Unbounded marks a recurring event whose rule never ends. Such an event
	// ends after every cutoff.
	Unbounded bool
}

// Before reports whether the instant lies strictly before cutoff. Date-only
// instants compare at the start of their day.
func (i Instant) Before(cutoff time.Time) bool {
	if i.Unbounded {
		return false
	}
	t := i.Time
	if i.DateOnly {
		y, m, d := t.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	return t.Before(cutoff)
}

func (i Instant) String() string {
	switch {
	case i.Unbounded:
		return "never (open-ended recurrence)"
	case i.DateOnly:
		return i.Time.Format("2006-01-02")
	case i.Zone == ZoneUTC:
		return i.Time.UTC().Format(time.RFC3339)
	default:
		return i.Time.Format(time.RFC3339)
	}
}

// RetainedEvent describes an event kept by the filter, for verbose output.
type RetainedEvent struct {
	ID      string
	Summary string // display name, unescaped
	End     Instant
}

// SkippedEvent describes an event whose end could not be resolved.
type SkippedEvent struct {
	ID     string
	Reason string
}
