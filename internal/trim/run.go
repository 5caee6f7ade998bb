package trim

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"icstrim/internal/ics"
	appLog "icstrim/internal/log"
	"icstrim/internal/model"
)

// Options controls one trimming run.
type Options struct {
	// Cutoff: events ending strictly before it are dropped.
	Cutoff time.Time

	// StripExtensions removes vendor-extension subcomponents from kept events.
	StripExtensions bool
	// ExtensionPrefix defaults to "X-".
	ExtensionPrefix string

	// Floating is the zone for floating date-times; nil means time.Local.
	Floating *time.Location
	// MaxOccurrences caps recurrence walking per event.
	MaxOccurrences int

	// Verify re-parses the output with an independent parser before writing.
	Verify bool
}

// Summary reports the outcome of a run.
type Summary struct {
	ReadCount    int
	WrittenCount int
	RemovedCount int

	// StrippedCount is the number of extension subcomponents removed.
	StrippedCount int

	SkippedUnresolvable []string
	Skipped             []model.SkippedEvent

	// Retained lists kept events with display name and resolved end, for the
	// caller's verbose output.
	Retained []model.RetainedEvent
}

// Run reads a calendar from in, drops events that end before opts.Cutoff,
// optionally strips extension subcomponents, and writes the result to out.
// Structural errors abort before anything is written to out; events whose
// end cannot be resolved are left out and listed in the Summary.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts Options) (Summary, error) {
	var sum Summary

	cal, err := ics.ParseReader(ctx, in)
	if err != nil {
		return sum, errors.WithHint(errors.Wrap(err, "parse calendar"), "the input is not a well-formed iCalendar document")
	}

	resolver := &Resolver{Floating: opts.Floating, MaxOccurrences: opts.MaxOccurrences}
	res, err := Filter(ctx, cal, opts.Cutoff, resolver)
	if err != nil {
		return sum, errors.Wrap(err, "filter events")
	}

	sum.ReadCount = res.Total
	sum.WrittenCount = res.Kept
	sum.RemovedCount = res.Removed
	sum.Skipped = res.Skipped
	sum.Retained = res.Retained
	for _, s := range res.Skipped {
		sum.SkippedUnresolvable = append(sum.SkippedUnresolvable, s.ID)
	}

	if opts.StripExtensions {
		sum.StrippedCount = StripEvents(cal, opts.ExtensionPrefix)
	}

	if err := ctx.Err(); err != nil {
		return sum, err
	}

	data, err := ics.Marshal(cal)
	if err != nil {
		return sum, errors.Wrap(err, "serialize calendar")
	}
	if opts.Verify {
		if err := ics.Verify(data, res.Kept); err != nil {
			return sum, err
		}
	}

	appLog.Debug("trim completed",
		"read", sum.ReadCount,
		"written", sum.WrittenCount,
		"removed", sum.RemovedCount,
		"skipped", len(sum.Skipped),
		"stripped", sum.StrippedCount,
		"bytes", len(data),
	)

	if _, err := out.Write(data); err != nil {
		return sum, errors.Wrap(err, "write calendar")
	}
	return sum, nil
}
