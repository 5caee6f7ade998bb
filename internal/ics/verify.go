package ics

import (
	"bytes"

	ical "github.com/arran4/golang-ical"
	"github.com/cockroachdb/errors"
)

// ErrVerifyMismatch is returned when an independent parse of serialized
// output disagrees with the tree it was rendered from.
var ErrVerifyMismatch = errors.New("serialized calendar failed verification")

// Verify re-parses serialized output with an independent iCalendar parser
// and checks that it holds wantEvents VEVENT components.
func Verify(data []byte, wantEvents int) error {
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.WithSecondaryError(ErrVerifyMismatch, err), "re-parse output")
	}
	if got := len(cal.Events()); got != wantEvents {
		return errors.Wrapf(ErrVerifyMismatch, "expected %d events, independent parser found %d", wantEvents, got)
	}
	return nil
}
