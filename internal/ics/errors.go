package ics

import "fmt"

// MalformedPropertyError reports a logical line that does not follow
// NAME *(";" PARAM) ":" VALUE. It is fatal for the whole run.
type MalformedPropertyError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedPropertyError) Error() string {
	return fmt.Sprintf("line %d: malformed property: %s (%q)", e.Line, e.Reason, truncate(e.Text, 40))
}

// UnbalancedComponentError reports a BEGIN without matching END, an END
// that closes the wrong component, or content outside the calendar.
type UnbalancedComponentError struct {
	Line int
	Want string // component expected to close, empty when none is open
	Got  string // name found on the line, empty at end of input
}

func (e *UnbalancedComponentError) Error() string {
	switch {
	case e.Got == "" && e.Want == "":
		return "no " + PropBegin + ":" + NameCalendar + " found in input"
	case e.Got == "" && e.Want != "":
		return fmt.Sprintf("line %d: unexpected end of input, BEGIN:%s is never closed", e.Line, e.Want)
	case e.Want == "":
		return fmt.Sprintf("line %d: %s outside of an open calendar", e.Line, e.Got)
	default:
		return fmt.Sprintf("line %d: END:%s does not match open BEGIN:%s", e.Line, e.Got, e.Want)
	}
}

// UnsupportedEncodingError reports input that cannot be decoded to UTF-8.
type UnsupportedEncodingError struct {
	Line   int
	Reason string
}

func (e *UnsupportedEncodingError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: unsupported encoding: %s", e.Line, e.Reason)
	}
	return "unsupported encoding: " + e.Reason
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
