package trim

import "fmt"

// UnresolvableEndError reports an event whose end instant cannot be
// determined. It is recovered per event: the event is left out of the output
// and listed in the Summary.
type UnresolvableEndError struct {
	EventID string
	Reason  string
	Err     error
}

func (e *UnresolvableEndError) Error() string {
	msg := fmt.Sprintf("event %s: cannot resolve end: %s", e.EventID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnresolvableEndError) Unwrap() error { return e.Err }
