package ics

import "strings"

// Kind classifies a component by name. Names outside the known set map to
// KindOther and keep their raw spelling in Component.Name.
type Kind int

const (
	KindOther Kind = iota
	KindCalendar
	KindEvent
	KindTodo
	KindJournal
	KindFreeBusy
	KindTimezone
	KindStandard
	KindDaylight
	KindAlarm
)

const (
	NameCalendar = "VCALENDAR"
	NameEvent    = "VEVENT"
)

var kindByName = map[string]Kind{
	NameCalendar: KindCalendar,
	NameEvent:    KindEvent,
	"VTODO":      KindTodo,
	"VJOURNAL":   KindJournal,
	"VFREEBUSY":  KindFreeBusy,
	"VTIMEZONE":  KindTimezone,
	"STANDARD":   KindStandard,
	"DAYLIGHT":   KindDaylight,
	"VALARM":     KindAlarm,
}

// KindOf returns the kind for a component name, case-insensitively.
func KindOf(name string) Kind {
	if k, ok := kindByName[strings.ToUpper(name)]; ok {
		return k
	}
	return KindOther
}

func (k Kind) String() string {
	for name, v := range kindByName {
		if v == k {
			return name
		}
	}
	return "OTHER"
}

// IsExtensionName reports whether name carries the vendor-extension prefix.
func IsExtensionName(name, prefix string) bool {
	if prefix == "" {
		prefix = DefaultExtensionPrefix
	}
	return len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
}

// DefaultExtensionPrefix marks non-standard, application-specific names.
const DefaultExtensionPrefix = "X-"
