package ics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestParse_Tree(t *testing.T) {
	cal, err := Parse(context.Background(), doc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"BEGIN:VTIMEZONE",
		"TZID:Europe/Berlin",
		"BEGIN:STANDARD",
		"TZOFFSETFROM:+0200",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"UID:1",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"END:VALARM",
		"BEGIN:X-APPLE-STRUCTURED-LOCATION",
		"X-TITLE:Home",
		"END:X-APPLE-STRUCTURED-LOCATION",
		"END:VEVENT",
		"BEGIN:vevent",
		"UID:2",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	assert.Equal(t, KindCalendar, cal.Kind)
	require.Len(t, cal.Props, 2)
	assert.Equal(t, "VERSION", cal.Props[0].Name)
	assert.Equal(t, "PRODID", cal.Props[1].Name)

	require.Len(t, cal.Children, 3)
	tz := cal.Children[0]
	assert.Equal(t, KindTimezone, tz.Kind)
	require.Len(t, tz.Children, 1)
	assert.Equal(t, KindStandard, tz.Children[0].Kind)

	ev := cal.Children[1]
	assert.Equal(t, KindEvent, ev.Kind)
	assert.Equal(t, "1", ev.Prop("uid").Value)
	require.Len(t, ev.Children, 2)
	assert.Equal(t, KindAlarm, ev.Children[0].Kind)
	assert.Equal(t, KindOther, ev.Children[1].Kind)
	assert.Equal(t, "X-APPLE-STRUCTURED-LOCATION", ev.Children[1].Name)

	assert.Equal(t, "VEVENT", cal.Children[2].Name, "component names are normalized")
	assert.Equal(t, "VTIMEZONE", tz.Kind.String())
	assert.Equal(t, "OTHER", ev.Children[1].Kind.String())
	assert.Len(t, cal.Events(), 2)
}

func TestParse_Unbalanced(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  UnbalancedComponentError
	}{
		{
			name:  "missing END",
			input: doc("BEGIN:VCALENDAR", "BEGIN:VEVENT", "UID:1", "END:VCALENDAR"),
			want:  UnbalancedComponentError{Line: 4, Want: "VEVENT", Got: "VCALENDAR"},
		},
		{
			name:  "end of input inside event",
			input: doc("BEGIN:VCALENDAR", "BEGIN:VEVENT", "UID:1"),
			want:  UnbalancedComponentError{Line: 3, Want: "VEVENT"},
		},
		{
			name:  "END without BEGIN",
			input: doc("END:VEVENT"),
			want:  UnbalancedComponentError{Line: 1, Got: "END:VEVENT"},
		},
		{
			name:  "property before calendar",
			input: doc("VERSION:2.0", "BEGIN:VCALENDAR", "END:VCALENDAR"),
			want:  UnbalancedComponentError{Line: 1, Got: "VERSION"},
		},
		{
			name:  "event outside calendar",
			input: doc("BEGIN:VEVENT", "END:VEVENT"),
			want:  UnbalancedComponentError{Line: 1, Got: "BEGIN:VEVENT"},
		},
		{
			name:  "second calendar",
			input: doc("BEGIN:VCALENDAR", "END:VCALENDAR", "BEGIN:VCALENDAR", "END:VCALENDAR"),
			want:  UnbalancedComponentError{Line: 3, Got: "BEGIN:VCALENDAR"},
		},
		{
			name:  "empty input",
			input: []byte("\r\n"),
			want:  UnbalancedComponentError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			var ue *UnbalancedComponentError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.want, *ue)
			assert.NotEmpty(t, ue.Error())
		})
	}
}

func TestParse_MalformedIsFatal(t *testing.T) {
	_, err := Parse(context.Background(), doc("BEGIN:VCALENDAR", "garbage line", "END:VCALENDAR"))
	var mpe *MalformedPropertyError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, 2, mpe.Line)

	_, err = Parse(context.Background(), doc("BEGIN:VCALENDAR", "BEGIN:", "END:VCALENDAR"))
	require.ErrorAs(t, err, &mpe)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, doc("BEGIN:VCALENDAR", "BEGIN:VEVENT", "END:VEVENT", "END:VCALENDAR"))
	require.ErrorIs(t, err, context.Canceled)

	// Nothing to cancel between when there is no top-level component.
	_, err = Parse(ctx, doc("BEGIN:VCALENDAR", "VERSION:2.0", "END:VCALENDAR"))
	require.NoError(t, err)
}

func TestComponent_RemoveChildren(t *testing.T) {
	c := NewComponent("vevent")
	for _, n := range []string{"VALARM", "X-A", "VALARM", "X-B"} {
		c.AddChild(NewComponent(n))
	}
	removed := c.RemoveChildren(func(ch *Component) bool { return IsExtensionName(ch.Name, "") })
	assert.Equal(t, 2, removed)
	require.Len(t, c.Children, 2)
	assert.Equal(t, "VALARM", c.Children[0].Name)
	assert.Equal(t, "VALARM", c.Children[1].Name)
}
