package ics

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Parse runs decode, unfold, property parsing and tree building over a
// complete document.
func Parse(ctx context.Context, data []byte) (*Calendar, error) {
	decoded, err := Decode(data)
	if err != nil {
		return nil, err
	}
	lines, err := Unfold(decoded)
	if err != nil {
		return nil, err
	}
	props := make([]*Property, 0, len(lines))
	for _, l := range lines {
		p, err := ParseProperty(l)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return Build(ctx, props)
}

// ParseReader reads r to the end and parses it.
func ParseReader(ctx context.Context, r io.Reader) (*Calendar, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, "read calendar")
	}
	return Parse(ctx, buf.Bytes())
}

// Build assembles properties into a component tree. BEGIN pushes a new
// component under the current one, END pops it and must name it, anything
// else is attached to the component on top of the stack. The input must hold
// exactly one VCALENDAR. ctx is checked each time a top-level component opens.
func Build(ctx context.Context, props []*Property) (*Calendar, error) {
	var (
		cal    *Calendar
		stack  []*Component
		closed bool
		last   int
	)

	for _, p := range props {
		last = p.Line
		switch p.Name {
		case PropBegin:
			name := strings.ToUpper(strings.TrimSpace(p.Value))
			if name == "" {
				return nil, &MalformedPropertyError{Line: p.Line, Text: p.String(), Reason: "BEGIN without component name"}
			}
			if len(stack) == 0 {
				if closed || name != NameCalendar {
					return nil, &UnbalancedComponentError{Line: p.Line, Got: PropBegin + ":" + name}
				}
				cal = NewCalendar()
				stack = append(stack, cal.Component)
				continue
			}
			if len(stack) == 1 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			child := NewComponent(name)
			stack[len(stack)-1].AddChild(child)
			stack = append(stack, child)

		case PropEnd:
			name := strings.ToUpper(strings.TrimSpace(p.Value))
			if len(stack) == 0 {
				return nil, &UnbalancedComponentError{Line: p.Line, Got: PropEnd + ":" + name}
			}
			top := stack[len(stack)-1]
			if top.Name != name {
				return nil, &UnbalancedComponentError{Line: p.Line, Want: top.Name, Got: name}
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				closed = true
			}

		default:
			if len(stack) == 0 {
				return nil, &UnbalancedComponentError{Line: p.Line, Got: p.Name}
			}
			stack[len(stack)-1].AddProp(p)
		}
	}

	if len(stack) > 0 {
		return nil, &UnbalancedComponentError{Line: last, Want: stack[len(stack)-1].Name}
	}
	if cal == nil {
		return nil, &UnbalancedComponentError{}
	}
	return cal, nil
}
