package ics

import (
	"strings"

	goical "github.com/emersion/go-ical"
)

// Reserved property names that open and close components.
const (
	PropBegin = "BEGIN"
	PropEnd   = "END"
)

// ParamValue is one comma-separated parameter value. Quoted records whether
// the value was written in double quotes so it can be re-emitted as read.
type ParamValue struct {
	Text   string
	Quoted bool
}

// Param is a parameter name with its ordered values.
type Param struct {
	Name   string
	Values []ParamValue
}

// Property is one content line. Value holds the raw, still-escaped text.
type Property struct {
	Name   string
	Params []Param
	Value  string

	// Line is the logical line number the property was parsed from; zero
	// for properties built in code.
	Line int
}

// Param returns the first value of the named parameter.
func (p *Property) Param(name string) (string, bool) {
	for _, pa := range p.Params {
		if strings.EqualFold(pa.Name, name) {
			if len(pa.Values) == 0 {
				return "", true
			}
			return pa.Values[0].Text, true
		}
	}
	return "", false
}

// Text returns the value with TEXT escapes (\\ \; \, \n) resolved.
func (p *Property) Text() string {
	gp := goical.NewProp(p.Name)
	gp.Params.Set("VALUE", "TEXT")
	gp.Value = p.Value
	s, err := gp.Text()
	if err != nil {
		return p.Value
	}
	return s
}

// Component is a named node holding ordered properties and children.
type Component struct {
	Kind     Kind
	Name     string
	Props    []*Property
	Children []*Component
}

// NewComponent returns an empty component with its kind resolved.
func NewComponent(name string) *Component {
	name = strings.ToUpper(name)
	return &Component{Kind: KindOf(name), Name: name}
}

// Prop returns the first property with the given name, or nil.
func (c *Component) Prop(name string) *Property {
	for _, p := range c.Props {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// PropsNamed returns every property with the given name in order.
func (c *Component) PropsNamed(name string) []*Property {
	var out []*Property
	for _, p := range c.Props {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}

// AddProp appends a property.
func (c *Component) AddProp(p *Property) {
	c.Props = append(c.Props, p)
}

// AddChild appends a child component.
func (c *Component) AddChild(child *Component) {
	c.Children = append(c.Children, child)
}

// RemoveChildren drops every direct child for which drop returns true,
// preserving the order of the rest, and returns how many were removed.
func (c *Component) RemoveChildren(drop func(*Component) bool) int {
	kept := c.Children[:0]
	removed := 0
	for _, child := range c.Children {
		if drop(child) {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	for i := len(kept); i < len(c.Children); i++ {
		c.Children[i] = nil
	}
	c.Children = kept
	return removed
}

// Calendar is the root of a parsed document. Its embedded component is the
// VCALENDAR record; top-level properties and components hang off it.
type Calendar struct {
	*Component
}

// NewCalendar returns an empty VCALENDAR.
func NewCalendar() *Calendar {
	return &Calendar{Component: NewComponent(NameCalendar)}
}

// Events returns the top-level VEVENT components.
func (cal *Calendar) Events() []*Component {
	var out []*Component
	for _, c := range cal.Children {
		if c.Kind == KindEvent {
			out = append(out, c)
		}
	}
	return out
}
