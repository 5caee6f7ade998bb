package ics

import (
	"strconv"
	"strings"
)

// lineParser holds the cursor over one logical line. Every parse step works
// on this value only, so a single line can be parsed in isolation.
type lineParser struct {
	line Line
	pos  int
}

// ParseProperty parses one logical line into a Property. The first colon
// outside a quoted parameter value ends the name/parameter section; the rest
// of the line is kept verbatim as the raw value.
func ParseProperty(l Line) (*Property, error) {
	p := &lineParser{line: l}

	name := p.token()
	if name == "" {
		return nil, p.fail("missing property name")
	}
	prop := &Property{Name: strings.ToUpper(name), Line: l.Num}

	for {
		switch p.peek() {
		case ':':
			p.pos++
			prop.Value = p.line.Text[p.pos:]
			return prop, nil
		case ';':
			p.pos++
			param, err := p.param()
			if err != nil {
				return nil, err
			}
			prop.Params = append(prop.Params, param)
		case 0:
			return nil, p.fail("no colon separating name and value")
		default:
			return nil, p.fail("unexpected character " + strconv.Quote(p.line.Text[p.pos:p.pos+1]) + " before value")
		}
	}
}

func (p *lineParser) peek() byte {
	if p.pos >= len(p.line.Text) {
		return 0
	}
	return p.line.Text[p.pos]
}

func (p *lineParser) fail(reason string) error {
	return &MalformedPropertyError{Line: p.line.Num, Text: p.line.Text, Reason: reason}
}

// token reads a name: ALPHA / DIGIT / "-" (plus "_", seen in the wild).
func (p *lineParser) token() string {
	start := p.pos
	for p.pos < len(p.line.Text) && isNameChar(p.line.Text[p.pos]) {
		p.pos++
	}
	return p.line.Text[start:p.pos]
}

func (p *lineParser) param() (Param, error) {
	name := p.token()
	if name == "" {
		return Param{}, p.fail("missing parameter name")
	}
	if p.peek() != '=' {
		return Param{}, p.fail("parameter " + name + " has no value")
	}
	p.pos++

	param := Param{Name: strings.ToUpper(name)}
	for {
		v, err := p.paramValue()
		if err != nil {
			return Param{}, err
		}
		param.Values = append(param.Values, v)
		if p.peek() != ',' {
			return param, nil
		}
		p.pos++
	}
}

func (p *lineParser) paramValue() (ParamValue, error) {
	s := p.line.Text
	if p.peek() == '"' {
		p.pos++
		start := p.pos
		for p.pos < len(s) && s[p.pos] != '"' {
			if isControl(s[p.pos]) {
				return ParamValue{}, p.fail("control character in quoted parameter value")
			}
			p.pos++
		}
		if p.pos >= len(s) {
			return ParamValue{}, p.fail("unterminated quoted parameter value")
		}
		v := ParamValue{Text: s[start:p.pos], Quoted: true}
		p.pos++
		return v, nil
	}

	// Parameter values have no escapes; a backslash is an ordinary character.
	start := p.pos
	for p.pos < len(s) {
		c := s[p.pos]
		if c == ',' || c == ';' || c == ':' || c == '"' {
			break
		}
		p.pos++
	}
	return ParamValue{Text: s[start:p.pos]}, nil
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isControl(c byte) bool {
	return (c < 0x20 && c != '\t') || c == 0x7f
}

func needsQuote(v string) bool {
	return strings.ContainsAny(v, ":;,")
}

// String renders the property as one unfolded content line.
func (p *Property) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	for _, pa := range p.Params {
		b.WriteByte(';')
		b.WriteString(pa.Name)
		b.WriteByte('=')
		for i, v := range pa.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			if v.Quoted || needsQuote(v.Text) {
				b.WriteByte('"')
				b.WriteString(v.Text)
				b.WriteByte('"')
			} else {
				b.WriteString(v.Text)
			}
		}
	}
	b.WriteByte(':')
	b.WriteString(p.Value)
	return b.String()
}
