package ics

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FoldLimit is the conventional soft limit, in octets, for one physical line.
const FoldLimit = 75

// Line is one logical content line. Num is the physical line it starts on.
type Line struct {
	Num  int
	Text string
}

// Decode strips a byte-order mark and transcodes UTF-16 input to UTF-8.
// Input without a BOM is passed through unchanged and assumed to be UTF-8.
func Decode(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, &UnsupportedEncodingError{Reason: err.Error()}
	}
	return out, nil
}

// Unfold joins continuation lines (a leading space or tab) onto the previous
// logical line. CRLF and LF terminators are both accepted and blank physical
// lines are ignored. Joining happens on raw bytes, so a fold that lands in the
// middle of a multi-byte character unfolds to the original text; each logical
// line is checked for valid UTF-8 afterwards.
func Unfold(data []byte) ([]Line, error) {
	var (
		lines []Line
		cur   []byte
		start int
		open  bool
	)

	flush := func() error {
		if !open {
			return nil
		}
		if !utf8.Valid(cur) {
			return &UnsupportedEncodingError{Line: start, Reason: "invalid UTF-8 sequence"}
		}
		lines = append(lines, Line{Num: start, Text: string(cur)})
		cur = nil
		open = false
		return nil
	}

	num := 0
	for len(data) > 0 {
		num++
		var raw []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			raw, data = data[:i], data[i+1:]
		} else {
			raw, data = data, nil
		}
		raw = bytes.TrimSuffix(raw, []byte{'\r'})

		if len(raw) == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if raw[0] == ' ' || raw[0] == '\t' {
			if !open {
				return nil, &MalformedPropertyError{Line: num, Text: string(raw), Reason: "continuation line without a preceding line"}
			}
			cur = append(cur, raw[1:]...)
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		cur = append(cur[:0:0], raw...)
		start = num
		open = true
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Fold splits a logical line into physical lines of at most FoldLimit octets.
// Continuation lines carry one leading space. Cuts never fall inside a UTF-8
// sequence or between a backslash and the character it escapes.
func Fold(line string) []string {
	if len(line) <= FoldLimit {
		return []string{line}
	}

	var out []string
	limit := FoldLimit
	rest := line
	for len(rest) > limit {
		cut := safeCut(rest, limit)
		out = append(out, rest[:cut])
		rest = rest[cut:]
		limit = FoldLimit - 1
	}
	out = append(out, rest)
	for i := 1; i < len(out); i++ {
		out[i] = " " + out[i]
	}
	return out
}

func safeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	slashes := 0
	for i := cut - 1; i >= 0 && s[i] == '\\'; i-- {
		slashes++
	}
	if slashes%2 == 1 {
		cut--
	}
	if cut <= 0 {
		// A single rune longer than the limit cannot happen with UTF-8 and a
		// limit of 74; fall back to a hard cut to guarantee progress.
		return limit
	}
	return cut
}

// writeFolded writes one logical line as folded CRLF-terminated lines.
func writeFolded(w io.Writer, line string) error {
	for _, l := range Fold(line) {
		if _, err := io.WriteString(w, l); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
	}
	return nil
}
