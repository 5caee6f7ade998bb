package ics

import (
	"bufio"
	"bytes"
	"io"
)

// Serialize writes cal as folded, CRLF-terminated content lines. Property and
// parameter order is emitted exactly as held in the tree.
func Serialize(w io.Writer, cal *Calendar) error {
	bw := bufio.NewWriter(w)
	if err := writeComponent(bw, cal.Component); err != nil {
		return err
	}
	return bw.Flush()
}

// Marshal renders cal to a byte slice.
func Marshal(cal *Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeComponent(w io.Writer, c *Component) error {
	if err := writeFolded(w, PropBegin+":"+c.Name); err != nil {
		return err
	}
	for _, p := range c.Props {
		if err := writeFolded(w, p.String()); err != nil {
			return err
		}
	}
	for _, child := range c.Children {
		if err := writeComponent(w, child); err != nil {
			return err
		}
	}
	return writeFolded(w, PropEnd+":"+c.Name)
}
