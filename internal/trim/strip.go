package trim

import "icstrim/internal/ics"

// Strip removes, in place, every direct child of c whose name starts with
// prefix ("X-" when empty), then repeats on the children that remain. It
// returns the number of components removed.
func Strip(c *ics.Component, prefix string) int {
	removed := c.RemoveChildren(func(child *ics.Component) bool {
		return ics.IsExtensionName(child.Name, prefix)
	})
	for _, child := range c.Children {
		removed += Strip(child, prefix)
	}
	return removed
}

// StripEvents applies Strip to each top-level VEVENT of cal. Top-level
// components themselves are never removed.
func StripEvents(cal *ics.Calendar, prefix string) int {
	removed := 0
	for _, ev := range cal.Events() {
		removed += Strip(ev, prefix)
	}
	return removed
}
