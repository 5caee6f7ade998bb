package trim

import "time"

// MonthsBefore returns the start of the day that lies months calendar months
// before now, in now's location. The day of month is clamped to the length of
// the target month, so March 31 minus one month is the last day of February.
// Zero months gives the start of today.
func MonthsBefore(now time.Time, months int) time.Time {
	y, m, d := now.Date()
	total := int(m) - 1 - months
	ty := y + floorDiv(total, 12)
	tm := time.Month(total-floorDiv(total, 12)*12 + 1)
	if last := daysIn(ty, tm, now.Location()); d > last {
		d = last
	}
	return time.Date(ty, tm, d, 0, 0, 0, 0, now.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
