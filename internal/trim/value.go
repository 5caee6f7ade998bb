package trim

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	goical "github.com/emersion/go-ical"

	"icstrim/internal/ics"
	appLog "icstrim/internal/log"
	"icstrim/internal/model"
)

// Property and parameter names the resolver reads. Names without a constant
// in the ical package are spelled out.
var (
	propDtStart = string(ical.ComponentPropertyDtStart)
	propDtEnd   = string(ical.ComponentPropertyDtEnd)
	propRRule   = string(ical.ComponentPropertyRrule)
	propExDate  = string(ical.ComponentPropertyExdate)
	propSummary = string(ical.ComponentPropertySummary)
	propUID     = string(ical.ComponentPropertyUniqueId)
)

const (
	propDuration = "DURATION"
	propRDate    = "RDATE"
	propRecurID  = "RECURRENCE-ID"

	paramTZID  = "TZID"
	paramValue = "VALUE"
)

// parseValue decodes a single DATE or DATE-TIME value of p. The value type
// comes from VALUE=DATE or from the shape of the text. UTC ("Z") wins over
// TZID; a TZID unknown to the time-zone database degrades to floating.
func parseValue(p *ics.Property, raw string, floating *time.Location) (model.Instant, error) {
	raw = strings.TrimSpace(raw)
	vt, _ := p.Param(paramValue)
	dateOnly := strings.EqualFold(vt, "DATE") || (len(raw) == 8 && !strings.ContainsAny(raw, "Tt"))

	gp := goical.NewProp(p.Name)
	gp.Value = raw
	if dateOnly {
		gp.Params.Set(paramValue, "DATE")
	} else {
		gp.Params.Set(paramValue, "DATE-TIME")
	}

	inst := model.Instant{DateOnly: dateOnly, Zone: model.ZoneFloating}
	tzid, hasTZ := p.Param(paramTZID)
	switch {
	case !dateOnly && strings.HasSuffix(strings.ToUpper(raw), "Z"):
		gp.Value = strings.ToUpper(raw)
		inst.Zone = model.ZoneUTC
	case hasTZ && tzid != "" && !dateOnly:
		gp.Params.Set(paramTZID, tzid)
		inst.Zone = model.ZoneTZID
		inst.TZID = tzid
	}

	t, err := gp.DateTime(floating)
	if err != nil && inst.Zone == model.ZoneTZID {
		appLog.Debug("unknown TZID, reading value as floating", "tzid", tzid, "line", p.Line)
		delete(gp.Params, paramTZID)
		inst.Zone = model.ZoneFloating
		inst.TZID = ""
		t, err = gp.DateTime(floating)
	}
	if err != nil {
		return model.Instant{}, err
	}
	inst.Time = t
	return inst, nil
}

// parseValues decodes a comma-separated list (RDATE, EXDATE).
func parseValues(p *ics.Property, floating *time.Location) ([]model.Instant, error) {
	var out []model.Instant
	for _, part := range strings.Split(p.Value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		// PERIOD values (start/end) recur at their start.
		if i := strings.IndexByte(part, '/'); i >= 0 {
			part = part[:i]
		}
		inst, err := parseValue(p, part, floating)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// parseDuration decodes an RFC 5545 DURATION value.
func parseDuration(p *ics.Property) (time.Duration, error) {
	gp := goical.NewProp(propDuration)
	gp.Value = strings.TrimSpace(p.Value)
	return gp.Duration()
}

// addDuration applies d to start. Whole-day durations on a date-only start
// keep date precision and use calendar-day arithmetic.
func addDuration(start model.Instant, d time.Duration) model.Instant {
	end := start
	if start.DateOnly && d%(24*time.Hour) == 0 {
		end.Time = start.Time.AddDate(0, 0, int(d/(24*time.Hour)))
		return end
	}
	end.DateOnly = false
	end.Time = start.Time.Add(d)
	return end
}
