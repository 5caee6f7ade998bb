package trim

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"icstrim/internal/ics"
	appLog "icstrim/internal/log"
	"icstrim/internal/model"
)

// FilterResult counts what Filter did. Kept + Removed + len(Skipped) == Total.
type FilterResult struct {
	Total    int
	Kept     int
	Removed  int
	Skipped  []model.SkippedEvent
	Retained []model.RetainedEvent
}

// Filter removes from cal every top-level VEVENT that ends strictly before
// cutoff. Events whose end cannot be resolved are removed as well and
// reported in Skipped. Other top-level components and all calendar
// properties are left alone. ctx is checked once per top-level component.
func Filter(ctx context.Context, cal *ics.Calendar, cutoff time.Time, r *Resolver) (FilterResult, error) {
	var res FilterResult
	var cancelled error

	index := 0
	cal.RemoveChildren(func(c *ics.Component) bool {
		if cancelled != nil {
			return false
		}
		if err := ctx.Err(); err != nil {
			cancelled = err
			return false
		}
		if c.Kind != ics.KindEvent {
			appLog.Debug("passing component through", "kind", c.Kind.String(), "name", c.Name)
			return false
		}

		index++
		res.Total++
		id := EventID(c, index)

		end, err := r.ResolveEnd(c)
		if err != nil {
			var ue *UnresolvableEndError
			reason := err.Error()
			if errors.As(err, &ue) {
				ue.EventID = id
				reason = ue.Error()
			}
			appLog.Debug("event end unresolvable, skipping", "event", id, "reason", reason)
			res.Skipped = append(res.Skipped, model.SkippedEvent{ID: id, Reason: reason})
			return true
		}

		if end.Before(cutoff) {
			appLog.Debug("event ends before cutoff, removing", "event", id, "end", end.String())
			res.Removed++
			return true
		}

		res.Kept++
		res.Retained = append(res.Retained, model.RetainedEvent{
			ID:      id,
			Summary: DisplayName(c),
			End:     end,
		})
		return false
	})

	if cancelled != nil {
		return FilterResult{}, cancelled
	}
	return res, nil
}
