// Package cascades partitions a flat labeled event table into
// propagation cascades and classifies each cascade's cohort by the
// label of its initiator.
package cascades

import (
	"sort"

	"github.com/misinfo-watch/cascadia/models"
)

// Cohorts is the result of splitting a table: the two compared
// populations plus the cascades excluded because their initiator is
// neither bot nor human. Excluded cascades stay visible so size and
// attribution totals remain exact.
type Cohorts struct {
	Bot      []*models.Cascade
	Human    []*models.Cascade
	Excluded []*models.Cascade
}

// All returns every cascade across the three groups.
func (c *Cohorts) All() []*models.Cascade {
	out := make([]*models.Cascade, 0, len(c.Bot)+len(c.Human)+len(c.Excluded))
	out = append(out, c.Bot...)
	out = append(out, c.Human...)
	out = append(out, c.Excluded...)
	return out
}

// ExcludedEventCount is the number of events in cascades excluded for
// an unknown initiator label.
func (c *Cohorts) ExcludedEventCount() int {
	n := 0
	for _, cas := range c.Excluded {
		n += cas.Size()
	}
	return n
}

// Extract groups events by cascade_id and classifies each cascade by
// its initiator: the earliest event under ascending (timestamp,
// post_id) ordering, which makes the classification reproducible even
// when timestamps tie. The function is pure; the input table is not
// modified.
//
// Returns a SchemaError naming the missing column(s) if the table
// lacks cascade_id or bot_label.
func Extract(table *models.EventTable) (*Cohorts, error) {
	if err := table.Require(models.ColCascadeID, models.ColBotLabel); err != nil {
		return nil, err
	}

	groups := make(map[string][]models.Event)
	order := make([]string, 0)
	for _, ev := range table.Events {
		if _, seen := groups[ev.CascadeID]; !seen {
			order = append(order, ev.CascadeID)
		}
		groups[ev.CascadeID] = append(groups[ev.CascadeID], ev)
	}
	// cascade order is stable regardless of input row order
	sort.Strings(order)

	cohorts := &Cohorts{}
	for _, id := range order {
		cascade := models.NewCascade(id, groups[id])
		switch cascade.InitiatorLabel() {
		case models.LabelBot:
			cohorts.Bot = append(cohorts.Bot, cascade)
		case models.LabelHuman:
			cohorts.Human = append(cohorts.Human, cascade)
		default:
			cohorts.Excluded = append(cohorts.Excluded, cascade)
		}
	}
	return cohorts, nil
}
