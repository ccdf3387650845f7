package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Label is the bot/human classification attached to an event's author.
type Label string

const (
	LabelBot     Label = "bot"
	LabelHuman   Label = "human"
	LabelUnknown Label = "unknown"
)

// ParseLabel normalizes a raw label string. Anything that is not
// explicitly bot or human is treated as unknown.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bot":
		return LabelBot
	case "human":
		return LabelHuman
	default:
		return LabelUnknown
	}
}

// Event is one labeled post in the dataset. Events are immutable once
// loaded.
type Event struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CascadeID string    `json:"cascade_id"`
	Timestamp time.Time `json:"timestamp"`
	BotLabel  Label     `json:"bot_label"`
	Text      string    `json:"text,omitempty"`
}

// Edge is one observed influence relation (reply/share) inside a
// cascade's propagation graph.
type Edge struct {
	SourceUser string `json:"source_user"`
	TargetUser string `json:"target_user"`
}

// EventTable is a loaded event dataset plus the set of columns the
// source actually carried. Column tracking is what lets the analysis
// layers fail with a SchemaError naming the missing field instead of
// silently operating on zero values.
type EventTable struct {
	Events  []Event
	columns map[string]bool
}

// Required columns for any analysis run.
const (
	ColPostID    = "post_id"
	ColUserID    = "user_id"
	ColCascadeID = "cascade_id"
	ColTimestamp = "timestamp"
	ColBotLabel  = "bot_label"
)

func NewEventTable(events []Event, columns []string) *EventTable {
	cols := make(map[string]bool, len(columns))
	for _, c := range columns {
		cols[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return &EventTable{Events: events, columns: cols}
}

func (t *EventTable) HasColumn(name string) bool {
	return t.columns[name]
}

// Require returns a SchemaError naming every missing column, or nil.
func (t *EventTable) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.columns[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Statistics summarizes a loaded table, in the spirit of a dataset
// health check: totals, label coverage, and temporal coverage.
type TableStatistics struct {
	TotalRecords int        `json:"total_records"`
	UniqueUsers  int        `json:"unique_users"`
	BotLabeled   int        `json:"bot_labeled_records"`
	BotCount     int        `json:"bot_count"`
	HumanCount   int        `json:"human_count"`
	EarliestPost *time.Time `json:"earliest_post,omitempty"`
	LatestPost   *time.Time `json:"latest_post,omitempty"`
}

func (t *EventTable) Statistics() TableStatistics {
	stats := TableStatistics{TotalRecords: len(t.Events)}
	users := make(map[string]struct{})
	for _, ev := range t.Events {
		users[ev.UserID] = struct{}{}
		switch ev.BotLabel {
		case LabelBot:
			stats.BotCount++
			stats.BotLabeled++
		case LabelHuman:
			stats.HumanCount++
			stats.BotLabeled++
		}
		if !ev.Timestamp.IsZero() {
			if stats.EarliestPost == nil || ev.Timestamp.Before(*stats.EarliestPost) {
				ts := ev.Timestamp
				stats.EarliestPost = &ts
			}
			if stats.LatestPost == nil || ev.Timestamp.After(*stats.LatestPost) {
				ts := ev.Timestamp
				stats.LatestPost = &ts
			}
		}
	}
	stats.UniqueUsers = len(users)
	return stats
}

// Cascade is the view over all events sharing one cascade_id. Events
// are kept sorted by (timestamp, post_id) so the initiator and every
// derived attribute are reproducible across runs.
type Cascade struct {
	ID     string
	Events []Event
}

// NewCascade sorts the given events into canonical order.
func NewCascade(id string, events []Event) *Cascade {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].PostID < sorted[j].PostID
	})
	return &Cascade{ID: id, Events: sorted}
}

func (c *Cascade) Size() int {
	return len(c.Events)
}

// InitiatorLabel is the label of the chronologically earliest event,
// ties broken by post_id.
func (c *Cascade) InitiatorLabel() Label {
	if len(c.Events) == 0 {
		return LabelUnknown
	}
	return c.Events[0].BotLabel
}

func (c *Cascade) UniqueUsers() int {
	users := make(map[string]struct{}, len(c.Events))
	for _, ev := range c.Events {
		users[ev.UserID] = struct{}{}
	}
	return len(users)
}

// Duration is the span between the earliest and latest event. Always
// non-negative; zero for empty or single-event cascades.
func (c *Cascade) Duration() time.Duration {
	if len(c.Events) < 2 {
		return 0
	}
	return c.Events[len(c.Events)-1].Timestamp.Sub(c.Events[0].Timestamp)
}

// LabelCounts returns the bot and human event counts in the cascade.
func (c *Cascade) LabelCounts() (bots, humans int) {
	for _, ev := range c.Events {
		switch ev.BotLabel {
		case LabelBot:
			bots++
		case LabelHuman:
			humans++
		}
	}
	return bots, humans
}

// SchemaError reports required input columns missing from a dataset.
// It is fatal: no partial analysis output is produced.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// GraphError reports a malformed propagation graph for one cascade.
// It is isolated: the cascade's structural metrics are skipped and the
// rest of the batch continues.
type GraphError struct {
	CascadeID string
	Err       error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("propagation graph for cascade %s: %v", e.CascadeID, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}
