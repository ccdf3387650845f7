// Package ingest loads labeled event tables and propagation edge
// lists from CSV or JSONL files. Loading is deliberately lenient
// about row content (bad rows are logged and skipped, like any bulk
// loader) but strict about schema: a missing required column comes
// back as a SchemaError before any analysis runs.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/misinfo-watch/cascadia/models"
	"github.com/misinfo-watch/cascadia/util"
)

// parseTimestamp tries the ISO-8601 fast path first, then falls back
// to lenient parsing for the messier formats real datasets carry.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := util.ParseTimestamp(s); err == nil {
		return t, nil
	}
	return dateparse.ParseAny(s)
}

// LoadEventsCSV reads a header-driven CSV event table. Column order
// does not matter; unknown columns are ignored. Rows with an
// unparsable timestamp are skipped and logged.
func LoadEventsCSV(path string) (*models.EventTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events CSV (%s): %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read events CSV header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var events []models.Event
	skipped := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read events CSV row %d: %w", line, err)
		}

		ev := models.Event{
			PostID:    field(row, models.ColPostID),
			UserID:    field(row, models.ColUserID),
			CascadeID: field(row, models.ColCascadeID),
			BotLabel:  models.ParseLabel(field(row, models.ColBotLabel)),
			Text:      field(row, "text"),
		}
		if raw := field(row, models.ColTimestamp); raw != "" {
			ts, err := parseTimestamp(raw)
			if err != nil {
				slog.Warn("skipping event with bad timestamp", "path", path, "line", line, "timestamp", raw)
				skipped++
				continue
			}
			ev.Timestamp = ts
		}
		events = append(events, ev)
	}
	if skipped > 0 {
		slog.Info("loaded events with skips", "path", path, "events", len(events), "skipped", skipped)
	}

	return models.NewEventTable(events, header), nil
}

// LoadEventsJSONL reads a stream of JSON event objects, one per line.
// The table's column set is the union of keys seen across records.
func LoadEventsJSONL(path string) (*models.EventTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events JSONL (%s): %w", path, err)
	}
	defer f.Close()

	type rawEvent struct {
		PostID    string `json:"post_id"`
		UserID    string `json:"user_id"`
		CascadeID string `json:"cascade_id"`
		Timestamp string `json:"timestamp"`
		BotLabel  string `json:"bot_label"`
		Text      string `json:"text"`
	}

	columns := map[string]bool{}
	var events []models.Event
	skipped := 0

	decoder := json.NewDecoder(f)
	for decoder.More() {
		var keys map[string]json.RawMessage
		if err := decoder.Decode(&keys); err != nil {
			return nil, fmt.Errorf("parse event record: %w", err)
		}
		for k := range keys {
			columns[k] = true
		}

		buf, _ := json.Marshal(keys)
		var raw rawEvent
		if err := json.Unmarshal(buf, &raw); err != nil {
			return nil, fmt.Errorf("parse event record: %w", err)
		}

		ev := models.Event{
			PostID:    raw.PostID,
			UserID:    raw.UserID,
			CascadeID: raw.CascadeID,
			BotLabel:  models.ParseLabel(raw.BotLabel),
			Text:      raw.Text,
		}
		if raw.Timestamp != "" {
			ts, err := parseTimestamp(raw.Timestamp)
			if err != nil {
				slog.Warn("skipping event with bad timestamp", "path", path, "timestamp", raw.Timestamp)
				skipped++
				continue
			}
			ev.Timestamp = ts
		}
		events = append(events, ev)
	}
	if skipped > 0 {
		slog.Info("loaded events with skips", "path", path, "events", len(events), "skipped", skipped)
	}

	cols := make([]string, 0, len(columns))
	for k := range columns {
		cols = append(cols, k)
	}
	return models.NewEventTable(events, cols), nil
}

// LoadEdgesCSV reads a propagation edge list keyed by cascade_id.
// Returns a SchemaError if the header lacks cascade_id, source_user,
// or target_user.
func LoadEdgesCSV(path string) (map[string][]models.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edges CSV (%s): %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read edges CSV header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range []string{models.ColCascadeID, "source_user", "target_user"} {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &models.SchemaError{Missing: missing}
	}

	graphs := map[string][]models.Edge{}
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read edges CSV row %d: %w", line, err)
		}
		cascadeID := strings.TrimSpace(row[col[models.ColCascadeID]])
		graphs[cascadeID] = append(graphs[cascadeID], models.Edge{
			SourceUser: strings.TrimSpace(row[col["source_user"]]),
			TargetUser: strings.TrimSpace(row[col["target_user"]]),
		})
	}
	return graphs, nil
}
