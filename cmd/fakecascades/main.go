// fakecascades writes a synthetic labeled cascade dataset (events CSV
// plus propagation edge list CSV) for feeding the cascadia daemon.
package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	"github.com/misinfo-watch/cascadia/fakedata"
	"github.com/misinfo-watch/cascadia/models"
)

func main() {
	app := cli.App{
		Name:    "fakecascades",
		Usage:   "generate synthetic labeled cascade datasets",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:  "cascades",
			Usage: "number of cascades to generate",
			Value: 100,
		},
		&cli.Float64Flag{
			Name:  "bot-fraction",
			Usage: "fraction of cascades initiated by bots",
			Value: 0.4,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "rng seed",
			Value: 42,
		},
		&cli.StringFlag{
			Name:  "events-out",
			Usage: "output path for events CSV",
			Value: "events.csv",
		},
		&cli.StringFlag{
			Name:  "edges-out",
			Usage: "output path for edge list CSV",
			Value: "edges.csv",
		},
	}

	app.Action = generate

	if err := app.Run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func generate(cctx *cli.Context) error {
	cfg := fakedata.DefaultGenConfig()
	cfg.Cascades = cctx.Int("cascades")
	cfg.BotFraction = cctx.Float64("bot-fraction")
	cfg.Seed = cctx.Int64("seed")

	table, graphs := fakedata.GenerateDataset(cfg)

	if err := writeEvents(cctx.String("events-out"), table.Events); err != nil {
		return err
	}
	if err := writeEdges(cctx.String("edges-out"), graphs); err != nil {
		return err
	}

	slog.Info("dataset written",
		"events", len(table.Events),
		"cascades", cfg.Cascades,
		"events_path", cctx.String("events-out"),
		"edges_path", cctx.String("edges-out"))
	return nil
}

func writeEvents(path string, events []models.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"post_id", "user_id", "cascade_id", "timestamp", "bot_label", "text"}); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			ev.PostID, ev.UserID, ev.CascadeID,
			ev.Timestamp.UTC().Format(time.RFC3339),
			string(ev.BotLabel), ev.Text,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeEdges(path string, graphs map[string][]models.Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	ids := make([]string, 0, len(graphs))
	for id := range graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := csv.NewWriter(f)
	if err := w.Write([]string{"cascade_id", "source_user", "target_user"}); err != nil {
		return err
	}
	for _, id := range ids {
		for _, edge := range graphs[id] {
			if err := w.Write([]string{id, edge.SourceUser, edge.TargetUser}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
