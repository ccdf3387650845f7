// Package fakedata generates synthetic labeled cascade datasets for
// local testing and load experiments. Bot-initiated cascades are
// shaped broadcast-style (a hub fanning out quickly); human-initiated
// cascades spread as slower reply chains. Sizes follow a Zipf
// distribution, matching the heavy tail of real cascade populations.
package fakedata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/misinfo-watch/cascadia/models"
)

type GenConfig struct {
	Cascades    int
	BotFraction float64 // probability a cascade is bot-initiated
	// UnknownFraction of non-initiator events carry no usable label
	UnknownFraction float64
	MaxSize         uint64
	Seed            int64
	Start           time.Time
}

func DefaultGenConfig() GenConfig {
	return GenConfig{
		Cascades:        100,
		BotFraction:     0.4,
		UnknownFraction: 0.05,
		MaxSize:         200,
		Seed:            42,
		Start:           time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// GenerateDataset produces an event table plus propagation edge lists
// keyed by cascade id. Output is deterministic for a given config.
func GenerateDataset(cfg GenConfig) (*models.EventTable, map[string][]models.Edge) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	faker := gofakeit.New(cfg.Seed)
	if cfg.MaxSize < 2 {
		cfg.MaxSize = 2
	}
	zipf := rand.NewZipf(rng, 1.07, 1, cfg.MaxSize-2)

	var events []models.Event
	graphs := make(map[string][]models.Edge, cfg.Cascades)

	for c := 0; c < cfg.Cascades; c++ {
		cascadeID := fmt.Sprintf("cascade-%04d", c)
		botInitiated := rng.Float64() < cfg.BotFraction
		size := int(zipf.Uint64()) + 2

		users := make([]string, size)
		for i := range users {
			users[i] = faker.Username()
		}

		initLabel := models.LabelHuman
		if botInitiated {
			initLabel = models.LabelBot
		}

		// bots fan out within minutes; humans trickle over hours
		step := time.Duration(2+rng.Intn(120)) * time.Minute
		if botInitiated {
			step = time.Duration(5+rng.Intn(120)) * time.Second
		}
		ts := cfg.Start.Add(time.Duration(c) * time.Hour)

		for i := 0; i < size; i++ {
			label := initLabel
			if i > 0 {
				switch {
				case rng.Float64() < cfg.UnknownFraction:
					label = models.LabelUnknown
				case botInitiated && rng.Float64() < 0.7:
					label = models.LabelBot
				case !botInitiated && rng.Float64() < 0.8:
					label = models.LabelHuman
				case botInitiated:
					label = models.LabelHuman
				default:
					label = models.LabelBot
				}
			}
			events = append(events, models.Event{
				PostID:    fmt.Sprintf("%s-post-%04d", cascadeID, i),
				UserID:    users[i],
				CascadeID: cascadeID,
				Timestamp: ts,
				BotLabel:  label,
				Text:      faker.Sentence(6),
			})
			ts = ts.Add(step + time.Duration(rng.Intn(30))*time.Second)

			if i == 0 {
				continue
			}
			parent := 0
			if !botInitiated {
				// chain-ish: attach to a recent participant
				parent = i - 1 - rng.Intn(min(i, 3))
			}
			graphs[cascadeID] = append(graphs[cascadeID], models.Edge{
				SourceUser: users[parent],
				TargetUser: users[i],
			})
		}
	}

	columns := []string{
		models.ColPostID, models.ColUserID, models.ColCascadeID,
		models.ColTimestamp, models.ColBotLabel, "text",
	}
	return models.NewEventTable(events, columns), graphs
}
