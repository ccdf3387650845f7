package analysis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misinfo-watch/cascadia/models"
)

var allColumns = []string{
	models.ColPostID, models.ColUserID, models.ColCascadeID,
	models.ColTimestamp, models.ColBotLabel,
}

// fixtureTable builds a small dataset: a bot-initiated cascade with a
// star-shaped graph, a human-initiated cascade with a chain-shaped
// graph, and an unlabeled-initiator cascade.
func fixtureTable() (*models.EventTable, map[string][]models.Edge) {
	base := time.Date(2023, 6, 13, 12, 0, 0, 0, time.UTC)
	var events []models.Event
	add := func(post, user, cascade string, offset time.Duration, label models.Label) {
		events = append(events, models.Event{
			PostID:    post,
			UserID:    user,
			CascadeID: cascade,
			Timestamp: base.Add(offset),
			BotLabel:  label,
		})
	}

	add("p1", "amp-bot", "c-bot", 0, models.LabelBot)
	add("p2", "u1", "c-bot", 10*time.Minute, models.LabelHuman)
	add("p3", "u2", "c-bot", 20*time.Minute, models.LabelBot)
	add("p4", "u3", "c-bot", 30*time.Minute, models.LabelHuman)

	add("p5", "alice", "c-human", 0, models.LabelHuman)
	add("p6", "bob", "c-human", time.Hour, models.LabelHuman)
	add("p7", "carol", "c-human", 2*time.Hour, models.LabelHuman)
	add("p8", "dave", "c-human", 3*time.Hour, models.LabelHuman)
	add("p9", "erin", "c-human", 4*time.Hour, models.LabelHuman)

	add("p10", "mystery", "c-unlabeled", 0, models.LabelUnknown)
	add("p11", "u9", "c-unlabeled", time.Minute, models.LabelHuman)

	graphs := map[string][]models.Edge{
		"c-bot": {
			{SourceUser: "amp-bot", TargetUser: "u1"},
			{SourceUser: "amp-bot", TargetUser: "u2"},
			{SourceUser: "amp-bot", TargetUser: "u3"},
		},
		"c-human": {
			{SourceUser: "alice", TargetUser: "bob"},
			{SourceUser: "bob", TargetUser: "carol"},
			{SourceUser: "carol", TargetUser: "dave"},
			{SourceUser: "dave", TargetUser: "erin"},
		},
	}
	return models.NewEventTable(events, allColumns), graphs
}

func TestEngineRun(t *testing.T) {
	assert := assert.New(t)

	table, graphs := fixtureTable()
	eng := NewEngine(nil, nil)

	res, err := eng.Run(context.Background(), table, graphs, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(1, res.Diagnostics.BotCascades)
	assert.Equal(1, res.Diagnostics.HumanCascades)
	assert.Equal(1, res.Diagnostics.ExcludedCascades)
	assert.Equal(2, res.Diagnostics.ExcludedEvents)
	assert.Empty(res.Diagnostics.SkippedGraphs)

	botCM, ok := res.Cascade("c-bot")
	require.True(t, ok)
	assert.Equal(models.LabelBot, botCM.Cohort)
	assert.Equal(4, botCM.Size)
	assert.InDelta(8.0, botCM.Velocity, 1e-9) // 4 events over 30 min
	require.NotNil(t, botCM.MaxDepth)
	assert.Equal(1, *botCM.MaxDepth) // star
	assert.InDelta(0.5, botCM.BotRatio, 1e-9)

	humanCM, ok := res.Cascade("c-human")
	require.True(t, ok)
	require.NotNil(t, humanCM.MaxDepth)
	assert.Equal(3, *humanCM.MaxDepth) // chain, rooted at the first max-degree node
	require.NotNil(t, humanCM.StructuralVirality)
	require.NotNil(t, botCM.StructuralVirality)
	assert.Greater(*humanCM.StructuralVirality, *botCM.StructuralVirality,
		"chain spread should score more viral than broadcast spread")

	// no graph supplied for the unlabeled cascade
	exCM, ok := res.Cascade("c-unlabeled")
	require.True(t, ok)
	assert.Nil(exCM.MaxDepth)
	assert.Nil(exCM.StructuralVirality)

	// attribution denominators
	assert.Equal(11, res.Attribution.TotalPosts)
	assert.Equal(2, res.Attribution.BotPosts)
	assert.Equal(8, res.Attribution.HumanPosts)
	assert.Equal(1, res.Attribution.BotInitiatedCascades)
	assert.InDelta(50.0, res.Attribution.BotInitiationPercentage, 1e-9)

	// render hints pass through for the external visualizer
	assert.Equal(LayoutSpring, res.Render.Layout)
	assert.InDelta(0.85, res.Render.Damping, 1e-9)
}

func TestEngineSchemaErrorIsFatal(t *testing.T) {
	table := models.NewEventTable(nil, []string{models.ColPostID, models.ColCascadeID, models.ColTimestamp})
	eng := NewEngine(nil, nil)

	res, err := eng.Run(context.Background(), table, nil, DefaultConfig())
	require.Error(t, err)
	assert.Nil(t, res, "no partial output on schema failure")

	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Missing, models.ColBotLabel)
}

func TestEngineIsolatesMalformedGraph(t *testing.T) {
	assert := assert.New(t)

	table, graphs := fixtureTable()
	graphs["c-bot"] = append(graphs["c-bot"], models.Edge{SourceUser: "", TargetUser: "u1"})

	eng := NewEngine(nil, nil)
	res, err := eng.Run(context.Background(), table, graphs, DefaultConfig())
	require.NoError(t, err, "one bad cascade must never abort the batch")

	require.Len(t, res.Diagnostics.SkippedGraphs, 1)
	assert.Equal("c-bot", res.Diagnostics.SkippedGraphs[0].CascadeID)

	// the poisoned cascade keeps its temporal metrics
	botCM, ok := res.Cascade("c-bot")
	require.True(t, ok)
	assert.Nil(botCM.MaxDepth)
	assert.Greater(botCM.Velocity, 0.0)

	// everyone else is untouched
	humanCM, ok := res.Cascade("c-human")
	require.True(t, ok)
	assert.NotNil(humanCM.MaxDepth)
}

func TestEngineInvalidConfig(t *testing.T) {
	table, _ := fixtureTable()
	eng := NewEngine(nil, nil)

	_, err := eng.Run(context.Background(), table, nil, Config{Window: "weekly"})
	assert.Error(t, err)

	_, err = eng.Run(context.Background(), table, nil, Config{Damping: 1.5})
	assert.Error(t, err)
}

func TestEngineManyCascadesParallel(t *testing.T) {
	assert := assert.New(t)

	base := time.Date(2023, 6, 13, 0, 0, 0, 0, time.UTC)
	var events []models.Event
	for c := 0; c < 200; c++ {
		label := models.LabelBot
		if c%2 == 0 {
			label = models.LabelHuman
		}
		id := fmt.Sprintf("c%03d", c)
		for i := 0; i < 5; i++ {
			events = append(events, models.Event{
				PostID:    fmt.Sprintf("%s-p%d", id, i),
				UserID:    fmt.Sprintf("%s-u%d", id, i),
				CascadeID: id,
				Timestamp: base.Add(time.Duration(i) * time.Minute),
				BotLabel:  label,
			})
		}
	}
	table := models.NewEventTable(events, allColumns)

	cfg := DefaultConfig()
	cfg.Workers = 8
	eng := NewEngine(nil, nil)
	res, err := eng.Run(context.Background(), table, nil, cfg)
	require.NoError(t, err)

	assert.Len(res.Cascades, 200)
	assert.Equal(100, res.Diagnostics.BotCascades)
	assert.Equal(100, res.Diagnostics.HumanCascades)

	// partition property: every event is accounted for
	total := res.Diagnostics.ExcludedEvents
	for _, cm := range res.Cascades {
		if cm.Cohort == models.LabelBot || cm.Cohort == models.LabelHuman {
			total += cm.Size
		}
	}
	assert.Equal(len(events), total)
}

// trackingObserver records callbacks; safe for concurrent workers.
type trackingObserver struct {
	mu        sync.Mutex
	stages    []string
	processed int
	skipped   int
}

func (o *trackingObserver) StageStarted(stage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}
func (o *trackingObserver) StageCompleted(string, time.Duration) {}
func (o *trackingObserver) CascadeProcessed(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed++
}
func (o *trackingObserver) GraphSkipped(string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped++
}

func TestEngineObserver(t *testing.T) {
	assert := assert.New(t)

	table, graphs := fixtureTable()
	graphs["c-human"] = []models.Edge{{SourceUser: "alice", TargetUser: ""}}

	obs := &trackingObserver{}
	eng := NewEngine(nil, obs)
	_, err := eng.Run(context.Background(), table, graphs, DefaultConfig())
	require.NoError(t, err)

	assert.Equal([]string{"extract", "cascade-metrics", "aggregate"}, obs.stages)
	assert.Equal(3, obs.processed)
	assert.Equal(1, obs.skipped)
}
