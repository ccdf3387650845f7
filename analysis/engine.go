// Package analysis is the cascade analysis engine: it partitions a
// labeled event table into cohorts, computes per-cascade temporal and
// structural metrics in parallel, and reduces them into cohort-level
// comparisons and attribution totals.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/misinfo-watch/cascadia/cascades"
	"github.com/misinfo-watch/cascadia/models"
	"github.com/misinfo-watch/cascadia/propgraph"
	"github.com/misinfo-watch/cascadia/temporal"
)

// Engine runs the full analysis pipeline. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	Logger   *slog.Logger
	Observer Observer
}

func NewEngine(logger *slog.Logger, obs Observer) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &Engine{
		Logger:   logger.With("system", "analysis"),
		Observer: obs,
	}
}

// Run executes the pipeline: schema validation, cohort extraction,
// parallel per-cascade metrics, then a single-coordinator reduction.
// graphs maps cascade_id to that cascade's propagation edge list;
// cascades without an entry simply skip structural metrics. A
// malformed graph never aborts the batch: that cascade's structural
// metrics are skipped and the condition recorded in diagnostics.
func (e *Engine) Run(ctx context.Context, table *models.EventTable, graphs map[string][]models.Edge, cfg Config) (*Results, error) {
	start := time.Now()
	res, err := e.run(ctx, table, graphs, cfg)
	if err != nil {
		analysisRunsCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	analysisRunsCounter.WithLabelValues("ok").Inc()
	analysisDuration.Observe(time.Since(start).Seconds())
	return res, nil
}

func (e *Engine) run(ctx context.Context, table *models.EventTable, graphs map[string][]models.Edge, cfg Config) (*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// schema failures are fatal before any partial output
	if err := table.Require(models.ColCascadeID, models.ColBotLabel, models.ColTimestamp); err != nil {
		return nil, err
	}

	e.Observer.StageStarted("extract")
	extractStart := time.Now()
	cohorts, err := cascades.Extract(table)
	if err != nil {
		return nil, err
	}
	e.Observer.StageCompleted("extract", time.Since(extractStart))
	e.Logger.Info("cohorts extracted",
		"bot", len(cohorts.Bot),
		"human", len(cohorts.Human),
		"excluded", len(cohorts.Excluded))

	e.Observer.StageStarted("cascade-metrics")
	metricsStart := time.Now()
	all := cohorts.All()
	perCascade := make([]CascadeMetrics, len(all))
	skipped := make([]*SkippedGraph, len(all))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, cascade := range all {
		i, cascade := i, cascade // per-iteration copies for go <1.22 loop semantics
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perCascade[i], skipped[i] = e.cascadeMetrics(cascade, graphs[cascade.ID], cfg)
			cascadesProcessedCounter.WithLabelValues(string(perCascade[i].Cohort)).Inc()
			e.Observer.CascadeProcessed(cascade.ID)
			return nil
		})
	}
	// barrier: aggregation below is a pure reduction over completed
	// worker results, written by this coordinator only
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	e.Observer.StageCompleted("cascade-metrics", time.Since(metricsStart))

	e.Observer.StageStarted("aggregate")
	aggStart := time.Now()

	attribution, err := ComputeAttribution(table, cohorts)
	if err != nil {
		return nil, err
	}

	res := &Results{
		Speed:       speedMetrics(cohorts.Bot, cohorts.Human),
		Reach:       reachMetrics(cohorts.Bot, cohorts.Human),
		Temporal:    e.temporalBlock(table, cfg.Window),
		Comparison:  Compare(cohorts.Bot, cohorts.Human),
		Attribution: attribution,
		Cascades:    perCascade,
		Diagnostics: Diagnostics{
			BotCascades:      len(cohorts.Bot),
			HumanCascades:    len(cohorts.Human),
			ExcludedCascades: len(cohorts.Excluded),
			ExcludedEvents:   cohorts.ExcludedEventCount(),
		},
		Render: RenderHints{
			Layout:  cfg.Layout,
			Damping: cfg.Damping,
		},
	}
	for _, s := range skipped {
		if s != nil {
			res.Diagnostics.SkippedGraphs = append(res.Diagnostics.SkippedGraphs, *s)
		}
	}
	e.Observer.StageCompleted("aggregate", time.Since(aggStart))
	return res, nil
}

// cascadeMetrics computes one cascade's metric bundle. The worker
// exclusively owns its cascade's data, so no locking is needed here.
func (e *Engine) cascadeMetrics(c *models.Cascade, edges []models.Edge, cfg Config) (CascadeMetrics, *SkippedGraph) {
	bots, humans := c.LabelCounts()
	cm := CascadeMetrics{
		CascadeID:     c.ID,
		Cohort:        c.InitiatorLabel(),
		Size:          c.Size(),
		UniqueUsers:   c.UniqueUsers(),
		DurationHours: c.Duration().Hours(),
		Velocity:      temporal.Velocity(c),
		BotCount:      bots,
		HumanCount:    humans,
	}
	if bots+humans > 0 {
		cm.BotRatio = float64(bots) / float64(bots+humans)
	}
	if edges == nil {
		return cm, nil
	}

	depth, virality, err := e.structuralMetrics(c.ID, edges)
	if err != nil {
		gerr := &models.GraphError{CascadeID: c.ID, Err: err}
		graphsSkippedCounter.Inc()
		e.Observer.GraphSkipped(c.ID, gerr)
		return cm, &SkippedGraph{CascadeID: c.ID, Reason: err.Error()}
	}
	cm.MaxDepth = &depth
	cm.StructuralVirality = &virality
	return cm, nil
}

// structuralMetrics builds the propagation graph and computes depth
// and structural virality. Panics are contained so one poisoned
// cascade cannot take down the batch (same isolation an HTTP server
// gives a bad request).
func (e *Engine) structuralMetrics(cascadeID string, edges []models.Edge) (depth int, virality float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("structural metrics panicked", "cascade", cascadeID, "err", r)
			err = fmt.Errorf("structural metrics panicked: %v", r)
		}
	}()

	g := propgraph.NewGraph()
	for _, edge := range edges {
		if err := g.AddEdge(edge.SourceUser, edge.TargetUser); err != nil {
			return 0, 0, err
		}
	}
	return g.Depth(), g.StructuralVirality(), nil
}

// temporalBlock buckets posting activity for bot-labeled vs
// human-labeled events at the configured window granularity.
func (e *Engine) temporalBlock(table *models.EventTable, window Window) TemporalBlock {
	var botEvents, humanEvents []models.Event
	for _, ev := range table.Events {
		switch ev.BotLabel {
		case models.LabelBot:
			botEvents = append(botEvents, ev)
		case models.LabelHuman:
			humanEvents = append(humanEvents, ev)
		}
	}

	pattern := temporal.HourlyPattern
	if window == WindowDaily {
		pattern = temporal.DailyPattern
	}
	return TemporalBlock{
		Window: window,
		Bot:    pattern(botEvents),
		Human:  pattern(humanEvents),
	}
}
