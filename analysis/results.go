package analysis

import (
	"github.com/misinfo-watch/cascadia/models"
	"github.com/misinfo-watch/cascadia/temporal"
)

// CascadeMetrics is the per-cascade metric bundle. Structural fields
// are nil when the cascade has no propagation graph or its graph was
// skipped as malformed.
type CascadeMetrics struct {
	CascadeID          string       `json:"cascade_id"`
	Cohort             models.Label `json:"cohort"`
	Size               int          `json:"size"`
	UniqueUsers        int          `json:"unique_users"`
	DurationHours      float64      `json:"duration_hours"`
	Velocity           float64      `json:"velocity"`
	BotCount           int          `json:"bot_count"`
	HumanCount         int          `json:"human_count"`
	BotRatio           float64      `json:"bot_ratio"`
	MaxDepth           *int         `json:"max_depth,omitempty"`
	StructuralVirality *float64     `json:"structural_virality,omitempty"`
}

// SpeedMetrics summarizes spread velocity per cohort.
type SpeedMetrics struct {
	BotAvgVelocity    float64 `json:"bot_avg_velocity"`
	BotMedianVelocity float64 `json:"bot_median_velocity"`

	HumanAvgVelocity    float64 `json:"human_avg_velocity"`
	HumanMedianVelocity float64 `json:"human_median_velocity"`

	// bot mean over human mean; 0 when the human mean is 0
	VelocityRatio float64 `json:"velocity_ratio"`
}

// ReachMetrics summarizes audience reach per cohort, plus the
// per-cascade reach table.
type ReachMetrics struct {
	BotAvgSize    float64 `json:"bot_avg_size"`
	BotMedianSize float64 `json:"bot_median_size"`
	BotMaxSize    float64 `json:"bot_max_size"`

	HumanAvgSize    float64 `json:"human_avg_size"`
	HumanMedianSize float64 `json:"human_median_size"`
	HumanMaxSize    float64 `json:"human_max_size"`

	SizeRatio float64 `json:"size_ratio"`
}

// TemporalBlock holds posting patterns for bot-labeled vs
// human-labeled events (event-level, not cohort-level).
type TemporalBlock struct {
	Window Window           `json:"window"`
	Bot    temporal.Pattern `json:"bot"`
	Human  temporal.Pattern `json:"human"`
}

// ComparisonResult holds cohort point estimates and rank-sum test
// outcomes for size and velocity. Test fields are nil when either
// cohort has fewer than two cascades or the test degenerates.
type ComparisonResult struct {
	BotAvgSize   float64 `json:"bot_avg_size"`
	HumanAvgSize float64 `json:"human_avg_size"`

	BotAvgVelocity   float64 `json:"bot_avg_velocity"`
	HumanAvgVelocity float64 `json:"human_avg_velocity"`

	SizeDifference     float64 `json:"size_difference"`
	VelocityDifference float64 `json:"velocity_difference"`
	SizeRatio          float64 `json:"size_ratio"`
	VelocityRatio      float64 `json:"velocity_ratio"`

	SizeU          *float64 `json:"size_u,omitempty"`
	SizePValue     *float64 `json:"size_pvalue,omitempty"`
	VelocityU      *float64 `json:"velocity_u,omitempty"`
	VelocityPValue *float64 `json:"velocity_pvalue,omitempty"`
}

// Attribution quantifies global bot involvement over the full event
// table and over cascade initiations.
type Attribution struct {
	TotalPosts        int     `json:"total_posts"`
	BotPosts          int     `json:"bot_posts"`
	HumanPosts        int     `json:"human_posts"`
	BotPostPercentage float64 `json:"bot_post_percentage"`

	BotInitiatedCascades   int `json:"bot_initiated_cascades"`
	HumanInitiatedCascades int `json:"human_initiated_cascades"`
	// denominator excludes cascades with an unknown initiator
	BotInitiationPercentage float64 `json:"bot_initiation_percentage"`
}

// SkippedGraph records one cascade whose structural metrics were
// skipped.
type SkippedGraph struct {
	CascadeID string `json:"cascade_id"`
	Reason    string `json:"reason"`
}

// Diagnostics carries run-level counts and partial-failure records.
type Diagnostics struct {
	BotCascades      int            `json:"bot_cascades"`
	HumanCascades    int            `json:"human_cascades"`
	ExcludedCascades int            `json:"excluded_cascades"`
	ExcludedEvents   int            `json:"excluded_events"`
	SkippedGraphs    []SkippedGraph `json:"skipped_graphs,omitempty"`
}

// RenderHints is pass-through configuration for the external
// reporting/visualization collaborator.
type RenderHints struct {
	Layout  Layout  `json:"layout"`
	Damping float64 `json:"damping"`
}

// Results is the full analysis output: a nested mapping whose leaves
// are scalars or per-cascade tables, ready for hand-off to reporting.
type Results struct {
	Speed       SpeedMetrics     `json:"speed"`
	Reach       ReachMetrics     `json:"reach"`
	Temporal    TemporalBlock    `json:"temporal"`
	Comparison  ComparisonResult `json:"comparison"`
	Attribution Attribution      `json:"attribution"`
	Cascades    []CascadeMetrics `json:"cascades"`
	Diagnostics Diagnostics      `json:"diagnostics"`
	Render      RenderHints      `json:"render"`
}

// Cascade returns the metric bundle for one cascade id, if present.
func (r *Results) Cascade(id string) (*CascadeMetrics, bool) {
	for i := range r.Cascades {
		if r.Cascades[i].CascadeID == id {
			return &r.Cascades[i], true
		}
	}
	return nil, false
}
