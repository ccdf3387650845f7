package analysis

import (
	"log/slog"
	"time"
)

// Observer receives progress diagnostics from the engine. The engine
// never writes to a terminal itself; callers decide how (or whether)
// to surface progress.
type Observer interface {
	StageStarted(stage string)
	StageCompleted(stage string, took time.Duration)
	CascadeProcessed(cascadeID string)
	GraphSkipped(cascadeID string, err error)
}

// NopObserver discards all diagnostics.
type NopObserver struct{}

func (NopObserver) StageStarted(string)                {}
func (NopObserver) StageCompleted(string, time.Duration) {}
func (NopObserver) CascadeProcessed(string)            {}
func (NopObserver) GraphSkipped(string, error)         {}

// SlogObserver logs diagnostics through a structured logger.
type SlogObserver struct {
	Log *slog.Logger
}

func NewSlogObserver(log *slog.Logger) *SlogObserver {
	if log == nil {
		log = slog.Default()
	}
	return &SlogObserver{Log: log.With("system", "analysis")}
}

func (o *SlogObserver) StageStarted(stage string) {
	o.Log.Info("stage started", "stage", stage)
}

func (o *SlogObserver) StageCompleted(stage string, took time.Duration) {
	o.Log.Info("stage completed", "stage", stage, "duration", took)
}

func (o *SlogObserver) CascadeProcessed(cascadeID string) {
	o.Log.Debug("cascade processed", "cascade", cascadeID)
}

func (o *SlogObserver) GraphSkipped(cascadeID string, err error) {
	o.Log.Warn("skipping structural metrics", "cascade", cascadeID, "err", err)
}
