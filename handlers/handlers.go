package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/carlmjohnson/versioninfo"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"

	"github.com/misinfo-watch/cascadia/analysis"
	"github.com/misinfo-watch/cascadia/models"
	"github.com/misinfo-watch/cascadia/propgraph"
)

const centralityCacheSize = 512

type Handlers struct {
	table   *models.EventTable
	results *analysis.Results
	graphs  map[string][]models.Edge

	// centrality tables are recomputed on demand; the LRU keeps the
	// hot cascades cheap
	centrality *lru.Cache[string, []propgraph.CentralityRow]
}

func NewHandlers(table *models.EventTable, results *analysis.Results, graphs map[string][]models.Edge) (*Handlers, error) {
	cache, err := lru.New[string, []propgraph.CentralityRow](centralityCacheSize)
	if err != nil {
		return nil, err
	}
	return &Handlers{
		table:      table,
		results:    results,
		graphs:     graphs,
		centrality: cache,
	}, nil
}

type HealthStatus struct {
	Status  string                  `json:"status"`
	Version string                  `json:"version"`
	Stats   *models.TableStatistics `json:"stats,omitempty"`
}

func (h *Handlers) Health(c echo.Context) error {
	s := HealthStatus{
		Status:  "ok",
		Version: versioninfo.Short(),
	}
	if c.QueryParam("stats") == "true" {
		stats := h.table.Statistics()
		s.Stats = &stats
	}
	return c.JSON(http.StatusOK, s)
}

// GetAnalysis returns the full nested result mapping.
func (h *Handlers) GetAnalysis(c echo.Context) error {
	return c.JSON(http.StatusOK, h.results)
}

// GetCascades returns the per-cascade metric table.
func (h *Handlers) GetCascades(c echo.Context) error {
	return c.JSON(http.StatusOK, h.results.Cascades)
}

// GetCascade returns one cascade's metric bundle.
func (h *Handlers) GetCascade(c echo.Context) error {
	id := c.Param("id")
	cm, ok := h.results.Cascade(id)
	if !ok {
		return c.JSON(http.StatusNotFound, "cascade not found")
	}
	return c.JSON(http.StatusOK, cm)
}

// GetCentrality returns the centrality table for one cascade's
// propagation graph. Disconnected graphs come back without the
// closeness column rather than erroring.
func (h *Handlers) GetCentrality(c echo.Context) error {
	id := c.Param("id")
	edges, ok := h.graphs[id]
	if !ok {
		return c.JSON(http.StatusNotFound, "no propagation graph for cascade")
	}

	damping := propgraph.DefaultDamping
	if raw := c.QueryParam("damping"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d <= 0 || d >= 1 {
			return c.JSON(http.StatusBadRequest, "damping must be a number in (0, 1)")
		}
		damping = d
	}

	key := fmt.Sprintf("%s|%v", id, damping)
	if rows, ok := h.centrality.Get(key); ok {
		return c.JSON(http.StatusOK, rows)
	}

	g := propgraph.NewGraph()
	for _, e := range edges {
		if err := g.AddEdge(e.SourceUser, e.TargetUser); err != nil {
			slog.Error("malformed propagation graph", "cascade", id, "err", err)
			return c.JSON(http.StatusUnprocessableEntity, "malformed propagation graph")
		}
	}
	rows := g.Centrality(nil, damping)
	h.centrality.Add(key, rows)
	return c.JSON(http.StatusOK, rows)
}
