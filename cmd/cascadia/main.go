package main

import (
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"

	"github.com/carlmjohnson/versioninfo"

	"github.com/misinfo-watch/cascadia/analysis"
	"github.com/misinfo-watch/cascadia/fakedata"
	"github.com/misinfo-watch/cascadia/handlers"
	"github.com/misinfo-watch/cascadia/ingest"
	"github.com/misinfo-watch/cascadia/models"
)

func main() {
	app := cli.App{
		Name:    "cascadia",
		Usage:   "misinformation cascade analysis daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "listen port for http server",
			Value:   2510,
			EnvVars: []string{"CASCADIA_PORT"},
		},
		&cli.StringFlag{
			Name:    "events-csv",
			Usage:   "path to labeled events CSV",
			EnvVars: []string{"CASCADIA_EVENTS_CSV"},
		},
		&cli.StringFlag{
			Name:    "events-jsonl",
			Usage:   "path to labeled events JSONL (alternative to --events-csv)",
			EnvVars: []string{"CASCADIA_EVENTS_JSONL"},
		},
		&cli.StringFlag{
			Name:    "edges-csv",
			Usage:   "path to propagation edge list CSV (optional)",
			EnvVars: []string{"CASCADIA_EDGES_CSV"},
		},
		&cli.IntFlag{
			Name:  "fake-cascades",
			Usage: "run on a synthetic dataset of N cascades instead of loading files",
		},
		&cli.StringFlag{
			Name:  "window",
			Usage: "temporal aggregation window (hourly or daily)",
			Value: "hourly",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "graph layout hint for downstream rendering (spring, circular, kamada_kawai)",
			Value: "spring",
		},
		&cli.Float64Flag{
			Name:  "damping",
			Usage: "pagerank damping factor",
			Value: 0.85,
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "parallel cascade metric workers (0 = GOMAXPROCS)",
		},
	}

	app.Action = Cascadia

	if err := app.Run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func Cascadia(cctx *cli.Context) error {
	logLevel := slog.LevelInfo
	if cctx.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	window, err := analysis.ParseWindow(cctx.String("window"))
	if err != nil {
		return err
	}
	layout, err := analysis.ParseLayout(cctx.String("layout"))
	if err != nil {
		return err
	}
	cfg := analysis.Config{
		Window:  window,
		Layout:  layout,
		Damping: cctx.Float64("damping"),
		Workers: cctx.Int("workers"),
	}

	start := time.Now()
	var table *models.EventTable
	var graphs map[string][]models.Edge

	switch {
	case cctx.Int("fake-cascades") > 0:
		genCfg := fakedata.DefaultGenConfig()
		genCfg.Cascades = cctx.Int("fake-cascades")
		table, graphs = fakedata.GenerateDataset(genCfg)
		slog.Info("generated synthetic dataset", "cascades", genCfg.Cascades, "events", len(table.Events))
	case cctx.String("events-csv") != "":
		table, err = ingest.LoadEventsCSV(cctx.String("events-csv"))
		if err != nil {
			return err
		}
	case cctx.String("events-jsonl") != "":
		table, err = ingest.LoadEventsJSONL(cctx.String("events-jsonl"))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("no input: pass --events-csv, --events-jsonl, or --fake-cascades")
	}

	if path := cctx.String("edges-csv"); path != "" {
		graphs, err = ingest.LoadEdgesCSV(path)
		if err != nil {
			return err
		}
		slog.Info("loaded propagation graphs", "cascades", len(graphs))
	}
	slog.Info("dataset loaded", "events", len(table.Events), "duration", time.Since(start))

	eng := analysis.NewEngine(slog.Default(), analysis.NewSlogObserver(slog.Default()))
	results, err := eng.Run(cctx.Context, table, graphs, cfg)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	slog.Info("analysis complete",
		"bot_cascades", results.Diagnostics.BotCascades,
		"human_cascades", results.Diagnostics.HumanCascades,
		"skipped_graphs", len(results.Diagnostics.SkippedGraphs),
		"duration", time.Since(start))

	h, err := handlers.NewHandlers(table, results, graphs)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(slogecho.New(slog.Default()))
	e.Use(echoprometheus.NewMiddleware("cascadia"))

	e.GET("/_health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/debug/*", echo.WrapHandler(http.DefaultServeMux))

	e.GET("/analysis", h.GetAnalysis)
	e.GET("/cascades", h.GetCascades)
	e.GET("/cascades/:id", h.GetCascade)
	e.GET("/cascades/:id/centrality", h.GetCentrality)

	return e.Start(fmt.Sprintf(":%d", cctx.Int("port")))
}
