// Command painminer drives the pain-point mining pipeline end to end or one
// stage at a time, against a single SQLite store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/logging"
	"github.com/painminer/painminer/internal/notify"
	"github.com/painminer/painminer/internal/pipeline"
	"github.com/painminer/painminer/internal/retry"
	"github.com/painminer/painminer/internal/store"
)

// flags mirrors spec.md §6's CLI surface one field per documented flag.
type flags struct {
	stage             string
	limitSources      int
	limitPosts        int
	limitEvents       int
	limitClusters     int
	limitOpportunities int
	reportLimit       int
	minScore          float64
	stopOnError       bool
	saveResults       bool
	resultsFile       string
	enableMonitoring  bool
	dashboardAddr     string
}

func main() {
	logging.Init(slog.LevelInfo)

	var f flags

	root := &cobra.Command{
		Use:   "painminer --stage <stage>",
		Short: "Mine Reddit and Hacker News for recurring pain points and build a decision-ready shortlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.stage == "" {
				return fmt.Errorf("--stage is required (fetch, filter, extract, embed, cluster, alignment, map_opportunities, score, decision_shortlist, all)")
			}
			return run(f)
		},
	}
	root.Flags().StringVar(&f.stage, "stage", "", "pipeline stage to run")
	root.Flags().IntVar(&f.limitSources, "limit-sources", 0, "cap how many ingest sources run this pass (0 = unlimited)")
	root.Flags().IntVar(&f.limitPosts, "limit-posts", 0, "cap how many posts the filter/extract stages process this pass (0 = unlimited)")
	root.Flags().IntVar(&f.limitEvents, "limit-events", 0, "cap how many pain events the embed stage processes this pass (0 = unlimited)")
	root.Flags().IntVar(&f.limitClusters, "limit-clusters", 0, "accepted but not applied: the cluster stage always processes every candidate cluster")
	root.Flags().IntVar(&f.limitOpportunities, "limit-opportunities", 0, "accepted but not applied: the mapper stage always processes its full work queue")
	root.Flags().IntVar(&f.reportLimit, "report-limit", 0, "override the decision shortlist's maximum entry count (0 = use config default)")
	root.Flags().Float64Var(&f.minScore, "min-score", 0, "override the decision shortlist's minimum total_score filter (0 = use config default)")
	root.Flags().BoolVar(&f.stopOnError, "stop-on-error", true, "with --stage all, abort at the first stage that fails instead of continuing")
	root.Flags().BoolVar(&f.saveResults, "save-results", false, "write the stage's result stats to --results-file as JSON")
	root.Flags().StringVar(&f.resultsFile, "results-file", "painminer-results.json", "path --save-results writes to")
	root.Flags().BoolVar(&f.enableMonitoring, "enable-monitoring", false, "serve a live progress dashboard WebSocket while the stage runs")
	root.Flags().StringVar(&f.dashboardAddr, "dashboard-addr", ":8090", "address for --enable-monitoring's dashboard server")

	if err := root.Execute(); err != nil {
		slog.Error("painminer failed", "error", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, _, anySource := cfg.SourcesEnabled(); !anySource && pipeline.Stage(f.stage) == pipeline.StageAll {
		return fmt.Errorf("no sources configured (missing Reddit credentials and Hacker News disabled) and --stage=all was requested")
	}

	st, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	policy := retry.Policy{
		MaxAttempts: cfg.Pipeline.MaxRetries,
		BaseDelay:   cfg.Pipeline.RetryBaseDelay,
		MaxDelay:    cfg.Pipeline.RetryMaxDelay,
	}
	app, err := llm.NewApp(ctx, cfg.LLM, policy)
	if err != nil {
		return fmt.Errorf("init llm gateway: %w", err)
	}

	var hub *notify.Hub
	if f.enableMonitoring {
		hub = notify.NewHub()
		go hub.Run()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		go func() {
			slog.Info("dashboard listening", "addr", f.dashboardAddr)
			if err := http.ListenAndServe(f.dashboardAddr, mux); err != nil {
				slog.Error("dashboard server stopped", "error", err)
			}
		}()
	}

	runner := &pipeline.Runner{
		App:          app,
		Store:        st,
		Cfg:          cfg,
		Hub:          hub,
		LimitSources: f.limitSources,
		LimitPosts:   f.limitPosts,
		LimitEvents:  f.limitEvents,
		ReportLimit:  f.reportLimit,
		MinScore:     f.minScore,
		StopOnError:  f.stopOnError,
	}

	runErr := runner.Run(ctx, pipeline.Stage(f.stage))

	if f.saveResults {
		if err := saveResults(f.resultsFile, f.stage, runErr); err != nil {
			slog.Error("save-results failed", "error", err)
		}
	}

	return runErr
}

// saveResults writes a minimal run summary; per-stage counts are already
// logged structurally and broadcast to the dashboard, so this file exists
// for --stage runs scripted without a dashboard attached.
func saveResults(path, stage string, runErr error) error {
	summary := struct {
		Stage   string `json:"stage"`
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}{Stage: stage, Success: runErr == nil}
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}
