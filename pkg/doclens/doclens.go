package doclens

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/cognicore/doclens/pkg/doclens/config"
	"github.com/cognicore/doclens/pkg/doclens/extract"
	"github.com/cognicore/doclens/pkg/doclens/ingest"
	"github.com/cognicore/doclens/pkg/doclens/internalerr"
	"github.com/cognicore/doclens/pkg/doclens/pipeline"
	"github.com/cognicore/doclens/pkg/doclens/report"
	"github.com/cognicore/doclens/pkg/doclens/store"
)

// Analyzer is the main document-intelligence facade. It ingests a
// document, runs the standard analysis graph and synthesizes a report.
// Runs are fully independent of each other; the analyzer only bounds
// how many execute at once.
type Analyzer struct {
	cfg   config.Config
	store store.Store
	sem   *semaphore.Weighted
}

// Options configures an Analyzer instance.
type Options struct {
	// Config supplies lexicons, weights and run defaults. The zero
	// value means config.Default().
	Config config.Config
	// Store optionally persists finalized runs and reports.
	Store store.Store
	// MaxConcurrentRuns overrides the config admission limit.
	MaxConcurrentRuns int
}

// New creates an Analyzer with the given dependencies.
func New(opts Options) (*Analyzer, error) {
	cfg := opts.Config
	if len(cfg.Risk.Categories) == 0 {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limit := opts.MaxConcurrentRuns
	if limit <= 0 {
		limit = cfg.Run.MaxConcurrentRuns
	}
	if limit <= 0 {
		limit = 1
	}

	return &Analyzer{
		cfg:   cfg,
		store: opts.Store,
		sem:   semaphore.NewWeighted(int64(limit)),
	}, nil
}

// Input is one document to analyze plus its per-run configuration.
// Overrides left at their zero value fall back to the analyzer config.
type Input struct {
	Text     string
	Language string
	// HTML marks the text as an HTML page whose visible text should be
	// extracted before analysis.
	HTML bool
	// Timeout bounds total run wall-clock time.
	Timeout time.Duration
	// BestEffortStages run even when a dependency failed, substituting
	// their documented defaults.
	BestEffortStages []string
	// RiskCategoryWeights overrides the per-category severity weights.
	RiskCategoryWeights map[string]int
}

// Analyze runs the full pipeline on one document and returns the
// synthesized report together with the finalized run. The run is
// returned even when synthesis fails so callers can inspect per-stage
// error reasons.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (report.Report, *pipeline.Run, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return report.Report{}, nil, fmt.Errorf("acquire run slot: %w", err)
	}
	defer a.sem.Release(1)

	text := in.Text
	if in.HTML {
		text = ingest.StripHTML(text)
	}
	doc, err := ingest.IngestWithLimit(text, in.Language, a.cfg.Run.MaxDocumentBytes)
	if err != nil {
		return report.Report{}, nil, err
	}

	cfg := a.cfg
	if len(in.RiskCategoryWeights) > 0 {
		cfg.Risk = overrideWeights(cfg.Risk, in.RiskCategoryWeights)
	}

	graph, err := buildGraph(cfg, doc, bestEffortSet(cfg, in))
	if err != nil {
		return report.Report{}, nil, err
	}

	exec := pipeline.NewExecutor(graph, pipeline.Options{Timeout: a.runTimeout(in)})
	run := exec.Execute(ctx)

	rep, synthErr := report.Synthesize(run, time.Now())

	if a.store != nil {
		if err := a.persist(ctx, run, rep, synthErr == nil); err != nil {
			return report.Report{}, run, err
		}
	}

	if synthErr != nil {
		return report.Report{}, run, synthErr
	}
	return rep, run, nil
}

// runTimeout resolves the per-run timeout: input override, then config
// default, then unbounded.
func (a *Analyzer) runTimeout(in Input) time.Duration {
	if in.Timeout > 0 {
		return in.Timeout
	}
	if a.cfg.Run.TimeoutSeconds > 0 {
		return time.Duration(a.cfg.Run.TimeoutSeconds) * time.Second
	}
	return -1
}

// bestEffortSet merges the config and per-run best-effort stage names.
// The quality stage is best-effort by default: it can always fall back
// to scanning the text itself when entity extraction failed.
func bestEffortSet(cfg config.Config, in Input) map[string]bool {
	set := map[string]bool{extract.StageQuality: true}
	for _, name := range cfg.Run.BestEffortStages {
		set[name] = true
	}
	for _, name := range in.BestEffortStages {
		set[name] = true
	}
	return set
}

// overrideWeights replaces category weights, keeping the keyword lists.
func overrideWeights(cfg config.RiskConfig, weights map[string]int) config.RiskConfig {
	out := config.RiskConfig{Categories: make(map[string]config.RiskCategory, len(cfg.Categories))}
	for name, cat := range cfg.Categories {
		if w, ok := weights[name]; ok && w > 0 {
			cat.Weight = w
		}
		out.Categories[name] = cat
	}
	return out
}

// buildGraph wires the standard analysis graph: the entity, sentiment
// and risk extractors are independent roots; quality consumes the
// entity facts for its financial-data check.
func buildGraph(cfg config.Config, doc ingest.Document, bestEffort map[string]bool) (*pipeline.Graph, error) {
	entities := extract.NewEntityExtractor(cfg.Topics)
	sentiment := extract.NewSentimentExtractor(cfg.Sentiment)
	risk := extract.NewRiskExtractor(cfg.Risk)
	quality := extract.NewQualityExtractor(cfg.Quality)

	independent := func(ex extract.Extractor) pipeline.StageFunc {
		return func(ctx context.Context, _ pipeline.Inputs) (any, error) {
			out, err := ex.Run(doc)
			if err != nil {
				return nil, fmt.Errorf("%s: %v: %w", ex.Name(), err, internalerr.ErrExtraction)
			}
			return out, nil
		}
	}

	stages := []pipeline.Stage{
		{
			Name:       extract.StageEntities,
			BestEffort: bestEffort[extract.StageEntities],
			Run:        independent(entities),
		},
		{
			Name:       extract.StageSentiment,
			BestEffort: bestEffort[extract.StageSentiment],
			Run:        independent(sentiment),
		},
		{
			Name:       extract.StageRisk,
			BestEffort: bestEffort[extract.StageRisk],
			Run:        independent(risk),
		},
		{
			Name:       extract.StageQuality,
			DependsOn:  []string{extract.StageEntities},
			BestEffort: bestEffort[extract.StageQuality],
			Run: func(ctx context.Context, in pipeline.Inputs) (any, error) {
				if out, err := in.Output(extract.StageEntities); err == nil {
					facts := out.(extract.Output).Facts
					if facts == nil {
						facts = []extract.Fact{}
					}
					return quality.Assess(doc, facts)
				}
				// Default when entity extraction failed: self-scan.
				return quality.Assess(doc, nil)
			},
		},
	}

	return pipeline.NewGraph(stages)
}

// persist writes the finalized run and, when synthesis succeeded, its
// report.
func (a *Analyzer) persist(ctx context.Context, run *pipeline.Run, rep report.Report, haveReport bool) error {
	rec := store.RunRecord{
		ID:        run.ID(),
		Status:    string(run.Status()),
		StartedAt: run.StartedAt(),
		ElapsedMS: run.Elapsed().Milliseconds(),
	}
	for _, res := range run.Results() {
		rec.Stages = append(rec.Stages, store.StageRecord{
			Name:      res.Stage,
			Status:    string(res.Status),
			Reason:    res.Reason,
			ElapsedMS: res.Elapsed.Milliseconds(),
		})
	}
	if err := a.store.SaveRun(ctx, rec); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID(), err)
	}

	if !haveReport {
		return nil
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", run.ID(), err)
	}
	if err := a.store.SaveReport(ctx, store.ReportRecord{
		RunID:       run.ID(),
		GeneratedAt: rep.GeneratedAt,
		Body:        string(body),
	}); err != nil {
		return fmt.Errorf("save report %s: %w", run.ID(), err)
	}
	return nil
}
