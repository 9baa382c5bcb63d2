package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/doclens/pkg/doclens/extract"
	"github.com/cognicore/doclens/pkg/doclens/internalerr"
	"github.com/cognicore/doclens/pkg/doclens/pipeline"
	"github.com/cognicore/doclens/pkg/doclens/score"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// makeRun executes a graph whose stages either emit the given canned
// output or fail, producing a realistic finalized run for synthesis.
func makeRun(t *testing.T, outputs map[string]extract.Output, failing map[string]bool) *pipeline.Run {
	t.Helper()

	var stages []pipeline.Stage
	for _, name := range []string{
		extract.StageEntities, extract.StageSentiment, extract.StageRisk, extract.StageQuality,
	} {
		out, hasOut := outputs[name]
		fails := failing[name]
		if !hasOut && !fails {
			continue
		}
		stages = append(stages, pipeline.Stage{
			Name: name,
			Run: func(ctx context.Context, in pipeline.Inputs) (any, error) {
				if fails {
					return nil, errors.New("extractor failed")
				}
				return out, nil
			},
		})
	}

	g, err := pipeline.NewGraph(stages)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return pipeline.NewExecutor(g, pipeline.Options{Timeout: -1}).Execute(context.Background())
}

func fullOutputs() map[string]extract.Output {
	sentiment := score.NewSentiment(85, 0.92, "positive")
	risk := score.NewRisk(8, 0.8)
	quality := score.NewQuality(85, 1.0, "excellent")

	return map[string]extract.Output{
		extract.StageEntities: {
			WordCount:        1247,
			FocusArea:        "digital transformation",
			HasFinancialData: true,
		},
		extract.StageSentiment: {
			WordCount: 1247,
			Score:     &sentiment,
			Emotion:   "optimistic",
		},
		extract.StageRisk: {
			WordCount:  1247,
			Score:      &risk,
			Categories: []string{"financial", "timeline"},
		},
		extract.StageQuality: {
			WordCount:        1247,
			Score:            &quality,
			HasFinancialData: true,
		},
	}
}

func TestSynthesizeFullRun(t *testing.T) {
	run := makeRun(t, fullOutputs(), nil)
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	want := "Analysis of business document containing 1247 words. " +
		"Overall sentiment is positive with 92% confidence. " +
		"Risk assessment indicates medium risk level."
	if rep.Summary != want {
		t.Fatalf("summary mismatch:\n got %q\nwant %q", rep.Summary, want)
	}

	if rep.Sentiment.Score != 85 || rep.Sentiment.Label != "positive" || rep.Sentiment.Emotion != "optimistic" {
		t.Fatalf("unexpected sentiment section: %+v", rep.Sentiment)
	}
	if rep.Risk.Score != 8 || rep.Risk.Level != "Medium" {
		t.Fatalf("unexpected risk section: %+v", rep.Risk)
	}
	if len(rep.Risk.Categories) != 2 {
		t.Fatalf("unexpected risk categories: %v", rep.Risk.Categories)
	}
	if rep.Quality == nil || rep.Quality.Score != 85 || rep.Quality.Label != "excellent" {
		t.Fatalf("unexpected quality section: %+v", rep.Quality)
	}
	if rep.RunID != run.ID() {
		t.Fatalf("report should carry the run ID")
	}
	if !rep.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("generatedAt should be the supplied now")
	}
}

func TestSynthesizeKeyFindings(t *testing.T) {
	run := makeRun(t, fullOutputs(), nil)
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	want := []string{
		"Strong positive sentiment detected throughout document",
		"Multiple risk factors identified (score: 8/20)",
		"Significant financial data and metrics present",
		"Primary focus area identified as digital transformation",
		"Content quality assessed as excellent",
	}
	if len(rep.KeyFindings) != len(want) {
		t.Fatalf("findings mismatch:\n got %v\nwant %v", rep.KeyFindings, want)
	}
	for i := range want {
		if rep.KeyFindings[i] != want[i] {
			t.Errorf("finding %d: got %q, want %q", i, rep.KeyFindings[i], want[i])
		}
	}
}

func TestSynthesizeRecommendations(t *testing.T) {
	run := makeRun(t, fullOutputs(), nil)
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	want := []string{
		"Negotiate milestone-based payment structure",
		"Proceed with detailed financial due diligence",
	}
	if len(rep.Recommendations) != len(want) {
		t.Fatalf("recommendations mismatch:\n got %v\nwant %v", rep.Recommendations, want)
	}
	for i := range want {
		if rep.Recommendations[i] != want[i] {
			t.Errorf("recommendation %d: got %q, want %q", i, rep.Recommendations[i], want[i])
		}
	}
}

func TestSynthesizeHighRiskRecommendations(t *testing.T) {
	outputs := fullOutputs()
	risk := score.NewRisk(16, 0.8)
	out := outputs[extract.StageRisk]
	out.Score = &risk
	outputs[extract.StageRisk] = out

	run := makeRun(t, outputs, nil)
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if rep.Risk.Level != "High" {
		t.Fatalf("expected High, got %q", rep.Risk.Level)
	}
	joined := strings.Join(rep.Recommendations, "\n")
	if !strings.Contains(joined, "Conduct comprehensive risk analysis before proceeding") {
		t.Fatalf("missing high-risk recommendation: %v", rep.Recommendations)
	}
}

func TestSynthesizeMissingFinancialData(t *testing.T) {
	outputs := fullOutputs()
	for _, name := range []string{extract.StageEntities, extract.StageQuality} {
		out := outputs[name]
		out.HasFinancialData = false
		outputs[name] = out
	}

	run := makeRun(t, outputs, nil)
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	findings := strings.Join(rep.KeyFindings, "\n")
	if !strings.Contains(findings, "Financial data absent from document") {
		t.Fatalf("missing absence finding: %v", rep.KeyFindings)
	}
	recs := strings.Join(rep.Recommendations, "\n")
	if !strings.Contains(recs, "Request complete financial projections before commitment") {
		t.Fatalf("missing projections recommendation: %v", rep.Recommendations)
	}
}

func TestSynthesizeDefaultsForFailedSentiment(t *testing.T) {
	outputs := fullOutputs()
	delete(outputs, extract.StageSentiment)

	run := makeRun(t, outputs, map[string]bool{extract.StageSentiment: true})
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize should tolerate one failed scoring stage: %v", err)
	}

	if rep.Sentiment.Score != 50 || rep.Sentiment.Label != "neutral" || rep.Sentiment.Confidence != 0.5 {
		t.Fatalf("expected neutral default, got %+v", rep.Sentiment)
	}
	if !strings.Contains(rep.Summary, "neutral with 50% confidence") {
		t.Fatalf("summary should use the default: %q", rep.Summary)
	}
}

func TestSynthesizeDefaultsForFailedRisk(t *testing.T) {
	outputs := fullOutputs()
	delete(outputs, extract.StageRisk)

	run := makeRun(t, outputs, map[string]bool{extract.StageRisk: true})
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if rep.Risk.Score != 0 || rep.Risk.Level != "Low" {
		t.Fatalf("expected zero-risk default, got %+v", rep.Risk)
	}
}

func TestSynthesizeFailsWithoutScoringStages(t *testing.T) {
	outputs := fullOutputs()
	delete(outputs, extract.StageSentiment)
	delete(outputs, extract.StageRisk)

	run := makeRun(t, outputs, map[string]bool{
		extract.StageSentiment: true,
		extract.StageRisk:      true,
	})
	_, err := Synthesize(run, fixedNow)
	if !errors.Is(err, internalerr.ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
}

func TestSynthesizeOmitsQualityWhenUnavailable(t *testing.T) {
	outputs := fullOutputs()
	delete(outputs, extract.StageQuality)

	run := makeRun(t, outputs, map[string]bool{extract.StageQuality: true})
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if rep.Quality != nil {
		t.Fatalf("quality section should be nil, got %+v", rep.Quality)
	}
	body, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), `"quality"`) {
		t.Fatalf("quality key should be omitted: %s", body)
	}
	if strings.Contains(string(body), run.ID()) {
		t.Fatalf("run ID should not serialize: %s", body)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	run := makeRun(t, fullOutputs(), nil)

	first, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	second, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Fatalf("reports differ:\n%s\n%s", a, b)
	}
}

func TestSynthesizeLowQualityFindings(t *testing.T) {
	outputs := fullOutputs()
	quality := score.NewQuality(40, 0.9, "poor")
	out := outputs[extract.StageQuality]
	out.Score = &quality
	outputs[extract.StageQuality] = out

	run := makeRun(t, outputs, nil)
	rep, err := Synthesize(run, fixedNow)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	findings := strings.Join(rep.KeyFindings, "\n")
	if !strings.Contains(findings, "Presentation quality needs improvement") {
		t.Fatalf("missing quality finding: %v", rep.KeyFindings)
	}
	recs := strings.Join(rep.Recommendations, "\n")
	if !strings.Contains(recs, "Improve document structure and clarity") {
		t.Fatalf("missing clarity recommendation: %v", rep.Recommendations)
	}
}
