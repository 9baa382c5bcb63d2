package extract

import (
	"testing"

	"github.com/cognicore/doclens/pkg/doclens/config"
)

func TestRiskSingleCategory(t *testing.T) {
	e := NewRiskExtractor(config.Default().Risk)
	out, err := e.Run(mustDoc(t, "The budget overrun worries the finance team."))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// financial: 2 indicators x weight 4, capped at 8.
	if out.Score.Value != 8 {
		t.Fatalf("expected risk 8, got %d", out.Score.Value)
	}
	if out.Score.Label != "Medium" {
		t.Fatalf("expected Medium, got %q", out.Score.Label)
	}
	if len(out.Categories) != 1 || out.Categories[0] != "financial" {
		t.Fatalf("expected [financial], got %v", out.Categories)
	}
	if out.Risk == nil || out.Risk.Clipped {
		t.Fatalf("expected unclipped breakdown, got %+v", out.Risk)
	}
}

func TestRiskClipAcrossCategories(t *testing.T) {
	e := NewRiskExtractor(config.Default().Risk)
	text := "budget cost deficit loss compliance violation breach " +
		"delay bottleneck failure competition recession volatility deadline slippage"
	out, err := e.Run(mustDoc(t, text))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Per-category caps: financial 8, regulatory 8, operational 6,
	// market 6, timeline 4. Raw 32 clips to 20.
	if out.Risk.Raw != 32 {
		t.Fatalf("expected raw 32, got %d", out.Risk.Raw)
	}
	if out.Score.Value != 20 || !out.Risk.Clipped {
		t.Fatalf("expected clip at 20, got value=%d clipped=%v", out.Score.Value, out.Risk.Clipped)
	}
	if out.Score.Label != "High" {
		t.Fatalf("expected High, got %q", out.Score.Label)
	}
	if len(out.Categories) != 5 {
		t.Fatalf("expected all 5 categories, got %v", out.Categories)
	}
	for i := 1; i < len(out.Categories); i++ {
		if out.Categories[i-1] >= out.Categories[i] {
			t.Fatalf("categories not sorted: %v", out.Categories)
		}
	}
}

func TestRiskCleanDocument(t *testing.T) {
	e := NewRiskExtractor(config.Default().Risk)
	out, err := e.Run(mustDoc(t, "The team shipped the release on schedule with happy customers."))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out.Score.Value != 0 || out.Score.Label != "Low" {
		t.Fatalf("expected 0/Low, got %d/%q", out.Score.Value, out.Score.Label)
	}
	if len(out.Categories) != 0 {
		t.Fatalf("expected no categories, got %v", out.Categories)
	}
}

func TestRiskShortDocumentLowersConfidence(t *testing.T) {
	e := NewRiskExtractor(config.Default().Risk)

	short, err := e.Run(mustDoc(t, "budget overrun"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	longText := "budget overrun "
	for i := 0; i < 30; i++ {
		longText += "the project continues as planned "
	}
	long, err := e.Run(mustDoc(t, longText))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if short.Score.Confidence >= long.Score.Confidence {
		t.Fatalf("short doc confidence %f should be below long doc %f",
			short.Score.Confidence, long.Score.Confidence)
	}
}

func TestRiskWeightOverride(t *testing.T) {
	cfg := config.Default().Risk
	cat := cfg.Categories["timeline"]
	cat.Weight = 10
	cfg.Categories["timeline"] = cat

	e := NewRiskExtractor(cfg)
	out, err := e.Run(mustDoc(t, "The deadline slipped again."))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// timeline: 1 indicator x weight 10.
	if out.Score.Value != 10 {
		t.Fatalf("expected risk 10 with boosted weight, got %d", out.Score.Value)
	}
}
