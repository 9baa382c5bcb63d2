package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/doclens/pkg/doclens/extract"
	"github.com/cognicore/doclens/pkg/doclens/internalerr"
	"github.com/cognicore/doclens/pkg/doclens/pipeline"
	"github.com/cognicore/doclens/pkg/doclens/score"
)

// Report is the read-only view synthesized from a finalized pipeline
// run. The JSON field names are the external interface contract.
type Report struct {
	RunID           string           `json:"-"`
	Summary         string           `json:"summary"`
	KeyFindings     []string         `json:"keyFindings"`
	Sentiment       SentimentSection `json:"sentiment"`
	Risk            RiskSection      `json:"risk"`
	Quality         *QualitySection  `json:"quality,omitempty"`
	Recommendations []string         `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// SentimentSection carries the sentiment score block of the report.
type SentimentSection struct {
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
	Emotion    string  `json:"emotion,omitempty"`
}

// RiskSection carries the risk score block of the report.
type RiskSection struct {
	Score      int      `json:"score"`
	Level      string   `json:"level"`
	Categories []string `json:"categories"`
}

// QualitySection carries the structural quality block of the report.
type QualitySection struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// Defaults substituted when one scoring stage failed but the report can
// still be produced.
var (
	defaultSentiment = extract.Output{
		Score:   scorePtr(score.NewSentiment(50, 0.5, "neutral")),
		Emotion: "neutral",
	}
	defaultRisk = extract.Output{
		Score: scorePtr(score.NewRisk(0, 0.5)),
	}
)

func scorePtr(s score.Score) *score.Score { return &s }

// Synthesize builds a Report from a finalized run. It never mutates the
// run and is deterministic: identical runs and an identical now yield
// byte-identical reports. At least one of the sentiment and risk stages
// must have succeeded; otherwise synthesis fails.
func Synthesize(run *pipeline.Run, now time.Time) (Report, error) {
	sOut, sOK := stageOutput(run, extract.StageSentiment)
	rOut, rOK := stageOutput(run, extract.StageRisk)
	eOut, eOK := stageOutput(run, extract.StageEntities)
	qOut, qOK := stageOutput(run, extract.StageQuality)
	qOK = qOK && qOut.Score != nil

	if !sOK && !rOK {
		return Report{}, fmt.Errorf("report: no scoring stage succeeded in run %s: %w",
			run.ID(), internalerr.ErrSynthesis)
	}
	if !sOK || sOut.Score == nil {
		sOut = defaultSentiment
	}
	if !rOK || rOut.Score == nil {
		rOut = defaultRisk
	}

	wordCount := firstWordCount(eOut, sOut, rOut, qOut)
	hasFinancial := (eOK && eOut.HasFinancialData) || (qOK && qOut.HasFinancialData)

	sentiment := SentimentSection{
		Score:      sOut.Score.Value,
		Confidence: sOut.Score.Confidence,
		Label:      sOut.Score.Label,
		Emotion:    sOut.Emotion,
	}
	risk := RiskSection{
		Score:      rOut.Score.Value,
		Level:      rOut.Score.Label,
		Categories: append([]string{}, rOut.Categories...),
	}

	rep := Report{
		RunID:       run.ID(),
		Summary:     summary(wordCount, sentiment, risk),
		Sentiment:   sentiment,
		Risk:        risk,
		GeneratedAt: now,
	}
	if qOK {
		rep.Quality = &QualitySection{Score: qOut.Score.Value, Label: qOut.Score.Label}
	}
	rep.KeyFindings = keyFindings(sentiment, risk, hasFinancial, eOK, eOut, qOK, qOut)
	rep.Recommendations = recommendations(sentiment, risk, hasFinancial, qOK, qOut)

	return rep, nil
}

// summary interpolates the one-paragraph executive overview.
func summary(wordCount int, s SentimentSection, r RiskSection) string {
	return fmt.Sprintf(
		"Analysis of business document containing %d words. "+
			"Overall sentiment is %s with %.0f%% confidence. "+
			"Risk assessment indicates %s risk level.",
		wordCount, s.Label, s.Confidence*100, strings.ToLower(r.Level))
}

// keyFindings builds the ordered findings list. The priority order is
// fixed: sentiment, risk, financial-data presence, focus area,
// presentation quality.
func keyFindings(s SentimentSection, r RiskSection, hasFinancial bool,
	eOK bool, eOut extract.Output, qOK bool, qOut extract.Output) []string {

	var findings []string

	if s.Label != "neutral" {
		findings = append(findings,
			fmt.Sprintf("Strong %s sentiment detected throughout document", s.Label))
	}
	if r.Level != "Low" {
		findings = append(findings,
			fmt.Sprintf("Multiple risk factors identified (score: %d/%d)", r.Score, score.RiskMax))
	}
	if hasFinancial {
		findings = append(findings, "Significant financial data and metrics present")
	} else {
		findings = append(findings, "Financial data absent from document")
	}
	if eOK && eOut.FocusArea != "" && eOut.FocusArea != "general" {
		findings = append(findings,
			fmt.Sprintf("Primary focus area identified as %s", eOut.FocusArea))
	}
	if qOK {
		switch qOut.Score.Label {
		case "excellent", "good":
			findings = append(findings,
				fmt.Sprintf("Content quality assessed as %s", qOut.Score.Label))
		default:
			findings = append(findings, "Presentation quality needs improvement")
		}
	}

	return findings
}

// recommendations applies the fixed rule table. Selection is
// deterministic and order-preserving given identical scores.
func recommendations(s SentimentSection, r RiskSection, hasFinancial bool,
	qOK bool, qOut extract.Output) []string {

	var recs []string

	if r.Level == "Medium" || r.Level == "High" {
		recs = append(recs, "Negotiate milestone-based payment structure")
	}
	if r.Level == "High" {
		recs = append(recs, "Conduct comprehensive risk analysis before proceeding")
	}
	if s.Label == "negative" {
		recs = append(recs, "Address negative sentiment factors to improve stakeholder perception")
	}
	if hasFinancial {
		recs = append(recs, "Proceed with detailed financial due diligence")
	} else {
		recs = append(recs, "Request complete financial projections before commitment")
	}
	if qOK && (qOut.Score.Label == "fair" || qOut.Score.Label == "poor") {
		recs = append(recs, "Improve document structure and clarity")
	}
	if len(recs) == 0 {
		recs = append(recs, "Proceed with standard review process")
	}

	return recs
}

// stageOutput returns the extract.Output of a succeeded stage.
func stageOutput(run *pipeline.Run, stage string) (extract.Output, bool) {
	res, ok := run.Result(stage)
	if !ok || res.Status != pipeline.StageSucceeded {
		return extract.Output{}, false
	}
	out, ok := res.Output.(extract.Output)
	return out, ok
}

func firstWordCount(outs ...extract.Output) int {
	for _, o := range outs {
		if o.WordCount > 0 {
			return o.WordCount
		}
	}
	return 0
}
