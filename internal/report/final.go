package report

import (
	"time"

	"github.com/spiffcs/repohealth/internal/metrics"
	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/score"
)

// Final is the comprehensive report: the full metrics document with its score
// plus the live backlog snapshot, risk flags, and stalled-action buckets.
type Final struct {
	GeneratedAt     time.Time         `json:"report_generated_at"`
	Metrics         *metrics.Document `json:"metrics"`
	BacklogSnapshot BacklogSnapshot   `json:"backlog_snapshot"`
	RiskFlags       []string          `json:"risk_flags"`
	StalledActions  map[string][]int  `json:"stalled_actions"`
}

// Summary is the lean report intended as LLM prompt context: score and risk
// analysis without the full metrics document.
type Summary struct {
	GeneratedAt     time.Time        `json:"report_generated_at"`
	Score           score.Report     `json:"score"`
	BacklogSnapshot BacklogSnapshot  `json:"backlog_snapshot"`
	RiskFlags       []string         `json:"risk_flags"`
	StalledActions  map[string][]int `json:"stalled_actions"`
}

// Builder assembles reports from one fetched dataset.
type Builder struct {
	prs    []model.Item
	issues []model.Item
	calc   *metrics.Calculator
	scorer *score.Scorer
}

// NewBuilder creates a report builder over the dataset. excludedBots is
// forwarded to the metrics calculator.
func NewBuilder(prs, issues []model.Item, excludedBots []string, scorer *score.Scorer) *Builder {
	return &Builder{
		prs:    prs,
		issues: issues,
		calc:   metrics.NewCalculator(prs, issues, excludedBots),
		scorer: scorer,
	}
}

// riskParts computes the snapshot, flags, and stalled actions shared by both
// report shapes.
func (b *Builder) riskParts(now time.Time) (BacklogSnapshot, []string, map[string][]int) {
	openPRs := OpenItems(b.prs)
	openIssues := OpenItems(b.issues)
	snap := Snapshot(openPRs, openIssues, now)
	return snap, RiskFlags(snap), StalledActions(openPRs, openIssues, now)
}

// BuildFinal generates the comprehensive final report as of now.
func (b *Builder) BuildFinal(now time.Time) (*Final, error) {
	doc, err := b.calc.AnalyzeAll(now)
	if err != nil {
		return nil, err
	}

	scoreReport := b.scorer.Score(doc)
	doc.Score = scoreReport

	snap, flags, stalled := b.riskParts(now)

	return &Final{
		GeneratedAt:     now,
		Metrics:         doc,
		BacklogSnapshot: snap,
		RiskFlags:       flags,
		StalledActions:  stalled,
	}, nil
}

// BuildSummary generates the lean summary report as of now.
func (b *Builder) BuildSummary(now time.Time) (*Summary, error) {
	doc, err := b.calc.AnalyzeAll(now)
	if err != nil {
		return nil, err
	}

	snap, flags, stalled := b.riskParts(now)

	return &Summary{
		GeneratedAt:     now,
		Score:           b.scorer.Score(doc),
		BacklogSnapshot: snap,
		RiskFlags:       flags,
		StalledActions:  stalled,
	}, nil
}
