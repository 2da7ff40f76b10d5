// Package score reduces a metrics document to a deterministic 0-100 health
// score. Scoring is a pure function of the document: identical input yields
// identical output, and the document itself is never mutated.
package score

import (
	"fmt"
	"math"

	"github.com/spiffcs/repohealth/internal/metrics"
)

// Target is a (good, bad) band for one metric. When Good < Bad the metric is
// lower-is-better; when Good > Bad it is higher-is-better. A value at or past
// Good scores 100, at or past Bad scores 0, with linear interpolation between.
type Target struct {
	Good float64 `json:"good" yaml:"good"`
	Bad  float64 `json:"bad" yaml:"bad"`
}

// Weights are the category weights applied to the three sub-scores. They must
// sum to 1.0.
type Weights struct {
	Execution float64 `json:"execution" yaml:"execution"`
	Community float64 `json:"community" yaml:"community"`
	Backlog   float64 `json:"backlog" yaml:"backlog"`
}

// SubScores holds the per-category sub-scores, each rounded to 2 decimals.
type SubScores struct {
	Execution float64 `json:"execution"`
	Community float64 `json:"community"`
	Backlog   float64 `json:"backlog"`
}

// Breakdown retains every individual component score for explainability.
type Breakdown struct {
	Execution map[string]float64 `json:"execution"`
	Community map[string]float64 `json:"community"`
	Backlog   map[string]float64 `json:"backlog"`
}

// Report is the score document derived from a metrics document.
type Report struct {
	OverallScore float64   `json:"overall_score"`
	SubScores    SubScores `json:"sub_scores"`
	Breakdown    Breakdown `json:"breakdown"`
	Weights      Weights   `json:"weights"`
}

// Scorer maps metrics through configured target bands into a weighted score.
type Scorer struct {
	weights Weights
	targets map[string]Target
}

// DefaultWeights returns the default category weights.
func DefaultWeights() Weights {
	return Weights{Execution: 0.4, Community: 0.4, Backlog: 0.2}
}

// DefaultTargets returns the default target bands per scored metric.
func DefaultTargets() map[string]Target {
	return map[string]Target{
		// Lower is better.
		"median_merge_days":           {Good: 1, Bad: 30},
		"median_first_response_hours": {Good: 2, Bad: 168},
		"review_top1_pct":             {Good: 30, Bad: 90},
		// Higher is better.
		"return_rate_pct": {Good: 60, Bad: 10},
		// Lower is better.
		"median_open_pr_age_days":    {Good: 7, Bad: 90},
		"median_open_issue_age_days": {Good: 14, Bad: 180},
	}
}

// NewScorer creates a scorer with the given weights and targets. Passing nil
// targets uses the defaults. Weights must sum to 1.0.
func NewScorer(weights Weights, targets map[string]Target) (*Scorer, error) {
	sum := weights.Execution + weights.Community + weights.Backlog
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("category weights must sum to 1.0, got %.4f", sum)
	}
	if targets == nil {
		targets = DefaultTargets()
	}
	return &Scorer{weights: weights, targets: targets}, nil
}

// scoreMetric maps value through the metric's target band to [0,100]. A
// metric with no configured target scores 0; that is a fail-safe, not an
// error.
func (s *Scorer) scoreMetric(name string, value float64) float64 {
	target, ok := s.targets[name]
	if !ok {
		return 0
	}

	good, bad := target.Good, target.Bad
	if good < bad {
		// Lower is better.
		if value <= good {
			return 100
		}
		if value >= bad {
			return 0
		}
		return 100 * (bad - value) / (bad - good)
	}

	// Higher is better.
	if value >= good {
		return 100
	}
	if value <= bad {
		return 0
	}
	return 100 * (value - bad) / (good - bad)
}

// executionScore is the unweighted mean of the merge-velocity,
// responsiveness, and review-bottleneck component scores.
func (s *Scorer) executionScore(m metrics.ExecutionMetrics) (float64, map[string]float64) {
	components := map[string]float64{
		"merge_velocity":    s.scoreMetric("median_merge_days", m.MedianMergeDays),
		"responsiveness":    s.scoreMetric("median_first_response_hours", m.MedianFirstResponseHours),
		"review_bottleneck": s.scoreMetric("review_top1_pct", m.ReviewTop1Pct),
	}
	return mean(components), components
}

// communityScore currently scores contributor stickiness alone; additional
// components slot in here.
func (s *Scorer) communityScore(m metrics.CommunityMetrics) (float64, map[string]float64) {
	components := map[string]float64{
		"contributor_stickiness": s.scoreMetric("return_rate_pct", m.ReturnRatePct),
	}
	return mean(components), components
}

// backlogScore is the mean of the open-PR-age and open-issue-age scores.
func (s *Scorer) backlogScore(m metrics.BacklogMetrics) (float64, map[string]float64) {
	components := map[string]float64{
		"pr_age":    s.scoreMetric("median_open_pr_age_days", m.MedianOpenPRAgeDays),
		"issue_age": s.scoreMetric("median_open_issue_age_days", m.MedianOpenIssueAgeDays),
	}
	return mean(components), components
}

// Score reduces a metrics document to a score report. Execution and community
// use all-time metrics; backlog uses the most recent rolling-window snapshot
// (the 90-day window) since that reflects the current backlog rather than
// history.
func (s *Scorer) Score(doc *metrics.Document) Report {
	execScore, execBreakdown := s.executionScore(doc.AllTime.Execution)
	commScore, commBreakdown := s.communityScore(doc.AllTime.Community)

	var backlog metrics.BacklogMetrics
	if window, ok := doc.RollingWindows[metrics.RollingWindowKey(90)]; ok && window.Backlog != nil {
		backlog = *window.Backlog
	}
	backScore, backBreakdown := s.backlogScore(backlog)

	overall := execScore*s.weights.Execution +
		commScore*s.weights.Community +
		backScore*s.weights.Backlog

	return Report{
		OverallScore: round2(overall),
		SubScores: SubScores{
			Execution: round2(execScore),
			Community: round2(commScore),
			Backlog:   round2(backScore),
		},
		Breakdown: Breakdown{
			Execution: execBreakdown,
			Community: commBreakdown,
			Backlog:   backBreakdown,
		},
		Weights: s.weights,
	}
}

func mean(components map[string]float64) float64 {
	if len(components) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range components {
		sum += v
	}
	return sum / float64(len(components))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
