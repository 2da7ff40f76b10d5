package metrics

import (
	"time"

	"github.com/spiffcs/repohealth/internal/model"
	"github.com/spiffcs/repohealth/internal/timeutil"
)

// ComputeExecution calculates merge latency, first-response latency, and
// reviewer concentration over a subset of pull requests.
//
// PRs that were never merged contribute no value to the merge-duration
// sample. A first response is the earliest comment or review by a non-author
// identity; comments from excluded bot accounts never qualify. Reviews by the
// PR author are ignored for both response latency and reviewer counts.
func (c *Calculator) ComputeExecution(prs []model.Item) ExecutionMetrics {
	var mergeDurations []float64
	var firstResponses []float64
	reviewerCounts := make(map[int64]int)

	for _, pr := range prs {
		created, hasCreated := pr.Created()

		if merged, ok := pr.Merged(); ok && hasCreated {
			mergeDurations = append(mergeDurations, merged.Sub(created).Hours()/24)
		}

		authorID, hasAuthor := pr.AuthorID()
		var responses []time.Time

		for _, comment := range pr.Comments {
			if comment.Author == nil || comment.CreatedAt == nil {
				continue
			}
			// A ghost identity can never be the author, so it still
			// qualifies as a response.
			if id, ok := comment.Author.UserID(); ok && hasAuthor && id == authorID {
				continue
			}
			if c.isExcludedBot(comment.Author.Login) {
				continue
			}
			responses = append(responses, *comment.CreatedAt)
		}

		for _, review := range pr.Reviews {
			if review.Author == nil {
				continue
			}
			id, hasID := review.Author.UserID()
			if hasID && hasAuthor && id == authorID {
				continue
			}
			if review.SubmittedAt != nil {
				responses = append(responses, *review.SubmittedAt)
			}
			// Concentration tracks resolvable reviewer ids only; ghost
			// reviewers are never merged with each other.
			if hasID {
				reviewerCounts[id]++
			}
		}

		if hasCreated && len(responses) > 0 {
			first := responses[0]
			for _, t := range responses[1:] {
				if t.Before(first) {
					first = t
				}
			}
			firstResponses = append(firstResponses, first.Sub(created).Hours())
		}
	}

	reviewTotal := 0
	for _, n := range reviewerCounts {
		reviewTotal += n
	}
	ranked := rankCounts(reviewerCounts, topRankSize)
	top1, top2 := concentration(ranked, reviewTotal)

	return ExecutionMetrics{
		MedianMergeDays:          timeutil.Median(mergeDurations),
		MedianFirstResponseHours: timeutil.Median(firstResponses),
		ReviewTop1Pct:            top1,
		ReviewTop2Pct:            top2,
		TotalPRs:                 len(prs),
		TopReviewersByID:         ranked,
	}
}
