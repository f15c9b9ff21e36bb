package recommender

import (
	"sort"

	"github.com/fadilmartias/job-recommender/internal/model"
)

// ScoredJob is a fully scored candidate ready for ranking.
type ScoredJob struct {
	Job        model.Job
	FinalScore float64
	Priority   int
}

// Rank orders scored jobs by ascending priority tier then descending final
// score, and truncates to topK. Ties on both keys break by job id ascending
// so two runs over the same snapshot always produce the same list.
func Rank(results []ScoredJob, topK int) []ScoredJob {
	sort.Slice(results, func(a, b int) bool {
		if results[a].Priority != results[b].Priority {
			return results[a].Priority < results[b].Priority
		}
		if results[a].FinalScore != results[b].FinalScore {
			return results[a].FinalScore > results[b].FinalScore
		}
		return results[a].Job.ID < results[b].Job.ID
	})
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results
}
