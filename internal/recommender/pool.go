package recommender

import (
	"fmt"
	"sort"

	"github.com/fadilmartias/job-recommender/internal/model"
)

const (
	// DefaultFaissPool is the ANN oversampling width.
	DefaultFaissPool = 300
	// strongTitleTop is the size of the high-confidence brute-force title set.
	strongTitleTop = 80
)

// Candidate is one job pulled into the scoring pool, with the ANN score it
// was retrieved with (0 when it came only from a brute-force title scan).
type Candidate struct {
	Position  int
	JobID     int64
	Job       model.Job
	TitleEmb  []float32
	BaseScore float64
}

// BuildPool merges three retrieval routes into one deduplicated candidate
// set: the ANN hits for the profile embedding, plus two brute-force title
// scans (top strongTitleTop and top faissPool by title cosine). ANN search
// alone misses jobs whose titles are near-exact matches but whose content
// embeddings point elsewhere; the title scans backstop that.
//
// Positions whose job id is missing from the snapshot's job table are
// dropped silently: the index may lag or lead a freshly reloaded table.
func BuildPool(snap *Snapshot, queryEmb, titleEmb []float32, topK, faissPool int) ([]Candidate, error) {
	if faissPool <= 0 {
		faissPool = DefaultFaissPool
	}

	positions, scores, err := snap.Index.Search(queryEmb, topK+faissPool)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	if len(positions) > faissPool {
		positions = positions[:faissPool]
		scores = scores[:faissPool]
	}

	baseScores := make(map[int]float64, len(positions))
	pool := make(map[int]struct{}, faissPool*2)
	for i, pos := range positions {
		pool[pos] = struct{}{}
		baseScores[pos] = float64(scores[i])
	}

	titleSims := make([]float64, len(snap.TitleEmbs))
	for i, emb := range snap.TitleEmbs {
		if emb != nil {
			titleSims[i] = CosineSim(titleEmb, emb)
		}
	}
	for _, pos := range topPositions(titleSims, strongTitleTop) {
		pool[pos] = struct{}{}
	}
	for _, pos := range topPositions(titleSims, faissPool) {
		pool[pos] = struct{}{}
	}

	candidates := make([]Candidate, 0, len(pool))
	for pos := range pool {
		jobID := snap.JobIDs[pos]
		job, ok := snap.Jobs[jobID]
		if !ok {
			continue // index/table drift
		}
		candidates = append(candidates, Candidate{
			Position:  pos,
			JobID:     jobID,
			Job:       job,
			TitleEmb:  snap.TitleEmbs[pos],
			BaseScore: baseScores[pos],
		})
	}
	return candidates, nil
}

// topPositions returns the indices of the n largest values, descending,
// ties broken by index ascending.
func topPositions(values []float64, n int) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if values[order[a]] != values[order[b]] {
			return values[order[a]] > values[order[b]]
		}
		return order[a] < order[b]
	})
	if n > len(order) {
		n = len(order)
	}
	return order[:n]
}
