package recommender

import (
	"testing"

	"github.com/fadilmartias/job-recommender/internal/model"
)

// testSnapshot builds a snapshot over a tiny corpus. Content embeddings are
// unit vectors in 4 dimensions; title embeddings may be nil.
func testSnapshot(t *testing.T, contentEmbs, titleEmbs [][]float32, jobs []model.Job) *Snapshot {
	t.Helper()
	ix, err := BuildIndex(contentEmbs, 4)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	snap, err := NewSnapshot(ids, titleEmbs, ix, jobs)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func TestBuildPoolUnionDeduplicates(t *testing.T) {
	contentEmbs := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	titleEmbs := [][]float32{
		{1, 0, 0, 0},
		{0.9, 0.1, 0, 0},
		nil,
	}
	jobs := []model.Job{
		{ID: 101, Title: "Data Analyst"},
		{ID: 102, Title: "Data Engineer"},
		{ID: 103, Title: "Chef"},
	}
	snap := testSnapshot(t, contentEmbs, titleEmbs, jobs)

	candidates, err := BuildPool(snap, []float32{1, 0, 0, 0}, []float32{1, 0, 0, 0}, 2, 10)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}

	seen := make(map[int64]bool)
	for _, c := range candidates {
		if seen[c.JobID] {
			t.Errorf("job %d appears twice in pool", c.JobID)
		}
		seen[c.JobID] = true
	}
	// All three jobs are reachable via ANN or the title scans.
	if len(candidates) != 3 {
		t.Errorf("pool size = %d, want 3", len(candidates))
	}
}

func TestBuildPoolDropsDriftedIDs(t *testing.T) {
	contentEmbs := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}
	titleEmbs := [][]float32{nil, nil}
	// Job 202 is in the index arrays but missing from the job table.
	jobs := []model.Job{{ID: 201, Title: "Data Analyst"}}
	ix, err := BuildIndex(contentEmbs, 4)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	snap, err := NewSnapshot([]int64{201, 202}, titleEmbs, ix, jobs)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	candidates, err := BuildPool(snap, []float32{1, 0, 0, 0}, nil, 5, 10)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}
	for _, c := range candidates {
		if c.JobID == 202 {
			t.Error("drifted job id 202 should have been dropped")
		}
	}
	if len(candidates) != 1 {
		t.Errorf("pool size = %d, want 1", len(candidates))
	}
}

func TestBuildPoolBaseScores(t *testing.T) {
	contentEmbs := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}
	titleEmbs := [][]float32{
		{0, 0, 1, 0},
		{0, 0, 1, 0},
	}
	jobs := []model.Job{
		{ID: 301, Title: "A"},
		{ID: 302, Title: "B"},
	}
	snap := testSnapshot(t, contentEmbs, titleEmbs, jobs)

	// faissPool of 1 keeps only the best ANN hit; the other job enters the
	// pool through the title scans and must carry a zero base score.
	candidates, err := BuildPool(snap, []float32{1, 0, 0, 0}, []float32{0, 0, 1, 0}, 0, 1)
	if err != nil {
		t.Fatalf("BuildPool: %v", err)
	}

	byID := make(map[int64]Candidate)
	for _, c := range candidates {
		byID[c.JobID] = c
	}
	if byID[301].BaseScore <= 0 {
		t.Errorf("ANN hit base score = %v, want > 0", byID[301].BaseScore)
	}
	if byID[302].BaseScore != 0 {
		t.Errorf("title-scan-only candidate base score = %v, want 0", byID[302].BaseScore)
	}
}

func TestTopPositions(t *testing.T) {
	values := []float64{0.2, 0.9, 0.5, 0.9}
	got := topPositions(values, 3)
	want := []int{1, 3, 2} // ties broken by index ascending
	if len(got) != len(want) {
		t.Fatalf("topPositions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topPositions[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if n := len(topPositions(values, 100)); n != 4 {
		t.Errorf("topPositions clamped length = %d, want 4", n)
	}
}
