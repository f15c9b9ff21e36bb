package recommender

import (
	"math"
	"testing"

	"github.com/fadilmartias/job-recommender/internal/model"
)

// analystChefSnapshot reproduces the canonical scenario: a data analyst in
// pune against a matching analyst role and an unrelated chef role.
func analystChefSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	contentEmbs := [][]float32{
		{0.9, 0.1, 0, 0}, // Data Analyst
		{0, 0, 0.9, 0.1}, // Chef
	}
	titleEmbs := [][]float32{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
	}
	jobs := []model.Job{
		{ID: 1, Title: "Data Analyst", KeySkills: "python, excel", City: "pune"},
		{ID: 2, Title: "Chef", KeySkills: "cooking", City: "mumbai"},
	}
	return testSnapshot(t, contentEmbs, titleEmbs, jobs)
}

func analystProfile() Profile {
	return Profile{
		City:      "pune",
		TitleText: "data analyst",
		TitleEmb:  []float32{1, 0, 0, 0},
		QueryEmb:  []float32{0.9, 0.1, 0, 0},
		Skills:    "python,sql",
	}
}

func TestRecommendAnalystOverChef(t *testing.T) {
	snap := analystChefSnapshot(t)

	results, err := Recommend(snap, analystProfile(), 10, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Job.ID != 1 {
		t.Fatalf("best match = job %d, want the Data Analyst role", results[0].Job.ID)
	}
	if results[0].Priority > results[1].Priority {
		t.Errorf("analyst priority %d should not be worse than chef priority %d",
			results[0].Priority, results[1].Priority)
	}
	if results[0].Priority == results[1].Priority && results[0].FinalScore <= results[1].FinalScore {
		t.Errorf("analyst score %v should beat chef score %v",
			results[0].FinalScore, results[1].FinalScore)
	}

	if got := LocationScore("pune", "pune", nil); math.Abs(got-1.0) > tolerance {
		t.Errorf("analyst location score = %v, want 1.0", got)
	}
	if got := LocationScore("mumbai", "pune", nil); math.Abs(got-0.1) > tolerance {
		t.Errorf("chef location score = %v, want 0.1", got)
	}
}

func TestRecommendIdempotent(t *testing.T) {
	snap := analystChefSnapshot(t)

	first, err := Recommend(snap, analystProfile(), 10, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	second, err := Recommend(snap, analystProfile(), 10, 10)
	if err != nil {
		t.Fatalf("Recommend (second run): %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Job.ID != second[i].Job.ID ||
			first[i].FinalScore != second[i].FinalScore ||
			first[i].Priority != second[i].Priority {
			t.Errorf("result %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRecommendTopKTruncation(t *testing.T) {
	snap := analystChefSnapshot(t)

	results, err := Recommend(snap, analystProfile(), 1, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results with top_k=1, want 1", len(results))
	}
}

func TestRecommendNilTitleEmbeddingStillRankable(t *testing.T) {
	contentEmbs := [][]float32{{1, 0, 0, 0}}
	titleEmbs := [][]float32{nil}
	jobs := []model.Job{{ID: 5, Title: "Data Analyst", KeySkills: "python", City: "pune"}}
	snap := testSnapshot(t, contentEmbs, titleEmbs, jobs)

	results, err := Recommend(snap, analystProfile(), 10, 10)
	if err != nil {
		t.Fatalf("Recommend with nil title embedding: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].FinalScore <= 0 {
		t.Errorf("final score = %v, want > 0", results[0].FinalScore)
	}
}

func TestRecommendScoresRounded(t *testing.T) {
	snap := analystChefSnapshot(t)
	results, err := Recommend(snap, analystProfile(), 10, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range results {
		if r.FinalScore != Round4(r.FinalScore) {
			t.Errorf("final score %v not rounded to 4 decimals", r.FinalScore)
		}
	}
}

func TestRecommendRequiresQueryEmbedding(t *testing.T) {
	snap := analystChefSnapshot(t)
	p := analystProfile()
	p.QueryEmb = nil
	if _, err := Recommend(snap, p, 10, 10); err == nil {
		t.Error("expected error for missing query embedding")
	}
}

func TestRecommendNilSnapshot(t *testing.T) {
	if _, err := Recommend(nil, analystProfile(), 10, 10); err == nil {
		t.Error("expected ErrSnapshotUnavailable for nil snapshot")
	}
}

func TestRecommendEmptyPreferredLocations(t *testing.T) {
	snap := analystChefSnapshot(t)
	p := analystProfile()
	p.City = "delhi"
	p.PreferredLocations = ""

	results, err := Recommend(snap, p, 10, 10)
	if err != nil {
		t.Fatalf("Recommend with empty preferred locations: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results despite non-matching city")
	}
}
