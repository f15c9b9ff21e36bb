package recommender

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestCosineSimIdentity(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0.5, 0.5, 0.5, 0.5},
		{0.1, 0.2, 0.3, 0.4},
	}
	for _, v := range vectors {
		NormalizeL2(v)
		if got := CosineSim(v, v); math.Abs(got-1.0) > 1e-6 {
			t.Errorf("CosineSim(v, v) = %f, want 1.0", got)
		}
	}
}

func TestCosineSimZeroNorm(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 0, 0}
	if got := CosineSim(zero, v); got != 0 {
		t.Errorf("CosineSim(zero, v) = %f, want 0", got)
	}
	if got := CosineSim(nil, v); got != 0 {
		t.Errorf("CosineSim(nil, v) = %f, want 0", got)
	}
	if got := CosineSim([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("CosineSim on mismatched dims = %f, want 0", got)
	}
}

func TestTitlePriorityBoundaries(t *testing.T) {
	tests := []struct {
		titleSim float64
		want     int
	}{
		{0.80, 0},
		{0.95, 0},
		{0.7999, 1},
		{0.55, 1},
		{0.5499, 2},
		{0.0, 2},
	}
	for _, tt := range tests {
		if got := TitlePriority(tt.titleSim); got != tt.want {
			t.Errorf("TitlePriority(%v) = %d, want %d", tt.titleSim, got, tt.want)
		}
	}
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name     string
		jobCity  string
		userCity string
		prefLocs []string
		want     float64
	}{
		{"exact match", "pune", "pune", nil, 1.0},
		{"exact match case insensitive", "  Pune ", "pune", nil, 1.0},
		{"preferred location substring", "navi mumbai", "pune", []string{"mumbai"}, 0.7},
		{"no match floor", "mumbai", "pune", nil, 0.1},
		{"empty preferred locations", "mumbai", "pune", []string{}, 0.1},
		{"empty job city", "", "pune", []string{"mumbai"}, 0.1},
		{"both cities empty", "", "", nil, 1.0},
		{"whitespace only cities", "   ", " ", nil, 1.0},
		{"empty user city no match", "pune", "", nil, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocationScore(tt.jobCity, tt.userCity, tt.prefLocs); math.Abs(got-tt.want) > tolerance {
				t.Errorf("LocationScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSkillsSimilarity(t *testing.T) {
	tests := []struct {
		name       string
		userSkills string
		jobSkills  string
		wantZero   bool
	}{
		{"exact overlap", "python,sql", "python, excel", false},
		{"no pair qualifies", "python", "flower arranging", true},
		{"empty user skills", "", "python", true},
		{"empty job skills", "python", "", true},
		{"whitespace tokens only", " , , ", "python", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkillsSimilarity(tt.userSkills, tt.jobSkills)
			if tt.wantZero && got != 0 {
				t.Errorf("SkillsSimilarity = %v, want 0", got)
			}
			if !tt.wantZero && got <= 0 {
				t.Errorf("SkillsSimilarity = %v, want > 0", got)
			}
		})
	}
}

func TestSkillsSimilarityExactMatchMean(t *testing.T) {
	// "python" vs "python" is the only pair above the threshold, so the
	// mean over kept pairs must be exactly 1.0.
	got := SkillsSimilarity("python", "python")
	if math.Abs(got-1.0) > tolerance {
		t.Errorf("SkillsSimilarity(python, python) = %v, want 1.0", got)
	}
}

func TestTitleSimilarityNilEmbedding(t *testing.T) {
	userEmb := []float32{1, 0, 0}

	// Fuzzy-only path: identical titles give ratio 1.0, so title_sim is 0.4.
	got := TitleSimilarity(userEmb, nil, "data analyst", "data analyst")
	if math.Abs(got-0.4) > 1e-6 {
		t.Errorf("TitleSimilarity with nil job embedding = %v, want 0.4", got)
	}

	// With a matching embedding the cosine term kicks in on top.
	withEmb := TitleSimilarity(userEmb, userEmb, "data analyst", "data analyst")
	if withEmb <= got {
		t.Errorf("TitleSimilarity with embedding (%v) should exceed fuzzy-only (%v)", withEmb, got)
	}
}

func TestSoftmax3SumsToOne(t *testing.T) {
	tests := [][3]float64{
		{0.9, 0.3, 1.0},
		{0, 0, 0},
		{1, 1, 1},
		{0.01, 0.99, 0.1},
	}
	for _, tt := range tests {
		a, b, c := Softmax3(tt[0], tt[1], tt[2])
		if sum := a + b + c; math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("Softmax3(%v) sums to %v, want 1.0", tt, sum)
		}
	}
}

func TestSoftmax3Uniform(t *testing.T) {
	a, b, c := Softmax3(0.5, 0.5, 0.5)
	for _, v := range []float64{a, b, c} {
		if math.Abs(v-1.0/3.0) > tolerance {
			t.Errorf("Softmax3 uniform input gave %v, want 1/3", v)
		}
	}
}

func TestBlendScoreRounding(t *testing.T) {
	got := BlendScore(0.5, 0.9, 0.3, 1.0)
	if got != Round4(got) {
		t.Errorf("BlendScore %v not rounded to 4 decimals", got)
	}
	if got <= 0 || got > 1 {
		t.Errorf("BlendScore %v outside expected range", got)
	}
}

func TestBlendScoreDeterministic(t *testing.T) {
	first := BlendScore(0.42, 0.81, 0.27, 0.7)
	for i := 0; i < 10; i++ {
		if got := BlendScore(0.42, 0.81, 0.27, 0.7); got != first {
			t.Fatalf("BlendScore not deterministic: %v vs %v", got, first)
		}
	}
}

func TestSplitTokens(t *testing.T) {
	got := SplitTokens(" Python , SQL, ,excel ")
	want := []string{"python", "sql", "excel"}
	if len(got) != len(want) {
		t.Fatalf("SplitTokens returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitTokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitTokensDeduplicates(t *testing.T) {
	got := SplitTokens("python, Python , sql, python")
	want := []string{"python", "sql"}
	if len(got) != len(want) {
		t.Fatalf("SplitTokens returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitTokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSkillsSimilarityIgnoresDuplicateTokens(t *testing.T) {
	// A repeated skill token must not shift the mean over qualifying pairs.
	base := SkillsSimilarity("python,sql", "python, excel")
	dup := SkillsSimilarity("python, python, sql", "python, excel")
	if math.Abs(base-dup) > tolerance {
		t.Errorf("duplicated skill token changed similarity: %v vs %v", dup, base)
	}
}
