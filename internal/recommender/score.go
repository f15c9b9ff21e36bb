package recommender

import (
	"math"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Blend weights. Title dominates the field score, the ANN retrieval score
// acts only as a small prior on top.
const (
	titleCosineWeight = 0.6
	titleFuzzyWeight  = 0.4

	fieldTitleWeight    = 0.55
	fieldSkillsWeight   = 0.30
	fieldLocationWeight = 0.10

	baseScoreWeight  = 0.05
	fieldScoreWeight = 0.95

	skillsMatchThreshold = 0.6

	locationExactScore    = 1.0
	locationPartialScore  = 0.7
	locationFallbackScore = 0.1
)

// NormStr trims and lowercases a free-text field before comparison.
func NormStr(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitTokens splits a comma-separated field into normalized non-empty
// tokens, deduplicated in order. A repeated skill must not weight its pair
// ratios twice in the skills mean.
func SplitTokens(s string) []string {
	parts := strings.Split(s, ",")
	seen := make(map[string]struct{}, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		t := NormStr(p)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	return tokens
}

// CosineSim computes cosine similarity between two vectors. Zero-norm or
// mismatched vectors score 0 rather than erroring; the epsilon guards the
// division the same way the indexing side does.
func CosineSim(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / ((math.Sqrt(normA) + 1e-9) * (math.Sqrt(normB) + 1e-9))
}

// TitleSimilarity blends semantic and fuzzy title match. The cosine term
// contributes 0 when the job has no title embedding; the token-set ratio is
// order- and duplicate-insensitive, so "senior engineer data" still matches
// "data engineer senior".
func TitleSimilarity(userTitleEmb, jobTitleEmb []float32, userTitle, jobTitle string) float64 {
	sem := 0.0
	if jobTitleEmb != nil {
		sem = CosineSim(userTitleEmb, jobTitleEmb)
	}
	ratio := float64(fuzzy.TokenSetRatio(NormStr(userTitle), NormStr(jobTitle))) / 100.0
	return titleCosineWeight*sem + titleFuzzyWeight*ratio
}

// SkillsSimilarity averages partial-match ratios over all (user, job) skill
// pairs that clear the match threshold. No qualifying pair means 0.
func SkillsSimilarity(userSkills, jobSkills string) float64 {
	user := SplitTokens(userSkills)
	job := SplitTokens(jobSkills)
	if len(user) == 0 || len(job) == 0 {
		return 0
	}

	var sum float64
	var count int
	for _, u := range user {
		for _, j := range job {
			r := float64(fuzzy.PartialRatio(u, j)) / 100.0
			if r > skillsMatchThreshold {
				sum += r
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// LocationScore compares normalized cities: exact match 1.0, preferred
// location substring match 0.7, otherwise a 0.1 floor so location alone
// never eliminates a candidate. Two blank cities count as an exact match.
func LocationScore(jobCity, userCity string, preferredLocations []string) float64 {
	jc := NormStr(jobCity)
	if jc == NormStr(userCity) {
		return locationExactScore
	}
	for _, loc := range preferredLocations {
		if loc != "" && strings.Contains(jc, loc) {
			return locationPartialScore
		}
	}
	return locationFallbackScore
}

// Softmax3 rescales the three signal values into relative weights summing
// to 1, reducing sensitivity to their different absolute scales.
func Softmax3(a, b, c float64) (float64, float64, float64) {
	ea, eb, ec := math.Exp(a), math.Exp(b), math.Exp(c)
	sum := ea + eb + ec
	return ea / sum, eb / sum, ec / sum
}

// BlendScore combines the softmaxed signals with the retrieval prior into
// the final score, rounded to 4 decimal places.
func BlendScore(baseScore float64, titleSim, skillsSim, locationScore float64) float64 {
	t, s, l := Softmax3(titleSim, skillsSim, locationScore)
	fieldScore := fieldTitleWeight*t + fieldSkillsWeight*s + fieldLocationWeight*l
	return Round4(baseScoreWeight*baseScore + fieldScoreWeight*fieldScore)
}

// TitlePriority buckets a candidate into a coarse tier from title match
// strength alone: 0 is best.
func TitlePriority(titleSim float64) int {
	switch {
	case titleSim >= 0.80:
		return 0
	case titleSim >= 0.55:
		return 1
	default:
		return 2
	}
}

// Round4 rounds to 4 decimal places.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
