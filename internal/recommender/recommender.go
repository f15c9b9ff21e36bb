package recommender

import "fmt"

// DefaultTopK is the result count when the caller does not specify one.
const DefaultTopK = 10

// Profile carries everything the engine needs about one user for one
// request. It is built once per request and discarded after ranking.
type Profile struct {
	City               string
	PreferredLocations string // comma separated, raw
	TitleText          string // the profile free text, used for fuzzy title match
	TitleEmb           []float32
	QueryEmb           []float32 // required, unit vector over the full profile text
	Skills             string    // comma separated, raw
}

// Recommend runs the full pipeline against one snapshot: candidate pool,
// three independent signals, softmax blend with the retrieval prior,
// priority tiers, then (tier asc, score desc) ordering truncated to topK.
// It is pure given the snapshot and profile, and safe to run concurrently
// across requests.
func Recommend(snap *Snapshot, profile Profile, topK, faissPool int) ([]ScoredJob, error) {
	if snap == nil {
		return nil, ErrSnapshotUnavailable
	}
	if len(profile.QueryEmb) == 0 {
		return nil, fmt.Errorf("profile query embedding is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	candidates, err := BuildPool(snap, profile.QueryEmb, profile.TitleEmb, topK, faissPool)
	if err != nil {
		return nil, err
	}

	userTitle := NormStr(profile.TitleText)
	userCity := NormStr(profile.City)
	prefLocs := SplitTokens(profile.PreferredLocations)

	results := make([]ScoredJob, 0, len(candidates))
	for _, c := range candidates {
		titleSim := TitleSimilarity(profile.TitleEmb, c.TitleEmb, userTitle, c.Job.Title)
		skillsSim := SkillsSimilarity(profile.Skills, c.Job.KeySkills)
		locScore := LocationScore(c.Job.City, userCity, prefLocs)

		results = append(results, ScoredJob{
			Job:        c.Job,
			FinalScore: BlendScore(c.BaseScore, titleSim, skillsSim, locScore),
			Priority:   TitlePriority(titleSim),
		})
	}

	return Rank(results, topK), nil
}
