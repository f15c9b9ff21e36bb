package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fadilmartias/job-recommender/internal/model"
	"github.com/fadilmartias/job-recommender/internal/recommender"
)

// fakeGemini maps keywords to fixed unit vectors so scoring is deterministic
// without network access.
type fakeGemini struct {
	fail bool
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("embedding backend down")
	}
	if strings.Contains(strings.ToLower(text), "analyst") {
		return []float32{1, 0, 0, 0}, nil
	}
	return []float32{0, 0, 1, 0}, nil
}

func publishedEngine(t *testing.T) *recommender.Engine {
	t.Helper()
	contentEmbs := [][]float32{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
	}
	index, err := recommender.BuildIndex(contentEmbs, 4)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	jobs := []model.Job{
		{ID: 1, Title: "Data Analyst", KeySkills: "python, excel", City: "pune"},
		{ID: 2, Title: "Chef", KeySkills: "cooking", City: "mumbai"},
	}
	snap, err := recommender.NewSnapshot([]int64{1, 2}, [][]float32{{1, 0, 0, 0}, {0, 0, 1, 0}}, index, jobs)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	engine := recommender.NewEngine()
	engine.Publish(snap)
	return engine
}

func TestRecommendForProfile(t *testing.T) {
	engine := publishedEngine(t)
	store := recommender.NewArtifactStore(t.TempDir())
	uc := NewRecommendationUsecase(nil, nil, &fakeGemini{}, engine, store, "", 300)

	user := &model.User{ID: 7, Profile: "data analyst", Skills: "python,sql", City: "pune"}
	results, err := uc.RecommendForProfile(context.Background(), user, 10)
	if err != nil {
		t.Fatalf("RecommendForProfile: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Job.ID != 1 {
		t.Errorf("best match = job %d, want the Data Analyst role", results[0].Job.ID)
	}
}

func TestRecommendForProfileNoUsableText(t *testing.T) {
	uc := NewRecommendationUsecase(nil, nil, &fakeGemini{}, publishedEngine(t), recommender.NewArtifactStore(t.TempDir()), "", 300)

	user := &model.User{ID: 8, Profile: "none", Skills: "nan"}
	if _, err := uc.RecommendForProfile(context.Background(), user, 10); err == nil {
		t.Error("expected error for user with no usable profile text")
	}
}

func TestRecommendForProfileNoSnapshot(t *testing.T) {
	uc := NewRecommendationUsecase(nil, nil, &fakeGemini{}, recommender.NewEngine(), recommender.NewArtifactStore(t.TempDir()), "", 300)

	user := &model.User{ID: 9, Profile: "data analyst"}
	_, err := uc.RecommendForProfile(context.Background(), user, 10)
	if !errors.Is(err, recommender.ErrSnapshotUnavailable) {
		t.Errorf("err = %v, want ErrSnapshotUnavailable", err)
	}
}

func TestRecommendForProfileEmbeddingFailure(t *testing.T) {
	uc := NewRecommendationUsecase(nil, nil, &fakeGemini{fail: true}, publishedEngine(t), recommender.NewArtifactStore(t.TempDir()), "", 300)

	user := &model.User{ID: 10, Profile: "data analyst"}
	if _, err := uc.RecommendForProfile(context.Background(), user, 10); err == nil {
		t.Error("expected error when the query embedding fails")
	}
}

func TestReloadFromArtifactsAndCSV(t *testing.T) {
	dir := t.TempDir()
	store := recommender.NewArtifactStore(dir)

	index, err := recommender.BuildIndex([][]float32{{1, 0, 0, 0}, {0, 0, 1, 0}}, 4)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	arts := &recommender.Artifacts{
		JobIDs:      []int64{1, 2},
		ContentEmbs: [][]float32{{1, 0, 0, 0}, {0, 0, 1, 0}},
		Metadatas:   []recommender.JobMetadata{{JobID: 1}, {JobID: 2}},
		TitleEmbs:   [][]float32{{1, 0, 0, 0}, nil},
		Index:       index,
	}
	if err := store.Save(arts); err != nil {
		t.Fatalf("Save: %v", err)
	}

	csvPath := filepath.Join(dir, "jobs.csv")
	csv := "job_id,company_id,job_title,job_key_skills,job_description,job_minimum_salary,job_maximum_salary,job_city,job_state,job_ext_experience,job_created_at\n" +
		"1,10,Data Analyst,\"python, excel\",desc,10000,20000,pune,mh,2-4 yrs,2024-01-01\n" +
		"2,11,Chef,cooking,desc,5000,9000,mumbai,mh,1-2 yrs,2024-01-02\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	engine := recommender.NewEngine()
	uc := NewRecommendationUsecase(nil, nil, &fakeGemini{}, engine, store, csvPath, 300)

	version, err := uc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if version == "" {
		t.Error("Reload returned empty version")
	}

	snap, err := engine.Current()
	if err != nil {
		t.Fatalf("Current after reload: %v", err)
	}
	if len(snap.JobIDs) != 2 || len(snap.Jobs) != 2 {
		t.Errorf("snapshot has %d ids and %d jobs, want 2 and 2", len(snap.JobIDs), len(snap.Jobs))
	}
}

func TestReloadMissingArtifacts(t *testing.T) {
	uc := NewRecommendationUsecase(nil, nil, &fakeGemini{}, recommender.NewEngine(), recommender.NewArtifactStore(t.TempDir()), "", 300)

	_, err := uc.Reload(context.Background())
	if !errors.Is(err, recommender.ErrSnapshotUnavailable) {
		t.Errorf("err = %v, want ErrSnapshotUnavailable", err)
	}
}
