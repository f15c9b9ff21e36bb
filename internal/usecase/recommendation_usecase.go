package usecase

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/fadilmartias/job-recommender/internal/model"
	"github.com/fadilmartias/job-recommender/internal/recommender"
	"github.com/fadilmartias/job-recommender/internal/repository"
	"github.com/fadilmartias/job-recommender/internal/response"
	"github.com/fadilmartias/job-recommender/internal/service"
)

type RecommendationUsecase struct {
	jobRepo   *repository.JobRepository
	userRepo  *repository.UserRepository
	gemini    service.GeminiServiceInterface
	engine    *recommender.Engine
	store     *recommender.ArtifactStore
	csvPath   string
	faissPool int
}

func NewRecommendationUsecase(jobRepo *repository.JobRepository, userRepo *repository.UserRepository, gemini service.GeminiServiceInterface, engine *recommender.Engine, store *recommender.ArtifactStore, csvPath string, faissPool int) *RecommendationUsecase {
	return &RecommendationUsecase{
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		gemini:    gemini,
		engine:    engine,
		store:     store,
		csvPath:   csvPath,
		faissPool: faissPool,
	}
}

// Reload builds a fresh snapshot from the on-disk artifacts plus the current
// job table and publishes it atomically. In-flight requests keep the snapshot
// they started with.
func (uc *RecommendationUsecase) Reload(ctx context.Context) (string, error) {
	arts, err := uc.store.Load()
	if err != nil {
		return "", err
	}

	jobs, err := uc.loadJobs()
	if err != nil {
		return "", fmt.Errorf("load job table: %w", err)
	}

	snap, err := recommender.NewSnapshot(arts.JobIDs, arts.TitleEmbs, arts.Index, jobs)
	if err != nil {
		return "", err
	}

	uc.engine.Publish(snap)
	log.Printf("Published snapshot %s: %d jobs indexed, %d in job table", snap.Version, len(snap.JobIDs), len(jobs))
	return snap.Version, nil
}

// loadJobs prefers the database and falls back to the CSV export so the
// service can still answer when the database is unreachable.
func (uc *RecommendationUsecase) loadJobs() ([]model.Job, error) {
	if uc.jobRepo != nil {
		jobs, err := uc.jobRepo.GetJobs()
		if err == nil {
			return jobs, nil
		}
		log.Printf("Warning: job table query failed (%v), falling back to CSV %s", err, uc.csvPath)
	}
	return repository.LoadJobsFromCSV(uc.csvPath)
}

// RecommendForUser loads the stored user and runs the pipeline for them.
// A gorm.ErrRecordNotFound from the repository passes through untouched so
// the handler can map it to 404.
func (uc *RecommendationUsecase) RecommendForUser(ctx context.Context, userID int64, topK int) (*model.User, []recommender.ScoredJob, error) {
	user, err := uc.userRepo.FindUserByID(userID)
	if err != nil {
		return nil, nil, err
	}
	results, err := uc.RecommendForProfile(ctx, user, topK)
	if err != nil {
		return nil, nil, err
	}
	return user, results, nil
}

// RecommendForProfile embeds the profile and ranks jobs against the current
// snapshot. The title embedding is best effort: if it cannot be produced the
// title signal falls back to fuzzy matching only.
func (uc *RecommendationUsecase) RecommendForProfile(ctx context.Context, user *model.User, topK int) ([]recommender.ScoredJob, error) {
	snap, err := uc.engine.Current()
	if err != nil {
		return nil, err
	}

	queryText := service.BuildUserEmbeddingText(*user)
	if queryText == "" {
		return nil, fmt.Errorf("user %d has no usable profile text", user.ID)
	}

	queryEmb, err := uc.gemini.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed user profile: %w", err)
	}
	recommender.NormalizeL2(queryEmb)

	profile := recommender.Profile{
		City:               user.City,
		PreferredLocations: user.JobLocation,
		TitleText:          user.Profile,
		TitleEmb:           uc.embedTextSafe(ctx, user.Profile),
		QueryEmb:           queryEmb,
		Skills:             user.Skills,
	}

	return recommender.Recommend(snap, profile, topK, uc.faissPool)
}

// embedTextSafe returns nil instead of an error; callers treat a missing
// vector as "fuzzy only".
func (uc *RecommendationUsecase) embedTextSafe(ctx context.Context, text string) []float32 {
	if !service.IsValidText(text) {
		return nil
	}
	emb, err := uc.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		log.Printf("Warning: title embedding failed, falling back to fuzzy match: %v", err)
		return nil
	}
	recommender.NormalizeL2(emb)
	return emb
}

func (uc *RecommendationUsecase) GetJobs(page, pageSize int) ([]model.Job, *response.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	jobs, total, err := uc.jobRepo.GetJobsPage(page, pageSize)
	if err != nil {
		return nil, nil, err
	}

	totalPages := int64(math.Ceil(float64(total) / float64(pageSize)))
	from := (page-1)*pageSize + 1
	to := from + len(jobs) - 1
	if len(jobs) == 0 {
		from, to = 0, 0
	}

	return jobs, &response.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       from,
		To:         to,
	}, nil
}
