package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/job-recommender/internal/config"
	"github.com/fadilmartias/job-recommender/internal/model"
	"github.com/fadilmartias/job-recommender/internal/recommender"
	"github.com/fadilmartias/job-recommender/internal/repository"
	"github.com/fadilmartias/job-recommender/internal/service"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// The indexer runs offline: full build when the artifact set is missing,
// incremental append otherwise. After a successful write it pings the
// server's /reload endpoint so the new snapshot goes live.
func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	recConfig := config.LoadRecommenderConfig()
	store := recommender.NewArtifactStore(recConfig.ArtifactDir)

	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		log.Fatal(err)
	}

	jobRepo := connectJobRepo()
	jobs, err := loadJobs(jobRepo, recConfig.JobsCSVPath)
	if err != nil {
		log.Fatalf("Could not load jobs: %v", err)
	}
	log.Printf("Loaded %d jobs", len(jobs))

	var changed bool
	if store.Complete() {
		changed, err = incrementalUpdate(ctx, store, gemini, jobRepo, jobs)
	} else {
		changed, err = fullBuild(ctx, store, gemini, jobRepo, jobs)
	}
	if err != nil {
		log.Fatalf("Index build failed: %v", err)
	}

	if changed {
		notifyReload(recConfig.ServerBaseURL)
	}
}

func connectJobRepo() *repository.JobRepository {
	dbConfig := config.LoadDBConfig()
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Jakarta",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Printf("Warning: could not connect to database (%v), continuing with CSV only", err)
		return nil
	}
	return repository.NewJobRepository(db)
}

func loadJobs(jobRepo *repository.JobRepository, csvPath string) ([]model.Job, error) {
	if jobRepo != nil {
		jobs, err := jobRepo.GetJobs()
		if err == nil {
			return jobs, nil
		}
		log.Printf("Warning: job table query failed (%v), falling back to CSV %s", err, csvPath)
	}
	return repository.LoadJobsFromCSV(csvPath)
}

// fullBuild embeds every job with usable text and writes a complete artifact
// set. Jobs whose embedding text is empty are left out of the index entirely.
func fullBuild(ctx context.Context, store *recommender.ArtifactStore, gemini service.GeminiServiceInterface, jobRepo *repository.JobRepository, jobs []model.Job) (bool, error) {
	log.Println("No complete artifact set found, running full build")

	arts := &recommender.Artifacts{}
	var contentEmbs [][]float32

	for _, job := range jobs {
		emb, titleEmb, ok := embedJob(ctx, gemini, job)
		if !ok {
			continue
		}
		arts.JobIDs = append(arts.JobIDs, job.ID)
		contentEmbs = append(contentEmbs, emb)
		arts.TitleEmbs = append(arts.TitleEmbs, titleEmb)
		arts.Metadatas = append(arts.Metadatas, toMetadata(job))

		persistEmbedding(jobRepo, job.ID, emb)
	}

	if len(contentEmbs) == 0 {
		return false, fmt.Errorf("no jobs with usable embedding text")
	}

	index, err := recommender.BuildIndex(contentEmbs, len(contentEmbs[0]))
	if err != nil {
		return false, err
	}
	arts.ContentEmbs = contentEmbs
	arts.Index = index

	if err := store.Save(arts); err != nil {
		return false, err
	}
	log.Printf("Full build complete: %d jobs indexed", len(arts.JobIDs))
	return true, nil
}

// incrementalUpdate appends jobs that are not yet in the artifact set. It
// never re-embeds or removes existing rows; a full rebuild handles those.
func incrementalUpdate(ctx context.Context, store *recommender.ArtifactStore, gemini service.GeminiServiceInterface, jobRepo *repository.JobRepository, jobs []model.Job) (bool, error) {
	arts, err := store.Load()
	if err != nil {
		return false, err
	}

	indexed := make(map[int64]struct{}, len(arts.JobIDs))
	for _, id := range arts.JobIDs {
		indexed[id] = struct{}{}
	}

	var added int
	for _, job := range jobs {
		if _, ok := indexed[job.ID]; ok {
			continue
		}
		emb, titleEmb, ok := embedJob(ctx, gemini, job)
		if !ok {
			continue
		}
		if err := arts.Index.Add([][]float32{emb}); err != nil {
			return false, fmt.Errorf("add job %d to index: %w", job.ID, err)
		}
		arts.JobIDs = append(arts.JobIDs, job.ID)
		arts.ContentEmbs = append(arts.ContentEmbs, emb)
		arts.TitleEmbs = append(arts.TitleEmbs, titleEmb)
		arts.Metadatas = append(arts.Metadatas, toMetadata(job))
		added++

		persistEmbedding(jobRepo, job.ID, emb)
	}

	if added == 0 {
		log.Println("No new jobs, artifacts left untouched")
		return false, nil
	}

	if err := store.Save(arts); err != nil {
		return false, err
	}
	log.Printf("Incremental update complete: %d jobs added, %d total", added, len(arts.JobIDs))
	return true, nil
}

// embedJob produces the content embedding and the optional title embedding
// for one job. ok is false when the job has no usable text or the content
// embedding fails; a failed title embedding only loses the title vector.
func embedJob(ctx context.Context, gemini service.GeminiServiceInterface, job model.Job) (emb, titleEmb []float32, ok bool) {
	text := service.BuildJobEmbeddingText(job)
	if text == "" {
		log.Printf("Skipping job %d: no usable embedding text", job.ID)
		return nil, nil, false
	}

	emb, err := gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		log.Printf("Skipping job %d: embedding failed: %v", job.ID, err)
		return nil, nil, false
	}
	recommender.NormalizeL2(emb)

	if service.IsValidText(job.Title) {
		titleEmb, err = gemini.GenerateEmbedding(ctx, job.Title)
		if err != nil {
			log.Printf("Warning: title embedding failed for job %d: %v", job.ID, err)
			titleEmb = nil
		} else {
			recommender.NormalizeL2(titleEmb)
		}
	}
	return emb, titleEmb, true
}

func toMetadata(job model.Job) recommender.JobMetadata {
	return recommender.JobMetadata{
		JobID:         job.ID,
		CompanyID:     job.CompanyID,
		City:          job.City,
		State:         job.State,
		MinimumSalary: job.MinimumSalary,
		MaximumSalary: job.MaximumSalary,
		AverageSalary: job.AverageSalary,
		CreatedAt:     job.CreatedAt,
	}
}

// persistEmbedding mirrors the content vector into the pgvector column.
// Best effort: artifact files are the source of truth for serving.
func persistEmbedding(jobRepo *repository.JobRepository, jobID int64, emb []float32) {
	if jobRepo == nil {
		return
	}
	if err := jobRepo.UpdateEmbedding(jobID, pgvector.NewVector(emb)); err != nil {
		log.Printf("Warning: could not persist embedding for job %d: %v", jobID, err)
	}
}

// notifyReload asks the running server to swap in the new artifacts.
// Failure is not fatal: the server picks them up on its next reload anyway.
func notifyReload(baseURL string) {
	client := resty.New().SetTimeout(30 * time.Second)
	resp, err := client.R().Post(baseURL + "/reload")
	if err != nil {
		log.Printf("Warning: reload ping failed: %v", err)
		return
	}
	body := string(resp.Body())
	if !gjson.Get(body, "success").Bool() {
		log.Printf("Warning: reload rejected: %s", body)
		return
	}
	log.Printf("Server reloaded snapshot %s", gjson.Get(body, "data.version").String())
}
