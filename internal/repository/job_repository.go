package repository

import (
	"github.com/fadilmartias/job-recommender/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// GetJobs returns the full job table. The derived average salary is
// recomputed on read so stale or missing values in the column never leak
// into scoring.
func (r *JobRepository) GetJobs() ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i].AverageSalary = (jobs[i].MinimumSalary + jobs[i].MaximumSalary) / 2
	}
	return jobs, nil
}

func (r *JobRepository) GetJobsPage(page, pageSize int) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	if err := r.db.Model(&model.Job{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("id asc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	for i := range jobs {
		jobs[i].AverageSalary = (jobs[i].MinimumSalary + jobs[i].MaximumSalary) / 2
	}
	return jobs, total, nil
}

// UpdateEmbedding stores the content vector produced by the indexer in the
// pgvector column.
func (r *JobRepository) UpdateEmbedding(id int64, embedding pgvector.Vector) error {
	return r.db.Model(&model.Job{}).Where("id = ?", id).Update("embedding", embedding).Error
}
