package dto

import (
	"time"

	"github.com/fadilmartias/job-recommender/internal/recommender"
)

type RecommendedJobDTO struct {
	JobID         int64     `json:"job_id"`
	CompanyID     int64     `json:"company_id"`
	Title         string    `json:"job_title"`
	KeySkills     string    `json:"job_key_skills"`
	City          string    `json:"job_city"`
	State         string    `json:"job_state"`
	MinimumSalary float64   `json:"job_minimum_salary"`
	MaximumSalary float64   `json:"job_maximum_salary"`
	AverageSalary float64   `json:"average_salary"`
	ExtExperience string    `json:"job_ext_experience"`
	CreatedAt     time.Time `json:"job_created_at"`
	FinalScore    float64   `json:"final_score"`
	Priority      int       `json:"priority"`
}

func ToRecommendedJobDTO(s recommender.ScoredJob) RecommendedJobDTO {
	return RecommendedJobDTO{
		JobID:         s.Job.ID,
		CompanyID:     s.Job.CompanyID,
		Title:         s.Job.Title,
		KeySkills:     s.Job.KeySkills,
		City:          s.Job.City,
		State:         s.Job.State,
		MinimumSalary: s.Job.MinimumSalary,
		MaximumSalary: s.Job.MaximumSalary,
		AverageSalary: s.Job.AverageSalary,
		ExtExperience: s.Job.ExtExperience,
		CreatedAt:     s.Job.CreatedAt,
		FinalScore:    s.FinalScore,
		Priority:      s.Priority,
	}
}

func ToRecommendedJobDTOs(scored []recommender.ScoredJob) []RecommendedJobDTO {
	out := make([]RecommendedJobDTO, 0, len(scored))
	for _, s := range scored {
		out = append(out, ToRecommendedJobDTO(s))
	}
	return out
}

// RecommendCVRequest carries the form fields that accompany the uploaded CV.
type RecommendCVRequest struct {
	City               string `form:"city"`
	Skills             string `form:"skills"`
	PreferredLocations string `form:"preferred_locations"`
}
