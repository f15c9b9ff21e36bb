package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type Job struct {
	ID            int64           `gorm:"primaryKey" json:"job_id"`
	CompanyID     int64           `json:"company_id"`
	Title         string          `gorm:"type:varchar(255)" json:"job_title"`
	KeySkills     string          `gorm:"type:text" json:"job_key_skills"`
	Description   string          `gorm:"type:text" json:"job_description"`
	MinimumSalary float64         `json:"job_minimum_salary"`
	MaximumSalary float64         `json:"job_maximum_salary"`
	AverageSalary float64         `json:"average_salary"`
	City          string          `gorm:"type:varchar(100)" json:"job_city"`
	State         string          `gorm:"type:varchar(100)" json:"job_state"`
	ExtExperience string          `gorm:"type:varchar(100)" json:"job_ext_experience"`
	Embedding     pgvector.Vector `gorm:"type:vector(3072)" json:"-"` // pakai pgvector
	CreatedAt     time.Time       `json:"job_created_at"`
	UpdatedAt     time.Time       `json:"-"`
}

func (j *Job) TableName() string {
	return "jobs"
}
