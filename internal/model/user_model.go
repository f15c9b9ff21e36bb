package model

import "time"

type User struct {
	ID            int64     `gorm:"primaryKey" json:"user_id"`
	Name          string    `gorm:"type:varchar(255)" json:"user_name"`
	Profile       string    `gorm:"type:text" json:"user_profile"`
	Skills        string    `gorm:"type:text" json:"user_skills"`
	ExperienceExt string    `gorm:"type:text" json:"user_experience_ext"`
	City          string    `gorm:"type:varchar(100)" json:"user_city"`
	State         string    `gorm:"type:varchar(100)" json:"user_state"`
	JobLocation   string    `gorm:"type:text" json:"user_job_location"` // comma separated preferred locations
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u *User) TableName() string {
	return "users"
}
