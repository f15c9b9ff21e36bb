package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/job-recommender/internal/model"
)

// LoadJobsFromCSV reads the job table from a CSV export, used as a fallback
// when Postgres is unreachable. Malformed numeric fields are coerced to 0
// instead of failing the whole load.
func LoadJobsFromCSV(path string) ([]model.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jobs csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read jobs csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("jobs csv %s is empty", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	jobs := make([]model.Job, 0, len(rows)-1)
	for _, row := range rows[1:] {
		minSalary := coerceFloat(field(row, "job_minimum_salary"))
		maxSalary := coerceFloat(field(row, "job_maximum_salary"))
		jobs = append(jobs, model.Job{
			ID:            coerceInt(field(row, "job_id")),
			CompanyID:     coerceInt(field(row, "company_id")),
			Title:         field(row, "job_title"),
			KeySkills:     field(row, "job_key_skills"),
			Description:   field(row, "job_description"),
			MinimumSalary: minSalary,
			MaximumSalary: maxSalary,
			AverageSalary: (minSalary + maxSalary) / 2,
			City:          field(row, "job_city"),
			State:         field(row, "job_state"),
			ExtExperience: field(row, "job_ext_experience"),
			CreatedAt:     coerceTime(field(row, "job_created_at")),
		})
	}
	return jobs, nil
}

func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
