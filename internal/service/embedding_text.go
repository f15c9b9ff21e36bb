package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fadilmartias/job-recommender/internal/model"
)

// Embedding texts cover only the semantic fields. Job descriptions, salary
// and location stay out of the vector and are kept as metadata so they can
// be scored separately.

var experiencePositionRe = regexp.MustCompile(`ExperiencePosition\s+([A-Za-z0-9\/\-\s&\+]+)`)

// IsValidText reports whether a value is a meaningful non-placeholder string.
func IsValidText(value string) bool {
	s := strings.ToLower(strings.TrimSpace(value))
	switch s {
	case "", "0", "none", "nan", "null", "na", "n/a":
		return false
	}
	return true
}

// BuildJobEmbeddingText assembles the content-embedding text for a job from
// title, skills and experience. Returns "" when no field is usable; such
// jobs are skipped by the indexer.
func BuildJobEmbeddingText(job model.Job) string {
	var parts []string
	if IsValidText(job.Title) {
		parts = append(parts, fmt.Sprintf("Job Title: %s", job.Title))
	}
	if IsValidText(job.KeySkills) {
		parts = append(parts, fmt.Sprintf("Skills Required: %s", job.KeySkills))
	}
	if IsValidText(job.ExtExperience) {
		parts = append(parts, fmt.Sprintf("Experience Required: %s", job.ExtExperience))
	}
	return strings.TrimSpace(strings.Join(parts, ". "))
}

// BuildUserEmbeddingText assembles the query-embedding text for a user from
// profile, skills and extracted experience positions. City and state are
// excluded here and handled by the location signal instead.
func BuildUserEmbeddingText(user model.User) string {
	var parts []string
	if IsValidText(user.Profile) {
		parts = append(parts, fmt.Sprintf("Profile: %s", user.Profile))
	}
	if IsValidText(user.Skills) {
		parts = append(parts, fmt.Sprintf("Skills: %s", user.Skills))
	}
	if IsValidText(user.ExperienceExt) {
		if positions := ExtractExperiencePositions(user.ExperienceExt); positions != "" {
			parts = append(parts, fmt.Sprintf("Experience: %s", positions))
		}
	}
	return strings.TrimSpace(strings.Join(parts, ". "))
}

// ExtractExperiencePositions pulls only the position names out of the raw
// experience blob, dropping company names and dates, deduplicated in order.
func ExtractExperiencePositions(expStr string) string {
	if strings.TrimSpace(expStr) == "" {
		return ""
	}
	matches := experiencePositionRe.FindAllStringSubmatch(expStr, -1)
	seen := make(map[string]struct{}, len(matches))
	var positions []string
	for _, m := range matches {
		p := strings.TrimSpace(m[1])
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		positions = append(positions, p)
	}
	return strings.Join(positions, ", ")
}
