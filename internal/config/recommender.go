package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

type RecommenderConfig struct {
	ArtifactDir   string
	JobsCSVPath   string
	TopK          int
	FaissPool     int
	ServerBaseURL string
}

var (
	recommenderConfig *RecommenderConfig
	recommenderOnce   sync.Once
)

func LoadRecommenderConfig() *RecommenderConfig {
	recommenderOnce.Do(func() {
		recommenderConfig = &RecommenderConfig{
			ArtifactDir:   envOrDefault("EMBED_DIR", "data/embeddings"),
			JobsCSVPath:   envOrDefault("JOBS_CSV_PATH", "data/jobs_cleaned.csv"),
			TopK:          envIntOrDefault("RECOMMEND_TOP_K", 10),
			FaissPool:     envIntOrDefault("RECOMMEND_FAISS_POOL", 300),
			ServerBaseURL: envOrDefault("SERVER_BASE_URL", "http://127.0.0.1:3000"),
		}
	})
	return recommenderConfig
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, v, fallback)
		return fallback
	}
	return n
}
