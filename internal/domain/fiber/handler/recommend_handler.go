package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/job-recommender/internal/dto"
	"github.com/fadilmartias/job-recommender/internal/middleware"
	"github.com/fadilmartias/job-recommender/internal/model"
	"github.com/fadilmartias/job-recommender/internal/recommender"
	"github.com/fadilmartias/job-recommender/internal/usecase"
	"github.com/fadilmartias/job-recommender/internal/util"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RecommendHandler struct {
	uc *usecase.RecommendationUsecase
}

func NewRecommendHandler(uc *usecase.RecommendationUsecase) *RecommendHandler {
	return &RecommendHandler{uc: uc}
}

func (h *RecommendHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/recommend/:user_id", h.RecommendForUser)
	app.Post("/recommend/cv", middleware.RateLimiter(5, time.Minute), h.RecommendFromCV)
	app.Post("/reload", h.Reload)
	app.Get("/jobs", h.GetJobs)
}

func (h *RecommendHandler) RecommendForUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "user_id must be a positive integer",
		}, err)
	}
	topK := c.QueryInt("top_k", recommender.DefaultTopK)

	user, scored, err := h.uc.RecommendForUser(c.Context(), int64(userID), topK)
	if err != nil {
		return h.mapRecommendError(c, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get recommendations",
		Data: fiber.Map{
			"user_id":   user.ID,
			"user_name": user.Name,
			"results":   dto.ToRecommendedJobDTOs(scored),
		},
	})
}

func (h *RecommendHandler) RecommendFromCV(c *fiber.Ctx) error {
	cvContent, err := h.processCVFile(c)
	if err != nil {
		return err
	}

	var req dto.RecommendCVRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid form fields",
		}, err)
	}

	user := &model.User{
		Profile:     cvContent,
		Skills:      req.Skills,
		City:        req.City,
		JobLocation: req.PreferredLocations,
	}
	topK := c.QueryInt("top_k", recommender.DefaultTopK)

	scored, err := h.uc.RecommendForProfile(c.Context(), user, topK)
	if err != nil {
		return h.mapRecommendError(c, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get recommendations from CV",
		Data:    dto.ToRecommendedJobDTOs(scored),
	})
}

// Reload is hit by the indexer after it rewrites the artifacts.
func (h *RecommendHandler) Reload(c *fiber.Ctx) error {
	version, err := h.uc.Reload(c.Context())
	if err != nil {
		if errors.Is(err, recommender.ErrSnapshotUnavailable) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusServiceUnavailable,
				Message: "artifacts not ready",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to reload snapshot",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success reload snapshot",
		Data:    fiber.Map{"version": version},
	})
}

func (h *RecommendHandler) GetJobs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	jobs, pagination, err := h.uc.GetJobs(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to get jobs",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:       fiber.StatusOK,
		Message:    "Success get jobs",
		Data:       jobs,
		Pagination: pagination,
	})
}

func (h *RecommendHandler) mapRecommendError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "user not found",
		}, err)
	case errors.Is(err, recommender.ErrSnapshotUnavailable):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "recommendations not ready, try again after the next reload",
		}, err)
	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to get recommendations",
		}, err)
	}
}

func (h *RecommendHandler) processCVFile(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("cv")
	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cv file is required",
		}, err)
	}

	if file.Size > 5*1024*1024 {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cv file size is too large (max 5MB)",
		}, nil)
	}

	savePath := filepath.Join("./uploads/cv/", file.Filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save cv file",
		}, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("unsupported cv file type %s", ext),
		}, nil)
	}

	content, err := util.ExtractPDFOCR(savePath)
	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to extract cv text",
		}, err)
	}
	return content, nil
}
