package handlers

import (
	"strconv"

	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
	"github.com/ouvidoriachain/denuncia-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AnalysisHandler struct {
	analysisService *services.AnalysisService
}

func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) UserReliability(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	result, err := h.analysisService.UserReliability(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute reliability",
		})
	}

	return c.JSON(result)
}

func (h *AnalysisHandler) Ranking(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit > 100 {
		limit = 100
	}

	ranking, err := h.analysisService.Ranking(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute ranking",
		})
	}

	return c.JSON(fiber.Map{
		"ranking":     ranking,
		"total_users": len(ranking),
	})
}

func (h *AnalysisHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.analysisService.Overview()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute overview",
		})
	}
	return c.JSON(overview)
}
