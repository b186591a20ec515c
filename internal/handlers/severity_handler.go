package handlers

import (
	"errors"
	"strconv"

	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
	"github.com/ouvidoriachain/denuncia-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SeverityHandler struct {
	severityService *services.SeverityService
}

func NewSeverityHandler(severityService *services.SeverityService) *SeverityHandler {
	return &SeverityHandler{severityService: severityService}
}

func (h *SeverityHandler) Analyze(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	analysis, err := h.severityService.AnalyzeReport(reportID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNoProvider):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "No AI provider configured",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Severity analysis failed",
			})
		}
	}

	return c.JSON(analysis)
}

func (h *SeverityHandler) BulkAnalyze(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	processed, succeeded, failed, err := h.severityService.BulkAnalyze(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Bulk severity analysis failed",
		})
	}

	return c.JSON(fiber.Map{
		"total_processadas": processed,
		"sucessos":          succeeded,
		"erros":             failed,
	})
}

func (h *SeverityHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.severityService.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute severity stats",
		})
	}
	return c.JSON(stats)
}

func (h *SeverityHandler) ProviderInfo(c *fiber.Ctx) error {
	return c.JSON(h.severityService.ProviderInfo())
}
