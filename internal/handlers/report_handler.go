package handlers

import (
	"errors"
	"strconv"

	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
	"github.com/ouvidoriachain/denuncia-backend/internal/ledger"
	"github.com/ouvidoriachain/denuncia-backend/internal/middleware"
	"github.com/ouvidoriachain/denuncia-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reportService *services.ReportService
	anchorer      ledger.Anchorer
}

func NewReportHandler(reportService *services.ReportService, anchorer ledger.Anchorer) *ReportHandler {
	return &ReportHandler{reportService: reportService, anchorer: anchorer}
}

// Create accepts anonymous and authenticated submissions. Authenticated ones
// get a pseudonym stamp so their outcomes feed credibility clustering.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	var reporterID *uuid.UUID
	if id, err := middleware.GetUserID(c); err == nil {
		reporterID = &id
	}

	resp, err := h.reportService.Create(reporterID, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyReport) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports, err := h.reportService.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}
	return c.JSON(reports)
}

func (h *ReportHandler) ListLocal(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.reportService.ListLocal(status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ReportHandler) GetByLedgerIndex(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.reportService.GetByLedgerIndex(index)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	return c.JSON(report)
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.reportService.UpdateStatus(reportID, &req); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Report status updated"})
}

// LedgerStatus exposes the anchoring account balance and per-report cost
// estimate for operators.
func (h *ReportHandler) LedgerStatus(c *fiber.Ctx) error {
	balance, err := h.anchorer.Balance()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Ledger gateway unavailable",
		})
	}
	cost, err := h.anchorer.EstimateCost()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Ledger gateway unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"balance":        balance,
		"estimated_cost": cost,
	})
}
