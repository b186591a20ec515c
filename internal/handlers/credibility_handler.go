package handlers

import (
	"strconv"

	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
	"github.com/ouvidoriachain/denuncia-backend/internal/middleware"
	"github.com/ouvidoriachain/denuncia-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CredibilityHandler struct {
	credibility *services.CredibilityService
}

func NewCredibilityHandler(credibility *services.CredibilityService) *CredibilityHandler {
	return &CredibilityHandler{credibility: credibility}
}

// MyScore returns the caller's own credibility, pseudonym-hidden. A reporter
// with no history gets the neutral default, not an error — that policy lives
// here at the consumption boundary, not in the scorer.
func (h *CredibilityHandler) MyScore(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pseudonym := h.credibility.Pseudonym(userID)
	profile, err := h.credibility.Profile(pseudonym)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute credibility",
		})
	}

	if profile == nil {
		return c.JSON(dto.SelfCredibilityResponse{
			CredibilityScore: services.NeutralScore,
			Message:          "Sem histórico de denúncias ainda",
		})
	}

	return c.JSON(dto.SelfCredibilityResponse{
		CredibilityScore: profile.CredibilityScore,
		TotalReports:     profile.TotalReports,
		Verified:         profile.Verified,
		Rejected:         profile.Rejected,
		Pending:          profile.Pending,
	})
}

func (h *CredibilityHandler) Ranking(c *fiber.Ctx) error {
	minReports, _ := strconv.Atoi(c.Query("min_reports", "3"))
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	profiles, err := h.credibility.Ranking(minReports, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute ranking",
		})
	}

	return c.JSON(fiber.Map{
		"ranking": profiles,
		"total":   len(profiles),
	})
}

func (h *CredibilityHandler) LowCredibility(c *fiber.Ctx) error {
	threshold, err := strconv.ParseFloat(c.Query("threshold", "0.3"), 64)
	if err != nil {
		threshold = 0.3
	}
	minReports, _ := strconv.Atoi(c.Query("min_reports", "3"))

	profiles, err := h.credibility.LowCredibility(threshold, minReports)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute low credibility set",
		})
	}

	return c.JSON(fiber.Map{
		"pseudonimos": profiles,
		"total":       len(profiles),
	})
}

func (h *CredibilityHandler) HighCredibility(c *fiber.Ctx) error {
	threshold, err := strconv.ParseFloat(c.Query("threshold", "0.7"), 64)
	if err != nil {
		threshold = 0.7
	}
	minReports, _ := strconv.Atoi(c.Query("min_reports", "3"))

	profiles, err := h.credibility.HighCredibility(threshold, minReports)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute high credibility set",
		})
	}

	return c.JSON(fiber.Map{
		"pseudonimos": profiles,
		"total":       len(profiles),
	})
}

func (h *CredibilityHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.credibility.SystemMetrics()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute system metrics",
		})
	}
	return c.JSON(metrics)
}
