package handlers

import (
	"errors"
	"time"

	"github.com/ouvidoriachain/denuncia-backend/internal/database"
	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
	"github.com/ouvidoriachain/denuncia-backend/internal/ledger"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	anchorer ledger.Anchorer
}

func NewHealthHandler(anchorer ledger.Anchorer) *HealthHandler {
	return &HealthHandler{anchorer: anchorer}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	ledgerStatus := "ok"
	if _, err := h.anchorer.Total(); err != nil {
		if errors.Is(err, ledger.ErrDisabled) {
			ledgerStatus = "disabled"
		} else {
			ledgerStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Ledger:    ledgerStatus,
	})
}
