package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ouvidoriachain/denuncia-backend/internal/dto"
	"github.com/ouvidoriachain/denuncia-backend/internal/ledger"
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidStatus  = errors.New("invalid status: must be VERIFIED or REJECTED")
	ErrEmptyReport    = errors.New("descricao and categoria are required")
)

// LedgerReport is a report enriched with its ledger entry for the
// police/admin listing.
type LedgerReport struct {
	models.Report
	LedgerIndex     int   `json:"blockchain_id"`
	LedgerTimestamp int64 `json:"blockchain_timestamp"`
}

// ReportService owns report creation, ledger anchoring and the status
// lifecycle.
type ReportService struct {
	db          *gorm.DB
	anchorer    ledger.Anchorer
	credibility *CredibilityService
}

func NewReportService(db *gorm.DB, anchorer ledger.Anchorer, credibility *CredibilityService) *ReportService {
	return &ReportService{db: db, anchorer: anchorer, credibility: credibility}
}

// ContentHash computes the SHA-256 content hash anchored on the ledger:
// description, category and timestamp, plus coordinates when both are
// present. Deterministic for identical input.
func ContentHash(req *dto.CreateReportRequest) string {
	data := req.Description + req.Category + req.OccurredAt
	if req.Latitude != nil && req.Longitude != nil {
		data += strconv.FormatFloat(*req.Latitude, 'g', -1, 64)
		data += strconv.FormatFloat(*req.Longitude, 'g', -1, 64)
	}
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Create hashes the report, anchors the hash on the ledger, persists the full
// report and stamps it with the reporter's pseudonym. reporterID is nil for
// unauthenticated submissions; those reports carry no pseudonym and never
// enter credibility clustering.
func (s *ReportService) Create(reporterID *uuid.UUID, req *dto.CreateReportRequest) (*dto.CreateReportResponse, error) {
	if req.Description == "" || req.Category == "" {
		return nil, ErrEmptyReport
	}

	contentHash := ContentHash(req)

	txHash, err := s.anchorer.Register(contentHash, req.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to anchor report: %w", err)
	}

	report := models.Report{
		ID:          uuid.New(),
		Description: req.Description,
		Category:    req.Category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		OccurredAt:  req.OccurredAt,
		ContentHash: contentHash,
		TxHash:      txHash,
		Status:      models.StatusPending,
	}

	if reporterID != nil {
		pseudonym := s.credibility.Pseudonym(*reporterID)
		report.ReporterID = reporterID
		report.Pseudonym = &pseudonym
	}

	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	slog.Info("report anchored", "category", req.Category, "tx_hash", txHash)

	return &dto.CreateReportResponse{
		Status:      "sucesso",
		TxHash:      txHash,
		ContentHash: contentHash,
	}, nil
}

// List returns every anchored report, enriched with the local row matched by
// content hash. Ledger entries without a local row are skipped.
func (s *ReportService) List() ([]LedgerReport, error) {
	entries, err := s.anchorer.All()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	results := make([]LedgerReport, 0, len(entries))
	for _, entry := range entries {
		var report models.Report
		if err := s.db.Where("content_hash = ?", entry.Hash).First(&report).Error; err != nil {
			continue
		}
		results = append(results, LedgerReport{
			Report:          report,
			LedgerIndex:     entry.Index,
			LedgerTimestamp: entry.Timestamp,
		})
	}
	return results, nil
}

// ListLocal returns locally stored reports with optional status filter,
// newest first.
func (s *ReportService) ListLocal(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// GetByLedgerIndex returns the report anchored at the given ledger index.
// When no local row matches the anchored hash, the ledger entry alone is
// returned.
func (s *ReportService) GetByLedgerIndex(index int) (*LedgerReport, error) {
	total, err := s.anchorer.Total()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if index < 0 || index >= total {
		return nil, ErrReportNotFound
	}

	entry, err := s.anchorer.Entry(index)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	result := LedgerReport{
		LedgerIndex:     entry.Index,
		LedgerTimestamp: entry.Timestamp,
	}
	result.ContentHash = entry.Hash
	result.Category = entry.Category

	var report models.Report
	if err := s.db.Where("content_hash = ?", entry.Hash).First(&report).Error; err == nil {
		result.Report = report
	}
	return &result, nil
}

// UpdateStatus finalizes a pending report. The pseudonym is untouched: once
// stamped at creation it is immutable.
func (s *ReportService) UpdateStatus(reportID uuid.UUID, req *dto.UpdateStatusRequest) error {
	if req.Status != models.StatusVerified && req.Status != models.StatusRejected {
		return ErrInvalidStatus
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ?", reportID).
		Update("status", req.Status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
