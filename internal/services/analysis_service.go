package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reliability levels by percentage of finalized reports that were verified.
const (
	LevelVeryReliable = "MUITO_CONFIAVEL"
	LevelReliable     = "CONFIAVEL"
	LevelModerate     = "MODERADA"
	LevelLow          = "BAIXA"
	LevelVeryLow      = "MUITO_BAIXA"
)

// UserReliability is the admin-facing reliability view of one account. It is
// keyed by user id, not pseudonym — this surface is for operators who already
// manage accounts, and it never exposes the pseudonym side.
type UserReliability struct {
	UserID           uuid.UUID `json:"user_id"`
	TotalReports     int       `json:"total_denuncias"`
	Verified         int       `json:"verified"`
	Rejected         int       `json:"rejected"`
	Pending          int       `json:"pending"`
	ReliabilityScore float64   `json:"reliability_score"`
	Percentage       float64   `json:"reliability_percentage"`
	Level            string    `json:"reliability_level"`
}

// SystemOverview aggregates reliability across every account with reports.
type SystemOverview struct {
	TotalUsers        int            `json:"total_users_with_denuncias"`
	LevelDistribution map[string]int `json:"reliability_distribution"`
	TotalReports      int            `json:"total_denuncias"`
	TotalVerified     int            `json:"total_verified"`
	TotalRejected     int            `json:"total_rejected"`
	VerificationRate  float64        `json:"global_verification_rate"`
	RejectionRate     float64        `json:"global_rejection_rate"`
}

// AnalysisService computes per-user reliability from report outcome history:
// each verified report adds a point, each rejected one subtracts half a
// point, pending ones count only toward activity.
type AnalysisService struct {
	db *gorm.DB
}

func NewAnalysisService(db *gorm.DB) *AnalysisService {
	return &AnalysisService{db: db}
}

// UserReliability computes the reliability of one user. A user without
// reports returns a zeroed result, not an error.
func (s *AnalysisService) UserReliability(userID uuid.UUID) (*UserReliability, error) {
	var reports []models.Report
	if err := s.db.Where("reporter_id = ?", userID).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user reports: %w", err)
	}
	result := reliabilityFromReports(userID, reports)
	return &result, nil
}

// Ranking returns users ordered by reliability score, highest first. limit
// <= 0 returns all.
func (s *AnalysisService) Ranking(limit int) ([]UserReliability, error) {
	var userIDs []uuid.UUID
	err := s.db.Model(&models.Report{}).
		Where("reporter_id IS NOT NULL").
		Distinct().
		Order("reporter_id ASC").
		Pluck("reporter_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reporters: %w", err)
	}

	ranking := make([]UserReliability, 0, len(userIDs))
	for _, id := range userIDs {
		entry, err := s.UserReliability(id)
		if err != nil {
			return nil, err
		}
		if entry.TotalReports > 0 {
			ranking = append(ranking, *entry)
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].ReliabilityScore > ranking[j].ReliabilityScore
	})

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// Overview aggregates the full ranking into level distribution and global
// verification/rejection rates.
func (s *AnalysisService) Overview() (*SystemOverview, error) {
	ranking, err := s.Ranking(0)
	if err != nil {
		return nil, err
	}

	overview := &SystemOverview{
		TotalUsers: len(ranking),
		LevelDistribution: map[string]int{
			LevelVeryReliable: 0,
			LevelReliable:     0,
			LevelModerate:     0,
			LevelLow:          0,
			LevelVeryLow:      0,
		},
	}

	for _, entry := range ranking {
		overview.LevelDistribution[entry.Level]++
		overview.TotalReports += entry.TotalReports
		overview.TotalVerified += entry.Verified
		overview.TotalRejected += entry.Rejected
	}

	if finalized := overview.TotalVerified + overview.TotalRejected; finalized > 0 {
		overview.VerificationRate = round2(float64(overview.TotalVerified) / float64(finalized) * 100)
		overview.RejectionRate = round2(float64(overview.TotalRejected) / float64(finalized) * 100)
	}
	return overview, nil
}

func reliabilityFromReports(userID uuid.UUID, reports []models.Report) UserReliability {
	result := UserReliability{UserID: userID, TotalReports: len(reports)}

	for _, r := range reports {
		switch r.Status {
		case models.StatusVerified:
			result.Verified++
		case models.StatusRejected:
			result.Rejected++
		case models.StatusPending:
			result.Pending++
		}
	}

	result.ReliabilityScore = round2(float64(result.Verified) - float64(result.Rejected)*0.5)

	if finalized := result.Verified + result.Rejected; finalized > 0 {
		pct := result.ReliabilityScore / float64(finalized) * 100
		result.Percentage = round2(math.Max(0, pct))
	}

	result.Level = reliabilityLevel(result.Percentage)
	return result
}

func reliabilityLevel(percentage float64) string {
	switch {
	case percentage >= 80:
		return LevelVeryReliable
	case percentage >= 60:
		return LevelReliable
	case percentage >= 40:
		return LevelModerate
	case percentage >= 20:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
