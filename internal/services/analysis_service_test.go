package services

import (
	"testing"

	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/google/uuid"
)

func reportsWithStatuses(verified, rejected, pending int) []models.Report {
	var reports []models.Report
	for i := 0; i < verified; i++ {
		reports = append(reports, models.Report{Status: models.StatusVerified})
	}
	for i := 0; i < rejected; i++ {
		reports = append(reports, models.Report{Status: models.StatusRejected})
	}
	for i := 0; i < pending; i++ {
		reports = append(reports, models.Report{Status: models.StatusPending})
	}
	return reports
}

func TestReliabilityFromReports(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		verified       int
		rejected       int
		pending        int
		wantScore      float64
		wantPercentage float64
		wantLevel      string
	}{
		{"no reports", 0, 0, 0, 0, 0, LevelVeryLow},
		{"pending only", 0, 0, 4, 0, 0, LevelVeryLow},
		{"all verified", 5, 0, 0, 5, 100, LevelVeryReliable},
		{"all rejected", 0, 4, 0, -2, 0, LevelVeryLow},
		{"mixed leaning verified", 4, 1, 2, 3.5, 70, LevelReliable},
		{"half and half", 2, 2, 0, 1, 25, LevelLow},
		{"rejections outweigh", 1, 3, 0, -0.5, 0, LevelVeryLow},
		{"moderate", 3, 2, 0, 2, 40, LevelModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reliabilityFromReports(userID, reportsWithStatuses(tt.verified, tt.rejected, tt.pending))

			if got.UserID != userID {
				t.Errorf("user id = %v, want %v", got.UserID, userID)
			}
			if got.TotalReports != tt.verified+tt.rejected+tt.pending {
				t.Errorf("total = %d, want %d", got.TotalReports, tt.verified+tt.rejected+tt.pending)
			}
			if got.ReliabilityScore != tt.wantScore {
				t.Errorf("score = %v, want %v", got.ReliabilityScore, tt.wantScore)
			}
			if got.Percentage != tt.wantPercentage {
				t.Errorf("percentage = %v, want %v", got.Percentage, tt.wantPercentage)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", got.Level, tt.wantLevel)
			}
		})
	}
}

func TestReliabilityLevel(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, LevelVeryReliable},
		{80, LevelVeryReliable},
		{79.99, LevelReliable},
		{60, LevelReliable},
		{59.99, LevelModerate},
		{40, LevelModerate},
		{39.99, LevelLow},
		{20, LevelLow},
		{19.99, LevelVeryLow},
		{0, LevelVeryLow},
	}
	for _, tt := range tests {
		if got := reliabilityLevel(tt.percentage); got != tt.want {
			t.Errorf("reliabilityLevel(%v) = %q, want %q", tt.percentage, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.0 / 3.0 * 100, 33.33},
		{2.0 / 3.0 * 100, 66.67},
		{0.125, 0.13},
		{-0.5, -0.5},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
