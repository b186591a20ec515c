package services

import (
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"gorm.io/gorm"
)

// GormReportSource implements ReportSource over the denuncias table.
type GormReportSource struct {
	db *gorm.DB
}

func NewGormReportSource(db *gorm.DB) *GormReportSource {
	return &GormReportSource{db: db}
}

func (s *GormReportSource) ReportsByPseudonym(pseudonym string) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.
		Where("pseudonym = ?", pseudonym).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	return reports, err
}

func (s *GormReportSource) PseudonymsWithFinalized(minReports int) ([]string, error) {
	var pseudonyms []string
	err := s.db.Model(&models.Report{}).
		Where("pseudonym IS NOT NULL").
		Where("status IN ?", []string{models.StatusVerified, models.StatusRejected}).
		Group("pseudonym").
		Having("COUNT(id) >= ?", minReports).
		Order("pseudonym ASC").
		Pluck("pseudonym", &pseudonyms).Error
	return pseudonyms, err
}

func (s *GormReportSource) ActivePseudonyms() ([]string, error) {
	var pseudonyms []string
	err := s.db.Model(&models.Report{}).
		Where("pseudonym IS NOT NULL").
		Distinct().
		Order("pseudonym ASC").
		Pluck("pseudonym", &pseudonyms).Error
	return pseudonyms, err
}

func (s *GormReportSource) CountReports() (int64, error) {
	var count int64
	err := s.db.Model(&models.Report{}).Count(&count).Error
	return count, err
}

func (s *GormReportSource) CountByStatus(statuses ...string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Report{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (s *GormReportSource) TopCategories(limit int) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := s.db.Model(&models.Report{}).
		Select("category, COUNT(id) AS total").
		Group("category").
		Order("total DESC").
		Limit(limit).
		Scan(&counts).Error
	return counts, err
}
