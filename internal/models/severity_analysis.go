package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SeverityAnalysis stores the full LLM verdict for a report. The report row
// keeps only the resulting label; the rationale lives here.
type SeverityAnalysis struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	Severity   string         `gorm:"not null;size:20" json:"severidade"`
	Score      float64        `gorm:"not null" json:"pontuacao"`
	Confidence float64        `gorm:"not null" json:"confianca"`
	Rationale  string         `gorm:"type:text" json:"justificativa"`
	Urgency    string         `gorm:"size:20" json:"urgencia"`
	Factors    datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"fatores_identificados"`
	Keywords   datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"palavras_chave"`
	Provider   string         `gorm:"size:50" json:"provider"`
	CreatedAt  time.Time      `json:"created_at"`
	Report     Report         `gorm:"foreignKey:ReportID" json:"-"`
}

func (SeverityAnalysis) TableName() string {
	return "severity_analyses"
}
