package models

import (
	"time"

	"github.com/google/uuid"
)

// Report lifecycle statuses. A report starts PENDING and is finalized by an
// admin moving it to VERIFIED or REJECTED.
const (
	StatusPending  = "PENDING"
	StatusVerified = "VERIFIED"
	StatusRejected = "REJECTED"
)

// Severity labels assigned by the LLM analysis.
const (
	SeverityCritical = "CRITICA"
	SeverityHigh     = "ALTA"
	SeverityMedium   = "MEDIA"
	SeverityLow      = "BAIXA"
)

// Report is an anonymous incident report. The full content lives here; only
// the content hash and category are anchored on the ledger.
//
// Pseudonym is stamped once at creation from the reporter's identity and is
// never reassigned. No reverse mapping to ReporterID is stored anywhere; the
// ReporterID column exists only for the admin-facing reliability analysis and
// is never returned alongside the pseudonym.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Description string     `gorm:"type:text;not null" json:"descricao"`
	Category    string     `gorm:"not null;size:100;index" json:"categoria"`
	Latitude    *float64   `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude   *float64   `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	// OccurredAt is the reporter-supplied timestamp, kept as a free-form
	// string. It is input from the outside world, not a contract we enforce.
	OccurredAt  string     `gorm:"size:64" json:"datetime,omitempty"`
	ContentHash string     `gorm:"not null;size:64;index" json:"hash_dados"`
	TxHash      string     `gorm:"size:80" json:"tx_hash,omitempty"`
	Status      string     `gorm:"not null;default:'PENDING';size:20;index" json:"status"`
	Severity    *string    `gorm:"size:20" json:"severidade,omitempty"`
	ReporterID  *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Pseudonym   *string    `gorm:"size:16;index" json:"pseudonimo_cluster,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Report) TableName() string {
	return "denuncias"
}
