package dto

type CreateReportRequest struct {
	Description string   `json:"descricao"`
	Category    string   `json:"categoria"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	OccurredAt  string   `json:"datetime"`
}

type CreateReportResponse struct {
	Status      string `json:"status"`
	TxHash      string `json:"tx_hash,omitempty"`
	ContentHash string `json:"hash_dados"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SelfCredibilityResponse is the pseudonym-hidden view a reporter gets of
// their own standing. No pseudonym, no identifiers.
type SelfCredibilityResponse struct {
	CredibilityScore float64 `json:"credibilidade_score"`
	TotalReports     int     `json:"total_denuncias"`
	Verified         int     `json:"denuncias_verificadas"`
	Rejected         int     `json:"denuncias_rejeitadas"`
	Pending          int     `json:"denuncias_pendentes"`
	Message          string  `json:"message,omitempty"`
}
