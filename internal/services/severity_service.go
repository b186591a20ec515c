package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/ouvidoriachain/denuncia-backend/internal/prompts"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNoProvider      = errors.New("no AI provider available")
	ErrInvalidSeverity = errors.New("AI returned an unknown severity label")
)

type severityChatRequest struct {
	Model       string                `json:"model"`
	Messages    []severityChatMessage `json:"messages"`
	Temperature float64               `json:"temperature,omitempty"`
}

type severityChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type severityChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// severityResult is the verdict parsed from the LLM response.
type severityResult struct {
	Severity   string   `json:"severidade"`
	Score      float64  `json:"pontuacao"`
	Factors    []string `json:"fatores_identificados"`
	Keywords   []string `json:"palavras_chave"`
	Rationale  string   `json:"justificativa"`
	Urgency    string   `json:"urgencia"`
	Confidence float64  `json:"confianca"`
}

const severitySystemPrompt = "Você é um especialista em análise de severidade de denúncias. " +
	"SEMPRE responda APENAS em formato JSON válido, sem texto adicional antes ou depois do JSON."

// SeverityService classifies report severity through an LLM provider chain:
// GLM primary, DeepSeek fallback, both speaking the OpenAI-compatible
// chat-completions format.
type SeverityService struct {
	db          *gorm.DB
	cfg         *config.Config
	credibility *CredibilityService
}

func NewSeverityService(db *gorm.DB, cfg *config.Config, credibility *CredibilityService) *SeverityService {
	return &SeverityService{db: db, cfg: cfg, credibility: credibility}
}

// AnalyzeReport classifies one report, persists the label on the report row
// and the full verdict in severity_analyses.
func (s *SeverityService) AnalyzeReport(reportID uuid.UUID) (*models.SeverityAnalysis, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}

	result, provider, err := s.analyze(&report)
	if err != nil {
		return nil, err
	}

	analysis, err := s.persist(&report, result, provider)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// BulkAnalyze classifies every report without a severity label, up to limit
// (0 means all). Individual failures are counted, not fatal.
func (s *SeverityService) BulkAnalyze(limit int) (processed, succeeded, failed int, err error) {
	query := s.db.Where("severity IS NULL")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return 0, 0, 0, err
	}

	for i := range reports {
		result, provider, err := s.analyze(&reports[i])
		if err != nil {
			slog.Error("severity analysis failed", "report_id", reports[i].ID, "error", err)
			failed++
			continue
		}
		if _, err := s.persist(&reports[i], result, provider); err != nil {
			slog.Error("severity persist failed", "report_id", reports[i].ID, "error", err)
			failed++
			continue
		}
		succeeded++
	}
	return len(reports), succeeded, failed, nil
}

// SeverityStats is the distribution of severity labels over all reports.
type SeverityStats struct {
	TotalReports    int64              `json:"total_denuncias"`
	Classified      int64              `json:"total_com_severidade"`
	Unclassified    int64              `json:"total_sem_severidade"`
	Counts          map[string]int64   `json:"contagem"`
	Percentages     map[string]float64 `json:"percentuais"`
	CriticalPending int64              `json:"requer_atencao_urgente"`
}

func (s *SeverityService) Stats() (*SeverityStats, error) {
	stats := &SeverityStats{
		Counts:      map[string]int64{},
		Percentages: map[string]float64{},
	}

	if err := s.db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}

	type row struct {
		Severity string
		Total    int64
	}
	var rows []row
	err := s.db.Model(&models.Report{}).
		Select("severity, COUNT(id) AS total").
		Where("severity IS NOT NULL").
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		stats.Counts[r.Severity] = r.Total
		stats.Classified += r.Total
	}
	stats.Unclassified = stats.TotalReports - stats.Classified
	stats.CriticalPending = stats.Counts[models.SeverityCritical] + stats.Counts[models.SeverityHigh]

	if stats.TotalReports > 0 {
		for label, count := range stats.Counts {
			stats.Percentages[label] = math.Round(float64(count)/float64(stats.TotalReports)*10000) / 100
		}
	}
	return stats, nil
}

// ProviderInfo reports which provider would serve the next analysis.
func (s *SeverityService) ProviderInfo() map[string]interface{} {
	provider := "none"
	available := false
	switch {
	case s.cfg.GLMAPIKey != "":
		provider, available = "glm", true
	case s.cfg.DeepSeekAPIKey != "":
		provider, available = "deepseek", true
	}
	return map[string]interface{}{
		"provider":  provider,
		"available": available,
	}
}

func (s *SeverityService) analyze(report *models.Report) (*severityResult, string, error) {
	prompt := prompts.FormatSeverityPrompt(
		report.Description,
		report.Category,
		report.OccurredAt,
		report.Latitude,
		report.Longitude,
		s.reporterHistory(report),
	)

	if s.cfg.GLMAPIKey != "" {
		result, err := s.callProvider(s.cfg.GLMAPIURL, s.cfg.GLMAPIKey, s.cfg.GLMModel, prompt)
		if err == nil {
			return result, "glm", nil
		}
		slog.Error("GLM severity analysis failed", "error", err)
	}

	if s.cfg.DeepSeekAPIKey != "" {
		result, err := s.callProvider(s.cfg.DeepSeekAPIURL, s.cfg.DeepSeekAPIKey, s.cfg.DeepSeekModel, prompt)
		if err == nil {
			return result, "deepseek", nil
		}
		slog.Error("DeepSeek severity analysis failed", "error", err)
	}

	return nil, "", ErrNoProvider
}

// reporterHistory summarizes the reporter's pseudonym aggregate for the
// prompt: counts only, never identities.
func (s *SeverityService) reporterHistory(report *models.Report) string {
	if report.Pseudonym == nil {
		return ""
	}
	profile, err := s.credibility.Profile(*report.Pseudonym)
	if err != nil || profile == nil {
		return ""
	}
	return fmt.Sprintf("Usuário com %d denúncias: %d verificadas, %d rejeitadas",
		profile.TotalReports, profile.Verified, profile.Rejected)
}

func (s *SeverityService) persist(report *models.Report, result *severityResult, provider string) (*models.SeverityAnalysis, error) {
	factors, _ := json.Marshal(result.Factors)
	keywords, _ := json.Marshal(result.Keywords)

	analysis := models.SeverityAnalysis{
		ID:         uuid.New(),
		ReportID:   report.ID,
		Severity:   result.Severity,
		Score:      result.Score,
		Confidence: result.Confidence,
		Rationale:  result.Rationale,
		Urgency:    result.Urgency,
		Factors:    datatypes.JSON(factors),
		Keywords:   datatypes.JSON(keywords),
		Provider:   provider,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&analysis).Error; err != nil {
			return err
		}
		return tx.Model(report).Update("severity", result.Severity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist severity analysis: %w", err)
	}
	return &analysis, nil
}

func (s *SeverityService) callProvider(apiURL, apiKey, model, prompt string) (*severityResult, error) {
	reqBody := severityChatRequest{
		Model: model,
		Messages: []severityChatMessage{
			{Role: "system", Content: severitySystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	timeout := s.cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("AI API error: status %d", resp.StatusCode)
	}

	var completion severityChatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from AI")
	}

	return parseSeverityResult(completion.Choices[0].Message.Content)
}

// parseSeverityResult extracts the JSON verdict, tolerating fenced code
// blocks and surrounding prose, and normalizes label and ranges.
func parseSeverityResult(content string) (*severityResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var result severityResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("failed to parse severity result: %w", err)
		}
		if err2 := json.Unmarshal([]byte(content[start:end+1]), &result); err2 != nil {
			return nil, fmt.Errorf("failed to parse severity result: %w", err2)
		}
	}

	result.Severity = strings.ToUpper(strings.TrimSpace(result.Severity))
	switch result.Severity {
	case models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
	default:
		return nil, ErrInvalidSeverity
	}

	result.Score = math.Min(math.Max(result.Score, 0), 10)
	result.Confidence = math.Min(math.Max(result.Confidence, 0), 1)
	return &result, nil
}
