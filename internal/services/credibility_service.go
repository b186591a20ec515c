package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/google/uuid"
)

// Credibility score weights. The outcome history dominates; temporal spread,
// geographic spread and report volume refine it.
const (
	truthRateWeight  = 0.50
	temporalWeight   = 0.20
	geographicWeight = 0.15
	volumeWeight     = 0.15

	pseudonymLength = 16
	topCategories   = 5
	topRegions      = 5

	// NeutralScore is the caller-visible default for a pseudonym with no
	// history. It is a consumption-boundary policy, not part of the scorer.
	NeutralScore = 0.5
)

var ErrMissingClusteringKey = errors.New("clustering secret key is not configured")

// CategoryCount is one category with its report count.
type CategoryCount struct {
	Category string `json:"categoria"`
	Total    int64  `json:"total"`
}

// RegionCluster is a coordinate pair rounded to 2 decimal places (~1.1 km
// grid), so exact positions are never exposed.
type RegionCluster struct {
	Latitude  float64 `json:"latitude_aproximada"`
	Longitude float64 `json:"longitude_aproximada"`
	Count     int     `json:"frequencia"`
}

// CredibilityProfile summarizes one pseudonym's report history. It is
// computed fresh on every query and never persisted.
type CredibilityProfile struct {
	Pseudonym        string          `json:"pseudonimo"`
	TotalReports     int             `json:"total_denuncias"`
	Verified         int             `json:"denuncias_verificadas"`
	Rejected         int             `json:"denuncias_rejeitadas"`
	Pending          int             `json:"denuncias_pendentes"`
	TruthRate        float64         `json:"taxa_veracidade"`
	CredibilityScore float64         `json:"credibilidade_score"`
	TopCategories    []string        `json:"categorias_frequentes"`
	FrequentRegions  []RegionCluster `json:"regioes_frequentes"`
	FirstReport      string          `json:"primeiro_relato,omitempty"`
	LastReport       string          `json:"ultimo_relato,omitempty"`
	ActiveDays       int             `json:"dias_atividade"`
}

// SystemMetrics is the population-level view, recomputed in full per call.
type SystemMetrics struct {
	ActivePseudonyms       int             `json:"total_pseudonimos_ativos"`
	TotalReports           int64           `json:"total_denuncias"`
	GlobalVerificationRate float64         `json:"taxa_verificacao_geral"`
	HighCredibility        int             `json:"pseudonimos_alta_credibilidade"`
	LowCredibility         int             `json:"pseudonimos_baixa_credibilidade"`
	TopCategories          []CategoryCount `json:"categorias_mais_reportadas"`
	Distribution           map[string]int  `json:"distribuicao_credibilidade"`
}

// ReportSource is the engine's read interface onto the report store. The
// engine is a pure read-then-reduce pipeline; lifecycle transitions happen
// elsewhere and are only re-read here.
type ReportSource interface {
	// ReportsByPseudonym returns every report stamped with the pseudonym,
	// in stable insertion order.
	ReportsByPseudonym(pseudonym string) ([]models.Report, error)

	// PseudonymsWithFinalized returns pseudonyms having at least minReports
	// finalized (verified or rejected) reports.
	PseudonymsWithFinalized(minReports int) ([]string, error)

	// ActivePseudonyms returns every distinct pseudonym with at least one
	// report.
	ActivePseudonyms() ([]string, error)

	CountReports() (int64, error)
	CountByStatus(statuses ...string) (int64, error)
	TopCategories(limit int) ([]CategoryCount, error)
}

// CredibilityService derives irreversible pseudonyms and computes bounded
// credibility scores over their aggregate report history.
//
// Pseudonyms are keyed HMAC-SHA256 digests truncated to 16 hex characters:
// compact, deterministic, and not invertible without the secret key. This is
// pseudonymization, not strong anonymization — with the key and a candidate
// user id the token can be re-derived, so the key must be guarded like any
// other production secret. Collision risk at this truncation is a known,
// accepted trade-off.
type CredibilityService struct {
	source        ReportSource
	secretKey     []byte
	lowThreshold  float64
	highThreshold float64
	minReports    int
}

func NewCredibilityService(source ReportSource, cfg *config.Config) (*CredibilityService, error) {
	// Fail closed: a silently defaulted key would make every pseudonym
	// derivable by anyone who reads the source.
	if cfg.ClusteringSecretKey == "" {
		return nil, ErrMissingClusteringKey
	}
	return &CredibilityService{
		source:        source,
		secretKey:     []byte(cfg.ClusteringSecretKey),
		lowThreshold:  cfg.LowCredibilityThreshold,
		highThreshold: cfg.HighCredibilityThreshold,
		minReports:    cfg.MinReportsForRanking,
	}, nil
}

// Pseudonym derives the deterministic pseudonym for a user. Identical input
// always yields the identical token, across calls and process restarts.
func (s *CredibilityService) Pseudonym(userID uuid.UUID) string {
	message := fmt.Sprintf("user_%s_anonymous_cluster", userID)
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))[:pseudonymLength]
}

// Profile aggregates every report under a pseudonym into a scored profile.
// A pseudonym with no reports yields (nil, nil): not enough history, not an
// error.
func (s *CredibilityService) Profile(pseudonym string) (*CredibilityProfile, error) {
	reports, err := s.source.ReportsByPseudonym(pseudonym)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed for pseudonym: %w", err)
	}
	if len(reports) == 0 {
		return nil, nil
	}

	profile := &CredibilityProfile{
		Pseudonym:    pseudonym,
		TotalReports: len(reports),
	}

	for _, r := range reports {
		switch r.Status {
		case models.StatusVerified:
			profile.Verified++
		case models.StatusRejected:
			profile.Rejected++
		case models.StatusPending:
			profile.Pending++
		}
	}

	// Unresolved-only history yields a neutral 0, not undefined.
	if finalized := profile.Verified + profile.Rejected; finalized > 0 {
		profile.TruthRate = float64(profile.Verified) / float64(finalized)
	}

	profile.TopCategories = frequentCategories(reports)
	profile.FrequentRegions = frequentRegions(reports)
	profile.FirstReport, profile.LastReport = activitySpan(reports)
	profile.ActiveDays = activeDays(profile.FirstReport, profile.LastReport)

	profile.CredibilityScore = s.Score(profile)
	return profile, nil
}

// Score converts an aggregated profile into a bounded credibility score.
// Pure function: weighted sum of four sub-scores, clamped to [0, 1].
func (s *CredibilityService) Score(profile *CredibilityProfile) float64 {
	score := profile.TruthRate*truthRateWeight +
		s.TemporalFactor(profile.ActiveDays)*temporalWeight +
		s.GeographicFactor(len(profile.FrequentRegions))*geographicWeight +
		s.VolumeFactor(profile.TotalReports)*volumeWeight
	return math.Min(math.Max(score, 0.0), 1.0)
}

// TemporalFactor rewards a history that spans time. A single-day history is
// indistinguishable from a burst, so it sits at the neutral midpoint.
func (s *CredibilityService) TemporalFactor(activeDays int) float64 {
	switch {
	case activeDays == 0:
		return 0.5
	case activeDays > 90:
		return 1.0
	case activeDays > 30:
		return 0.8
	case activeDays > 7:
		return 0.6
	default:
		return 0.3
	}
}

// GeographicFactor rewards reporting from a consistent set of grid cells.
func (s *CredibilityService) GeographicFactor(regions int) float64 {
	switch {
	case regions == 0:
		return 0.5
	case regions <= 2:
		return 1.0
	case regions <= 4:
		return 0.7
	default:
		return 0.4
	}
}

// VolumeFactor is non-monotonic by design: it penalizes report-spam volume
// above 30 harder than a thin history below 3.
func (s *CredibilityService) VolumeFactor(total int) float64 {
	switch {
	case total >= 3 && total <= 15:
		return 1.0
	case total >= 16 && total <= 30:
		return 0.8
	case total > 30:
		return 0.3
	default:
		return 0.6
	}
}

// Ranking scores every pseudonym with at least minReports finalized reports
// and returns the top limit by descending score. limit <= 0 returns all.
func (s *CredibilityService) Ranking(minReports, limit int) ([]CredibilityProfile, error) {
	profiles, err := s.scorePopulation(minReports)
	if err != nil {
		return nil, err
	}
	sortProfiles(profiles, false)
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

// LowCredibility returns pseudonyms scoring at or below the threshold,
// ascending. Useful for surfacing suspicious patterns without compromising
// anonymity.
func (s *CredibilityService) LowCredibility(threshold float64, minReports int) ([]CredibilityProfile, error) {
	profiles, err := s.scorePopulation(minReports)
	if err != nil {
		return nil, err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.CredibilityScore <= threshold {
			kept = append(kept, p)
		}
	}
	profiles = kept
	sortProfiles(profiles, true)
	return profiles, nil
}

// HighCredibility returns pseudonyms scoring at or above the threshold,
// descending.
func (s *CredibilityService) HighCredibility(threshold float64, minReports int) ([]CredibilityProfile, error) {
	profiles, err := s.scorePopulation(minReports)
	if err != nil {
		return nil, err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.CredibilityScore >= threshold {
			kept = append(kept, p)
		}
	}
	profiles = kept
	sortProfiles(profiles, false)
	return profiles, nil
}

// SystemMetrics computes the population-level view. The credibility
// distribution pass deliberately scores every pseudonym with at least one
// report, with no minimum-report filter — a different population than the
// ranking calls.
func (s *CredibilityService) SystemMetrics() (*SystemMetrics, error) {
	metrics := &SystemMetrics{
		Distribution: map[string]int{"alta": 0, "media": 0, "baixa": 0},
	}

	active, err := s.source.ActivePseudonyms()
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}
	metrics.ActivePseudonyms = len(active)

	if metrics.TotalReports, err = s.source.CountReports(); err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	verified, err := s.source.CountByStatus(models.StatusVerified)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}
	finalized, err := s.source.CountByStatus(models.StatusVerified, models.StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}
	if finalized > 0 {
		metrics.GlobalVerificationRate = float64(verified) / float64(finalized)
	}

	high, err := s.HighCredibility(s.highThreshold, s.minReports)
	if err != nil {
		return nil, err
	}
	low, err := s.LowCredibility(s.lowThreshold, s.minReports)
	if err != nil {
		return nil, err
	}
	metrics.HighCredibility = len(high)
	metrics.LowCredibility = len(low)

	if metrics.TopCategories, err = s.source.TopCategories(10); err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	for _, pseudonym := range active {
		profile, err := s.Profile(pseudonym)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			continue
		}
		switch {
		case profile.CredibilityScore >= 0.7:
			metrics.Distribution["alta"]++
		case profile.CredibilityScore >= 0.4:
			metrics.Distribution["media"]++
		default:
			metrics.Distribution["baixa"]++
		}
	}

	return metrics, nil
}

func (s *CredibilityService) scorePopulation(minReports int) ([]CredibilityProfile, error) {
	if minReports <= 0 {
		minReports = s.minReports
	}
	pseudonyms, err := s.source.PseudonymsWithFinalized(minReports)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	profiles := make([]CredibilityProfile, 0, len(pseudonyms))
	for _, pseudonym := range pseudonyms {
		profile, err := s.Profile(pseudonym)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			profiles = append(profiles, *profile)
		}
	}
	return profiles, nil
}

// sortProfiles orders by score with a deterministic pseudonym tie-break, so
// equal scores always rank in the same order.
func sortProfiles(profiles []CredibilityProfile, ascending bool) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].CredibilityScore != profiles[j].CredibilityScore {
			if ascending {
				return profiles[i].CredibilityScore < profiles[j].CredibilityScore
			}
			return profiles[i].CredibilityScore > profiles[j].CredibilityScore
		}
		return profiles[i].Pseudonym < profiles[j].Pseudonym
	})
}

// frequentCategories returns the top categories by count, ties broken by
// first-encountered order.
func frequentCategories(reports []models.Report) []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range reports {
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topCategories {
		order = order[:topCategories]
	}
	return order
}

// frequentRegions groups reports carrying both coordinates into 2-decimal
// grid cells and returns the top cells by count, ties broken by
// first-encountered order.
func frequentRegions(reports []models.Report) []RegionCluster {
	type cell struct{ lat, lng float64 }
	counts := make(map[cell]int)
	var order []cell
	for _, r := range reports {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		c := cell{roundCoord(*r.Latitude), roundCoord(*r.Longitude)}
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topRegions {
		order = order[:topRegions]
	}

	clusters := make([]RegionCluster, len(order))
	for i, c := range order {
		clusters[i] = RegionCluster{Latitude: c.lat, Longitude: c.lng, Count: counts[c]}
	}
	return clusters
}

func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// activitySpan returns the lexicographic min and max of the non-empty
// timestamp strings. ISO-8601 timestamps order the same way lexicographically
// and parsed.
func activitySpan(reports []models.Report) (first, last string) {
	for _, r := range reports {
		if r.OccurredAt == "" {
			continue
		}
		if first == "" || r.OccurredAt < first {
			first = r.OccurredAt
		}
		if last == "" || r.OccurredAt > last {
			last = r.OccurredAt
		}
	}
	return first, last
}

// activeDays is the floor of the span between first and last in days.
// Timestamps are free-form strings from the surrounding system, so parse
// failures are swallowed and fall back to 0.
func activeDays(first, last string) int {
	if first == "" || last == "" || first == last {
		return 0
	}
	firstTime, err := parseTimestamp(first)
	if err != nil {
		return 0
	}
	lastTime, err := parseTimestamp(last)
	if err != nil {
		return 0
	}
	days := int(lastTime.Sub(firstTime).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
