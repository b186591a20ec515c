package services

import (
	"math"
	"strings"
	"testing"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/google/uuid"
)

// fakeReportSource is an in-memory ReportSource for engine tests.
type fakeReportSource struct {
	reports []models.Report
}

func (f *fakeReportSource) ReportsByPseudonym(pseudonym string) ([]models.Report, error) {
	var out []models.Report
	for _, r := range f.reports {
		if r.Pseudonym != nil && *r.Pseudonym == pseudonym {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReportSource) PseudonymsWithFinalized(minReports int) ([]string, error) {
	counts := make(map[string]int)
	var order []string
	for _, r := range f.reports {
		if r.Pseudonym == nil {
			continue
		}
		if r.Status != models.StatusVerified && r.Status != models.StatusRejected {
			continue
		}
		if _, seen := counts[*r.Pseudonym]; !seen {
			order = append(order, *r.Pseudonym)
		}
		counts[*r.Pseudonym]++
	}
	var out []string
	for _, p := range order {
		if counts[p] >= minReports {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeReportSource) ActivePseudonyms() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.reports {
		if r.Pseudonym == nil || seen[*r.Pseudonym] {
			continue
		}
		seen[*r.Pseudonym] = true
		out = append(out, *r.Pseudonym)
	}
	return out, nil
}

func (f *fakeReportSource) CountReports() (int64, error) {
	return int64(len(f.reports)), nil
}

func (f *fakeReportSource) CountByStatus(statuses ...string) (int64, error) {
	var n int64
	for _, r := range f.reports {
		for _, s := range statuses {
			if r.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeReportSource) TopCategories(limit int) ([]CategoryCount, error) {
	counts := make(map[string]int64)
	var order []string
	for _, r := range f.reports {
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}
	var out []CategoryCount
	for _, c := range order {
		out = append(out, CategoryCount{Category: c, Total: counts[c]})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(t *testing.T, source ReportSource) *CredibilityService {
	t.Helper()
	svc, err := NewCredibilityService(source, &config.Config{
		ClusteringSecretKey:      "test-secret-key",
		LowCredibilityThreshold:  0.3,
		HighCredibilityThreshold: 0.7,
		MinReportsForRanking:     3,
	})
	if err != nil {
		t.Fatalf("NewCredibilityService: %v", err)
	}
	return svc
}

func testReport(pseudonym, status, category, occurredAt string, lat, lng float64) models.Report {
	return models.Report{
		ID:         uuid.New(),
		Category:   category,
		Status:     status,
		OccurredAt: occurredAt,
		Latitude:   &lat,
		Longitude:  &lng,
		Pseudonym:  &pseudonym,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewCredibilityServiceRequiresKey(t *testing.T) {
	_, err := NewCredibilityService(&fakeReportSource{}, &config.Config{})
	if err != ErrMissingClusteringKey {
		t.Fatalf("expected ErrMissingClusteringKey, got %v", err)
	}
}

func TestPseudonymDeterministic(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})
	userID := uuid.MustParse("a2f7c3d1-1234-4abc-8def-0123456789ab")

	first := svc.Pseudonym(userID)
	second := svc.Pseudonym(userID)

	if first != second {
		t.Errorf("same user produced different pseudonyms: %q vs %q", first, second)
	}
	if len(first) != 16 {
		t.Errorf("pseudonym length = %d, want 16", len(first))
	}
	if strings.ToLower(first) != first {
		t.Errorf("pseudonym %q is not lowercase hex", first)
	}
	for _, c := range first {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("pseudonym %q contains non-hex character %q", first, c)
		}
	}
}

func TestPseudonymKeySensitivity(t *testing.T) {
	userID := uuid.New()

	svcA := newTestService(t, &fakeReportSource{})
	svcB, err := NewCredibilityService(&fakeReportSource{}, &config.Config{
		ClusteringSecretKey: "another-secret-key",
	})
	if err != nil {
		t.Fatalf("NewCredibilityService: %v", err)
	}

	if svcA.Pseudonym(userID) == svcB.Pseudonym(userID) {
		t.Error("different keys produced the same pseudonym")
	}
}

func TestPseudonymDistinctUsers(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})
	if svc.Pseudonym(uuid.New()) == svc.Pseudonym(uuid.New()) {
		t.Error("distinct users produced the same pseudonym")
	}
}

func TestTemporalFactor(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})

	tests := []struct {
		days int
		want float64
	}{
		{0, 0.5},
		{1, 0.3},
		{7, 0.3},
		{8, 0.6},
		{30, 0.6},
		{31, 0.8},
		{90, 0.8},
		{91, 1.0},
		{365, 1.0},
	}
	for _, tt := range tests {
		if got := svc.TemporalFactor(tt.days); !almostEqual(got, tt.want) {
			t.Errorf("TemporalFactor(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestGeographicFactor(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})

	tests := []struct {
		regions int
		want    float64
	}{
		{0, 0.5},
		{1, 1.0},
		{2, 1.0},
		{3, 0.7},
		{4, 0.7},
		{5, 0.4},
		{12, 0.4},
	}
	for _, tt := range tests {
		if got := svc.GeographicFactor(tt.regions); !almostEqual(got, tt.want) {
			t.Errorf("GeographicFactor(%d) = %v, want %v", tt.regions, got, tt.want)
		}
	}
}

func TestVolumeFactor(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})

	tests := []struct {
		total int
		want  float64
	}{
		{0, 0.6},
		{1, 0.6},
		{2, 0.6},
		{3, 1.0},
		{10, 1.0},
		{15, 1.0},
		{16, 0.8},
		{30, 0.8},
		{31, 0.3},
		{100, 0.3},
	}
	for _, tt := range tests {
		if got := svc.VolumeFactor(tt.total); !almostEqual(got, tt.want) {
			t.Errorf("VolumeFactor(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestProfileNoHistory(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})

	profile, err := svc.Profile("deadbeefdeadbeef")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile != nil {
		t.Errorf("expected nil profile for empty history, got %+v", profile)
	}
}

func TestProfilePendingOnly(t *testing.T) {
	source := &fakeReportSource{reports: []models.Report{
		testReport("aaaa000000000000", models.StatusPending, "VIOLENCIA", "2026-01-10T08:00:00Z", -23.55, -46.63),
		testReport("aaaa000000000000", models.StatusPending, "VIOLENCIA", "2026-01-12T08:00:00Z", -23.55, -46.63),
	}}
	svc := newTestService(t, source)

	profile, err := svc.Profile("aaaa000000000000")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.TruthRate != 0 {
		t.Errorf("pending-only truth rate = %v, want 0", profile.TruthRate)
	}
	if profile.Pending != 2 || profile.Verified != 0 || profile.Rejected != 0 {
		t.Errorf("status counts = %d/%d/%d, want 0/0/2",
			profile.Verified, profile.Rejected, profile.Pending)
	}
}

func TestProfileScenario(t *testing.T) {
	// 2 verified + 1 rejected, one category, one grid cell, 10-day span:
	// 0.5*(2/3) + 0.2*0.6 + 0.15*1.0 + 0.15*1.0
	pseudonym := "bbbb000000000000"
	source := &fakeReportSource{reports: []models.Report{
		testReport(pseudonym, models.StatusVerified, "CORRUPCAO", "2026-01-01T10:00:00Z", -23.551, -46.632),
		testReport(pseudonym, models.StatusVerified, "CORRUPCAO", "2026-01-06T10:00:00Z", -23.552, -46.629),
		testReport(pseudonym, models.StatusRejected, "CORRUPCAO", "2026-01-11T10:00:00Z", -23.549, -46.631),
	}}
	svc := newTestService(t, source)

	profile, err := svc.Profile(pseudonym)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if profile.TotalReports != 3 || profile.Verified != 2 || profile.Rejected != 1 {
		t.Fatalf("counts = total %d, verified %d, rejected %d", profile.TotalReports, profile.Verified, profile.Rejected)
	}
	if !almostEqual(profile.TruthRate, 2.0/3.0) {
		t.Errorf("truth rate = %v, want %v", profile.TruthRate, 2.0/3.0)
	}
	if profile.ActiveDays != 10 {
		t.Errorf("active days = %d, want 10", profile.ActiveDays)
	}
	if len(profile.FrequentRegions) != 1 {
		t.Fatalf("regions = %d, want 1 (all coordinates round to the same cell)", len(profile.FrequentRegions))
	}
	if profile.FrequentRegions[0].Latitude != -23.55 || profile.FrequentRegions[0].Longitude != -46.63 {
		t.Errorf("region cell = (%v, %v), want (-23.55, -46.63)",
			profile.FrequentRegions[0].Latitude, profile.FrequentRegions[0].Longitude)
	}

	want := 0.5*(2.0/3.0) + 0.2*0.6 + 0.15*1.0 + 0.15*1.0
	if !almostEqual(profile.CredibilityScore, want) {
		t.Errorf("score = %v, want %v", profile.CredibilityScore, want)
	}
}

func TestScoreBounded(t *testing.T) {
	svc := newTestService(t, &fakeReportSource{})

	profiles := []*CredibilityProfile{
		{TruthRate: 0, ActiveDays: 0, TotalReports: 0},
		{TruthRate: 1, ActiveDays: 365, TotalReports: 10, FrequentRegions: make([]RegionCluster, 1)},
		{TruthRate: 0, ActiveDays: 1, TotalReports: 50, FrequentRegions: make([]RegionCluster, 9)},
	}
	for _, p := range profiles {
		score := svc.Score(p)
		if score < 0 || score > 1 {
			t.Errorf("score %v out of [0, 1] for profile %+v", score, p)
		}
	}
}

func TestRankingMinReportsFilter(t *testing.T) {
	// "cccc..." has 3 finalized reports, "dddd..." only 2 (third is pending).
	source := &fakeReportSource{reports: []models.Report{
		testReport("cccc000000000000", models.StatusVerified, "TRAFICO", "2026-02-01", -10.0, -50.0),
		testReport("cccc000000000000", models.StatusVerified, "TRAFICO", "2026-02-02", -10.0, -50.0),
		testReport("cccc000000000000", models.StatusRejected, "TRAFICO", "2026-02-03", -10.0, -50.0),
		testReport("dddd000000000000", models.StatusVerified, "TRAFICO", "2026-02-01", -11.0, -51.0),
		testReport("dddd000000000000", models.StatusVerified, "TRAFICO", "2026-02-02", -11.0, -51.0),
		testReport("dddd000000000000", models.StatusPending, "TRAFICO", "2026-02-03", -11.0, -51.0),
	}}
	svc := newTestService(t, source)

	profiles, err := svc.Ranking(3, 0)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("ranking size = %d, want 1", len(profiles))
	}
	if profiles[0].Pseudonym != "cccc000000000000" {
		t.Errorf("ranked pseudonym = %q, want cccc000000000000", profiles[0].Pseudonym)
	}
}

func TestRankingTieBreak(t *testing.T) {
	// Identical histories score identically; order must fall back to the
	// pseudonym, ascending.
	build := func(pseudonym string) []models.Report {
		return []models.Report{
			testReport(pseudonym, models.StatusVerified, "AMBIENTAL", "2026-03-01", 1.0, 2.0),
			testReport(pseudonym, models.StatusVerified, "AMBIENTAL", "2026-03-02", 1.0, 2.0),
			testReport(pseudonym, models.StatusVerified, "AMBIENTAL", "2026-03-03", 1.0, 2.0),
		}
	}
	source := &fakeReportSource{}
	source.reports = append(source.reports, build("ffff000000000000")...)
	source.reports = append(source.reports, build("eeee000000000000")...)
	svc := newTestService(t, source)

	profiles, err := svc.Ranking(3, 0)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("ranking size = %d, want 2", len(profiles))
	}
	if profiles[0].Pseudonym != "eeee000000000000" || profiles[1].Pseudonym != "ffff000000000000" {
		t.Errorf("tie-break order = [%q, %q], want ascending pseudonyms",
			profiles[0].Pseudonym, profiles[1].Pseudonym)
	}
}

func TestLowAndHighCredibility(t *testing.T) {
	reliable := "1111000000000000"
	unreliable := "2222000000000000"
	var reports []models.Report
	for i := 0; i < 3; i++ {
		reports = append(reports,
			testReport(reliable, models.StatusVerified, "VIOLENCIA", "2026-01-0"+string(rune('1'+i)), 5.0, 5.0),
			testReport(unreliable, models.StatusRejected, "VIOLENCIA", "2026-01-0"+string(rune('1'+i)), 6.0, 6.0),
		)
	}
	svc := newTestService(t, &fakeReportSource{reports: reports})

	high, err := svc.HighCredibility(0.7, 3)
	if err != nil {
		t.Fatalf("HighCredibility: %v", err)
	}
	if len(high) != 1 || high[0].Pseudonym != reliable {
		t.Errorf("high credibility = %+v, want only %q", high, reliable)
	}

	low, err := svc.LowCredibility(0.5, 3)
	if err != nil {
		t.Fatalf("LowCredibility: %v", err)
	}
	if len(low) != 1 || low[0].Pseudonym != unreliable {
		t.Errorf("low credibility = %+v, want only %q", low, unreliable)
	}
}

func TestSystemMetricsDistribution(t *testing.T) {
	// Distribution covers every active pseudonym, including ones below the
	// ranking's minimum-report cutoff.
	source := &fakeReportSource{reports: []models.Report{
		testReport("3333000000000000", models.StatusVerified, "CORRUPCAO", "2026-01-01", 0, 0),
		testReport("3333000000000000", models.StatusVerified, "CORRUPCAO", "2026-01-02", 0, 0),
		testReport("3333000000000000", models.StatusVerified, "CORRUPCAO", "2026-01-03", 0, 0),
		testReport("4444000000000000", models.StatusPending, "TRAFICO", "2026-01-01", 0, 0),
	}}
	svc := newTestService(t, source)

	metrics, err := svc.SystemMetrics()
	if err != nil {
		t.Fatalf("SystemMetrics: %v", err)
	}

	if metrics.ActivePseudonyms != 2 {
		t.Errorf("active pseudonyms = %d, want 2", metrics.ActivePseudonyms)
	}
	if metrics.TotalReports != 4 {
		t.Errorf("total reports = %d, want 4", metrics.TotalReports)
	}
	if !almostEqual(metrics.GlobalVerificationRate, 1.0) {
		t.Errorf("global verification rate = %v, want 1.0", metrics.GlobalVerificationRate)
	}
	total := metrics.Distribution["alta"] + metrics.Distribution["media"] + metrics.Distribution["baixa"]
	if total != 2 {
		t.Errorf("distribution covers %d pseudonyms, want all 2 active", total)
	}
	if len(metrics.TopCategories) != 2 {
		t.Errorf("top categories = %d, want 2", len(metrics.TopCategories))
	}
}

func TestActiveDaysLenientTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  int
	}{
		{"rfc3339", "2026-01-01T00:00:00Z", "2026-01-11T00:00:00Z", 10},
		{"date only", "2026-01-01", "2026-01-31", 30},
		{"no timezone", "2026-01-01T08:00:00", "2026-01-02T10:00:00", 1},
		{"space separator", "2026-01-01 08:00:00", "2026-01-09 08:00:00", 8},
		{"same instant", "2026-01-01", "2026-01-01", 0},
		{"garbage", "not a date", "also not a date", 0},
		{"partial garbage", "2026-01-01", "later that year", 0},
		{"empty", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := activeDays(tt.first, tt.last); got != tt.want {
				t.Errorf("activeDays(%q, %q) = %d, want %d", tt.first, tt.last, got, tt.want)
			}
		})
	}
}

func TestActivitySpanLexicographic(t *testing.T) {
	reports := []models.Report{
		{OccurredAt: "2026-05-10"},
		{OccurredAt: ""},
		{OccurredAt: "2026-01-02"},
		{OccurredAt: "2026-12-30"},
	}
	first, last := activitySpan(reports)
	if first != "2026-01-02" || last != "2026-12-30" {
		t.Errorf("span = (%q, %q), want (2026-01-02, 2026-12-30)", first, last)
	}
}

func TestFrequentRegionsTopFiveAndRounding(t *testing.T) {
	pseudonym := "5555000000000000"
	var reports []models.Report
	// Six distinct cells; cell 0 appears twice so it must lead, and only five
	// cells survive the cut.
	for i := 0; i < 6; i++ {
		lat := 10.0 + float64(i)
		reports = append(reports, testReport(pseudonym, models.StatusPending, "X", "2026-01-01", lat, 20.0))
	}
	reports = append(reports, testReport(pseudonym, models.StatusPending, "X", "2026-01-01", 10.004, 20.001))

	regions := frequentRegions(reports)
	if len(regions) != 5 {
		t.Fatalf("regions = %d, want 5", len(regions))
	}
	if regions[0].Latitude != 10.0 || regions[0].Count != 2 {
		t.Errorf("leading region = %+v, want cell (10, 20) with count 2", regions[0])
	}

	// Reports without coordinates never form a cell.
	bare := []models.Report{{Category: "X"}}
	if got := frequentRegions(bare); len(got) != 0 {
		t.Errorf("coordinate-less reports produced %d regions", len(got))
	}
}

func TestFrequentCategoriesOrder(t *testing.T) {
	pseudonym := "6666000000000000"
	var reports []models.Report
	for i, cat := range []string{"A", "B", "B", "C", "C", "C", "D", "E", "F"} {
		reports = append(reports, testReport(pseudonym, models.StatusPending, cat, "2026-01-01", float64(i), 0))
	}

	cats := frequentCategories(reports)
	if len(cats) != 5 {
		t.Fatalf("categories = %d, want 5", len(cats))
	}
	if cats[0] != "C" || cats[1] != "B" {
		t.Errorf("leading categories = %v, want C then B", cats[:2])
	}
	// A, D, E, F all count 1; first-encountered wins the remaining slots.
	if cats[2] != "A" || cats[3] != "D" || cats[4] != "E" {
		t.Errorf("tie order = %v, want A, D, E", cats[2:])
	}
}
