package site

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var generated = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)

func testPage() domain.FacilityPage {
	provider := domain.Provider{
		CCN:             "015009",
		Name:            "Burns Nursing Home <Annex>",
		Address:         "701 Monroe Street NW",
		City:            "Russellville",
		State:           "AL",
		ZIP:             "35653",
		Phone:           "2563324110",
		Ownership:       "For profit - Corporation",
		Beds:            ptr(57),
		OverallRating:   ptr(4),
		HealthRating:    ptr(3),
		AcceptsMedicare: true,
		AcceptsMedicaid: true,
		AvgResidents:    ptr(100),
		RNHours:         ptr(0.5),
		LPNHours:        ptr(0.3),
		AideHours:       ptr(2.0),
		Complaints:      ptr(2),
	}
	thresholds := domain.DefaultThresholds()
	est := domain.NewEstimator(domain.DefaultWageModel()).Estimate(provider, &domain.CostReport{
		CCN: "015009", TotalSalaries: ptr(3_000_000), ContractLabor: ptr(0),
	})
	profile := domain.RegionWageProfile{"AL": est.Rates}

	return domain.FacilityPage{
		Provider:  provider,
		Wages:     est,
		WageTiers: thresholds.ClassifyWages(est, "AL", profile),
		Safety:    thresholds.ClassifySafety(provider),
		LongStay: thresholds.ClassifyMeasures([]domain.QualityMeasure{
			{Code: "410", Description: "Percentage of long-stay residents who received the pneumococcal vaccine", FourQuarter: ptr(95)},
		}),
		Penalties:   []domain.Penalty{{Date: "2024-06-02", Type: "Fine", FineAmount: ptr(12500)}},
		Surveys:     []domain.Survey{{Cycle: 1, Date: "2024-03-14", HealthDeficiencies: ptr(4)}},
		GeneratedAt: generated,
	}
}

func newTestRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "facility")
	r, err := NewRenderer(dir, "https://example.org/", discardLogger())
	require.NoError(t, err)
	return r, dir
}

func TestRenderFacility(t *testing.T) {
	r, dir := newTestRenderer(t)

	require.NoError(t, r.RenderFacility(context.Background(), testPage()))

	b, err := os.ReadFile(filepath.Join(dir, "015009.html"))
	require.NoError(t, err)
	html := string(b)

	assert.Contains(t, html, "Burns Nursing Home &lt;Annex&gt;", "provider text is escaped")
	assert.Contains(t, html, `<link rel="canonical" href="https://example.org/facility/015009.html">`)
	assert.Contains(t, html, "$41.20/hr")
	assert.Contains(t, html, "0% vs. AL typical")
	assert.Contains(t, html, "stat tier-mid")
	assert.Contains(t, html, "Substantiated Complaints")
	assert.Contains(t, html, "$12500.00")
	assert.Contains(t, html, "Cycle 1")
	assert.Contains(t, html, "No measures reported.", "empty short-stay table")
	assert.Contains(t, html, "Generated 2025-11-01.")
}

func TestRenderFacility_JSONLD(t *testing.T) {
	r, dir := newTestRenderer(t)
	require.NoError(t, r.RenderFacility(context.Background(), testPage()))

	b, err := os.ReadFile(filepath.Join(dir, "015009.html"))
	require.NoError(t, err)

	re := regexp.MustCompile(`<script type="application/ld\+json">(.*?)</script>`)
	blocks := re.FindAllStringSubmatch(string(b), -1)
	require.Len(t, blocks, 4)

	types := make([]string, 0, len(blocks))
	for _, m := range blocks {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(m[1]), &v), m[1])
		types = append(types, v["@type"].(string))
	}
	assert.Equal(t, []string{"NursingHome", "MedicalWebPage", "BreadcrumbList", "FAQPage"}, types)

	var home map[string]any
	require.NoError(t, json.Unmarshal([]byte(blocks[0][1]), &home))
	assert.Equal(t, "Burns Nursing Home <Annex>", home["name"])
	assert.Equal(t, "Medicare, Medicaid", home["paymentAccepted"])
	assert.InDelta(t, 57, home["numberOfBeds"], 0)

	var faq map[string]any
	require.NoError(t, json.Unmarshal([]byte(blocks[3][1]), &faq))
	assert.Len(t, faq["mainEntity"], 5, "rating, location, beds, wages, payment")
}

func TestRenderFacility_UnavailableWages(t *testing.T) {
	r, dir := newTestRenderer(t)
	page := testPage()
	page.Wages = domain.Unavailable(domain.ReasonNoCostReport)
	page.WageTiers = domain.WageTiers{}

	require.NoError(t, r.RenderFacility(context.Background(), page))

	b, err := os.ReadFile(filepath.Join(dir, "015009.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "No SNF cost report is on file")
	assert.NotContains(t, string(b), "/hr")
}

func TestRenderFacility_RejectsPathInCCN(t *testing.T) {
	r, _ := newTestRenderer(t)
	page := testPage()
	page.Provider.CCN = "../escape"
	require.Error(t, r.RenderFacility(context.Background(), page))
}

func TestRenderFacility_CancelledContext(t *testing.T) {
	r, dir := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, r.RenderFacility(ctx, testPage()), context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "015009.html"))
}

func TestRenderIndex(t *testing.T) {
	r, dir := newTestRenderer(t)
	page := testPage()
	summaries := []domain.FacilitySummary{
		{CCN: "555001", Name: "Zeta Care", City: "Reno", State: "NV"},
		domain.Summarize(page),
		{CCN: "015010", Name: "Alpha Manor", City: "Mobile", State: "AL"},
	}

	require.NoError(t, r.RenderIndex(context.Background(), summaries))

	b, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	html := string(b)

	assert.Contains(t, html, "3 facilities in 2 states")
	assert.Contains(t, html, `<a href="015010.html">Alpha Manor</a>`)
	assert.Contains(t, html, "RN $41.20/hr")

	al := regexp.MustCompile(`id="state-AL"`).FindStringIndex(html)
	nv := regexp.MustCompile(`id="state-NV"`).FindStringIndex(html)
	require.NotNil(t, al)
	require.NotNil(t, nv)
	assert.Less(t, al[0], nv[0])
	assert.Less(t, regexp.MustCompile("Alpha Manor").FindStringIndex(html)[0],
		regexp.MustCompile("Burns Nursing Home").FindStringIndex(html)[0])
}

func TestWriteWages_RoundTrip(t *testing.T) {
	r, dir := newTestRenderer(t)
	want := []domain.FacilitySummary{domain.Summarize(testPage())}

	require.NoError(t, r.WriteWages(context.Background(), want))

	got, err := ReadWages(filepath.Join(dir, WagesFile))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "41.2", got[0].Wages[domain.RoleRN].String())
	assert.Equal(t, want[0].SafetyTier, got[0].SafetyTier)
	assert.True(t, want[0].GeneratedAt.Equal(got[0].GeneratedAt))
}

func TestWriteWages_Empty(t *testing.T) {
	r, dir := newTestRenderer(t)
	require.NoError(t, r.WriteWages(context.Background(), nil))

	b, err := os.ReadFile(filepath.Join(dir, WagesFile))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(b))
}
