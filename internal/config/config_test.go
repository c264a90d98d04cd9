package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

const testAPIKey = "sv-test-key"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "NH_ProviderInfo_Nov2025.csv", cfg.ProviderFile)
	assert.Equal(t, "NH_QualityMsr_MDS_Nov2025.csv", cfg.QualityFile)
	assert.Equal(t, "NH_Penalties_Nov2025.csv", cfg.PenaltiesFile)
	assert.Equal(t, "NH_SurveySummary_Nov2025.csv", cfg.SurveyFile)
	assert.Equal(t, filepath.Join("Skilled Nursing Facility Cost Report", "2023", "CostReportsnf_Final_23.csv"), cfg.CostReportFile)
	assert.Equal(t, filepath.Join("data", "Skilled Nursing Facility Cost Report", "2023", "CostReportsnf_Final_23.csv"), cfg.CostReportPath())
	assert.Equal(t, "facility", cfg.OutputDir)
	assert.Equal(t, "https://snfcompare.com", cfg.SiteURL)
	assert.Empty(t, cfg.WageModelPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "facility-wage-estimates", cfg.KafkaTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Empty(t, cfg.StreetViewAPIKey)
	assert.Equal(t, 30*time.Second, cfg.StreetViewTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.StreetViewDelay)
	assert.Equal(t, filepath.Join("images", "facilities"), cfg.ImagesDir)
	assert.Equal(t, filepath.Join("deploy", "snf-facility-compare.html"), cfg.CompareHTML)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/cms")
	t.Setenv("PROVIDER_FILE", "providers.csv")
	t.Setenv("OUTPUT_DIR", "out")
	t.Setenv("SITE_URL", "https://example.org")
	t.Setenv("WAGE_MODEL_PATH", "wages.yaml")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("STREETVIEW_API_KEY", testAPIKey)
	t.Setenv("STREETVIEW_TIMEOUT", "5s")
	t.Setenv("STREETVIEW_DELAY", "0s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/cms", cfg.DataDir)
	assert.Equal(t, "providers.csv", cfg.ProviderFile)
	assert.Equal(t, filepath.Join("/srv/cms", "Skilled Nursing Facility Cost Report", "2023", "CostReportsnf_Final_23.csv"), cfg.CostReportPath())
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "https://example.org", cfg.SiteURL)
	assert.Equal(t, "wages.yaml", cfg.WageModelPath)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, testAPIKey, cfg.StreetViewAPIKey)
	assert.Equal(t, 5*time.Second, cfg.StreetViewTimeout)
	assert.Equal(t, time.Duration(0), cfg.StreetViewDelay)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_BatchSizeTooLarge(t *testing.T) {
	t.Setenv("BATCH_SIZE", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidStreetViewTimeout(t *testing.T) {
	t.Setenv("STREETVIEW_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STREETVIEW_TIMEOUT")
}

func TestLoad_NegativeStreetViewDelay(t *testing.T) {
	t.Setenv("STREETVIEW_DELAY", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STREETVIEW_DELAY")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestDataPath(t *testing.T) {
	cfg := &Config{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "providers.csv"), cfg.DataPath("providers.csv"))
	assert.Equal(t, "/abs/providers.csv", cfg.DataPath("/abs/providers.csv"))
}

func TestCostReportPath_FollowsDataDir(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.DataDir = "/srv/cms"
	assert.Equal(t, filepath.Join("/srv/cms", "Skilled Nursing Facility Cost Report", "2023", "CostReportsnf_Final_23.csv"), cfg.CostReportPath())

	cfg.CostReportFile = "/reports/snf.csv"
	assert.Equal(t, "/reports/snf.csv", cfg.CostReportPath())
}

func TestLoadTables_Defaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTables(), tables)
}

func TestLoadTables_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
wages:
  nursing_share: 0.7
  min_wages:
    CA: 17.00
    PR: 6.50
  ceilings:
    rn: 130
tiers:
  section:
    great: 90
    good: 70
    mid: 55
    warn: 40
`), 0o600))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, tables.Wages.NursingShare)
	assert.Equal(t, 17.00, tables.Wages.MinWage("CA"))
	assert.Equal(t, 6.50, tables.Wages.MinWage("PR"))
	assert.Equal(t, 12.00, tables.Wages.MinWage("NV"), "unlisted states keep defaults")
	assert.Equal(t, 130.0, tables.Wages.Ceilings[domain.RoleRN])
	assert.Equal(t, 36.12, tables.Wages.Ceilings[domain.RoleCNA])
	assert.Equal(t, 2.2, tables.Wages.Weights[domain.RoleRN])
	assert.Equal(t, 90.0, tables.Tiers.Section.Great)
	assert.Equal(t, domain.DefaultThresholds().Wage, tables.Tiers.Wage)
}

func TestLoadTables_Errors(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wages: [not, a, map]"), 0o600))
	_, err = LoadTables(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse wage model")
}
