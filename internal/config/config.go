package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

// Config holds all generator settings, populated from environment variables.
type Config struct {
	DataDir        string
	ProviderFile   string
	QualityFile    string
	PenaltiesFile  string
	SurveyFile     string
	CostReportFile string
	OutputDir      string
	SiteURL        string
	WageModelPath  string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
	BatchSize    int

	// Street View image fetching.
	StreetViewAPIKey  string
	StreetViewTimeout time.Duration
	StreetViewDelay   time.Duration
	ImagesDir         string

	CompareHTML string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	svTimeout, err := parsePositiveDuration("STREETVIEW_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	svDelay, err := time.ParseDuration(sharedcfg.EnvOrDefault("STREETVIEW_DELAY", "100ms"))
	if err != nil || svDelay < 0 {
		return nil, errors.New("invalid STREETVIEW_DELAY")
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataDir:        sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		ProviderFile:   sharedcfg.EnvOrDefault("PROVIDER_FILE", "NH_ProviderInfo_Nov2025.csv"),
		QualityFile:    sharedcfg.EnvOrDefault("QUALITY_FILE", "NH_QualityMsr_MDS_Nov2025.csv"),
		PenaltiesFile:  sharedcfg.EnvOrDefault("PENALTIES_FILE", "NH_Penalties_Nov2025.csv"),
		SurveyFile:     sharedcfg.EnvOrDefault("SURVEY_FILE", "NH_SurveySummary_Nov2025.csv"),
		CostReportFile: sharedcfg.EnvOrDefault("COST_REPORT_FILE", filepath.Join("Skilled Nursing Facility Cost Report", "2023", "CostReportsnf_Final_23.csv")),
		OutputDir:      sharedcfg.EnvOrDefault("OUTPUT_DIR", "facility"),
		SiteURL:        sharedcfg.EnvOrDefault("SITE_URL", "https://snfcompare.com"),
		WageModelPath:  os.Getenv("WAGE_MODEL_PATH"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "facility-wage-estimates"),
		KafkaEnabled: kafkaEnabled,
		BatchSize:    batchSize,

		StreetViewAPIKey:  os.Getenv("STREETVIEW_API_KEY"),
		StreetViewTimeout: svTimeout,
		StreetViewDelay:   svDelay,
		ImagesDir:         sharedcfg.EnvOrDefault("IMAGES_DIR", filepath.Join("images", "facilities")),

		CompareHTML: sharedcfg.EnvOrDefault("COMPARE_HTML", filepath.Join("deploy", "snf-facility-compare.html")),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// DataPath resolves a CMS dataset file name against DataDir.
func (c *Config) DataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// CostReportPath resolves CostReportFile against DataDir.
func (c *Config) CostReportPath() string {
	return c.DataPath(c.CostReportFile)
}

// LoadTables returns the default wage model and thresholds, overlaid with the
// YAML file at path when path is non-empty. Keys absent from the file keep
// their defaults; map entries are merged.
func LoadTables(path string) (domain.Tables, error) {
	tables := domain.DefaultTables()
	if path == "" {
		return tables, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("read wage model: %w", err)
	}
	if err := yaml.Unmarshal(b, &tables); err != nil {
		return tables, fmt.Errorf("parse wage model %s: %w", path, err)
	}
	return tables, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
