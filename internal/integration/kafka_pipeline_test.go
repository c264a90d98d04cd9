//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/kafka"
	"github.com/couchcryptid/snf-facility-pages/internal/adapter/site"
	"github.com/couchcryptid/snf-facility-pages/internal/config"
	"github.com/couchcryptid/snf-facility-pages/internal/domain"
	"github.com/couchcryptid/snf-facility-pages/internal/mockdata"
	"github.com/couchcryptid/snf-facility-pages/internal/observability"
	"github.com/couchcryptid/snf-facility-pages/internal/pipeline"
)

const testTopic = "test-facility-summaries"

// summaryMessage holds a deserialized message read from the summary topic.
type summaryMessage struct {
	Summary domain.FacilitySummary
	Key     string
	Headers map[string]string
}

// readSummary reads a single message from the consumer and deserializes it.
func readSummary(ctx context.Context, t *testing.T, consumer *kafkago.Reader) summaryMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from summary topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var s domain.FacilitySummary
	require.NoError(t, json.Unmarshal(msg.Value, &s), "unmarshal summary message")

	return summaryMessage{Summary: s, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaWriter verifies the publisher keys messages by CCN and stamps
// the run headers.
func TestKafkaWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic, BatchSize: 10}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.EnsureTopic(ctx, 1))
	require.NoError(t, writer.EnsureTopic(ctx, 1), "existing topic is not an error")

	generated := time.Date(2025, time.November, 1, 15, 10, 0, 0, time.UTC)
	summary := domain.FacilitySummary{
		CCN:   "015009",
		Name:  "Burns Nursing Home",
		State: "AL",
		Wages: map[domain.Role]decimal.Decimal{
			domain.RoleNP:  decimal.RequireFromString("56.18"),
			domain.RoleRN:  decimal.RequireFromString("41.20"),
			domain.RoleLPN: decimal.RequireFromString("26.22"),
			domain.RoleCNA: decimal.RequireFromString("13.11"),
		},
		WageTier:    domain.TierGood,
		GeneratedAt: generated,
	}
	require.NoError(t, writer.Publish(ctx, "run-42", []domain.FacilitySummary{summary}))

	sm := readSummary(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "015009", sm.Key)
	assert.Equal(t, "run-42", sm.Headers[kafka.HeaderRunID])
	assert.Equal(t, generated.Format(time.RFC3339), sm.Headers[kafka.HeaderGeneratedAt])
	assert.Equal(t, "Burns Nursing Home", sm.Summary.Name)
	assert.Equal(t, "41.20", sm.Summary.Wages[domain.RoleRN].StringFixed(2))
	assert.Equal(t, domain.TierGood, sm.Summary.WageTier)
}

// TestPipelineEndToEnd wires the full pipeline (CSV loader, assembler, site
// renderer, Kafka publisher) over a generated dataset and verifies every
// rendered facility is published exactly once.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	const facilities = 30
	broker := startKafka(ctx, t)
	paths := loadMockData(t, facilities)
	outDir := t.TempDir()

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic, BatchSize: 8}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.EnsureTopic(ctx, 3))

	renderer, err := site.NewRenderer(outDir, "https://example.test", discardLogger())
	require.NoError(t, err)

	p := pipeline.New(
		csvload.NewLoader(paths, discardLogger()),
		pipeline.NewAssembler(domain.DefaultTables(), discardLogger()),
		renderer,
		writer,
		discardLogger(),
		observability.NewMetricsForTesting(),
		cfg.BatchSize,
	)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, p.CheckReadiness(ctx))

	assert.Equal(t, facilities, summary.Facilities)
	assert.Equal(t, facilities, summary.Rendered)
	assert.Equal(t, facilities, summary.Published)
	assert.Equal(t, 1, summary.Outliers)
	assert.Equal(t, facilities-3-1, summary.Computed, "three without cost reports, one outlier")

	for _, name := range []string{mockdata.CCN(0) + ".html", "index.html", site.WagesFile} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	consumer := newConsumer(t, broker)
	received := make(map[string]summaryMessage, facilities)
	for len(received) < facilities {
		sm := readSummary(ctx, t, consumer)
		_, dup := received[sm.Key]
		require.False(t, dup, "duplicate message for %s", sm.Key)
		received[sm.Key] = sm
	}

	for ccn, sm := range received {
		assert.Equal(t, ccn, sm.Summary.CCN)
		assert.Equal(t, summary.RunID, sm.Headers[kafka.HeaderRunID])
		_, err := time.Parse(time.RFC3339, sm.Headers[kafka.HeaderGeneratedAt])
		assert.NoError(t, err, "invalid generated_at header")

		if len(sm.Summary.Wages) > 0 {
			assert.Len(t, sm.Summary.Wages, len(domain.Roles), "estimates are never partial")
			assert.Empty(t, sm.Summary.WageReason)
		} else {
			assert.NotEmpty(t, sm.Summary.WageReason)
		}
	}

	assert.Equal(t, domain.ReasonNoCostReport, received[mockdata.CCN(9)].Summary.WageReason)
	assert.Equal(t, domain.ReasonOutlier, received[mockdata.CCN(24)].Summary.WageReason)

	onDisk, err := site.ReadWages(filepath.Join(outDir, site.WagesFile))
	require.NoError(t, err)
	require.Len(t, onDisk, facilities)
	for _, s := range onDisk {
		assert.Equal(t, s.WageTier, received[s.CCN].Summary.WageTier, s.CCN)
	}
}
