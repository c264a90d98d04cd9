//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/snf-facility-pages/internal/adapter/csvload"
	"github.com/couchcryptid/snf-facility-pages/internal/mockdata"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// startKafka runs a single-node broker for the lifetime of the test and
// returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("snf-pages-test"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// loadMockData writes a synthetic CMS dataset into a temp dir and returns
// the loader paths for it.
func loadMockData(t *testing.T, facilities int) csvload.Paths {
	t.Helper()
	files, err := mockdata.Generate(t.TempDir(), mockdata.Options{Facilities: facilities, Seed: 11})
	require.NoError(t, err)
	return csvload.Paths{
		Providers:   files.Providers,
		Quality:     files.Quality,
		Penalties:   files.Penalties,
		Surveys:     files.Surveys,
		CostReports: files.CostReports,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
