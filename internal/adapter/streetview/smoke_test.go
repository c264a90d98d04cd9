//go:build streetview

package streetview

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snf-facility-pages/internal/observability"
)

// These tests hit the real Street View Static API and require STREETVIEW_API_KEY.
// Run with: go test -tags=streetview ./internal/adapter/streetview/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("STREETVIEW_API_KEY")
	if key == "" {
		t.Fatal("STREETVIEW_API_KEY must be set to run smoke tests")
	}
	return NewClient(key, 10*time.Second, observability.NewMetricsForTesting(), discardLogger())
}

func TestSmoke_Fetch_KnownAddress(t *testing.T) {
	c := smokeClient(t)

	img, err := c.Fetch(context.Background(), "1600 Pennsylvania Avenue NW, Washington, DC 20500")
	require.NoError(t, err)
	assert.Greater(t, len(img), minImageBytes)
}

func TestSmoke_Fetch_Nowhere(t *testing.T) {
	c := smokeClient(t)

	_, err := c.Fetch(context.Background(), "0,0")
	assert.ErrorIs(t, err, ErrNoImagery)
}
