package csvload

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

const providersCSV = "\ufeff" + `CMS Certification Number (CCN),Provider Name,State,Average Number of Residents per Day,Reported RN Staffing Hours per Resident per Day,Reported LPN Staffing Hours per Resident per Day,Reported Nurse Aide Staffing Hours per Resident per Day,Number of Fines
015009,"BURNS NURSING HOME, INC.",AL,100,0.5,0.3,2.0,0
015010,COOSA VALLEY HEALTHCARE,AL,,0.4,0.9,2.5,1
,NO CCN,AL,50,1,1,1,0
015012,SHORT ROW,AL
`

const costCSV = `Provider CCN,Total Salaries (adjusted),Contract Labor
015009,"3,000,000",0
015010,"$1,250,000.50",
`

const penaltiesCSV = `CMS Certification Number (CCN),Penalty Date,Penalty Type,Fine Amount
015010,2024-02-01,Fine,"$12,500"
015010,2023-05-17,Fine,"$3,250"
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Providers:   writeFile(t, dir, "providers.csv", providersCSV),
		CostReports: writeFile(t, dir, "cost.csv", costCSV),
		Penalties:   writeFile(t, dir, "penalties.csv", penaltiesCSV),
		Quality:     filepath.Join(dir, "missing-quality.csv"),
		Surveys:     "",
	}

	ds, err := NewLoader(paths, discardLogger()).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.Providers, 3, "rows without a CCN are dropped")
	burns := ds.Providers["015009"]
	assert.Equal(t, "BURNS NURSING HOME, INC.", burns.Name)
	assert.Equal(t, 100.0, *burns.AvgResidents)

	assert.Nil(t, ds.Providers["015010"].AvgResidents)
	assert.Equal(t, "SHORT ROW", ds.Providers["015012"].Name)
	assert.Nil(t, ds.Providers["015012"].RNHours)

	require.Contains(t, ds.CostReports, "015010")
	assert.Equal(t, 1250000.50, *ds.CostReports["015010"].TotalSalaries)
	assert.Nil(t, ds.CostReports["015010"].ContractLabor)

	assert.Len(t, ds.Penalties["015010"], 2)
	assert.Empty(t, ds.Measures)
	assert.Empty(t, ds.Surveys)
}

func TestLoader_MissingProviders(t *testing.T) {
	_, err := NewLoader(Paths{Providers: filepath.Join(t.TempDir(), "nope.csv")}, discardLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers")
}

func TestReadRows_EmptyFile(t *testing.T) {
	var rows []domain.Row
	err := readRows(context.Background(), strings.NewReader(""), func(r domain.Row) {
		rows = append(rows, r)
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRows_CopiesRecords(t *testing.T) {
	var rows []domain.Row
	err := readRows(context.Background(), strings.NewReader("a,b\n1,2\n3,4\n"), func(r domain.Row) {
		rows = append(rows, r)
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Row{{"a": "1", "b": "2"}, {"a": "3", "b": "4"}}, rows)
}

func TestReadRows_MalformedQuote(t *testing.T) {
	var n int
	err := readRows(context.Background(), strings.NewReader("a,b\n\"x\"y,2\n"), func(domain.Row) { n++ })
	require.NoError(t, err, "lazy quotes tolerate stray quotes")
	assert.Equal(t, 1, n)
}

func TestReadRows_StripsByteOrderMark(t *testing.T) {
	input := string([]byte{0xEF, 0xBB, 0xBF}) + "CMS Certification Number (CCN),Provider Name\n015009,BURNS\n"

	var rows []domain.Row
	err := readRows(context.Background(), strings.NewReader(input), func(r domain.Row) {
		rows = append(rows, r)
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "015009", rows[0][domain.ColCCN])
	assert.Equal(t, bom, string([]byte{0xEF, 0xBB, 0xBF}))
}
