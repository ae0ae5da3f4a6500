package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonaprop-watcher/models"
	"zonaprop-watcher/utils"
)

func str(s string) *string { return &s }

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "seen.db")
	s, err := NewSQLiteStore(context.Background(), path, utils.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRecordAndExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	url := "https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html"

	seen, err := s.Exists(ctx, url)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Record(ctx, url, &models.Listing{URL: url, ID: str("1")}))

	seen, err = s.Exists(ctx, url)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.Exists(ctx, url+"?other")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSQLiteStoreRecordReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	url := "https://www.zonaprop.com.ar/propiedades/ph-2.html"

	require.NoError(t, s.Record(ctx, url, &models.Listing{ID: str("2"), Price: str("USD 100.000")}))
	require.NoError(t, s.Record(ctx, url, &models.Listing{ID: str("2"), Price: str("USD 95.000")}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT json_data FROM properties WHERE url = ?`, url).Scan(&raw))
	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "USD 95.000", stored["price"])
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.db")
	url := "https://www.zonaprop.com.ar/propiedades/casa-3.html"

	s, err := NewSQLiteStore(ctx, path, utils.NewDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, url, &models.Listing{}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path, utils.NewDiscardLogger())
	require.NoError(t, err)
	defer s.Close()

	seen, err := s.Exists(ctx, url)
	require.NoError(t, err)
	assert.True(t, seen)
}

func sampleEvaluation() models.Evaluation {
	age := 10
	return models.Evaluation{
		Listing: &models.Listing{
			URL:      "https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html",
			ID:       str("56540649"),
			Price:    str("USD 150.000"),
			Currency: str("USD"),
			Address:  str("Gurruchaga 123, Palermo"),
		},
		Report: &models.Report{
			Bucket: models.BucketNew,
			Age:    &age,
			Outcomes: []models.CheckOutcome{
				{ID: models.CheckPrice, Outcome: models.Passed},
				{ID: models.CheckAvenue, Outcome: models.Passed},
				{ID: models.CheckGas, Outcome: models.Unknown},
			},
		},
		Notified:    true,
		EvaluatedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriterWritesEvaluations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "evaluations.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleEvaluation()))
	require.NoError(t, w.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"2026-10-16T12:00:00Z",
		"https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html",
		"56540649", "new", "10", "USD 150.000", "USD", "",
		"Gurruchaga 123, Palermo", "2", "0", "1", "true", "true", "true",
	}, rows[1])
}

func TestCSVWriterAppendsWithoutRepeatingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluations.csv")

	for i := 0; i < 2; i++ {
		w, err := NewCSVWriter(path)
		require.NoError(t, err)
		require.NoError(t, w.Write(sampleEvaluation()))
		require.NoError(t, w.Close())
	}

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, rows[1], rows[2])
}
