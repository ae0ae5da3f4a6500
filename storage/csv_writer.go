package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"zonaprop-watcher/models"
)

var csvHeader = []string{
	"evaluated_at", "url", "id", "bucket", "age", "price", "currency", "expenses",
	"address", "passed", "failed", "unknown", "avenue_gate", "price_gate", "notified",
}

// CSVWriter appends one row per evaluated listing to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens the CSV file at the given path for appending, writing
// the header row when the file is new or empty. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends the evaluation and flushes it to disk.
func (c *CSVWriter) Write(e models.Evaluation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(evaluationRow(e)); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

func evaluationRow(e models.Evaluation) []string {
	l, r := e.Listing, e.Report
	passed, failed, unknown := r.Counts()

	age := ""
	if r.Age != nil {
		age = strconv.Itoa(*r.Age)
	}

	return []string{
		e.EvaluatedAt.Format(time.RFC3339),
		l.URL,
		models.Text(l.ID),
		r.Bucket.String(),
		age,
		models.Text(l.Price),
		models.Text(l.Currency),
		models.Text(l.Expenses),
		models.Text(l.Address),
		strconv.Itoa(passed),
		strconv.Itoa(failed),
		strconv.Itoa(unknown),
		strconv.FormatBool(r.AvenueGate()),
		strconv.FormatBool(r.PriceGate()),
		strconv.FormatBool(e.Notified),
	}
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.file.Close()
}
