package services

import (
	"bytes"
	"strings"
	"testing"

	"zonaprop-watcher/models"
)

func sampleEvaluations() []models.Evaluation {
	engine := newTestEngine()
	mk := func(address, location, price, currency, age string, notified bool) models.Evaluation {
		l := &models.Listing{
			URL:          "https://www.zonaprop.com.ar/propiedades/" + strings.ReplaceAll(address, " ", "-") + ".html",
			Address:      str(address),
			Location:     str(location),
			Price:        str(price),
			Currency:     str(currency),
			Bathrooms:    str("2"),
			MainFeatures: withAge(age),
		}
		return models.Evaluation{Listing: l, Report: engine.EvaluateListing(l), Notified: notified}
	}

	return []models.Evaluation{
		mk("Gurruchaga 123", "Palermo", "USD 150.000", "USD", "10", true),
		mk("Av. Cabildo 2000", "Belgrano", "USD 120.000", "USD", "30", false),
		mk("Thames 900", "Palermo", "USD 200.000", "USD", "60", false),
		mk("Conesa 1500", "Belgrano", "$ 90.000.000", "ARS", "5", false),
		mk("Arcos 2100", "Núñez", "USD 130.000", "USD", "consultar", false),
	}
}

func TestSummarizeCounts(t *testing.T) {
	s := Summarize(sampleEvaluations())
	if s.Evaluated != 5 {
		t.Errorf("Evaluated: got %d, want 5", s.Evaluated)
	}
	if s.Notified != 1 {
		t.Errorf("Notified: got %d, want 1", s.Notified)
	}
	if s.GatesOpen != 1 {
		t.Errorf("GatesOpen: got %d, want 1", s.GatesOpen)
	}
}

func TestSummarizeBuckets(t *testing.T) {
	s := Summarize(sampleEvaluations())
	want := map[models.Bucket]int{
		models.BucketNew:          2,
		models.BucketIntermediate: 1,
		models.BucketOld:          1,
		models.BucketUnknown:      1,
	}
	for b, n := range want {
		if s.ByBucket[b] != n {
			t.Errorf("ByBucket[%s]: got %d, want %d", b, s.ByBucket[b], n)
		}
	}
}

func TestSummarizePricesOnlyUSD(t *testing.T) {
	s := Summarize(sampleEvaluations())
	if s.AveragePrice != 150000 {
		t.Errorf("AveragePrice: got %.2f, want 150000", s.AveragePrice)
	}
	if s.MinPrice != 120000 {
		t.Errorf("MinPrice: got %.2f, want 120000", s.MinPrice)
	}
	if s.MaxPrice != 200000 {
		t.Errorf("MaxPrice: got %.2f, want 200000", s.MaxPrice)
	}
}

func TestSummarizeTopMatches(t *testing.T) {
	s := Summarize(sampleEvaluations())
	if len(s.TopMatches) != 5 {
		t.Fatalf("TopMatches len: got %d, want 5", len(s.TopMatches))
	}
	if got := models.Text(s.TopMatches[0].Listing.Address); got != "Gurruchaga 123" {
		t.Errorf("TopMatches[0]: got %q, want %q", got, "Gurruchaga 123")
	}
}

func TestSummarizeLocationGrouping(t *testing.T) {
	s := Summarize(sampleEvaluations())
	if s.ListingsByLocation["Palermo"] != 2 {
		t.Errorf("Palermo count: got %d, want 2", s.ListingsByLocation["Palermo"])
	}
	if s.ListingsByLocation["Núñez"] != 1 {
		t.Errorf("Núñez count: got %d, want 1", s.ListingsByLocation["Núñez"])
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := Summarize(nil)
	if s.Evaluated != 0 || len(s.TopMatches) != 0 {
		t.Errorf("expected empty summary for empty input, got %+v", s)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	s := Summarize(sampleEvaluations())
	s.Discovered = 7
	PrintSummary(&buf, s)

	out := buf.String()
	for _, want := range []string{"ZONAPROP WATCH CYCLE", "Listings discovered : \033[1m7", "Nuevo (0-20 años)", "Average price", "Palermo"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q", want)
		}
	}

	buf.Reset()
	PrintSummary(&buf, Summarize(nil))
	if !strings.Contains(buf.String(), "No price data available") {
		t.Errorf("empty summary should report missing price data")
	}
}
