package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"zonaprop-watcher/models"
)

// RunSummary describes one watcher cycle.
type RunSummary struct {
	Started  time.Time
	Duration time.Duration

	Discovered  int // unique listing URLs found on the search pages
	Skipped     int // already recorded in the seen store
	Evaluated   int
	Notified    int
	Failures    int
	Unparseable int // fetched without a usable avisoInfo block; recorded as seen

	ByBucket  map[models.Bucket]int
	GatesOpen int // listings passing both the avenue and the price gate

	// USD prices of evaluated listings.
	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64

	ListingsByLocation map[string]int
	TopMatches         []models.Evaluation
}

// Summarize builds the evaluation-derived part of a RunSummary. Counters
// that only the watcher knows (discovered, skipped, failures, unparseable)
// are left zero.
func Summarize(evals []models.Evaluation) *RunSummary {
	s := &RunSummary{
		ByBucket:           make(map[models.Bucket]int),
		ListingsByLocation: make(map[string]int),
	}
	if len(evals) == 0 {
		return s
	}

	var prices []float64
	for _, e := range evals {
		s.Evaluated++
		s.ByBucket[e.Report.Bucket]++
		if e.Notified {
			s.Notified++
		}
		if e.Report.AvenueGate() && e.Report.PriceGate() {
			s.GatesOpen++
		}
		if loc := models.Text(e.Listing.Location); loc != "" {
			s.ListingsByLocation[loc]++
		}
		if models.Text(e.Listing.Currency) == priceCurrency {
			if p, ok := models.Amount(e.Listing.Price); ok {
				prices = append(prices, p)
			}
		}
	}

	if len(prices) > 0 {
		s.MinPrice, s.MaxPrice = prices[0], prices[0]
		var total float64
		for _, p := range prices {
			total += p
			s.MinPrice = min(s.MinPrice, p)
			s.MaxPrice = max(s.MaxPrice, p)
		}
		s.AveragePrice = round2(total / float64(len(prices)))
	}

	// Top 5 by passed checks, then fewest failures
	ranked := append([]models.Evaluation(nil), evals...)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, fi, _ := ranked[i].Report.Counts()
		pj, fj, _ := ranked[j].Report.Counts()
		if pi != pj {
			return pi > pj
		}
		return fi < fj
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	s.TopMatches = ranked

	return s
}

// PrintSummary writes a boxed report of the cycle to w.
func PrintSummary(w io.Writer, r *RunSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 ZONAPROP WATCH CYCLE\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings discovered : \033[1m%d\033[0m\n", r.Discovered)
	fmt.Fprintf(w, "  Already seen        : \033[1m%d\033[0m\n", r.Skipped)
	fmt.Fprintf(w, "  Evaluated           : \033[1m%d\033[0m\n", r.Evaluated)
	fmt.Fprintf(w, "  Passing both gates  : \033[1m%d\033[0m\n", r.GatesOpen)
	fmt.Fprintf(w, "  Notified            : \033[1m%d\033[0m\n", r.Notified)
	fmt.Fprintf(w, "  Failures            : \033[1m%d\033[0m\n", r.Failures)
	fmt.Fprintf(w, "  Unparseable         : \033[1m%d\033[0m\n", r.Unparseable)
	if r.Duration > 0 {
		fmt.Fprintf(w, "  Duration            : %s\n", r.Duration.Round(time.Second))
	}
	fmt.Fprintln(w)

	// Buckets
	fmt.Fprintf(w, "\033[1;33m  Listings by Age\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, b := range []models.Bucket{models.BucketNew, models.BucketIntermediate, models.BucketOld, models.BucketUnknown} {
		fmt.Fprintf(w, "  %-26s %d\n", b.Label(), r.ByBucket[b])
	}
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics (USD)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.0f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%.0f\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%.0f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	// Top matches
	fmt.Fprintf(w, "\033[1;33m  Best Matches\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopMatches) == 0 {
		fmt.Fprintf(w, "  No listings evaluated\n")
	} else {
		for i, e := range r.TopMatches {
			passed, failed, unknown := e.Report.Counts()
			name := models.Text(e.Listing.Address)
			if name == "" {
				name = e.Listing.URL
			}
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-36s \033[1;32m✅%d\033[0m ❌%d 🟡%d\n",
				i+1, truncate(name, 34), passed, failed, unknown)
		}
	}
	fmt.Fprintln(w)

	// Listings by Location
	fmt.Fprintf(w, "\033[1;33m  Listings by Location\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByLocation) == 0 {
		fmt.Fprintf(w, "  No location data\n")
	} else {
		type locCount struct {
			loc   string
			count int
		}
		var locs []locCount
		for loc, cnt := range r.ListingsByLocation {
			locs = append(locs, locCount{loc, cnt})
		}
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].count != locs[j].count {
				return locs[i].count > locs[j].count
			}
			return locs[i].loc < locs[j].loc
		})
		for _, lc := range locs {
			bar := strings.Repeat("█", lc.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(lc.loc, 28), bar, lc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
