package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"zonaprop-watcher/config"
	"zonaprop-watcher/models"
	"zonaprop-watcher/notifier"
	"zonaprop-watcher/scraper/zonaprop"
	"zonaprop-watcher/storage"
	"zonaprop-watcher/utils"
)

// errUnparseable marks a posting page that was fetched but carries no
// usable avisoInfo block.
var errUnparseable = errors.New("unparseable posting")

// ListingSource discovers and extracts listings.
type ListingSource interface {
	ListingURLs(ctx context.Context, searchURL string) ([]string, error)
	Listing(ctx context.Context, url string) (*models.Listing, error)
}

// Watcher polls the configured searches, evaluates listings it has not seen
// before and notifies the user about the ones that pass the gates.
type Watcher struct {
	cfg      *config.Config
	source   ListingSource
	store    storage.SeenStore
	evalLog  storage.EvaluationWriter
	notifier notifier.Notifier
	engine   *RuleEngine
	logger   *utils.Logger
	now      func() time.Time
}

// NewWatcher wires a Watcher from its collaborators.
func NewWatcher(
	cfg *config.Config,
	source ListingSource,
	store storage.SeenStore,
	evalLog storage.EvaluationWriter,
	n notifier.Notifier,
	logger *utils.Logger,
) *Watcher {
	return &Watcher{
		cfg:      cfg,
		source:   source,
		store:    store,
		evalLog:  evalLog,
		notifier: n,
		engine:   NewRuleEngine(logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes a cycle, prints its summary to out and repeats every poll
// interval until ctx is cancelled. With RunOnce set it returns after the
// first cycle.
func (w *Watcher) Run(ctx context.Context, out io.Writer) error {
	for {
		summary, err := w.RunCycle(ctx)
		PrintSummary(out, summary)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if w.cfg.RunOnce {
			return nil
		}

		w.logger.Info("[watcher] Next cycle in %s", w.cfg.Interval())
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.cfg.Interval()):
		}
	}
}

// RunCycle processes every search once. Per-listing errors are logged and
// counted; the returned error is only set when ctx was cancelled. Postings
// that fail to parse are counted apart from other failures.
func (w *Watcher) RunCycle(ctx context.Context) (*RunSummary, error) {
	started := w.now()
	var discovered, skipped, failures, unparseable int

	pending := w.collect(ctx, &discovered, &skipped, &failures)
	w.logger.Info("[watcher] %d new listings to evaluate (%d already seen)", len(pending), skipped)

	var (
		mu    sync.Mutex
		evals []models.Evaluation
	)
	pool := utils.NewWorkerPool(w.cfg.MaxConcurrency, w.cfg.RateLimitMs)
	for _, url := range pending {
		ok := pool.Submit(ctx, func() {
			e, err := w.process(ctx, url)

			mu.Lock()
			defer mu.Unlock()
			if e.Report != nil {
				evals = append(evals, e)
			}
			switch {
			case errors.Is(err, errUnparseable):
				unparseable++
				w.logger.Warn("[watcher] %s: %v", url, err)
			case err != nil:
				failures++
				w.logger.Error("[watcher] %s: %v", url, err)
			}
		})
		if !ok {
			break
		}
	}
	pool.Wait()

	summary := Summarize(evals)
	summary.Started = started
	summary.Duration = w.now().Sub(started)
	summary.Discovered = discovered
	summary.Skipped = skipped
	summary.Failures = failures
	summary.Unparseable = unparseable

	w.logger.Info("[watcher] Cycle done: %d evaluated, %d notified, %d failures",
		summary.Evaluated, summary.Notified, summary.Failures)
	return summary, ctx.Err()
}

// collect gathers the unique, not yet recorded listing URLs of all searches.
func (w *Watcher) collect(ctx context.Context, discovered, skipped, failures *int) []string {
	queued := utils.NewURLSet()
	var pending []string

	for _, search := range w.cfg.SearchURLs {
		if ctx.Err() != nil {
			break
		}
		urls, err := w.source.ListingURLs(ctx, search)
		if err != nil {
			*failures++
			w.logger.Error("[watcher] Search %s failed: %v", search, err)
			continue
		}

		for _, url := range urls {
			if !queued.Add(url) {
				continue
			}
			*discovered++

			seen, err := w.store.Exists(ctx, url)
			if err != nil {
				w.logger.Warn("[watcher] Seen check failed for %s, treating as new: %v", url, err)
			}
			if seen {
				*skipped++
				continue
			}
			pending = append(pending, url)
		}
	}
	return pending
}

// process evaluates one listing. A listing is only recorded as seen once
// its notification, if any, went out, so a failed send is retried on the
// next cycle. A page that was fetched but could not be parsed is recorded
// right away; a fetch failure is not.
func (w *Watcher) process(ctx context.Context, url string) (models.Evaluation, error) {
	listing, err := w.source.Listing(ctx, url)
	if err != nil {
		if !isUnparseable(err) {
			return models.Evaluation{}, fmt.Errorf("extract: %w", err)
		}
		if rerr := w.store.Record(ctx, url, &models.Listing{URL: url}); rerr != nil {
			return models.Evaluation{}, fmt.Errorf("record unparseable: %w", rerr)
		}
		return models.Evaluation{}, fmt.Errorf("%w: %v", errUnparseable, err)
	}

	report := w.engine.EvaluateListing(listing)
	e := models.Evaluation{Listing: listing, Report: report, EvaluatedAt: w.now()}

	var notifyErr error
	if w.cfg.NotifyAll || (report.AvenueGate() && report.PriceGate()) {
		if notifyErr = w.notifier.Send(report.Summary(listing)); notifyErr == nil {
			e.Notified = true
		}
	}

	if err := w.evalLog.Write(e); err != nil {
		w.logger.Warn("[watcher] Evaluation log write failed for %s: %v", url, err)
	}

	if notifyErr != nil {
		return e, fmt.Errorf("notify: %w", notifyErr)
	}
	if err := w.store.Record(ctx, url, listing); err != nil {
		return e, fmt.Errorf("record: %w", err)
	}
	return e, nil
}

func isUnparseable(err error) bool {
	return errors.Is(err, zonaprop.ErrEmptyDocument) ||
		errors.Is(err, zonaprop.ErrBlockNotFound) ||
		errors.Is(err, zonaprop.ErrMalformedLiteral)
}
