package zonaprop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"zonaprop-watcher/config"
	"zonaprop-watcher/models"
	"zonaprop-watcher/utils"
)

const (
	baseURL       = "https://www.zonaprop.com.ar"
	htmlExtension = ".html"
)

var (
	// ErrEmptyDocument is returned when there is no page text at all.
	ErrEmptyDocument = errors.New("zonaprop: empty document")
	// ErrBlockNotFound is returned when the page has no avisoInfo block.
	ErrBlockNotFound = errors.New("zonaprop: avisoInfo block not found")
	// ErrMalformedLiteral is returned when the normalized block is not valid JSON.
	ErrMalformedLiteral = errors.New("zonaprop: malformed avisoInfo literal")
)

// Fetcher returns the body of a page. An error means the page is
// unavailable; callers treat it as missing data.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper turns search and posting pages into listings.
type Scraper struct {
	fetcher Fetcher
	logger  *utils.Logger
	retry   *utils.RetryConfig
}

// New creates a Scraper that fetches pages through fetcher, retrying with
// exponential back-off.
func New(cfg *config.Config, fetcher Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		logger:  logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// ListingURLs fetches a search results page and returns the posting URLs
// it lists.
func (s *Scraper) ListingURLs(ctx context.Context, searchURL string) ([]string, error) {
	pageURL := searchURL
	if !strings.HasSuffix(pageURL, htmlExtension) {
		pageURL += htmlExtension
	}

	page, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	urls := ParseSearchResults(page)
	s.logger.Info("[zonaprop] %d listing URLs on %s", len(urls), pageURL)
	return urls, nil
}

// Listing fetches a posting page and extracts its listing.
func (s *Scraper) Listing(ctx context.Context, url string) (*models.Listing, error) {
	page, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	listing, err := ParseListing(page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	listing.URL = url
	s.logger.Debug("[zonaprop] Extracted listing %s from %s", models.Text(listing.ID), url)
	return listing, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	var page string
	err := s.retry.Do(ctx, "fetch "+url, func() error {
		body, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		page = body
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("zonaprop: fetch: %w", err)
	}
	return page, nil
}

// ParseListing runs the extraction pipeline on a posting page: locate the
// avisoInfo block, normalize it, check that it decodes and extract fields.
func ParseListing(page string) (*models.Listing, error) {
	if strings.TrimSpace(page) == "" {
		return nil, ErrEmptyDocument
	}

	block, ok := LocateBlock(page)
	if !ok {
		return nil, ErrBlockNotFound
	}

	normalized := NormalizeLiteral(block)
	var doc json.RawMessage
	if err := json.Unmarshal([]byte(normalized), &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v (offset %d)", ErrMalformedLiteral, err, syntaxErr.Offset)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
	}

	return Extract(normalized), nil
}
