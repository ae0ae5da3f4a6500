package zonaprop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonaprop-watcher/config"
	"zonaprop-watcher/utils"
)

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return "", errors.New("status 404")
	}
	return page, nil
}

func newTestScraper(pages map[string]string) (*Scraper, *fakeFetcher) {
	cfg := config.Defaults()
	cfg.MaxRetries = 1
	fetcher := &fakeFetcher{pages: pages}
	return New(cfg, fetcher, utils.NewDiscardLogger()), fetcher
}

func TestParseListing(t *testing.T) {
	l, err := ParseListing(postingPage)
	require.NoError(t, err)
	require.NotNil(t, l.ID)
	assert.Equal(t, "56540649", *l.ID)
	assert.Empty(t, l.URL)
}

func TestParseListingErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
		want error
	}{
		{"empty", "   \n", ErrEmptyDocument},
		{"no block", "<html><body>nada</body></html>", ErrBlockNotFound},
		{"malformed", "<script>const avisoInfo = {a: foo()};</script>", ErrMalformedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseListing(tt.page)
			assert.Nil(t, l)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseListingNumericKeys(t *testing.T) {
	page := "<script>const avisoInfo = {idAviso: '55', 1: {'label': 'x'}, price: 'USD 90.000'};</script>"

	l, err := ParseListing(page)
	require.NoError(t, err)
	require.NotNil(t, l.Price)
	assert.Equal(t, "USD 90.000", *l.Price)
}

func TestParseListingMalformedReportsOffset(t *testing.T) {
	_, err := ParseListing("const avisoInfo = {a: foo()};")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset")
}

func TestParseSearchResults(t *testing.T) {
	urls := ParseSearchResults(searchPage)
	assert.Equal(t, []string{
		"https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html",
		"https://www.zonaprop.com.ar/propiedades/depto-belgrano-2.html",
	}, urls)
}

func TestParseSearchResultsWithoutData(t *testing.T) {
	assert.Empty(t, ParseSearchResults("<html><body></body></html>"))
	assert.Empty(t, ParseSearchResults(`<script id="preloadedData">{"other": []}</script>`))
}

func TestScraperListingURLsAddsExtension(t *testing.T) {
	search := "https://www.zonaprop.com.ar/departamentos-venta-palermo"
	s, fetcher := newTestScraper(map[string]string{search + ".html": searchPage})

	urls, err := s.ListingURLs(context.Background(), search)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Equal(t, []string{search + ".html"}, fetcher.calls)
}

func TestScraperListing(t *testing.T) {
	url := "https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html"
	s, _ := newTestScraper(map[string]string{url: postingPage})

	l, err := s.Listing(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, url, l.URL)
	require.NotNil(t, l.Address)
	assert.Equal(t, "Gurruchaga 123", *l.Address)
}

func TestScraperListingErrors(t *testing.T) {
	url := "https://www.zonaprop.com.ar/propiedades/roto-3.html"
	s, _ := newTestScraper(map[string]string{url: "<html>sin datos</html>"})

	_, err := s.Listing(context.Background(), url)
	assert.ErrorIs(t, err, ErrBlockNotFound)

	_, err = s.Listing(context.Background(), "https://www.zonaprop.com.ar/propiedades/missing.html")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
