package zonaprop

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	preloadedData = regexp.MustCompile(`(?is)<script[^>]*\bid=["']preloadedData["'][^>]*>(.*?)</script>`)
	mainEntityKey = regexp.MustCompile(`"mainEntity"\s*:\s*`)
	urlField      = regexp.MustCompile(`"url"\s*:\s*("(?:[^"\\]|\\.)*")`)
)

// ParseSearchResults returns the posting URLs listed in the mainEntity array
// of a search page's preloadedData script, in page order and without
// duplicates. Relative URLs are resolved against the site root.
func ParseSearchResults(page string) []string {
	m := preloadedData.FindStringSubmatch(page)
	if m == nil {
		return nil
	}

	entities, ok := valueOf(m[1], mainEntityKey)
	if !ok || entities[0] != '[' {
		return nil
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, u := range urlField.FindAllStringSubmatch(entities, -1) {
		var url string
		if err := json.Unmarshal([]byte(u[1]), &url); err != nil {
			continue
		}
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if strings.HasPrefix(url, "/") {
			url = baseURL + url
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}
