package scout

import (
	"context"
	"net/url"
	"strings"

	"rdelorme/pricewatcher/services/fetcher"

	"github.com/PuerkitoBio/goquery"
)

const searchBaseURL = "https://www.google.com/search"

// SearchLinkSource harvests candidate URLs from a search engine result
// page: every external anchor, in page order, up to the requested count.
type SearchLinkSource struct {
	fetch fetcher.Fetcher
}

// NewSearchLinkSource creates a link source backed by a fetcher
func NewSearchLinkSource(fetch fetcher.Fetcher) *SearchLinkSource {
	return &SearchLinkSource{fetch: fetch}
}

// Results fetches the result page for a query and collects up to n
// external links.
func (s *SearchLinkSource) Results(ctx context.Context, query string, n int) ([]string, error) {
	searchURL := searchBaseURL + "?q=" + url.QueryEscape(query)

	content, err := s.fetch.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.Contains(href, "google") {
			links = append(links, href)
		}
		return len(links) < n
	})
	return links, nil
}
