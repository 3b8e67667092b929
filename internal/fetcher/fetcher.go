package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"go.uber.org/zap"

	"listing-scout/config"
	"listing-scout/internal/listing"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher scrapes one Craigslist search results page per term and the detail
// page of every listing it finds. Craigslist has shipped three generations of
// results markup; all three are tried, first non-empty wins.
type Fetcher struct {
	baseURL string
	delay   time.Duration
	logger  *zap.SugaredLogger
}

func New(cfg *config.Config, logger *zap.SugaredLogger) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		delay:   time.Duration(cfg.FetchDelayMS) * time.Millisecond,
		logger:  logger,
	}
}

// SearchURL builds the for-sale search URL for a term.
func (f *Fetcher) SearchURL(term string) string {
	q := url.Values{}
	q.Set("query", term)
	return fmt.Sprintf("%s/search/sss?%s", f.baseURL, q.Encode())
}

// Fetch returns one listing per result on the search page, in page order.
// A detail page that fails to load still yields a listing, with Err set.
// An unreachable or unparsable search page is an error for the whole term.
func (f *Fetcher) Fetch(ctx context.Context, term string) ([]listing.Listing, error) {
	searchURL := f.SearchURL(term)
	f.logger.Infow("search_started", "term", term, "url", searchURL)

	urls, err := f.collectListingURLs(searchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch search results for %q: %w", term, err)
	}
	f.logger.Infow("search_finished", "term", term, "listings", len(urls))

	listings := make([]listing.Listing, 0, len(urls))
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return listings, err
		}

		l, err := f.fetchDetails(u)
		if err != nil {
			f.logger.Warnw("listing_fetch_failed", "url", u, "err", err)
			l = listing.Listing{URL: u, Err: err.Error()}
		}
		listings = append(listings, l)

		if f.delay > 0 && i < len(urls)-1 {
			time.Sleep(f.delay)
		}
	}

	return listings, nil
}

// collectListingURLs scrapes the search page. Collectors are created per call:
// colly refuses revisits, and two products may share a search term.
func (f *Fetcher) collectListingURLs(searchURL string) ([]string, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent), colly.IgnoreRobotsTxt())
	c.SetRequestTimeout(30 * time.Second)

	// One bucket per markup generation, newest first.
	var modern, gallery, legacy []string

	c.OnHTML("a.posting-title", func(e *colly.HTMLElement) {
		if href := e.Request.AbsoluteURL(e.Attr("href")); href != "" {
			modern = append(modern, href)
		}
	})
	c.OnHTML("li.cl-static-search-result a", func(e *colly.HTMLElement) {
		if href := e.Request.AbsoluteURL(e.Attr("href")); href != "" {
			gallery = append(gallery, href)
		}
	})
	c.OnHTML(".result-row a.result-title", func(e *colly.HTMLElement) {
		if href := e.Request.AbsoluteURL(e.Attr("href")); href != "" {
			legacy = append(legacy, href)
		}
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, err
	}

	for _, bucket := range [][]string{modern, gallery, legacy} {
		if len(bucket) > 0 {
			return bucket, nil
		}
	}
	return nil, nil
}

func (f *Fetcher) fetchDetails(listingURL string) (listing.Listing, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent), colly.IgnoreRobotsTxt())
	c.SetRequestTimeout(30 * time.Second)

	l := listing.Listing{URL: listingURL}

	c.OnHTML("html", func(e *colly.HTMLElement) {
		doc := e.DOM

		if t := doc.Find("#titletextonly").First(); t.Length() > 0 {
			l.Title = strings.TrimSpace(t.Text())
		} else if t := doc.Find("h1.postingtitle").First(); t.Length() > 0 {
			l.Title = strings.TrimSpace(t.Text())
		}

		if p := doc.Find(".price").First(); p.Length() > 0 {
			l.Price = strings.TrimSpace(p.Text())
		}

		if body := doc.Find("#postingbody").First(); body.Length() > 0 {
			body.Find(".print-information").Remove()
			l.Description = strings.TrimSpace(body.Text())
		}
	})

	if err := c.Visit(listingURL); err != nil {
		return listing.Listing{}, err
	}
	return l, nil
}
