package news

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/types"
)

// FeedSource defines one RSS source keyed by ticker. URLTemplate contains a
// single %s placeholder for the URL-escaped ticker.
type FeedSource struct {
	Name        string
	URLTemplate string
}

// Fetcher pulls recent articles for a ticker from a primary feed, topping up
// from secondary feeds when the primary comes back short. Fetching is
// best-effort: a failed source contributes zero articles, never an error.
type Fetcher struct {
	sources []FeedSource
	timeout time.Duration
}

// NewFetcher creates a fetcher with the default feed sources.
func NewFetcher(timeout time.Duration) *Fetcher {
	return NewFetcherWithSources(timeout, getDefaultSources())
}

// NewFetcherWithSources creates a fetcher with explicit sources, first one
// primary.
func NewFetcherWithSources(timeout time.Duration, sources []FeedSource) *Fetcher {
	return &Fetcher{
		sources: sources,
		timeout: timeout,
	}
}

func getDefaultSources() []FeedSource {
	return []FeedSource{
		{
			Name:        "Yahoo Finance",
			URLTemplate: "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
		},
		{
			Name:        "Google News",
			URLTemplate: "https://news.google.com/rss/search?q=%s+stock&hl=en-US&gl=US&ceid=US:en",
		},
	}
}

// Fetch returns up to maxArticles articles for the ticker. Secondary sources
// are queried only when the primary comes back short, and their items are
// deduplicated against collected titles by exact match.
func (f *Fetcher) Fetch(ctx context.Context, ticker string, maxArticles int) []types.Article {
	ticker = strings.ToUpper(ticker)
	articles := []types.Article{}

	for i, source := range f.sources {
		if i > 0 && len(articles) >= maxArticles {
			break
		}

		fetched := f.fetchFeed(ctx, source, ticker, maxArticles)
		if i == 0 {
			articles = append(articles, fetched...)
			continue
		}

		seen := make(map[string]bool, len(articles))
		for _, a := range articles {
			seen[a.Title] = true
		}
		for _, a := range fetched {
			if len(articles) >= maxArticles {
				break
			}
			if seen[a.Title] {
				continue
			}
			articles = append(articles, a)
		}
	}

	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}

	logger.Info(ctx, "News fetch completed", "ticker", ticker, "articles", len(articles))
	return articles
}

// fetchFeed reads one RSS feed. Request or parse failures yield an empty
// slice.
func (f *Fetcher) fetchFeed(ctx context.Context, source FeedSource, ticker string, limit int) []types.Article {
	articles := []types.Article{}

	c := colly.NewCollector()
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(articles) >= limit {
			return
		}

		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			return
		}

		articles = append(articles, types.Article{
			Title:     title,
			Summary:   stripHTML(e.ChildText("description")),
			Link:      strings.TrimSpace(e.ChildText("link")),
			Published: strings.TrimSpace(e.ChildText("pubDate")),
			Source:    source.Name,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "Feed request failed", "source", source.Name, "ticker", ticker, "error", err)
	})

	feedURL := strings.ReplaceAll(source.URLTemplate, "%s", url.QueryEscape(ticker))
	if err := c.Visit(feedURL); err != nil {
		logger.Warn(ctx, "Feed unavailable", "source", source.Name, "ticker", ticker, "error", err)
		return articles
	}
	c.Wait()

	return articles
}

// stripHTML reduces an RSS description to its text content; Google News
// embeds anchor markup in summaries.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
